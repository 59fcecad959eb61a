// Package config loads the handful of knobs the execution core and its
// ambient queue consumer recognize, the way the rest of this codebase
// loads configuration: a .env file via godotenv, falling back to defaults
// with a warning, and a fatal exit for values that are present but
// unparsable.
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/practiceraptor/execcore/internal/obslog"
	"github.com/practiceraptor/execcore/pkg/constants"
)

// Config holds everything the core (DeadlineMs, MemoryHintMB) and the
// ambient queue consumer (the rest) need.
type Config struct {
	DeadlineMs   int
	MemoryHintMB int

	RabbitMQURL      string
	ConsumeQueueName string
	ResponseQueue    string

	RedisAddr string
}

// Load reads .env (if present) and environment variables into a Config.
// Unlike the core's own clamping of a per-call deadline (see
// pkg/execcore), this is the process-wide default used when a caller
// does not supply one explicitly.
func Load() *Config {
	log := obslog.NewNamedLogger("config")

	if _, err := os.Stat(".env"); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("failed to stat .env file: %v", err)
		}
	} else {
		if err := godotenv.Load(".env"); err != nil {
			log.Fatalf("failed to load .env file: %v", err)
		}
	}

	return &Config{
		DeadlineMs:       deadlineConfig(log),
		MemoryHintMB:     memoryHintConfig(log),
		RabbitMQURL:      rabbitmqConfig(log),
		ConsumeQueueName: stringConfig(log, "SUBMISSION_QUEUE_NAME", "raptor_submissions"),
		ResponseQueue:    stringConfig(log, "RESULT_QUEUE_NAME", "raptor_results"),
		RedisAddr:        stringConfig(log, "REDIS_ADDR", "localhost:6379"),
	}
}

type namedLogger interface {
	Warnf(string, ...interface{})
	Fatalf(string, ...interface{})
}

func stringConfig(log namedLogger, envVar, def string) string {
	v := os.Getenv(envVar)
	if v == "" {
		log.Warnf("%s is not set, using default value %s", envVar, def)
		return def
	}
	return v
}

func deadlineConfig(log namedLogger) int {
	v := os.Getenv("DEADLINE_MS")
	if v == "" {
		log.Warnf("DEADLINE_MS is not set, using default value %d", constants.DefaultDeadlineMs)
		return constants.DefaultDeadlineMs
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("failed to parse DEADLINE_MS: %v", err)
	}
	return ClampDeadlineMs(n)
}

func memoryHintConfig(log namedLogger) int {
	v := os.Getenv("MEMORY_HINT_MB")
	if v == "" {
		log.Warnf("MEMORY_HINT_MB is not set, using default value %d", constants.DefaultMemoryHintMB)
		return constants.DefaultMemoryHintMB
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("failed to parse MEMORY_HINT_MB: %v", err)
	}
	return n
}

func rabbitmqConfig(log namedLogger) string {
	host := stringConfig(log, "RABBITMQ_HOST", "localhost")
	port := stringConfig(log, "RABBITMQ_PORT", "5672")
	user := stringConfig(log, "RABBITMQ_USER", "guest")
	password := stringConfig(log, "RABBITMQ_PASSWORD", "guest")
	return "amqp://" + user + ":" + password + "@" + host + ":" + port + "/"
}

// ClampDeadlineMs bounds a deadline to [MinDeadlineMs, MaxDeadlineMs] per
// the core's recognized configuration contract.
func ClampDeadlineMs(ms int) int {
	if ms < constants.MinDeadlineMs {
		return constants.MinDeadlineMs
	}
	if ms > constants.MaxDeadlineMs {
		return constants.MaxDeadlineMs
	}
	return ms
}
