// Command queueconsumer is the ambient RabbitMQ front end for the
// execution core: it is not part of the core's contract (pkg/execcore),
// just one way external callers can reach it. Submissions arrive as
// queue messages, run through pkg/execcore.Core, and their verdicts go
// back out on a response queue.
package main

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/practiceraptor/execcore/internal/config"
	"github.com/practiceraptor/execcore/internal/consumer"
	"github.com/practiceraptor/execcore/internal/obslog"
	"github.com/practiceraptor/execcore/internal/queuepool"
	"github.com/practiceraptor/execcore/internal/responder"
	"github.com/practiceraptor/execcore/pkg/execcore"
	"github.com/practiceraptor/execcore/pkg/model"
	"github.com/practiceraptor/execcore/pkg/queuemsg"
)

const maxConcurrentWorkers = 4

func main() {
	log := obslog.NewNamedLogger("queueconsumer")
	log.Info("starting queue consumer")

	cfg := config.Load()

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Errorf("failed to close RabbitMQ connection: %v", err)
		}
	}()

	channel, err := conn.Channel()
	if err != nil {
		log.Fatalf("failed to open RabbitMQ channel: %v", err)
	}

	resp := responder.New(channel, cfg.ResponseQueue)
	runner := &coreRunner{core: execcore.New()}
	pool := queuepool.New(maxConcurrentWorkers, runner, resp)
	c := consumer.New(channel, cfg.ConsumeQueueName, pool, resp)

	log.Info("listening for submissions")
	if err := c.Listen(); err != nil {
		log.Fatalf("consumer stopped: %v", err)
	}
}

// coreRunner adapts pkg/execcore.Core to queuepool.Runner.
type coreRunner struct {
	core *execcore.Core
}

func (r *coreRunner) Run(ctx context.Context, sub queuemsg.SubmissionPayload) (*model.SuiteVerdict, error) {
	verdict := r.core.RunSuite(ctx, sub.Source, sub.TestCases, sub.EntryPoint, sub.DeadlineMs)
	return verdict, nil
}
