// Package consumer adapts the queuepool.Pool to RabbitMQ: declare the
// submission queue, read QueueMessage envelopes off it, and dispatch
// submissions to the pool. Mirrors the teacher's rabbitmq consumer almost
// exactly, trimmed from three message types down to two.
package consumer

import (
	"encoding/json"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/practiceraptor/execcore/internal/obslog"
	"github.com/practiceraptor/execcore/internal/queuepool"
	"github.com/practiceraptor/execcore/internal/responder"
	"github.com/practiceraptor/execcore/pkg/constants"
	coreerrors "github.com/practiceraptor/execcore/pkg/errors"
	"github.com/practiceraptor/execcore/pkg/queuemsg"
)

// Consumer listens for submissions on a queue and hands them to a Pool.
type Consumer interface {
	Listen() error
}

type consumer struct {
	channel         *amqp.Channel
	submissionQueue string
	pool            queuepool.Pool
	responder       responder.Responder
	logger          *zap.SugaredLogger
}

// New builds a Consumer bound to a channel and submission queue name.
func New(channel *amqp.Channel, submissionQueue string, pool queuepool.Pool, resp responder.Responder) Consumer {
	return &consumer{
		channel:         channel,
		submissionQueue: submissionQueue,
		pool:            pool,
		responder:       resp,
		logger:          obslog.NewNamedLogger("consumer"),
	}
}

func (c *consumer) Listen() error {
	if _, err := c.channel.QueueDeclare(c.submissionQueue, true, false, false, false, nil); err != nil {
		return err
	}

	c.logger.Infof("listening for submissions on queue %s", c.submissionQueue)

	msgs, err := c.channel.Consume(c.submissionQueue, "", true, false, false, false, nil)
	if err != nil {
		return err
	}

	for msg := range msgs {
		var envelope queuemsg.QueueMessage
		if err := json.Unmarshal(msg.Body, &envelope); err != nil {
			c.logger.Errorf("failed to unmarshal queue message: %s", err)
			continue
		}
		if envelope.MessageID == "" {
			// Callers are not required to supply a correlation ID; mint one
			// so the response can still be matched back to this message.
			envelope.MessageID = uuid.NewString()
		}
		c.dispatch(envelope)
	}

	return nil
}

func (c *consumer) dispatch(envelope queuemsg.QueueMessage) {
	switch envelope.Type {
	case constants.QueueMessageTypeSubmission:
		c.handleSubmission(envelope)
	default:
		c.logger.Errorf("unknown queue message type: %s", envelope.Type)
		c.responder.PublishError(envelope.Type, envelope.MessageID, coreerrors.ErrUnknownMessageType)
	}
}

func (c *consumer) handleSubmission(envelope queuemsg.QueueMessage) {
	var sub queuemsg.SubmissionPayload
	if err := json.Unmarshal(envelope.Payload, &sub); err != nil {
		c.logger.Errorf("failed to unmarshal submission payload: %s", err)
		c.responder.PublishError(envelope.Type, envelope.MessageID, err)
		return
	}

	if err := c.pool.ProcessSubmission(envelope.MessageID, sub); err != nil {
		c.logger.Errorf("failed to dispatch submission %s: %s", envelope.MessageID, err)
		c.responder.PublishError(envelope.Type, envelope.MessageID, err)
	}
}
