// Package responder publishes suite verdicts and errors back to the
// response queue, mirroring the teacher's rabbitmq responder but
// specialized to a single payload shape: model.SuiteVerdict.
package responder

import (
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/practiceraptor/execcore/internal/obslog"
	"github.com/practiceraptor/execcore/pkg/model"
	"github.com/practiceraptor/execcore/pkg/queuemsg"
)

// Responder publishes one outcome per submission to the response queue.
type Responder interface {
	PublishVerdict(messageType, messageID string, verdict *model.SuiteVerdict) error
	PublishError(messageType, messageID string, err error)
}

type responder struct {
	logger            *zap.SugaredLogger
	channel           *amqp.Channel
	responseQueueName string
}

// New builds a Responder that publishes on the given channel and queue.
func New(channel *amqp.Channel, responseQueueName string) Responder {
	return &responder{
		logger:            obslog.NewNamedLogger("responder"),
		channel:           channel,
		responseQueueName: responseQueueName,
	}
}

func (r *responder) PublishVerdict(messageType, messageID string, verdict *model.SuiteVerdict) error {
	payload, err := json.Marshal(verdict)
	if err != nil {
		return err
	}
	return r.publish(messageType, messageID, true, payload)
}

func (r *responder) PublishError(messageType, messageID string, err error) {
	payload, jsonErr := json.Marshal(map[string]string{"error": err.Error()})
	if jsonErr != nil {
		r.logger.Errorf("failed to marshal error payload: %s", jsonErr)
		return
	}
	if pubErr := r.publish(messageType, messageID, false, payload); pubErr != nil {
		r.logger.Errorf("failed to publish error message: %s", pubErr)
	}
}

func (r *responder) publish(messageType, messageID string, ok bool, payload json.RawMessage) error {
	msg := queuemsg.ResponseQueueMessage{
		Type:      messageType,
		MessageID: messageID,
		Ok:        ok,
		Payload:   payload,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	r.logger.Infof("publishing response for message %s", messageID)
	return r.channel.Publish("", r.responseQueueName, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: messageID,
		Body:          body,
	})
}
