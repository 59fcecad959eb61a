// Package queuemsg defines the envelope types the ambient queue consumer
// exchanges over RabbitMQ. These never cross the execution core's own
// public boundary (pkg/execcore) — they exist only for the optional,
// outside-the-core demo caller in cmd/queueconsumer.
package queuemsg

import (
	"encoding/json"

	"github.com/practiceraptor/execcore/pkg/model"
)

// QueueMessage is the inbound envelope: a type tag, a correlation ID, and
// a type-specific payload decoded once the type is known.
type QueueMessage struct {
	Type      string          `json:"type"`
	MessageID string          `json:"message_id"`
	Payload   json.RawMessage `json:"payload"`
}

// SubmissionPayload is the payload of a QueueMessage whose Type is
// constants.QueueMessageTypeSubmission: everything RunSuite needs.
type SubmissionPayload struct {
	Source     string           `json:"source"`
	TestCases  []model.TestCase `json:"test_cases"`
	EntryPoint string           `json:"entry_point"`
	DeadlineMs int              `json:"deadline_ms"`
}

// ResponseQueueMessage is the outbound envelope published back to the
// caller, carrying either a suite verdict or an error payload.
type ResponseQueueMessage struct {
	Type      string          `json:"type"`
	MessageID string          `json:"message_id"`
	Ok        bool            `json:"ok"`
	Payload   json.RawMessage `json:"payload"`
}
