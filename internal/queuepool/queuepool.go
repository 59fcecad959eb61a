// Package queuepool is the ambient worker pool that lets the queue
// consumer run several submissions concurrently without the execution
// core itself knowing anything about queues. It is deliberately outside
// pkg/execcore's public surface: the core's contract is "run this suite",
// not "manage concurrency for a message broker".
package queuepool

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/practiceraptor/execcore/internal/obslog"
	"github.com/practiceraptor/execcore/internal/responder"
	"github.com/practiceraptor/execcore/pkg/constants"
	coreerrors "github.com/practiceraptor/execcore/pkg/errors"
	"github.com/practiceraptor/execcore/pkg/model"
	"github.com/practiceraptor/execcore/pkg/queuemsg"
)

// Runner is the narrow seam the pool calls into for each submission; the
// real implementation (cmd/queueconsumer) wraps pkg/execcore.Core.
type Runner interface {
	Run(ctx context.Context, sub queuemsg.SubmissionPayload) (*model.SuiteVerdict, error)
}

// Pool dispatches submissions across a fixed number of concurrent slots.
type Pool interface {
	ProcessSubmission(messageID string, sub queuemsg.SubmissionPayload) error
	Status() map[string]interface{}
}

type slot struct {
	busy      bool
	messageID string
}

type pool struct {
	mu         sync.Mutex
	slots      []*slot
	maxWorkers int
	busyCount  int

	runner    Runner
	responder responder.Responder
	logger    *zap.SugaredLogger
}

// New builds a Pool with maxWorkers concurrent slots.
func New(maxWorkers int, runner Runner, resp responder.Responder) Pool {
	slots := make([]*slot, maxWorkers)
	for i := range slots {
		slots[i] = &slot{}
	}
	return &pool{
		slots:      slots,
		maxWorkers: maxWorkers,
		runner:     runner,
		responder:  resp,
		logger:     obslog.NewNamedLogger("queuepool"),
	}
}

func (p *pool) Status() map[string]interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return map[string]interface{}{
		"busy_workers":  p.busyCount,
		"total_workers": p.maxWorkers,
	}
}

func (p *pool) getFreeSlot() (*slot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range p.slots {
		if !s.busy {
			s.busy = true
			p.busyCount++
			return s, nil
		}
	}
	return nil, coreerrors.ErrMaxWorkersReached
}

func (p *pool) releaseSlot(s *slot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s.busy = false
	s.messageID = ""
	p.busyCount--
}

// ProcessSubmission dispatches sub to a free slot and returns immediately;
// the result is published asynchronously through the pool's Responder.
func (p *pool) ProcessSubmission(messageID string, sub queuemsg.SubmissionPayload) error {
	s, err := p.getFreeSlot()
	if err != nil {
		return err
	}
	s.messageID = messageID

	go func() {
		defer p.releaseSlot(s)
		defer func() {
			if r := recover(); r != nil {
				p.logger.Errorf("worker panicked processing message %s: %v", messageID, r)
				p.responder.PublishError(constants.QueueMessageTypeResult, messageID, coreerrors.ErrNoOutcomeFromChild)
			}
		}()

		verdict, err := p.runner.Run(context.Background(), sub)
		if err != nil {
			p.logger.Errorf("failed to run submission %s: %v", messageID, err)
			p.responder.PublishError(constants.QueueMessageTypeResult, messageID, err)
			return
		}

		if err := p.responder.PublishVerdict(constants.QueueMessageTypeResult, messageID, verdict); err != nil {
			p.logger.Errorf("failed to publish result for %s: %v", messageID, err)
		}
	}()

	return nil
}
