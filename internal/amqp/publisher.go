package amqp

import (
	"context"

	"expensetracker/internal/log"
	"expensetracker/internal/store"
)

// Publisher is the part of Client the change publisher needs.
type Publisher interface {
	Publish(ctx context.Context, msg *ChangeMessage) error
}

// ChangePublisher forwards store changes to the broker.
type ChangePublisher struct {
	pub    Publisher
	key    string
	logger *log.Logger
}

func NewChangePublisher(pub Publisher, key string, logger *log.Logger) *ChangePublisher {
	return &ChangePublisher{
		pub:    pub,
		key:    key,
		logger: log.OrDefault(logger).WithComponent(log.ComponentAMQP),
	}
}

// Observe is a store.Observer. Publishing failures are logged and never
// reach the caller that mutated the store.
func (p *ChangePublisher) Observe(ctx context.Context, c store.Change) {
	msg := NewChangeMessage(p.key, c)
	if err := p.pub.Publish(context.WithoutCancel(ctx), msg); err != nil {
		p.logger.WarnContext(ctx, "Failed to publish change",
			log.FieldOperation, log.OpPublish,
			log.FieldExpenseID, c.ID,
			log.FieldVersion, c.Version,
			log.FieldError, err)
	}
}

// Attach subscribes the publisher to s and returns the unsubscribe func.
func (p *ChangePublisher) Attach(s *store.Store) func() {
	return s.Subscribe(p.Observe)
}
