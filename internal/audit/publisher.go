package audit

import (
	"log/slog"
)

// Publisher hands events to the background worker through a buffered inbox.
// Emit never blocks the caller; when the buffer is full the event is dropped
// and the drop is logged. Verification decisions are also recorded in request
// snapshots, so the audit trail is supplementary rather than fail-closed.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(buffer int, opts ...Option) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	p := &Publisher{
		inbox:  make(chan Event, buffer),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Inbox exposes the receive side for the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}

func (p *Publisher) Emit(event Event) {
	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit inbox full, dropping event",
			"action", event.Action,
			"subject_id", event.SubjectID,
		)
	}
}
