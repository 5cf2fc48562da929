// Package audit provides a best-effort event trail for ledger mutations.
// Logging is fire-and-forget: implementations swallow their own failures so
// a broken audit sink can never fail the primary operation.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event is one audit record. CompanyID is uuid.Nil for events without a
// tenant scope.
type Event struct {
	Time      time.Time
	CompanyID uuid.UUID
	EventType string // AUDIT or ERROR
	Level     string // INFO, WARN, ...
	Code      string // stable machine code, e.g. TX_UNBALANCED
	Message   string
}

// Logger records audit events. Implementations must not return errors and
// must not block the caller beyond the ctx deadline.
type Logger interface {
	Log(ctx context.Context, ev Event)
}

// Sink is the storage-side append operation a store-backed Logger writes to.
type Sink interface {
	AppendAuditEvent(ctx context.Context, ev Event) error
}

type storeLogger struct {
	sink Sink
	log  *slog.Logger
}

// NewStore returns a Logger that appends events to the given sink. Sink
// failures are logged at debug and otherwise ignored.
func NewStore(sink Sink, log *slog.Logger) Logger {
	return &storeLogger{sink: sink, log: log}
}

func (s *storeLogger) Log(ctx context.Context, ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	if err := s.sink.AppendAuditEvent(ctx, ev); err != nil {
		s.log.Debug("audit append failed", "code", ev.Code, "err", err)
	}
}

type slogLogger struct {
	log *slog.Logger
}

// NewSlog returns a Logger that emits events as structured log lines only.
func NewSlog(log *slog.Logger) Logger { return &slogLogger{log: log} }

func (s *slogLogger) Log(_ context.Context, ev Event) {
	s.log.Info("audit",
		"event_type", ev.EventType,
		"level", ev.Level,
		"code", ev.Code,
		"message", ev.Message,
		"company_id", ev.CompanyID.String(),
	)
}

// Nop returns a Logger that discards all events.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Log(context.Context, Event) {}
