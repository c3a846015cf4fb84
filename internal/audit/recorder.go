package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"certiva/pkg/apperrors"
)

const defaultBuffer = 1024

// Sink mirrors audit entries to an external system. Publish must not
// block the caller; delivery is best effort.
type Sink interface {
	Publish(ctx context.Context, entry Entry)
}

// Recorder appends audit entries through a buffered channel so callers on
// the request path never wait on storage. Entries still in the buffer are
// drained when Close is called; entries that arrive while the buffer is
// full are dropped and counted in the log.
type Recorder struct {
	store  Store
	sink   Sink
	logger *slog.Logger
	now    func() time.Time

	inbox chan Entry
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

type RecorderOption func(*Recorder)

// WithSink mirrors every persisted entry to an external sink.
func WithSink(sink Sink) RecorderOption {
	return func(r *Recorder) { r.sink = sink }
}

// WithBuffer sets the inbox capacity.
func WithBuffer(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.inbox = make(chan Entry, n)
		}
	}
}

func NewRecorder(store Store, logger *slog.Logger, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:  store,
		logger: logger,
		now:    time.Now,
		inbox:  make(chan Entry, defaultBuffer),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.run()
	return r
}

// Record enqueues an entry for persistence. It never blocks: when the
// buffer is full the entry is dropped with a warning.
func (r *Recorder) Record(entry Entry) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.inbox <- entry:
	default:
		r.logger.Warn("audit buffer full, entry dropped", "action", entry.Action)
	}
}

func (r *Recorder) run() {
	defer r.wg.Done()
	ctx := context.Background()
	for entry := range r.inbox {
		if err := r.store.Append(ctx, entry); err != nil {
			r.logger.Error("append audit entry", "action", entry.Action, "error", err)
			continue
		}
		if r.sink != nil {
			r.sink.Publish(ctx, entry)
		}
	}
}

// Close stops accepting entries and drains the buffer.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.inbox)
	r.mu.Unlock()

	r.wg.Wait()
}

// List returns audit entries matching the filters, newest first.
func (r *Recorder) List(ctx context.Context, f Filters) ([]Entry, error) {
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "date_to", Message: "date_to must not precede date_from"})
	}
	out, err := r.store.List(ctx, f)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "list audit entries")
	}
	if out == nil {
		out = []Entry{}
	}
	return out, nil
}
