package translate

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-activitystream/pkg/types"
)

// ErrListenerStopped is returned by Submit after Stop has begun.
var ErrListenerStopped = errors.New("translate: listener stopped")

// ListenerConfig wires the async bundle listener.
type ListenerConfig struct {
	Translator *Translator
	Workers    int
	QueueSize  int
	Logger     types.Logger
}

// Listener processes event bundles asynchronously on a worker pool. Bundles
// may run concurrently with each other, but each bundle is translated
// sequentially within itself so the dedup ordering holds.
type Listener struct {
	translator *Translator
	logger     types.Logger
	bundles    chan []SourceEvent
	wg         sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewListener constructs and starts the worker pool. Workers defaults to 1,
// QueueSize to 64.
func NewListener(cfg ListenerConfig) (*Listener, error) {
	if cfg.Translator == nil {
		return nil, errors.New("translate: translator required")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	l := &Listener{
		translator: cfg.Translator,
		logger:     logger,
		bundles:    make(chan []SourceEvent, queueSize),
	}
	for i := 0; i < workers; i++ {
		l.wg.Add(1)
		go l.work()
	}
	return l, nil
}

func (l *Listener) work() {
	defer l.wg.Done()
	for bundle := range l.bundles {
		l.translator.TranslateBundle(context.Background(), bundle)
	}
}

// Submit enqueues a bundle for translation, blocking while the queue is full.
func (l *Listener) Submit(ctx context.Context, bundle []SourceEvent) error {
	if len(bundle) == 0 {
		return nil
	}
	// Hold the read lock across the send so Stop cannot close the channel
	// under an in-flight Submit.
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopped {
		return ErrListenerStopped
	}

	select {
	case l.bundles <- bundle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drains the queue and waits for in-flight bundles, or returns early
// with the context error.
func (l *Listener) Stop(ctx context.Context) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return nil
	}
	l.stopped = true
	close(l.bundles)
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
