package logger

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/McTechie/tubecafe-backend/models"
	log "github.com/sirupsen/logrus"
)

// ActionLogWriter persists one action log entry.
type ActionLogWriter interface {
	Insert(ctx context.Context, entry models.ActionLog) error
}

// ActionLogHook copies entries at or above a level into the action log
// collection. Writes happen on a single goroutine; when its queue is full
// new entries are dropped rather than blocking the caller.
type ActionLogHook struct {
	writer  ActionLogWriter
	levels  []log.Level
	queue   chan models.ActionLog
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	timeout time.Duration
}

func NewActionLogHook(writer ActionLogWriter, minLevel string, queueSize int) *ActionLogHook {
	level, err := log.ParseLevel(minLevel)
	if err != nil {
		level = log.WarnLevel
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	h := &ActionLogHook{
		writer:  writer,
		levels:  log.AllLevels[:level+1],
		queue:   make(chan models.ActionLog, queueSize),
		done:    make(chan struct{}),
		timeout: 5 * time.Second,
	}
	go h.run()
	return h
}

func (h *ActionLogHook) Levels() []log.Level {
	return h.levels
}

func (h *ActionLogHook) Fire(e *log.Entry) error {
	entry := models.NewActionLog(typeOf(e), sourceOf(e), severityOf(e), messageOf(e), e.Time)

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return nil
	}
	select {
	case h.queue <- entry:
	default:
	}
	return nil
}

func (h *ActionLogHook) run() {
	defer close(h.done)
	for entry := range h.queue {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		if err := h.writer.Insert(ctx, entry); err != nil {
			// logging through logrus here would feed back into the hook
			fmt.Fprintf(os.Stderr, "action log insert failed: %v\n", err)
		}
		cancel()
	}
}

// Close stops accepting entries and waits for queued ones to be written.
func (h *ActionLogHook) Close() {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		close(h.queue)
	}
	h.mu.Unlock()
	<-h.done
}

// EnableActionLogs installs an ActionLogHook on the standard logger.
func EnableActionLogs(writer ActionLogWriter, minLevel string) *ActionLogHook {
	h := NewActionLogHook(writer, minLevel, 0)
	log.AddHook(h)
	return h
}
