package logger

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type Record struct {
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// BufferHook keeps the most recent entries in memory.
type BufferHook struct {
	mu      sync.Mutex
	records []Record
	next    int
	full    bool
}

func NewBufferHook(size int) *BufferHook {
	if size <= 0 {
		size = 500
	}
	return &BufferHook{records: make([]Record, size)}
}

func (b *BufferHook) Levels() []log.Level {
	return log.AllLevels
}

func (b *BufferHook) Fire(e *log.Entry) error {
	r := Record{
		Message:   messageOf(e),
		Type:      typeOf(e),
		Source:    sourceOf(e),
		Severity:  severityOf(e),
		Timestamp: e.Time.UTC(),
	}

	b.mu.Lock()
	b.records[b.next] = r
	b.next = (b.next + 1) % len(b.records)
	if b.next == 0 {
		b.full = true
	}
	b.mu.Unlock()
	return nil
}

func (b *BufferHook) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.full {
		return len(b.records)
	}
	return b.next
}

// Entries returns the buffered records, oldest first.
func (b *BufferHook) Entries() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.full {
		return append([]Record(nil), b.records[:b.next]...)
	}
	out := make([]Record, 0, len(b.records))
	out = append(out, b.records[b.next:]...)
	return append(out, b.records[:b.next]...)
}
