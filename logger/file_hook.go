package logger

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const currentLogFile = "server.log"

// FileHook appends one line per entry to <dir>/server.log and rotates the
// file to server_<unix-ms>.log once it grows past maxSize bytes.
type FileHook struct {
	mu      sync.Mutex
	dir     string
	maxSize int64
	file    *os.File
	now     func() time.Time
}

func NewFileHook(dir string, maxSize int64) (*FileHook, error) {
	if maxSize <= 0 {
		maxSize = 1 << 20
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	h := &FileHook{dir: dir, maxSize: maxSize, now: time.Now}
	if err := h.open(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *FileHook) open() error {
	f, err := os.OpenFile(filepath.Join(h.dir, currentLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	h.file = f
	return nil
}

func (h *FileHook) Levels() []log.Level {
	return log.AllLevels
}

// FormatLine renders [<RFC1123 UTC>] | [<SOURCE>_<SEVERITY>] > <message>.
func FormatLine(e *log.Entry) string {
	return fmt.Sprintf("[%s] | [%s_%s] > %s\n",
		e.Time.UTC().Format(http.TimeFormat),
		strings.ToUpper(sourceOf(e)),
		strings.ToUpper(severityOf(e)),
		messageOf(e),
	)
}

func (h *FileHook) Fire(e *log.Entry) error {
	line := FormatLine(e)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		if err := h.open(); err != nil {
			return err
		}
	}
	if _, err := h.file.WriteString(line); err != nil {
		return err
	}

	info, err := h.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() > h.maxSize {
		return h.rotate()
	}
	return nil
}

func (h *FileHook) rotate() error {
	if err := h.file.Close(); err != nil {
		return err
	}
	h.file = nil
	rotated := filepath.Join(h.dir, fmt.Sprintf("server_%d.log", h.now().UnixMilli()))
	if err := os.Rename(filepath.Join(h.dir, currentLogFile), rotated); err != nil {
		return err
	}
	return h.open()
}

func (h *FileHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.file == nil {
		return nil
	}
	err := h.file.Close()
	h.file = nil
	return err
}
