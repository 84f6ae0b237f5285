package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/McTechie/tubecafe-backend/config"
	log "github.com/sirupsen/logrus"
)

// Field names shared by every hook.
const (
	SourceKey   = "source"
	SeverityKey = "severity"
	TypeKey     = "type"
)

var buffer *BufferHook

// Init configures the standard logrus logger: console output, the rotating
// server.log file and the in-memory buffer.
func Init(cfg config.Log) (*log.Logger, error) {
	l := log.StandardLogger()
	l.Out = os.Stdout

	if strings.EqualFold(cfg.Format, "json") {
		l.Formatter = &log.JSONFormatter{TimestampFormat: time.RFC3339Nano}
	} else {
		l.Formatter = &log.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339}
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	l.SetLevel(level)

	l.ReplaceHooks(make(log.LevelHooks))

	buffer = NewBufferHook(cfg.BufferSize)
	l.AddHook(buffer)

	if cfg.Dir != "" {
		fileHook, err := NewFileHook(cfg.Dir, int64(cfg.MaxSizeMB)<<20)
		if err != nil {
			return l, fmt.Errorf("log file: %w", err)
		}
		l.AddHook(fileHook)
	}
	return l, nil
}

// For returns an entry tagged with source, e.g. "server", "db", "media".
func For(source string) *log.Entry {
	return log.WithField(SourceKey, strings.ToLower(source))
}

// Buffer is the in-memory hook installed by Init, or nil before Init.
func Buffer() *BufferHook {
	return buffer
}

func sourceOf(e *log.Entry) string {
	if s, ok := e.Data[SourceKey].(string); ok && s != "" {
		return s
	}
	return "server"
}

// severityOf honours an explicit severity field and otherwise derives one
// from the level.
func severityOf(e *log.Entry) string {
	if s, ok := e.Data[SeverityKey].(string); ok && s != "" {
		return s
	}
	switch e.Level {
	case log.DebugLevel, log.TraceLevel:
		return "debug"
	case log.WarnLevel:
		return "warning"
	case log.ErrorLevel, log.FatalLevel, log.PanicLevel:
		return "error"
	}
	return "info"
}

func typeOf(e *log.Entry) string {
	if s, ok := e.Data[TypeKey].(string); ok && s != "" {
		return s
	}
	switch e.Level {
	case log.DebugLevel, log.TraceLevel:
		return "debug"
	case log.WarnLevel:
		return "warn"
	case log.ErrorLevel, log.FatalLevel, log.PanicLevel:
		return "error"
	}
	return "info"
}

func messageOf(e *log.Entry) string {
	if err, ok := e.Data[log.ErrorKey].(error); ok && err != nil {
		return e.Message + ": " + err.Error()
	}
	return e.Message
}
