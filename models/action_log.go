package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ActionLog struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Type      string        `bson:"type" json:"type"`
	Source    string        `bson:"source" json:"source"`
	Severity  string        `bson:"severity" json:"severity"`
	Message   string        `bson:"message" json:"message"`
	Timestamp time.Time     `bson:"timestamp" json:"timestamp"`
}

// NewActionLog trims and lower-cases the classification fields.
func NewActionLog(logType, source, severity, message string, at time.Time) ActionLog {
	if at.IsZero() {
		at = time.Now()
	}
	return ActionLog{
		Type:      strings.ToLower(strings.TrimSpace(logType)),
		Source:    strings.ToLower(strings.TrimSpace(source)),
		Severity:  strings.ToLower(strings.TrimSpace(severity)),
		Message:   strings.TrimSpace(message),
		Timestamp: at.UTC(),
	}
}

type ActionLogFilter struct {
	Type     string
	Source   string
	Severity string
}
