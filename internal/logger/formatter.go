package logger

import (
	"fmt"
	"time"
)

// Formatter converts log entries to their textual representation.
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// Entry represents a single log record.
type Entry struct {
	Time    time.Time
	Level   Level
	Mark    string
	Message string
}

// TextFormatter renders log entries using a traditional textual format.
type TextFormatter struct {
	TimestampFormat  string
	DisableTimestamp bool
}

// Format converts the Entry into a textual representation.
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = "15:04:05"
	}

	var timestamp string
	if !f.DisableTimestamp {
		timestamp = entry.Time.Format(timestampFormat)
	}

	return formatEntry(entry, timestamp, entry.Level.String()), nil
}

func formatEntry(entry *Entry, timestamp, level string) []byte {
	line := ""
	if timestamp != "" {
		line = timestamp + " "
	}
	line += "[" + level + "] "
	if entry.Mark != "" {
		line += entry.Mark + " "
	}
	line += entry.Message

	return []byte(fmt.Sprintf("%s\n", line))
}
