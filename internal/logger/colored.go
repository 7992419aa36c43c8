package logger

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ColoredLogger renders log messages using colours when supported by the output writer.
type ColoredLogger struct {
	*StandardLogger
}

// NewColoredLogger returns a logger configured for colourful terminal output when possible.
func NewColoredLogger(options ...Option) *ColoredLogger {
	std := NewStandardLogger(options...)

	writer := std.output
	if writer == nil {
		writer = os.Stdout
	}

	useColor := supportsColor(writer) && os.Getenv("NO_COLOR") == ""

	std.formatter = &ColoredFormatter{
		timestampFormat: "15:04:05",
		colors: map[Level]*color.Color{
			LevelDebug: color.New(color.FgCyan),
			LevelInfo:  color.New(color.FgBlue),
			LevelWarn:  color.New(color.FgYellow),
			LevelError: color.New(color.FgRed),
		},
		success:      color.New(color.FgGreen),
		enableColors: useColor,
	}

	return &ColoredLogger{StandardLogger: std}
}

// ColoredFormatter renders log entries with coloured levels when enabled.
type ColoredFormatter struct {
	timestampFormat string
	colors          map[Level]*color.Color
	success         *color.Color
	enableColors    bool
}

// Format converts the Entry into a coloured textual representation.
func (f *ColoredFormatter) Format(entry *Entry) ([]byte, error) {
	timestampFormat := f.timestampFormat
	if timestampFormat == "" {
		timestampFormat = "15:04:05"
	}

	timestamp := entry.Time.Format(timestampFormat)

	level := entry.Level.String()
	if f.enableColors {
		c := f.colors[entry.Level]
		if entry.Mark == "✓" && f.success != nil {
			c = f.success
		}
		if c != nil {
			level = c.Sprint(level)
		}
	}

	return formatEntry(entry, timestamp, level), nil
}

func supportsColor(w io.Writer) bool {
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}
