package logger

// NopLogger discards all log output. Used by tests and as a safe default.
type NopLogger struct {
	level Level
}

// NewNopLogger returns a logger that drops every entry.
func NewNopLogger() *NopLogger {
	return &NopLogger{level: LevelInfo}
}

func (n *NopLogger) Debug(format string, args ...interface{})   {}
func (n *NopLogger) Info(format string, args ...interface{})    {}
func (n *NopLogger) Warn(format string, args ...interface{})    {}
func (n *NopLogger) Error(format string, args ...interface{})   {}
func (n *NopLogger) Success(format string, args ...interface{}) {}
func (n *NopLogger) Progress(operation string)                  {}
func (n *NopLogger) ProgressDone(operation string)              {}

func (n *NopLogger) SetLevel(level Level) { n.level = level }
func (n *NopLogger) GetLevel() Level      { return n.level }

var _ Logger = (*NopLogger)(nil)
