package redcoll

// Fields carry structured context for a log line, e.g. {"key": "refs"}.
type Fields map[string]any

// Logger receives the few events worth logging: dropped references and
// cache heals at Debug, cache and revision store failures at Warn or Error.
// Adapters for zap, logrus and slog live under log/.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

// NopLogger discards everything. It is used when no Logger is configured.
type NopLogger struct{}

var _ Logger = NopLogger{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}
