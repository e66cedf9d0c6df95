package core

// Logger reports application events to stdout and, when enabled, to the
// external error tracker.
// expected args fmt: error, map[string]interface{}, user.User
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
