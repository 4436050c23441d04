package practice

// Logger is the structured logger the client components write to. The
// application's zap-backed logger satisfies it.
type Logger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
}
