package types

// RunMode selects which parts of the process are started: the REST API,
// the background scheduler, or both for local development.
type RunMode string

const (
	ModeLocal     RunMode = "local"
	ModeAPI       RunMode = "api"
	ModeScheduler RunMode = "scheduler"
)

func (m RunMode) Validate() bool {
	switch m {
	case ModeLocal, ModeAPI, ModeScheduler:
		return true
	}
	return false
}

// LogLevel is the logging level for the application
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func (l LogLevel) Validate() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	}
	return false
}

const (
	HeaderRequestID = "X-Request-ID"
	HeaderAPIKey    = "x-api-key"
)
