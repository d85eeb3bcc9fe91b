package types

type RunMode string

const (
	// ModeLocal runs a billing pass against local stores
	ModeLocal RunMode = "local"
	// ModeProduction runs a billing pass against the configured databases
	ModeProduction RunMode = "production"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
