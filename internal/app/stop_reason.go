package app

// StopReason is logged when the agent shuts down.
type StopReason string

const (
	StopRequested       StopReason = "requested"
	StopShutdownCommand StopReason = "shutdown_command"
	StopFatalError      StopReason = "fatal_error"
)
