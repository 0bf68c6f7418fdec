package service

import "time"

const (
	DefaultSweepInterval    = 5 * time.Second
	DefaultMaxConcurrent    = 10
	DefaultGatewayTimeout   = 10 * time.Second
	DefaultEntryEmoji       = "🎉"
	stopTimeout             = 30 * time.Second
	completionTriggerSweep  = "sweep"
	completionTriggerManual = "manual"
)
