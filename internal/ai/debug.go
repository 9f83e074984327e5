package ai

import "sync/atomic"

// debugLoggingEnabled gates hot-path debug logs in thinks and notifications.
// Checking an atomic is much cheaper than building slog attributes that the
// handler would then discard.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables brain debug logging.
// Called from main after the log level is known, and again on config reload.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if debug logging is enabled.
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("brain state changed", "npc", name, "to", state)
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
