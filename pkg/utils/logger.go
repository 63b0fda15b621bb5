package utils

import "go.uber.org/zap"

// NewLogger returns the zap logger for the given mode. Debug selects the
// development config (human-readable, debug level); otherwise the production
// config (JSON, info level).
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
