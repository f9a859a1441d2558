package easyexpr

import "go.uber.org/zap"

var log = zap.NewNop().Sugar()

// SetLogger sets the package logger. nil switches logging off
func SetLogger(logger *zap.SugaredLogger) {
	if logger == nil {
		log = zap.NewNop().Sugar()
		return
	}
	log = logger.Named("easyexpr")
}
