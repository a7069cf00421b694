package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"quizdesk/internal/config"
)

// New builds the process logger. Production output is JSON; anything else
// gets the human-readable development encoder.
func New(cfg config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Log.Env == "production" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Log.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	// the terminal UI owns stdout
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}
