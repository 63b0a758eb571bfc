package observability

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/job-board/internal/config"
)

// NewLogger creates the service's JSON zap.Logger.
func NewLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	zapCfg := baseConfig(cfg.Level)
	zapCfg.Encoding = "json"
	zapCfg.OutputPaths = []string{"stdout"}
	return zapCfg.Build()
}

// NewCLILogger creates a console logger writing to stderr so command output stays clean.
func NewCLILogger(level string) (*zap.Logger, error) {
	zapCfg := baseConfig(level)
	zapCfg.Encoding = "console"
	zapCfg.OutputPaths = []string{"stderr"}
	return zapCfg.Build()
}

func baseConfig(levelName string) zap.Config {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(levelName)); err != nil {
		level = zapcore.InfoLevel
	}

	return zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:  "message",
			LevelKey:    "level",
			TimeKey:     "ts",
			EncodeLevel: zapcore.LowercaseLevelEncoder,
			EncodeTime:  zapcore.ISO8601TimeEncoder,
		},
		ErrorOutputPaths: []string{"stderr"},
	}
}
