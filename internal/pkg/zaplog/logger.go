// Package zaplog adapts zap to the kratos log.Logger interface.
package zaplog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"linktrack/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var _ log.Logger = (*Logger)(nil)

// Logger writes kratos key/value records through a zap.Logger.
type Logger struct {
	zap    *zap.Logger
	msgKey string
}

// NewLogger wraps an existing zap logger.
func NewLogger(z *zap.Logger) *Logger {
	return &Logger{zap: z, msgKey: log.DefaultMessageKey}
}

// New builds a JSON zap logger from c. Records go to stdout, or to a rotating
// file when c.File is set.
func New(c *conf.Log) (*Logger, error) {
	level := zapcore.InfoLevel
	var sink io.Writer = os.Stdout

	if c != nil {
		if c.Level != "" {
			if err := level.UnmarshalText([]byte(strings.ToLower(c.Level))); err != nil {
				return nil, fmt.Errorf("parse log level %q: %w", c.Level, err)
			}
		}
		if c.File != "" {
			sink = &lumberjack.Logger{
				Filename:   c.File,
				MaxSize:    c.MaxSizeMb,
				MaxBackups: c.MaxBackups,
				MaxAge:     c.MaxAgeDays,
				Compress:   true,
			}
		}
	}

	return NewLogger(zap.New(newCore(sink, level))), nil
}

func newCore(w io.Writer, level zapcore.LevelEnabler) zapcore.Core {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = ""
	encoderCfg.LevelKey = "level"
	encoderCfg.MessageKey = log.DefaultMessageKey
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder

	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(w), level)
}

// Log implements log.Logger. The message key, when present, becomes the zap
// message; every other pair becomes a field.
func (l *Logger) Log(level log.Level, keyvals ...any) error {
	if len(keyvals) == 0 {
		return nil
	}
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "KEYVALS UNPAIRED")
	}

	var msg string
	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if key == l.msgKey {
			msg = fmt.Sprint(keyvals[i+1])
			continue
		}
		fields = append(fields, zap.Any(key, keyvals[i+1]))
	}

	switch level {
	case log.LevelDebug:
		l.zap.Debug(msg, fields...)
	case log.LevelInfo:
		l.zap.Info(msg, fields...)
	case log.LevelWarn:
		l.zap.Warn(msg, fields...)
	case log.LevelError:
		l.zap.Error(msg, fields...)
	case log.LevelFatal:
		l.zap.Fatal(msg, fields...)
	default:
		l.zap.Info(msg, fields...)
	}
	return nil
}

// Sync flushes buffered records.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}
