package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel определяет уровень важности сообщения
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// Logger - обертка над zap.SugaredLogger для структурированного логирования
type Logger struct {
	*zap.SugaredLogger
}

// New создает новый экземпляр Logger с заданным уровнем
func New(level LogLevel) *Logger {
	cfg := zap.NewProductionConfig()
	if level == DEBUG {
		// В режиме отладки используем человекочитаемый формат
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// Стектрейсы на уровне Warn только шумят в логах
	cfg.DisableStacktrace = true

	zl, err := cfg.Build()
	if err != nil {
		// Build с валидной конфигурацией не падает, но на всякий случай
		zl = zap.NewNop()
	}

	return &Logger{SugaredLogger: zl.Sugar()}
}

// ParseLevel преобразует строковое представление уровня в LogLevel
func ParseLevel(s string) LogLevel {
	switch s {
	case "debug":
		return DEBUG
	case "warn":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// With возвращает логгер с дополнительными постоянными полями
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(keysAndValues...)}
}

// zapLevel преобразует LogLevel в уровень zap
func zapLevel(level LogLevel) zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
