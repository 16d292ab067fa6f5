package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQueryThreshold marks a statement as slow in the SQL log.
const DefaultSlowQueryThreshold = 200 * time.Millisecond

// GormConfig builds GORM's logger settings from the database log level name.
// With redactParams, logged SQL keeps its placeholders so applicant data stays out of the logs.
func GormConfig(level string, redactParams bool) gormlogger.Config {
	return gormlogger.Config{
		LogLevel:                  MapGormLogLevel(level),
		SlowThreshold:             DefaultSlowQueryThreshold,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      redactParams,
	}
}

// MapGormLogLevel maps a config level name to a GORM log level; unknown names map to warn
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// GormLogger writes GORM's statement log through zap with the request fields from ctx.
// Colorful in its config is ignored.
type GormLogger struct {
	log *zap.Logger
	cfg gormlogger.Config
}

var (
	_ gormlogger.Interface = (*GormLogger)(nil)
	_ gorm.ParamsFilter    = (*GormLogger)(nil)
)

// NewGormLogger creates the logger under the "gorm" name.
func NewGormLogger(log *zap.Logger, cfg gormlogger.Config) *GormLogger {
	return &GormLogger{log: log.Named("gorm"), cfg: cfg}
}

// LogMode returns a copy at another level.
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *l
	c.cfg.LogLevel = level
	return &c
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.cfg.LogLevel >= gormlogger.Info {
		WithLogger(ctx, l.log).Zap().Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.cfg.LogLevel >= gormlogger.Warn {
		WithLogger(ctx, l.log).Zap().Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.cfg.LogLevel >= gormlogger.Error {
		WithLogger(ctx, l.log).Zap().Sugar().Errorf(msg, data...)
	}
}

// ParamsFilter drops bound values from logged SQL when queries are parameterized.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, params ...any) (string, []any) {
	if l.cfg.ParameterizedQueries {
		return sql, nil
	}
	return sql, params
}

// Trace logs one statement: failures at error, slow statements at warn and the
// rest at debug when the level is Info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	level := l.cfg.LogLevel
	if level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	slow := l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold

	var emit func(string, ...zap.Field)
	msg := "SQL statement"
	log := WithLogger(ctx, l.log)
	switch {
	case err != nil && level >= gormlogger.Error:
		if l.cfg.IgnoreRecordNotFoundError && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		emit, msg = log.Error, "SQL statement failed"
	case slow && level >= gormlogger.Warn:
		emit, msg = log.Warn, "Slow SQL statement"
	case level >= gormlogger.Info:
		emit = log.Debug
	default:
		return
	}

	sql, rows := fc()
	fields := []zap.Field{zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql)}
	if slow {
		fields = append(fields, zap.Duration("slow_threshold", l.cfg.SlowThreshold))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	emit(msg, fields...)
}
