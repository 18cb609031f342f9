package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLLogger routes gorm statement logs to zap. Entries carry the request,
// tenant and trace IDs of the statement context and the statement kind.
// Bound values are left out unless enabled, since they hold customer
// contact details and amounts.
type SQLLogger struct {
	logger        *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	boundValues   bool
	reportMissing bool
}

var (
	_ gormlogger.Interface = (*SQLLogger)(nil)
	_ gorm.ParamsFilter    = (*SQLLogger)(nil)
)

// SQLLoggerOption configures a SQLLogger.
type SQLLoggerOption func(*SQLLogger)

// WithSlowThreshold sets the duration above which a statement is logged
// as slow. Zero disables slow statement warnings.
func WithSlowThreshold(threshold time.Duration) SQLLoggerOption {
	return func(l *SQLLogger) {
		l.slowThreshold = threshold
	}
}

// WithBoundValues includes bound values in the logged SQL.
func WithBoundValues(enabled bool) SQLLoggerOption {
	return func(l *SQLLogger) {
		l.boundValues = enabled
	}
}

// WithRecordNotFoundErrors logs lookups that matched no row as errors.
func WithRecordNotFoundErrors(enabled bool) SQLLoggerOption {
	return func(l *SQLLogger) {
		l.reportMissing = enabled
	}
}

// NewSQLLogger returns a gorm logger writing to zapLogger at level.
func NewSQLLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...SQLLoggerOption) *SQLLogger {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	l := &SQLLogger{
		logger:        zapLogger.Named("sql"),
		level:         level,
		slowThreshold: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	copied := *l
	copied.level = level
	return &copied
}

func (l *SQLLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.logger.Info(fmt.Sprintf(msg, data...), contextFields(ctx)...)
	}
}

func (l *SQLLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.logger.Warn(fmt.Sprintf(msg, data...), contextFields(ctx)...)
	}
}

func (l *SQLLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.logger.Error(fmt.Sprintf(msg, data...), contextFields(ctx)...)
	}
}

// ParamsFilter drops bound values from the SQL handed to Trace unless
// they were enabled.
func (l *SQLLogger) ParamsFilter(_ context.Context, sql string, params ...any) (string, []any) {
	if !l.boundValues {
		return sql, nil
	}
	return sql, params
}

// Trace logs one executed statement. Failures are errors, slow statements
// are warnings and everything else is debug output at the Info level.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	if err != nil && !l.reportMissing && errors.Is(err, gormlogger.ErrRecordNotFound) {
		err = nil
	}

	elapsed := time.Since(begin)
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold
	switch {
	case err != nil && l.level >= gormlogger.Error:
	case slow && l.level >= gormlogger.Warn:
	case err == nil && l.level >= gormlogger.Info:
	default:
		return
	}

	sql, rows := fc()
	fields := append([]zap.Field{
		zap.String("statement", statementKind(sql)),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}, contextFields(ctx)...)

	switch {
	case err != nil && l.level >= gormlogger.Error:
		l.logger.Error("SQL Error", append(fields, zap.Error(err))...)
	case slow && l.level >= gormlogger.Warn:
		l.logger.Warn(fmt.Sprintf("SLOW SQL >= %v", l.slowThreshold),
			append(fields, zap.Duration("threshold", l.slowThreshold))...)
	default:
		l.logger.Debug("SQL Query", fields...)
	}
}

func contextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	for _, key := range []contextKey{RequestIDKey, TenantIDKey} {
		if v := stringValue(ctx, key); v != "" {
			fields = append(fields, zap.String(string(key), v))
		}
	}
	return append(fields, traceFields(ctx)...)
}

// statementKind is the leading SQL keyword in lower case, e.g. "update".
func statementKind(sql string) string {
	word, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	return strings.ToLower(word)
}

// MapGormLogLevel maps the configured log level to a gorm log level.
// Only debug enables per-statement logging.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
