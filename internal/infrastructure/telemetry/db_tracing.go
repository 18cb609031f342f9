package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled            bool
	DBName             string
	LogQueryVariables  bool // include bound values in db.statement (dev only)
	SlowQueryThreshold time.Duration
}

// DefaultDBTracingConfig returns the configuration used when none is given.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:            false,
		DBName:             "postgresql",
		SlowQueryThreshold: 200 * time.Millisecond,
	}
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// RegisterDBTracing installs the otelgorm plugin on db plus callbacks that
// annotate each query span with rows affected, table and slow-query events.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger, opts ...otelgorm.Option) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts = append([]otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}, opts...)
	if !cfg.LogQueryVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	annotator := &queryAnnotator{slowQueryThreshold: cfg.SlowQueryThreshold}
	if err := annotator.register(db); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("db_name", cfg.DBName),
		zap.Bool("log_query_variables", cfg.LogQueryVariables),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold),
	)
	return nil
}

type queryAnnotator struct {
	slowQueryThreshold time.Duration
}

func (a *queryAnnotator) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

func (a *queryAnnotator) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		RecordError(span, db.Error)
	}

	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok || a.slowQueryThreshold <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed > a.slowQueryThreshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", a.slowQueryThreshold.Milliseconds()),
		))
	}
}

// register places before inside otelgorm's span and after just ahead of
// otelgorm ending it. otelgorm names its query hooks "select".
func (a *queryAnnotator) register(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		callback interface {
			Register(string, func(*gorm.DB)) error
		}
		hook func(*gorm.DB)
		name string
	}{
		{cb.Create().Before("gorm:create").After("otel:before:create"), a.before, "before:create"},
		{cb.Query().Before("gorm:query").After("otel:before:select"), a.before, "before:query"},
		{cb.Update().Before("gorm:update").After("otel:before:update"), a.before, "before:update"},
		{cb.Delete().Before("gorm:delete").After("otel:before:delete"), a.before, "before:delete"},
		{cb.Row().Before("gorm:row").After("otel:before:row"), a.before, "before:row"},
		{cb.Raw().Before("gorm:raw").After("otel:before:raw"), a.before, "before:raw"},

		{cb.Create().After("gorm:create").Before("otel:after:create"), a.after, "after:create"},
		{cb.Query().After("gorm:query").Before("otel:after:select"), a.after, "after:query"},
		{cb.Update().After("gorm:update").Before("otel:after:update"), a.after, "after:update"},
		{cb.Delete().After("gorm:delete").Before("otel:after:delete"), a.after, "after:delete"},
		{cb.Row().After("gorm:row").Before("otel:after:row"), a.after, "after:row"},
		{cb.Raw().After("gorm:raw").Before("otel:after:raw"), a.after, "after:raw"},
	}
	for _, h := range hooks {
		if err := h.callback.Register("invoicing:"+h.name, h.hook); err != nil {
			return err
		}
	}
	return nil
}
