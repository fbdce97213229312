package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSlowQuery is the duration above which a query span is flagged.
const DefaultSlowQuery = 200 * time.Millisecond

// DBTracing configures spans for GORM statements. System is the db.system
// value ("postgresql" or "sqlite"). WithVariables keeps bound parameters in
// the span; it exposes customer data and is meant for development only.
type DBTracing struct {
	Enabled       bool
	System        string
	WithVariables bool
	SlowQuery     time.Duration
}

// InstrumentGorm installs otelgorm on db and annotates its spans with row
// counts, failures and slowness. Disabled configs leave db untouched.
func InstrumentGorm(db *gorm.DB, cfg DBTracing, log *zap.Logger) error {
	if !cfg.Enabled {
		log.Debug("Database tracing disabled")
		return nil
	}
	if cfg.SlowQuery <= 0 {
		cfg.SlowQuery = DefaultSlowQuery
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.System)}
	if !cfg.WithVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("install otelgorm: %w", err)
	}
	if err := annotateQueries(db, cfg.SlowQuery); err != nil {
		return err
	}

	log.Info("Database tracing enabled",
		zap.String("db_system", cfg.System),
		zap.Duration("slow_query", cfg.SlowQuery),
		zap.Bool("with_variables", cfg.WithVariables),
	)
	return nil
}

type gormRegister func(name string, fn func(*gorm.DB)) error

// annotateQueries hooks spanNotes in after each GORM operation and ahead of
// otelgorm's own after hook, which ends the span.
func annotateQueries(db *gorm.DB, slow time.Duration) error {
	cb := db.Callback()
	hooks := map[string]gormRegister{
		"create": cb.Create().After("gorm:create").Before("otel:after:create").Register,
		"query":  cb.Query().After("gorm:query").Before("otel:after:query").Register,
		"update": cb.Update().After("gorm:update").Before("otel:after:update").Register,
		"delete": cb.Delete().After("gorm:delete").Before("otel:after:delete").Register,
		"row":    cb.Row().After("gorm:row").Before("otel:after:row").Register,
		"raw":    cb.Raw().After("gorm:raw").Before("otel:after:raw").Register,
	}
	notes := spanNotes(slow)
	for op, register := range hooks {
		if err := register("storefront:span_notes:"+op, notes); err != nil {
			return fmt.Errorf("register %s span notes: %w", op, err)
		}
	}
	return nil
}

// startTimer is implemented by SDK spans.
type startTimer interface {
	StartTime() time.Time
}

func spanNotes(slow time.Duration) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Statement.Context == nil {
			return
		}
		span := trace.SpanFromContext(db.Statement.Context)
		if !span.IsRecording() {
			return
		}

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if err := db.Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(span, err)
		}

		st, ok := span.(startTimer)
		if !ok {
			return
		}
		if took := time.Since(st.StartTime()); took > slow {
			span.SetAttributes(attribute.Bool("db.slow_query", true))
			span.AddEvent("slow_query", trace.WithAttributes(
				attribute.Int64("duration_ms", took.Milliseconds()),
				attribute.Int64("threshold_ms", slow.Milliseconds()),
			))
		}
	}
}
