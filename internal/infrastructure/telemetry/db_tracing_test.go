package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedProduct struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func openTracedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedProduct{}))
	return db
}

// parentSpan starts a recorded span the statement callbacks can annotate.
func parentSpan(t *testing.T) (context.Context, *tracetest.SpanRecorder, func()) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "db")
	return ctx, sr, func() { span.End() }
}

func TestInstrumentGorm(t *testing.T) {
	t.Run("disabled leaves callbacks alone", func(t *testing.T) {
		db := openTracedDB(t)
		require.NoError(t, InstrumentGorm(db, DBTracing{}, zap.NewNop()))
		assert.Nil(t, db.Callback().Query().Get("storefront:span_notes:query"))
		assert.Nil(t, db.Callback().Query().Get("otel:after:query"))
	})

	t.Run("enabled installs otelgorm and notes", func(t *testing.T) {
		db := openTracedDB(t)
		require.NoError(t, InstrumentGorm(db, DBTracing{Enabled: true, System: "sqlite"}, zap.NewNop()))
		assert.NotNil(t, db.Callback().Query().Get("storefront:span_notes:query"))
		assert.NotNil(t, db.Callback().Create().Get("storefront:span_notes:create"))

		require.NoError(t, db.Create(&tracedProduct{Name: "Amigurumi"}).Error)
	})
}

func TestSpanNotes_SlowQuery(t *testing.T) {
	db := openTracedDB(t)
	require.NoError(t, annotateQueries(db, time.Nanosecond))

	ctx, sr, end := parentSpan(t)
	require.NoError(t, db.WithContext(ctx).Create(&tracedProduct{Name: "Bolsa"}).Error)
	end()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	attrs := map[attribute.Key]attribute.Value{}
	for _, a := range spans[0].Attributes() {
		attrs[a.Key] = a.Value
	}
	assert.Equal(t, int64(1), attrs["db.rows_affected"].AsInt64())
	assert.Equal(t, "traced_products", attrs["db.sql.table"].AsString())
	assert.True(t, attrs["db.slow_query"].AsBool())
	require.NotEmpty(t, spans[0].Events())
	assert.Equal(t, "slow_query", spans[0].Events()[0].Name)
}

func TestSpanNotes_FailuresButNotMisses(t *testing.T) {
	db := openTracedDB(t)
	require.NoError(t, annotateQueries(db, time.Hour))

	t.Run("record not found", func(t *testing.T) {
		ctx, sr, end := parentSpan(t)
		var p tracedProduct
		require.ErrorIs(t, db.WithContext(ctx).First(&p, 999).Error, gorm.ErrRecordNotFound)
		end()
		assert.Equal(t, codes.Unset, sr.Ended()[0].Status().Code)
	})

	t.Run("sql error", func(t *testing.T) {
		ctx, sr, end := parentSpan(t)
		require.Error(t, db.WithContext(ctx).Exec("SELECT * FROM missing_table").Error)
		end()
		assert.Equal(t, codes.Error, sr.Ended()[0].Status().Code)
	})
}
