package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

// useRecorder installs a recording provider globally for the duration of the test
func useRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return tp, recorder
}

func attr(kvs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range kvs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := setupTestDB(t)
	_, recorder := useRecorder(t)

	require.NoError(t, NewDBTracingPlugin(DBTracingConfig{}, zaptest.NewLogger(t)).Register(db))
	require.NoError(t, db.Create(&tracedRow{Name: "plain"}).Error)

	assert.Empty(t, recorder.Ended())
}

func TestDBTracingPlugin_RecordsQuerySpans(t *testing.T) {
	db := setupTestDB(t)
	tp, recorder := useRecorder(t)

	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zaptest.NewLogger(t))
	require.NoError(t, plugin.Register(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "request")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "milk"}).Error)
	var found tracedRow
	require.NoError(t, db.WithContext(ctx).First(&found, "name = ?", "milk").Error)
	span.End()

	spans := recorder.Ended()
	require.Greater(t, len(spans), 1)

	var sawTable bool
	for _, s := range spans {
		if v, ok := attr(s.Attributes(), "db.sql.table"); ok && v.AsString() == "traced_rows" {
			sawTable = true
		}
	}
	assert.True(t, sawTable, "query spans carry the table name")
}

func TestDBTracingPlugin_MarksErrors(t *testing.T) {
	db := setupTestDB(t)
	tp, recorder := useRecorder(t)
	require.NoError(t, NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zaptest.NewLogger(t)).Register(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "request")
	err := db.WithContext(ctx).Exec("SELECT * FROM missing_table").Error
	require.Error(t, err)
	span.End()

	var errored bool
	for _, s := range recorder.Ended() {
		if s.Status().Code == codes.Error {
			errored = true
		}
	}
	assert.True(t, errored)
}

func TestDBTracingPlugin_NotFoundIsNotAnError(t *testing.T) {
	db := setupTestDB(t)
	tp, recorder := useRecorder(t)
	require.NoError(t, NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zaptest.NewLogger(t)).Register(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "request")
	var row tracedRow
	require.ErrorIs(t, db.WithContext(ctx).First(&row, 999).Error, gorm.ErrRecordNotFound)
	span.End()

	for _, s := range recorder.Ended() {
		assert.NotEqual(t, codes.Error, s.Status().Code, s.Name())
	}
}

func TestDBTracingPlugin_FlagsSlowQueries(t *testing.T) {
	db := setupTestDB(t)
	tp, recorder := useRecorder(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Nanosecond}, zaptest.NewLogger(t))
	require.NoError(t, plugin.Register(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "request")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "slow"}).Error)
	span.End()

	var slow bool
	for _, s := range recorder.Ended() {
		if v, ok := attr(s.Attributes(), "db.slow_query"); ok && v.AsBool() {
			slow = true
		}
	}
	assert.True(t, slow)
}

func TestDBTracingPlugin_DoubleRegistrationFails(t *testing.T) {
	db := setupTestDB(t)
	useRecorder(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zaptest.NewLogger(t))

	require.NoError(t, plugin.Register(db))
	assert.Error(t, plugin.Register(db))
}
