package sink

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitalwatch/telemetry-agent/internal/event"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sink.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_InsertBatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inserted, err := store.InsertBatch(ctx, validEvents(5))
	require.NoError(t, err)
	assert.Equal(t, 5, inserted)

	count, err := store.CountEvents(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestSQLiteStore_InsertBatchEmpty(t *testing.T) {
	store := newTestStore(t)

	inserted, err := store.InsertBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestSQLiteStore_SequencePreservesOrderAcrossBatches(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := validEvents(2)
	first[0].Custom.Name = "a"
	first[1].Custom.Name = "b"
	second := validEvents(2)
	second[0].Custom.Name = "c"
	second[1].Custom.Name = "d"

	_, err := store.InsertBatch(ctx, first)
	require.NoError(t, err)
	_, err = store.InsertBatch(ctx, second)
	require.NoError(t, err)

	rows, err := store.db.QueryContext(ctx, `SELECT payload_json FROM events ORDER BY seq`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var payload string
		require.NoError(t, rows.Scan(&payload))

		var e event.Event
		require.NoError(t, json.Unmarshal([]byte(payload), &e))
		names = append(names, e.Custom.Name)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, []string{"a", "b", "c", "d"}, names)
}

func TestSQLiteStore_CountByKind(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	events := validEvents(3)
	events[0].Kind = event.KindPageView
	events[0].Custom = nil
	events[0].PageView = &event.PageViewData{Title: "Home", ViewID: "v1"}

	_, err := store.InsertBatch(ctx, events)
	require.NoError(t, err)

	pageViews, err := store.CountEvents(ctx, string(event.KindPageView))
	require.NoError(t, err)
	assert.Equal(t, 1, pageViews)

	custom, err := store.CountEvents(ctx, string(event.KindCustom))
	require.NoError(t, err)
	assert.Equal(t, 2, custom)
}

func TestSQLiteStore_RejectsUnknownKind(t *testing.T) {
	store := newTestStore(t)

	events := validEvents(1)
	events[0].Kind = "clickstream"

	_, err := store.InsertBatch(context.Background(), events)
	assert.Error(t, err, "the kind CHECK constraint holds")
}

func TestSQLiteStore_Ping(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
