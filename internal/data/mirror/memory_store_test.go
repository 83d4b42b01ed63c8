package mirror

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func rec(id string, version int64, status string) Record {
	return Record{
		Collection: CollectionBookings,
		ID:         id,
		Version:    version,
		Fields:     bson.M{"status": status},
	}
}

func TestMemoryStore_UpsertIsVersionGuarded(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Upsert(ctx, rec("b1", 2, "confirmed")))

	assert.ErrorIs(t, store.Upsert(ctx, rec("b1", 1, "pending")), ErrStale)
	assert.ErrorIs(t, store.Upsert(ctx, rec("b1", 2, "cancelled")), ErrStale)

	got, ok := store.Get(CollectionBookings, "b1")
	require.True(t, ok)
	assert.Equal(t, "confirmed", got.Fields["status"])

	require.NoError(t, store.Upsert(ctx, rec("b1", 3, "cancelled")))
	got, _ = store.Get(CollectionBookings, "b1")
	assert.Equal(t, int64(3), got.Version)
}

func TestMemoryStore_TombstoneBlocksLateWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id := uuid.New()

	require.NoError(t, store.Upsert(ctx, rec(id.String(), 1, "pending")))
	require.NoError(t, store.Upsert(ctx, Tombstone(CollectionBookings, id, 2)))

	// a delayed write of the pre-delete state must not resurrect the row
	assert.ErrorIs(t, store.Upsert(ctx, rec(id.String(), 1, "pending")), ErrStale)
	assert.Empty(t, store.Live(CollectionBookings))

	got, ok := store.Get(CollectionBookings, id.String())
	require.True(t, ok)
	assert.True(t, got.Deleted)
}

func TestMemoryStore_ClearLiveKeepsTombstones(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	gone := uuid.New()

	require.NoError(t, store.InsertMany(ctx, CollectionBookings, []Record{rec("a", 1, "pending"), rec("b", 1, "pending")}))
	require.NoError(t, store.Upsert(ctx, Tombstone(CollectionBookings, gone, 3)))
	assert.Len(t, store.Live(CollectionBookings), 2)

	require.NoError(t, store.ClearLive(ctx, CollectionBookings))
	assert.Empty(t, store.Live(CollectionBookings))

	got, ok := store.Get(CollectionBookings, gone.String())
	require.True(t, ok)
	assert.True(t, got.Deleted)
	assert.ErrorIs(t, store.Upsert(ctx, rec(gone.String(), 2, "pending")), ErrStale)
}

func TestRecord_Document(t *testing.T) {
	doc := rec("b1", 4, "pending").Document()

	assert.Equal(t, "b1", doc["_id"])
	assert.Equal(t, int64(4), doc["version"])
	assert.Equal(t, false, doc["deleted"])
	assert.Equal(t, "pending", doc["status"])
}
