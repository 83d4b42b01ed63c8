package mirror

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCatalogTombstone(t *testing.T) {
	id := uuid.New()
	updated := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	rec := CatalogTombstone(CollectionHotels, id, updated, updated.Add(time.Minute))
	assert.True(t, rec.Deleted)
	assert.Equal(t, id.String(), rec.ID)
	assert.Equal(t, updated.Add(time.Minute).UnixMicro(), rec.Version)

	skewed := CatalogTombstone(CollectionHotels, id, updated, updated.Add(-time.Second))
	assert.Equal(t, updated.UnixMicro()+1, skewed.Version)
}
