package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListKey(t *testing.T) {
	assert.Equal(t, "v=all:q=goa:p=2:n=10", ListKey("all", "goa", 2, 10))
	assert.NotEqual(t, ListKey("all", "goa", 1, 10), ListKey("all", "goa", 1, 20))
	assert.NotEqual(t, ListKey("all", "", 1, 10), ListKey("popular", "", 1, 10))
}

func TestCatalogKey(t *testing.T) {
	assert.Equal(t, "cache:catalog:hotels", catalogKey("hotels"))
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	var out []string

	hit, err := c.Get(context.Background(), "hotels", "k", &out)
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Set(context.Background(), "hotels", "k", []string{"a"}))
	assert.NoError(t, c.Invalidate(context.Background(), "hotels"))
}
