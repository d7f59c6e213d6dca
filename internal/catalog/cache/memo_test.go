package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	catalogdomain "github.com/smallbiznis/counterreport/internal/catalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingCatalog serves titles from a map and counts store reads.
type countingCatalog struct {
	mu       sync.Mutex
	titles   map[string]catalogdomain.Title
	resolves map[string]int
	lists    int
}

func newCountingCatalog(titles ...catalogdomain.Title) *countingCatalog {
	c := &countingCatalog{titles: map[string]catalogdomain.Title{}, resolves: map[string]int{}}
	for _, t := range titles {
		c.titles[t.ID] = t
	}
	return c
}

func (c *countingCatalog) Resolve(_ context.Context, id string) (catalogdomain.Title, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolves[id]++
	title, ok := c.titles[id]
	if !ok {
		return catalogdomain.Title{}, fmt.Errorf("%s: %w", id, catalogdomain.ErrTitleNotFound)
	}
	return title, nil
}

func (c *countingCatalog) ListByPress(_ context.Context, press string) ([]catalogdomain.Title, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists++
	var out []catalogdomain.Title
	for _, t := range c.titles {
		if t.Press == press {
			out = append(out, t)
		}
	}
	return out, nil
}

func (c *countingCatalog) resolveCount(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolves[id]
}

func TestMemoResolvesOncePerTitle(t *testing.T) {
	inner := newCountingCatalog(catalogdomain.Title{ID: "t1", Press: "heb", Title: "First"})
	memo := NewMemo(inner)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		title, err := memo.Resolve(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "First", title.Title)
	}
	assert.Equal(t, 1, inner.resolveCount("t1"))
}

func TestMemoRemembersMisses(t *testing.T) {
	inner := newCountingCatalog()
	memo := NewMemo(inner)
	ctx := context.Background()

	_, err := memo.Resolve(ctx, "gone")
	assert.ErrorIs(t, err, catalogdomain.ErrTitleNotFound)
	_, err = memo.Resolve(ctx, "gone")
	assert.ErrorIs(t, err, catalogdomain.ErrTitleNotFound)
	assert.Equal(t, 1, inner.resolveCount("gone"))
}

func TestMemoSkipsCanceledLookups(t *testing.T) {
	inner := newCountingCatalog(catalogdomain.Title{ID: "t1"})
	memo := NewMemo(inner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _ = memo.Resolve(ctx, "t1")
	_, err := memo.Resolve(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.resolveCount("t1"))
}

func TestMemoListByPressPrimesEntries(t *testing.T) {
	inner := newCountingCatalog(
		catalogdomain.Title{ID: "t1", Press: "heb"},
		catalogdomain.Title{ID: "t2", Press: "heb"},
		catalogdomain.Title{ID: "x1", Press: "other"},
	)
	memo := NewMemo(inner)
	ctx := context.Background()

	titles, err := memo.ListByPress(ctx, "heb")
	require.NoError(t, err)
	assert.Len(t, titles, 2)

	_, err = memo.Resolve(ctx, "t2")
	require.NoError(t, err)
	assert.Zero(t, inner.resolveCount("t2"))
}
