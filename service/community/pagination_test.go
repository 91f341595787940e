package community

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pawfeed/pawfeed-server/cmd/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFeed_SliceBoundaries(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := service.CreatePost(ctx, 1, fmt.Sprintf("post %d", i), nil)
		require.NoError(t, err)
	}

	first, err := service.ListFeed(ctx, 2, PageRequest{Page: 0, Size: 20})
	require.NoError(t, err)
	assert.Len(t, first.Content, 20)
	assert.Equal(t, 0, first.PageNumber)
	assert.Equal(t, 20, first.PageSize)
	assert.True(t, first.First)
	assert.False(t, first.Last)
	assert.True(t, first.HasNext)

	second, err := service.ListFeed(ctx, 2, PageRequest{Page: 1, Size: 20})
	require.NoError(t, err)
	assert.Len(t, second.Content, 5)
	assert.False(t, second.First)
	assert.True(t, second.Last)
	assert.False(t, second.HasNext)

	// No row duplicated or skipped across the two pages.
	seen := map[uint]bool{}
	for _, item := range append(first.Content, second.Content...) {
		assert.False(t, seen[item.ID], "post %d appeared twice", item.ID)
		seen[item.ID] = true
	}
	assert.Len(t, seen, 25)
}

func TestListFeed_NewestFirstWithIDTiebreak(t *testing.T) {
	service, store, _ := newTestService()
	ctx := context.Background()

	// Three posts sharing one timestamp plus a newer one.
	sameMoment := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		post := &models.Post{AuthorID: 1, Content: "same instant", CreatedAt: sameMoment}
		require.NoError(t, store.CreatePost(ctx, post))
	}
	newest := &models.Post{AuthorID: 1, Content: "latest", CreatedAt: sameMoment.Add(time.Minute)}
	require.NoError(t, store.CreatePost(ctx, newest))

	slice, err := service.ListFeed(ctx, 0, PageRequest{})
	require.NoError(t, err)
	require.Len(t, slice.Content, 4)

	assert.Equal(t, newest.ID, slice.Content[0].ID)
	// Equal timestamps fall back to id descending.
	assert.Equal(t, uint(3), slice.Content[1].ID)
	assert.Equal(t, uint(2), slice.Content[2].ID)
	assert.Equal(t, uint(1), slice.Content[3].ID)
}

func TestListFeed_BlocklistFiltersAuthors(t *testing.T) {
	service, _, blocklist := newTestService()
	ctx := context.Background()

	_, err := service.CreatePost(ctx, 1, "from author 1", nil)
	require.NoError(t, err)
	_, err = service.CreatePost(ctx, 2, "from author 2", nil)
	require.NoError(t, err)
	_, err = service.CreatePost(ctx, 3, "from author 3", nil)
	require.NoError(t, err)

	blocklist.blocked[9] = []uint{1, 3}

	slice, err := service.ListFeed(ctx, 9, PageRequest{})
	require.NoError(t, err)
	require.Len(t, slice.Content, 1)
	assert.Equal(t, uint(2), slice.Content[0].Author.ID)

	// An anonymous reader has no blocklist.
	slice, err = service.ListFeed(ctx, 0, PageRequest{})
	require.NoError(t, err)
	assert.Len(t, slice.Content, 3)
}

func TestListFeed_LikedFlags(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	liked, err := service.CreatePost(ctx, 1, "liked one", nil)
	require.NoError(t, err)
	_, err = service.CreatePost(ctx, 1, "ignored one", nil)
	require.NoError(t, err)

	_, err = service.ToggleLike(ctx, 5, liked.ID)
	require.NoError(t, err)

	slice, err := service.ListFeed(ctx, 5, PageRequest{})
	require.NoError(t, err)
	require.Len(t, slice.Content, 2)

	for _, item := range slice.Content {
		if item.ID == liked.ID {
			assert.True(t, item.Liked)
			assert.Equal(t, 1, item.LikeCount)
		} else {
			assert.False(t, item.Liked)
		}
	}

	// Another actor sees the counter but not the flag.
	slice, err = service.ListFeed(ctx, 6, PageRequest{})
	require.NoError(t, err)
	for _, item := range slice.Content {
		assert.False(t, item.Liked)
	}
}

func TestListFeed_Defaults(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	_, err := service.CreatePost(ctx, 1, "only one", nil)
	require.NoError(t, err)

	slice, err := service.ListFeed(ctx, 0, PageRequest{Page: -3, Size: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, slice.PageNumber)
	assert.Equal(t, DefaultPageSize, slice.PageSize)

	slice, err = service.ListFeed(ctx, 0, PageRequest{Size: MaxPageSize + 50})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, slice.PageSize)
}
