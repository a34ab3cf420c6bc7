package multires

import (
	"sync"
	"testing"

	"github.com/airbusgeo/imagefusion/internal/ferr"
	"github.com/airbusgeo/imagefusion/pixel"
	"github.com/stretchr/testify/require"
)

func stub(t *testing.T) *pixel.Image {
	t.Helper()
	img, err := pixel.New(1, 1, 1, pixel.U8)
	require.NoError(t, err)
	return img
}

func TestSetGetHasRoundTrip(t *testing.T) {
	c := New()
	require.False(t, c.Has("high", 1))

	img := stub(t)
	c.Set("high", 1, img)
	require.True(t, c.Has("high", 1))
	got, err := c.Get("high", 1)
	require.NoError(t, err)
	require.Same(t, img, got)
}

func TestGetMissingIsNotFound(t *testing.T) {
	c := New()
	_, err := c.Get("high", 1)
	require.True(t, ferr.IsKind(err, ferr.NotFound))
}

func TestSetReplacesPriorEntry(t *testing.T) {
	c := New()
	c.Set("high", 1, stub(t))
	second := stub(t)
	c.Set("high", 1, second)
	got, err := c.Get("high", 1)
	require.NoError(t, err)
	require.Same(t, second, got)
}

func TestRemoveDeletesAcrossAllTags(t *testing.T) {
	c := New()
	c.Set("high", 1, stub(t))
	c.Set("low", 1, stub(t))
	c.Set("low", 2, stub(t))

	c.Remove(1)
	require.False(t, c.Has("high", 1))
	require.False(t, c.Has("low", 1))
	require.True(t, c.Has("low", 2))
}

func TestDatesIsSortedAndScopedToTag(t *testing.T) {
	c := New()
	c.Set("low", 30, stub(t))
	c.Set("low", 10, stub(t))
	c.Set("low", 20, stub(t))
	c.Set("high", 99, stub(t))

	require.Equal(t, []int64{10, 20, 30}, c.Dates("low"))
	require.Equal(t, []int64{99}, c.Dates("high"))
	require.Nil(t, c.Dates("missing"))
}

func TestGetAnyOnEmptyContainer(t *testing.T) {
	c := New()
	_, ok := c.GetAny()
	require.False(t, ok)
}

func TestGetAnyReturnsAStoredImage(t *testing.T) {
	c := New()
	c.Set("high", 1, stub(t))
	img, ok := c.GetAny()
	require.True(t, ok)
	require.NotNil(t, img)
}

func TestConcurrentAccessDoesNotRace(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		date := int64(i)
		go func() {
			defer wg.Done()
			c.Set("tag", date, stub(t))
		}()
		go func() {
			defer wg.Done()
			c.Has("tag", date)
			c.Dates("tag")
		}()
	}
	wg.Wait()
}
