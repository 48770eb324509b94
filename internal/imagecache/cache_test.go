package imagecache

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/seerrpad/internal/domain"
)

func solid(c uint8) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color.RGBA{R: c, G: c, B: c, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// pngHeader is a PNG signature plus IHDR claiming w x h, with no pixel data
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := make([]byte, 0, 17)
	chunk = append(chunk, "IHDR"...)
	chunk = binary.BigEndian.AppendUint32(chunk, w)
	chunk = binary.BigEndian.AppendUint32(chunk, h)
	chunk = append(chunk, 8, 0, 0, 0, 0) // 8-bit grayscale

	binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func urlN(i int) string {
	return fmt.Sprintf("https://image.tmdb.org/t/p/w500/poster%d.jpg", i)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	const capacity = 5
	c := New(capacity, nil, nil, nil)

	for i := 0; i <= capacity; i++ {
		c.Insert(urlN(i), solid(uint8(i)))
	}

	assert.Equal(t, capacity, c.Len())
	assert.False(t, c.Contains(urlN(0)), "first inserted key should be evicted")
	for i := 1; i <= capacity; i++ {
		assert.True(t, c.Contains(urlN(i)))
	}
	assert.Equal(t, 1, c.Stats().Evictions)
}

func TestCache_AccessProtectsFromEviction(t *testing.T) {
	c := New(3, nil, nil, nil)
	c.Insert(urlN(0), solid(0))
	c.Insert(urlN(1), solid(1))
	c.Insert(urlN(2), solid(2))

	_, ok := c.Lookup(urlN(0))
	require.True(t, ok)

	c.Insert(urlN(3), solid(3))

	assert.True(t, c.Contains(urlN(0)))
	assert.False(t, c.Contains(urlN(1)))
	assert.Equal(t, []string{urlN(3), urlN(0), urlN(2)}, c.Keys())
}

func TestCache_NeverExceedsCapacity(t *testing.T) {
	c := New(4, nil, nil, nil)
	for i := 0; i < 100; i++ {
		c.Insert(urlN(i%9), solid(uint8(i)))
		if i%3 == 0 {
			c.Lookup(urlN(i % 5))
		}
		require.LessOrEqual(t, c.Len(), 4)
	}
}

func TestCache_ReinsertRefreshesWithoutGrowing(t *testing.T) {
	c := New(2, nil, nil, nil)
	c.Insert(urlN(0), solid(0))
	c.Insert(urlN(1), solid(1))
	c.Insert(urlN(0), solid(9))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{urlN(0), urlN(1)}, c.Keys())
	img, ok := c.Lookup(urlN(0))
	require.True(t, ok)
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(9)*0x101, r)
}

func TestCache_GetLoadsOnceOnSuccess(t *testing.T) {
	calls := 0
	loader := func(url string) (image.Image, error) {
		calls++
		return solid(1), nil
	}
	c := New(2, nil, loader, nil)

	first := c.Get(urlN(1))
	second := c.Get(urlN(1))

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, Stats{Hits: 1, Misses: 1}, c.Stats())
}

func TestCache_FailedLoadReturnsPlaceholderAndIsNotCached(t *testing.T) {
	placeholder := solid(7)
	calls := 0
	loader := func(url string) (image.Image, error) {
		calls++
		return nil, fmt.Errorf("download: %w", domain.ErrPayloadTooLarge)
	}
	c := New(3, placeholder, loader, nil)
	c.Insert(urlN(0), solid(0))

	assert.Same(t, placeholder, c.Get(urlN(1)))
	assert.Same(t, placeholder, c.Get(urlN(1)))

	assert.Equal(t, 2, calls, "failures must not be cached")
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []string{urlN(0)}, c.Keys())
}

func TestCache_EmptyURLSkipsLoader(t *testing.T) {
	loader := func(url string) (image.Image, error) {
		t.Fatal("loader should not be called")
		return nil, nil
	}
	c := New(1, nil, loader, nil)
	assert.Same(t, c.PlaceholderImage(), c.Get(""))
}

func TestCache_InsertBytes(t *testing.T) {
	c := New(2, nil, nil, nil)

	require.NoError(t, c.InsertBytes(urlN(1), pngBytes(t, 4, 6)))
	assert.True(t, c.Contains(urlN(1)))

	err := c.InsertBytes(urlN(2), []byte("definitely not an image"))
	assert.ErrorIs(t, err, domain.ErrDecode)
	assert.False(t, c.Contains(urlN(2)))
	assert.Equal(t, 1, c.Len())
}

func TestCache_Clear(t *testing.T) {
	c := New(3, nil, nil, nil)
	c.Insert(urlN(1), solid(1))
	c.Insert(urlN(2), solid(2))

	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Keys())
	c.Insert(urlN(3), solid(3))
	assert.Equal(t, 1, c.Len())
}

func TestCache_CapacityCoercedToOne(t *testing.T) {
	c := New(0, nil, nil, nil)
	assert.Equal(t, 1, c.Capacity())
	c.Insert(urlN(1), solid(1))
	c.Insert(urlN(2), solid(2))
	assert.Equal(t, []string{urlN(2)}, c.Keys())
}

func TestDecoder_FitsWithinBounds(t *testing.T) {
	decode := NewDecoder(30, 45)

	img, err := decode(pngBytes(t, 600, 900))
	require.NoError(t, err)
	assert.Equal(t, 30, img.Bounds().Dx())
	assert.Equal(t, 45, img.Bounds().Dy())

	small, err := decode(pngBytes(t, 10, 10))
	require.NoError(t, err)
	assert.Equal(t, 10, small.Bounds().Dx())

	_, err = decode(nil)
	assert.ErrorIs(t, err, domain.ErrDecode)
}

func TestDecoder_RejectsHugeDimensions(t *testing.T) {
	decode := NewDecoder(DefaultWidth, DefaultHeight)

	_, err := decode(pngHeader(12000, 12000))
	require.ErrorIs(t, err, domain.ErrDecode)
	assert.Contains(t, err.Error(), "12000x12000")

	c := New(2, nil, nil, nil).WithDecoder(decode)
	assert.ErrorIs(t, c.InsertBytes(urlN(1), pngHeader(40000, 1000)), domain.ErrDecode)
	assert.Zero(t, c.Len())
}

func TestPixelLimit(t *testing.T) {
	assert.Equal(t, int64(300*450*64), pixelLimit(300, 450))
	assert.Equal(t, int64(minSourcePixels), pixelLimit(10, 10))
	assert.Equal(t, pixelLimit(DefaultWidth, DefaultHeight), pixelLimit(0, 0))
}

func TestFetchLoader(t *testing.T) {
	data := pngBytes(t, 2, 3)
	var gotURL string
	fetch := func(ctx context.Context, url string) ([]byte, error) {
		gotURL = url
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return data, nil
	}

	load := FetchLoader(context.Background(), time.Second, fetch, NewDecoder(DefaultWidth, DefaultHeight))
	img, err := load(urlN(4))
	require.NoError(t, err)
	assert.Equal(t, urlN(4), gotURL)
	assert.Equal(t, 3, img.Bounds().Dy())

	failing := FetchLoader(context.Background(), time.Second, func(ctx context.Context, url string) ([]byte, error) {
		return nil, domain.ErrServerOffline
	}, NewDecoder(DefaultWidth, DefaultHeight))
	_, err = failing(urlN(5))
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}
