package ogimage

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_RunsEveryTask(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 3, nil)
	pool.Start()

	var ran atomic.Int32
	for i := 0; i < 20; i++ {
		fail := i%5 == 0
		require.True(t, pool.Submit(func(ctx context.Context) error {
			ran.Add(1)
			if fail {
				return errors.New("boom")
			}
			return nil
		}))
	}
	pool.Wait()

	assert.Equal(t, int32(20), ran.Load())
}

func TestWorkerPool_SubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkerPool(ctx, 1, nil)
	cancel()

	assert.False(t, pool.Submit(func(ctx context.Context) error { return nil }))
	pool.Shutdown()
}

func TestWarm_FillsCache(t *testing.T) {
	withImage, hits := servePage(t, http.StatusOK,
		`<html><head><meta property="og:image" content="/og.png"></head></html>`)
	noImage, _ := servePage(t, http.StatusOK, `<html><head></head></html>`)
	failing, _ := servePage(t, http.StatusNotFound, `missing`)

	cache := newMemoryCache()
	f := newTestFetcher(cache)
	pages := []string{withImage.URL + "/", noImage.URL + "/", failing.URL + "/"}

	result := f.Warm(context.Background(), pages, 2)
	assert.Equal(t, WarmResult{Pages: 3, Images: 1}, result)

	image, ok, err := cache.Get(context.Background(), withImage.URL+"/")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, withImage.URL+"/og.png", image)

	_, ok, _ = cache.Get(context.Background(), noImage.URL+"/")
	assert.True(t, ok)
	_, ok, _ = cache.Get(context.Background(), failing.URL+"/")
	assert.False(t, ok)

	// a second run is served from the cache
	f.Warm(context.Background(), pages[:1], 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}
