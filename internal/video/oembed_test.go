package video

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxacademy/internal/cache"
	"fxacademy/internal/config"
)

func newOEmbedServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Query().Get("url") == "https://vimeo.com/404" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Support and Resistance","thumbnail_url":"https://i.vimeocdn.com/1.jpg","duration":754,"html":"<iframe></iframe>","width":640,"height":360,"video_id":76979871}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Lookup(t *testing.T) {
	var hits int32
	srv := newOEmbedServer(t, &hits)
	c := NewClient(config.VimeoConfig{OEmbedURL: srv.URL, Timeout: time.Second, CacheTTL: time.Hour}, nil)

	m, err := c.Lookup(context.Background(), "https://vimeo.com/76979871")
	require.NoError(t, err)
	assert.Equal(t, "Support and Resistance", m.Title)
	assert.Equal(t, 754, m.Duration)
	assert.Equal(t, int64(76979871), m.VideoID)

	_, err = c.Lookup(context.Background(), "https://vimeo.com/404")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Lookup(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_LookupUsesCache(t *testing.T) {
	var hits int32
	srv := newOEmbedServer(t, &hits)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	c := NewClient(config.VimeoConfig{OEmbedURL: srv.URL, Timeout: time.Second, CacheTTL: time.Hour},
		cache.NewJSONCache(rdb, "oembed:"))

	for i := 0; i < 3; i++ {
		m, err := c.Lookup(context.Background(), "https://vimeo.com/1")
		require.NoError(t, err)
		assert.Equal(t, "Support and Resistance", m.Title)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.True(t, mr.Exists("oembed:https://vimeo.com/1"))
}
