package search

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strmarr/strmarr/pkg/maccms"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func vodServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPool_SearchMergesAndTags(t *testing.T) {
	a := vodServer(t, `{"code":1,"list":[{"vod_id":1,"vod_name":"庆余年"},{"vod_id":2,"vod_name":"庆余年 第二季"}]}`)
	b := vodServer(t, `{"code":1,"list":[{"vod_id":9,"vod_name":"庆余年 第二季"}]}`)

	pool := NewPool([]*maccms.Client{
		maccms.NewClient(a.URL, 0),
		maccms.NewClient(b.URL, 1),
	}, 0, discardLogger())

	items, errs := pool.Search(context.Background(), "庆余年")
	assert.Empty(t, errs)
	require.Len(t, items, 3)

	bySource := map[int]int{}
	for _, it := range items {
		bySource[it.SourceIndex]++
		switch it.SourceIndex {
		case 0:
			assert.Equal(t, a.URL, it.SourceURL)
		case 1:
			assert.Equal(t, b.URL, it.SourceURL)
		}
	}
	assert.Equal(t, 2, bySource[0])
	assert.Equal(t, 1, bySource[1])
}

func TestPool_SearchSurvivesFailingSource(t *testing.T) {
	good := vodServer(t, `{"code":1,"list":[{"vod_id":1,"vod_name":"长津湖"}]}`)
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(bad.Close)

	pool := NewPool([]*maccms.Client{
		maccms.NewClient(bad.URL, 0),
		maccms.NewClient(good.URL, 1),
	}, 0, discardLogger())

	items, errs := pool.Search(context.Background(), "长津湖")
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].SourceIndex)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], maccms.ErrNoData)
}

func TestPool_SearchSurvivesTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	t.Cleanup(slow.Close)
	good := vodServer(t, `{"code":1,"list":[{"vod_id":1,"vod_name":"长津湖"}]}`)

	pool := NewPool([]*maccms.Client{
		maccms.NewClient(slow.URL, 0, maccms.WithTimeout(50*time.Millisecond)),
		maccms.NewClient(good.URL, 1),
	}, 0, discardLogger())

	items, errs := pool.Search(context.Background(), "长津湖")
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].SourceIndex)
	assert.Len(t, errs, 1)
}

func TestPool_SearchNoSources(t *testing.T) {
	pool := NewPool(nil, 0, discardLogger())
	items, errs := pool.Search(context.Background(), "任意")
	assert.Nil(t, items)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrNoSources)
}

func TestPool_BoundedParallelism(t *testing.T) {
	// Four sources, limit two: peak concurrent requests must not exceed
	// the limit.
	var mu sync.Mutex
	active, peak := 0, 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()

		time.Sleep(30 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":1,"list":[]}`))
	}))
	t.Cleanup(server.Close)

	clients := make([]*maccms.Client, 4)
	for i := range clients {
		clients[i] = maccms.NewClient(server.URL, i)
	}

	pool := NewPool(clients, 2, discardLogger())
	pool.Search(context.Background(), "任意")

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, 2)
}
