package maccms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testListResponse = `{
  "code": 1,
  "msg": "数据列表",
  "total": 2,
  "class": [
    {"type_id": 1, "type_name": "电影"},
    {"type_id": 2, "type_name": "电视剧"}
  ],
  "list": [
    {"vod_id": 101, "vod_name": "长津湖", "vod_pic": "http://img/1.jpg", "vod_year": "2021", "type_name": "剧情 电影", "vod_remarks": "HD"},
    {"vod_id": "202", "vod_name": "庆余年 第二季", "vod_pic": "http://img/2.jpg", "vod_year": "2024", "type_name": "国产剧", "vod_remarks": "36集全"}
  ]
}`

func TestClient_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "list", r.URL.Query().Get("ac"))
		assert.Equal(t, "庆余年", r.URL.Query().Get("wd"))
		assert.Equal(t, "2", r.URL.Query().Get("pg"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testListResponse))
	}))
	defer server.Close()

	c := NewClient(server.URL, 0)
	resp, err := c.List(context.Background(), ListOptions{Page: 2, Keyword: "庆余年"})
	require.NoError(t, err)

	require.Len(t, resp.List, 2)
	assert.Equal(t, "长津湖", resp.List[0].Name)
	// vod_id arrives as a number from some sources and a string from others.
	assert.Equal(t, "101", resp.List[0].ID.String())
	assert.Equal(t, "202", resp.List[1].ID.String())
}

func TestClient_ListSkipsAllTypeFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("t"), "type filter 'all' must not be forwarded")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testListResponse))
	}))
	defer server.Close()

	c := NewClient(server.URL, 0)
	_, err := c.List(context.Background(), ListOptions{TypeID: "all"})
	require.NoError(t, err)
}

func TestClient_Categories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testListResponse))
	}))
	defer server.Close()

	c := NewClient(server.URL, 0)
	cats, err := c.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "电视剧", cats[1].TypeName)
}

func TestClient_Detail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "detail", r.URL.Query().Get("ac"))
		assert.Equal(t, "101", r.URL.Query().Get("ids"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":1,"list":[{"vod_id":101,"vod_name":"长津湖","vod_play_url":"正片$http://a/1.m3u8","vod_play_from":"线路A"}]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, 0)
	item, err := c.Detail(context.Background(), "101")
	require.NoError(t, err)
	assert.Equal(t, "长津湖", item.Name)
	assert.Equal(t, "正片$http://a/1.m3u8", item.PlayURL)
}

func TestClient_DetailEmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":1,"list":[]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, 0)
	_, err := c.Detail(context.Background(), "999")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestClient_FailureModesReturnErrNoData(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>blocked</html>"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := NewClient(server.URL, 0)
			_, err := c.List(context.Background(), ListOptions{})
			assert.ErrorIs(t, err, ErrNoData)
		})
	}
}

func TestClient_MislabeledJSON(t *testing.T) {
	// JSON served as text/html still decodes on the first attempt.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(testListResponse))
	}))
	defer server.Close()

	c := NewClient(server.URL, 0)
	resp, err := c.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Len(t, resp.List, 2)
}

func TestRandomUserAgent(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.Contains(t, userAgents, RandomUserAgent())
	}
}
