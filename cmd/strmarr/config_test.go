package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strmarr/strmarr/internal/library"
)

func TestConfigCmd_UpdatesDedupKey(t *testing.T) {
	var saved library.Settings
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"sources":["https://a.example.com/vod/"],"dedup_key":"name"}`))
		case http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&saved))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	}))
	t.Cleanup(server.Close)

	oldServer := serverURL
	serverURL = server.URL
	t.Cleanup(func() { serverURL = oldServer })

	require.NoError(t, configCmd.Flags().Set("dedup-key", "name_year"))
	t.Cleanup(func() { _ = configCmd.Flags().Set("dedup-key", "") })

	require.NoError(t, runConfigCmd(configCmd, nil))
	assert.Equal(t, library.DedupByNameYear, saved.DedupKey)
	assert.Equal(t, []string{"https://a.example.com/vod/"}, saved.Sources,
		"unset flags must not clobber existing settings")
}

func TestConfigCmd_RejectsBadDedupKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sources":[],"dedup_key":"name"}`))
	}))
	t.Cleanup(server.Close)

	oldServer := serverURL
	serverURL = server.URL
	t.Cleanup(func() { serverURL = oldServer })

	require.NoError(t, configCmd.Flags().Set("dedup-key", "title"))
	t.Cleanup(func() { _ = configCmd.Flags().Set("dedup-key", "") })

	err := runConfigCmd(configCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid dedup-key")
}

func TestParseBoolFlag(t *testing.T) {
	assert.True(t, parseBoolFlag("true"))
	assert.True(t, parseBoolFlag("Yes"))
	assert.True(t, parseBoolFlag("1"))
	assert.False(t, parseBoolFlag("false"))
	assert.False(t, parseBoolFlag(""))
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "(unset)", maskKey(""))
	assert.Equal(t, "******", maskKey("abc"))
	assert.Equal(t, "abc...xyz", maskKey("abcdefxyz"))
}
