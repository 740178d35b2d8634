package strm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean", "长津湖", "长津湖"},
		{"path separators", "Movie/Name\\Here", "MovieNameHere"},
		{"illegal chars", `What? "Is": <This>|*`, "What Is This"},
		{"null byte", "Name\x00Here", "NameHere"},
		{"whitespace trimmed", "  庆余年 第二季  ", "庆余年 第二季"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.input))
		})
	}
}

func TestFolderName(t *testing.T) {
	assert.Equal(t, "长津湖 (2021)", FolderName("长津湖", "2021"))
	assert.Equal(t, "长津湖", FolderName("长津湖", ""))
	assert.Equal(t, "AB (2021)", FolderName("A/B", "2021"))
}

func TestFreshDir(t *testing.T) {
	w := NewWriter("/lib")
	assert.Equal(t, filepath.Join("/lib", "Movies", "长津湖 (2021)"), w.FreshDir("长津湖", "2021", false))
	assert.Equal(t, filepath.Join("/lib", "TV Series", "庆余年 第二季 (2024)"), w.FreshDir("庆余年 第二季", "2024", true))
}

func TestWriteMovie(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root)

	dir := w.FreshDir("长津湖", "2021", false)
	path, err := w.WriteMovie(dir, "长津湖", "2021", "http://cdn.example.com/v/1.m3u8")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "Movies", "长津湖 (2021)", "长津湖 (2021).strm"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example.com/v/1.m3u8", string(data))
}

func TestWriteEpisode(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root)
	dir := w.FreshDir("庆余年 第二季", "2024", true)

	p1, err := w.WriteEpisode(dir, "庆余年 第二季", "第01集", 1, "http://a/1.m3u8")
	require.NoError(t, err)
	p2, err := w.WriteEpisode(dir, "庆余年 第二季", "第02集", 2, "http://a/2.m3u8")
	require.NoError(t, err)

	season := filepath.Join(root, "TV Series", "庆余年 第二季 (2024)", "Season 01")
	assert.Equal(t, filepath.Join(season, "庆余年 第二季 - S01E01.strm"), p1)
	assert.Equal(t, filepath.Join(season, "庆余年 第二季 - S01E02.strm"), p2)

	data, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Equal(t, "http://a/2.m3u8", string(data))
}

func TestEpisodeNumber(t *testing.T) {
	tests := []struct {
		name     string
		epName   string
		position int
		want     int
	}{
		{"digits in name win", "第08集", 3, 8},
		{"first digit run", "1080P 第12集", 3, 1080},
		{"no digits uses position", "正片", 4, 4},
		{"HD label", "高清", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EpisodeNumber(tt.epName, tt.position))
		})
	}
}
