package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Episode
	}{
		{
			"named episodes",
			"第01集$http://a/1.m3u8#第02集$http://a/2.m3u8",
			[]Episode{
				{Name: "第01集", RawURL: "http://a/1.m3u8"},
				{Name: "第02集", RawURL: "http://a/2.m3u8"},
			},
		},
		{
			"single episode",
			"正片$http://a/full.mp4",
			[]Episode{{Name: "正片", RawURL: "http://a/full.mp4"}},
		},
		{
			"bare url without separator",
			"http://a/full.mp4",
			[]Episode{{Name: "http://a/full.mp4", RawURL: "http://a/full.mp4"}},
		},
		{
			"empty segments skipped",
			"第01集$http://a/1.m3u8##第02集$http://a/2.m3u8#",
			[]Episode{
				{Name: "第01集", RawURL: "http://a/1.m3u8"},
				{Name: "第02集", RawURL: "http://a/2.m3u8"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLine(tt.raw))
		})
	}
}

func TestParse(t *testing.T) {
	playURL := "第01集$http://a/1.m3u8#第02集$http://a/2.m3u8$$$第01集$http://b/1.html"
	playFrom := "线路A$$$线路B"

	m := Parse(playURL, playFrom)
	require.Len(t, m.Lines, 2)
	assert.Equal(t, "线路A", m.Lines[0].Name)
	assert.Equal(t, "线路B", m.Lines[1].Name)
	assert.Len(t, m.Lines[0].Episodes, 2)
	assert.Len(t, m.Lines[1].Episodes, 1)
}

func TestParse_SynthesizesLineNames(t *testing.T) {
	m := Parse("a$http://x/1#b$http://x/2$$$c$http://y/1", "")
	require.Len(t, m.Lines, 2)
	assert.Equal(t, "线路1", m.Lines[0].Name)
	assert.Equal(t, "线路2", m.Lines[1].Name)
}

func TestParse_Empty(t *testing.T) {
	m := Parse("", "")
	assert.Empty(t, m.Lines)
	_, ok := m.Line(0)
	assert.False(t, ok)
}

func TestManifest_LineClamps(t *testing.T) {
	m := Parse("a$http://x/1", "线路1")

	line, ok := m.Line(5)
	require.True(t, ok, "out-of-range index falls back to the first line")
	assert.Equal(t, "线路1", line.Name)

	line, ok = m.Line(-1)
	require.True(t, ok)
	assert.Equal(t, "线路1", line.Name)
}
