// Package manifest decodes the aggregator's compound play-source strings.
//
// A play manifest arrives as two parallel fields: vod_play_url holds the
// play lines joined by "$$$", vod_play_from holds the matching line labels
// joined by the same separator. Within a line, episodes are joined by "#"
// and each episode is "name$url" (or a bare URL serving as both).
package manifest

import (
	"fmt"
	"strings"
)

// LineSeparator joins play lines and their labels.
const LineSeparator = "$$$"

// Episode is one playable entry of a line, exactly as the aggregator
// supplied it. RawURL may be direct or an intermediate short link.
type Episode struct {
	Name   string
	RawURL string
}

// Line is a named route with its ordered episodes.
type Line struct {
	Name     string
	Episodes []Episode
}

// Manifest is the ordered set of play lines for one title.
type Manifest struct {
	Lines []Line
}

// Parse decodes the two parallel fields into a Manifest. Malformed input
// never fails: missing fields yield empty collections and a short label
// list is padded with synthesized labels, so the caller can still generate
// whatever is resolvable.
func Parse(playURL, playFrom string) Manifest {
	var m Manifest
	if playURL == "" {
		return m
	}

	groups := strings.Split(playURL, LineSeparator)
	var labels []string
	if playFrom != "" {
		labels = strings.Split(playFrom, LineSeparator)
	}

	m.Lines = make([]Line, 0, len(groups))
	for i, group := range groups {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		if label == "" {
			label = fmt.Sprintf("线路%d", i+1)
		}
		m.Lines = append(m.Lines, Line{
			Name:     label,
			Episodes: ParseLine(group),
		})
	}
	return m
}

// ParseLine decodes a single "#"-joined episode sequence.
func ParseLine(group string) []Episode {
	if group == "" {
		return nil
	}
	parts := strings.Split(group, "#")
	eps := make([]Episode, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		name, rawURL, found := strings.Cut(part, "$")
		if !found {
			rawURL = name
		}
		eps = append(eps, Episode{Name: name, RawURL: rawURL})
	}
	return eps
}

// Line returns the line at idx, clamped to line 0 when out of range.
// Returns false only when the manifest has no lines at all.
func (m Manifest) Line(idx int) (Line, bool) {
	if len(m.Lines) == 0 {
		return Line{}, false
	}
	if idx < 0 || idx >= len(m.Lines) {
		idx = 0
	}
	return m.Lines[idx], true
}
