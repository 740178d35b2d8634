// Package strm lays out the on-disk library tree and writes .strm pointer
// files, one playable URL per file.
package strm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

// Subdirectory names under the library root.
const (
	MovieDir  = "Movies"
	SeriesDir = "TV Series"
	seasonDir = "Season 01"
)

// ErrNoFiles is returned when a write pass produced zero files; the
// caller must not record anything for the title in that case.
var ErrNoFiles = errors.New("no strm files written")

// Writer computes library paths and writes pointer files under root.
type Writer struct {
	root string
}

// NewWriter creates a writer rooted at the library directory.
func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// Root returns the library root directory.
func (w *Writer) Root() string { return w.root }

// FolderName builds the directory name for a title: the sanitized name,
// with the release year appended when known.
func FolderName(name, year string) string {
	safe := SanitizeName(name)
	if year = SanitizeName(year); year != "" {
		return fmt.Sprintf("%s (%s)", safe, year)
	}
	return safe
}

// FreshDir computes the save directory for a title that has no existing
// record to reuse.
func (w *Writer) FreshDir(name, year string, series bool) string {
	base := MovieDir
	if series {
		base = SeriesDir
	}
	return filepath.Join(w.root, base, FolderName(name, year))
}

// WriteMovie writes the single pointer file for a movie into dir and
// returns its path. The file is named after the title folder.
func (w *Writer) WriteMovie(dir, name, year, finalURL string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}
	path := filepath.Join(dir, FolderName(name, year)+".strm")
	if err := writePointer(path, finalURL); err != nil {
		return "", err
	}
	return path, nil
}

// WriteEpisode writes one series pointer file under the single-season
// subdirectory and returns its path. position is the 1-based slot of the
// episode within its play line; an explicit number in the display name
// overrides it.
func (w *Writer) WriteEpisode(dir, name, epName string, position int, finalURL string) (string, error) {
	season := filepath.Join(dir, seasonDir)
	if err := os.MkdirAll(season, 0o755); err != nil {
		return "", fmt.Errorf("create season dir: %w", err)
	}
	num := EpisodeNumber(epName, position)
	path := filepath.Join(season, fmt.Sprintf("%s - S01E%02d.strm", SanitizeName(name), num))
	if err := writePointer(path, finalURL); err != nil {
		return "", err
	}
	return path, nil
}

var firstDigits = regexp.MustCompile(`(\d+)`)

// EpisodeNumber derives the episode number for a display name. The first
// run of digits wins (the aggregator's own numbering beats positional
// inference); otherwise the 1-based position is used.
func EpisodeNumber(epName string, position int) int {
	if m := firstDigits.FindString(epName); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return n
		}
	}
	return position
}

// writePointer writes exactly the URL, no trailing formatting.
func writePointer(path, finalURL string) error {
	if err := os.WriteFile(path, []byte(finalURL), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
