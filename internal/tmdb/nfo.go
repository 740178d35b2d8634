package tmdb

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

const xmlHeader = `<?xml version="1.0" encoding="utf-8" standalone="yes"?>` + "\n"

// nfoDoc is the Kodi/Emby-compatible sidecar layout. The root element
// name is "movie" or "tvshow" depending on media type.
type nfoDoc struct {
	XMLName       xml.Name
	Title         string `xml:"title"`
	OriginalTitle string `xml:"originaltitle"`
	Plot          string `xml:"plot"`
	Year          string `xml:"year"`
	TMDBID        int64  `xml:"tmdbid"`
	ID            int64  `xml:"id"`
}

// WriteNFO writes the metadata sidecar next to the generated .strm tree:
// movie.nfo for movies, tvshow.nfo for series.
func WriteNFO(dir string, m *SearchResult, series bool) error {
	file, root := "movie.nfo", "movie"
	if series {
		file, root = "tvshow.nfo", "tvshow"
	}

	doc := nfoDoc{
		XMLName:       xml.Name{Local: root},
		Title:         m.DisplayTitle(),
		OriginalTitle: m.OriginalDisplayTitle(),
		Plot:          m.Overview,
		Year:          m.Year(),
		TMDBID:        m.ID,
		ID:            m.ID,
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode nfo: %w", err)
	}

	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, []byte(xmlHeader+string(body)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write nfo: %w", err)
	}
	return nil
}
