package tmdb

import (
	"strings"
	"unicode"

	edlib "github.com/hbollon/go-edlib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeAccents strips combining marks so accented and unaccented
// spellings compare equal.
func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// cleanTitle normalizes a title for similarity scoring.
func cleanTitle(s string) string {
	s = strings.ToLower(removeAccents(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// BestMatch ranks candidates against the query name by Jaro-Winkler
// similarity of their cleaned titles (localized and original each get a
// shot) and returns the highest scorer. Ties keep the earlier candidate,
// preserving TMDB's relevance order as a tiebreak.
func BestMatch(name string, candidates []SearchResult) *SearchResult {
	query := cleanTitle(name)
	if query == "" || len(candidates) == 0 {
		return nil
	}

	bestScore := float32(-1)
	var best *SearchResult
	for i := range candidates {
		c := &candidates[i]
		score := edlib.JaroWinklerSimilarity(query, cleanTitle(c.DisplayTitle()))
		if alt := edlib.JaroWinklerSimilarity(query, cleanTitle(c.OriginalDisplayTitle())); alt > score {
			score = alt
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}
