package strm

import (
	"regexp"
	"strings"
)

// illegalChars are characters not allowed in file names on common
// filesystems. They are removed outright so the on-disk name stays as
// close as possible to the catalog title.
var illegalChars = regexp.MustCompile(`[\\/:*?"<>|\x00]`)

// SanitizeName strips characters that are unsafe for file paths.
func SanitizeName(name string) string {
	return strings.TrimSpace(illegalChars.ReplaceAllString(name, ""))
}
