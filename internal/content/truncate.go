package content

import "unicode/utf8"

const (
	// DefaultCharLimit is the model input budget in characters.
	DefaultCharLimit = 100000
	// DefaultReserve leaves room for the prompt around the document.
	DefaultReserve = 1000
)

// Truncate keeps the first limit-reserve runes of content when content
// is longer than limit runes. A negative budget yields "".
func Truncate(content string, limit, reserve int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(content) <= limit {
		return content, false
	}

	keep := limit - reserve
	if keep <= 0 {
		return "", true
	}

	n := 0
	for i := range content {
		if n == keep {
			return content[:i], true
		}
		n++
	}
	return content, true
}
