package domain

import "strings"

// CleanDescription strips emoji and pictographs and collapses runs of
// whitespace into single spaces.
func CleanDescription(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isPictograph(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isPictograph(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // emoji, symbols & pictographs, flags
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r >= 0x2B00 && r <= 0x2BFF: // arrows, stars
		return true
	case r == 0x200D || r == 0x20E3: // ZWJ, keycap
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	case r >= 0xE0020 && r <= 0xE007F: // tag sequences
		return true
	}
	return false
}

// Slug lower-cases s and keeps only ASCII letters and digits.
func Slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
