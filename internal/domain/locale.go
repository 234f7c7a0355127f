package domain

import "strings"

// Locale is a canonical display-language identifier: hyphenated and
// lower case.
type Locale string

const (
	LocaleEN     Locale = "en"
	LocaleZhHans Locale = "zh-hans"
	LocaleZhHant Locale = "zh-hant"
	LocaleJA     Locale = "ja"
	LocaleES     Locale = "es"
	LocaleDE     Locale = "de"

	// DefaultLocale lives at the data directory root.
	DefaultLocale = LocaleEN
)

// LocaleInfo pairs a locale with the language name used in prompts.
type LocaleInfo struct {
	Key  Locale `json:"key"`
	Name string `json:"name"`
}

var locales = []LocaleInfo{
	{LocaleEN, "English"},
	{LocaleZhHans, "Simplified Chinese"},
	{LocaleZhHant, "Traditional Chinese"},
	{LocaleJA, "Japanese"},
	{LocaleES, "Spanish"},
	{LocaleDE, "German"},
}

// Locales returns the closed set, default first.
func Locales() []LocaleInfo {
	out := make([]LocaleInfo, len(locales))
	copy(out, locales)
	return out
}

// TranslatedLocales returns every locale except the default.
func TranslatedLocales() []Locale {
	out := make([]Locale, 0, len(locales)-1)
	for _, l := range locales {
		if l.Key != DefaultLocale {
			out = append(out, l.Key)
		}
	}
	return out
}

// AllLocales returns every locale key, default first.
func AllLocales() []Locale {
	out := make([]Locale, len(locales))
	for i, l := range locales {
		out[i] = l.Key
	}
	return out
}

// ParseLocale accepts only the canonical form. An empty string yields
// the default locale.
func ParseLocale(s string) (Locale, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLocale, nil
	}
	l := Locale(s)
	if !l.Valid() {
		return "", &LocaleError{Value: s}
	}
	return l, nil
}

// Valid reports whether l belongs to the closed set.
func (l Locale) Valid() bool {
	for _, info := range locales {
		if info.Key == l {
			return true
		}
	}
	return false
}

// LanguageName is the English name of the language, e.g. "Japanese".
func (l Locale) LanguageName() string {
	for _, info := range locales {
		if info.Key == l {
			return info.Name
		}
	}
	return "English"
}

// IsDefault reports whether l is the root locale.
func (l Locale) IsDefault() bool { return l == DefaultLocale }
