package domain

import "strings"

// Source is a marketplace tag from a closed set.
type Source string

const (
	SourceAvito    Source = "Avito.ma"
	SourceMoteur   Source = "Moteur.ma"
	SourceWandaloo Source = "Wandaloo.com"
	SourceVoiture  Source = "Voiture.ma"
)

// DefaultSource is used when a reply names a marketplace outside the set.
const DefaultSource = SourceVoiture

// Sources lists every known marketplace in display order.
var Sources = []Source{SourceAvito, SourceMoteur, SourceWandaloo, SourceVoiture}

// Valid reports whether s is one of the canonical tags.
func (s Source) Valid() bool {
	for _, known := range Sources {
		if s == known {
			return true
		}
	}
	return false
}

func (s Source) String() string { return string(s) }

// ParseSource maps loosely written marketplace names onto the canonical tag.
// "avito.ma", " https://www.Avito.ma/ " and "AVITO" all yield SourceAvito.
// ok is false when nothing matches.
func ParseSource(raw string) (Source, bool) {
	key := sourceKey(raw)
	if key == "" {
		return "", false
	}
	for _, known := range Sources {
		k := sourceKey(string(known))
		if key == k || key == strings.SplitN(k, ".", 2)[0] {
			return known, true
		}
	}
	return "", false
}

// NormalizeSource is ParseSource with DefaultSource as the fallback.
func NormalizeSource(raw string) (src Source, coerced bool) {
	if s, ok := ParseSource(raw); ok {
		return s, false
	}
	return DefaultSource, true
}

func sourceKey(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSuffix(s, "/")
}
