package shipping

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultLocalCities are the cities served by the shop's own courier
var DefaultLocalCities = []string{"Taubaté", "Tremembé"}

// NormalizeCity folds a free-text city name for comparison: accents are
// stripped, letters lowercased and surrounding space trimmed.
func NormalizeCity(city string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, city)
	if err != nil {
		folded = city
	}
	return strings.TrimSpace(strings.ToLower(folded))
}

// LocalityClassifier decides whether a city is eligible for local delivery
type LocalityClassifier struct {
	cities map[string]struct{}
}

// NewLocalityClassifier creates a classifier over the given whitelist.
// Whitelist entries are normalized the same way as queried names.
func NewLocalityClassifier(cities ...string) *LocalityClassifier {
	if len(cities) == 0 {
		cities = DefaultLocalCities
	}
	set := make(map[string]struct{}, len(cities))
	for _, c := range cities {
		if n := NormalizeCity(c); n != "" {
			set[n] = struct{}{}
		}
	}
	return &LocalityClassifier{cities: set}
}

// IsLocal reports whether city matches a whitelisted city, ignoring case and accents
func (c *LocalityClassifier) IsLocal(city string) bool {
	_, ok := c.cities[NormalizeCity(city)]
	return ok
}
