// Package parse holds the deterministic Spanish text analysis shared by the
// router, the retrieval engine and the scheduling machine. Everything here
// is regular-expression or keyword based and never calls a model.
package parse

import (
	"regexp"
	"strconv"
	"strings"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
)

var (
	bedroomRe = regexp.MustCompile(`(\d+)\s*(?:dormitorios?|habitaci(?:ó|o)n(?:es)?|cuartos?|br)\b`)
	studioRe  = regexp.MustCompile(`\b(?:studio|estudio)\b`)

	// Price amounts: "150 mil", "150k", "150,000", "$150000".
	amountRe = regexp.MustCompile(`(?:\$|usd\s*)?(\d{1,3}(?:[.,]\d{3})+|\d+)\s*(mil|k)?`)

	maxPriceRe = regexp.MustCompile(`(?:menos\s+de|m(?:á|a)ximo|hasta|no\s+m(?:á|a)s\s+de|tope\s+de|presupuesto\s+de)\s+` + amountRe.String())
	minPriceRe = regexp.MustCompile(`(?:m(?:á|a)s\s+de|m(?:í|i)nimo|desde|al\s+menos)\s+` + amountRe.String())
	barePrice  = regexp.MustCompile(`(?:precio|cuesta|vale|por)\s+` + amountRe.String())
)

// Canonical district names keyed by the lowercase token users actually type.
var districts = map[string]string{
	"miraflores":        "Miraflores",
	"san isidro":        "San Isidro",
	"surco":             "Santiago de Surco",
	"santiago de surco": "Santiago de Surco",
	"barranco":          "Barranco",
	"magdalena":         "Magdalena del Mar",
	"jesús maría":       "Jesús María",
	"jesus maria":       "Jesús María",
	"lince":             "Lince",
	"la molina":         "La Molina",
	"surquillo":         "Surquillo",
	"san borja":         "San Borja",
	"pueblo libre":      "Pueblo Libre",
	"chorrillos":        "Chorrillos",
	"san miguel":        "San Miguel",
}

var propertyTypes = []struct {
	keywords []string
	label    string
}{
	{[]string{"departamento", "depa", "apartamento", "dpto"}, "departamento"},
	{[]string{"casa", "chalet"}, "casa"},
	{[]string{"oficina"}, "oficina"},
}

// Filters extracts the structural constraints stated in a single message.
func Filters(text string) contractx.SearchFilters {
	lower := strings.ToLower(text)
	var f contractx.SearchFilters

	if studioRe.MatchString(lower) {
		zero := 0
		f.Bedrooms = &zero
	} else if m := bedroomRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			f.Bedrooms = &n
		}
	}

	if m := maxPriceRe.FindStringSubmatch(lower); m != nil {
		if v := parseAmount(m[1], m[2]); v > 0 {
			f.MaxPrice = &v
		}
	}
	if m := minPriceRe.FindStringSubmatch(lower); m != nil {
		if v := parseAmount(m[1], m[2]); v > 0 {
			f.MinPrice = &v
		}
	}
	// Amount with price context but no min/max marker defaults to a ceiling.
	if f.MaxPrice == nil && f.MinPrice == nil {
		if m := barePrice.FindStringSubmatch(lower); m != nil {
			if v := parseAmount(m[1], m[2]); v > 0 {
				f.MaxPrice = &v
			}
		}
	}

	for token, canonical := range districts {
		if strings.Contains(lower, token) {
			f.District = canonical
			break
		}
	}

	for _, pt := range propertyTypes {
		for _, kw := range pt.keywords {
			if containsWord(lower, kw) {
				f.PropertyType = pt.label
				break
			}
		}
		if f.PropertyType != "" {
			break
		}
	}

	return f
}

// Accumulate merges filters from user turns oldest to newest, then applies
// the current message on top. Newer values override older ones.
func Accumulate(turns []contractx.Turn, current string) contractx.SearchFilters {
	var merged contractx.SearchFilters
	for _, turn := range turns {
		if turn.Role != contractx.RoleHuman {
			continue
		}
		merged = overlay(merged, Filters(turn.Text))
	}
	return overlay(merged, Filters(current))
}

func overlay(base, next contractx.SearchFilters) contractx.SearchFilters {
	if next.Bedrooms != nil {
		base.Bedrooms = next.Bedrooms
	}
	if next.MaxPrice != nil {
		base.MaxPrice = next.MaxPrice
	}
	if next.MinPrice != nil {
		base.MinPrice = next.MinPrice
	}
	if next.District != "" {
		base.District = next.District
	}
	if next.PropertyType != "" {
		base.PropertyType = next.PropertyType
	}
	return base
}

func parseAmount(digits, suffix string) int {
	cleaned := strings.NewReplacer(",", "", ".", "").Replace(digits)
	v, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	if suffix == "mil" || suffix == "k" {
		v *= 1000
	}
	return v
}

func containsWord(text, word string) bool {
	idx := strings.Index(text, word)
	for idx >= 0 {
		before := idx == 0 || !isLetter(text[idx-1])
		afterIdx := idx + len(word)
		after := afterIdx >= len(text) || !isLetter(text[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(text[idx+1:], word)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
