// Package normalize cleans raw ingredient and instruction text into the
// canonical recipe shapes. Everything here is pure and deterministic.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"recipebox/internal/recipe"
	"recipebox/internal/units"
)

// Raw is an ingredient as it arrives from structured data or model output.
type Raw struct {
	Group *string
	Item  string
	// Amount is set when the source already carried a number; AmountText is
	// parsed otherwise.
	Amount     *float64
	AmountText string
	Unit       *string
	Optional   *bool
	// StripQuantityPrefix removes a leading "2 cups" style measurement from
	// Item. Model output sometimes repeats the quantity inside the name.
	StripQuantityPrefix bool
}

var (
	optionalWord  = regexp.MustCompile(`(?i)\boptional\b`)
	optionalParen = regexp.MustCompile(`(?i)\(\s*optional\s*\)`)
	emptyParen    = regexp.MustCompile(`\(\s*\)`)
	spaces        = regexp.MustCompile(`\s+`)
)

// countUnits are measurement words with no metric conversion that still read
// as a quantity prefix ("2 cloves garlic").
var countUnits = map[string]bool{
	"pinch": true, "pinches": true, "dash": true, "dashes": true,
	"clove": true, "cloves": true, "can": true, "cans": true,
	"package": true, "packages": true, "pkg": true, "slice": true, "slices": true,
	"stick": true, "sticks": true, "sprig": true, "sprigs": true,
	"handful": true, "handfuls": true, "piece": true, "pieces": true,
	"bunch": true, "bunches": true, "head": true, "heads": true,
}

// Ingredient normalizes a raw ingredient. ok is false when the raw item text
// is blank, since no item can be produced.
func Ingredient(raw Raw) (ing recipe.Ingredient, ok bool) {
	original := collapse(raw.Item)
	if original == "" {
		return recipe.Ingredient{}, false
	}

	textOptional := optionalWord.MatchString(original)
	cleaned := cleanItem(original)
	if raw.StripQuantityPrefix {
		cleaned = cleanItem(StripQuantityPrefix(cleaned))
	}
	if !hasAlnum(cleaned) {
		cleaned = original
	}

	ing.Item = cleaned
	ing.Group = trimmedPtr(raw.Group)
	ing.Unit = trimmedPtr(raw.Unit)
	ing.Amount = coerceAmount(raw.Amount, raw.AmountText)

	switch {
	case raw.Optional != nil:
		ing.Optional = recipe.BoolPtr(*raw.Optional)
	case textOptional:
		ing.Optional = recipe.BoolPtr(true)
	}
	return ing, true
}

// Ingredients normalizes a list, dropping entries with blank text.
func Ingredients(raws []Raw) []recipe.Ingredient {
	out := make([]recipe.Ingredient, 0, len(raws))
	for _, r := range raws {
		if ing, ok := Ingredient(r); ok {
			out = append(out, ing)
		}
	}
	return out
}

func hasAlnum(s string) bool {
	for _, c := range s {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			return true
		}
	}
	return false
}

// FromIngredient turns a normalized ingredient back into raw input.
func FromIngredient(ing recipe.Ingredient) Raw {
	return Raw{
		Group:    ing.Group,
		Item:     ing.Item,
		Amount:   ing.Amount,
		Unit:     ing.Unit,
		Optional: ing.Optional,
	}
}

// ParseLine splits a free-text ingredient line ("1 1/2 cups sugar") into a
// raw ingredient with the leading quantity and unit lifted out.
func ParseLine(line string) Raw {
	words := strings.Fields(line)
	qtyEnd, unitEnd := measurePrefix(words)
	if qtyEnd == 0 || unitEnd == len(words) {
		return Raw{Item: strings.Join(words, " ")}
	}

	raw := Raw{
		AmountText: strings.Join(words[:qtyEnd], " "),
		Item:       strings.Join(words[unitEnd:], " "),
	}
	if unitEnd > qtyEnd {
		unit := strings.Join(words[qtyEnd:unitEnd], " ")
		raw.Unit = &unit
	}
	if len(words) > unitEnd && strings.EqualFold(words[unitEnd], "of") && unitEnd+1 < len(words) {
		raw.Item = strings.Join(words[unitEnd+1:], " ")
	}
	return raw
}

// StripQuantityPrefix removes leading quantity and unit words. Text that would
// become empty is returned unchanged.
func StripQuantityPrefix(text string) string {
	words := strings.Fields(text)
	for {
		qtyEnd, unitEnd := measurePrefix(words)
		if qtyEnd == 0 {
			break
		}
		rest := unitEnd
		if rest < len(words) && strings.EqualFold(words[rest], "of") {
			rest++
		}
		if rest >= len(words) {
			break
		}
		words = words[rest:]
	}
	return strings.Join(words, " ")
}

// measurePrefix returns the end index of a leading quantity and of the unit
// that follows it. qtyEnd is 0 when there is no quantity.
func measurePrefix(words []string) (qtyEnd, unitEnd int) {
	if len(words) == 0 {
		return 0, 0
	}
	if len(words) > 1 && strings.Contains(words[1], "/") {
		if _, ok := units.ParseQuantity(words[0] + " " + words[1]); ok {
			qtyEnd = 2
		}
	}
	if qtyEnd == 0 {
		if _, ok := units.ParseQuantity(words[0]); ok {
			qtyEnd = 1
		}
	}
	if qtyEnd == 0 {
		return 0, 0
	}
	// "1 ½ cups"
	if qtyEnd == 1 && len(words) > 1 {
		if r := []rune(words[1]); len(r) == 1 && units.IsVulgarFraction(r[0]) {
			if _, ok := units.ParseQuantity(words[0] + " " + words[1]); ok {
				qtyEnd = 2
			}
		}
	}

	unitEnd = qtyEnd
	if qtyEnd+1 < len(words) {
		if _, ok := units.Canonical(words[qtyEnd] + " " + words[qtyEnd+1]); ok {
			return qtyEnd, qtyEnd + 2
		}
	}
	if qtyEnd < len(words) {
		w := words[qtyEnd]
		if _, ok := units.Canonical(w); ok || countUnits[strings.ToLower(strings.TrimSuffix(w, "."))] {
			unitEnd = qtyEnd + 1
		}
	}
	return qtyEnd, unitEnd
}

func cleanItem(text string) string {
	s := optionalParen.ReplaceAllString(text, " ")
	s = optionalWord.ReplaceAllString(s, " ")
	s = emptyParen.ReplaceAllString(s, " ")
	s = collapse(s)
	return strings.Trim(s, " ,;-")
}

func coerceAmount(num *float64, text string) *float64 {
	if num != nil {
		if math.IsNaN(*num) || math.IsInf(*num, 0) || *num < 0 {
			return nil
		}
		return recipe.FloatPtr(*num)
	}
	if v, ok := units.ParseQuantity(text); ok {
		return recipe.FloatPtr(v)
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 {
		return recipe.FloatPtr(v)
	}
	return nil
}

func collapse(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

func trimmedPtr(p *string) *string {
	if p == nil {
		return nil
	}
	return recipe.StringPtr(collapse(*p))
}
