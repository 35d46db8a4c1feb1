// Package shopping merges the ingredients of several recipes into one
// shopping list.
package shopping

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"recipebox/internal/recipe"
	"recipebox/internal/units"
)

// Unitless is the key suffix for items without a unit.
const Unitless = "unitless"

// Item is one merged shopping-list line.
type Item struct {
	Key     string   `json:"key"`
	Item    string   `json:"item"`
	Amount  *float64 `json:"amount"`
	Unit    *string  `json:"unit"`
	Recipes []string `json:"recipes"`
}

var parenthetical = regexp.MustCompile(`\([^)]*\)`)

// DefaultSynonyms is the seed synonym table applied after name cleanup.
func DefaultSynonyms() map[string]string {
	return map[string]string{
		"all-purpose flour":    "flour",
		"all purpose flour":    "flour",
		"plain flour":          "flour",
		"white flour":          "flour",
		"ap flour":             "flour",
		"icing sugar":          "powdered sugar",
		"confectioners sugar":  "powdered sugar",
		"confectioners' sugar": "powdered sugar",
		"scallions":            "green onion",
		"scallion":             "green onion",
		"green onions":         "green onion",
	}
}

// Merger builds shopping lists with a synonym table.
type Merger struct {
	Synonyms map[string]string
}

// New returns a Merger using the seed table extended by extra. Keys of extra
// are matched after name cleanup.
func New(extra map[string]string) *Merger {
	syn := DefaultSynonyms()
	for k, v := range extra {
		if k = clean(k); k != "" {
			syn[k] = clean(v)
		}
	}
	return &Merger{Synonyms: syn}
}

// Merge builds a shopping list with the seed synonym table.
func Merge(recipes []*recipe.Recipe) []Item {
	return New(nil).Merge(recipes)
}

// NormalizeName returns the merge identity of an item name.
func (m *Merger) NormalizeName(name string) string {
	n := clean(name)
	if s, ok := m.Synonyms[n]; ok {
		return s
	}
	return n
}

// Merge sums amounts of ingredients whose normalized name and unit both
// match. Differing units stay separate lines. Items are ordered by key.
func (m *Merger) Merge(recipes []*recipe.Recipe) []Item {
	var lines []Item
	for _, r := range recipes {
		if r == nil {
			continue
		}
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = recipe.DefaultTitle
		}
		for _, ing := range r.Ingredients {
			name := m.NormalizeName(ing.Item)
			if name == "" {
				continue
			}
			unit := unitKey(ing.Unit)
			it := Item{
				Key:     Key(name, unit),
				Item:    name,
				Unit:    recipe.StringPtr(unit),
				Recipes: []string{title},
			}
			if ing.Amount != nil {
				it.Amount = recipe.FloatPtr(*ing.Amount)
			}
			lines = append(lines, it)
		}
	}
	return combine(lines)
}

// Key builds the merge key for a normalized name and unit.
func Key(name, unit string) string {
	if unit == "" {
		unit = Unitless
	}
	return name + "::" + unit
}

// combine folds items sharing a key, summing amounts and collecting recipe
// titles in first-seen order.
func combine(items []Item) []Item {
	byKey := make(map[string]*Item, len(items))
	var keys []string
	for _, it := range items {
		cur, ok := byKey[it.Key]
		if !ok {
			c := it
			c.Recipes = nil
			c.Amount = nil
			byKey[it.Key] = &c
			keys = append(keys, it.Key)
			cur = &c
		}
		if it.Amount != nil {
			sum := *it.Amount
			if cur.Amount != nil {
				sum += *cur.Amount
			}
			cur.Amount = &sum
		}
		for _, title := range it.Recipes {
			if !contains(cur.Recipes, title) {
				cur.Recipes = append(cur.Recipes, title)
			}
		}
	}

	sort.Strings(keys)
	out := make([]Item, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out
}

// unitKey canonicalizes known unit spellings so "Tbsp" and "tablespoon"
// share a line; unknown units are lower-cased.
func unitKey(unit *string) string {
	if unit == nil {
		return ""
	}
	if c, ok := units.Canonical(*unit); ok {
		return c
	}
	return strings.ToLower(strings.Join(strings.Fields(*unit), " "))
}

func clean(name string) string {
	n := norm.NFKC.String(name)
	n = strings.ToLower(n)
	n = parenthetical.ReplaceAllString(n, " ")
	n = strings.Join(strings.Fields(n), " ")
	return strings.Trim(n, " ,;:-.")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
