package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"recipebox/internal/recipe"
)

// EntryKind tags the result of classifying one ingredient entry.
type EntryKind int

const (
	EntryIngredient EntryKind = iota
	EntryHeader
)

// Entry is either a section header (Label set) or a real ingredient.
type Entry struct {
	Kind       EntryKind
	Label      string
	Ingredient recipe.Ingredient
}

// HeaderRules decide which amount-less entries are section headings.
type HeaderRules struct {
	// Keywords match at the start of the text on a word boundary.
	Keywords []string `yaml:"keywords"`
	// MaxUpperWords bounds the all-caps heading rule.
	MaxUpperWords int `yaml:"max_upper_words"`
	// LeadPhrases are stripped from the start of a heading label.
	LeadPhrases []string `yaml:"lead_phrases"`
}

// DefaultHeaderRules returns the built-in heading tables.
func DefaultHeaderRules() HeaderRules {
	return HeaderRules{
		Keywords: []string{
			"for the", "for", "topping", "toppings", "sauce", "dressing", "filling",
			"crust", "base", "marinade", "mix", "glaze", "garnish", "to serve", "optional",
		},
		MaxUpperWords: 6,
		LeadPhrases:   []string{"for the", "for"},
	}
}

// Merge replaces each rule in r with the one in over when over's is set.
func (r *HeaderRules) Merge(over HeaderRules) {
	if len(over.Keywords) > 0 {
		r.Keywords = over.Keywords
	}
	if over.MaxUpperWords > 0 {
		r.MaxUpperWords = over.MaxUpperWords
	}
	if len(over.LeadPhrases) > 0 {
		r.LeadPhrases = over.LeadPhrases
	}
}

// Classify decides whether ing is a heading. Only entries with neither an
// amount nor a unit can be headings.
func (r HeaderRules) Classify(ing recipe.Ingredient) Entry {
	return r.classify(ing, ing.Item)
}

// classify judges text, which may be the item before cleaning.
func (r HeaderRules) classify(ing recipe.Ingredient, text string) Entry {
	if ing.Amount != nil || ing.Unit != nil {
		return Entry{Kind: EntryIngredient, Ingredient: ing}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Entry{Kind: EntryIngredient, Ingredient: ing}
	}
	if strings.HasSuffix(text, ":") || r.startsWithKeyword(text) || r.isShortUpper(text) {
		return Entry{Kind: EntryHeader, Label: r.label(text)}
	}
	return Entry{Kind: EntryIngredient, Ingredient: ing}
}

// Group assigns every ingredient a concrete group in one left-to-right pass
// and drops heading entries. Input is not modified.
func (r HeaderRules) Group(ings []recipe.Ingredient) []recipe.Ingredient {
	texts := make([]string, len(ings))
	for i, ing := range ings {
		texts[i] = ing.Item
	}
	return r.group(ings, texts)
}

// Ingredients normalizes raws and groups the result. Headings are judged on
// the raw text, so words the item cleaner drops ("Optional garnish:") still
// name the section.
func (r HeaderRules) Ingredients(raws []Raw) []recipe.Ingredient {
	ings := make([]recipe.Ingredient, 0, len(raws))
	texts := make([]string, 0, len(raws))
	for _, raw := range raws {
		if ing, ok := Ingredient(raw); ok {
			ings = append(ings, ing)
			texts = append(texts, collapse(raw.Item))
		}
	}
	return r.group(ings, texts)
}

func (r HeaderRules) group(ings []recipe.Ingredient, texts []string) []recipe.Ingredient {
	current := recipe.DefaultGroup
	out := make([]recipe.Ingredient, 0, len(ings))
	for i, ing := range ings {
		if g := ing.GroupName(); !strings.EqualFold(g, recipe.DefaultGroup) {
			current = g
			ing.Group = recipe.StringPtr(g)
			out = append(out, ing)
			continue
		}

		entry := r.classify(ing, texts[i])
		if entry.Kind == EntryHeader {
			if entry.Label != "" {
				current = entry.Label
			}
			continue
		}
		ing.Group = recipe.StringPtr(current)
		out = append(out, ing)
	}
	return out
}

// Group runs the default heading rules.
func Group(ings []recipe.Ingredient) []recipe.Ingredient {
	return DefaultHeaderRules().Group(ings)
}

func (r HeaderRules) startsWithKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range r.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || !strings.HasPrefix(lower, kw) {
			continue
		}
		rest := lower[len(kw):]
		if rest == "" {
			return true
		}
		next := []rune(rest)[0]
		if !unicode.IsLetter(next) && !unicode.IsDigit(next) {
			return true
		}
	}
	return false
}

func (r HeaderRules) isShortUpper(text string) bool {
	max := r.MaxUpperWords
	if max <= 0 {
		max = 6
	}
	if len(strings.Fields(text)) > max {
		return false
	}
	hasLetter := false
	for _, c := range text {
		if unicode.IsLetter(c) {
			if !unicode.IsUpper(c) {
				return false
			}
			hasLetter = true
		}
	}
	return hasLetter
}

func (r HeaderRules) label(text string) string {
	label := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(text), ":"))
	lower := strings.ToLower(label)
	for _, p := range r.LeadPhrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if strings.HasPrefix(lower, p+" ") {
			label = strings.TrimSpace(label[len(p):])
			break
		}
	}
	if r.isShortUpper(label) {
		// Casers carry state; build one per call.
		label = cases.Title(language.English).String(strings.ToLower(label))
	}
	return label
}
