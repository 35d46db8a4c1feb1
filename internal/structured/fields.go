package structured

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"recipebox/internal/jsonvalue"
	"recipebox/internal/normalize"
	"recipebox/internal/recipe"
)

var firstInt = regexp.MustCompile(`\d+`)

// candidate maps a schema.org Recipe node to a normalized recipe. It returns
// nil unless at least one ingredient and one instruction survive.
func (e *Extractor) candidate(node *jsonvalue.Value) *recipe.Recipe {
	ingredientsField := node.Get("recipeIngredient")
	if ingredientsField.IsNull() {
		ingredientsField = node.Get("ingredients")
	}

	raws := make([]normalize.Raw, 0)
	for _, line := range stringList(ingredientsField) {
		raws = append(raws, normalize.ParseLine(line))
	}
	ingredients := e.Headers.Ingredients(raws)
	instructions := normalize.Instructions(instructionLines(node.Get("recipeInstructions")))

	if len(ingredients) == 0 || len(instructions) == 0 {
		return nil
	}

	title := cleanText(node.Get("name").Text())
	if title == "" {
		title = recipe.DefaultTitle
	}

	return &recipe.Recipe{
		Title:            title,
		Author:           recipe.StringPtr(author(node.Get("author"))),
		OriginalServings: servings(node.Get("recipeYield")),
		Rating:           rating(node.Get("aggregateRating")),
		Allergens:        []string{},
		Tips:             []string{},
		Ingredients:      ingredients,
		Instructions:     instructions,
	}
}

// cleanText unescapes entities, drops markup and collapses whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(stripMarkup(s)), " ")
}

// stripMarkup unescapes entities and removes tags, ending block-level
// elements with a newline. Feeds often escape their markup once or twice
// ("&lt;p&gt;", "&amp;amp;"), so the text is reparsed while it still looks
// like markup.
func stripMarkup(s string) string {
	for i := 0; i < 3 && strings.ContainsAny(s, "<&"); i++ {
		doc, err := html.Parse(strings.NewReader(s))
		if err != nil {
			break
		}
		next := blockText(doc)
		if next == s {
			break
		}
		s = next
	}
	return s
}

// stringList accepts a string, an array of strings, or an array of objects
// with text or name.
func stringList(v *jsonvalue.Value) []string {
	if v.IsNull() {
		return nil
	}
	items := v.Items()
	if v.Kind != jsonvalue.Array {
		items = []*jsonvalue.Value{v}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		var s string
		switch it.Kind {
		case jsonvalue.String, jsonvalue.Number:
			s = it.Text()
		case jsonvalue.Object:
			s = it.Get("text").Text()
			if s == "" {
				s = it.Get("name").Text()
			}
		}
		if s = cleanText(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// instructionLines flattens recipeInstructions. HowToSection items are
// expanded in place, in document order.
func instructionLines(v *jsonvalue.Value) []string {
	if v.IsNull() {
		return nil
	}
	var out []string
	stack := []*jsonvalue.Value{v}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Kind {
		case jsonvalue.String:
			if s := strings.TrimSpace(stripMarkup(n.Text())); s != "" {
				out = append(out, s)
			}
		case jsonvalue.Array:
			items := n.Items()
			for i := len(items) - 1; i >= 0; i-- {
				stack = append(stack, items[i])
			}
		case jsonvalue.Object:
			if list := n.Get("itemListElement"); !list.IsNull() {
				stack = append(stack, list)
				continue
			}
			text := n.Get("text").Text()
			if text == "" {
				text = n.Get("name").Text()
			}
			if s := strings.TrimSpace(stripMarkup(text)); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// servings takes the first integer embedded in recipeYield. Arrays use their
// first entry. Anything unusable yields 1.
func servings(v *jsonvalue.Value) int {
	if items := v.Items(); len(items) > 0 {
		v = items[0]
	}
	m := firstInt.FindString(v.Text())
	if m == "" {
		return 1
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// author resolves a string, an object with name, or an array where the first
// resolvable entry wins.
func author(v *jsonvalue.Value) string {
	stack := []*jsonvalue.Value{v}
	for len(stack) > 0 {
		n := stack[0]
		stack = stack[1:]
		switch {
		case n.IsNull():
		case n.Kind == jsonvalue.String:
			if s := cleanText(n.Text()); s != "" {
				return s
			}
		case n.Kind == jsonvalue.Object:
			if s := cleanText(n.Get("name").Text()); s != "" {
				return s
			}
		case n.Kind == jsonvalue.Array:
			stack = append(stack, n.Items()...)
		}
	}
	return ""
}

func rating(v *jsonvalue.Value) recipe.Rating {
	if v.IsNull() {
		return recipe.Rating{}
	}
	count := number(v.Get("ratingCount"))
	if count == nil {
		count = number(v.Get("reviewCount"))
	}
	return recipe.Rating{Value: number(v.Get("ratingValue")), Count: count}
}

// number reads a non-negative number from a JSON number or numeric string.
func number(v *jsonvalue.Value) *float64 {
	if f, ok := v.Num(); ok {
		if f < 0 {
			return nil
		}
		return recipe.FloatPtr(f)
	}
	s, ok := v.Str()
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, ",", "")), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return recipe.FloatPtr(f)
}
