package reconcile

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"recipebox/internal/jsonvalue"
	"recipebox/internal/normalize"
	"recipebox/internal/recipe"
	"recipebox/internal/structured"
)

// Caps applied to model output before normalization.
const (
	MaxIngredients  = 200
	MaxInstructions = 100
)

// ErrMalformedOutput is returned when model text holds no parseable JSON object.
var ErrMalformedOutput = errors.New("malformed model output")

var leadingInt = regexp.MustCompile(`\d+`)

// ParseModelOutput validates free model text and normalizes it into a recipe.
// The JSON object is taken from the first '{' to the last '}'. Fields of the
// wrong type are dropped rather than trusted.
func ParseModelOutput(text string, defaultServings int, headers normalize.HeaderRules) (*recipe.Recipe, error) {
	obj, err := jsonvalue.ExtractObject(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if defaultServings < 1 {
		defaultServings = 1
	}

	title := oneLine(obj.Get("title").Text())
	if title == "" {
		title = recipe.DefaultTitle
	}

	r := &recipe.Recipe{
		Title:            title,
		Author:           recipe.StringPtr(oneLine(stringField(obj.Get("author")))),
		OriginalServings: servingsField(obj.Get("original_servings"), defaultServings),
		Rating:           ratingField(obj.Get("rating")),
		Allergens:        recipe.FilterAllergens(textList(obj.Get("allergens"), 0)),
		Tips:             recipe.CleanTips(textList(obj.Get("tips"), 0)),
	}
	if u, ok := structured.ResolveImageURL(stringField(obj.Get("image_url")), ""); ok {
		r.ImageURL = &u
	}

	r.Ingredients = headers.Ingredients(ingredientsField(obj.Get("ingredients")))
	r.Instructions = normalize.Instructions(textList(obj.Get("instructions"), MaxInstructions))
	return r, nil
}

func ingredientsField(v *jsonvalue.Value) []normalize.Raw {
	items := v.Items()
	if len(items) > MaxIngredients {
		items = items[:MaxIngredients]
	}
	out := make([]normalize.Raw, 0, len(items))
	for _, it := range items {
		switch it.Kind {
		case jsonvalue.String:
			raw := normalize.ParseLine(it.Text())
			out = append(out, raw)
		case jsonvalue.Object:
			item := stringField(it.Get("item"))
			if item == "" {
				item = stringField(it.Get("name"))
			}
			raw := normalize.Raw{
				Item:                item,
				Group:               recipe.StringPtr(stringField(it.Get("group"))),
				Unit:                recipe.StringPtr(stringField(it.Get("unit"))),
				StripQuantityPrefix: true,
			}
			amount := it.Get("amount")
			if f, ok := amount.Num(); ok {
				raw.Amount = &f
			} else {
				raw.AmountText = stringField(amount)
			}
			if b, ok := it.Get("optional").BoolValue(); ok {
				raw.Optional = &b
			}
			out = append(out, raw)
		}
	}
	return out
}

// textList reads a string array, a single string, or an array of objects with
// text. limit bounds the number of entries when positive.
func textList(v *jsonvalue.Value, limit int) []string {
	items := v.Items()
	if _, ok := v.Str(); ok {
		items = []*jsonvalue.Value{v}
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s := stringField(it)
		if s == "" && it.Kind == jsonvalue.Object {
			s = stringField(it.Get("text"))
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// stringField returns a string or number as text; other kinds give "".
func stringField(v *jsonvalue.Value) string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case jsonvalue.String, jsonvalue.Number:
		return strings.TrimSpace(v.Text())
	}
	return ""
}

func servingsField(v *jsonvalue.Value, def int) int {
	if f, ok := v.Num(); ok {
		if f >= 1 && !math.IsInf(f, 0) && f < math.MaxInt32 {
			return int(f)
		}
		return def
	}
	m := leadingInt.FindString(stringField(v))
	if n, err := strconv.Atoi(m); err == nil && n >= 1 {
		return n
	}
	return def
}

func ratingField(v *jsonvalue.Value) recipe.Rating {
	return recipe.Rating{Value: nonNegative(v.Get("value")), Count: nonNegative(v.Get("count"))}
}

func nonNegative(v *jsonvalue.Value) *float64 {
	f, ok := v.Num()
	if !ok {
		var err error
		f, err = strconv.ParseFloat(stringField(v), 64)
		if err != nil {
			return nil
		}
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return recipe.FloatPtr(f)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
