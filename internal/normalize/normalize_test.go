package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebox/internal/recipe"
)

func TestIngredient_ModelTextWithQuantityPrefix(t *testing.T) {
	ing, ok := Ingredient(Raw{
		Item:                "2 cups all-purpose flour (optional)",
		Amount:              recipe.FloatPtr(2),
		Unit:                recipe.StringPtr("cups"),
		StripQuantityPrefix: true,
	})
	require.True(t, ok)

	assert.Equal(t, "all-purpose flour", ing.Item)
	require.NotNil(t, ing.Optional)
	assert.True(t, *ing.Optional)
	require.NotNil(t, ing.Amount)
	assert.Equal(t, 2.0, *ing.Amount)
	require.NotNil(t, ing.Unit)
	assert.Equal(t, "cups", *ing.Unit)
}

func TestIngredient_OptionalDetection(t *testing.T) {
	tests := []struct {
		name     string
		raw      Raw
		item     string
		optional *bool
	}{
		{"bare word", Raw{Item: "parsley, optional"}, "parsley", recipe.BoolPtr(true)},
		{"parenthetical", Raw{Item: "chili flakes ( Optional )"}, "chili flakes", recipe.BoolPtr(true)},
		{"explicit false wins", Raw{Item: "nuts (optional)", Optional: recipe.BoolPtr(false)}, "nuts", recipe.BoolPtr(false)},
		{"explicit true", Raw{Item: "cream", Optional: recipe.BoolPtr(true)}, "cream", recipe.BoolPtr(true)},
		{"not a whole word", Raw{Item: "optionally salted butter"}, "optionally salted butter", nil},
		{"plain", Raw{Item: "  sugar  "}, "sugar", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ing, ok := Ingredient(tt.raw)
			require.True(t, ok)
			assert.Equal(t, tt.item, ing.Item)
			assert.Equal(t, tt.optional, ing.Optional)
		})
	}
}

func TestIngredient_FallsBackToRawText(t *testing.T) {
	ing, ok := Ingredient(Raw{Item: "(optional)"})
	require.True(t, ok)
	assert.Equal(t, "(optional)", ing.Item)
	assert.True(t, *ing.Optional)

	_, ok = Ingredient(Raw{Item: "   "})
	assert.False(t, ok)
}

func TestIngredient_AmountCoercion(t *testing.T) {
	ing, _ := Ingredient(Raw{Item: "milk", AmountText: "1 1/2"})
	require.NotNil(t, ing.Amount)
	assert.Equal(t, 1.5, *ing.Amount)

	ing, _ = Ingredient(Raw{Item: "milk", AmountText: "a splash"})
	assert.Nil(t, ing.Amount)

	ing, _ = Ingredient(Raw{Item: "milk", Amount: recipe.FloatPtr(math.NaN())})
	assert.Nil(t, ing.Amount)

	ing, _ = Ingredient(Raw{Item: "milk", Unit: recipe.StringPtr("  ")})
	assert.Nil(t, ing.Unit)
}

func TestIngredient_Idempotent(t *testing.T) {
	inputs := []Raw{
		{Item: "2 cups all-purpose flour (optional)", StripQuantityPrefix: true},
		{Item: "1 ½ tbsp of olive oil", AmountText: "1 ½", Unit: recipe.StringPtr("tbsp"), StripQuantityPrefix: true},
		{Item: "salt ,  optional ;", Group: recipe.StringPtr(" Sauce ")},
		{Item: "optional"},
		{Item: "3 eggs", StripQuantityPrefix: true},
		{Item: "butter", AmountText: "NaN"},
	}

	for _, in := range inputs {
		once, ok := Ingredient(in)
		require.True(t, ok, in.Item)

		again := FromIngredient(once)
		again.StripQuantityPrefix = in.StripQuantityPrefix
		twice, ok := Ingredient(again)
		require.True(t, ok, in.Item)

		assert.Equal(t, once, twice, in.Item)
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line   string
		item   string
		amount string
		unit   *string
	}{
		{"2 tbsp soy sauce", "soy sauce", "2", recipe.StringPtr("tbsp")},
		{"1 1/2 cups of sugar", "sugar", "1 1/2", recipe.StringPtr("cups")},
		{"3 eggs", "eggs", "3", nil},
		{"2 cloves garlic, minced", "garlic, minced", "2", recipe.StringPtr("cloves")},
		{"4 fl oz cream", "cream", "4", recipe.StringPtr("fl oz")},
		{"Salt to taste", "Salt to taste", "", nil},
		{"FOR THE SAUCE:", "FOR THE SAUCE:", "", nil},
		{"2 cups", "2 cups", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			raw := ParseLine(tt.line)
			assert.Equal(t, tt.item, raw.Item)
			assert.Equal(t, tt.amount, raw.AmountText)
			assert.Equal(t, tt.unit, raw.Unit)
		})
	}
}

func TestStripQuantityPrefix(t *testing.T) {
	assert.Equal(t, "flour", StripQuantityPrefix("2 cups flour"))
	assert.Equal(t, "butter", StripQuantityPrefix("1/2 lb butter"))
	assert.Equal(t, "eggs", StripQuantityPrefix("2 eggs"))
	assert.Equal(t, "2 cups", StripQuantityPrefix("2 cups"))
	assert.Equal(t, "fresh basil", StripQuantityPrefix("fresh basil"))
}

func lines(raws ...string) []recipe.Ingredient {
	out := make([]recipe.Ingredient, 0, len(raws))
	for _, l := range raws {
		ing, ok := Ingredient(ParseLine(l))
		if ok {
			out = append(out, ing)
		}
	}
	return out
}

func TestGroup_SauceHeader(t *testing.T) {
	got := Group(lines("FOR THE SAUCE:", "2 tbsp soy sauce", "1 tsp sesame oil", "Salt to taste"))

	require.Len(t, got, 3)
	for _, ing := range got {
		require.NotNil(t, ing.Group)
		assert.Equal(t, "Sauce", *ing.Group)
	}
	assert.Equal(t, "Salt to taste", got[2].Item)
	assert.Nil(t, got[2].Amount)
}

func TestGroup_Rules(t *testing.T) {
	got := Group(lines(
		"2 cups flour",
		"Topping:",
		"1 cup berries",
		"GARNISH",
		"mint leaves",
		"For the dressing",
		"1 tbsp vinegar",
	))

	groups := make([]string, 0, len(got))
	for _, ing := range got {
		groups = append(groups, ing.GroupName())
	}
	assert.Equal(t, []string{"Ingredients", "Topping", "Garnish", "dressing"}, []string{groups[0], groups[1], groups[2], groups[3]})
	assert.Len(t, got, 4)
}

func TestGroup_OptionalHeadings(t *testing.T) {
	tests := []struct {
		name       string
		lines      []string
		wantGroups []string
		rawOnly    bool // needs the uncleaned heading text
	}{
		{
			name:       "bare optional heading",
			lines:      []string{"Optional:", "1 cup walnuts"},
			wantGroups: []string{"Optional"},
		},
		{
			name:       "optional heading after other groups",
			lines:      []string{"2 cups flour", "OPTIONAL:", "1 cup walnuts", "1 cup raisins"},
			wantGroups: []string{"Ingredients", "Optional", "Optional"},
		},
		{
			name:       "optional qualifier keeps the whole label",
			lines:      []string{"1 cup flour", "Optional garnish:", "mint leaves"},
			wantGroups: []string{"Ingredients", "Optional garnish"},
			rawOnly:    true,
		},
		{
			name:       "optional ingredient is not a heading",
			lines:      []string{"Salt (optional)", "1 cup walnuts"},
			wantGroups: []string{"Ingredients", "Ingredients"},
		},
	}

	groupsOf := func(ings []recipe.Ingredient) []string {
		out := make([]string, 0, len(ings))
		for _, ing := range ings {
			out = append(out, ing.GroupName())
		}
		return out
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raws := make([]Raw, 0, len(tt.lines))
			for _, l := range tt.lines {
				raws = append(raws, ParseLine(l))
			}
			assert.Equal(t, tt.wantGroups, groupsOf(DefaultHeaderRules().Ingredients(raws)))

			if !tt.rawOnly {
				assert.Equal(t, tt.wantGroups, groupsOf(Group(lines(tt.lines...))))
			}
		})
	}

	// The heading itself survives cleaning.
	ing, ok := Ingredient(ParseLine("Optional:"))
	require.True(t, ok)
	assert.Equal(t, "Optional:", ing.Item)
}

func TestGroup_ExplicitGroupAdopted(t *testing.T) {
	in := []recipe.Ingredient{
		{Group: recipe.StringPtr("Crust"), Item: "butter", Amount: recipe.FloatPtr(1)},
		{Item: "flour", Amount: recipe.FloatPtr(2)},
		{Group: recipe.StringPtr(recipe.DefaultGroup), Item: "sugar", Amount: recipe.FloatPtr(1)},
	}
	got := Group(in)

	require.Len(t, got, 3)
	assert.Equal(t, "Crust", got[0].GroupName())
	assert.Equal(t, "Crust", got[1].GroupName())
	assert.Equal(t, "Crust", got[2].GroupName())
	// Input untouched.
	assert.Nil(t, in[1].Group)
}

func TestGroup_Partition(t *testing.T) {
	rules := DefaultHeaderRules()
	inputs := [][]string{
		{"SAUCE", "1 cup stock", "Salt", "Dressing:", "1 tbsp oil", "pepper"},
		{"MIX", "TO SERVE:", "Chopped chives"},
		{"1 egg", "2 eggs", "3 eggs"},
		{},
	}

	for _, in := range inputs {
		ings := lines(in...)
		headers := 0
		for _, ing := range ings {
			if rules.Classify(ing).Kind == EntryHeader {
				headers++
			}
		}
		got := rules.Group(ings)
		assert.Len(t, got, len(ings)-headers)
		for _, ing := range got {
			assert.NotNil(t, ing.Group)
		}
	}
}

func TestClassify_AmountNeverHeader(t *testing.T) {
	e := DefaultHeaderRules().Classify(recipe.Ingredient{Item: "SAUCE:", Amount: recipe.FloatPtr(1)})
	assert.Equal(t, EntryIngredient, e.Kind)

	e = DefaultHeaderRules().Classify(recipe.Ingredient{Item: "Mixed greens"})
	assert.Equal(t, EntryIngredient, e.Kind)
}

func TestInstructions_Scenario(t *testing.T) {
	got := Instructions([]string{"Step 1: Preheat oven to 350F", "Mix flour and sugar", "in a bowl."})
	assert.Equal(t, []string{"Preheat oven to 350F", "Mix flour and sugar in a bowl."}, got)
}

func TestInstructions_Cleaning(t *testing.T) {
	got := Instructions([]string{
		"Instructions:",
		"1. Whisk the eggs.\n2) Add   milk.",
		"Step 3",
		"4",
		"Method",
		"3- Bake for 20 minutes.",
		"",
		"1.5 cups of batter go in each pan.",
	})
	assert.Equal(t, []string{
		"Whisk the eggs.",
		"Add milk.",
		"Bake for 20 minutes.",
		"1.5 cups of batter go in each pan.",
	}, got)
}

func TestInstructions_MarkerWithoutSpace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.Preheat the oven to 350F.", "Preheat the oven to 350F."},
		{"2)Grease a pan with butter.", "Grease a pan with butter."},
		{"3:Pour in the batter.", "Pour in the batter."},
		{"12-Éplucher les pommes.", "Éplucher les pommes."},
		{"1.5 cups of batter go in each pan.", "1.5 cups of batter go in each pan."},
		{"3-4 minutes per side is enough.", "3-4 minutes per side is enough."},
		{"10 minutes later, flip it.", "10 minutes later, flip it."},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, []string{tt.want}, Instructions([]string{tt.in}))
		})
	}
}

func TestInstructions_MergeRules(t *testing.T) {
	// Long lower-case line after a finished sentence stays separate.
	long := "and then let it rest on the counter for at least one full hour."
	got := Instructions([]string{"Knead the dough.", long})
	assert.Equal(t, []string{"Knead the dough.", long}, got)

	// Short lower-case tail joins even after punctuation.
	got = Instructions([]string{"Serve warm.", "or chilled."})
	assert.Equal(t, []string{"Serve warm. or chilled."}, got)

	// First line is never merged.
	got = Instructions([]string{"stir well"})
	assert.Equal(t, []string{"stir well"}, got)
}
