package shopping

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebox/internal/recipe"
)

func ing(item string, amount *float64, unit string) recipe.Ingredient {
	return recipe.Ingredient{Item: item, Amount: amount, Unit: recipe.StringPtr(unit)}
}

func TestMerge_SumsMatchingItems(t *testing.T) {
	a := &recipe.Recipe{Title: "A", Ingredients: []recipe.Ingredient{ing("Olive oil", recipe.FloatPtr(1), "tbsp")}}
	b := &recipe.Recipe{Title: "B", Ingredients: []recipe.Ingredient{ing("olive oil", recipe.FloatPtr(2), "tbsp")}}

	items := Merge([]*recipe.Recipe{a, b})
	require.Len(t, items, 1)
	assert.Equal(t, "olive oil::tbsp", items[0].Key)
	assert.Equal(t, 3.0, *items[0].Amount)
	assert.Equal(t, "tbsp", *items[0].Unit)
	assert.Equal(t, []string{"A", "B"}, items[0].Recipes)
}

func TestMerge_DifferentUnitsStaySeparate(t *testing.T) {
	a := &recipe.Recipe{Title: "A", Ingredients: []recipe.Ingredient{
		ing("butter", recipe.FloatPtr(2), "tbsp"),
		ing("butter", recipe.FloatPtr(100), "g"),
		ing("eggs", recipe.FloatPtr(2), ""),
	}}
	b := &recipe.Recipe{Title: "B", Ingredients: []recipe.Ingredient{
		ing("Butter (softened)", recipe.FloatPtr(1), "Tablespoons"),
		ing("eggs", recipe.FloatPtr(1), ""),
	}}

	items := Merge([]*recipe.Recipe{a, b})
	require.Len(t, items, 3)

	assert.Equal(t, "butter::g", items[0].Key)
	assert.Equal(t, 100.0, *items[0].Amount)
	assert.Equal(t, []string{"A"}, items[0].Recipes)

	assert.Equal(t, "butter::tbsp", items[1].Key)
	assert.Equal(t, 3.0, *items[1].Amount)

	assert.Equal(t, "eggs::unitless", items[2].Key)
	assert.Equal(t, 3.0, *items[2].Amount)
	assert.Nil(t, items[2].Unit)
}

func TestMerge_SynonymsAndNullAmounts(t *testing.T) {
	a := &recipe.Recipe{Title: "Bread", Ingredients: []recipe.Ingredient{
		ing("All-Purpose Flour", recipe.FloatPtr(2), "cups"),
		ing("salt", nil, ""),
	}}
	b := &recipe.Recipe{Title: "Cake", Ingredients: []recipe.Ingredient{
		ing("plain  flour", recipe.FloatPtr(1), "cup"),
		ing("Salt", nil, ""),
	}}
	c := &recipe.Recipe{Title: "Bread", Ingredients: []recipe.Ingredient{ing("white flour", nil, "cup")}}

	items := Merge([]*recipe.Recipe{a, b, c, nil})
	require.Len(t, items, 2)

	assert.Equal(t, "flour::cup", items[0].Key)
	assert.Equal(t, 3.0, *items[0].Amount)
	assert.Equal(t, []string{"Bread", "Cake"}, items[0].Recipes)

	assert.Equal(t, "salt::unitless", items[1].Key)
	assert.Nil(t, items[1].Amount)
}

func TestMerge_Commutative(t *testing.T) {
	a := &recipe.Recipe{Title: "A", Ingredients: []recipe.Ingredient{
		ing("Flour", recipe.FloatPtr(2), "cup"),
		ing("milk", recipe.FloatPtr(250), "ml"),
		ing("vanilla", nil, "tsp"),
	}}
	b := &recipe.Recipe{Title: "B", Ingredients: []recipe.Ingredient{
		ing("flour", recipe.FloatPtr(0.5), "cup"),
		ing("Milk", recipe.FloatPtr(1), "cup"),
		ing("vanilla", recipe.FloatPtr(1), "tsp"),
	}}

	ab := Merge([]*recipe.Recipe{a, b})
	ba := Merge([]*recipe.Recipe{b, a})
	require.Len(t, ab, len(ba))
	for i := range ab {
		assert.Equal(t, ab[i].Key, ba[i].Key)
		assert.Equal(t, ab[i].Item, ba[i].Item)
		assert.Equal(t, ab[i].Unit, ba[i].Unit)
		assert.Equal(t, ab[i].Amount, ba[i].Amount)
		assert.ElementsMatch(t, ab[i].Recipes, ba[i].Recipes)
	}
}

func TestNormalizeName(t *testing.T) {
	m := New(map[string]string{"Spring Onions": "green onion"})

	tests := map[string]string{
		"  Olive   Oil ":              "olive oil",
		"Tomatoes (diced, canned)":    "tomatoes",
		"ＦＬＯＵＲ":                      "flour",
		"All-purpose flour":           "flour",
		"spring onions":               "green onion",
		"Confectioners' sugar, sifted": "confectioners' sugar, sifted",
	}
	for in, want := range tests {
		assert.Equal(t, want, m.NormalizeName(in), in)
	}
}

// mockGenerator returns canned model text.
type mockGenerator struct {
	output string
	err    error
}

func (m *mockGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	return m.output, m.err
}

func consolidationInput() []Item {
	return Merge([]*recipe.Recipe{
		{Title: "A", Ingredients: []recipe.Ingredient{
			ing("bread flour", recipe.FloatPtr(1), "cup"),
			ing("cake flour", recipe.FloatPtr(200), "g"),
		}},
		{Title: "B", Ingredients: []recipe.Ingredient{
			ing("flour", recipe.FloatPtr(2), "cup"),
			ing("sugar", recipe.FloatPtr(1), "cup"),
		}},
	})
}

func TestConsolidate_GroupsOnlySharedUnits(t *testing.T) {
	gen := &mockGenerator{output: `Here you go: {"groups": [
	  {"name": "Flour", "keys": ["bread flour::cup", "cake flour::g", "flour::cup"]},
	  {"name": "sweet", "keys": ["sugar::cup", "flour::cup"]}
	]}`}

	items, err := New(nil).Consolidate(context.Background(), gen, consolidationInput())
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "flour::cup", items[0].Key)
	assert.Equal(t, 3.0, *items[0].Amount)
	assert.Equal(t, []string{"A", "B"}, items[0].Recipes)

	assert.Equal(t, "flour::g", items[1].Key)
	assert.Equal(t, 200.0, *items[1].Amount)

	assert.Equal(t, "sweet::cup", items[2].Key)
}

func TestConsolidate_FailureKeepsDeterministicList(t *testing.T) {
	in := consolidationInput()

	out, err := New(nil).Consolidate(context.Background(), &mockGenerator{err: errors.New("down")}, in)
	assert.Error(t, err)
	assert.Equal(t, in, out)

	out, err = New(nil).Consolidate(context.Background(), &mockGenerator{output: "not json"}, in)
	assert.Error(t, err)
	assert.Equal(t, in, out)
}
