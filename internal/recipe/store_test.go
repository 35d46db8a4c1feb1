package recipe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(id string, created time.Time) *Record {
	return &Record{
		ID:        id,
		SourceURL: "https://example.com/" + id,
		CreatedAt: created,
		Recipe: Recipe{
			Title:            "Pancakes " + id,
			OriginalServings: 4,
			Allergens:        []string{"eggs"},
			Tips:             []string{},
			Ingredients: []Ingredient{
				{Group: StringPtr(DefaultGroup), Item: "flour", Amount: FloatPtr(2), Unit: StringPtr("cup")},
			},
			Instructions: []string{"Mix.", "Cook."},
		},
	}
}

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	rec := sampleRecord("a", time.Now())
	require.NoError(t, store.SaveRecipe(ctx, rec))

	// Mutating the caller's copy must not leak into the store.
	rec.Ingredients[0].Item = "changed"

	got, err := store.GetRecipe(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "flour", got.Ingredients[0].Item)
	assert.Equal(t, "Pancakes a", got.Title)

	require.NoError(t, store.DeleteRecipe(ctx, "a"))
	_, err = store.GetRecipe(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteRecipe(ctx, "a"), ErrNotFound)
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRecipe(ctx, sampleRecord("old", base)))
	require.NoError(t, store.SaveRecipe(ctx, sampleRecord("new", base.Add(time.Hour))))
	require.NoError(t, store.SaveRecipe(ctx, sampleRecord("mid", base.Add(time.Minute))))

	all, err := store.ListRecipes(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{all[0].ID, all[1].ID, all[2].ID})

	limited, err := store.ListRecipes(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRowRoundTrip(t *testing.T) {
	rec := sampleRecord("row", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	rec.Author = StringPtr("Jane")

	row, err := toRow(rec)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes row", row.Title)
	assert.Contains(t, string(row.Data), `"original_servings":4`)

	back, err := fromRow(row)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, back.ID)
	assert.Equal(t, rec.SourceURL, back.SourceURL)
	assert.Equal(t, rec.Recipe, back.Recipe)
}

func TestToRow_DefaultsCreatedAt(t *testing.T) {
	rec := sampleRecord("zero", time.Time{})
	row, err := toRow(rec)
	require.NoError(t, err)
	assert.False(t, row.CreatedAt.IsZero())
}

func TestFilterAllergens(t *testing.T) {
	got := FilterAllergens([]string{" Gluten", "dairy", "chocolate", "gluten", "NUTS", ""})
	assert.Equal(t, []string{"gluten", "dairy", "nuts"}, got)
}

func TestCleanTips(t *testing.T) {
	got := CleanTips([]string{" a ", "", "b", "   ", "c", "d", "e", "f", "g"})
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, got)
}

func TestHasCustomGroup(t *testing.T) {
	r := Recipe{Ingredients: []Ingredient{{Item: "salt"}, {Group: StringPtr("Ingredients"), Item: "pepper"}}}
	assert.False(t, r.HasCustomGroup())

	r.Ingredients = append(r.Ingredients, Ingredient{Group: StringPtr("Sauce"), Item: "soy sauce"})
	assert.True(t, r.HasCustomGroup())
}
