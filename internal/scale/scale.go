// Package scale computes display quantities for a recipe at a serving count
// and unit system.
package scale

import (
	"recipebox/internal/recipe"
	"recipebox/internal/units"
)

// ComputedIngredient is an ingredient with its scaled, display-ready amount.
// It is derived on demand and never stored.
type ComputedIngredient struct {
	recipe.Ingredient
	ScaledAmount  *float64 `json:"scaled_amount"`
	DisplayAmount *string  `json:"display_amount"`
	DisplayUnit   *string  `json:"display_unit"`
}

// Amount scales amount linearly from original to current servings. A nil
// amount stays nil; a non-positive serving count on either side leaves the
// amount unscaled.
func Amount(amount *float64, original, current int) *float64 {
	if amount == nil {
		return nil
	}
	v := *amount
	if original >= 1 && current >= 1 {
		v = v / float64(original) * float64(current)
	}
	return &v
}

// Compute scales every ingredient of r to servings and formats it for the
// chosen unit system. Imperial units with a known metric rule are converted
// when metric is set; everything else keeps its unit.
func Compute(r *recipe.Recipe, servings int, metric bool) []ComputedIngredient {
	out := make([]ComputedIngredient, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		out = append(out, computeOne(ing, r.OriginalServings, servings, metric))
	}
	return out
}

func computeOne(ing recipe.Ingredient, original, current int, metric bool) ComputedIngredient {
	ing = ing.Clone()
	c := ComputedIngredient{
		Ingredient:   ing,
		ScaledAmount: Amount(ing.Amount, original, current),
	}
	if ing.Unit != nil {
		unit := *ing.Unit
		c.DisplayUnit = &unit
	}
	if c.ScaledAmount == nil {
		return c
	}

	value := *c.ScaledAmount
	if metric && ing.Unit != nil {
		if v, to, ok := units.Convert(value, *ing.Unit); ok {
			value = v
			c.DisplayUnit = &to
		}
	}
	display := units.Format(value, metric)
	c.DisplayAmount = &display
	return c
}
