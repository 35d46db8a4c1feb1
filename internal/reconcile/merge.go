package reconcile

import "recipebox/internal/recipe"

// Merge combines a structured candidate with a model-produced recipe.
//
// The model's ingredients, instructions and tips win when non-empty, falling
// back to the structured lists. The model's rating wins when it has any field
// set. The image is the page image if one was found, then the model's, then
// the structured one. Title, servings and allergens come from the model.
// With no model recipe the structured candidate is returned unchanged.
func Merge(structured, model *recipe.Recipe, pageImage string) *recipe.Recipe {
	if model == nil {
		if structured == nil {
			return nil
		}
		c := structured.Clone()
		return &c
	}
	out := model.Clone()
	if structured == nil {
		if pageImage != "" {
			out.ImageURL = &pageImage
		}
		return &out
	}
	s := structured.Clone()

	if len(out.Ingredients) == 0 {
		out.Ingredients = s.Ingredients
	}
	if len(out.Instructions) == 0 {
		out.Instructions = s.Instructions
	}
	if len(out.Tips) == 0 {
		out.Tips = s.Tips
	}
	if out.Rating.IsEmpty() {
		out.Rating = s.Rating
	}
	if out.Author == nil {
		out.Author = s.Author
	}

	switch {
	case pageImage != "":
		out.ImageURL = &pageImage
	case out.ImageURL != nil:
	default:
		out.ImageURL = s.ImageURL
	}
	return &out
}
