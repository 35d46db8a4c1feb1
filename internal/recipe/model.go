package recipe

import (
	"strings"
	"time"
)

const (
	// DefaultTitle is used when no source provides a usable title.
	DefaultTitle = "Untitled Recipe"
	// DefaultGroup is the ungrouped ingredient section label.
	DefaultGroup = "Ingredients"
	// MaxTips bounds the number of tips kept on a recipe.
	MaxTips = 5
)

// Allergens is the controlled allergen vocabulary.
var Allergens = []string{
	"gluten", "dairy", "nuts", "peanuts", "soy", "eggs", "fish",
	"shellfish", "sesame", "mustard", "celery", "sulfites", "lupin", "mollusks",
}

var allergenSet = func() map[string]bool {
	m := make(map[string]bool, len(Allergens))
	for _, a := range Allergens {
		m[a] = true
	}
	return m
}()

// Recipe represents the canonical, normalized recipe.
type Recipe struct {
	Title            string       `json:"title"`
	Author           *string      `json:"author"`
	OriginalServings int          `json:"original_servings"`
	ImageURL         *string      `json:"image_url"`
	Rating           Rating       `json:"rating"`
	Allergens        []string     `json:"allergens"`
	Tips             []string     `json:"tips"`
	Ingredients      []Ingredient `json:"ingredients"`
	Instructions     []string     `json:"instructions"`
}

// Rating holds an aggregate rating; both fields are independently nullable.
type Rating struct {
	Value *float64 `json:"value"`
	Count *float64 `json:"count"`
}

// IsEmpty reports whether neither rating field is set.
func (r Rating) IsEmpty() bool {
	return r.Value == nil && r.Count == nil
}

// Ingredient is a single normalized ingredient line.
type Ingredient struct {
	Group    *string  `json:"group"`
	Item     string   `json:"item"`
	Amount   *float64 `json:"amount"`
	Unit     *string  `json:"unit"`
	Optional *bool    `json:"optional"`
}

// GroupName returns the ingredient's group, or DefaultGroup when unset.
func (i Ingredient) GroupName() string {
	if i.Group == nil || strings.TrimSpace(*i.Group) == "" {
		return DefaultGroup
	}
	return *i.Group
}

// HasCustomGroup reports whether any ingredient belongs to a non-default group.
func (r *Recipe) HasCustomGroup() bool {
	for _, ing := range r.Ingredients {
		if !strings.EqualFold(ing.GroupName(), DefaultGroup) {
			return true
		}
	}
	return false
}

// Record is a stored recipe together with its storage metadata.
type Record struct {
	ID            string    `json:"id"`
	SourceURL     string    `json:"source_url"`
	ThumbnailPath string    `json:"thumbnail_path,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	Recipe
}

// FilterAllergens lower-cases, de-duplicates and drops values outside the vocabulary.
func FilterAllergens(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool)
	for _, v := range values {
		a := strings.ToLower(strings.TrimSpace(v))
		if !allergenSet[a] || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}

// CleanTips trims tips, drops empty ones and keeps at most MaxTips.
func CleanTips(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		t := strings.TrimSpace(v)
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) == MaxTips {
			break
		}
	}
	return out
}

// Clone returns a deep copy of the recipe.
func (r Recipe) Clone() Recipe {
	c := r
	c.Author = cloneString(r.Author)
	c.ImageURL = cloneString(r.ImageURL)
	c.Rating = Rating{Value: cloneFloat(r.Rating.Value), Count: cloneFloat(r.Rating.Count)}
	c.Allergens = cloneStrings(r.Allergens)
	c.Tips = cloneStrings(r.Tips)
	c.Instructions = cloneStrings(r.Instructions)
	if r.Ingredients != nil {
		c.Ingredients = make([]Ingredient, len(r.Ingredients))
		for i, ing := range r.Ingredients {
			c.Ingredients[i] = ing.Clone()
		}
	}
	return c
}

// Clone returns a copy of the ingredient that shares no pointers with it.
func (ing Ingredient) Clone() Ingredient {
	return Ingredient{
		Group:    cloneString(ing.Group),
		Item:     ing.Item,
		Amount:   cloneFloat(ing.Amount),
		Unit:     cloneString(ing.Unit),
		Optional: cloneBool(ing.Optional),
	}
}

// StringPtr returns a pointer to s, or nil when s is blank.
func StringPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
