package reconcile

import (
	"encoding/json"
	"fmt"
	"strings"

	"recipebox/internal/recipe"
)

// MaxPromptText bounds the page text sent to the model, in runes.
const MaxPromptText = 20000

const systemPrompt = `You extract recipes from web pages. Reply with a single JSON object and nothing else.
The object has these fields:
{
  "title": string,
  "author": string or null,
  "original_servings": integer,
  "image_url": string or null,
  "rating": {"value": number or null, "count": number or null},
  "allergens": [string],
  "tips": [string],
  "ingredients": [{"group": string or null, "item": string, "amount": number or null, "unit": string or null, "optional": boolean}],
  "instructions": [string]
}
Rules:
- "item" is the ingredient name only. Put the quantity in "amount" and the unit in "unit".
- Use "group" for section headings such as "Sauce" or "Topping". Leave it null when the recipe has no sections.
- "allergens" may only contain: %s.
- Give at most %d short, practical "tips".
- Each entry of "instructions" is one step, without step numbers.`

// BuildPrompt returns the system instruction and user content for a page.
// hint carries the structured candidate, if any, for the model to refine.
func BuildPrompt(pageURL, text string, hint *recipe.Recipe) (system, user string) {
	system = fmt.Sprintf(systemPrompt, strings.Join(recipe.Allergens, ", "), recipe.MaxTips)

	var b strings.Builder
	fmt.Fprintf(&b, "Page URL: %s\n\n", pageURL)
	b.WriteString("Page text:\n")
	b.WriteString(truncateRunes(text, MaxPromptText))
	if hint != nil {
		if data, err := json.Marshal(hint); err == nil {
			b.WriteString("\n\nStructured data found on the page:\n")
			b.Write(data)
		}
	}
	return system, b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
