// Package classify decides whether a fetched page is worth parsing: whether
// it reads like a recipe and whether it sits behind a paywall.
package classify

import "strings"

// Tables holds the keyword lists the heuristics run on. They are data so
// they can be tuned from a file without code changes; see the yaml tags.
type Tables struct {
	RecipeSignals   []string `yaml:"recipe_signals"`
	MinSignals      int      `yaml:"min_signals"`
	PaywallPhrases  []string `yaml:"paywall_phrases"`
	PaywallStatuses []int    `yaml:"paywall_statuses"`
}

// DefaultTables returns the built-in heuristics.
func DefaultTables() Tables {
	return Tables{
		RecipeSignals: []string{"ingredients", "instructions", "directions", "prep time", "cook time", "servings"},
		MinSignals:    2,
		PaywallPhrases: []string{
			"subscribe to continue",
			"subscribe to read",
			"subscribers only",
			"subscriber-only",
			"member-only",
			"members only",
			"paywall",
			"continue reading",
			"already a subscriber",
			"sign in to continue",
			"start your free trial",
		},
		PaywallStatuses: []int{402, 403, 451},
	}
}

// Merge replaces each list in t with the one in over when over's is set.
func (t *Tables) Merge(over Tables) {
	if len(over.RecipeSignals) > 0 {
		t.RecipeSignals = over.RecipeSignals
	}
	if over.MinSignals > 0 {
		t.MinSignals = over.MinSignals
	}
	if len(over.PaywallPhrases) > 0 {
		t.PaywallPhrases = over.PaywallPhrases
	}
	if len(over.PaywallStatuses) > 0 {
		t.PaywallStatuses = over.PaywallStatuses
	}
}

// LooksLikeRecipe is true when structured recipe data was found or when at
// least MinSignals distinct signal terms appear in the visible text.
func (t Tables) LooksLikeRecipe(text string, structuredFound bool) bool {
	if structuredFound {
		return true
	}
	return t.SignalCount(text) >= t.minSignals()
}

// SignalCount counts distinct signal terms present in text.
func (t Tables) SignalCount(text string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, s := range t.RecipeSignals {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && strings.Contains(lower, s) {
			n++
		}
	}
	return n
}

// LooksPaywalled is true when the raw markup or visible text contains any
// paywall phrase.
func (t Tables) LooksPaywalled(html, text string) bool {
	combined := strings.ToLower(html + "\n" + text)
	for _, p := range t.PaywallPhrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && strings.Contains(combined, p) {
			return true
		}
	}
	return false
}

// PaywallStatus reports whether an HTTP status alone signals a paywall.
func (t Tables) PaywallStatus(status int) bool {
	for _, s := range t.PaywallStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (t Tables) minSignals() int {
	if t.MinSignals <= 0 {
		return 2
	}
	return t.MinSignals
}
