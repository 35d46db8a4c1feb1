package shopping

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"recipebox/internal/jsonvalue"
)

// Generator produces free-form model text.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

const consolidatePrompt = `You tidy shopping lists. You receive items as JSON objects with "key", "item" and "unit".
Group items that are the same product under different names, for example "bread flour" and "flour".
Reply with a single JSON object and nothing else:
{"groups": [{"name": "shared product name", "keys": ["key", "key"]}]}
Only list groups with two or more keys. Never group items with different units.`

type promptItem struct {
	Key  string `json:"key"`
	Item string `json:"item"`
	Unit string `json:"unit"`
}

// Consolidate asks the model to group near-duplicate names and folds each
// group's items that share a unit into one line. On any model or parse
// failure the input list is returned along with the error.
func (m *Merger) Consolidate(ctx context.Context, gen Generator, items []Item) ([]Item, error) {
	if len(items) < 2 {
		return items, nil
	}

	payload := make([]promptItem, 0, len(items))
	for _, it := range items {
		p := promptItem{Key: it.Key, Item: it.Item}
		if it.Unit != nil {
			p.Unit = *it.Unit
		}
		payload = append(payload, p)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return items, fmt.Errorf("failed to encode shopping list: %w", err)
	}

	out, err := gen.Generate(ctx, consolidatePrompt, string(data))
	if err != nil {
		return items, fmt.Errorf("failed to consolidate shopping list: %w", err)
	}
	obj, err := jsonvalue.ExtractObject(out)
	if err != nil {
		return items, fmt.Errorf("failed to parse consolidation groups: %w", err)
	}

	return m.applyGroups(items, obj.Get("groups")), nil
}

// applyGroups renames grouped items to the group's normalized name. Items
// then recombine by key, so only those sharing a unit are summed. A key is
// claimed by the first group that lists it.
func (m *Merger) applyGroups(items []Item, groups *jsonvalue.Value) []Item {
	rename := make(map[string]string)
	for _, g := range groups.Items() {
		name := m.NormalizeName(g.Get("name").Text())
		if name == "" {
			continue
		}
		for _, k := range g.Get("keys").Items() {
			key := strings.TrimSpace(k.Text())
			if _, taken := rename[key]; key != "" && !taken {
				rename[key] = name
			}
		}
	}

	out := make([]Item, 0, len(items))
	for _, it := range items {
		c := it
		c.Recipes = append([]string(nil), it.Recipes...)
		if name, ok := rename[it.Key]; ok {
			unit := ""
			if it.Unit != nil {
				unit = *it.Unit
			}
			c.Item = name
			c.Key = Key(name, unit)
		}
		out = append(out, c)
	}
	return combine(out)
}
