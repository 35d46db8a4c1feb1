package structured

import (
	"strings"

	"golang.org/x/net/html"

	"recipebox/internal/jsonvalue"
)

// microdataItem converts an itemscope element into the same object shape a
// JSON-LD block would produce, so both share one field mapping. Nested
// itemscopes become nested objects; repeated properties become arrays.
func microdataItem(scope *html.Node) *jsonvalue.Value {
	type prop struct {
		name  string
		value *jsonvalue.Value
	}
	var props []prop

	var f func(*html.Node)
	f = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			names := strings.Fields(attr(c, "itemprop"))
			nested := hasAttr(c, "itemscope")
			if len(names) > 0 {
				var v *jsonvalue.Value
				if nested {
					v = microdataItem(c)
				} else {
					v = jsonvalue.NewString(propValue(c))
				}
				for _, name := range names {
					props = append(props, prop{name: name, value: v})
				}
			}
			if nested {
				continue
			}
			f(c)
		}
	}
	f(scope)

	obj := jsonvalue.NewObject()
	if t := attr(scope, "itemtype"); t != "" {
		obj.Set("@type", jsonvalue.NewString(t))
	}
	grouped := make(map[string][]*jsonvalue.Value)
	var order []string
	for _, p := range props {
		if _, ok := grouped[p.name]; !ok {
			order = append(order, p.name)
		}
		grouped[p.name] = append(grouped[p.name], p.value)
	}
	for _, name := range order {
		vals := grouped[name]
		if len(vals) == 1 && !listProp[name] {
			obj.Set(name, vals[0])
			continue
		}
		obj.Set(name, jsonvalue.NewArray(vals...))
	}
	return obj
}

// listProp names properties that are always lists in the JSON-LD mapping.
var listProp = map[string]bool{
	"recipeIngredient":   true,
	"ingredients":        true,
	"recipeInstructions": true,
}

// propValue reads a microdata property value per element type.
func propValue(n *html.Node) string {
	switch n.Data {
	case "meta":
		return attr(n, "content")
	case "img", "audio", "video", "source":
		return attr(n, "src")
	case "a", "link", "area":
		return attr(n, "href")
	case "time":
		if dt := attr(n, "datetime"); dt != "" {
			return dt
		}
	case "data", "meter":
		if v := attr(n, "value"); v != "" {
			return v
		}
	}
	if c := attr(n, "content"); c != "" {
		return c
	}
	return strings.Join(strings.Fields(nodeText(n)), " ")
}
