package structured

import (
	"net/url"
	"strings"

	"recipebox/internal/jsonvalue"
)

// imageMeta is tried in order; the first usable content wins.
var imageMeta = []string{
	"og:image",
	"og:image:url",
	"og:image:secure_url",
	"twitter:image",
	"twitter:image:src",
}

// pageImage picks the representative image: social meta tags first, then the
// recipe node's image field. Returns "" when nothing resolves.
func pageImage(meta map[string]string, node *jsonvalue.Value, pageURL string) string {
	for _, key := range imageMeta {
		if u, ok := ResolveImageURL(meta[key], pageURL); ok {
			return u
		}
	}
	for _, candidate := range imageCandidates(node.Get("image")) {
		if u, ok := ResolveImageURL(candidate, pageURL); ok {
			return u
		}
	}
	return ""
}

// imageCandidates accepts a URL string, an ImageObject, or an array of either.
func imageCandidates(v *jsonvalue.Value) []string {
	var out []string
	stack := []*jsonvalue.Value{v}
	for len(stack) > 0 {
		n := stack[0]
		stack = stack[1:]
		switch {
		case n.IsNull():
		case n.Kind == jsonvalue.String:
			out = append(out, n.Text())
		case n.Kind == jsonvalue.Object:
			if u := n.Get("url").Text(); u != "" {
				out = append(out, u)
			} else if u := n.Get("contentUrl").Text(); u != "" {
				out = append(out, u)
			}
		case n.Kind == jsonvalue.Array:
			stack = append(stack, n.Items()...)
		}
	}
	return out
}

// ResolveImageURL makes raw absolute against pageURL. Protocol-relative and
// relative references are resolved; data URIs and non-http results are
// rejected.
func ResolveImageURL(raw, pageURL string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(strings.ToLower(raw), "data:") {
		return "", false
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if !ref.IsAbs() {
		base, err := url.Parse(pageURL)
		if err != nil || !base.IsAbs() {
			return "", false
		}
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", false
	}
	if ref.Host == "" {
		return "", false
	}
	return ref.String(), true
}
