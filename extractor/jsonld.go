package extractor

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const jsonLDSelector = `script[type="application/ld+json"]`

// Property names under which structured-data nodes mention materials.
var materialKeys = []string{"material", "materials", "materialComposition", "fabric", "hasMaterial"}

// parseJSONBlocks decodes every structured-data block in document order.
// Malformed blocks are an expected condition and are skipped silently.
func parseJSONBlocks(snap *Snapshot) []interface{} {
	var blocks []interface{}
	snap.Doc.Find(jsonLDSelector).Each(func(_ int, s *goquery.Selection) {
		var v interface{}
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &v); err != nil {
			return
		}
		blocks = append(blocks, v)
	})
	return blocks
}

// FindProduct returns the first plain Product structured-data node in the
// document, with any discovered materials attached under "materials" so
// downstream extractors do not re-scan.
func FindProduct(snap *Snapshot) map[string]interface{} {
	node := findNode(snap, isProduct)
	attachMaterials(node)
	return node
}

// FindProductGroup returns the first ProductGroup node anywhere in the
// document. Groups carry variant-level price/sku/image data unavailable on a
// plain Product node, so callers prefer them when present.
func FindProductGroup(snap *Snapshot) map[string]interface{} {
	node := findNode(snap, isProductGroup)
	attachMaterials(node)
	return node
}

func findNode(snap *Snapshot, match func(map[string]interface{}) bool) map[string]interface{} {
	for _, block := range parseJSONBlocks(snap) {
		for _, item := range asList(block) {
			if node := matchNode(item, match); node != nil {
				return node
			}
		}
	}
	return nil
}

// matchNode checks one candidate and then descends into its @graph; blocks
// nest graphs of sub-nodes to arbitrary depth.
func matchNode(v interface{}, match func(map[string]interface{}) bool) map[string]interface{} {
	node := asMap(v)
	if node == nil {
		return nil
	}
	if match(node) {
		return node
	}
	for _, sub := range asList(node["@graph"]) {
		if found := matchNode(sub, match); found != nil {
			return found
		}
	}
	return nil
}

func isProductGroup(node map[string]interface{}) bool {
	return strings.Contains(nodeType(node), "productgroup")
}

func isProduct(node map[string]interface{}) bool {
	t := nodeType(node)
	return strings.Contains(t, "product") && !strings.Contains(t, "productgroup")
}

// nodeType renders the @type field, which may be a string or a list, as one
// lowercase string.
func nodeType(node map[string]interface{}) string {
	switch t := node["@type"].(type) {
	case string:
		return strings.ToLower(t)
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, asString(item))
		}
		return strings.ToLower(strings.Join(parts, ","))
	default:
		return ""
	}
}

func attachMaterials(node map[string]interface{}) {
	if node == nil {
		return
	}
	if mats := ExtractMaterials(node); len(mats) > 0 {
		node["materials"] = mats
	}
}

// ExtractMaterials flattens the material-like properties of a structured-data
// node into a normalized, de-duplicated list of material names.
func ExtractMaterials(node map[string]interface{}) []string {
	if node == nil {
		return nil
	}
	var mats []string
	for _, key := range materialKeys {
		collectMaterials(node[key], &mats)
	}
	for _, sub := range asList(node["@graph"]) {
		if m := asMap(sub); m != nil {
			for _, key := range materialKeys {
				collectMaterials(m[key], &mats)
			}
		}
	}
	return normalizeMaterials(mats)
}

// collectMaterials recursively flattens a candidate value: strings split into
// multiple entries, objects reduce to a name-like property, lists flatten.
func collectMaterials(v interface{}, out *[]string) {
	switch t := v.(type) {
	case string:
		for _, part := range strings.FieldsFunc(t, func(r rune) bool {
			return r == ',' || r == ';' || r == '\n'
		}) {
			if part = strings.TrimSpace(part); part != "" {
				*out = append(*out, part)
			}
		}
	case []interface{}:
		for _, item := range t {
			collectMaterials(item, out)
		}
	case []string:
		for _, item := range t {
			collectMaterials(item, out)
		}
	case map[string]interface{}:
		for _, key := range []string{"name", "material", "materialName"} {
			if t[key] != nil {
				collectMaterials(t[key], out)
				return
			}
		}
	}
}

func normalizeMaterials(mats []string) []string {
	seen := make(map[string]bool, len(mats))
	var out []string
	for _, m := range mats {
		m = strings.Join(strings.Fields(m), " ")
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// attachedMaterials reads the list a locator pass left on the node.
func attachedMaterials(node map[string]interface{}) []string {
	if node == nil {
		return nil
	}
	if mats, ok := node["materials"].([]string); ok {
		return mats
	}
	return nil
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

// asList treats a scalar as a one-element list; structured data uses both
// shapes interchangeably.
func asList(v interface{}) []interface{} {
	if v == nil {
		return nil
	}
	if l, ok := v.([]interface{}); ok {
		return l
	}
	return []interface{}{v}
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func nodeString(node map[string]interface{}, key string) string {
	if node == nil {
		return ""
	}
	return strings.TrimSpace(asString(node[key]))
}
