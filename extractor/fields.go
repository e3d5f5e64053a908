package extractor

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Heuristic element selectors for titles, ordered by specificity.
var titleSelectors = []string{
	"[itemprop='name']",
	"h1.product-title",
	".product-title",
	"h1",
	".product h1",
	".product-name",
}

var (
	titleMetaKeys       = []string{"og:title", "twitter:title", "title"}
	descriptionMetaKeys = []string{"og:description", "description", "twitter:description"}
	imageMetaKeys       = []string{"og:image", "twitter:image"}
)

const (
	maxImages = 6
	// icons and decorative assets fall under this intrinsic size
	minImageSide = 200
	// selector hits with at most this many characters are rejected as noise
	minTitleLen = 3
)

// FindTitle runs the title cascade: structured-data name, page metadata,
// heuristic selectors, then the document title.
func FindTitle(snap *Snapshot, product map[string]interface{}) string {
	if name := nodeString(product, "name"); name != "" {
		return name
	}
	for _, key := range titleMetaKeys {
		if v := snap.Meta(key); v != "" {
			return v
		}
	}
	for _, sel := range titleSelectors {
		text := strings.TrimSpace(snap.Doc.Find(sel).First().Text())
		if len(text) > minTitleLen {
			return text
		}
	}
	return strings.TrimSpace(snap.Doc.Find("title").First().Text())
}

// FindDescription runs the description cascade.
func FindDescription(snap *Snapshot, product map[string]interface{}) string {
	if d := nodeString(product, "description"); d != "" {
		return d
	}
	for _, key := range descriptionMetaKeys {
		if v := snap.Meta(key); v != "" {
			return v
		}
	}
	el := snap.Doc.Find("[itemprop='description']").First()
	if el.Length() > 0 {
		if v, ok := el.Attr("content"); ok && v != "" {
			return v
		}
		return strings.TrimSpace(el.Text())
	}
	return ""
}

// FindImages merges structured-data images, metadata images and large
// rendered images, preserving first-seen order, de-duplicated and capped.
func FindImages(snap *Snapshot, product map[string]interface{}) []string {
	var imgs []string
	if product != nil {
		imgs = append(imgs, imageURLs(product["image"])...)
	}
	for _, key := range imageMetaKeys {
		if v := snap.Meta(key); v != "" {
			imgs = append(imgs, v)
		}
	}
	snap.Doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if imageSide(s, attrNaturalWidth, "width") < minImageSide ||
			imageSide(s, attrNaturalHeight, "height") < minImageSide {
			return
		}
		if src := strings.TrimSpace(s.AttrOr("src", "")); src != "" {
			imgs = append(imgs, src)
		}
	})
	return dedupeImages(imgs)
}

// imageURLs accepts the string, list and object-with-url shapes a
// structured-data image property comes in.
func imageURLs(v interface{}) []string {
	switch t := v.(type) {
	case string:
		if t != "" {
			return []string{t}
		}
	case []interface{}:
		var out []string
		for _, item := range t {
			out = append(out, imageURLs(item)...)
		}
		return out
	case map[string]interface{}:
		if u := asString(t["url"]); u != "" {
			return []string{u}
		}
		if u := asString(t["@id"]); u != "" {
			return []string{u}
		}
	}
	return nil
}

// imageSide reads the annotated intrinsic dimension, falling back to the
// plain width/height attribute for static documents.
func imageSide(s *goquery.Selection, annotated, fallback string) int {
	for _, attr := range []string{annotated, fallback} {
		if v, ok := s.Attr(attr); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return 0
}

func dedupeImages(imgs []string) []string {
	seen := make(map[string]bool, len(imgs))
	out := make([]string, 0, maxImages)
	for _, img := range imgs {
		img = strings.TrimSpace(img)
		if img == "" || seen[img] {
			continue
		}
		seen[img] = true
		out = append(out, img)
		if len(out) == maxImages {
			break
		}
	}
	return out
}

// FindBrand reads the structured-data brand (string or object-with-name),
// then falls back to attribute/selector heuristics.
func FindBrand(snap *Snapshot, product map[string]interface{}) string {
	if product != nil {
		switch b := product["brand"].(type) {
		case string:
			if b != "" {
				return b
			}
		case map[string]interface{}:
			if name := asString(b["name"]); name != "" {
				return name
			}
		}
	}
	el := snap.Doc.Find("[itemprop='brand'], .brand, [class*='brand']").First()
	if el.Length() > 0 {
		return strings.TrimSpace(el.Text())
	}
	return ""
}

// FindSKU reads the structured-data sku; for product groups the first
// variant offer or variant-level sku; then selector heuristics.
func FindSKU(snap *Snapshot, product map[string]interface{}) string {
	if s := nodeString(product, "sku"); s != "" {
		return s
	}
	if product != nil {
		for _, v := range asList(product["hasVariant"]) {
			variant := asMap(v)
			if variant == nil {
				continue
			}
			if off := firstOffer(variant["offers"]); off != nil {
				if s := strings.TrimSpace(asString(off["sku"])); s != "" {
					return s
				}
			}
			if s := nodeString(variant, "sku"); s != "" {
				return s
			}
		}
	}
	el := snap.Doc.Find("[itemprop='sku'], .sku, [class*='sku']").First()
	if el.Length() > 0 {
		return strings.TrimSpace(el.Text())
	}
	return ""
}
