package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mihai888nextlab/ecotag/models"
)

var (
	symbolRe = regexp.MustCompile(`[€$£¥₹₩฿]`)
	codeRe   = regexp.MustCompile(`(?i)\b(?:USD|EUR|GBP|JPY|CNY|AUD|CAD|CHF|DKK|NOK|SEK|INR|RON)\b`)

	// Positional patterns, tried in order: symbol-number, number-symbol,
	// code-number, number-code.
	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`[€$£¥₹₩฿]\s*([0-9.,\s]+)`),
		regexp.MustCompile(`([0-9.,\s]+)\s*[€$£¥₹₩฿]`),
		regexp.MustCompile(`(?i)\b(?:USD|EUR|GBP|JPY|CNY|AUD|CAD|CHF|DKK|NOK|SEK|INR|RON)\b\s*([0-9.,\s]+)`),
		regexp.MustCompile(`(?i)([0-9.,\s]+)\s*\b(?:USD|EUR|GBP|JPY|CNY|AUD|CAD|CHF|DKK|NOK|SEK|INR|RON)\b`),
	}

	numberRe   = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
	pageScanRe = regexp.MustCompile(`[€$£¥₹₩฿]\s?[0-9][0-9.,\s]*`)
)

// ParsePrice converts one candidate string into a PriceInfo. It returns nil
// when no positional pattern matches or no positive amount survives
// normalization.
func ParsePrice(text string) *models.PriceInfo {
	raw := strings.Join(strings.Fields(text), " ")
	if raw == "" {
		return nil
	}
	for _, p := range pricePatterns {
		m := p.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		amount := normalizeAmount(m[1])
		if !isPositiveAmount(amount) {
			continue
		}
		// currency is re-scanned over the whole string; a symbol match is
		// preferred over a code match
		currency := ""
		if sym := symbolRe.FindString(raw); sym != "" {
			currency = sym
		} else if code := codeRe.FindString(raw); code != "" {
			currency = strings.ToUpper(code)
		}
		return &models.PriceInfo{Raw: raw, Amount: amount, Currency: currency}
	}
	return nil
}

// normalizeAmount reduces a captured numeric substring to digits with at
// most one '.' decimal separator. A comma with no dot present is read as a
// decimal comma; otherwise commas and spaces acting as digit grouping are
// stripped.
func normalizeAmount(num string) string {
	num = strings.ReplaceAll(num, " ", "")
	if strings.Contains(num, ",") && !strings.Contains(num, ".") {
		num = strings.Replace(num, ",", ".", 1)
	} else {
		num = stripGroupSeparators(num)
	}
	return numberRe.FindString(num)
}

func stripGroupSeparators(num string) string {
	runes := []rune(num)
	var b strings.Builder
	for i, r := range runes {
		if (r == ',' || r == ' ') && followedByThreeDigits(runes, i+1) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func followedByThreeDigits(runes []rune, start int) bool {
	if start+3 > len(runes) {
		return false
	}
	for _, r := range runes[start : start+3] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isPositiveAmount(amount string) bool {
	if amount == "" {
		return false
	}
	v, err := strconv.ParseFloat(amount, 64)
	return err == nil && v > 0
}

// Price-bearing page metadata fields, checked in order.
var priceMetaKeys = []string{
	"product:price:amount",
	"og:price:amount",
	"price",
	"product:price",
	"twitter:data1",
}

// Elements that explicitly carry price information in attributes.
var priceAttrSelectors = []string{
	"[itemprop='price']",
	"[data-price]",
	"[data-price-amount]",
	"[data-priceamount]",
	"[data-product-price]",
}

// Generic class/id heuristics; elements annotated hidden (zero rendered
// size) are skipped.
const priceHeuristicSelector = "[class*='price'], [id*='price'], .product-price, .price, [class*='amount'], [data-test*='price']"

// FindPrice runs the price cascade: structured-data offers (group variants
// included), page metadata, price-bearing attributes, generic class/id
// heuristics, then a full-page currency scan. The first strategy to produce
// a usable PriceInfo wins; nothing is merged across strategies.
func FindPrice(snap *Snapshot, product map[string]interface{}) *models.PriceInfo {
	if product != nil {
		if p := priceFromOffers(product["offers"]); p != nil {
			return p
		}
		for _, v := range asList(product["hasVariant"]) {
			variant := asMap(v)
			if variant == nil {
				continue
			}
			if p := priceFromOffers(variant["offers"]); p != nil {
				return p
			}
		}
	}

	for _, key := range priceMetaKeys {
		m := snap.Meta(key)
		if m == "" {
			continue
		}
		if p := ParsePrice(m); p != nil {
			return &models.PriceInfo{Raw: m, Amount: p.Amount, Currency: p.Currency}
		}
		// bare numeric meta values carry their currency in a sibling field
		if norm := normalizeAmount(m); isPositiveAmount(norm) {
			currency := snap.Meta("product:price:currency")
			if currency == "" {
				currency = snap.Meta("og:price:currency")
			}
			return &models.PriceInfo{Raw: m, Amount: norm, Currency: currency}
		}
	}

	for _, sel := range priceAttrSelectors {
		el := snap.Doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		for _, attr := range []string{"data-price", "data-price-amount", "content"} {
			v, ok := el.Attr(attr)
			if !ok || strings.TrimSpace(v) == "" {
				continue
			}
			if p := ParsePrice(v); p != nil {
				return &models.PriceInfo{Raw: v, Amount: p.Amount, Currency: p.Currency}
			}
			// an element declaring a price attribute may hold a bare number
			if norm := normalizeAmount(v); isPositiveAmount(norm) {
				return &models.PriceInfo{Raw: v, Amount: norm}
			}
		}
		if t := strings.TrimSpace(el.Text()); t != "" {
			if p := ParsePrice(t); p != nil {
				return &models.PriceInfo{Raw: t, Amount: p.Amount, Currency: p.Currency}
			}
		}
	}

	var candidates []string
	snap.Doc.Find(priceHeuristicSelector).Each(func(_ int, s *goquery.Selection) {
		if _, hidden := s.Attr(attrHidden); hidden {
			return
		}
		if cs := priceCandidates(s); len(cs) > 0 {
			candidates = append(candidates, cs[0])
		}
	})

	// last resort: currency-symbol-plus-digits anywhere in the body text
	if len(candidates) == 0 {
		if m := pageScanRe.FindString(snap.BodyText()); m != "" {
			candidates = append(candidates, m)
		}
	}

	for _, c := range candidates {
		if p := ParsePrice(c); p != nil {
			return &models.PriceInfo{Raw: strings.TrimSpace(c), Amount: p.Amount, Currency: p.Currency}
		}
	}
	return nil
}

// priceCandidates collects the texts an element may carry a price in, most
// explicit first.
func priceCandidates(el *goquery.Selection) []string {
	var out []string
	for _, attr := range []string{"data-price", "data-price-amount", "content"} {
		if v, ok := el.Attr(attr); ok && strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	if t := strings.TrimSpace(el.Text()); t != "" {
		out = append(out, t)
	}
	return out
}

// priceFromOffers reads an offers property: a single offer or a list, each
// carrying price/priceCurrency directly or under a priceSpecification. The
// amount passes through the same numeric normalization as parsed text.
func priceFromOffers(v interface{}) *models.PriceInfo {
	for _, o := range asList(v) {
		off := asMap(o)
		if off == nil {
			continue
		}
		raw := ""
		amount := ""
		currency := ""
		if s := asString(off["price"]); s != "" {
			raw = s
			amount = s
		}
		if s := asString(off["priceCurrency"]); s != "" {
			currency = s
		}
		if amount == "" {
			if ps := asMap(off["priceSpecification"]); ps != nil {
				if s := asString(ps["price"]); s != "" {
					amount = s
					if raw == "" {
						raw = s
					}
				}
				if currency == "" {
					currency = asString(ps["priceCurrency"])
				}
			}
		}
		if norm := normalizeAmount(amount); isPositiveAmount(norm) {
			return &models.PriceInfo{Raw: raw, Amount: norm, Currency: currency}
		}
	}
	return nil
}

func firstOffer(v interface{}) map[string]interface{} {
	for _, o := range asList(v) {
		if off := asMap(o); off != nil {
			return off
		}
	}
	return nil
}
