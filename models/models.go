package models

import (
	"encoding/json"
	"strings"
)

// PriceInfo is one parsed price candidate.
type PriceInfo struct {
	Raw      string `json:"raw"`
	Amount   string `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

// RawPayload keeps the original structured-data payload and selected page
// metadata for debugging. Nothing downstream is allowed to depend on it.
type RawPayload struct {
	JSONLD interface{}       `json:"jsonld,omitempty"`
	Meta   map[string]string `json:"og,omitempty"`
}

// ProductRecord is the normalized output of one extraction pass. Records are
// built fresh on every pass and carry no persisted identity.
type ProductRecord struct {
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Images      []string    `json:"images"`
	Price       *PriceInfo  `json:"price,omitempty"`
	SKU         string      `json:"sku,omitempty"`
	Brand       string      `json:"brand,omitempty"`
	Materials   []string    `json:"materials,omitempty"`
	URL         string      `json:"url"`
	Site        string      `json:"site"`
	Confidence  int         `json:"confidence"`
	Raw         *RawPayload `json:"raw,omitempty"`
}

// HasPrice returns true if the record carries a usable price amount.
func (p *ProductRecord) HasPrice() bool {
	return p.Price != nil && p.Price.Amount != ""
}

// ComputeConfidence derives the 0-10 score from which fields were found:
// +3 title, +1 description, +2 at least one image, +2 price, +1 sku.
func (p *ProductRecord) ComputeConfidence() int {
	score := 0
	if p.Title != "" {
		score += 3
	}
	if p.Description != "" {
		score += 1
	}
	if len(p.Images) > 0 {
		score += 2
	}
	if p.HasPrice() {
		score += 2
	}
	if p.SKU != "" {
		score += 1
	}
	if score > 10 {
		score = 10
	}
	return score
}

// Fingerprint reduces the record to its change-significant fields. Other
// fields are too volatile to count as a meaningful change.
func (p *ProductRecord) Fingerprint() string {
	amount := ""
	if p.Price != nil {
		amount = p.Price.Amount
	}
	key, err := json.Marshal(map[string]string{
		"title": p.Title,
		"sku":   p.SKU,
		"price": amount,
		"url":   p.URL,
	})
	if err != nil {
		// map[string]string never fails to marshal; keep a readable fallback
		return strings.Join([]string{p.Title, p.SKU, amount, p.URL}, "|")
	}
	return string(key)
}
