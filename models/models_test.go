package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeConfidence(t *testing.T) {
	tests := []struct {
		name   string
		record ProductRecord
		want   int
	}{
		{
			"all fields present",
			ProductRecord{
				Title:       "Aria Jacket",
				Description: "Shell jacket",
				Images:      []string{"https://cdn.example/a.jpg"},
				Price:       &PriceInfo{Raw: "€129", Amount: "129", Currency: "€"},
				SKU:         "AJ-100",
			},
			9,
		},
		{"title only", ProductRecord{Title: "Aria Jacket"}, 3},
		{"price only", ProductRecord{Price: &PriceInfo{Amount: "10.00"}}, 2},
		{"price without amount ignored", ProductRecord{Price: &PriceInfo{Raw: "call us"}}, 0},
		{"images only", ProductRecord{Images: []string{"a.jpg", "b.jpg"}}, 2},
		{"empty record", ProductRecord{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.ComputeConfidence())
		})
	}
}

func TestHasPrice(t *testing.T) {
	assert.False(t, (&ProductRecord{}).HasPrice())
	assert.False(t, (&ProductRecord{Price: &PriceInfo{Raw: "tbd"}}).HasPrice())
	assert.True(t, (&ProductRecord{Price: &PriceInfo{Amount: "5.00"}}).HasPrice())
}

func TestFingerprint(t *testing.T) {
	a := ProductRecord{Title: "Aria", SKU: "AJ-1", Price: &PriceInfo{Amount: "129"}, URL: "https://s/p/1"}
	b := ProductRecord{Title: "Aria", SKU: "AJ-1", Price: &PriceInfo{Amount: "129"}, URL: "https://s/p/1"}
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	// description and image churn must not register as change
	b.Description = "New copy"
	b.Images = []string{"x.jpg"}
	b.Confidence = 9
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	c := b
	c.Price = &PriceInfo{Amount: "99"}
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	d := a
	d.URL = "https://s/p/2"
	assert.NotEqual(t, a.Fingerprint(), d.Fingerprint())
}

func TestFingerprintNilPrice(t *testing.T) {
	a := ProductRecord{Title: "Aria"}
	b := ProductRecord{Title: "Aria", Price: &PriceInfo{Amount: ""}}
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}
