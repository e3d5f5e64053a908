package extractor

import (
	"fmt"
	"log"

	"github.com/mihai888nextlab/ecotag/models"
)

// Assembler composes the structured-data locator, the field extractors and
// the confidence scorer into one normalized ProductRecord per pass.
type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Build synchronously produces one record for the snapshot. A ProductGroup
// node is preferred when one exists anywhere in the document; otherwise the
// independent field extractors run. Panics inside a pass are converted to an
// error at this boundary so a broken page never takes the host down.
func (a *Assembler) Build(snap *Snapshot) (rec *models.ProductRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, fmt.Errorf("extraction pass failed: %v", r)
		}
	}()
	if pg := FindProductGroup(snap); pg != nil {
		if rec := a.buildFromGroup(snap, pg); rec != nil {
			return rec, nil
		}
	}
	return a.buildFromFields(snap), nil
}

// buildFromGroup derives the record directly from a ProductGroup node:
// title/description/images from the group and its variants, price and sku
// from the first variant supplying each, materials aggregated across the
// whole group.
func (a *Assembler) buildFromGroup(snap *Snapshot, pg map[string]interface{}) (rec *models.ProductRecord) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("product group extraction failed, falling back to field extractors: %v", r)
			rec = nil
		}
	}()

	variants := make([]map[string]interface{}, 0)
	for _, v := range asList(pg["hasVariant"]) {
		if variant := asMap(v); variant != nil {
			variants = append(variants, variant)
		}
	}

	imgs := imageURLs(pg["image"])
	for _, variant := range variants {
		imgs = append(imgs, imageURLs(variant["image"])...)
	}

	sku := nodeString(pg, "sku")
	if sku == "" {
		sku = nodeString(pg, "productGroupID")
	}
	var price *models.PriceInfo
	for _, variant := range variants {
		if price == nil {
			price = priceFromOffers(variant["offers"])
		}
		if sku == "" {
			if off := firstOffer(variant["offers"]); off != nil {
				sku = nodeString(off, "sku")
			}
			if sku == "" {
				sku = nodeString(variant, "sku")
			}
		}
		if price != nil && sku != "" {
			break
		}
	}

	brand := ""
	switch b := pg["brand"].(type) {
	case string:
		brand = b
	case map[string]interface{}:
		brand = asString(b["name"])
	}

	pageURL := nodeString(pg, "url")
	if pageURL == "" {
		pageURL = snap.URL
	}
	site := hostnameOf(pageURL)
	if site == "" {
		site = snap.Site()
	}

	rec = &models.ProductRecord{
		Title:       nodeString(pg, "name"),
		Description: nodeString(pg, "description"),
		Images:      dedupeImages(imgs),
		Price:       price,
		SKU:         sku,
		Brand:       brand,
		Materials:   groupMaterials(pg, variants),
		URL:         pageURL,
		Site:        site,
		Raw:         &models.RawPayload{JSONLD: pg},
	}
	rec.Confidence = rec.ComputeConfidence()
	return rec
}

// groupMaterials aggregates material mentions across the group node and each
// of its variants.
func groupMaterials(pg map[string]interface{}, variants []map[string]interface{}) []string {
	var mats []string
	mats = append(mats, ExtractMaterials(pg)...)
	for _, variant := range variants {
		for _, key := range []string{"material", "materials", "fabric"} {
			collectMaterials(variant[key], &mats)
		}
	}
	return normalizeMaterials(mats)
}

// buildFromFields runs every field extractor independently; any subset of
// them may come back empty.
func (a *Assembler) buildFromFields(snap *Snapshot) *models.ProductRecord {
	product := FindProduct(snap)
	rec := &models.ProductRecord{
		Title:       FindTitle(snap, product),
		Description: FindDescription(snap, product),
		Images:      FindImages(snap, product),
		Price:       FindPrice(snap, product),
		SKU:         FindSKU(snap, product),
		Brand:       FindBrand(snap, product),
		Materials:   attachedMaterials(product),
		URL:         snap.URL,
		Site:        snap.Site(),
		Raw: &models.RawPayload{
			JSONLD: parseJSONBlocks(snap),
			Meta: map[string]string{
				"title":       snap.Meta("og:title"),
				"description": snap.Meta("og:description"),
				"image":       snap.Meta("og:image"),
			},
		},
	}
	rec.Confidence = rec.ComputeConfidence()
	return rec
}
