package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullProductPage = `<html><head>
	<title>Aria Jacket | shop.example</title>
	<script type="application/ld+json">
	{
		"@type": "Product",
		"name": "Aria Jacket",
		"description": "Water resistant shell jacket.",
		"sku": "AJ-100",
		"brand": {"name": "Northwind"},
		"material": "Recycled Polyester, Nylon",
		"image": ["https://cdn.example/aj-front.jpg", "https://cdn.example/aj-back.jpg"],
		"offers": {"price": "129.00", "priceCurrency": "EUR"}
	}
	</script>
</head><body><h1>Aria Jacket</h1></body></html>`

func TestAssemblerBuildFromProduct(t *testing.T) {
	snap, err := NewSnapshot(fullProductPage, "https://shop.example/p/aria")
	require.NoError(t, err)

	rec, err := NewAssembler().Build(snap)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "Aria Jacket", rec.Title)
	assert.Equal(t, "Water resistant shell jacket.", rec.Description)
	assert.Equal(t, []string{"https://cdn.example/aj-front.jpg", "https://cdn.example/aj-back.jpg"}, rec.Images)
	require.NotNil(t, rec.Price)
	assert.Equal(t, "129.00", rec.Price.Amount)
	assert.Equal(t, "EUR", rec.Price.Currency)
	assert.Equal(t, "AJ-100", rec.SKU)
	assert.Equal(t, "Northwind", rec.Brand)
	assert.Equal(t, []string{"Recycled Polyester", "Nylon"}, rec.Materials)
	assert.Equal(t, "https://shop.example/p/aria", rec.URL)
	assert.Equal(t, "shop.example", rec.Site)
	assert.Equal(t, 9, rec.Confidence)
	require.NotNil(t, rec.Raw)
}

const productGroupPage = `<html><head>
	<script type="application/ld+json">
	{
		"@type": "ProductGroup",
		"name": "Aria Jacket",
		"description": "Water resistant shell jacket.",
		"productGroupID": "AJ-GROUP",
		"brand": {"name": "Northwind"},
		"url": "https://shop.example/p/aria",
		"image": "https://cdn.example/aj-group.jpg",
		"hasVariant": [
			{"@type": "Product", "sku": "AJ-100-S", "image": "https://cdn.example/aj-s.jpg"},
			{
				"@type": "Product",
				"image": "https://cdn.example/aj-m.jpg",
				"offers": {"price": "129.00", "priceCurrency": "EUR"}
			}
		]
	}
	</script>
</head><body></body></html>`

func TestAssemblerPrefersProductGroup(t *testing.T) {
	snap, err := NewSnapshot(productGroupPage, "https://shop.example/p/aria?variant=2")
	require.NoError(t, err)

	rec, err := NewAssembler().Build(snap)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "Aria Jacket", rec.Title)
	// group id stands in for the sku
	assert.Equal(t, "AJ-GROUP", rec.SKU)
	require.NotNil(t, rec.Price)
	assert.Equal(t, "129.00", rec.Price.Amount)
	assert.Equal(t, []string{
		"https://cdn.example/aj-group.jpg",
		"https://cdn.example/aj-s.jpg",
		"https://cdn.example/aj-m.jpg",
	}, rec.Images)
	// the canonical group url wins over the snapshot url
	assert.Equal(t, "https://shop.example/p/aria", rec.URL)
}

func TestAssemblerGroupSKUFromVariants(t *testing.T) {
	html := `<html><head>
	<script type="application/ld+json">
	{
		"@type": "ProductGroup",
		"name": "Basic Tee",
		"hasVariant": [
			{"sku": "BT-S"},
			{"offers": {"price": "9.99", "priceCurrency": "USD"}}
		]
	}
	</script>
	</head><body></body></html>`
	snap, err := NewSnapshot(html, "https://shop.example/p/tee")
	require.NoError(t, err)

	rec, err := NewAssembler().Build(snap)
	require.NoError(t, err)

	assert.Equal(t, "BT-S", rec.SKU)
	require.NotNil(t, rec.Price)
	assert.Equal(t, "9.99", rec.Price.Amount)
}

func TestAssemblerFieldFallbacks(t *testing.T) {
	html := `<html><head>
		<title>Cedar Desk</title>
		<meta property="og:description" content="Solid cedar writing desk.">
		<meta property="og:image" content="https://cdn.example/desk.jpg">
	</head><body>
		<h1>Cedar Desk</h1>
		<div class="price">$349.00</div>
	</body></html>`
	snap, err := NewSnapshot(html, "https://shop.example/p/desk")
	require.NoError(t, err)

	rec, err := NewAssembler().Build(snap)
	require.NoError(t, err)

	assert.Equal(t, "Cedar Desk", rec.Title)
	assert.Equal(t, "Solid cedar writing desk.", rec.Description)
	assert.Equal(t, []string{"https://cdn.example/desk.jpg"}, rec.Images)
	require.NotNil(t, rec.Price)
	assert.Equal(t, "349.00", rec.Price.Amount)
	assert.Equal(t, "", rec.SKU)
	assert.Equal(t, 8, rec.Confidence)
}

func TestAssemblerEmptyPage(t *testing.T) {
	snap, err := NewSnapshot("<html><body></body></html>", "https://shop.example/blank")
	require.NoError(t, err)

	rec, err := NewAssembler().Build(snap)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "", rec.Title)
	assert.Nil(t, rec.Price)
	assert.Equal(t, 0, rec.Confidence)
	assert.Equal(t, "https://shop.example/blank", rec.URL)
}

func TestAssemblerGroupFallsBackOnBrokenGroup(t *testing.T) {
	// hasVariant with a non-list, non-map shape must not take the pass down
	html := `<html><head>
		<title>Odd Product Page</title>
		<script type="application/ld+json">
		{"@type": "ProductGroup", "hasVariant": 17}
		</script>
	</head><body><h1>Odd Product</h1></body></html>`
	snap, err := NewSnapshot(html, "https://shop.example/p/odd")
	require.NoError(t, err)

	rec, err := NewAssembler().Build(snap)
	require.NoError(t, err)
	require.NotNil(t, rec)
}
