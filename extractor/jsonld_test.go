package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSnapshot(t *testing.T, html string) *Snapshot {
	t.Helper()
	snap, err := NewSnapshot(html, "https://shop.example/p/1")
	require.NoError(t, err)
	return snap
}

func TestFindProduct(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		{"@type": "Product", "name": "Linen Shirt", "sku": "LS-01"}
		</script>
	</head><body></body></html>`

	node := FindProduct(mustSnapshot(t, html))
	require.NotNil(t, node)
	assert.Equal(t, "Linen Shirt", node["name"])
}

func TestFindProductSkipsMalformedBlocks(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{not valid json</script>
		<script type="application/ld+json">
		{"@type": "Product", "name": "Wool Scarf"}
		</script>
	</head><body></body></html>`

	node := FindProduct(mustSnapshot(t, html))
	require.NotNil(t, node)
	assert.Equal(t, "Wool Scarf", node["name"])
}

func TestFindProductInsideGraph(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		{"@context": "https://schema.org", "@graph": [
			{"@type": "WebSite", "name": "Shop"},
			{"@type": "Product", "name": "Canvas Bag"}
		]}
		</script>
	</head><body></body></html>`

	node := FindProduct(mustSnapshot(t, html))
	require.NotNil(t, node)
	assert.Equal(t, "Canvas Bag", node["name"])
}

func TestFindProductTypeList(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		{"@type": ["Thing", "Product"], "name": "Clay Mug"}
		</script>
	</head><body></body></html>`

	node := FindProduct(mustSnapshot(t, html))
	require.NotNil(t, node)
	assert.Equal(t, "Clay Mug", node["name"])
}

func TestFindProductIgnoresProductGroup(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		{"@type": "ProductGroup", "name": "Shirt Family"}
		</script>
	</head><body></body></html>`

	assert.Nil(t, FindProduct(mustSnapshot(t, html)))

	group := FindProductGroup(mustSnapshot(t, html))
	require.NotNil(t, group)
	assert.Equal(t, "Shirt Family", group["name"])
}

func TestFindProductGroupPreferredAcrossBlocks(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		{"@type": "Product", "name": "One Variant"}
		</script>
		<script type="application/ld+json">
		{"@type": "ProductGroup", "name": "All Variants"}
		</script>
	</head><body></body></html>`

	group := FindProductGroup(mustSnapshot(t, html))
	require.NotNil(t, group)
	assert.Equal(t, "All Variants", group["name"])
}

func TestFindProductNoStructuredData(t *testing.T) {
	snap := mustSnapshot(t, "<html><body><h1>Plain page</h1></body></html>")
	assert.Nil(t, FindProduct(snap))
	assert.Nil(t, FindProductGroup(snap))
}

func TestExtractMaterials(t *testing.T) {
	tests := []struct {
		name string
		node map[string]interface{}
		want []string
	}{
		{
			"string with separators",
			map[string]interface{}{"material": "Cotton, Elastane; Wool"},
			[]string{"Cotton", "Elastane", "Wool"},
		},
		{
			"list of strings",
			map[string]interface{}{"materials": []interface{}{"Linen", "Linen", "Silk"}},
			[]string{"Linen", "Silk"},
		},
		{
			"object with name",
			map[string]interface{}{"hasMaterial": map[string]interface{}{"name": "Organic Cotton"}},
			[]string{"Organic Cotton"},
		},
		{
			"multiple keys merged",
			map[string]interface{}{"material": "Cotton", "fabric": "Denim"},
			[]string{"Cotton", "Denim"},
		},
		{
			"whitespace normalized",
			map[string]interface{}{"material": "  Recycled\n  Polyester  "},
			[]string{"Recycled Polyester"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMaterials(tt.node))
		})
	}
}

func TestFindProductAttachesMaterials(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		{"@type": "Product", "name": "Tote", "material": "Hemp, Jute"}
		</script>
	</head><body></body></html>`

	node := FindProduct(mustSnapshot(t, html))
	require.NotNil(t, node)
	assert.Equal(t, []string{"Hemp", "Jute"}, attachedMaterials(node))
}

func TestNodeTypeShapes(t *testing.T) {
	assert.Equal(t, "product", nodeType(map[string]interface{}{"@type": "Product"}))
	assert.Equal(t, "thing,product", nodeType(map[string]interface{}{"@type": []interface{}{"Thing", "Product"}}))
	assert.Equal(t, "", nodeType(map[string]interface{}{}))
}
