package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedCatalogsLoad(t *testing.T) {
	tests := []struct {
		category Category
		wantLen  int
	}{
		{CategoryHoodie, 45},
		{CategoryTShirt, 100},
		{CategoryCap, 6},
		{CategoryTote, 1},
		{CategoryMug, 1},
		{CategoryWaterBottle, 1},
		{CategoryMousePad, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			p, err := ProductFor(tt.category)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, p.Len())
			assert.Equal(t, tt.category, p.Category())
		})
	}
}

func TestCatalogVariantIDsAreUnique(t *testing.T) {
	for _, p := range Products() {
		t.Run(string(p.Category()), func(t *testing.T) {
			seen := make(map[int64]string)
			for _, e := range p.Entries() {
				prev, dup := seen[e.Ref.ID]
				assert.False(t, dup, "catalog id %d shared by %s and %s", e.Ref.ID, prev, e.Key)
				seen[e.Ref.ID] = e.Key
			}
		})
	}
}

func TestGarmentCatalogsAreTotal(t *testing.T) {
	for _, c := range []*Catalog[Design]{Hoodies(), TShirts()} {
		t.Run(string(c.Category()), func(t *testing.T) {
			for _, sw := range c.Colors() {
				for _, size := range c.Sizes() {
					v, err := c.Find(sw.Design, size, sw.Name)
					if assert.NoError(t, err, "%s %s/%s", sw.Design, size, sw.Name) {
						assert.Equal(t, sw.Name, v.Color)
						assert.Equal(t, size, v.Size)
					}
				}
			}
		})
	}
}

func TestSwatchHexMatchesVariants(t *testing.T) {
	for _, p := range Products() {
		t.Run(string(p.Category()), func(t *testing.T) {
			entries := p.Entries()
			for _, sw := range p.ColorSwatches() {
				matched := false
				for _, e := range entries {
					if e.Color == sw.Name && e.ColorHex == sw.Hex {
						matched = true
						break
					}
				}
				assert.True(t, matched, "swatch %s %s has no variant with that hex", sw.Name, sw.Hex)
			}
		})
	}
}

func TestFind(t *testing.T) {
	tests := []struct {
		name    string
		catalog *Catalog[Design]
		design  Design
		size    Size
		color   string
		wantID  int64
		wantErr bool
	}{
		{"hoodie navy L", Hoodies(), DesignDark, SizeL, "Navy", 5541, false},
		{"hoodie black S", Hoodies(), DesignDark, SizeS, "Black", 5530, false},
		{"hoodie white 2XL", Hoodies(), DesignLight, Size2XL, "White", 10868, false},
		{"tshirt navy L", TShirts(), DesignDark, SizeL, "Navy", 10032, false},
		{"tshirt white M", TShirts(), DesignLight, SizeM, "White", 20014, false},
		{"wrong bucket is a miss", TShirts(), DesignDark, SizeM, "White", 0, true},
		{"unknown color", Hoodies(), DesignDark, SizeM, "Teal", 0, true},
		{"unknown size", Hoodies(), DesignDark, SizeOneSize, "Navy", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.catalog.Find(tt.design, tt.size, tt.color)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrVariantNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, v.CatalogVariantID)
		})
	}
}

func TestReverseLookups(t *testing.T) {
	hoodies := Hoodies()

	v, err := hoodies.FindByCatalogID(5541)
	require.NoError(t, err)
	assert.Equal(t, "DARK-Navy-L", v.Key)
	assert.Equal(t, "39.99", v.Price.StringFixed(2))

	v, err = hoodies.FindByExternalID("68a9d381e56616")
	require.NoError(t, err)
	assert.Equal(t, int64(5530), v.CatalogVariantID)

	v, err = TShirts().FindBySKU("dark_dark grey heather_m")
	require.NoError(t, err)
	assert.Equal(t, "Dark Grey Heather", v.Color)

	_, err = hoodies.FindByCatalogID(1)
	assert.ErrorIs(t, err, ErrVariantNotFound)
	_, err = hoodies.FindByExternalID("nope")
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestListings(t *testing.T) {
	hoodies := Hoodies()

	assert.Len(t, hoodies.ListByDesign(DesignDark), 25)
	assert.Len(t, hoodies.ListByDesign(DesignLight), 20)
	assert.Len(t, hoodies.ListBySize(SizeXL), 9)
	assert.Len(t, hoodies.ListByColor("Navy"), 5)
	assert.Empty(t, hoodies.ListByColor("Teal"))

	tshirts := TShirts()
	assert.Len(t, tshirts.ListByDesign(DesignDark), 60)
	assert.Len(t, tshirts.ListByDesign(DesignLight), 40)

	list := hoodies.ListByColor("Navy")
	list[0].Color = "mutated"
	again := hoodies.ListByColor("Navy")
	assert.Equal(t, "Navy", again[0].Color)
}

func TestAccessoryCatalogs(t *testing.T) {
	capVariant, err := Caps().Find(StyleStandard, SizeOneSize, "Navy")
	require.NoError(t, err)
	assert.Equal(t, int64(6003), capVariant.CatalogVariantID)
	assert.Equal(t, "19.99", capVariant.Price.StringFixed(2))

	tote, err := Totes().Find(StyleStandard, SizeOneSize, "Black")
	require.NoError(t, err)
	assert.Equal(t, int64(7000), tote.CatalogVariantID)

	assert.Equal(t, []Size{SizeOneSize}, Caps().Sizes())
	assert.Equal(t, []string{"STANDARD"}, Caps().DesignNames())
}

func TestColorSwatchesSortedDarkToLight(t *testing.T) {
	swatches := Hoodies().ColorSwatches()
	require.Len(t, swatches, 9)
	assert.Equal(t, "Black", swatches[0].Name)
	assert.Equal(t, "White", swatches[len(swatches)-1].Name)
	assert.True(t, swatches[len(swatches)-1].Light)
	assert.False(t, swatches[0].Light)
}
