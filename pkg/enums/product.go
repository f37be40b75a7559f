package enums

import "fmt"

// Material is the primary material a piece of furniture is made from.
type Material string

const (
	MaterialWood    Material = "wood"
	MaterialMetal   Material = "metal"
	MaterialFabric  Material = "fabric"
	MaterialLeather Material = "leather"
	MaterialGlass   Material = "glass"
	MaterialPlastic Material = "plastic"
	MaterialMarble  Material = "marble"
	MaterialRattan  Material = "rattan"
	MaterialOther   Material = "other"
)

var validMaterials = []Material{
	MaterialWood,
	MaterialMetal,
	MaterialFabric,
	MaterialLeather,
	MaterialGlass,
	MaterialPlastic,
	MaterialMarble,
	MaterialRattan,
	MaterialOther,
}

func (m Material) String() string {
	return string(m)
}

func (m Material) IsValid() bool {
	for _, candidate := range validMaterials {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMaterial converts raw input into a Material.
func ParseMaterial(value string) (Material, error) {
	for _, candidate := range validMaterials {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid material %q", value)
}

// Color is the dominant finish color of a product.
type Color string

const (
	ColorBlack   Color = "black"
	ColorWhite   Color = "white"
	ColorBrown   Color = "brown"
	ColorGrey    Color = "grey"
	ColorBeige   Color = "beige"
	ColorBlue    Color = "blue"
	ColorGreen   Color = "green"
	ColorRed     Color = "red"
	ColorNatural Color = "natural"
	ColorMulti   Color = "multi"
)

var validColors = []Color{
	ColorBlack,
	ColorWhite,
	ColorBrown,
	ColorGrey,
	ColorBeige,
	ColorBlue,
	ColorGreen,
	ColorRed,
	ColorNatural,
	ColorMulti,
}

func (c Color) String() string {
	return string(c)
}

func (c Color) IsValid() bool {
	for _, candidate := range validColors {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseColor converts raw input into a Color.
func ParseColor(value string) (Color, error) {
	for _, candidate := range validColors {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid color %q", value)
}

// ProductSort selects the catalog ordering.
type ProductSort string

const (
	ProductSortNewest    ProductSort = "newest"
	ProductSortPriceAsc  ProductSort = "price_asc"
	ProductSortPriceDesc ProductSort = "price_desc"
	ProductSortName      ProductSort = "name"
)

var validProductSorts = []ProductSort{
	ProductSortNewest,
	ProductSortPriceAsc,
	ProductSortPriceDesc,
	ProductSortName,
}

func (s ProductSort) IsValid() bool {
	for _, candidate := range validProductSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductSort returns the newest ordering for empty or unknown input.
func ParseProductSort(value string) ProductSort {
	for _, candidate := range validProductSorts {
		if string(candidate) == value {
			return candidate
		}
	}
	return ProductSortNewest
}
