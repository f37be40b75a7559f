package main

import "github.com/angelmondragon/luxehome-backend/pkg/enums"

type categorySeed struct {
	Name   string
	Slug   string
	Parent string
}

type productSeed struct {
	Name        string
	Slug        string
	Category    string
	Description string
	Price       string
	OldPrice    string
	Material    enums.Material
	Color       enums.Color
	Dimensions  string
	Weight      string
	Stock       int
	IsFeatured  bool
}

type bannerSeed struct {
	Title    string
	Subtitle string
	Order    int
}

var rootCategories = []categorySeed{
	{Name: "Living Room", Slug: "living-room"},
	{Name: "Bedroom", Slug: "bedroom"},
	{Name: "Dining", Slug: "dining"},
	{Name: "Office", Slug: "office"},
	{Name: "Outdoor", Slug: "outdoor"},
	{Name: "Storage", Slug: "storage"},
}

var subCategories = []categorySeed{
	{Name: "Sofas", Slug: "sofas", Parent: "living-room"},
	{Name: "Coffee Tables", Slug: "coffee-tables", Parent: "living-room"},
	{Name: "TV Stands", Slug: "tv-stands", Parent: "living-room"},
	{Name: "Beds", Slug: "beds", Parent: "bedroom"},
	{Name: "Nightstands", Slug: "nightstands", Parent: "bedroom"},
	{Name: "Wardrobes", Slug: "wardrobes", Parent: "bedroom"},
	{Name: "Dining Tables", Slug: "dining-tables", Parent: "dining"},
	{Name: "Dining Chairs", Slug: "dining-chairs", Parent: "dining"},
	{Name: "Desks", Slug: "desks", Parent: "office"},
	{Name: "Office Chairs", Slug: "office-chairs", Parent: "office"},
	{Name: "Bookshelves", Slug: "bookshelves", Parent: "storage"},
}

var demoProducts = []productSeed{
	{
		Name:        "Modern Velvet Sofa",
		Slug:        "modern-velvet-sofa",
		Category:    "sofas",
		Description: "Luxurious 3-seater velvet sofa with solid wood legs. High-density foam cushions on a durable hardwood frame.",
		Price:       "1299.99",
		OldPrice:    "1599.99",
		Material:    enums.MaterialFabric,
		Color:       enums.ColorGrey,
		Dimensions:  "220x90x85 cm",
		Weight:      "45",
		Stock:       15,
		IsFeatured:  true,
	},
	{
		Name:        "Scandinavian Oak Coffee Table",
		Slug:        "scandinavian-oak-coffee-table",
		Category:    "coffee-tables",
		Description: "Minimalist coffee table crafted from solid oak with tapered legs and a lower storage shelf.",
		Price:       "449.99",
		Material:    enums.MaterialWood,
		Color:       enums.ColorNatural,
		Dimensions:  "110x60x45 cm",
		Weight:      "18",
		Stock:       25,
		IsFeatured:  true,
	},
	{
		Name:        "Leather Executive Office Chair",
		Slug:        "leather-executive-office-chair",
		Category:    "office-chairs",
		Description: "Ergonomic leather office chair with adjustable height, tilt mechanism and padded armrests.",
		Price:       "699.99",
		OldPrice:    "899.99",
		Material:    enums.MaterialLeather,
		Color:       enums.ColorBlack,
		Dimensions:  "65x65x120 cm",
		Weight:      "22",
		Stock:       30,
		IsFeatured:  true,
	},
	{
		Name:        "Walnut King Size Bed Frame",
		Slug:        "walnut-king-size-bed-frame",
		Category:    "beds",
		Description: "King-size bed frame in premium walnut with a slatted base and a grained headboard.",
		Price:       "1899.99",
		OldPrice:    "2299.99",
		Material:    enums.MaterialWood,
		Color:       enums.ColorBrown,
		Dimensions:  "200x180x110 cm",
		Weight:      "65",
		Stock:       8,
		IsFeatured:  true,
	},
	{
		Name:        "Marble Top Dining Table",
		Slug:        "marble-top-dining-table",
		Category:    "dining-tables",
		Description: "Dining table with a genuine marble top and black metal legs. Seats 6-8 people.",
		Price:       "2499.99",
		Material:    enums.MaterialMarble,
		Color:       enums.ColorWhite,
		Dimensions:  "180x90x75 cm",
		Weight:      "80",
		Stock:       5,
		IsFeatured:  true,
	},
	{
		Name:        "Rattan Garden Lounge Set",
		Slug:        "rattan-garden-lounge-set",
		Category:    "outdoor",
		Description: "Outdoor lounge set with a 2-seater sofa, two armchairs and a coffee table in weather-resistant rattan.",
		Price:       "1599.99",
		OldPrice:    "1999.99",
		Material:    enums.MaterialRattan,
		Color:       enums.ColorBrown,
		Dimensions:  "200x150x80 cm",
		Weight:      "40",
		Stock:       10,
		IsFeatured:  true,
	},
	{
		Name:        "Industrial Metal Bookshelf",
		Slug:        "industrial-metal-bookshelf",
		Category:    "bookshelves",
		Description: "5-tier bookshelf with a metal frame and solid wood shelves.",
		Price:       "349.99",
		OldPrice:    "449.99",
		Material:    enums.MaterialMetal,
		Color:       enums.ColorBlack,
		Dimensions:  "80x35x180 cm",
		Weight:      "25",
		Stock:       20,
	},
	{
		Name:        "Velvet Dining Chair Set of 4",
		Slug:        "velvet-dining-chair-set",
		Category:    "dining-chairs",
		Description: "Four velvet dining chairs on gold-finished metal legs.",
		Price:       "599.99",
		OldPrice:    "799.99",
		Material:    enums.MaterialFabric,
		Color:       enums.ColorGreen,
		Dimensions:  "45x55x85 cm each",
		Weight:      "6",
		Stock:       12,
		IsFeatured:  true,
	},
	{
		Name:        "Minimalist TV Stand",
		Slug:        "minimalist-tv-stand",
		Category:    "tv-stands",
		Description: "TV stand with cable management and soft-close drawers. Fits TVs up to 65 inches.",
		Price:       "399.99",
		Material:    enums.MaterialWood,
		Color:       enums.ColorWhite,
		Dimensions:  "160x40x50 cm",
		Weight:      "30",
		Stock:       18,
	},
	{
		Name:        "Oak Nightstand with Drawer",
		Slug:        "oak-nightstand-drawer",
		Category:    "nightstands",
		Description: "Compact solid oak nightstand with one drawer and an open shelf.",
		Price:       "199.99",
		OldPrice:    "249.99",
		Material:    enums.MaterialWood,
		Color:       enums.ColorNatural,
		Dimensions:  "45x35x55 cm",
		Weight:      "10",
		Stock:       35,
	},
	{
		Name:        "Standing Desk - Adjustable Height",
		Slug:        "standing-desk-adjustable",
		Category:    "desks",
		Description: "Electric height-adjustable standing desk with memory presets, bamboo top and steel frame.",
		Price:       "799.99",
		OldPrice:    "999.99",
		Material:    enums.MaterialWood,
		Color:       enums.ColorNatural,
		Dimensions:  "140x70x65-130 cm",
		Weight:      "35",
		Stock:       14,
		IsFeatured:  true,
	},
	{
		Name:        "Glass Console Table",
		Slug:        "glass-console-table",
		Category:    "living-room",
		Description: "Console table with a tempered glass top and gold-finished metal frame.",
		Price:       "329.99",
		Material:    enums.MaterialGlass,
		Color:       enums.ColorNatural,
		Dimensions:  "120x35x80 cm",
		Weight:      "15",
		Stock:       22,
	},
}

var demoBanners = []bannerSeed{
	{Title: "Elevate Your Living Space", Subtitle: "Discover our premium furniture collection designed for modern homes.", Order: 1},
	{Title: "Up to 30% Off Selected Items", Subtitle: "Limited time offers on sofas, beds, and dining sets. Shop now!", Order: 2},
	{Title: "New Arrivals for 2026", Subtitle: "Fresh designs that bring warmth and character to every room.", Order: 3},
}
