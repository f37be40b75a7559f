package product

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/luxehome-backend/pkg/enums"
	"github.com/angelmondragon/luxehome-backend/pkg/pagination"
)

// ListFilters describe the supported filter knobs for the catalog endpoint.
type ListFilters struct {
	Query        string
	CategorySlug string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Material     *enums.Material
	Color        *enums.Color
	Sort         enums.ProductSort
}

// ListInput captures a catalog page request.
type ListInput struct {
	Filters ListFilters
	Page    pagination.PageRequest
}

// ListResult is one page of catalog summaries.
type ListResult struct {
	Items []ProductSummaryDTO `json:"items"`
	Page  pagination.PageInfo `json:"page"`
}
