package cart

import (
	"cmp"
	"iter"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/luxehome-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
)

// Line is one product entry in a cart. UnitPrice and Name are copied when the
// product is first added and do not follow later catalog edits.
type Line struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Name      string          `json:"name"`
	AddedAt   time.Time       `json:"added_at"`
}

// Cart maps product ids to lines. The zero value is an empty cart.
type Cart struct {
	Lines map[uuid.UUID]Line `json:"lines"`
}

// Item is a cart line resolved against the live catalog.
type Item struct {
	Product  models.Product
	Quantity int
	Price    decimal.Decimal
	Subtotal decimal.Decimal
}

// Add increments the line for p by qty, creating it with snapshot price and
// name when absent. The resulting quantity is clamped to p.Stock.
func (c *Cart) Add(p models.Product, qty int, now time.Time) error {
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if !p.InStock() {
		return pkgerrors.New(pkgerrors.CodeUnavailable, "product is out of stock").
			WithDetails(map[string]any{"product_id": p.ID})
	}
	if c.Lines == nil {
		c.Lines = make(map[uuid.UUID]Line)
	}
	line, ok := c.Lines[p.ID]
	if !ok {
		line = Line{ProductID: p.ID, UnitPrice: p.Price, Name: p.Name, AddedAt: now.UTC()}
	}
	line.Quantity = min(line.Quantity, p.Stock)
	line.Quantity += min(qty, p.Stock-line.Quantity)
	c.Lines[p.ID] = line
	return nil
}

// SetQuantity replaces the quantity of an existing line, clamped to p.Stock.
// A quantity that is or clamps to zero removes the line. Absent lines are
// left alone.
func (c *Cart) SetQuantity(p models.Product, qty int) {
	line, ok := c.Lines[p.ID]
	if !ok {
		return
	}
	qty = min(qty, p.Stock)
	if qty <= 0 {
		delete(c.Lines, p.ID)
		return
	}
	line.Quantity = qty
	c.Lines[p.ID] = line
}

// Remove deletes the line for id. Removing an absent id is a no-op.
func (c *Cart) Remove(id uuid.UUID) {
	delete(c.Lines, id)
}

// Has reports whether the cart holds a line for id.
func (c Cart) Has(id uuid.UUID) bool {
	_, ok := c.Lines[id]
	return ok
}

// Count is the total number of units across all lines.
func (c Cart) Count() int {
	n := 0
	for _, line := range c.Lines {
		n += line.Quantity
	}
	return n
}

// Len is the number of distinct lines.
func (c Cart) Len() int {
	return len(c.Lines)
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ProductIDs lists the ids referenced by the cart in display order.
func (c Cart) ProductIDs() []uuid.UUID {
	lines := c.sortedLines()
	ids := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		ids[i] = line.ProductID
	}
	return ids
}

// Materialize yields the cart's lines resolved against catalog, in the order
// they were added. Lines whose product is missing from catalog, or whose
// quantity is not positive, are skipped but stay in the cart. The sequence
// can be ranged over more than once.
func (c Cart) Materialize(catalog map[uuid.UUID]models.Product) iter.Seq[Item] {
	lines := c.sortedLines()
	return func(yield func(Item) bool) {
		for _, line := range lines {
			product, ok := catalog[line.ProductID]
			if !ok || line.Quantity <= 0 {
				continue
			}
			item := Item{
				Product:  product,
				Quantity: line.Quantity,
				Price:    line.UnitPrice,
				Subtotal: line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
			}
			if !yield(item) {
				return
			}
		}
	}
}

// Total sums the subtotals of items.
func Total(items iter.Seq[Item]) decimal.Decimal {
	total := decimal.Zero
	for item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}

func (c Cart) sortedLines() []Line {
	lines := make([]Line, 0, len(c.Lines))
	for _, line := range c.Lines {
		lines = append(lines, line)
	}
	slices.SortFunc(lines, func(a, b Line) int {
		if byTime := a.AddedAt.Compare(b.AddedAt); byTime != 0 {
			return byTime
		}
		return cmp.Compare(a.ProductID.String(), b.ProductID.String())
	})
	return lines
}
