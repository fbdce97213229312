package cart

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pattycroche/storefront/internal/domain/catalog"
	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	// ErrLineNotFound is returned when a product is not in the cart
	ErrLineNotFound = shared.NewDomainError("CART_ITEM_NOT_FOUND", "Item is not in the cart")
	// ErrInvalidQuantity is returned for a quantity outside 1..MaxLineQuantity
	ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY",
		fmt.Sprintf("Quantity must be between 1 and %d", MaxLineQuantity))
)

// MaxLineQuantity caps the units of one product a cart line can hold.
const MaxLineQuantity = 9999

// Line is a product in the cart with its quantity, always within 1..MaxLineQuantity.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns price times quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds one browsing session's selected products in insertion order.
// It is owned by a single session and is not safe for concurrent use.
type Cart struct {
	sessionID string
	lines     []Line
	updatedAt time.Time
}

// New creates an empty cart for a session
func New(sessionID string) *Cart {
	return &Cart{
		sessionID: sessionID,
		lines:     make([]Line, 0),
		updatedAt: time.Now(),
	}
}

// SessionID returns the owning session
func (c *Cart) SessionID() string {
	return c.sessionID
}

// UpdatedAt returns when the cart last changed
func (c *Cart) UpdatedAt() time.Time {
	return c.updatedAt
}

// Add puts one unit of product in the cart. A product already in the cart
// has its quantity incremented instead of getting a second line.
func (c *Cart) Add(product catalog.Product) error {
	return c.AddQuantity(product, 1)
}

// AddQuantity puts qty units of product in the cart. The resulting line
// quantity may not exceed MaxLineQuantity; the cart is unchanged if it would.
func (c *Cart) AddQuantity(product catalog.Product, qty int) error {
	if qty < 1 || qty > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	if i := c.indexOf(product.ID); i >= 0 {
		if c.lines[i].Quantity > MaxLineQuantity-qty {
			return ErrInvalidQuantity
		}
		c.lines[i].Quantity += qty
	} else {
		c.lines = append(c.lines, Line{Product: product, Quantity: qty})
	}
	c.touch()
	return nil
}

// UpdateQuantity sets a line's quantity. A quantity below 1 removes the line.
func (c *Cart) UpdateQuantity(productID int64, qty int) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	if qty > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	if qty < 1 {
		c.removeAt(i)
	} else {
		c.lines[i].Quantity = qty
	}
	c.touch()
	return nil
}

// Remove deletes a line entirely
func (c *Cart) Remove(productID int64) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	c.removeAt(i)
	c.touch()
	return nil
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.lines = make([]Line, 0)
	c.touch()
}

// Total returns the sum of price times quantity over all lines
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Count returns the number of units in the cart
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty returns true when the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy of the cart lines in insertion order
func (c *Cart) Lines() []Line {
	result := make([]Line, len(c.lines))
	copy(result, c.lines)
	return result
}

// Line returns the line for a product
func (c *Cart) Line(productID int64) (Line, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

func (c *Cart) indexOf(productID int64) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// Clone returns an independent copy of the cart
func (c *Cart) Clone() *Cart {
	lines := make([]Line, len(c.lines))
	copy(lines, c.lines)
	return &Cart{sessionID: c.sessionID, lines: lines, updatedAt: c.updatedAt}
}

func (c *Cart) touch() {
	c.updatedAt = time.Now()
}

// cartJSON is used for JSON marshaling/unmarshaling
type cartJSON struct {
	SessionID string    `json:"session_id"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarshalJSON implements json.Marshaler
func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(cartJSON{
		SessionID: c.sessionID,
		Lines:     c.lines,
		UpdatedAt: c.updatedAt,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Lines with a quantity outside
// 1..MaxLineQuantity are dropped so a restored cart keeps its invariant.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var v cartJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	lines := make([]Line, 0, len(v.Lines))
	for _, l := range v.Lines {
		if l.Quantity >= 1 && l.Quantity <= MaxLineQuantity {
			lines = append(lines, l)
		}
	}
	c.sessionID = v.SessionID
	c.lines = lines
	c.updatedAt = v.UpdatedAt
	return nil
}
