package trade

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sync"
	"time"
)

// OrderNumberPrefix starts every order number
const OrderNumberPrefix = "PC"

const (
	suffixMin   = 1000
	suffixRange = 9000 // suffixes run 1000..9999
)

var orderNumberPattern = regexp.MustCompile(`^PC-\d{8}-\d{4}$`)

// IsValidOrderNumber reports whether s has the PC-YYYYMMDD-NNNN shape
func IsValidOrderNumber(s string) bool {
	return orderNumberPattern.MatchString(s)
}

// IntNSource is the part of a random generator the order numbers need
type IntNSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// OrderNumberGenerator produces PC-YYYYMMDD-NNNN numbers from the current
// date and a random four-digit suffix. Numbers are not checked for
// uniqueness.
type OrderNumberGenerator struct {
	mu  sync.Mutex
	now func() time.Time
	rnd IntNSource
}

// NewOrderNumberGenerator creates a generator. A nil clock uses time.Now and
// a nil source uses the global random generator.
func NewOrderNumberGenerator(now func() time.Time, rnd IntNSource) *OrderNumberGenerator {
	if now == nil {
		now = time.Now
	}
	if rnd == nil {
		rnd = globalRand{}
	}
	return &OrderNumberGenerator{now: now, rnd: rnd}
}

// Next returns a new order number dated now
func (g *OrderNumberGenerator) Next() string {
	return g.NextAt(g.now())
}

// NextAt returns a new order number dated at
func (g *OrderNumberGenerator) NextAt(at time.Time) string {
	g.mu.Lock()
	suffix := suffixMin + g.rnd.IntN(suffixRange)
	g.mu.Unlock()

	return fmt.Sprintf("%s-%s-%04d", OrderNumberPrefix, at.Format("20060102"), suffix)
}

// Now returns the generator's current time
func (g *OrderNumberGenerator) Now() time.Time {
	return g.now()
}
