package shipping

import (
	"context"
	"time"

	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
)

// ErrQuoteSessionNotFound is returned when a session has no stored options
var ErrQuoteSessionNotFound = shared.NewDomainError("QUOTE_SESSION_NOT_FOUND", "No shipping options were calculated for this session")

// QuoteSession is the last list of options offered to a browsing session.
// A newer calculation replaces it. Contents records the items the options
// were priced for.
type QuoteSession struct {
	PostalCode valueobject.PostalCode `json:"postal_code"`
	Contents   string                 `json:"contents"`
	City       string                 `json:"city,omitempty"`
	Local      bool                   `json:"local"`
	Quotes     []Quote                `json:"quotes"`
	CreatedAt  time.Time              `json:"created_at"`
}

// Find returns the option with the given id
func (s *QuoteSession) Find(id string) (Quote, bool) {
	return FindQuote(s.Quotes, id)
}

// Covers reports whether the options were priced for exactly these contents
func (s *QuoteSession) Covers(contents string) bool {
	return s.Contents != "" && s.Contents == contents
}

// QuoteSessionStore keeps the options offered to each session so that a
// submitted order can only select a quote the server produced
type QuoteSessionStore interface {
	Get(ctx context.Context, sessionID string) (*QuoteSession, error)
	Save(ctx context.Context, sessionID string, session QuoteSession) error
}
