package shipping

import (
	"testing"

	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func carrierQuote(id, name, price string) RawQuote {
	return RawQuote{
		ID:           id,
		Name:         name,
		Price:        decimal.RequireFromString(price),
		DeliveryTime: "5",
		CompanyName:  "Correios",
	}
}

func TestNormalizeQuotes(t *testing.T) {
	t.Run("empty list for non-local city is an error", func(t *testing.T) {
		quotes, err := NormalizeQuotes(nil, false)
		assert.Nil(t, quotes)
		assert.ErrorIs(t, err, ErrNoShippingOptions)
		assert.Equal(t, "no shipping options available for this postal code", err.Error())
	})

	t.Run("only error entries surface the first message", func(t *testing.T) {
		_, err := NormalizeQuotes([]RawQuote{{Error: "x"}, {Error: "y"}}, false)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, CodeShippingQuoteError, domainErr.Code)
		assert.Equal(t, "x", domainErr.Message)
	})

	t.Run("error entries are dropped", func(t *testing.T) {
		quotes, err := NormalizeQuotes([]RawQuote{
			{ID: "3", Error: "service unavailable for route"},
			carrierQuote("1", "PAC", "22.50"),
			carrierQuote("2", "SEDEX", "41.90"),
		}, false)
		require.NoError(t, err)
		require.Len(t, quotes, 2)
		assert.Equal(t, "PAC", quotes[0].Name)
		assert.Equal(t, QuoteKindCarrier, quotes[0].Kind)
		assert.Equal(t, "SEDEX", quotes[1].Name)
	})

	t.Run("local city gets free courier first", func(t *testing.T) {
		quotes, err := NormalizeQuotes([]RawQuote{carrierQuote("1", "PAC", "22.50")}, true)
		require.NoError(t, err)
		require.Len(t, quotes, 2)

		assert.True(t, quotes[0].IsLocal())
		assert.Equal(t, LocalCourierName, quotes[0].Name)
		assert.True(t, quotes[0].Price.IsZero())
		assert.Equal(t, "1-2", quotes[0].DeliveryTime)

		assert.False(t, quotes[1].IsLocal())
		assert.Equal(t, "PAC", quotes[1].Name)
	})

	t.Run("local city keeps courier when carrier fails", func(t *testing.T) {
		quotes, err := NormalizeQuotes([]RawQuote{{Error: "x"}}, true)
		require.NoError(t, err)
		require.Len(t, quotes, 1)
		assert.True(t, quotes[0].IsLocal())
	})
}

func TestQuoteNormalizer_Normalize(t *testing.T) {
	n := NewQuoteNormalizer(nil)
	raw := []RawQuote{carrierQuote("1", "PAC", "22.50")}

	local, err := n.Normalize(raw, "Taubaté")
	require.NoError(t, err)
	assert.Len(t, local, 2)

	remote, err := n.Normalize(raw, "São Paulo")
	require.NoError(t, err)
	assert.Len(t, remote, 1)

	unknown, err := n.Normalize(raw, "")
	require.NoError(t, err)
	assert.Len(t, unknown, 1)

	assert.True(t, n.Classifier().IsLocal("Tremembé"))
}

func TestFindQuote(t *testing.T) {
	quotes, err := NormalizeQuotes([]RawQuote{carrierQuote("1", "PAC", "22.50")}, true)
	require.NoError(t, err)

	q, ok := FindQuote(quotes, LocalCourierID)
	assert.True(t, ok)
	assert.True(t, q.IsLocal())

	q, ok = FindQuote(quotes, "1")
	assert.True(t, ok)
	assert.Equal(t, "PAC", q.Name)

	_, ok = FindQuote(quotes, "missing")
	assert.False(t, ok)
}

func TestQuoteSession_Find(t *testing.T) {
	s := QuoteSession{Quotes: []Quote{LocalCourierQuote(), {ID: "3", Name: "PAC"}}}

	q, ok := s.Find("3")
	assert.True(t, ok)
	assert.Equal(t, "PAC", q.Name)

	_, ok = s.Find("99")
	assert.False(t, ok)
}

func TestQuoteSession_Covers(t *testing.T) {
	s := QuoteSession{Contents: "1:2@60.00,2:1@20.00"}

	assert.True(t, s.Covers("1:2@60.00,2:1@20.00"))
	assert.False(t, s.Covers("1:3@60.00,2:1@20.00"))
	assert.False(t, s.Covers(""))
	assert.False(t, (&QuoteSession{}).Covers(""), "sessions without contents cover nothing")
}
