package pricing

import (
	"testing"

	"github.com/pattycroche/storefront/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNuvemshopStrategy_ListingPrice(t *testing.T) {
	s := NewNuvemshopStrategy()

	assert.Equal(t, NuvemshopStrategyName, s.Name())
	assert.NotEmpty(t, s.Description())
	assert.True(t, s.FeeRate().Equal(d("0.0499")))

	tests := []struct {
		name     string
		net      string
		expected string
	}{
		{"zero net still covers fixed fee", "0", "0.37"},
		{"small amount", "10", "10.89"},
		{"fifty", "50", "52.99"},
		{"hundred", "100", "105.62"},
		{"negative net is clamped", "-12", "0.37"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := s.ListingPrice(d(tt.net))
			assert.Equal(t, tt.expected, price.Round(2).StringFixed(2))
		})
	}
}

func TestNuvemshopStrategy_NeverBelowNet(t *testing.T) {
	s := NewNuvemshopStrategy()
	for _, net := range []string{"0", "0.01", "1", "29.89", "99.99", "1000", "123456.78"} {
		price := s.ListingPrice(d(net))
		assert.True(t, price.GreaterThanOrEqual(d(net)), "net %s produced %s", net, price)
	}
}

func TestShopeeStrategy_ListingPrice(t *testing.T) {
	s := NewShopeeStrategy()

	assert.Equal(t, ShopeeStrategyName, s.Name())
	assert.True(t, s.CommissionCap().Equal(d("105")))

	tests := []struct {
		name     string
		net      string
		expected string
	}{
		{"zero", "0", "5.00"},
		{"low price", "29.89", "42.36"},
		{"hundred", "100", "130.00"},
		{"exactly at cap uses percentage", "416", "525.00"},
		{"just above cap uses flat commission", "416.01", "525.01"},
		{"well above cap", "1000", "1109.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := s.ListingPrice(d(tt.net))
			assert.Equal(t, tt.expected, price.Round(2).StringFixed(2))
		})
	}
}

func TestShopeeStrategy_CapBoundary(t *testing.T) {
	s := NewShopeeStrategy()

	// Below the boundary the commission is exactly 20% of the price
	below := s.ListingPrice(d("415.99"))
	assert.True(t, below.Mul(d("0.2")).LessThanOrEqual(d("105")))
	assert.True(t, below.Equal(d("419.99").Div(d("0.8"))))

	// Above it the seller pays the flat cap
	above := s.ListingPrice(d("500"))
	assert.True(t, above.Equal(d("609")))
}

func TestElo7Strategy_ListingPrice(t *testing.T) {
	s := DefaultElo7Strategy()

	tests := []struct {
		name        string
		net         string
		expectedFee string
		expected    string
		ceiling     string
	}{
		{"first bracket", "15", "1.99", "28.74", "29.89"},
		{"second bracket", "20", "2.49", "35.61", "79.89"},
		{"third bracket", "100", "2.99", "136.24", "149.89"},
		{"fourth bracket", "200", "4.99", "263.74", "299.89"},
		{"escalates to open bracket", "290", "5.99", "377.49", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := s.ListingPrice(d(tt.net))
			assert.Equal(t, tt.expected, price.Round(2).StringFixed(2))
			assert.True(t, s.ServiceFee(d(tt.net)).Equal(d(tt.expectedFee)))
			if tt.ceiling != "" {
				assert.True(t, price.LessThanOrEqual(d(tt.ceiling)))
			}
		})
	}
}

func TestElo7Strategy_SortsTiers(t *testing.T) {
	high := d("100")
	low := d("10")
	s := NewElo7Strategy([]ServiceFeeTier{
		{MaxPrice: nil, Fee: d("3")},
		{MaxPrice: &high, Fee: d("2")},
		{MaxPrice: &low, Fee: d("1")},
	})

	tiers := s.GetTiers()
	require.Len(t, tiers, 3)
	assert.True(t, tiers[0].Fee.Equal(d("1")))
	assert.True(t, tiers[1].Fee.Equal(d("2")))
	assert.Nil(t, tiers[2].MaxPrice)
}

func TestElo7Strategy_WithoutOpenBracket(t *testing.T) {
	ceiling := d("10")
	s := NewElo7Strategy([]ServiceFeeTier{{MaxPrice: &ceiling, Fee: d("1")}})

	// (50 + 6 + 1) / 0.8
	assert.True(t, s.ListingPrice(d("50")).Equal(d("71.25")))
}

func TestStrategies_ArePure(t *testing.T) {
	strategies := []strategy.ListingPriceStrategy{
		NewNuvemshopStrategy(),
		NewShopeeStrategy(),
		DefaultElo7Strategy(),
	}
	for _, s := range strategies {
		t.Run(s.Name(), func(t *testing.T) {
			first := s.ListingPrice(d("87.5"))
			second := s.ListingPrice(d("87.5"))
			assert.True(t, first.Equal(second))
		})
	}
}
