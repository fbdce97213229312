package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pattycroche/storefront/internal/domain/cart"
	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
	"github.com/pattycroche/storefront/internal/domain/shipping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type quoteFixture struct {
	lookup   *MockPostalLookup
	rates    *MockRateCalculator
	carts    *MockCartAccess
	products *MockProductGetter
	sessions *memorySessions
	svc      *QuoteService
}

func newQuoteFixture(insure bool) *quoteFixture {
	f := &quoteFixture{
		lookup:   new(MockPostalLookup),
		rates:    new(MockRateCalculator),
		carts:    new(MockCartAccess),
		products: new(MockProductGetter),
		sessions: newMemorySessions(),
	}
	f.svc = NewQuoteService(f.lookup, f.rates, nil, f.sessions, f.carts, f.products,
		QuoteServiceConfig{Origin: originCEP, InsureItems: insure}, nil)
	return f
}

var carrierQuotes = []shipping.RawQuote{
	{ID: "1", Name: "PAC", Price: dec("22.50"), DeliveryTime: "7"},
	{ID: "2", Name: "SEDEX", Price: dec("35.10"), DeliveryTime: "3"},
	{ID: "3", Name: "Jadlog", Error: "Transportadora não atende este trecho."},
}

func TestQuoteService_LookupAddress(t *testing.T) {
	ctx := context.Background()
	f := newQuoteFixture(false)
	f.lookup.On("Lookup", ctx, valueobject.MustNewPostalCode("12080000")).Return(taubate, nil)

	addr, err := f.svc.LookupAddress(ctx, "12080-000")
	require.NoError(t, err)
	assert.Equal(t, "Taubaté", addr.City)
	assert.Equal(t, "12080-000", addr.PostalCode)
	assert.True(t, addr.Local)
}

func TestQuoteService_LookupAddress_InvalidCodeSkipsLookup(t *testing.T) {
	f := newQuoteFixture(false)

	_, err := f.svc.LookupAddress(context.Background(), "1208")
	assert.ErrorIs(t, err, shipping.ErrInvalidPostalCode)
	f.lookup.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestQuoteService_Quote_CartRemote(t *testing.T) {
	ctx := context.Background()
	f := newQuoteFixture(true)

	c := cart.New("s1")
	bear := testProduct(1, "bear", "60.00")
	w := dec("300")
	bear.Dimensions.Weight = &w
	require.NoError(t, c.AddQuantity(*bear, 2))

	dest := valueobject.MustNewPostalCode("01310100")
	f.carts.On("Load", ctx, "s1").Return(c, nil)
	f.lookup.On("Lookup", mock.Anything, dest).Return(saoPaulo, nil)
	f.rates.On("Calculate", mock.Anything, mock.MatchedBy(func(req shipping.RateRequest) bool {
		if !req.From.Equals(originCEP) || !req.To.Equals(dest) || len(req.Items) != 1 {
			return false
		}
		item := req.Items[0]
		return item.ID == "1" && item.Quantity == 2 &&
			item.InsuranceValue.Equal(dec("60")) &&
			item.Package.Weight.Equal(dec("0.3")) &&
			item.Package.Width.Equal(dec("11"))
	})).Return(carrierQuotes, nil)

	resp, err := f.svc.Quote(ctx, "s1", QuoteRequest{PostalCode: "01310-100"})
	require.NoError(t, err)
	assert.False(t, resp.Local)
	require.Len(t, resp.Quotes, 2)
	assert.Equal(t, "PAC", resp.Quotes[0].Name)
	assert.Equal(t, "1", resp.DefaultQuote)
	assert.Equal(t, "São Paulo", resp.Address.City)

	stored, err := f.sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, stored.PostalCode.Equals(dest))
	assert.Equal(t, "1:2@60.00", stored.Contents)
	assert.Len(t, stored.Quotes, 2)
	f.rates.AssertExpectations(t)
}

func TestQuoteService_Quote_LocalGetsFreeCourierFirst(t *testing.T) {
	ctx := context.Background()
	f := newQuoteFixture(false)

	f.products.On("GetVisible", ctx, int64(1)).Return(testProduct(1, "bear", "60.00"), nil)
	f.lookup.On("Lookup", mock.Anything, mock.Anything).Return(taubate, nil)
	f.rates.On("Calculate", mock.Anything, mock.MatchedBy(func(req shipping.RateRequest) bool {
		return len(req.Items) == 1 && req.Items[0].Quantity == 3 && req.Items[0].InsuranceValue.IsZero()
	})).Return(carrierQuotes, nil)

	resp, err := f.svc.Quote(ctx, "s1", QuoteRequest{PostalCode: "12080000", ProductID: 1, Quantity: 3})
	require.NoError(t, err)
	assert.True(t, resp.Local)
	require.Len(t, resp.Quotes, 3)
	assert.Equal(t, shipping.LocalCourierID, resp.DefaultQuote)
	assert.True(t, resp.Quotes[0].Price.IsZero())
}

func TestQuoteService_Quote_AllCarrierErrors(t *testing.T) {
	ctx := context.Background()
	f := newQuoteFixture(false)

	f.products.On("GetVisible", ctx, int64(1)).Return(testProduct(1, "bear", "60.00"), nil)
	f.lookup.On("Lookup", mock.Anything, mock.Anything).Return(saoPaulo, nil)
	f.rates.On("Calculate", mock.Anything, mock.Anything).Return([]shipping.RawQuote{
		{ID: "1", Error: "CEP de destino inválido"},
		{ID: "2", Error: "outro erro"},
	}, nil)

	_, err := f.svc.Quote(ctx, "s1", QuoteRequest{PostalCode: "01310100", ProductID: 1})
	require.Error(t, err)
	assert.Equal(t, "CEP de destino inválido", err.Error())

	_, err = f.sessions.Get(ctx, "s1")
	assert.ErrorIs(t, err, shipping.ErrQuoteSessionNotFound)
}

func TestQuoteService_Quote_NoOptions(t *testing.T) {
	ctx := context.Background()
	f := newQuoteFixture(false)

	f.products.On("GetVisible", ctx, int64(1)).Return(testProduct(1, "bear", "60.00"), nil)
	f.lookup.On("Lookup", mock.Anything, mock.Anything).Return(saoPaulo, nil)
	f.rates.On("Calculate", mock.Anything, mock.Anything).Return([]shipping.RawQuote{}, nil)

	_, err := f.svc.Quote(ctx, "s1", QuoteRequest{PostalCode: "01310100", ProductID: 1})
	assert.ErrorIs(t, err, shipping.ErrNoShippingOptions)
}

func TestQuoteService_Quote_LookupNotFoundStillQuotes(t *testing.T) {
	ctx := context.Background()
	f := newQuoteFixture(false)

	f.products.On("GetVisible", ctx, int64(1)).Return(testProduct(1, "bear", "60.00"), nil)
	f.lookup.On("Lookup", mock.Anything, mock.Anything).Return(valueobject.Address{}, shipping.ErrPostalCodeNotFound)
	f.rates.On("Calculate", mock.Anything, mock.Anything).Return(carrierQuotes, nil)

	resp, err := f.svc.Quote(ctx, "s1", QuoteRequest{PostalCode: "99999999", ProductID: 1})
	require.NoError(t, err)
	assert.Nil(t, resp.Address)
	assert.Equal(t, shipping.ErrPostalCodeNotFound.Message, resp.AddressNotice)
	assert.False(t, resp.Local)
	assert.Len(t, resp.Quotes, 2)
}

func TestQuoteService_Quote_RatesFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("remote customer gets the error", func(t *testing.T) {
		f := newQuoteFixture(false)
		f.products.On("GetVisible", ctx, int64(1)).Return(testProduct(1, "bear", "60.00"), nil)
		f.lookup.On("Lookup", mock.Anything, mock.Anything).Return(saoPaulo, nil)
		f.rates.On("Calculate", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: connection refused", errors.New("transport")))

		_, err := f.svc.Quote(ctx, "s1", QuoteRequest{PostalCode: "01310100", ProductID: 1})
		assert.ErrorIs(t, err, shipping.ErrShippingRatesFailed)
	})

	t.Run("local customer keeps the courier option", func(t *testing.T) {
		f := newQuoteFixture(false)
		f.products.On("GetVisible", ctx, int64(1)).Return(testProduct(1, "bear", "60.00"), nil)
		f.lookup.On("Lookup", mock.Anything, mock.Anything).Return(taubate, nil)
		f.rates.On("Calculate", mock.Anything, mock.Anything).Return(nil, shipping.ErrShippingRatesFailed)

		resp, err := f.svc.Quote(ctx, "s1", QuoteRequest{PostalCode: "12080000", ProductID: 1})
		require.NoError(t, err)
		require.Len(t, resp.Quotes, 1)
		assert.True(t, resp.Quotes[0].IsLocal())
	})
}

func TestQuoteService_Quote_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid postal code", func(t *testing.T) {
		f := newQuoteFixture(false)
		_, err := f.svc.Quote(ctx, "s1", QuoteRequest{PostalCode: "abc"})
		assert.ErrorIs(t, err, shipping.ErrInvalidPostalCode)
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newQuoteFixture(false)
		f.carts.On("Load", ctx, "s1").Return(cart.New("s1"), nil)
		_, err := f.svc.Quote(ctx, "s1", QuoteRequest{PostalCode: "12080000"})
		assert.ErrorIs(t, err, ErrNothingToQuote)
		f.rates.AssertNotCalled(t, "Calculate", mock.Anything, mock.Anything)
	})
}

func TestQuoteService_Quote_NewerRequestSupersedes(t *testing.T) {
	ctx := context.Background()
	f := newQuoteFixture(false)

	f.products.On("GetVisible", mock.Anything, int64(1)).Return(testProduct(1, "bear", "60.00"), nil)
	f.lookup.On("Lookup", mock.Anything, mock.Anything).Return(saoPaulo, nil)

	started := make(chan struct{})
	slow := valueobject.MustNewPostalCode("01310100")
	f.rates.On("Calculate", mock.Anything, mock.MatchedBy(func(req shipping.RateRequest) bool {
		return req.To.Equals(slow)
	})).Run(func(args mock.Arguments) {
		close(started)
		<-args.Get(0).(context.Context).Done()
	}).Return(nil, context.Canceled)
	f.rates.On("Calculate", mock.Anything, mock.Anything).Return(carrierQuotes, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := f.svc.Quote(ctx, "s1", QuoteRequest{PostalCode: "01310100", ProductID: 1})
		errCh <- err
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first calculation did not start")
	}

	resp, err := f.svc.Quote(ctx, "s1", QuoteRequest{PostalCode: "04538-133", ProductID: 1})
	require.NoError(t, err)
	assert.Len(t, resp.Quotes, 2)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrQuoteSuperseded)
	case <-time.After(time.Second):
		t.Fatal("superseded calculation did not return")
	}

	stored, err := f.sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "04538133", stored.PostalCode.Digits())
}
