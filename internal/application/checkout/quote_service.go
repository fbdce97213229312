package checkout

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
	"github.com/pattycroche/storefront/internal/domain/shipping"
	"github.com/pattycroche/storefront/internal/domain/trade"
	"github.com/pattycroche/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	// ErrNothingToQuote is returned when the cart is empty and no product was given
	ErrNothingToQuote = shared.NewDomainError("EMPTY_CART", "Add items to the cart before calculating shipping")
	// ErrQuoteSuperseded is returned to a quote request replaced by a newer one of the same session
	ErrQuoteSuperseded = shared.NewDomainError("QUOTE_SUPERSEDED", "A newer shipping calculation replaced this one")
)

// QuoteServiceConfig holds the shop-side parameters of a rate request
type QuoteServiceConfig struct {
	Origin valueobject.PostalCode
	// InsureItems declares each item's price as its insured value
	InsureItems bool
}

type quoteFlight struct {
	id     uint64
	cancel context.CancelFunc
}

// QuoteService looks up addresses and calculates shipping options.
// Each session has at most one calculation in flight; starting a new one
// cancels the previous.
type QuoteService struct {
	lookup     shipping.PostalLookup
	rates      shipping.RateCalculator
	normalizer *shipping.QuoteNormalizer
	sessions   shipping.QuoteSessionStore
	carts      CartAccess
	products   ProductGetter
	config     QuoteServiceConfig
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	seq      uint64
	inflight map[string]quoteFlight
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(
	lookup shipping.PostalLookup,
	rates shipping.RateCalculator,
	normalizer *shipping.QuoteNormalizer,
	sessions shipping.QuoteSessionStore,
	carts CartAccess,
	products ProductGetter,
	config QuoteServiceConfig,
	logger *zap.Logger,
) *QuoteService {
	if normalizer == nil {
		normalizer = shipping.NewQuoteNormalizer(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteService{
		lookup:     lookup,
		rates:      rates,
		normalizer: normalizer,
		sessions:   sessions,
		carts:      carts,
		products:   products,
		config:     config,
		logger:     logger,
		now:        time.Now,
		inflight:   make(map[string]quoteFlight),
	}
}

// LookupAddress resolves a postal code. Malformed codes fail before any lookup.
func (s *QuoteService) LookupAddress(ctx context.Context, rawCode string) (*AddressResponse, error) {
	code, err := parsePostalCode(rawCode)
	if err != nil {
		return nil, err
	}
	addr, err := s.lookup.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	resp := ToAddressResponse(addr, s.normalizer.Classifier().IsLocal(addr.City()))
	return &resp, nil
}

// Quote calculates the shipping options for a session's cart, or for a
// single product, and remembers them for order submission
func (s *QuoteService) Quote(ctx context.Context, sessionID string, req QuoteRequest) (*QuoteResponse, error) {
	attrs := []attribute.KeyValue{
		telemetry.AttrSessionID.String(sessionID),
		telemetry.AttrPostalCode.String(req.PostalCode),
	}
	return telemetry.InSpan(ctx, "shipping.quote", attrs,
		func(ctx context.Context, span trace.Span) (*QuoteResponse, error) {
			resp, err := s.quote(ctx, sessionID, req)
			if err != nil {
				return nil, err
			}
			span.SetAttributes(
				telemetry.AttrLocal.Bool(resp.Local),
				telemetry.AttrQuoteCount.Int(len(resp.Quotes)),
				telemetry.AttrQuoteID.String(resp.DefaultQuote),
			)
			return resp, nil
		})
}

func (s *QuoteService) quote(ctx context.Context, sessionID string, req QuoteRequest) (*QuoteResponse, error) {
	code, err := parsePostalCode(req.PostalCode)
	if err != nil {
		return nil, err
	}
	items, contents, err := s.rateItems(ctx, sessionID, req)
	if err != nil {
		return nil, err
	}

	ctx, release := s.begin(ctx, sessionID)
	defer release()

	resp := &QuoteResponse{PostalCode: code.Masked()}

	// An unresolved address does not block quoting; it only rules out local delivery
	city := ""
	addr, err := s.lookup.Lookup(ctx, code)
	switch {
	case err == nil:
		city = addr.City()
		local := s.normalizer.Classifier().IsLocal(city)
		a := ToAddressResponse(addr, local)
		resp.Address = &a
	case ctx.Err() != nil:
		return nil, ErrQuoteSuperseded
	default:
		s.logger.Warn("postal lookup failed, quoting without address",
			zap.String("postal_code", code.Digits()),
			zap.Error(err),
		)
		resp.AddressNotice = userMessage(err, shipping.ErrPostalLookupFailed)
	}

	raw, err := s.rates.Calculate(ctx, shipping.RateRequest{
		From:  s.config.Origin,
		To:    code,
		Items: items,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrQuoteSuperseded
		}
		s.logger.Warn("shipping rate request failed",
			zap.String("postal_code", code.Digits()),
			zap.Error(err),
		)
		if city == "" || !s.normalizer.Classifier().IsLocal(city) {
			return nil, domainOr(err, shipping.ErrShippingRatesFailed)
		}
		// Local customers still get the courier option
		raw = nil
	}

	quotes, err := s.normalizer.Normalize(raw, city)
	if err != nil {
		return nil, err
	}
	resp.Quotes = quotes
	resp.Local = len(quotes) > 0 && quotes[0].IsLocal()
	resp.DefaultQuote = quotes[0].ID

	if ctx.Err() != nil {
		return nil, ErrQuoteSuperseded
	}
	if err := s.sessions.Save(ctx, sessionID, shipping.QuoteSession{
		PostalCode: code,
		Contents:   contents,
		City:       city,
		Local:      resp.Local,
		Quotes:     quotes,
		CreatedAt:  s.now(),
	}); err != nil {
		s.logger.Error("failed to store quote session", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

func (s *QuoteService) rateItems(ctx context.Context, sessionID string, req QuoteRequest) ([]shipping.RateItem, string, error) {
	var lines []trade.LineItem
	dims := make(map[int64]shipping.PackageAttributes)

	if req.ProductID > 0 {
		product, err := s.products.GetVisible(ctx, req.ProductID)
		if err != nil {
			return nil, "", err
		}
		lines = trade.ItemsFromProduct(*product, req.Quantity)
		dims[product.ID] = packageAttributes(product.Dimensions.Width, product.Dimensions.Height, product.Dimensions.Length, product.Dimensions.Weight)
	} else {
		if sessionID == "" {
			return nil, "", ErrNothingToQuote
		}
		c, err := s.carts.Load(ctx, sessionID)
		if err != nil {
			return nil, "", err
		}
		lines = trade.ItemsFromCart(c)
		for _, l := range c.Lines() {
			d := l.Product.Dimensions
			dims[l.Product.ID] = packageAttributes(d.Width, d.Height, d.Length, d.Weight)
		}
	}
	if len(lines) == 0 {
		return nil, "", ErrNothingToQuote
	}

	items := make([]shipping.RateItem, len(lines))
	for i, l := range lines {
		insured := decimal.Zero
		if s.config.InsureItems {
			insured = l.UnitPrice
		}
		items[i] = shipping.RateItem{
			ID:             strconv.FormatInt(l.ProductID, 10),
			Package:        shipping.ResolvePackage(dims[l.ProductID]),
			InsuranceValue: insured,
			Quantity:       l.Quantity,
		}
	}
	return items, trade.Contents(lines), nil
}

// begin registers a calculation for the session, cancelling the one in
// flight. The returned release must be called when the calculation ends.
func (s *QuoteService) begin(ctx context.Context, sessionID string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	if sessionID == "" {
		return ctx, cancel
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.inflight[sessionID]; ok {
		prev.cancel()
	}
	s.seq++
	id := s.seq
	s.inflight[sessionID] = quoteFlight{id: id, cancel: cancel}

	return ctx, func() {
		cancel()
		s.mu.Lock()
		defer s.mu.Unlock()
		if f, ok := s.inflight[sessionID]; ok && f.id == id {
			delete(s.inflight, sessionID)
		}
	}
}

func packageAttributes(width, height, length, weight *decimal.Decimal) shipping.PackageAttributes {
	return shipping.PackageAttributes{Width: width, Height: height, Length: length, Weight: weight}
}

func parsePostalCode(raw string) (valueobject.PostalCode, error) {
	code, err := valueobject.NewPostalCode(raw)
	if err != nil {
		return valueobject.PostalCode{}, shipping.ErrInvalidPostalCode
	}
	return code, nil
}

// domainOr returns the DomainError carried by err, or fallback wrapping it
func domainOr(err error, fallback *shared.DomainError) error {
	if de, ok := shared.AsDomain(err); ok {
		return de
	}
	return fallback.Wrap(err)
}

// userMessage returns the message of the DomainError carried by err, or fallback's
func userMessage(err error, fallback *shared.DomainError) string {
	if de, ok := shared.AsDomain(err); ok {
		return de.Message
	}
	return fallback.Message
}
