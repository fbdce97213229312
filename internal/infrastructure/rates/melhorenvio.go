// Package rates calls the Melhor Envio shipping calculator.
package rates

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pattycroche/storefront/internal/domain/shipping"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the production Melhor Envio API
	DefaultBaseURL = "https://melhorenvio.com.br"
	calculatePath  = "/api/v2/me/shipment/calculate"

	// maxResponseSize bounds a calculator response body (1MB)
	maxResponseSize = 1 << 20
)

// errUpstream marks responses that should count against the breaker
var errUpstream = errors.New("melhor envio: upstream error")

// Config holds the calculator settings
type Config struct {
	BaseURL     string
	Token       string
	UserAgent   string
	Timeout     time.Duration
	MaxFailures uint32        // consecutive failures before the breaker opens
	OpenTimeout time.Duration // how long the breaker stays open
}

// MelhorEnvioAdapter implements shipping.RateCalculator
type MelhorEnvioAdapter struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *zap.Logger
}

// Option configures the adapter
type Option func(*MelhorEnvioAdapter)

// WithHTTPClient replaces the instrumented default client
func WithHTTPClient(client *http.Client) Option {
	return func(a *MelhorEnvioAdapter) {
		a.httpClient = client
	}
}

// NewMelhorEnvioAdapter creates the adapter and its circuit breaker
func NewMelhorEnvioAdapter(cfg Config, logger *zap.Logger, opts ...Option) *MelhorEnvioAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	a := &MelhorEnvioAdapter{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.Named("melhorenvio"),
	}
	a.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "melhorenvio",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			// a cancelled shopper request says nothing about the carrier
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			a.logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type calculateRequest struct {
	From     postalCodeJSON `json:"from"`
	To       postalCodeJSON `json:"to"`
	Products []productJSON  `json:"products"`
}

type postalCodeJSON struct {
	PostalCode string `json:"postal_code"`
}

type productJSON struct {
	ID             string      `json:"id"`
	Width          json.Number `json:"width"`
	Height         json.Number `json:"height"`
	Length         json.Number `json:"length"`
	Weight         json.Number `json:"weight"`
	InsuranceValue json.Number `json:"insurance_value"`
	Quantity       int         `json:"quantity"`
}

type quoteJSON struct {
	ID           json.Number `json:"id"`
	Name         string      `json:"name"`
	Price        string      `json:"price"`
	CustomPrice  string      `json:"custom_price"`
	DeliveryTime json.Number `json:"delivery_time"`
	Error        string      `json:"error"`
	Company      struct {
		Name    string `json:"name"`
		Picture string `json:"picture"`
	} `json:"company"`
}

// Calculate asks the calculator for every carrier's option for the parcel list
func (a *MelhorEnvioAdapter) Calculate(ctx context.Context, req shipping.RateRequest) ([]shipping.RawQuote, error) {
	if a.cfg.Token == "" {
		return nil, shipping.ErrShippingNotConfigured
	}

	payload, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", shipping.ErrShippingRatesFailed, err)
	}

	body, err := a.breaker.Execute(func() ([]byte, error) {
		return a.post(ctx, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			a.logger.Warn("Shipping calculator unavailable, breaker open")
		}
		return nil, fmt.Errorf("%w: %v", shipping.ErrShippingRatesFailed, err)
	}

	var quotes []quoteJSON
	if err := json.Unmarshal(body, &quotes); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", shipping.ErrShippingRatesFailed, err)
	}
	return toRawQuotes(quotes), nil
}

func (a *MelhorEnvioAdapter) post(ctx context.Context, payload []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+calculatePath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.cfg.Token)
	if a.cfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", a.cfg.UserAgent)
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		a.logger.Warn("Shipping calculator returned unexpected status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(body, 512)),
		)
		return nil, fmt.Errorf("%w: status %d", errUpstream, resp.StatusCode)
	}
	return body, nil
}

func buildRequest(req shipping.RateRequest) calculateRequest {
	products := make([]productJSON, len(req.Items))
	for i, item := range req.Items {
		products[i] = productJSON{
			ID:             item.ID,
			Width:          number(item.Package.Width),
			Height:         number(item.Package.Height),
			Length:         number(item.Package.Length),
			Weight:         number(item.Package.Weight),
			InsuranceValue: number(item.InsuranceValue),
			Quantity:       item.Quantity,
		}
	}
	return calculateRequest{
		From:     postalCodeJSON{PostalCode: req.From.Digits()},
		To:       postalCodeJSON{PostalCode: req.To.Digits()},
		Products: products,
	}
}

// toRawQuotes maps calculator records. A priced record whose price cannot be
// parsed is turned into an error marker.
func toRawQuotes(quotes []quoteJSON) []shipping.RawQuote {
	result := make([]shipping.RawQuote, 0, len(quotes))
	for _, q := range quotes {
		raw := shipping.RawQuote{
			ID:          q.ID.String(),
			Name:        q.Name,
			CompanyName: q.Company.Name,
			CompanyLogo: q.Company.Picture,
			Error:       q.Error,
		}
		if raw.IsError() {
			result = append(result, raw)
			continue
		}

		priceText := q.CustomPrice
		if priceText == "" {
			priceText = q.Price
		}
		price, err := decimal.NewFromString(priceText)
		if err != nil {
			raw.Error = fmt.Sprintf("%s: invalid price", q.Name)
			result = append(result, raw)
			continue
		}
		raw.Price = price
		if days, err := strconv.Atoi(q.DeliveryTime.String()); err == nil {
			raw.DeliveryTime = strconv.Itoa(days)
		}
		result = append(result, raw)
	}
	return result
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
