package postal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
	"github.com/pattycroche/storefront/internal/domain/shipping"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// maxResponseSize bounds a lookup response body (64KB)
const maxResponseSize = 64 * 1024

// DefaultBaseURL is the public ViaCEP endpoint
const DefaultBaseURL = "https://viacep.com.br"

// ViaCEPConfig holds the lookup service settings
type ViaCEPConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ViaCEPAdapter implements shipping.PostalLookup against the ViaCEP API
type ViaCEPAdapter struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// ViaCEPOption configures the adapter
type ViaCEPOption func(*ViaCEPAdapter)

// WithHTTPClient replaces the instrumented default client
func WithHTTPClient(client *http.Client) ViaCEPOption {
	return func(a *ViaCEPAdapter) {
		a.httpClient = client
	}
}

// NewViaCEPAdapter creates a ViaCEP lookup adapter
func NewViaCEPAdapter(cfg ViaCEPConfig, logger *zap.Logger, opts ...ViaCEPOption) *ViaCEPAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	a := &ViaCEPAdapter{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.Named("viacep"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// viaCEPResponse is the lookup payload. Unknown codes come back with erro set,
// as a boolean or as the string "true" depending on the API version.
type viaCEPResponse struct {
	CEP         string          `json:"cep"`
	Logradouro  string          `json:"logradouro"`
	Complemento string          `json:"complemento"`
	Bairro      string          `json:"bairro"`
	Localidade  string          `json:"localidade"`
	UF          string          `json:"uf"`
	Erro        json.RawMessage `json:"erro,omitempty"`
}

func (r viaCEPResponse) notFound() bool {
	switch strings.Trim(string(r.Erro), `" `) {
	case "", "false":
		return false
	}
	return true
}

// Lookup resolves a postal code to its street, district, city and state
func (a *ViaCEPAdapter) Lookup(ctx context.Context, code valueobject.PostalCode) (valueobject.Address, error) {
	if code.IsEmpty() {
		return valueobject.Address{}, shipping.ErrInvalidPostalCode
	}

	endpoint := fmt.Sprintf("%s/ws/%s/json/", a.baseURL, code.Digits())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return valueobject.Address{}, fmt.Errorf("%w: %v", shipping.ErrPostalLookupFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Warn("Postal lookup request failed", zap.String("postal_code", code.Digits()), zap.Error(err))
		return valueobject.Address{}, fmt.Errorf("%w: %v", shipping.ErrPostalLookupFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return valueobject.Address{}, fmt.Errorf("%w: read body: %v", shipping.ErrPostalLookupFailed, err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		return valueobject.Address{}, shipping.ErrPostalCodeNotFound
	case resp.StatusCode != http.StatusOK:
		a.logger.Warn("Postal lookup returned unexpected status",
			zap.String("postal_code", code.Digits()),
			zap.Int("status", resp.StatusCode),
		)
		return valueobject.Address{}, fmt.Errorf("%w: status %d", shipping.ErrPostalLookupFailed, resp.StatusCode)
	}

	var payload viaCEPResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return valueobject.Address{}, fmt.Errorf("%w: decode: %v", shipping.ErrPostalLookupFailed, err)
	}
	if payload.notFound() || strings.TrimSpace(payload.Localidade) == "" {
		return valueobject.Address{}, shipping.ErrPostalCodeNotFound
	}

	addr, err := valueobject.NewAddress(code, payload.Logradouro, payload.Localidade, payload.UF,
		valueobject.WithDistrict(payload.Bairro),
		valueobject.WithComplement(payload.Complemento),
	)
	if err != nil {
		return valueobject.Address{}, fmt.Errorf("%w: %v", shipping.ErrPostalLookupFailed, err)
	}
	return addr, nil
}
