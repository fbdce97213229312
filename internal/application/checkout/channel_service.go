package checkout

import (
	"context"

	"github.com/pattycroche/storefront/internal/domain/messaging"
	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/domain/shipping"
)

// ErrNoStoreLink is returned when a non-local customer orders a product
// that has no page on the shop's store
var ErrNoStoreLink = shared.NewDomainError("NO_STORE_LINK", "This product is not available in the online store yet")

// ChannelService decides where a product page order goes: local customers
// chat with the seller, everyone else is sent to the online store
type ChannelService struct {
	lookup     shipping.PostalLookup
	classifier *shipping.LocalityClassifier
	products   ProductGetter
	contact    messaging.Contact
}

// NewChannelService creates a new ChannelService
func NewChannelService(
	lookup shipping.PostalLookup,
	classifier *shipping.LocalityClassifier,
	products ProductGetter,
	contact messaging.Contact,
) *ChannelService {
	if classifier == nil {
		classifier = shipping.NewLocalityClassifier()
	}
	return &ChannelService{
		lookup:     lookup,
		classifier: classifier,
		products:   products,
		contact:    contact,
	}
}

// Resolve returns the order channel for a product and postal code.
// Lookup failures are returned as is: not found and unreachable stay distinct.
func (s *ChannelService) Resolve(ctx context.Context, req ChannelRequest) (*ChannelResponse, error) {
	code, err := parsePostalCode(req.PostalCode)
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetVisible(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	addr, err := s.lookup.Lookup(ctx, code)
	if err != nil {
		return nil, domainOr(err, shipping.ErrPostalLookupFailed)
	}

	local := s.classifier.IsLocal(addr.City())
	resp := &ChannelResponse{Address: ToAddressResponse(addr, local)}

	if local {
		qty := req.Quantity
		if qty < 1 {
			qty = 1
		}
		resp.Channel = ChannelWhatsApp
		resp.URL = s.contact.Link(messaging.ProductOrderMessage(product.Name, qty, code))
		return resp, nil
	}

	link, ok := product.StoreLink()
	if !ok {
		return nil, ErrNoStoreLink
	}
	resp.Channel = ChannelStore
	resp.URL = link
	return resp, nil
}
