// Package messaging builds the prefilled chat messages and deep links used to
// hand a customer over to the seller's WhatsApp.
package messaging

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
	"github.com/pattycroche/storefront/internal/domain/trade"
)

// WhatsAppBaseURL is the click-to-chat endpoint
const WhatsAppBaseURL = "https://wa.me/"

// DefaultCountryCode is prepended to phone numbers that do not carry one
const DefaultCountryCode = "55"

// ErrMissingPhone is returned when no seller phone number is configured
var ErrMissingPhone = shared.NewDomainError("MISSING_WHATSAPP_NUMBER", "Seller WhatsApp number is not configured")

// Contact is the seller's chat endpoint
type Contact struct {
	CountryCode string
	Phone       string
}

// NewContact strips formatting from phone and country code.
// An empty country code uses DefaultCountryCode.
func NewContact(countryCode, phone string) (Contact, error) {
	digits := valueobject.DigitsOnly(phone)
	if digits == "" {
		return Contact{}, ErrMissingPhone
	}
	cc := valueobject.DigitsOnly(countryCode)
	if cc == "" {
		cc = DefaultCountryCode
	}
	return Contact{CountryCode: cc, Phone: digits}, nil
}

// Link returns the wa.me deep link carrying text as the prefilled message
func (c Contact) Link(text string) string {
	link := WhatsAppBaseURL + c.CountryCode + c.Phone
	if text == "" {
		return link
	}
	// spaces as %20, the way the chat client expects them
	return link + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// ProductOrderMessage is the message sent when a local customer orders a
// single product from its page. The quantity is mentioned only above 1.
func ProductOrderMessage(productName string, quantity int, code valueobject.PostalCode) string {
	qtyText := ""
	if quantity > 1 {
		qtyText = fmt.Sprintf(" (%d units)", quantity)
	}
	return fmt.Sprintf("Hello, I'd like to order the product \"%s\"%s. (Postal code: %s)", productName, qtyText, code.Masked())
}

// OrderMessage summarizes a submitted order for the seller
func OrderMessage(order *trade.CustomerOrder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello! I'd like to confirm my order %s.\n\n", order.OrderNumber)
	b.WriteString("Items:\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %dx %s (%s)\n", item.Quantity, item.Name, valueobject.NewMoneyBRL(item.Amount()).Display())
	}
	fmt.Fprintf(&b, "\nProducts: %s\n", order.GetTotalProductsMoney().Display())
	fmt.Fprintf(&b, "Shipping (%s): %s\n", order.ShippingMethod, order.GetShippingCostMoney().Display())
	fmt.Fprintf(&b, "Total: %s\n\n", order.GetTotalGeneralMoney().Display())
	fmt.Fprintf(&b, "Name: %s\n", order.CustomerName)
	if !order.CustomerPostalCode.IsEmpty() {
		fmt.Fprintf(&b, "Postal code: %s, number %s", order.CustomerPostalCode.Masked(), order.HouseNumber)
	} else {
		fmt.Fprintf(&b, "House number: %s", order.HouseNumber)
	}
	return b.String()
}
