package valueobject

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Address is a value object representing a Brazilian delivery address.
// Street, district, city and state come from a postal-code lookup; the house
// number is supplied by the customer.
// It is immutable - all operations return new Address instances
type Address struct {
	street     string
	number     string
	district   string
	city       string
	state      string
	postalCode PostalCode
	complement string
}

// AddressOption is a functional option for configuring Address
type AddressOption func(*Address)

// WithNumber sets the house or unit number
func WithNumber(number string) AddressOption {
	return func(a *Address) {
		a.number = strings.TrimSpace(number)
	}
}

// WithDistrict sets the district (bairro)
func WithDistrict(district string) AddressOption {
	return func(a *Address) {
		a.district = strings.TrimSpace(district)
	}
}

// WithComplement sets the address complement (apartment, block)
func WithComplement(complement string) AddressOption {
	return func(a *Address) {
		a.complement = strings.TrimSpace(complement)
	}
}

// NewAddress creates a new Address. City and a valid postal code are required;
// a lookup that only resolves the city (single-CEP towns) leaves street empty.
func NewAddress(postalCode PostalCode, street, city, state string, opts ...AddressOption) (Address, error) {
	city = strings.TrimSpace(city)
	state = strings.ToUpper(strings.TrimSpace(state))
	street = strings.TrimSpace(street)

	if postalCode.IsEmpty() {
		return Address{}, ErrInvalidPostalCode
	}
	if city == "" {
		return Address{}, fmt.Errorf("city cannot be empty")
	}
	if len(city) > 100 {
		return Address{}, fmt.Errorf("city cannot exceed 100 characters")
	}
	if state != "" && len(state) != 2 {
		return Address{}, fmt.Errorf("state must be a two-letter code")
	}
	if len(street) > 200 {
		return Address{}, fmt.Errorf("street cannot exceed 200 characters")
	}

	addr := Address{
		street:     street,
		city:       city,
		state:      state,
		postalCode: postalCode,
	}
	for _, opt := range opts {
		opt(&addr)
	}
	return addr, nil
}

// EmptyAddress returns an empty address (for optional address fields)
func EmptyAddress() Address {
	return Address{}
}

// Street returns the street (logradouro)
func (a Address) Street() string {
	return a.street
}

// Number returns the house or unit number
func (a Address) Number() string {
	return a.number
}

// District returns the district (bairro)
func (a Address) District() string {
	return a.district
}

// City returns the city (localidade)
func (a Address) City() string {
	return a.city
}

// State returns the two-letter state code (UF)
func (a Address) State() string {
	return a.state
}

// PostalCode returns the postal code
func (a Address) PostalCode() PostalCode {
	return a.postalCode
}

// Complement returns the address complement
func (a Address) Complement() string {
	return a.complement
}

// IsEmpty returns true if the address is empty
func (a Address) IsEmpty() bool {
	return a.city == "" && a.postalCode.IsEmpty()
}

// WithHouseNumber returns a new Address with the house number set
func (a Address) WithHouseNumber(number string) Address {
	a.number = strings.TrimSpace(number)
	return a
}

// Locality returns "City - UF", or just the city when the state is unknown
func (a Address) Locality() string {
	if a.state == "" {
		return a.city
	}
	return a.city + " - " + a.state
}

// FullAddress returns the complete formatted address string
// Format: Street, Number - District, City - UF, NNNNN-NNN
func (a Address) FullAddress() string {
	if a.IsEmpty() {
		return ""
	}

	parts := make([]string, 0, 4)
	line := a.street
	if a.number != "" {
		if line != "" {
			line += ", "
		}
		line += a.number
	}
	if a.complement != "" {
		line += " " + a.complement
	}
	if a.district != "" {
		if line != "" {
			line += " - "
		}
		line += a.district
	}
	if line != "" {
		parts = append(parts, line)
	}
	parts = append(parts, a.Locality())
	if !a.postalCode.IsEmpty() {
		parts = append(parts, a.postalCode.Masked())
	}
	return strings.Join(parts, ", ")
}

// String returns a string representation of the address
func (a Address) String() string {
	return a.FullAddress()
}

// Equals returns true if both addresses are equal
func (a Address) Equals(other Address) bool {
	return a.street == other.street &&
		a.number == other.number &&
		a.district == other.district &&
		a.city == other.city &&
		a.state == other.state &&
		a.complement == other.complement &&
		a.postalCode.Equals(other.postalCode)
}

// SameCity returns true if both addresses are in the same city
func (a Address) SameCity(other Address) bool {
	return a.state == other.state && strings.EqualFold(a.city, other.city)
}

// addressJSON is used for JSON marshaling/unmarshaling
type addressJSON struct {
	PostalCode string `json:"postal_code"`
	Street     string `json:"street"`
	Number     string `json:"number,omitempty"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{
		PostalCode: a.postalCode.Digits(),
		Street:     a.street,
		Number:     a.number,
		Complement: a.complement,
		District:   a.district,
		City:       a.city,
		State:      a.state,
	})
}

// UnmarshalJSON implements json.Unmarshaler, applying the same validation as NewAddress
func (a *Address) UnmarshalJSON(data []byte) error {
	var v addressJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	// Allow empty addresses from JSON
	if v.PostalCode == "" && v.City == "" {
		*a = EmptyAddress()
		return nil
	}

	pc, err := NewPostalCode(v.PostalCode)
	if err != nil {
		return err
	}
	addr, err := NewAddress(pc, v.Street, v.City, v.State,
		WithNumber(v.Number), WithDistrict(v.District), WithComplement(v.Complement))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
