package valueobject

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode"
)

// PostalCodeLength is the number of digits in a Brazilian postal code (CEP)
const PostalCodeLength = 8

// ErrInvalidPostalCode is returned when input does not contain exactly eight digits
var ErrInvalidPostalCode = errors.New("postal code must contain exactly 8 digits")

// PostalCode is a Brazilian postal code held as its 8 raw digits.
// It is immutable; the zero value is an empty (absent) code.
type PostalCode struct {
	digits string
}

// NewPostalCode strips every non-digit from input and requires exactly eight
// digits to remain. "12080-000", "12080000" and " 12.080 000 " are the same code.
func NewPostalCode(input string) (PostalCode, error) {
	digits := DigitsOnly(input)
	if len(digits) != PostalCodeLength {
		return PostalCode{}, ErrInvalidPostalCode
	}
	return PostalCode{digits: digits}, nil
}

// MustNewPostalCode creates a PostalCode, panics on error
func MustNewPostalCode(input string) PostalCode {
	pc, err := NewPostalCode(input)
	if err != nil {
		panic(err)
	}
	return pc
}

// DigitsOnly removes every non-digit rune from s
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// MaskPostalCode formats partial user input the way it is typed into a
// postal-code field: digits only, at most eight, with a hyphen after the
// fifth digit once there is a sixth.
func MaskPostalCode(input string) string {
	digits := DigitsOnly(input)
	if len(digits) > PostalCodeLength {
		digits = digits[:PostalCodeLength]
	}
	if len(digits) <= 5 {
		return digits
	}
	return digits[:5] + "-" + digits[5:]
}

// IsValidPostalCode reports whether input holds exactly eight digits once
// separators are stripped
func IsValidPostalCode(input string) bool {
	_, err := NewPostalCode(input)
	return err == nil
}

// Digits returns the 8 raw digits
func (p PostalCode) Digits() string {
	return p.digits
}

// Masked returns the display form NNNNN-NNN
func (p PostalCode) Masked() string {
	if p.IsEmpty() {
		return ""
	}
	return p.digits[:5] + "-" + p.digits[5:]
}

// IsEmpty returns true for the zero value
func (p PostalCode) IsEmpty() bool {
	return p.digits == ""
}

// Equals returns true if both codes hold the same digits
func (p PostalCode) Equals(other PostalCode) bool {
	return p.digits == other.digits
}

// String returns the masked form
func (p PostalCode) String() string {
	return p.Masked()
}

// MarshalJSON implements json.Marshaler, emitting the raw digits
func (p PostalCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.digits)
}

// UnmarshalJSON implements json.Unmarshaler. Masked and raw forms are accepted.
func (p *PostalCode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimFunc(s, unicode.IsSpace) == "" {
		*p = PostalCode{}
		return nil
	}
	pc, err := NewPostalCode(s)
	if err != nil {
		return err
	}
	*p = pc
	return nil
}
