package handlers

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation limits for customer and order fields.
const (
	maxNameLen    = 200
	maxEmailLen   = 320
	maxPhoneLen   = 50
	maxNotesLen   = 10_000
	maxAddressLen = 1_000
	maxSearchLen  = 200
	maxOrderItems = 1_000
)

// validateCustomer checks customer form inputs and returns the first
// error found.
func validateCustomer(name string, email, phone *string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	if email != nil {
		e := strings.TrimSpace(*email)
		if e != "" && (len(e) > maxEmailLen || !strings.Contains(e, "@")) {
			return "Email address is not valid."
		}
	}
	if phone != nil && utf8.RuneCountInString(*phone) > maxPhoneLen {
		return "Phone number is too long (max 50 characters)."
	}
	return ""
}

// validateNotes checks optional free-text fields shared by customers
// and orders.
func validateNotes(notes *string) string {
	if notes != nil && utf8.RuneCountInString(*notes) > maxNotesLen {
		return "Notes are too long (max 10,000 characters)."
	}
	return ""
}

// validatePrice checks an optional price edit.
func validatePrice(price *decimal.Decimal) string {
	if price != nil && price.IsNegative() {
		return "Price must not be negative."
	}
	return ""
}

// validateOrder checks order submission fields beyond the item list,
// which the order service validates itself.
func validateOrder(itemCount int, notes, address *string) string {
	if itemCount > maxOrderItems {
		return "Too many items in one order (max 1,000)."
	}
	if msg := validateNotes(notes); msg != "" {
		return msg
	}
	if address != nil && utf8.RuneCountInString(*address) > maxAddressLen {
		return "Shipping address is too long (max 1,000 characters)."
	}
	return ""
}
