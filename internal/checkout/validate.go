package checkout

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/domain"
)

// ValidationError carries the short user-facing message for a failed
// shipping or payment check. It is the only error text the UI ever shows;
// transport errors never reach the user raw.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationFailed(message string) *ValidationError {
	return &ValidationError{Message: message}
}

var (
	digitsOnly   = regexp.MustCompile(`^\d+$`)
	expiryFormat = regexp.MustCompile(`^(\d{2})/(\d{2})$`)
	cvvFormat    = regexp.MustCompile(`^\d{3}$`)
)

// validateShipping requires every address field to be present.
func validateShipping(s domain.Shipping) *ValidationError {
	if strings.TrimSpace(s.Name) == "" ||
		strings.TrimSpace(s.Phone) == "" ||
		strings.TrimSpace(s.Address) == "" ||
		strings.TrimSpace(s.City) == "" ||
		strings.TrimSpace(s.Region) == "" {
		return validationFailed("complete all shipping details")
	}
	return nil
}

// CardDetails is the raw card input. Only the last four digits of Number
// survive past validation; Number and CVV are never persisted.
type CardDetails struct {
	Number string
	Expiry string // MM/YY
	CVV    string
}

// validateCard checks number, expiry and CVV locally. The number must be
// digits only (formatting spaces stripped) and at least 12 digits; the
// expiry must be MM/YY with a real month that has not already elapsed (an
// expiry of exactly the current month is still valid); the CVV must be
// three digits.
func validateCard(card CardDetails, now time.Time) *ValidationError {
	number := strings.ReplaceAll(card.Number, " ", "")
	if number == "" || card.Expiry == "" || card.CVV == "" {
		return validationFailed("complete card details")
	}
	if !digitsOnly.MatchString(number) || len(number) < 12 {
		return validationFailed("enter a valid card number")
	}

	match := expiryFormat.FindStringSubmatch(card.Expiry)
	if match == nil {
		return validationFailed("enter expiry as MM/YY")
	}
	month, _ := strconv.Atoi(match[1])
	year, _ := strconv.Atoi(match[2])
	if month < 1 || month > 12 {
		return validationFailed("enter a valid expiry month")
	}
	year += 2000
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return validationFailed("card has expired")
	}

	if !cvvFormat.MatchString(card.CVV) {
		return validationFailed("enter the 3-digit CVV")
	}
	return nil
}

func cardLast4(number string) string {
	number = strings.ReplaceAll(number, " ", "")
	if len(number) < 4 {
		return number
	}
	return number[len(number)-4:]
}
