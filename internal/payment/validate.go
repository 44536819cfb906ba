package payment

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	bdPhonePattern = regexp.MustCompile(`^01\d{9}$`)
	digitsPattern  = regexp.MustCompile(`^\d+$`)
	expiryPattern  = regexp.MustCompile(`^(\d{2})/(\d{2})$`)
	nonDigits      = regexp.MustCompile(`\D`)
)

func init() {
	validate = validator.New()

	validate.RegisterValidation("bd_phone", validateBDPhone)
	validate.RegisterValidation("otp_code", validateFourDigits)
	validate.RegisterValidation("pin_code", validateFourDigits)
	validate.RegisterValidation("card_number", validateCardNumber)
	validate.RegisterValidation("card_expiry", validateCardExpiry)
	validate.RegisterValidation("cvv", validateCVV)
}

func validateBDPhone(fl validator.FieldLevel) bool {
	return bdPhonePattern.MatchString(fl.Field().String())
}

func validateFourDigits(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return len(value) == 4 && digitsPattern.MatchString(value)
}

func validateCardNumber(fl validator.FieldLevel) bool {
	digits := StripCardNumber(fl.Field().String())
	return len(digits) >= 13 && len(digits) <= 19
}

func validateCardExpiry(fl validator.FieldLevel) bool {
	return ExpiryValid(fl.Field().String(), time.Now())
}

func validateCVV(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return (len(value) == 3 || len(value) == 4) && digitsPattern.MatchString(value)
}

// StripCardNumber drops every non-digit before validation, so
// display-formatted numbers ("4111 1111 ...") validate unchanged.
func StripCardNumber(number string) string {
	return nonDigits.ReplaceAllString(number, "")
}

// FormatCardNumber groups the digits in fours for display.
func FormatCardNumber(number string) string {
	digits := StripCardNumber(number)
	var groups []string
	for len(digits) > 4 {
		groups = append(groups, digits[:4])
		digits = digits[4:]
	}
	groups = append(groups, digits)
	return strings.Join(groups, " ")
}

// ExpiryValid checks MM/YY: month in [01,12] and not in the past
// relative to now.
func ExpiryValid(expiry string, now time.Time) bool {
	match := expiryPattern.FindStringSubmatch(expiry)
	if match == nil {
		return false
	}

	month := int(match[1][0]-'0')*10 + int(match[1][1]-'0')
	year := 2000 + int(match[2][0]-'0')*10 + int(match[2][1]-'0')
	if month < 1 || month > 12 {
		return false
	}

	if year < now.Year() {
		return false
	}
	if year == now.Year() && month < int(now.Month()) {
		return false
	}
	return true
}

// FieldErrors carries inline per-field validation messages back to the
// details step.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

var fieldMessages = map[string]string{
	"PhoneNumber":    "Enter a valid phone number (01XXXXXXXXX)",
	"OTP":            "OTP must be 4 digits",
	"PIN":            "PIN must be 4 digits",
	"CardNumber":     "Card number must be 13-19 digits",
	"CardholderName": "Cardholder name is required",
	"ExpiryDate":     "Expiry must be a future MM/YY",
	"CVV":            "CVV must be 3 or 4 digits",
}

func toFieldErrors(err error) FieldErrors {
	errors := make(FieldErrors)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			message, ok := fieldMessages[verr.Field()]
			if !ok {
				message = "Invalid value"
			}
			errors[verr.Field()] = message
		}
		return errors
	}
	errors["form"] = err.Error()
	return errors
}

type walletDetails struct {
	PhoneNumber string `validate:"required,bd_phone"`
	OTP         string `validate:"required,otp_code"`
	PIN         string `validate:"required,pin_code"`
}

type cardDetails struct {
	CardNumber     string `validate:"required,card_number"`
	CardholderName string `validate:"required,min=2,max=100"`
	ExpiryDate     string `validate:"required,card_expiry"`
	CVV            string `validate:"required,cvv"`
}
