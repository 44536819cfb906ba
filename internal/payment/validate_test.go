package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpiryValid(t *testing.T) {
	now := time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		expiry string
		want   bool
	}{
		{"08/26", true},  // current month
		{"09/26", true},  // later this year
		{"01/27", true},  // next year
		{"12/99", true},  // far future
		{"07/26", false}, // last month
		{"12/25", false}, // last year
		{"13/26", false}, // no such month
		{"00/27", false},
		{"0826", false},
		{"8/26", false},
		{"08-26", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpiryValid(tt.expiry, now), "expiry %q", tt.expiry)
	}
}

func TestStripCardNumber(t *testing.T) {
	assert.Equal(t, "4111111111111111", StripCardNumber("4111 1111 1111 1111"))
	assert.Equal(t, "4111111111111111", StripCardNumber("4111-1111-1111-1111"))
	assert.Equal(t, "4111111111111111", StripCardNumber("4111111111111111"))
	assert.Equal(t, "", StripCardNumber("abc"))
}

func TestFormatCardNumber(t *testing.T) {
	assert.Equal(t, "4111 1111 1111 1111", FormatCardNumber("4111111111111111"))
	assert.Equal(t, "4111 1", FormatCardNumber("41111"))
	assert.Equal(t, "4111", FormatCardNumber("4111"))
	// 19-digit numbers group into 4+4+4+4+3
	assert.Equal(t, "6221 2345 6789 0123 456", FormatCardNumber("6221234567890123456"))
}

func TestWalletDetailsValidation(t *testing.T) {
	errs := validateDetails("bkash", Details{PhoneNumber: "01712345678", OTP: "1234", PIN: "1234"})
	assert.Empty(t, errs)

	errs = validateDetails("bkash", Details{PhoneNumber: "0171234567", OTP: "1234", PIN: "1234"})
	assert.Contains(t, errs, "PhoneNumber")

	errs = validateDetails("bkash", Details{PhoneNumber: "01712345678", OTP: "12a4", PIN: "1234"})
	assert.Contains(t, errs, "OTP")

	errs = validateDetails("bkash", Details{})
	assert.Contains(t, errs, "PhoneNumber")
	assert.Contains(t, errs, "OTP")
	assert.Contains(t, errs, "PIN")
}

func TestCardDetailsValidation(t *testing.T) {
	valid := Details{
		CardNumber:     "4111 1111 1111 1111",
		CardholderName: "Karim Mia",
		ExpiryDate:     "12/99",
		CVV:            "123",
	}
	assert.Empty(t, validateDetails("card", valid))

	short := valid
	short.CardNumber = "4111 1111"
	assert.Contains(t, validateDetails("card", short), "CardNumber")

	badCVV := valid
	badCVV.CVV = "12"
	assert.Contains(t, validateDetails("card", badCVV), "CVV")

	fourDigitCVV := valid
	fourDigitCVV.CVV = "1234"
	assert.Empty(t, validateDetails("card", fourDigitCVV))
}

func TestCashNeedsNoDetails(t *testing.T) {
	assert.Empty(t, validateDetails("cash", Details{}))
}

func TestFieldErrorsMessage(t *testing.T) {
	errs := FieldErrors{"OTP": "Incorrect OTP"}
	assert.Equal(t, "OTP: Incorrect OTP", errs.Error())
}
