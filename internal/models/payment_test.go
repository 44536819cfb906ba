package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyCommission(t *testing.T) {
	p := &Payment{Amount: 500, CommissionRate: 0.10}
	p.ApplyCommission()
	assert.Equal(t, 50.0, p.CommissionAmount)
	assert.Equal(t, 450.0, p.NetToMechanic)
	assert.True(t, p.SplitConsistent())

	// rounding to the nearest paisa
	p = &Payment{Amount: 333.33, CommissionRate: 0.10}
	p.ApplyCommission()
	assert.Equal(t, 33.33, p.CommissionAmount)
	assert.Equal(t, 300.0, p.NetToMechanic)
	assert.True(t, p.SplitConsistent())
}

func TestSplitConsistentTolerance(t *testing.T) {
	p := &Payment{Amount: 100, CommissionAmount: 10, NetToMechanic: 90.009}
	assert.True(t, p.SplitConsistent(), "one-paisa drift is tolerated")

	p = &Payment{Amount: 100, CommissionAmount: 10, NetToMechanic: 91}
	assert.False(t, p.SplitConsistent())
}

func TestPaymentMethodClasses(t *testing.T) {
	for _, m := range []PaymentMethod{PaymentMethodBkash, PaymentMethodNagad, PaymentMethodRocket} {
		assert.True(t, m.Valid())
		assert.True(t, m.Wallet())
	}
	assert.True(t, PaymentMethodCard.Valid())
	assert.False(t, PaymentMethodCard.Wallet())
	assert.True(t, PaymentMethodCash.Valid())
	assert.False(t, PaymentMethodCash.Wallet())
	assert.False(t, PaymentMethod("paypal").Valid())
}
