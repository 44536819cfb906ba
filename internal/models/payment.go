package models

import (
	"math"
	"time"
)

type PaymentStatus string
type PaymentMethod string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"

	PaymentMethodBkash  PaymentMethod = "bkash"
	PaymentMethodNagad  PaymentMethod = "nagad"
	PaymentMethodRocket PaymentMethod = "rocket"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodCash   PaymentMethod = "cash"
)

type Payment struct {
	ID               string        `json:"id"`
	RequestID        string        `json:"request_id"`
	UserID           string        `json:"user_id"`
	MechanicID       string        `json:"mechanic_id"`
	Amount           float64       `json:"amount"`
	Method           PaymentMethod `json:"method"`
	TransactionID    string        `json:"transaction_id"`
	CommissionRate   float64       `json:"commission_rate"`
	CommissionAmount float64       `json:"commission_amount"`
	NetToMechanic    float64       `json:"net_to_mechanic"`
	Status           PaymentStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodBkash, PaymentMethodNagad, PaymentMethodRocket,
		PaymentMethodCard, PaymentMethodCash:
		return true
	}
	return false
}

// Wallet reports whether the method is a mobile wallet requiring OTP
// and PIN verification.
func (m PaymentMethod) Wallet() bool {
	switch m {
	case PaymentMethodBkash, PaymentMethodNagad, PaymentMethodRocket:
		return true
	}
	return false
}

// SplitConsistent checks commission + net against the amount, allowing
// a one-paisa rounding difference.
func (p *Payment) SplitConsistent() bool {
	return math.Abs(p.CommissionAmount+p.NetToMechanic-p.Amount) <= 0.01
}

// ApplyCommission fills the derived fields from Amount and
// CommissionRate.
func (p *Payment) ApplyCommission() {
	p.CommissionAmount = math.Round(p.Amount*p.CommissionRate*100) / 100
	p.NetToMechanic = math.Round((p.Amount-p.CommissionAmount)*100) / 100
}
