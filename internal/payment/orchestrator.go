// Package payment drives the staged client-side payment flow.
//
// SIMULATION BOUNDARY: this orchestrator never performs real financial
// operations. Verification is simulated against fixed test credentials
// (OTP 1234, PIN 1234) and the transaction id is generated client-side.
// A production integration must be server-driven with an idempotency
// key; constructing the orchestrator with the simulator disabled fails
// for exactly that reason.
package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/Mushfiqur07/roadeside-sub002/internal/api"
	"github.com/Mushfiqur07/roadeside-sub002/internal/config"
	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
	"github.com/Mushfiqur07/roadeside-sub002/pkg/logger"
)

type Step string

const (
	StepMethod     Step = "method"
	StepDetails    Step = "details"
	StepProcessing Step = "processing"
	StepSuccess    Step = "success"
)

// Fixed simulator credentials, documented at the system boundary.
const (
	SimulatedOTP = "1234"
	SimulatedPIN = "1234"
)

var (
	ErrSimulatorDisabled = errors.New("payment simulator disabled: payments must be server-driven")
	ErrBusy              = errors.New("a payment is already processing")
	ErrWrongStep         = errors.New("operation not valid in current step")
)

// Details carries the method-specific inputs from the details step.
// Preserved verbatim when verification fails so the user can correct
// a single field.
type Details struct {
	PhoneNumber    string
	OTP            string
	PIN            string
	CardNumber     string
	CardholderName string
	ExpiryDate     string
	CVV            string
}

// Bounds optionally constrains the payable amount.
type Bounds struct {
	Min float64
	Max float64
}

// Orchestrator walks one payment through method -> details ->
// processing -> success. At most one payment creation is in flight per
// instance; Close is refused while processing.
type Orchestrator struct {
	payments *api.PaymentService
	cfg      *config.PaymentConfig
	log      *logger.Logger

	// onSuccess receives the created payment id; the invoice download
	// uses it. No global handoff.
	onSuccess func(paymentID string)

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu         sync.Mutex
	step       Step
	method     models.PaymentMethod
	requestID  string
	amount     float64
	bounds     *Bounds
	details    Details
	fieldErr   FieldErrors
	processing bool
	paymentID  string
}

func NewOrchestrator(payments *api.PaymentService, cfg *config.PaymentConfig, onSuccess func(paymentID string), log *logger.Logger) (*Orchestrator, error) {
	if !cfg.SimulatorEnabled {
		return nil, ErrSimulatorDisabled
	}
	return &Orchestrator{
		payments:  payments,
		cfg:       cfg,
		onSuccess: onSuccess,
		log:       log.WithField("component", "payment"),
		now:       time.Now,
		sleep:     sleepCtx,
		step:      StepMethod,
	}, nil
}

// Start arms the orchestrator for one request. The amount must be a
// positive finite number within the caller's bounds.
func (o *Orchestrator) Start(requestID string, amount float64, bounds *Bounds) error {
	if requestID == "" {
		return fmt.Errorf("request id required")
	}
	if amount <= 0 || math.IsInf(amount, 0) || math.IsNaN(amount) {
		return fmt.Errorf("amount must be a positive number")
	}
	if bounds != nil && (amount < bounds.Min || amount > bounds.Max) {
		return fmt.Errorf("amount %.2f outside allowed range [%.2f, %.2f]", amount, bounds.Min, bounds.Max)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.processing {
		return ErrBusy
	}

	o.requestID = requestID
	o.amount = amount
	o.bounds = bounds
	o.method = ""
	o.details = Details{}
	o.fieldErr = nil
	o.paymentID = ""
	o.step = StepMethod
	return nil
}

func (o *Orchestrator) SelectMethod(method models.PaymentMethod) error {
	if !method.Valid() {
		return fmt.Errorf("unknown payment method %q", method)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.step != StepMethod && o.step != StepDetails {
		return ErrWrongStep
	}

	o.method = method
	o.step = StepDetails
	return nil
}

// Submit validates the details, runs the simulated verification and
// creates the payment record. On verification or transport failure the
// flow returns to the details step with input preserved.
func (o *Orchestrator) Submit(ctx context.Context, details Details) (*models.Payment, error) {
	o.mu.Lock()
	if o.step != StepDetails {
		o.mu.Unlock()
		return nil, ErrWrongStep
	}
	if o.processing {
		o.mu.Unlock()
		return nil, ErrBusy
	}

	method := o.method
	o.details = details

	if errs := validateDetails(method, details); len(errs) > 0 {
		o.fieldErr = errs
		o.mu.Unlock()
		return nil, errs
	}

	o.fieldErr = nil
	o.processing = true
	o.step = StepProcessing
	o.mu.Unlock()

	payment, err := o.process(ctx, method, details)

	o.mu.Lock()
	o.processing = false
	if err != nil {
		o.step = StepDetails
		if fieldErrs, ok := err.(FieldErrors); ok {
			o.fieldErr = fieldErrs
		}
	} else {
		o.step = StepSuccess
		o.paymentID = payment.ID
	}
	o.mu.Unlock()

	if err == nil && o.onSuccess != nil {
		o.onSuccess(payment.ID)
	}
	return payment, err
}

func (o *Orchestrator) process(ctx context.Context, method models.PaymentMethod, details Details) (*models.Payment, error) {
	if err := o.sleep(ctx, o.cfg.ProcessingDelay); err != nil {
		return nil, err
	}

	// Cash skips verification entirely.
	if method.Wallet() {
		if details.OTP != SimulatedOTP {
			return nil, FieldErrors{"OTP": "Incorrect OTP"}
		}
		if details.PIN != SimulatedPIN {
			return nil, FieldErrors{"PIN": "Incorrect PIN"}
		}
	}

	if err := o.sleep(ctx, o.cfg.SettlementDelay); err != nil {
		return nil, err
	}

	transactionID := o.transactionID(method)
	payment, err := o.payments.Create(ctx, &api.CreatePaymentInput{
		RequestID:      o.requestID,
		Amount:         o.amount,
		Method:         method,
		TransactionID:  transactionID,
		CommissionRate: o.cfg.CommissionRate,
	})
	if err != nil {
		return nil, err
	}

	o.log.LogPaymentEvent(payment.ID, "created", o.amount, string(method))
	return payment, nil
}

// transactionID is <METHOD>-<epochMillis>; cash uses the CASH- prefix.
func (o *Orchestrator) transactionID(method models.PaymentMethod) string {
	return fmt.Sprintf("%s-%d", strings.ToUpper(string(method)), o.now().UnixMilli())
}

// Close dismisses the flow. During processing it is a no-op returning
// false so the server and UI cannot disagree about a created payment.
func (o *Orchestrator) Close() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.processing {
		return false
	}
	o.step = StepMethod
	o.method = ""
	o.details = Details{}
	o.fieldErr = nil
	return true
}

func (o *Orchestrator) Step() Step {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

func (o *Orchestrator) Method() models.PaymentMethod {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.method
}

// Details returns the preserved inputs, still populated after a failed
// verification.
func (o *Orchestrator) Details() Details {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.details
}

func (o *Orchestrator) FieldErrors() FieldErrors {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fieldErr
}

// PaymentID is the created payment's id once the flow reached success.
func (o *Orchestrator) PaymentID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.paymentID
}

// Invoice fetches the PDF for the created payment.
func (o *Orchestrator) Invoice(ctx context.Context) ([]byte, string, error) {
	o.mu.Lock()
	paymentID := o.paymentID
	o.mu.Unlock()

	if paymentID == "" {
		return nil, "", ErrWrongStep
	}
	return o.payments.InvoicePDF(ctx, paymentID)
}

func validateDetails(method models.PaymentMethod, details Details) FieldErrors {
	switch {
	case method.Wallet():
		input := walletDetails{PhoneNumber: details.PhoneNumber, OTP: details.OTP, PIN: details.PIN}
		if err := validate.Struct(input); err != nil {
			return toFieldErrors(err)
		}
	case method == models.PaymentMethodCard:
		input := cardDetails{
			CardNumber:     StripCardNumber(details.CardNumber),
			CardholderName: details.CardholderName,
			ExpiryDate:     details.ExpiryDate,
			CVV:            details.CVV,
		}
		if err := validate.Struct(input); err != nil {
			return toFieldErrors(err)
		}
	case method == models.PaymentMethodCash:
		// no inputs
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
