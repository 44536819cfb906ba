package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mushfiqur07/roadeside-sub002/internal/api"
	"github.com/Mushfiqur07/roadeside-sub002/internal/config"
	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
	"github.com/Mushfiqur07/roadeside-sub002/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func testConfig() *config.PaymentConfig {
	return &config.PaymentConfig{
		CommissionRate:   0.10,
		SimulatorEnabled: true,
		// no artificial delays in tests
		ProcessingDelay: 0,
		SettlementDelay: 0,
	}
}

// paymentBackend records created payments and echoes them back with the
// commission split applied.
type paymentBackend struct {
	calls  atomic.Int64
	mu     sync.Mutex
	inputs []api.CreatePaymentInput
}

func (b *paymentBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/payment" {
			http.NotFound(w, r)
			return
		}
		b.calls.Add(1)

		var input api.CreatePaymentInput
		json.NewDecoder(r.Body).Decode(&input)
		b.mu.Lock()
		b.inputs = append(b.inputs, input)
		b.mu.Unlock()

		payment := models.Payment{
			ID:             "pay-1",
			RequestID:      input.RequestID,
			Amount:         input.Amount,
			Method:         input.Method,
			TransactionID:  input.TransactionID,
			CommissionRate: input.CommissionRate,
			Status:         models.PaymentStatusCompleted,
			CreatedAt:      time.Now(),
		}
		payment.ApplyCommission()

		data, _ := json.Marshal(payment)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.Envelope{Success: true, Data: data})
	})
}

func (b *paymentBackend) lastInput() api.CreatePaymentInput {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inputs[len(b.inputs)-1]
}

func newTestOrchestrator(t *testing.T, backend *paymentBackend, onSuccess func(string)) *Orchestrator {
	t.Helper()
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	client := api.NewClient(&config.APIConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, nil, testLogger(t))
	o, err := NewOrchestrator(client.Payments, testConfig(), onSuccess, testLogger(t))
	require.NoError(t, err)
	return o
}

func validWallet() Details {
	return Details{PhoneNumber: "01712345678", OTP: SimulatedOTP, PIN: SimulatedPIN}
}

func TestWalletPaymentHappyPath(t *testing.T) {
	backend := &paymentBackend{}
	var successID string
	o := newTestOrchestrator(t, backend, func(id string) { successID = id })
	o.now = func() time.Time { return time.UnixMilli(1756100000000) }

	require.NoError(t, o.Start("req-1", 500, nil))
	require.NoError(t, o.SelectMethod(models.PaymentMethodBkash))

	created, err := o.Submit(context.Background(), validWallet())
	require.NoError(t, err)

	assert.Equal(t, "BKASH-1756100000000", created.TransactionID)
	assert.Regexp(t, regexp.MustCompile(`^BKASH-\d+$`), created.TransactionID)
	assert.Equal(t, 500.0, created.Amount)
	assert.Equal(t, 50.0, created.CommissionAmount)
	assert.Equal(t, 450.0, created.NetToMechanic)
	assert.True(t, created.SplitConsistent())

	assert.Equal(t, StepSuccess, o.Step())
	assert.Equal(t, "pay-1", o.PaymentID())
	assert.Equal(t, "pay-1", successID)

	input := backend.lastInput()
	assert.Equal(t, "req-1", input.RequestID)
	assert.Equal(t, 0.10, input.CommissionRate)
}

func TestWrongOTPFailsBeforeAnyRequest(t *testing.T) {
	backend := &paymentBackend{}
	o := newTestOrchestrator(t, backend, nil)

	require.NoError(t, o.Start("req-1", 500, nil))
	require.NoError(t, o.SelectMethod(models.PaymentMethodNagad))

	details := validWallet()
	details.OTP = "9999"

	_, err := o.Submit(context.Background(), details)
	require.Error(t, err)

	var fieldErrs FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "Incorrect OTP", fieldErrs["OTP"])

	assert.Equal(t, int64(0), backend.calls.Load(), "no payment record may be created on failed verification")
	assert.Equal(t, StepDetails, o.Step())
	// inputs preserved for correction
	assert.Equal(t, "9999", o.Details().OTP)
	assert.Equal(t, "01712345678", o.Details().PhoneNumber)
}

func TestWrongPINFailsBeforeAnyRequest(t *testing.T) {
	backend := &paymentBackend{}
	o := newTestOrchestrator(t, backend, nil)

	require.NoError(t, o.Start("req-1", 500, nil))
	require.NoError(t, o.SelectMethod(models.PaymentMethodRocket))

	details := validWallet()
	details.PIN = "0000"

	_, err := o.Submit(context.Background(), details)
	require.Error(t, err)

	var fieldErrs FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "Incorrect PIN", fieldErrs["PIN"])
	assert.Equal(t, int64(0), backend.calls.Load())
}

func TestCashSkipsVerification(t *testing.T) {
	backend := &paymentBackend{}
	o := newTestOrchestrator(t, backend, nil)

	require.NoError(t, o.Start("req-1", 300, nil))
	require.NoError(t, o.SelectMethod(models.PaymentMethodCash))

	created, err := o.Submit(context.Background(), Details{})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^CASH-\d+$`), created.TransactionID)
	assert.Equal(t, int64(1), backend.calls.Load())
}

func TestInvalidDetailsStayOnDetailsStep(t *testing.T) {
	backend := &paymentBackend{}
	o := newTestOrchestrator(t, backend, nil)

	require.NoError(t, o.Start("req-1", 500, nil))
	require.NoError(t, o.SelectMethod(models.PaymentMethodBkash))

	_, err := o.Submit(context.Background(), Details{PhoneNumber: "12345", OTP: "1234", PIN: "1234"})
	require.Error(t, err)

	var fieldErrs FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "PhoneNumber")
	assert.Equal(t, StepDetails, o.Step())
	assert.Equal(t, int64(0), backend.calls.Load())
	assert.Equal(t, fieldErrs, o.FieldErrors())
}

func TestCardValidation(t *testing.T) {
	backend := &paymentBackend{}
	o := newTestOrchestrator(t, backend, nil)

	require.NoError(t, o.Start("req-1", 500, nil))
	require.NoError(t, o.SelectMethod(models.PaymentMethodCard))

	_, err := o.Submit(context.Background(), Details{
		CardNumber:     "4111 1111 1111 1111",
		CardholderName: "Rahim Uddin",
		ExpiryDate:     "01/20", // long past
		CVV:            "123",
	})
	require.Error(t, err)

	var fieldErrs FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "ExpiryDate")
	assert.NotContains(t, fieldErrs, "CardNumber", "formatted number must strip to valid digits")

	created, err := o.Submit(context.Background(), Details{
		CardNumber:     "4111 1111 1111 1111",
		CardholderName: "Rahim Uddin",
		ExpiryDate:     "12/99",
		CVV:            "123",
	})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^CARD-\d+$`), created.TransactionID)
}

func TestStartRejectsBadAmounts(t *testing.T) {
	o := newTestOrchestrator(t, &paymentBackend{}, nil)

	assert.Error(t, o.Start("req-1", 0, nil))
	assert.Error(t, o.Start("req-1", -10, nil))
	assert.Error(t, o.Start("", 100, nil))
	assert.Error(t, o.Start("req-1", 100, &Bounds{Min: 200, Max: 1000}))
	assert.Error(t, o.Start("req-1", 2000, &Bounds{Min: 200, Max: 1000}))
	assert.NoError(t, o.Start("req-1", 500, &Bounds{Min: 200, Max: 1000}))
}

func TestSubmitRequiresDetailsStep(t *testing.T) {
	o := newTestOrchestrator(t, &paymentBackend{}, nil)

	require.NoError(t, o.Start("req-1", 500, nil))
	_, err := o.Submit(context.Background(), validWallet())
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestSimulatorDisabledRefusesConstruction(t *testing.T) {
	cfg := testConfig()
	cfg.SimulatorEnabled = false

	_, err := NewOrchestrator(nil, cfg, nil, testLogger(t))
	assert.ErrorIs(t, err, ErrSimulatorDisabled)
}

func TestCloseIsNoOpWhileProcessing(t *testing.T) {
	backend := &paymentBackend{}
	o := newTestOrchestrator(t, backend, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	o.sleep = func(ctx context.Context, d time.Duration) error {
		once.Do(func() {
			close(started)
			<-release
		})
		return nil
	}

	require.NoError(t, o.Start("req-1", 500, nil))
	require.NoError(t, o.SelectMethod(models.PaymentMethodBkash))

	done := make(chan struct{})
	go func() {
		defer close(done)
		o.Submit(context.Background(), validWallet())
	}()

	<-started
	assert.False(t, o.Close(), "close must not interrupt an in-flight payment")
	assert.Equal(t, StepProcessing, o.Step())

	close(release)
	<-done

	assert.Equal(t, StepSuccess, o.Step())
	assert.True(t, o.Close())
	assert.Equal(t, StepMethod, o.Step())
}

func TestSubmitCancelledContext(t *testing.T) {
	backend := &paymentBackend{}
	o := newTestOrchestrator(t, backend, nil)
	o.cfg = &config.PaymentConfig{
		CommissionRate:   0.10,
		SimulatorEnabled: true,
		ProcessingDelay:  time.Minute,
	}

	require.NoError(t, o.Start("req-1", 500, nil))
	require.NoError(t, o.SelectMethod(models.PaymentMethodBkash))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Submit(ctx, validWallet())
	require.Error(t, err)
	assert.Equal(t, int64(0), backend.calls.Load())
	assert.Equal(t, StepDetails, o.Step())
}
