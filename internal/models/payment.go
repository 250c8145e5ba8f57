package models

// PaymentMethodID identifies a payment option, e.g. "credit_card"
type PaymentMethodID string

const (
	PaymentMethodCreditCard PaymentMethodID = "credit_card"
	PaymentMethodDebitCard  PaymentMethodID = "debit_card"
	PaymentMethodNetbanking PaymentMethodID = "netbanking"
	PaymentMethodUPI        PaymentMethodID = "upi"
	PaymentMethodWallet     PaymentMethodID = "wallet"
	PaymentMethodEMI        PaymentMethodID = "emi"
)

// IsCard reports whether the method collects card details
func (m PaymentMethodID) IsCard() bool {
	return m == PaymentMethodCreditCard || m == PaymentMethodDebitCard
}

// PaymentMethod is a payment option offered by the backend
type PaymentMethod struct {
	ID          PaymentMethodID `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Icon        string          `json:"icon,omitempty"`
}

// Bank is a net banking provider
type Bank struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type PaymentStatusValue string

const (
	PaymentStatusPending   PaymentStatusValue = "pending"
	PaymentStatusCompleted PaymentStatusValue = "completed"
	PaymentStatusFailed    PaymentStatusValue = "failed"
)

// CurrencyINR is the only currency the storefront charges in
const CurrencyINR = "INR"

// InitiatePaymentRequest is the body of POST /payments/initiate
type InitiatePaymentRequest struct {
	BookingID     string          `json:"booking_id"`
	Amount        float64         `json:"amount"`
	PaymentMethod PaymentMethodID `json:"payment_method"`
	Currency      string          `json:"currency"`
}

// PaymentInitiation is the first phase of a payment
type PaymentInitiation struct {
	PaymentID     string             `json:"payment_id"`
	Status        PaymentStatusValue `json:"status"`
	Amount        float64            `json:"amount"`
	Currency      string             `json:"currency"`
	PaymentMethod PaymentMethodID    `json:"payment_method"`
	ExpiresAt     string             `json:"expires_at,omitempty"`
	RedirectURL   string             `json:"redirect_url,omitempty"`
}

type CardDetails struct {
	CardNumber string `json:"card_number"`
	CardName   string `json:"card_name"`
	CardExpiry string `json:"card_expiry"`
	CardCVV    string `json:"card_cvv"`
}

type UPIDetails struct {
	UPIID string `json:"upi_id"`
}

type NetbankingDetails struct {
	BankCode string `json:"bank_code"`
}

// PaymentDetails groups the method-specific inputs of the payment form
type PaymentDetails struct {
	Card       CardDetails       `json:"card_details"`
	UPI        UPIDetails        `json:"upi_details"`
	Netbanking NetbankingDetails `json:"netbanking_details"`
}

// ProcessPaymentRequest is the body of POST /payments/process
type ProcessPaymentRequest struct {
	PaymentID         string            `json:"payment_id"`
	PaymentMethod     PaymentMethodID   `json:"payment_method"`
	CardDetails       CardDetails       `json:"card_details"`
	UPIDetails        UPIDetails        `json:"upi_details"`
	NetbankingDetails NetbankingDetails `json:"netbanking_details"`
}

// PaymentResult is the second phase of a payment
type PaymentResult struct {
	Success        bool               `json:"success"`
	PaymentID      string             `json:"payment_id"`
	TransactionID  string             `json:"transaction_id,omitempty"`
	Status         PaymentStatusValue `json:"status"`
	Message        string             `json:"message"`
	Amount         float64            `json:"amount,omitempty"`
	Currency       string             `json:"currency,omitempty"`
	RetryAvailable bool               `json:"retry_available,omitempty"`
}

// PaymentStatus is the backend's current view of a payment
type PaymentStatus struct {
	PaymentID     string             `json:"payment_id"`
	Status        PaymentStatusValue `json:"status"`
	Amount        float64            `json:"amount"`
	Currency      string             `json:"currency"`
	PaymentMethod PaymentMethodID    `json:"payment_method"`
	CreatedAt     string             `json:"created_at,omitempty"`
	TransactionID string             `json:"transaction_id,omitempty"`
	FailureReason string             `json:"failure_reason,omitempty"`
}

// RefundRequest is the body of POST /payments/refund
type RefundRequest struct {
	PaymentID string  `json:"payment_id"`
	Amount    float64 `json:"amount"`
	Reason    string  `json:"reason,omitempty"`
}

type Refund struct {
	RefundID        string  `json:"refund_id"`
	Status          string  `json:"status"`
	Amount          float64 `json:"amount"`
	Message         string  `json:"message"`
	EstimatedCredit string  `json:"estimated_credit,omitempty"`
}
