package fakeapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cx-tal-miterani/flight-checkout/internal/models"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	paymentExpiry        = 15 * time.Minute
	timestampLayout      = "2006-01-02T15:04:05"
)

func (s *Server) listPaymentMethods(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"payment_methods": s.methods,
		"total_count":     len(s.methods),
	})
}

func (s *Server) listBanks(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"banks":       s.banks,
		"total_count": len(s.banks),
	})
}

func initiation(p *paymentRecord) models.PaymentInitiation {
	return models.PaymentInitiation{
		PaymentID:     p.ID,
		Status:        p.Status,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentMethod: p.Method,
		ExpiresAt:     p.ExpiresAt.Format(timestampLayout),
		RedirectURL:   "/payment/" + p.ID,
	}
}

func (s *Server) initiatePayment(c echo.Context) error {
	var req models.InitiatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Invalid payment request")
	}
	if req.BookingID == "" || req.Amount == 0 || req.PaymentMethod == "" {
		return detail(c, http.StatusBadRequest, "Missing required payment data")
	}
	if req.Currency == "" {
		req.Currency = models.CurrencyINR
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := c.Request().Header.Get(idempotencyKeyHeader)
	if id, ok := s.idempotencyKeys[key]; ok && key != "" {
		return c.JSON(http.StatusOK, initiation(s.payments[id]))
	}

	now := s.now()
	p := &paymentRecord{
		ID:        s.randomID(12),
		BookingID: req.BookingID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Method:    req.PaymentMethod,
		Status:    models.PaymentStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(paymentExpiry),
	}
	s.payments[p.ID] = p
	if key != "" {
		s.idempotencyKeys[key] = p.ID
	}
	s.initiateCalls++

	return c.JSON(http.StatusOK, initiation(p))
}

func (s *Server) processPayment(c echo.Context) error {
	var req models.ProcessPaymentRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Invalid payment request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.processCalls++

	p, ok := s.payments[req.PaymentID]
	if !ok {
		return detail(c, http.StatusNotFound, "Payment not found")
	}
	if s.failProcessing > 0 {
		s.failProcessing--
		return detail(c, http.StatusServiceUnavailable, "Payment gateway unavailable")
	}
	if p.Status != models.PaymentStatusPending {
		return detail(c, http.StatusBadRequest, "Payment already processed")
	}

	method := req.PaymentMethod
	if method == "" {
		method = p.Method
	}
	if method.IsCard() && normalizeCard(req.CardDetails.CardNumber) == normalizeCard(DeclinedCard) {
		p.Status = models.PaymentStatusFailed
		p.FailureReason = "Card declined"
	} else {
		p.Status = models.PaymentStatusCompleted
		p.TransactionID = s.randomID(16)
	}

	if s.dropResponses > 0 {
		s.dropResponses--
		return detail(c, http.StatusGatewayTimeout, "Gateway timeout")
	}

	if p.Status == models.PaymentStatusFailed {
		return c.JSON(http.StatusOK, models.PaymentResult{
			Success:        false,
			PaymentID:      p.ID,
			Status:         models.PaymentStatusFailed,
			Message:        p.FailureReason,
			RetryAvailable: true,
		})
	}
	return c.JSON(http.StatusOK, models.PaymentResult{
		Success:       true,
		PaymentID:     p.ID,
		TransactionID: p.TransactionID,
		Status:        models.PaymentStatusCompleted,
		Message:       "Payment successful",
		Amount:        p.Amount,
		Currency:      p.Currency,
	})
}

func (s *Server) paymentStatus(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[c.Param("id")]
	if !ok {
		return detail(c, http.StatusNotFound, "Payment not found")
	}
	return c.JSON(http.StatusOK, models.PaymentStatus{
		PaymentID:     p.ID,
		Status:        p.Status,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentMethod: p.Method,
		CreatedAt:     p.CreatedAt.Format(timestampLayout),
		TransactionID: p.TransactionID,
		FailureReason: p.FailureReason,
	})
}

func (s *Server) refund(c echo.Context) error {
	var req models.RefundRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Invalid refund request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[req.PaymentID]
	if !ok {
		return detail(c, http.StatusNotFound, "Payment not found")
	}
	if p.Status != models.PaymentStatusCompleted {
		return detail(c, http.StatusBadRequest, "Payment not completed")
	}

	amount := req.Amount
	if amount == 0 {
		amount = p.Amount
	}
	return c.JSON(http.StatusOK, models.Refund{
		RefundID:        s.randomID(12),
		Status:          "completed",
		Amount:          amount,
		Message:         "Refund processed successfully",
		EstimatedCredit: "3-5 business days",
	})
}

func normalizeCard(number string) string {
	return strings.ReplaceAll(number, " ", "")
}
