package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cx-tal-miterani/flight-checkout/internal/models"
	"github.com/cx-tal-miterani/flight-checkout/internal/ratelimit"
)

const (
	DefaultTimeout = 30 * time.Second

	// IdempotencyKeyHeader is sent with payment initiation so backends that
	// support it can collapse retried initiations.
	IdempotencyKeyHeader = "Idempotency-Key"

	// EndpointInitiatePayment names the payment initiation bucket in the
	// endpoint limiter
	EndpointInitiatePayment = "payment-initiate"
)

// Client talks to the storefront backend under its /api base path
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.EndpointLimiter
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLimiter paces outbound calls per endpoint
func WithLimiter(l *ratelimit.EndpointLimiter) Option {
	return func(c *Client) { c.limiter = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for baseURL, e.g. http://localhost:8000/api
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Catalog ---

// Airports handles GET /flights/airports/
func (c *Client) Airports(ctx context.Context) ([]models.Airport, error) {
	var airports []models.Airport
	if err := c.get(ctx, "airports", "/flights/airports/", nil, &airports); err != nil {
		return nil, err
	}
	return airports, nil
}

// Airlines handles GET /flights/airlines/
func (c *Client) Airlines(ctx context.Context) ([]models.Airline, error) {
	var airlines []models.Airline
	if err := c.get(ctx, "airlines", "/flights/airlines/", nil, &airlines); err != nil {
		return nil, err
	}
	return airlines, nil
}

// Coupons handles GET /coupons/
func (c *Client) Coupons(ctx context.Context) ([]models.Coupon, error) {
	var resp struct {
		Coupons []models.Coupon `json:"coupons"`
	}
	if err := c.get(ctx, "coupons", "/coupons/", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Coupons, nil
}

// PaymentMethods handles GET /payments/methods
func (c *Client) PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	var resp struct {
		PaymentMethods []models.PaymentMethod `json:"payment_methods"`
	}
	if err := c.get(ctx, "payment-methods", "/payments/methods", nil, &resp); err != nil {
		return nil, err
	}
	return resp.PaymentMethods, nil
}

// Banks handles GET /payments/banks
func (c *Client) Banks(ctx context.Context) ([]models.Bank, error) {
	var resp struct {
		Banks []models.Bank `json:"banks"`
	}
	if err := c.get(ctx, "banks", "/payments/banks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Banks, nil
}

// --- Search and pricing ---

// SearchValues builds the search query string from the non-empty fields of q
func SearchValues(q models.SearchQuery) url.Values {
	v := url.Values{}
	add := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	add("departure_airport", q.DepartureAirport)
	add("arrival_airport", q.ArrivalAirport)
	add("departure_date", q.DepartureDate)
	add("return_date", q.ReturnDate)
	if q.Passengers > 0 {
		v.Set("passengers", strconv.Itoa(q.Passengers))
	}
	add("seat_class", string(q.SeatClass))
	return v
}

// SearchFlights handles GET /flights/search
func (c *Client) SearchFlights(ctx context.Context, q models.SearchQuery) (*models.SearchResponse, error) {
	var resp models.SearchResponse
	if err := c.get(ctx, "search", "/flights/search", SearchValues(q), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Pricing handles GET /pricing/flight/{id}/class/{seatClass}
func (c *Client) Pricing(ctx context.Context, flightID int64, class models.SeatClass) (*models.PricingQuote, error) {
	path := fmt.Sprintf("/pricing/flight/%d/class/%s", flightID, url.PathEscape(string(class)))
	var quote models.PricingQuote
	if err := c.get(ctx, "pricing", path, nil, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// --- Coupons ---

// Coupon handles GET /coupons/{code}
func (c *Client) Coupon(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := c.get(ctx, "coupon", "/coupons/"+url.PathEscape(code), nil, &coupon); err != nil {
		return nil, err
	}
	return &coupon, nil
}

// ApplyCoupon handles POST /coupons/apply. A rejected coupon is a normal
// response with Valid=false, not an error.
func (c *Client) ApplyCoupon(ctx context.Context, req models.ApplyCouponRequest) (*models.CouponApplication, error) {
	var result models.CouponApplication
	if err := c.post(ctx, "coupon-apply", "/coupons/apply", req, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- Bookings ---

// CreateBooking handles POST /bookings/
func (c *Client) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error) {
	var confirmation models.BookingConfirmation
	if err := c.post(ctx, "bookings", "/bookings/", req, nil, &confirmation); err != nil {
		return nil, err
	}
	return &confirmation, nil
}

// --- Payments ---

// InitiatePayment handles POST /payments/initiate
func (c *Client) InitiatePayment(ctx context.Context, req models.InitiatePaymentRequest, idempotencyKey string) (*models.PaymentInitiation, error) {
	var headers http.Header
	if idempotencyKey != "" {
		headers = http.Header{IdempotencyKeyHeader: []string{idempotencyKey}}
	}
	var initiation models.PaymentInitiation
	if err := c.post(ctx, EndpointInitiatePayment, "/payments/initiate", req, headers, &initiation); err != nil {
		return nil, err
	}
	return &initiation, nil
}

// ProcessPayment handles POST /payments/process
func (c *Client) ProcessPayment(ctx context.Context, req models.ProcessPaymentRequest) (*models.PaymentResult, error) {
	var result models.PaymentResult
	if err := c.post(ctx, "payment-process", "/payments/process", req, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PaymentStatus handles GET /payments/status/{id}
func (c *Client) PaymentStatus(ctx context.Context, paymentID string) (*models.PaymentStatus, error) {
	var status models.PaymentStatus
	if err := c.get(ctx, "payment-status", "/payments/status/"+url.PathEscape(paymentID), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Refund handles POST /payments/refund
func (c *Client) Refund(ctx context.Context, req models.RefundRequest) (*models.Refund, error) {
	var refund models.Refund
	if err := c.post(ctx, "payment-refund", "/payments/refund", req, nil, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

// --- Transport ---

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, path, query, nil, nil, out)
}

func (c *Client) post(ctx context.Context, endpoint, path string, body any, headers http.Header, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, path, nil, body, headers, out)
}

func (c *Client) do(ctx context.Context, method, endpoint, path string, query url.Values, body any, headers http.Header, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, endpoint); err != nil {
			return fmt.Errorf("rate limit wait for %s: %w", endpoint, err)
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "backend request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	c.logger.DebugContext(ctx, "backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			Method:     method,
			Endpoint:   path,
			StatusCode: resp.StatusCode,
			Message:    extractMessage(respBody),
		}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}
