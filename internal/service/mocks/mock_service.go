package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cx-tal-miterani/flight-checkout/internal/checkout"
	"github.com/cx-tal-miterani/flight-checkout/internal/models"
)

// MockCheckoutService is a mock implementation of CheckoutService
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) view(args mock.Arguments) (*checkout.View, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.View), args.Error(1)
}

func (m *MockCheckoutService) CreateSession(ctx context.Context) (*checkout.View, error) {
	return m.view(m.Called(ctx))
}

func (m *MockCheckoutService) GetSession(ctx context.Context, sessionID string) (*checkout.View, error) {
	return m.view(m.Called(ctx, sessionID))
}

func (m *MockCheckoutService) ResumeSession(ctx context.Context, handoffKey string) (*checkout.View, error) {
	return m.view(m.Called(ctx, handoffKey))
}

func (m *MockCheckoutService) SearchFlights(ctx context.Context, sessionID string, q models.SearchQuery) (*checkout.View, error) {
	return m.view(m.Called(ctx, sessionID, q))
}

func (m *MockCheckoutService) SelectFlight(ctx context.Context, sessionID string, flightID int64) (*checkout.View, error) {
	return m.view(m.Called(ctx, sessionID, flightID))
}

func (m *MockCheckoutService) ChangeSeatClass(ctx context.Context, sessionID string, class models.SeatClass) (*checkout.View, error) {
	return m.view(m.Called(ctx, sessionID, class))
}

func (m *MockCheckoutService) CheckCoupon(ctx context.Context, sessionID, code string) (*models.Coupon, error) {
	args := m.Called(ctx, sessionID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Coupon), args.Error(1)
}

func (m *MockCheckoutService) ApplyCoupon(ctx context.Context, sessionID, code string) (*checkout.View, error) {
	return m.view(m.Called(ctx, sessionID, code))
}

func (m *MockCheckoutService) CreateBooking(ctx context.Context, sessionID string, passenger models.Passenger) (*checkout.View, error) {
	return m.view(m.Called(ctx, sessionID, passenger))
}

func (m *MockCheckoutService) ChoosePaymentMethod(ctx context.Context, sessionID string, method models.PaymentMethodID) (*checkout.View, error) {
	return m.view(m.Called(ctx, sessionID, method))
}

func (m *MockCheckoutService) SubmitPayment(ctx context.Context, sessionID string, details models.PaymentDetails) (*checkout.View, error) {
	return m.view(m.Called(ctx, sessionID, details))
}
