package fakeapi

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cx-tal-miterani/flight-checkout/internal/models"
)

func (s *Server) listCoupons(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]models.Coupon, 0, len(s.coupons))
	for _, cp := range s.coupons {
		if cp.IsActive {
			active = append(active, cp.Coupon)
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"coupons":     active,
		"total_count": len(active),
	})
}

func (s *Server) getCoupon(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp, ok := s.findCoupon(c.Param("code"))
	if !ok {
		return detail(c, http.StatusNotFound, "Coupon not found")
	}
	if !cp.IsActive {
		return detail(c, http.StatusBadRequest, "Coupon is not active")
	}
	return c.JSON(http.StatusOK, cp.Coupon)
}

func (s *Server) validateCoupon(c echo.Context) error {
	var req models.ApplyCouponRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Invalid coupon request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, _ := s.checkCoupon(req)
	return c.JSON(http.StatusOK, result)
}

func (s *Server) applyCoupon(c echo.Context) error {
	var req models.ApplyCouponRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Invalid coupon request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, cp := s.checkCoupon(req)
	if !result.Valid {
		return c.JSON(http.StatusOK, result)
	}

	cp.UsedCount++
	result.OriginalAmount = req.BookingAmount
	result.FinalAmount = math.Max(0, req.BookingAmount-result.DiscountAmount)
	result.Savings = result.DiscountAmount
	return c.JSON(http.StatusOK, result)
}

// findCoupon must be called with s.mu held
func (s *Server) findCoupon(code string) (*coupon, bool) {
	for _, cp := range s.coupons {
		if strings.EqualFold(cp.Code, code) {
			return cp, true
		}
	}
	return nil, false
}

// checkCoupon applies the coupon rules to a booking amount. It must be called
// with s.mu held.
func (s *Server) checkCoupon(req models.ApplyCouponRequest) (models.CouponApplication, *coupon) {
	reject := func(msg string) (models.CouponApplication, *coupon) {
		return models.CouponApplication{Valid: false, Message: msg}, nil
	}

	cp, ok := s.findCoupon(req.CouponCode)
	switch {
	case !ok:
		return reject("Invalid coupon code")
	case !cp.IsActive:
		return reject("Coupon is not active")
	case cp.UsedCount >= cp.UsageLimit:
		return reject("Coupon usage limit exceeded")
	case req.BookingAmount < cp.MinAmount:
		return reject(fmt.Sprintf("Minimum booking amount of ₹%.0f required", cp.MinAmount))
	}

	today := s.now().Format("2006-01-02")
	if today < cp.ValidFrom || today > cp.ValidUntil {
		return reject("Coupon has expired")
	}

	var discount float64
	switch cp.DiscountType {
	case models.DiscountTypePercentage:
		discount = math.Floor(req.BookingAmount * cp.DiscountValue / 100)
	default:
		discount = cp.DiscountValue
	}
	if cp.MaxDiscount > 0 {
		discount = math.Min(discount, cp.MaxDiscount)
	}

	return models.CouponApplication{
		Valid:          true,
		Message:        "Coupon applied successfully",
		DiscountAmount: discount,
		CouponDetails: &models.Coupon{
			Code:          cp.Code,
			Name:          cp.Name,
			Description:   cp.Description,
			DiscountType:  cp.DiscountType,
			DiscountValue: cp.DiscountValue,
		},
	}, cp
}
