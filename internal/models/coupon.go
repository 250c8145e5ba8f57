package models

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Coupon describes a discount code offered by the backend
type Coupon struct {
	Code          string       `json:"code"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue float64      `json:"discount_value"`
	MinAmount     float64      `json:"min_amount,omitempty"`
	MaxDiscount   float64      `json:"max_discount,omitempty"`
	ValidFrom     string       `json:"valid_from,omitempty"`
	ValidUntil    string       `json:"valid_until,omitempty"`
	IsActive      bool         `json:"is_active"`
}

// ApplyCouponRequest is the body of POST /coupons/apply
type ApplyCouponRequest struct {
	CouponCode    string    `json:"coupon_code"`
	BookingAmount float64   `json:"booking_amount"`
	SeatClass     SeatClass `json:"seat_class"`
	Passengers    int       `json:"passengers"`
}

// CouponApplication is the server's verdict on a coupon for a booking amount
type CouponApplication struct {
	Valid          bool    `json:"valid"`
	Message        string  `json:"message"`
	OriginalAmount float64 `json:"original_amount,omitempty"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount,omitempty"`
	Savings        float64 `json:"savings,omitempty"`
	CouponDetails  *Coupon `json:"coupon_details,omitempty"`
}

// Final returns the discounted amount, never below zero
func (a *CouponApplication) Final() float64 {
	if f := a.OriginalAmount - a.DiscountAmount; f > 0 {
		return f
	}
	return 0
}

// Code returns the applied coupon code, if the server echoed one
func (a *CouponApplication) Code() string {
	if a.CouponDetails == nil {
		return ""
	}
	return a.CouponDetails.Code
}
