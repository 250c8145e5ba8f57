package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ID
	}{
		{"number", `{"id": 42}`, "42"},
		{"string", `{"id": "BK-42"}`, "BK-42"},
		{"null", `{"id": null}`, ""},
		{"missing", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b BookingConfirmation
			require.NoError(t, json.Unmarshal([]byte(tt.body), &b))
			assert.Equal(t, tt.want, b.ID)
		})
	}

	var b BookingConfirmation
	assert.Error(t, json.Unmarshal([]byte(`{"id": true}`), &b))
}

func TestBookingConfirmation_BookingID(t *testing.T) {
	assert.Equal(t, "7", (&BookingConfirmation{ID: "7", PNR: "AB12CD"}).BookingID())
	assert.Equal(t, "AB12CD", (&BookingConfirmation{PNR: "AB12CD"}).BookingID())
}

func TestCouponApplication_Final(t *testing.T) {
	tests := []struct {
		name string
		app  CouponApplication
		want float64
	}{
		{"fixed discount", CouponApplication{OriginalAmount: 5400, DiscountAmount: 500}, 4900},
		{"discount exceeds amount", CouponApplication{OriginalAmount: 300, DiscountAmount: 500}, 0},
		{"ignores server final amount", CouponApplication{OriginalAmount: 5400, DiscountAmount: 1080, FinalAmount: 1}, 4320},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.app.Final())
		})
	}
}

func TestCouponApplication_Code(t *testing.T) {
	assert.Equal(t, "", (&CouponApplication{}).Code())
	assert.Equal(t, "SAVE500", (&CouponApplication{CouponDetails: &Coupon{Code: "SAVE500"}}).Code())
}

func TestParseSeatClass(t *testing.T) {
	class, ok := ParseSeatClass(" Premium_Economy ")
	assert.True(t, ok)
	assert.Equal(t, SeatClassPremiumEconomy, class)

	_, ok = ParseSeatClass("cargo")
	assert.False(t, ok)
}

func TestPaymentMethodID_IsCard(t *testing.T) {
	assert.True(t, PaymentMethodCreditCard.IsCard())
	assert.True(t, PaymentMethodDebitCard.IsCard())
	assert.False(t, PaymentMethodUPI.IsCard())
	assert.False(t, PaymentMethodEMI.IsCard())
}
