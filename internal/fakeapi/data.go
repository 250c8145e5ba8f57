package fakeapi

import "github.com/cx-tal-miterani/flight-checkout/internal/models"

var (
	del = models.Airport{Code: "DEL", Name: "Indira Gandhi International Airport", City: "New Delhi"}
	bom = models.Airport{Code: "BOM", Name: "Chhatrapati Shivaji Maharaj International Airport", City: "Mumbai"}
	blr = models.Airport{Code: "BLR", Name: "Kempegowda International Airport", City: "Bangalore"}
	ccu = models.Airport{Code: "CCU", Name: "Netaji Subhash Chandra Bose International Airport", City: "Kolkata"}
	hyd = models.Airport{Code: "HYD", Name: "Rajiv Gandhi International Airport", City: "Hyderabad"}
	maa = models.Airport{Code: "MAA", Name: "Chennai International Airport", City: "Chennai"}
	dxb = models.Airport{Code: "DXB", Name: "Dubai International Airport", City: "Dubai"}
	sin = models.Airport{Code: "SIN", Name: "Singapore Changi Airport", City: "Singapore"}
	lhr = models.Airport{Code: "LHR", Name: "London Heathrow Airport", City: "London"}
	fra = models.Airport{Code: "FRA", Name: "Frankfurt Airport", City: "Frankfurt"}
	doh = models.Airport{Code: "DOH", Name: "Hamad International Airport", City: "Doha"}
	bkk = models.Airport{Code: "BKK", Name: "Suvarnabhumi Airport", City: "Bangkok"}
	nrt = models.Airport{Code: "NRT", Name: "Narita International Airport", City: "Tokyo"}
	jfk = models.Airport{Code: "JFK", Name: "John F. Kennedy International Airport", City: "New York"}
	syd = models.Airport{Code: "SYD", Name: "Sydney Kingsford Smith Airport", City: "Sydney"}
	ist = models.Airport{Code: "IST", Name: "Istanbul Airport", City: "Istanbul"}
)

func flight(id int64, number, airlineCode, airlineName string, from, to models.Airport, dep, arr string, minutes int, base, current float64, total, available int) models.Flight {
	return models.Flight{
		ID:               id,
		FlightNumber:     number,
		Airline:          models.Airline{Code: airlineCode, Name: airlineName},
		DepartureAirport: from,
		ArrivalAirport:   to,
		DepartureTime:    dep,
		ArrivalTime:      arr,
		DurationMinutes:  minutes,
		BasePrice:        base,
		CurrentPrice:     current,
		TotalSeats:       total,
		AvailableSeats:   available,
		Status:           "scheduled",
	}
}

func sampleFlights() []models.Flight {
	return []models.Flight{
		flight(1, "AI101", "AI", "Air India", del, bom, "2026-12-15T08:00:00", "2026-12-15T10:30:00", 150, 4500, 5400, 200, 150),
		flight(2, "6E201", "6E", "IndiGo", bom, blr, "2026-12-15T14:00:00", "2026-12-15T15:45:00", 105, 3200, 3800, 180, 120),
		flight(3, "SG301", "SG", "SpiceJet", del, ccu, "2026-12-15T16:30:00", "2026-12-15T18:45:00", 135, 2800, 3200, 150, 100),
		flight(4, "G8401", "G8", "GoAir", blr, hyd, "2026-12-15T11:00:00", "2026-12-15T12:15:00", 75, 2500, 2900, 120, 80),
		flight(5, "AI501", "AI", "Air India", maa, del, "2026-12-15T19:00:00", "2026-12-15T21:30:00", 150, 5200, 6200, 200, 160),
		flight(6, "EK501", "EK", "Emirates", del, dxb, "2026-12-15T02:30:00", "2026-12-15T05:45:00", 195, 25000, 32000, 300, 200),
		flight(7, "SQ201", "SQ", "Singapore Airlines", bom, sin, "2026-12-15T23:45:00", "2026-12-16T07:30:00", 225, 35000, 42000, 250, 180),
		flight(8, "BA147", "BA", "British Airways", del, lhr, "2026-12-15T13:20:00", "2026-12-15T18:35:00", 315, 65000, 78000, 280, 150),
		flight(9, "LH761", "LH", "Lufthansa", bom, fra, "2026-12-15T01:15:00", "2026-12-15T06:40:00", 325, 58000, 72000, 300, 220),
		flight(10, "QR578", "QR", "Qatar Airways", blr, doh, "2026-12-15T03:45:00", "2026-12-15T06:20:00", 155, 22000, 28000, 200, 120),
		flight(11, "TG316", "TG", "Thai Airways", ccu, bkk, "2026-12-15T20:30:00", "2026-12-16T01:15:00", 165, 18000, 22000, 180, 100),
		flight(12, "JL58", "JL", "Japan Airlines", del, nrt, "2026-12-15T11:50:00", "2026-12-15T23:30:00", 400, 45000, 55000, 250, 180),
		flight(13, "AA100", "AA", "American Airlines", del, jfk, "2026-12-15T15:30:00", "2026-12-16T06:45:00", 555, 85000, 105000, 300, 120),
		flight(14, "QF68", "QF", "Qantas", bom, syd, "2026-12-15T22:15:00", "2026-12-16T14:20:00", 485, 75000, 95000, 280, 200),
		flight(15, "TK716", "TK", "Turkish Airlines", hyd, ist, "2026-12-15T04:20:00", "2026-12-15T09:30:00", 310, 35000, 42000, 220, 150),
		flight(16, "QF69", "QF", "Qantas", syd, del, "2026-12-15T10:40:00", "2026-12-15T18:05:00", 745, 72000, 91000, 280, 190),
		flight(17, "AI301", "AI", "Air India", syd, del, "2026-12-15T21:00:00", "2026-12-16T04:30:00", 780, 68000, 84000, 250, 160),
	}
}

func sampleAirports() []models.Airport {
	rows := []struct {
		code, name, city, country string
	}{
		{"DEL", "Indira Gandhi International Airport", "New Delhi", "India"},
		{"BOM", "Chhatrapati Shivaji Maharaj International Airport", "Mumbai", "India"},
		{"BLR", "Kempegowda International Airport", "Bangalore", "India"},
		{"CCU", "Netaji Subhash Chandra Bose International Airport", "Kolkata", "India"},
		{"HYD", "Rajiv Gandhi International Airport", "Hyderabad", "India"},
		{"MAA", "Chennai International Airport", "Chennai", "India"},
		{"AMD", "Sardar Vallabhbhai Patel International Airport", "Ahmedabad", "India"},
		{"PNQ", "Pune Airport", "Pune", "India"},
		{"GOI", "Dabolim Airport", "Goa", "India"},
		{"COK", "Cochin International Airport", "Kochi", "India"},
		{"DXB", "Dubai International Airport", "Dubai", "UAE"},
		{"SIN", "Singapore Changi Airport", "Singapore", "Singapore"},
		{"BKK", "Suvarnabhumi Airport", "Bangkok", "Thailand"},
		{"NRT", "Narita International Airport", "Tokyo", "Japan"},
		{"LHR", "London Heathrow Airport", "London", "UK"},
		{"FRA", "Frankfurt Airport", "Frankfurt", "Germany"},
		{"JFK", "John F. Kennedy International Airport", "New York", "USA"},
		{"SYD", "Sydney Kingsford Smith Airport", "Sydney", "Australia"},
		{"MEL", "Melbourne Airport", "Melbourne", "Australia"},
		{"IST", "Istanbul Airport", "Istanbul", "Turkey"},
		{"DOH", "Hamad International Airport", "Doha", "Qatar"},
	}
	airports := make([]models.Airport, 0, len(rows))
	for i, r := range rows {
		airports = append(airports, models.Airport{ID: i + 1, Code: r.code, Name: r.name, City: r.city, Country: r.country})
	}
	return airports
}

func sampleAirlines() []models.Airline {
	return []models.Airline{
		{Code: "AI", Name: "Air India"},
		{Code: "6E", Name: "IndiGo"},
		{Code: "SG", Name: "SpiceJet"},
		{Code: "G8", Name: "GoAir"},
		{Code: "EK", Name: "Emirates"},
		{Code: "QR", Name: "Qatar Airways"},
		{Code: "SQ", Name: "Singapore Airlines"},
		{Code: "TG", Name: "Thai Airways"},
		{Code: "JL", Name: "Japan Airlines"},
		{Code: "BA", Name: "British Airways"},
		{Code: "LH", Name: "Lufthansa"},
		{Code: "AA", Name: "American Airlines"},
		{Code: "QF", Name: "Qantas"},
		{Code: "TK", Name: "Turkish Airlines"},
	}
}

// coupon is the backend's record, with the usage counters the API hides
type coupon struct {
	models.Coupon
	UsageLimit int
	UsedCount  int
}

func sampleCoupons() []*coupon {
	mk := func(code, name, desc string, kind models.DiscountType, value, minAmount, maxDiscount float64, limit int) *coupon {
		return &coupon{
			Coupon: models.Coupon{
				Code:          code,
				Name:          name,
				Description:   desc,
				DiscountType:  kind,
				DiscountValue: value,
				MinAmount:     minAmount,
				MaxDiscount:   maxDiscount,
				ValidFrom:     "2026-01-01",
				ValidUntil:    "2027-12-31",
				IsActive:      true,
			},
			UsageLimit: limit,
		}
	}
	return []*coupon{
		mk("WELCOME20", "Welcome Discount", "20% off on your first booking", models.DiscountTypePercentage, 20, 5000, 10000, 1000),
		mk("SAVE500", "Flat Discount", "₹500 off on domestic flights", models.DiscountTypeFixed, 500, 3000, 500, 500),
		mk("FIRSTCLASS", "Premium Upgrade", "₹2000 off on Business/First class", models.DiscountTypeFixed, 2000, 15000, 2000, 100),
		mk("EARLYBIRD", "Early Bird Special", "15% off on bookings made 30+ days in advance", models.DiscountTypePercentage, 15, 10000, 15000, 200),
		mk("STUDENT10", "Student Discount", "10% off for students", models.DiscountTypePercentage, 10, 2000, 5000, 1000),
		mk("FAMILY", "Family Package", "₹1000 off for 3+ passengers", models.DiscountTypeFixed, 1000, 15000, 1000, 300),
	}
}

func samplePaymentMethods() []models.PaymentMethod {
	return []models.PaymentMethod{
		{ID: models.PaymentMethodCreditCard, Name: "Credit Card", Icon: "fas fa-credit-card", Description: "Visa, Mastercard, American Express"},
		{ID: models.PaymentMethodDebitCard, Name: "Debit Card", Icon: "fas fa-credit-card", Description: "Visa, Mastercard, RuPay"},
		{ID: models.PaymentMethodNetbanking, Name: "Net Banking", Icon: "fas fa-university", Description: "All major Indian banks"},
		{ID: models.PaymentMethodUPI, Name: "UPI", Icon: "fas fa-mobile-alt", Description: "PhonePe, Google Pay, Paytm, BHIM"},
		{ID: models.PaymentMethodWallet, Name: "Digital Wallet", Icon: "fas fa-wallet", Description: "Paytm, PhonePe, Amazon Pay"},
		{ID: models.PaymentMethodEMI, Name: "EMI", Icon: "fas fa-calendar-alt", Description: "No Cost EMI available"},
	}
}

func sampleBanks() []models.Bank {
	return []models.Bank{
		{Code: "SBI", Name: "State Bank of India"},
		{Code: "HDFC", Name: "HDFC Bank"},
		{Code: "ICICI", Name: "ICICI Bank"},
		{Code: "AXIS", Name: "Axis Bank"},
		{Code: "KOTAK", Name: "Kotak Mahindra Bank"},
		{Code: "PNB", Name: "Punjab National Bank"},
		{Code: "BOI", Name: "Bank of India"},
		{Code: "CANARA", Name: "Canara Bank"},
	}
}

var seatMultipliers = map[models.SeatClass]float64{
	models.SeatClassEconomy:        1.0,
	models.SeatClassPremiumEconomy: 1.5,
	models.SeatClassBusiness:       2.5,
	models.SeatClassFirst:          4.0,
}

const (
	demandFactor       = 1.2
	timeFactor         = 1.1
	availabilityFactor = 1.05
)

// DeclinedCard is the card number the fake always declines
const DeclinedCard = "4000 0000 0000 0002"
