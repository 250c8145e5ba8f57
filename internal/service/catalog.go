package service

import (
	"context"
	"time"

	"github.com/cx-tal-miterani/flight-checkout/internal/cache"
	"github.com/cx-tal-miterani/flight-checkout/internal/checkout"
	"github.com/cx-tal-miterani/flight-checkout/internal/models"
)

const (
	airportsKey = "airports"
	couponsKey  = "coupons"
	methodsKey  = "payment-methods"
	banksKey    = "banks"
)

// CachedBackend serves the catalog lookups every new session prefetches from
// a TTL cache and passes everything else through
type CachedBackend struct {
	checkout.Backend
	ttl      time.Duration
	airports *cache.Cache[[]models.Airport]
	coupons  *cache.Cache[[]models.Coupon]
	methods  *cache.Cache[[]models.PaymentMethod]
	banks    *cache.Cache[[]models.Bank]
}

func NewCachedBackend(backend checkout.Backend, ttl time.Duration) *CachedBackend {
	return &CachedBackend{
		Backend:  backend,
		ttl:      ttl,
		airports: cache.New(cache.CloneSlice[models.Airport]),
		coupons:  cache.New(cache.CloneSlice[models.Coupon]),
		methods:  cache.New(cache.CloneSlice[models.PaymentMethod]),
		banks:    cache.New(cache.CloneSlice[models.Bank]),
	}
}

func (c *CachedBackend) Airports(ctx context.Context) ([]models.Airport, error) {
	return c.airports.GetOrLoad(airportsKey, c.ttl, func() ([]models.Airport, error) {
		return c.Backend.Airports(ctx)
	})
}

// Coupons are cached too: ApplyCoupon still validates every code server-side
func (c *CachedBackend) Coupons(ctx context.Context) ([]models.Coupon, error) {
	return c.coupons.GetOrLoad(couponsKey, c.ttl, func() ([]models.Coupon, error) {
		return c.Backend.Coupons(ctx)
	})
}

func (c *CachedBackend) PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	return c.methods.GetOrLoad(methodsKey, c.ttl, func() ([]models.PaymentMethod, error) {
		return c.Backend.PaymentMethods(ctx)
	})
}

func (c *CachedBackend) Banks(ctx context.Context) ([]models.Bank, error) {
	return c.banks.GetOrLoad(banksKey, c.ttl, func() ([]models.Bank, error) {
		return c.Backend.Banks(ctx)
	})
}
