package monitoring

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// HoursPerMonth is the billing month used for estimates
const HoursPerMonth = 730

// PriceSource looks up on-demand hosting prices
type PriceSource interface {
	FetchHostingPrice(ctx context.Context, instanceType string) (float64, error)
}

// CostTracker estimates hosting cost from the pricing API, caching prices per
// instance type and falling back to a fixed hourly rate.
type CostTracker struct {
	prices   PriceSource
	fallback float64

	mu    sync.RWMutex
	cache map[string]float64
}

// NewCostTracker creates a new cost tracker. prices may be nil to always use fallback.
func NewCostTracker(prices PriceSource, fallbackHourly float64) *CostTracker {
	return &CostTracker{
		prices:   prices,
		fallback: fallbackHourly,
		cache:    make(map[string]float64),
	}
}

// HourlyPrice returns the USD hourly price of one hosting instance
func (ct *CostTracker) HourlyPrice(ctx context.Context, instanceType string) float64 {
	ct.mu.RLock()
	price, ok := ct.cache[instanceType]
	ct.mu.RUnlock()
	if ok {
		return price
	}

	price = ct.fallback
	if ct.prices != nil {
		fetched, err := ct.prices.FetchHostingPrice(ctx, instanceType)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"instance_type": instanceType,
				"fallback":      ct.fallback,
			}).Warn("Using fallback hourly price")
		} else {
			price = fetched
		}
	}

	ct.mu.Lock()
	ct.cache[instanceType] = price
	ct.mu.Unlock()

	return price
}

// MonthlyCost estimates the monthly cost of count endpoints of the given instance type
func (ct *CostTracker) MonthlyCost(ctx context.Context, instanceType string, count int) float64 {
	if count <= 0 {
		return 0
	}
	return float64(count) * ct.HourlyPrice(ctx, instanceType) * HoursPerMonth
}
