package customer

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a directory entry. Email and Address are optional and empty
// when absent. Tier is never stored, see TierOf.
type Customer struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email,omitempty"`
	Address        string          `json:"address,omitempty"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	LastVisit      time.Time       `json:"last_visit"`
}

func (c Customer) Tier() Tier {
	return TierOf(c.TotalPurchases)
}

type Tier string

const (
	TierGold    Tier = "Gold"
	TierSilver  Tier = "Silver"
	TierBronze  Tier = "Bronze"
	TierRegular Tier = "Regular"
)

var (
	goldThreshold   = decimal.NewFromInt(20000)
	silverThreshold = decimal.NewFromInt(10000)
	bronzeThreshold = decimal.NewFromInt(5000)
)

// TierOf classifies cumulative purchases. Lower bounds are inclusive.
func TierOf(totalPurchases decimal.Decimal) Tier {
	switch {
	case totalPurchases.GreaterThanOrEqual(goldThreshold):
		return TierGold
	case totalPurchases.GreaterThanOrEqual(silverThreshold):
		return TierSilver
	case totalPurchases.GreaterThanOrEqual(bronzeThreshold):
		return TierBronze
	default:
		return TierRegular
	}
}

func (t Tier) String() string {
	return string(t)
}
