package structure

type Zone string

const (
	ZoneNone        Zone = "none"
	ZonePremium     Zone = "premium"
	ZoneDiscount    Zone = "discount"
	ZoneEquilibrium Zone = "equilibrium"
)

// Zones splits a swing range: the top 5% is premium, the bottom 5% is
// discount and 47.5%–52.5% is equilibrium.
type Zones struct {
	High              float64 `json:"high"`
	Low               float64 `json:"low"`
	PremiumBottom     float64 `json:"premium_bottom"`
	DiscountTop       float64 `json:"discount_top"`
	EquilibriumTop    float64 `json:"equilibrium_top"`
	EquilibriumBottom float64 `json:"equilibrium_bottom"`
}

func NewZones(high, low float64) Zones {
	r := high - low
	return Zones{
		High:              high,
		Low:               low,
		PremiumBottom:     high - 0.05*r,
		DiscountTop:       low + 0.05*r,
		EquilibriumTop:    low + 0.525*r,
		EquilibriumBottom: low + 0.475*r,
	}
}

// Classify places price in a zone. An empty range classifies as ZoneNone.
func (z Zones) Classify(price float64) Zone {
	if z.High <= z.Low {
		return ZoneNone
	}
	switch {
	case price >= z.PremiumBottom:
		return ZonePremium
	case price <= z.DiscountTop:
		return ZoneDiscount
	case price >= z.EquilibriumBottom && price <= z.EquilibriumTop:
		return ZoneEquilibrium
	default:
		return ZoneNone
	}
}
