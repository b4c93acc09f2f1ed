package pricing

import (
	"errors"
	"math"
)

// ServiceType represents the type of cleaning service being quoted
type ServiceType string

const (
	ServiceTypeStandard         ServiceType = "standard"          // Regular cleaning
	ServiceTypeWithOrganization ServiceType = "with_organization" // Cleaning + organization
	ServiceTypePostConstruction ServiceType = "post_construction" // Post-construction cleaning
)

// Allowed ranges for quote inputs
const (
	MinHours    = 1
	MaxHours    = 8
	MinCleaners = 1
	MaxCleaners = 5
)

var (
	ErrInvalidHours        = errors.New("pricing: hours must be between 1 and 8")
	ErrInvalidCleanerCount = errors.New("pricing: cleaner count must be between 1 and 5")
	ErrInvalidSettings     = errors.New("pricing: settings contain non-positive prices")
)

// Settings is an immutable snapshot of the platform price table. It is
// passed explicitly to every computation so quotes stay pure and
// reproducible for a given settings revision.
type Settings struct {
	FirstHourPriceCents      int64
	AdditionalHourPriceCents int64
	ProductsPriceCents       int64
	AgencyFeePercentage      float64 // e.g. 0.40 for a 40% fee on the base price
}

// Quote holds the client-supplied parameters of a price computation.
type Quote struct {
	Hours           int
	ServiceType     ServiceType
	IncludeProducts bool
	CleanerCount    int
}

// Breakdown is the derived price decomposition for a quote. All amounts are
// in centavos. TotalCents and AgencyFeeCents cover the whole booking
// (scaled by cleaner count); BasePriceCents and CleanerEarningsCents are
// per-cleaner amounts.
type Breakdown struct {
	BasePriceCents       int64
	AgencyFeeCents       int64
	ProductsCents        int64
	TotalCents           int64
	CleanerEarningsCents int64
}

// Multiplier returns the price multiplier for a service type. Unknown types
// fall back to the standard rate, matching how bookings with legacy service
// labels are charged.
func Multiplier(serviceType ServiceType) float64 {
	switch serviceType {
	case ServiceTypeWithOrganization:
		return 1.1
	case ServiceTypePostConstruction:
		return 1.5
	default:
		return 1.0
	}
}

// Calculate maps a quote and a settings snapshot to a price breakdown.
//
// The base price is tiered: the first hour costs FirstHourPriceCents, every
// additional hour AdditionalHourPriceCents, then the service-type multiplier
// is applied. The agency fee is a percentage of the multiplied base price
// only; the products add-on is charged at a flat price and never carries a
// fee. Each cleaner on the booking earns the full single-cleaner base price,
// so the client total and the agency fee scale with the cleaner count while
// per-cleaner earnings do not.
//
// Fractional intermediate amounts round half-up to the whole centavo at the
// multiplier and fee steps.
func Calculate(quote Quote, settings Settings) (Breakdown, error) {
	if quote.Hours < MinHours || quote.Hours > MaxHours {
		return Breakdown{}, ErrInvalidHours
	}
	if quote.CleanerCount < MinCleaners || quote.CleanerCount > MaxCleaners {
		return Breakdown{}, ErrInvalidCleanerCount
	}
	if settings.FirstHourPriceCents <= 0 || settings.AdditionalHourPriceCents <= 0 {
		return Breakdown{}, ErrInvalidSettings
	}

	basePrice := settings.FirstHourPriceCents
	if quote.Hours > 1 {
		basePrice += int64(quote.Hours-1) * settings.AdditionalHourPriceCents
	}
	basePrice = roundCents(float64(basePrice) * Multiplier(quote.ServiceType))

	var products int64
	if quote.IncludeProducts {
		products = settings.ProductsPriceCents
	}

	agencyFee := roundCents(float64(basePrice) * settings.AgencyFeePercentage)
	total := basePrice + agencyFee + products

	count := int64(quote.CleanerCount)
	return Breakdown{
		BasePriceCents:       basePrice,
		AgencyFeeCents:       agencyFee * count,
		ProductsCents:        products,
		TotalCents:           total * count,
		CleanerEarningsCents: basePrice,
	}, nil
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}
