package pricing

import (
	"errors"
	"testing"
)

var testSettings = Settings{
	FirstHourPriceCents:      4000,
	AdditionalHourPriceCents: 2000,
	ProductsPriceCents:       3000,
	AgencyFeePercentage:      0.40,
}

func mustCalculate(t *testing.T, quote Quote) Breakdown {
	t.Helper()
	breakdown, err := Calculate(quote, testSettings)
	if err != nil {
		t.Fatalf("Calculate(%+v): %v", quote, err)
	}
	return breakdown
}

func TestBasePriceTiers(t *testing.T) {
	one := mustCalculate(t, Quote{Hours: 1, ServiceType: ServiceTypeStandard, CleanerCount: 1})
	if one.BasePriceCents != testSettings.FirstHourPriceCents {
		t.Errorf("1h base price = %d, want %d", one.BasePriceCents, testSettings.FirstHourPriceCents)
	}

	// Each extra hour adds exactly the additional-hour price.
	prev := one.BasePriceCents
	for hours := 2; hours <= MaxHours; hours++ {
		breakdown := mustCalculate(t, Quote{Hours: hours, ServiceType: ServiceTypeStandard, CleanerCount: 1})
		if breakdown.BasePriceCents != prev+testSettings.AdditionalHourPriceCents {
			t.Errorf("%dh base price = %d, want %d", hours, breakdown.BasePriceCents, prev+testSettings.AdditionalHourPriceCents)
		}
		prev = breakdown.BasePriceCents
	}
}

func TestPublishedPriceTableRows(t *testing.T) {
	// 3h standard, no products: base 80, fee 32, total 112, earnings 80.
	breakdown := mustCalculate(t, Quote{Hours: 3, ServiceType: ServiceTypeStandard, CleanerCount: 1})
	if breakdown.BasePriceCents != 8000 || breakdown.AgencyFeeCents != 3200 || breakdown.TotalCents != 11200 || breakdown.CleanerEarningsCents != 8000 {
		t.Errorf("3h row = %+v, want base=8000 fee=3200 total=11200 earnings=8000", breakdown)
	}

	// 1h with products: base 40, fee 16, products 30, total 86.
	breakdown = mustCalculate(t, Quote{Hours: 1, ServiceType: ServiceTypeStandard, IncludeProducts: true, CleanerCount: 1})
	if breakdown.BasePriceCents != 4000 || breakdown.AgencyFeeCents != 1600 || breakdown.ProductsCents != 3000 || breakdown.TotalCents != 8600 {
		t.Errorf("1h+products row = %+v, want base=4000 fee=1600 products=3000 total=8600", breakdown)
	}
}

func TestAgencyFeeIgnoresProducts(t *testing.T) {
	without := mustCalculate(t, Quote{Hours: 4, ServiceType: ServiceTypeStandard, CleanerCount: 1})
	with := mustCalculate(t, Quote{Hours: 4, ServiceType: ServiceTypeStandard, IncludeProducts: true, CleanerCount: 1})

	if without.AgencyFeeCents != with.AgencyFeeCents {
		t.Errorf("agency fee changed with products: %d vs %d", without.AgencyFeeCents, with.AgencyFeeCents)
	}
	if with.TotalCents != without.TotalCents+testSettings.ProductsPriceCents {
		t.Errorf("products total = %d, want %d", with.TotalCents, without.TotalCents+testSettings.ProductsPriceCents)
	}
}

func TestServiceTypeMultipliers(t *testing.T) {
	standard := mustCalculate(t, Quote{Hours: 5, ServiceType: ServiceTypeStandard, CleanerCount: 1})
	organized := mustCalculate(t, Quote{Hours: 5, ServiceType: ServiceTypeWithOrganization, CleanerCount: 1})
	postConstruction := mustCalculate(t, Quote{Hours: 5, ServiceType: ServiceTypePostConstruction, CleanerCount: 1})

	if want := int64(float64(standard.BasePriceCents) * 1.1); organized.BasePriceCents != want {
		t.Errorf("with_organization base = %d, want %d", organized.BasePriceCents, want)
	}
	if want := int64(float64(standard.BasePriceCents) * 1.5); postConstruction.BasePriceCents != want {
		t.Errorf("post_construction base = %d, want %d", postConstruction.BasePriceCents, want)
	}

	// Unknown service types are charged at the standard rate.
	legacy := mustCalculate(t, Quote{Hours: 5, ServiceType: ServiceType("limpeza_pesada"), CleanerCount: 1})
	if legacy.BasePriceCents != standard.BasePriceCents {
		t.Errorf("unknown type base = %d, want standard %d", legacy.BasePriceCents, standard.BasePriceCents)
	}
}

func TestFeeRoundsHalfUpToCent(t *testing.T) {
	settings := Settings{
		FirstHourPriceCents:      4500,
		AdditionalHourPriceCents: 2000,
		AgencyFeePercentage:      0.33,
	}
	breakdown, err := Calculate(Quote{Hours: 1, ServiceType: ServiceTypeStandard, CleanerCount: 1}, settings)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	// 4500 * 0.33 = 1485 exactly; 4500 * 1.1 * 0.33 = 1633.5 rounds to 1634.
	if breakdown.AgencyFeeCents != 1485 {
		t.Errorf("fee = %d, want 1485", breakdown.AgencyFeeCents)
	}
	breakdown, err = Calculate(Quote{Hours: 1, ServiceType: ServiceTypeWithOrganization, CleanerCount: 1}, settings)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if breakdown.BasePriceCents != 4950 || breakdown.AgencyFeeCents != 1634 {
		t.Errorf("organized base/fee = %d/%d, want 4950/1634", breakdown.BasePriceCents, breakdown.AgencyFeeCents)
	}
}

func TestMultiCleanerScaling(t *testing.T) {
	single := mustCalculate(t, Quote{Hours: 3, ServiceType: ServiceTypeStandard, IncludeProducts: true, CleanerCount: 1})
	triple := mustCalculate(t, Quote{Hours: 3, ServiceType: ServiceTypeStandard, IncludeProducts: true, CleanerCount: 3})

	if triple.TotalCents != single.TotalCents*3 {
		t.Errorf("3-cleaner total = %d, want %d", triple.TotalCents, single.TotalCents*3)
	}
	if triple.AgencyFeeCents != single.AgencyFeeCents*3 {
		t.Errorf("3-cleaner fee = %d, want %d", triple.AgencyFeeCents, single.AgencyFeeCents*3)
	}
	// Each cleaner still earns the single-cleaner base price.
	if triple.CleanerEarningsCents != single.CleanerEarningsCents {
		t.Errorf("3-cleaner per-cleaner earnings = %d, want %d", triple.CleanerEarningsCents, single.CleanerEarningsCents)
	}
}

func TestInputValidation(t *testing.T) {
	cases := []struct {
		name  string
		quote Quote
		want  error
	}{
		{"zero hours", Quote{Hours: 0, CleanerCount: 1}, ErrInvalidHours},
		{"nine hours", Quote{Hours: 9, CleanerCount: 1}, ErrInvalidHours},
		{"negative hours", Quote{Hours: -2, CleanerCount: 1}, ErrInvalidHours},
		{"zero cleaners", Quote{Hours: 2, CleanerCount: 0}, ErrInvalidCleanerCount},
		{"six cleaners", Quote{Hours: 2, CleanerCount: 6}, ErrInvalidCleanerCount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Calculate(tc.quote, testSettings); !errors.Is(err, tc.want) {
				t.Errorf("Calculate error = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := Calculate(Quote{Hours: 2, CleanerCount: 1}, Settings{}); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("empty settings error = %v, want %v", err, ErrInvalidSettings)
	}
}
