package validation

import "github.com/example/gemmarket/internal/models"

const (
	RoundingFloor = "floor"
	RoundingRound = "round"
	RoundingCeil  = "ceil"
)

// PointsSettings is the loyalty configuration as edited by admins.
type PointsSettings struct {
	RegistrationPoints        int    `json:"registration_points"`
	RegistrationPointsEnabled bool   `json:"registration_points_enabled"`
	MMKAmount                 int    `json:"mmk_amount"`
	MMKPoints                 int    `json:"mmk_points"`
	USDAmount                 int    `json:"usd_amount"`
	USDPoints                 int    `json:"usd_points"`
	KRWAmount                 int    `json:"krw_amount"`
	KRWPoints                 int    `json:"krw_points"`
	MinimumSpend              int    `json:"minimum_spend"`
	MinimumSpendCurrency      string `json:"minimum_spend_currency"`
	RoundingMethod            string `json:"rounding_method"`
	PointsExpiryDays          int    `json:"points_expiry_days"`
}

// DefaultPointsSettings is used for every key never saved.
func DefaultPointsSettings() PointsSettings {
	return PointsSettings{
		MMKAmount:            1000,
		MMKPoints:            1,
		USDAmount:            1,
		USDPoints:            10,
		KRWAmount:            1000,
		KRWPoints:            8,
		MinimumSpendCurrency: models.CurrencyMMK,
		RoundingMethod:       RoundingFloor,
		PointsExpiryDays:     365,
	}
}

func (s PointsSettings) Validate() error {
	var errs Errors
	for _, field := range []struct {
		name  string
		value int
	}{
		{"registration_points", s.RegistrationPoints},
		{"mmk_amount", s.MMKAmount},
		{"mmk_points", s.MMKPoints},
		{"usd_amount", s.USDAmount},
		{"usd_points", s.USDPoints},
		{"krw_amount", s.KRWAmount},
		{"krw_points", s.KRWPoints},
		{"minimum_spend", s.MinimumSpend},
		{"points_expiry_days", s.PointsExpiryDays},
	} {
		if field.value < 0 {
			errs.add("%s must not be negative", field.name)
		}
	}
	if !oneOf(s.MinimumSpendCurrency, models.CurrencyMMK, models.CurrencyUSD, models.CurrencyKRW) {
		errs.add("minimum_spend_currency must be one of MMK, USD, KRW")
	}
	if !oneOf(s.RoundingMethod, RoundingFloor, RoundingRound, RoundingCeil) {
		errs.add("rounding_method must be floor, round or ceil")
	}
	return errs.Err()
}
