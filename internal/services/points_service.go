package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/gemmarket/internal/cache"
	"github.com/example/gemmarket/internal/models"
	"github.com/example/gemmarket/internal/repository"
	"github.com/example/gemmarket/internal/validation"
)

// Setting keys of the loyalty configuration.
const (
	KeyRegistrationPoints        = "registration_points"
	KeyRegistrationPointsEnabled = "registration_points_enabled"
	KeyMMKAmount                 = "mmk_amount"
	KeyMMKPoints                 = "mmk_points"
	KeyUSDAmount                 = "usd_amount"
	KeyUSDPoints                 = "usd_points"
	KeyKRWAmount                 = "krw_amount"
	KeyKRWPoints                 = "krw_points"
	KeyMinimumSpend              = "minimum_spend"
	KeyRoundingMethod            = "rounding_method"
	KeyPointsExpiryDays          = "points_expiry_days"
)

// EarningRates are points earned per unit of each currency.
type EarningRates struct {
	MMK float64 `json:"mmk"`
	USD float64 `json:"usd"`
	KRW float64 `json:"krw"`
}

// RegistrationBonus is granted to new accounts when enabled.
type RegistrationBonus struct {
	Points    int
	ExpiresAt *time.Time
}

// PointsService reads and writes the loyalty configuration.
type PointsService struct {
	repo  *repository.PointSettingRepository
	cache *cache.Cache
	log   *zap.Logger
}

// NewPointsService constructs PointsService.
func NewPointsService(repo *repository.PointSettingRepository, c *cache.Cache, log *zap.Logger) *PointsService {
	return &PointsService{repo: repo, cache: c, log: log}
}

var pointSettingKeys = []string{
	KeyRegistrationPoints,
	KeyRegistrationPointsEnabled,
	KeyMMKAmount,
	KeyMMKPoints,
	KeyUSDAmount,
	KeyUSDPoints,
	KeyKRWAmount,
	KeyKRWPoints,
	KeyMinimumSpend,
	KeyRoundingMethod,
	KeyPointsExpiryDays,
}

// GetPointsSettings assembles the configuration. Keys never saved take
// their default.
func (s *PointsService) GetPointsSettings(ctx context.Context) (validation.PointsSettings, error) {
	return cache.Remember(ctx, s.cache, "points:settings", cache.Tags(cache.TagPoints, ""), func() (validation.PointsSettings, error) {
		return s.loadSettings(ctx)
	})
}

func (s *PointsService) loadSettings(ctx context.Context) (validation.PointsSettings, error) {
	rows := make([]*models.PointSetting, len(pointSettingKeys))

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range pointSettingKeys {
		g.Go(func() error {
			row, err := s.repo.Get(gctx, key)
			if err != nil {
				return fmt.Errorf("read point setting %s: %w", key, err)
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return validation.PointsSettings{}, err
	}

	settings := validation.DefaultPointsSettings()
	for _, row := range rows {
		if row == nil {
			continue
		}
		switch row.Key {
		case KeyRegistrationPoints:
			settings.RegistrationPoints = row.Value
		case KeyRegistrationPointsEnabled:
			settings.RegistrationPointsEnabled = row.Value == 1
		case KeyMMKAmount:
			settings.MMKAmount = row.Value
		case KeyMMKPoints:
			settings.MMKPoints = row.Value
		case KeyUSDAmount:
			settings.USDAmount = row.Value
		case KeyUSDPoints:
			settings.USDPoints = row.Value
		case KeyKRWAmount:
			settings.KRWAmount = row.Value
		case KeyKRWPoints:
			settings.KRWPoints = row.Value
		case KeyMinimumSpend:
			settings.MinimumSpend = row.Value
			if row.TextValue != nil && *row.TextValue != "" {
				settings.MinimumSpendCurrency = *row.TextValue
			}
		case KeyRoundingMethod:
			if row.TextValue != nil && *row.TextValue != "" {
				settings.RoundingMethod = *row.TextValue
			}
		case KeyPointsExpiryDays:
			settings.PointsExpiryDays = row.Value
		}
	}
	return settings, nil
}

// SavePointsSettings writes every key. Each key is an independent upsert;
// the first failure stops the remaining writes.
func (s *PointsService) SavePointsSettings(ctx context.Context, settings validation.PointsSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	defer s.cache.Invalidate(ctx, cache.TagPoints, "")

	enabled := 0
	if settings.RegistrationPointsEnabled {
		enabled = 1
	}
	currency := settings.MinimumSpendCurrency
	rounding := settings.RoundingMethod

	writes := []struct {
		key   string
		value int
		text  *string
	}{
		{KeyRegistrationPoints, settings.RegistrationPoints, nil},
		{KeyRegistrationPointsEnabled, enabled, nil},
		{KeyMMKAmount, settings.MMKAmount, nil},
		{KeyMMKPoints, settings.MMKPoints, nil},
		{KeyUSDAmount, settings.USDAmount, nil},
		{KeyUSDPoints, settings.USDPoints, nil},
		{KeyKRWAmount, settings.KRWAmount, nil},
		{KeyKRWPoints, settings.KRWPoints, nil},
		{KeyMinimumSpend, settings.MinimumSpend, &currency},
		{KeyRoundingMethod, 0, &rounding},
		{KeyPointsExpiryDays, settings.PointsExpiryDays, nil},
	}
	for _, w := range writes {
		if err := s.repo.Upsert(ctx, w.key, w.value, w.text); err != nil {
			s.log.Error("point setting write failed", zap.String("key", w.key), zap.Error(err))
			return fmt.Errorf("save point setting %s: %w", w.key, err)
		}
	}
	return nil
}

// GetEarningPointsRates returns the points earned per unit of currency.
func (s *PointsService) GetEarningPointsRates(ctx context.Context) (EarningRates, error) {
	settings, err := s.GetPointsSettings(ctx)
	if err != nil {
		return EarningRates{}, err
	}
	return EarningRates{
		MMK: rate(settings.MMKPoints, settings.MMKAmount).InexactFloat64(),
		USD: rate(settings.USDPoints, settings.USDAmount).InexactFloat64(),
		KRW: rate(settings.KRWPoints, settings.KRWAmount).InexactFloat64(),
	}, nil
}

// rate treats a non-positive amount as 1.
func rate(points, amount int) decimal.Decimal {
	if amount <= 0 {
		amount = 1
	}
	return decimal.NewFromInt(int64(points)).Div(decimal.NewFromInt(int64(amount)))
}

// CalculateEarnedPoints converts a purchase into points. The minimum spend
// only applies to purchases in its own currency.
func (s *PointsService) CalculateEarnedPoints(ctx context.Context, amount decimal.Decimal, currency string) (int, error) {
	settings, err := s.GetPointsSettings(ctx)
	if err != nil {
		return 0, err
	}
	return earnedPoints(settings, amount, currency)
}

func earnedPoints(settings validation.PointsSettings, amount decimal.Decimal, currency string) (int, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	var r decimal.Decimal
	switch currency {
	case models.CurrencyMMK:
		r = rate(settings.MMKPoints, settings.MMKAmount)
	case models.CurrencyUSD:
		r = rate(settings.USDPoints, settings.USDAmount)
	case models.CurrencyKRW:
		r = rate(settings.KRWPoints, settings.KRWAmount)
	default:
		return 0, ErrUnsupportedCurrency
	}

	if !amount.IsPositive() {
		return 0, nil
	}
	if currency == settings.MinimumSpendCurrency && amount.LessThan(decimal.NewFromInt(int64(settings.MinimumSpend))) {
		return 0, nil
	}

	raw := amount.Mul(r)
	switch settings.RoundingMethod {
	case validation.RoundingCeil:
		raw = raw.Ceil()
	case validation.RoundingRound:
		raw = raw.Round(0)
	default:
		raw = raw.Floor()
	}
	return int(raw.IntPart()), nil
}

// RegistrationBonus returns the points a new account starts with.
func (s *PointsService) RegistrationBonus(ctx context.Context) (RegistrationBonus, error) {
	settings, err := s.GetPointsSettings(ctx)
	if err != nil {
		return RegistrationBonus{}, err
	}
	if !settings.RegistrationPointsEnabled || settings.RegistrationPoints <= 0 {
		return RegistrationBonus{}, nil
	}
	bonus := RegistrationBonus{Points: settings.RegistrationPoints}
	if settings.PointsExpiryDays > 0 {
		expires := time.Now().AddDate(0, 0, settings.PointsExpiryDays)
		bonus.ExpiresAt = &expires
	}
	return bonus, nil
}
