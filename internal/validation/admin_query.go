package validation

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/gemmarket/internal/models"
	"github.com/example/gemmarket/internal/repository"
)

// MaxAdminLimit is the largest page size the admin product table accepts.
const MaxAdminLimit = 100

var adminSortFields = []string{"created_at", "updated_at", "price", "title", "weight"}

// ParseAdminProductQuery coerces the admin product table query string.
// Unknown enum values, malformed ids, booleans and dates are dropped. A
// limit above MaxAdminLimit is the only rejected input.
func ParseAdminProductQuery(get func(key string) string) (repository.AdminProductFilter, error) {
	f := repository.AdminProductFilter{
		Search: strings.TrimSpace(get("search")),
		Shape:  strings.TrimSpace(get("shape")),
		Page:   1,
		Limit:  20,
		Sort:   "created_at",
		Order:  "desc",
	}

	f.ProductType = enumValue(get("product_type"), models.ProductTypeLooseStone, models.ProductTypeJewellery)
	f.Status = enumValue(get("status"), models.StatusActive, models.StatusArchive, models.StatusSold, models.StatusHidden)
	f.ModerationStatus = enumValue(get("moderation_status"), models.ModerationPending, models.ModerationApproved, models.ModerationRejected)
	f.StoneCut = enumValue(get("stone_cut"), models.CutFaceted, models.CutCabochon)

	f.CategoryID = idValue(get("category_id"))
	f.OriginID = idValue(get("origin_id"))
	f.LaboratoryID = idValue(get("laboratory_id"))

	f.DateFrom = dateValue(get("date_from"))
	f.DateTo = dateValue(get("date_to"))

	f.IsFeatured = boolValue(get("is_featured"))
	f.IsCollectorItem = boolValue(get("is_collector_item"))
	f.IsPrivilegeAssist = boolValue(get("is_privilege_assist"))

	if page, err := strconv.Atoi(strings.TrimSpace(get("page"))); err == nil && page > 0 {
		f.Page = page
	}
	if limit, err := strconv.Atoi(strings.TrimSpace(get("limit"))); err == nil && limit > 0 {
		if limit > MaxAdminLimit {
			return f, Errors{"limit must be at most 100"}
		}
		f.Limit = limit
	}
	if sort := enumValue(get("sort"), adminSortFields...); sort != "" {
		f.Sort = sort
	}
	if order := enumValue(strings.ToLower(get("order")), "asc", "desc"); order != "" {
		f.Order = order
	}

	return f, nil
}

func enumValue(raw string, allowed ...string) string {
	raw = strings.TrimSpace(raw)
	if oneOf(raw, allowed...) {
		return raw
	}
	return ""
}

func idValue(raw string) *uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &id
}

func dateValue(raw string) *time.Time {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &t
}

func boolValue(raw string) *bool {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &b
}
