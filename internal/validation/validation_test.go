package validation

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/example/gemmarket/internal/models"
)

func TestNormalizeProductBodyIsIdempotent(t *testing.T) {
	body := map[string]any{
		"title":       "  Pigeon Blood Ruby ",
		"color":       []any{"Red", " Pink ", ""},
		"shape":       "Oval",
		"weight":      "2.5",
		"is_featured": "on",
		"sku":         "R-1",
	}

	once := NormalizeProductBody(body)
	twice := NormalizeProductBody(once)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("normalisation not idempotent:\n%v\n%v", once, twice)
	}
	if once["title"] != "Pigeon Blood Ruby" {
		t.Errorf("expected trimmed title, got %q", once["title"])
	}
	if once["color"] != "Red, Pink" {
		t.Errorf("expected joined colors, got %q", once["color"])
	}
	if once["weight"] != 2.5 {
		t.Errorf("expected numeric weight, got %v", once["weight"])
	}
	if once["is_featured"] != true {
		t.Errorf("expected boolean featured, got %v", once["is_featured"])
	}
}

func TestNormalizeProductBodyDropsEmptyWeight(t *testing.T) {
	out := NormalizeProductBody(map[string]any{"weight": " "})
	if _, ok := out["weight"]; ok {
		t.Errorf("expected empty weight removed, got %v", out["weight"])
	}
}

func TestDecodeProductBodyValidatesCreate(t *testing.T) {
	payload, err := DecodeProductBody([]byte(`{
		"title": "Sapphire",
		"sku": "S-1",
		"price": "1500000.50",
		"product_type": "loose_stone",
		"category_id": "not-a-uuid",
		"images": [{"url": "https://cdn.example.com/a.jpg"}]
	}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	err = payload.ValidateCreate()
	if err == nil || !strings.Contains(err.Error(), "category_id must be a valid id") {
		t.Fatalf("expected category id error, got %v", err)
	}

	payload.CategoryID = OptionalID{}
	if err := payload.ValidateCreate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	product := payload.NewProduct()
	if product.Price.String() != "1500000.5" {
		t.Errorf("unexpected price %s", product.Price)
	}
	if product.ModerationStatus != models.ModerationPending || product.Currency != models.CurrencyMMK {
		t.Errorf("unexpected defaults %+v", product)
	}
	if len(product.Images) != 1 || product.Images[0].SortOrder != 0 {
		t.Errorf("unexpected images %+v", product.Images)
	}
}

func TestProductCreateRequiresFields(t *testing.T) {
	err := ProductPayload{}.ValidateCreate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"title is required", "sku is required", "price is required", "product_type is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
}

func TestProductUpdatesOnlySuppliedFields(t *testing.T) {
	payload, err := DecodeProductBody([]byte(`{"title": "New", "category_id": null}`))
	if err != nil {
		t.Fatal(err)
	}
	updates := payload.Updates()
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %v", updates)
	}
	if v, ok := updates["category_id"]; !ok || v != nil {
		t.Errorf("expected category cleared, got %v", v)
	}
}

func TestLooseStoneRejectsGemstones(t *testing.T) {
	payload, err := DecodeProductBody([]byte(`{"product_type": "loose_stone", "gemstones": [{"count": 1}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if err := payload.ValidateUpdate(); err == nil {
		t.Error("expected gemstones rejected on loose stones")
	}
}

func query(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestParseAdminProductQueryCoerces(t *testing.T) {
	id := uuid.New()
	f, err := ParseAdminProductQuery(query(map[string]string{
		"product_type":      "necklace",
		"status":            "sold",
		"category_id":       "nope",
		"origin_id":         id.String(),
		"date_from":         "2024-13-40",
		"date_to":           "2024-03-02",
		"is_featured":       "maybe",
		"is_collector_item": "true",
		"page":              "-3",
		"limit":             "50",
		"sort":              "price",
		"order":             "ASC",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.ProductType != "" || f.Status != models.StatusSold {
		t.Errorf("unexpected enums %q %q", f.ProductType, f.Status)
	}
	if f.CategoryID != nil || f.OriginID == nil || *f.OriginID != id {
		t.Errorf("unexpected ids %v %v", f.CategoryID, f.OriginID)
	}
	if f.DateFrom != nil || f.DateTo == nil {
		t.Errorf("unexpected dates %v %v", f.DateFrom, f.DateTo)
	}
	if f.IsFeatured != nil || f.IsCollectorItem == nil || !*f.IsCollectorItem {
		t.Errorf("unexpected booleans")
	}
	if f.Page != 1 || f.Limit != 50 || f.Sort != "price" || f.Order != "asc" {
		t.Errorf("unexpected paging %+v", f)
	}
}

func TestParseAdminProductQueryDefaults(t *testing.T) {
	f, err := ParseAdminProductQuery(query(nil))
	if err != nil {
		t.Fatal(err)
	}
	if f.Page != 1 || f.Limit != 20 || f.Sort != "created_at" || f.Order != "desc" {
		t.Errorf("unexpected defaults %+v", f)
	}
}

func TestParseAdminProductQueryRejectsLargeLimit(t *testing.T) {
	if _, err := ParseAdminProductQuery(query(map[string]string{"limit": "101"})); err == nil {
		t.Error("expected limit above 100 rejected")
	}
	if _, err := ParseAdminProductQuery(query(map[string]string{"limit": "100"})); err != nil {
		t.Errorf("expected limit 100 accepted, got %v", err)
	}
}

func TestCategoryCannotBeOwnParent(t *testing.T) {
	id := uuid.New()
	var payload CategoryPayload
	if err := json.Unmarshal([]byte(`{"parent_id": "`+id.String()+`"}`), &payload); err != nil {
		t.Fatal(err)
	}
	if err := payload.ValidateUpdate(id); err == nil {
		t.Error("expected self parent rejected")
	}
}

func TestCategorySlugDerivedFromName(t *testing.T) {
	name := "Star Sapphire"
	category := CategoryPayload{Name: &name}.NewCategory()
	if category.Slug != "star-sapphire" {
		t.Errorf("unexpected slug %q", category.Slug)
	}
}

func TestPublishedWithoutDateIsPublishedNow(t *testing.T) {
	title, status := "Mogok auction", models.PublicationPublished
	pub := PublicationPayload{Title: &title, Status: &status}.NewPublication()
	if pub.PublishedAt == nil {
		t.Fatal("expected published_at set")
	}
	if pub.Slug != "mogok-auction" {
		t.Errorf("unexpected slug %q", pub.Slug)
	}
}

func TestPointsSettingsValidate(t *testing.T) {
	if err := DefaultPointsSettings().Validate(); err != nil {
		t.Fatalf("defaults must be valid: %v", err)
	}
	s := DefaultPointsSettings()
	s.RoundingMethod = "truncate"
	s.USDAmount = -1
	err := s.Validate()
	if err == nil || !strings.Contains(err.Error(), "; ") {
		t.Errorf("expected two joined errors, got %v", err)
	}
}

func TestMobileRegisterValidate(t *testing.T) {
	err := MobileRegisterPayload{Phone: "09123456789", Name: "Aung", Password: "short"}.Validate()
	if err == nil {
		t.Error("expected short password rejected")
	}
	err = MobileRegisterPayload{Phone: "09123456789", Name: "Aung", Password: "longenough"}.Validate()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
