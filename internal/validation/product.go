package validation

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/gemmarket/internal/models"
)

// Text attributes the admin form may submit as multi-select arrays. They
// are stored as one comma separated string.
var productListFields = []string{"color", "shape", "treatment", "metal"}

var productNumberFields = []string{"weight"}

var productBoolFields = []string{"is_featured", "is_collector_item", "is_privilege_assist"}

// NormalizeProductBody coerces a raw product body into the shape
// ProductPayload decodes: list attributes are joined, strings trimmed,
// numeric and boolean strings converted. It is idempotent.
func NormalizeProductBody(body map[string]any) map[string]any {
	out := make(map[string]any, len(body))
	for k, v := range body {
		if s, ok := v.(string); ok {
			v = strings.TrimSpace(s)
		}
		out[k] = v
	}

	for _, key := range productListFields {
		items, ok := out[key].([]any)
		if !ok {
			continue
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		out[key] = strings.Join(parts, ", ")
	}

	for _, key := range productNumberFields {
		s, ok := out[key].(string)
		if !ok {
			continue
		}
		if s == "" {
			delete(out, key)
			continue
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			out[key] = f
		}
	}

	for _, key := range productBoolFields {
		s, ok := out[key].(string)
		if !ok {
			continue
		}
		switch strings.ToLower(s) {
		case "true", "on", "1", "yes":
			out[key] = true
		case "false", "off", "0", "no", "":
			out[key] = false
		}
	}

	return out
}

// ImageInput is one gallery entry. Order follows the array order unless
// SortOrder is given.
type ImageInput struct {
	URL       string `json:"url"`
	SortOrder *int   `json:"sort_order"`
}

// GemstoneInput describes a stone set in a jewellery piece.
type GemstoneInput struct {
	CategoryID OptionalID `json:"category_id"`
	SpeciesID  OptionalID `json:"species_id"`
	StoneCut   string     `json:"stone_cut"`
	Shape      string     `json:"shape"`
	Color      string     `json:"color"`
	Weight     float64    `json:"weight"`
	Count      int        `json:"count"`
}

// ProductPayload is the create/update schema of a product. Nil fields
// were not supplied.
type ProductPayload struct {
	Title             *string          `json:"title"`
	SKU               *string          `json:"sku"`
	Description       *string          `json:"description"`
	Price             *decimal.Decimal `json:"price"`
	Currency          *string          `json:"currency"`
	ProductType       *string          `json:"product_type"`
	CategoryID        OptionalID       `json:"category_id"`
	SpeciesID         OptionalID       `json:"species_id"`
	StoneCut          *string          `json:"stone_cut"`
	Metal             *string          `json:"metal"`
	Weight            *float64         `json:"weight"`
	Color             *string          `json:"color"`
	Shape             *string          `json:"shape"`
	Treatment         *string          `json:"treatment"`
	OriginID          OptionalID       `json:"origin_id"`
	LaboratoryID      OptionalID       `json:"laboratory_id"`
	CertificateNumber *string          `json:"certificate_number"`
	CertificateDate   *string          `json:"certificate_date"`
	CertificateURL    *string          `json:"certificate_url"`
	Status            *string          `json:"status"`
	ModerationStatus  *string          `json:"moderation_status"`
	IsFeatured        *bool            `json:"is_featured"`
	IsCollectorItem   *bool            `json:"is_collector_item"`
	IsPrivilegeAssist *bool            `json:"is_privilege_assist"`
	Images            *[]ImageInput    `json:"images"`
	Gemstones         *[]GemstoneInput `json:"gemstones"`
}

// DecodeProductBody normalises and decodes a JSON product body.
func DecodeProductBody(raw []byte) (ProductPayload, error) {
	var body map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil || body == nil {
		return ProductPayload{}, Errors{"invalid request body"}
	}
	normalized, err := json.Marshal(NormalizeProductBody(body))
	if err != nil {
		return ProductPayload{}, Errors{"invalid request body"}
	}
	var payload ProductPayload
	if err := json.Unmarshal(normalized, &payload); err != nil {
		return ProductPayload{}, Errors{"invalid request body: " + jsonFieldError(err)}
	}
	return payload, nil
}

func jsonFieldError(err error) string {
	if typeErr, ok := err.(*json.UnmarshalTypeError); ok && typeErr.Field != "" {
		return typeErr.Field + " has the wrong type"
	}
	return "malformed value"
}

// StripPrivileged drops fields only administrators may set.
func (p *ProductPayload) StripPrivileged() {
	p.ModerationStatus = nil
	p.IsFeatured = nil
}

// ValidateCreate checks a payload for a new product.
func (p ProductPayload) ValidateCreate() error {
	var errs Errors
	if trimmed(p.Title) == "" {
		errs.add("title is required")
	}
	if trimmed(p.SKU) == "" {
		errs.add("sku is required")
	}
	if p.Price == nil {
		errs.add("price is required")
	}
	if p.ProductType == nil {
		errs.add("product_type is required")
	}
	p.validateFields(&errs)
	return errs.Err()
}

// ValidateUpdate checks the supplied fields of a partial update.
func (p ProductPayload) ValidateUpdate() error {
	var errs Errors
	if p.Title != nil && trimmed(p.Title) == "" {
		errs.add("title must not be empty")
	}
	if p.SKU != nil && trimmed(p.SKU) == "" {
		errs.add("sku must not be empty")
	}
	p.validateFields(&errs)
	return errs.Err()
}

func (p ProductPayload) validateFields(errs *Errors) {
	if p.Title != nil && len(trimmed(p.Title)) > 200 {
		errs.add("title must be at most 200 characters")
	}
	if p.Price != nil && p.Price.IsNegative() {
		errs.add("price must not be negative")
	}
	if p.Currency != nil && !oneOf(*p.Currency, models.CurrencyMMK, models.CurrencyUSD, models.CurrencyKRW) {
		errs.add("currency must be one of MMK, USD, KRW")
	}
	if p.ProductType != nil && !oneOf(*p.ProductType, models.ProductTypeLooseStone, models.ProductTypeJewellery) {
		errs.add("product_type must be loose_stone or jewellery")
	}
	if p.StoneCut != nil && *p.StoneCut != "" && !oneOf(*p.StoneCut, models.CutFaceted, models.CutCabochon) {
		errs.add("stone_cut must be Faceted or Cabochon")
	}
	if p.Weight != nil && *p.Weight < 0 {
		errs.add("weight must not be negative")
	}
	if p.Status != nil && !oneOf(*p.Status, models.StatusActive, models.StatusArchive, models.StatusSold, models.StatusHidden) {
		errs.add("status must be one of active, archive, sold, hidden")
	}
	if p.ModerationStatus != nil && !oneOf(*p.ModerationStatus, models.ModerationPending, models.ModerationApproved, models.ModerationRejected) {
		errs.add("moderation_status must be one of pending, approved, rejected")
	}
	for _, ref := range []struct {
		name string
		id   OptionalID
	}{
		{"category_id", p.CategoryID},
		{"species_id", p.SpeciesID},
		{"origin_id", p.OriginID},
		{"laboratory_id", p.LaboratoryID},
	} {
		if ref.id.Invalid {
			errs.add("%s must be a valid id", ref.name)
		}
	}
	if p.CertificateDate != nil && *p.CertificateDate != "" {
		if _, err := time.Parse(time.DateOnly, *p.CertificateDate); err != nil {
			errs.add("certificate_date must be a YYYY-MM-DD date")
		}
	}
	if p.Images != nil {
		for i, img := range *p.Images {
			if strings.TrimSpace(img.URL) == "" {
				errs.add("images[%d].url is required", i)
			}
		}
	}
	if p.Gemstones != nil {
		if p.ProductType != nil && *p.ProductType == models.ProductTypeLooseStone && len(*p.Gemstones) > 0 {
			errs.add("gemstones are only allowed on jewellery")
		}
		for i, g := range *p.Gemstones {
			if g.CategoryID.Invalid || g.SpeciesID.Invalid {
				errs.add("gemstones[%d] has an invalid id", i)
			}
			if g.StoneCut != "" && !oneOf(g.StoneCut, models.CutFaceted, models.CutCabochon) {
				errs.add("gemstones[%d].stone_cut must be Faceted or Cabochon", i)
			}
			if g.Count < 0 || g.Weight < 0 {
				errs.add("gemstones[%d] count and weight must not be negative", i)
			}
		}
	}
}

// NewProduct builds the model for a validated create payload.
func (p ProductPayload) NewProduct() models.Product {
	product := models.Product{
		Title:            trimmed(p.Title),
		SKU:              trimmed(p.SKU),
		Currency:         models.CurrencyMMK,
		ProductType:      *p.ProductType,
		Status:           models.StatusActive,
		ModerationStatus: models.ModerationPending,
		CategoryID:       p.CategoryID.ID,
		SpeciesID:        p.SpeciesID.ID,
		OriginID:         p.OriginID.ID,
		LaboratoryID:     p.LaboratoryID.ID,
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	setString(&product.Description, p.Description)
	setString(&product.Currency, p.Currency)
	setString(&product.StoneCut, p.StoneCut)
	setString(&product.Metal, p.Metal)
	setString(&product.Color, p.Color)
	setString(&product.Shape, p.Shape)
	setString(&product.Treatment, p.Treatment)
	setString(&product.CertificateNumber, p.CertificateNumber)
	setString(&product.CertificateURL, p.CertificateURL)
	setString(&product.Status, p.Status)
	setString(&product.ModerationStatus, p.ModerationStatus)
	if p.Weight != nil {
		product.Weight = *p.Weight
	}
	product.CertificateDate = parseDate(p.CertificateDate)
	if p.IsFeatured != nil {
		product.IsFeatured = *p.IsFeatured
	}
	if p.IsCollectorItem != nil {
		product.IsCollectorItem = *p.IsCollectorItem
	}
	if p.IsPrivilegeAssist != nil {
		product.IsPrivilegeAssist = *p.IsPrivilegeAssist
	}
	if p.Images != nil {
		product.Images = p.ProductImages()
	}
	if p.Gemstones != nil {
		product.Gemstones = p.ProductGemstones()
	}
	return product
}

// Updates returns the column changes of a partial update. Child
// collections are handled separately.
func (p ProductPayload) Updates() map[string]any {
	updates := map[string]any{}
	putString(updates, "title", p.Title)
	putString(updates, "sku", p.SKU)
	putString(updates, "description", p.Description)
	putString(updates, "currency", p.Currency)
	putString(updates, "product_type", p.ProductType)
	putString(updates, "stone_cut", p.StoneCut)
	putString(updates, "metal", p.Metal)
	putString(updates, "color", p.Color)
	putString(updates, "shape", p.Shape)
	putString(updates, "treatment", p.Treatment)
	putString(updates, "certificate_number", p.CertificateNumber)
	putString(updates, "certificate_url", p.CertificateURL)
	putString(updates, "status", p.Status)
	putString(updates, "moderation_status", p.ModerationStatus)
	if p.Price != nil {
		updates["price"] = *p.Price
	}
	if p.Weight != nil {
		updates["weight"] = *p.Weight
	}
	if p.CertificateDate != nil {
		updates["certificate_date"] = parseDate(p.CertificateDate)
	}
	if p.CategoryID.Set {
		updates["category_id"] = p.CategoryID.Value()
	}
	if p.SpeciesID.Set {
		updates["species_id"] = p.SpeciesID.Value()
	}
	if p.OriginID.Set {
		updates["origin_id"] = p.OriginID.Value()
	}
	if p.LaboratoryID.Set {
		updates["laboratory_id"] = p.LaboratoryID.Value()
	}
	if p.IsFeatured != nil {
		updates["is_featured"] = *p.IsFeatured
	}
	if p.IsCollectorItem != nil {
		updates["is_collector_item"] = *p.IsCollectorItem
	}
	if p.IsPrivilegeAssist != nil {
		updates["is_privilege_assist"] = *p.IsPrivilegeAssist
	}
	return updates
}

// ProductImages converts the supplied gallery into models.
func (p ProductPayload) ProductImages() []models.ProductImage {
	if p.Images == nil {
		return nil
	}
	images := make([]models.ProductImage, 0, len(*p.Images))
	for i, img := range *p.Images {
		order := i
		if img.SortOrder != nil {
			order = *img.SortOrder
		}
		images = append(images, models.ProductImage{URL: strings.TrimSpace(img.URL), SortOrder: order})
	}
	return images
}

// ProductGemstones converts the supplied stones into models.
func (p ProductPayload) ProductGemstones() []models.ProductGemstone {
	if p.Gemstones == nil {
		return nil
	}
	stones := make([]models.ProductGemstone, 0, len(*p.Gemstones))
	for i, g := range *p.Gemstones {
		count := g.Count
		if count == 0 {
			count = 1
		}
		stones = append(stones, models.ProductGemstone{
			CategoryID: g.CategoryID.ID,
			SpeciesID:  g.SpeciesID.ID,
			StoneCut:   g.StoneCut,
			Shape:      g.Shape,
			Color:      g.Color,
			Weight:     g.Weight,
			Count:      count,
			SortOrder:  i,
		})
	}
	return stones
}

// ModerationPayload is the schema of the admin moderation action.
type ModerationPayload struct {
	ModerationStatus string `json:"moderation_status"`
	Note             string `json:"note"`
}

func (p ModerationPayload) Validate() error {
	if !oneOf(p.ModerationStatus, models.ModerationPending, models.ModerationApproved, models.ModerationRejected) {
		return Errors{"moderation_status must be one of pending, approved, rejected"}
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func putString(updates map[string]any, column string, value *string) {
	if value != nil {
		updates[column] = strings.TrimSpace(*value)
	}
}

func parseDate(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, *value)
	if err != nil {
		return nil
	}
	return &t
}
