package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/gemmarket/internal/models"
)

// AdminProductFilter selects rows for the back office product table. Zero
// values mean "no filter".
type AdminProductFilter struct {
	Search            string
	ProductType       string
	CategoryID        *uuid.UUID
	Status            string
	ModerationStatus  string
	StoneCut          string
	Shape             string
	OriginID          *uuid.UUID
	LaboratoryID      *uuid.UUID
	DateFrom          *time.Time
	DateTo            *time.Time
	IsFeatured        *bool
	IsCollectorItem   *bool
	IsPrivilegeAssist *bool
	Page              int
	Limit             int
	Sort              string
	Order             string
}

// AdminProductRow is a denormalised product row of the admin table.
type AdminProductRow struct {
	ID                uuid.UUID       `json:"id"`
	Title             string          `json:"title"`
	SKU               string          `gorm:"column:sku" json:"sku"`
	Price             decimal.Decimal `json:"price"`
	Currency          string          `json:"currency"`
	ProductType       string          `json:"product_type"`
	Status            string          `json:"status"`
	ModerationStatus  string          `json:"moderation_status"`
	StoneCut          string          `json:"stone_cut"`
	Shape             string          `json:"shape"`
	Weight            float64         `json:"weight"`
	IsFeatured        bool            `json:"is_featured"`
	IsCollectorItem   bool            `json:"is_collector_item"`
	IsPrivilegeAssist bool            `json:"is_privilege_assist"`
	CategoryID        *uuid.UUID      `json:"category_id"`
	CategoryName      *string         `json:"category_name"`
	SellerID          uuid.UUID       `json:"seller_id"`
	SellerName        string          `json:"seller_name"`
	SellerEmail       string          `json:"seller_email"`
	SellerPhone       *string         `json:"seller_phone"`
	Thumbnail         *string         `gorm:"-" json:"thumbnail"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// AdminProductPage is one page of the admin table. Total counts every row
// matching the filter.
type AdminProductPage struct {
	Products []AdminProductRow `json:"products"`
	Total    int64             `json:"total"`
}

// PublicProductFilter selects listings visible to buyers.
type PublicProductFilter struct {
	Search      string
	ProductType string
	CategoryID  *uuid.UUID
	SpeciesID   *uuid.UUID
	Featured    *bool
	Page        int
	Limit       int
}

var adminSortColumns = map[string]string{
	"created_at": "p.created_at",
	"updated_at": "p.updated_at",
	"price":      "p.price",
	"title":      "p.title",
	"weight":     "p.weight",
}

const adminProductColumns = `p.id, p.title, p.sku, p.price, p.currency, p.product_type, p.status,
	p.moderation_status, p.stone_cut, p.shape, p.weight, p.is_featured, p.is_collector_item,
	p.is_privilege_assist, p.category_id, c.name AS category_name, p.seller_id,
	u.name AS seller_name, u.email AS seller_email, u.phone AS seller_phone,
	p.created_at, p.updated_at`

// ProductRepository is the data access of products and their child rows.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository constructs ProductRepository.
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// AdminList runs the filtered, paginated admin product query. Images are
// fetched by a second query so that a product with several images does
// not repeat across rows.
func (r *ProductRepository) AdminList(ctx context.Context, f AdminProductFilter) (AdminProductPage, error) {
	page := AdminProductPage{Products: []AdminProductRow{}}

	if err := r.adminQuery(ctx, f).Count(&page.Total).Error; err != nil {
		return page, err
	}
	if page.Total == 0 {
		return page, nil
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if f.Page > 1 {
		offset = (f.Page - 1) * limit
	}

	if err := r.adminQuery(ctx, f).
		Select(adminProductColumns).
		Order(adminOrder(f.Sort, f.Order)).
		Limit(limit).
		Offset(offset).
		Scan(&page.Products).Error; err != nil {
		return page, err
	}

	ids := make([]uuid.UUID, len(page.Products))
	for i, row := range page.Products {
		ids[i] = row.ID
	}
	thumbs, err := r.thumbnails(ctx, ids)
	if err != nil {
		return page, err
	}
	for i := range page.Products {
		if url, ok := thumbs[page.Products[i].ID]; ok {
			page.Products[i].Thumbnail = &url
		}
	}

	return page, nil
}

func (r *ProductRepository) adminQuery(ctx context.Context, f AdminProductFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Table("products AS p").
		Joins("JOIN users AS u ON u.id = p.seller_id").
		Joins("LEFT JOIN categories AS c ON c.id = p.category_id")

	if search := strings.TrimSpace(f.Search); search != "" {
		q := containsPattern(search)
		query = query.Where(
			"(LOWER(p.title) LIKE ?"+likeEscape+
				" OR LOWER(u.name) LIKE ?"+likeEscape+
				" OR LOWER(COALESCE(u.phone, '')) LIKE ?"+likeEscape+
				" OR LOWER(u.email) LIKE ?"+likeEscape+")",
			q, q, q, q,
		)
	}
	if f.ProductType != "" {
		query = query.Where("p.product_type = ?", f.ProductType)
	}
	if f.CategoryID != nil {
		query = query.Where("p.category_id = ?", *f.CategoryID)
	}
	if f.Status != "" {
		query = query.Where("p.status = ?", f.Status)
	}
	if f.ModerationStatus != "" {
		query = query.Where("p.moderation_status = ?", f.ModerationStatus)
	}
	if f.StoneCut != "" {
		query = query.Where("p.stone_cut = ?", f.StoneCut)
	}
	if f.Shape != "" {
		query = query.Where("LOWER(p.shape) LIKE ?"+likeEscape, containsPattern(f.Shape))
	}
	if f.OriginID != nil {
		query = query.Where("p.origin_id = ?", *f.OriginID)
	}
	if f.LaboratoryID != nil {
		query = query.Where("p.laboratory_id = ?", *f.LaboratoryID)
	}
	if f.DateFrom != nil {
		query = query.Where("p.created_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		query = query.Where("p.created_at < ?", f.DateTo.AddDate(0, 0, 1))
	}
	if f.IsFeatured != nil {
		query = query.Where("p.is_featured = ?", *f.IsFeatured)
	}
	if f.IsCollectorItem != nil {
		query = query.Where("p.is_collector_item = ?", *f.IsCollectorItem)
	}
	if f.IsPrivilegeAssist != nil {
		query = query.Where("p.is_privilege_assist = ?", *f.IsPrivilegeAssist)
	}

	return query
}

func adminOrder(sort, order string) string {
	column, ok := adminSortColumns[sort]
	if !ok {
		column = adminSortColumns["created_at"]
	}
	direction := "DESC"
	if strings.EqualFold(order, "asc") {
		direction = "ASC"
	}
	return column + " " + direction + ", p.id " + direction
}

// thumbnails returns the first image of each product.
func (r *ProductRepository) thumbnails(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	thumbs := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return thumbs, nil
	}

	var images []models.ProductImage
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", ids).
		Order("sort_order asc, created_at asc").
		Find(&images).Error; err != nil {
		return nil, err
	}
	for _, img := range images {
		if _, seen := thumbs[img.ProductID]; !seen {
			thumbs[img.ProductID] = img.URL
		}
	}
	return thumbs, nil
}

// ListPublic returns active, approved listings.
func (r *ProductRepository) ListPublic(ctx context.Context, f PublicProductFilter) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("status = ? AND moderation_status = ?", models.StatusActive, models.ModerationApproved)

	if search := strings.TrimSpace(f.Search); search != "" {
		q := containsPattern(search)
		query = query.Where("(LOWER(title) LIKE ?"+likeEscape+" OR LOWER(description) LIKE ?"+likeEscape+")", q, q)
	}
	if f.ProductType != "" {
		query = query.Where("product_type = ?", f.ProductType)
	}
	if f.CategoryID != nil {
		query = query.Where("category_id = ?", *f.CategoryID)
	}
	if f.SpeciesID != nil {
		query = query.Where("species_id = ?", *f.SpeciesID)
	}
	if f.Featured != nil {
		query = query.Where("is_featured = ?", *f.Featured)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if f.Page > 1 {
		offset = (f.Page - 1) * limit
	}

	var products []models.Product
	if err := query.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }).
		Preload("Category").
		Order("is_featured desc, created_at desc").
		Limit(limit).Offset(offset).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Get loads a product with every relation.
func (r *ProductRepository) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }).
		Preload("Gemstones", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }).
		Preload("Category").
		Preload("Species").
		Preload("Origin").
		Preload("Laboratory").
		Preload("Seller").
		First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// SellerOf returns the owner of a product.
func (r *ProductRepository) SellerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Select("id", "seller_id").First(&product, "id = ?", id).Error; err != nil {
		return uuid.Nil, err
	}
	return product.SellerID, nil
}

// ProductRefs are the optional foreign keys of a product write.
type ProductRefs struct {
	CategoryID   *uuid.UUID
	SpeciesID    *uuid.UUID
	OriginID     *uuid.UUID
	LaboratoryID *uuid.UUID
	Gemstones    []models.ProductGemstone
}

type refCheck struct {
	model any
	id    *uuid.UUID
	field string
}

// CheckRefs verifies that every referenced row exists.
func (r *ProductRepository) CheckRefs(ctx context.Context, refs ProductRefs) error {
	checks := []refCheck{
		{&models.Category{}, refs.CategoryID, "category_id"},
		{&models.Species{}, refs.SpeciesID, "species_id"},
		{&models.Origin{}, refs.OriginID, "origin_id"},
		{&models.Laboratory{}, refs.LaboratoryID, "laboratory_id"},
	}
	for _, g := range refs.Gemstones {
		checks = append(checks,
			refCheck{&models.Category{}, g.CategoryID, "gemstones.category_id"},
			refCheck{&models.Species{}, g.SpeciesID, "gemstones.species_id"},
		)
	}
	for _, check := range checks {
		if err := ensureExists(ctx, r.db, check.model, check.id, check.field); err != nil {
			return err
		}
	}
	return nil
}

// Create inserts a product together with its images and gemstones.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update applies a partial update. Images and gemstones, when non-nil,
// replace the stored ones. The steps are not atomic.
func (r *ProductRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any, images *[]models.ProductImage, gemstones *[]models.ProductGemstone) (*models.Product, error) {
	db := r.db.WithContext(ctx)

	if len(updates) > 0 {
		res := db.Model(&models.Product{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	} else if _, err := r.SellerOf(ctx, id); err != nil {
		return nil, err
	}

	if images != nil {
		if err := db.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return nil, err
		}
		if len(*images) > 0 {
			for i := range *images {
				(*images)[i].ProductID = id
			}
			if err := db.Create(images).Error; err != nil {
				return nil, err
			}
		}
	}

	if gemstones != nil {
		if err := db.Where("product_id = ?", id).Delete(&models.ProductGemstone{}).Error; err != nil {
			return nil, err
		}
		if len(*gemstones) > 0 {
			for i := range *gemstones {
				(*gemstones)[i].ProductID = id
			}
			if err := db.Create(gemstones).Error; err != nil {
				return nil, err
			}
		}
	}

	return r.Get(ctx, id)
}

// Delete removes a product and its child rows.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
		return err
	}
	if err := db.Where("product_id = ?", id).Delete(&models.ProductGemstone{}).Error; err != nil {
		return err
	}
	res := db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteBySeller removes every product owned by a user.
func (r *ProductRepository) DeleteBySeller(ctx context.Context, sellerID uuid.UUID) error {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("seller_id = ?", sellerID).Pluck("id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if err := r.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// SetModeration records an admin review decision.
func (r *ProductRepository) SetModeration(ctx context.Context, id uuid.UUID, status, note string) error {
	return r.updateColumns(ctx, id, map[string]any{"moderation_status": status, "moderation_note": note})
}

// SetFeatured toggles the featured flag.
func (r *ProductRepository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	return r.updateColumns(ctx, id, map[string]any{"is_featured": featured})
}

func (r *ProductRepository) updateColumns(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByModeration returns the number of products per moderation status.
func (r *ProductRepository) CountByModeration(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		ModerationStatus string
		Count            int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("moderation_status, count(*) AS count").
		Group("moderation_status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ModerationStatus] = row.Count
	}
	return counts, nil
}
