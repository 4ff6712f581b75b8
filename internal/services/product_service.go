package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/gemmarket/internal/cache"
	"github.com/example/gemmarket/internal/models"
	"github.com/example/gemmarket/internal/repository"
	"github.com/example/gemmarket/internal/validation"
)

// ProductService implements listing reads and writes.
type ProductService struct {
	repo     *repository.ProductRepository
	cache    *cache.Cache
	notifier ModerationNotifier
	log      *zap.Logger
}

// NewProductService constructs ProductService. notifier may be nil.
func NewProductService(repo *repository.ProductRepository, c *cache.Cache, notifier ModerationNotifier, log *zap.Logger) *ProductService {
	return &ProductService{repo: repo, cache: c, notifier: notifier, log: log}
}

// PublicProductPage is one page of the public listing.
type PublicProductPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

func filterKey(prefix string, filter any) string {
	raw, _ := json.Marshal(filter)
	return prefix + string(raw)
}

// ListPublic returns active, approved listings.
func (s *ProductService) ListPublic(ctx context.Context, filter repository.PublicProductFilter) (PublicProductPage, error) {
	key := filterKey("products:public:", filter)
	return cache.Remember(ctx, s.cache, key, cache.Tags(cache.TagProducts, ""), func() (PublicProductPage, error) {
		products, total, err := s.repo.ListPublic(ctx, filter)
		if err != nil {
			return PublicProductPage{}, err
		}
		if products == nil {
			products = []models.Product{}
		}
		return PublicProductPage{Products: products, Total: total}, nil
	})
}

// AdminList runs the admin product table query.
func (s *ProductService) AdminList(ctx context.Context, filter repository.AdminProductFilter) (repository.AdminProductPage, error) {
	key := filterKey("products:admin:", filter)
	return cache.Remember(ctx, s.cache, key, cache.Tags(cache.TagProducts, ""), func() (repository.AdminProductPage, error) {
		return s.repo.AdminList(ctx, filter)
	})
}

// Get loads a product with its relations.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return cache.Remember(ctx, s.cache, cache.ItemTag(cache.TagProducts, id.String()), cache.Tags(cache.TagProducts, id.String()), func() (*models.Product, error) {
		return s.repo.Get(ctx, id)
	})
}

// PublicSeller is the part of a seller account shown to buyers.
type PublicSeller struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// PublicProduct is a listing as served on the public API. Seller replaces
// the embedded account row.
type PublicProduct struct {
	models.Product
	Seller *PublicSeller `json:"seller,omitempty"`
}

func publicView(product *models.Product) *PublicProduct {
	view := &PublicProduct{Product: *product}
	view.Product.Seller = nil
	if product.Seller != nil {
		view.Seller = &PublicSeller{ID: product.Seller.ID, Name: product.Seller.Name}
	}
	return view
}

// GetVisible returns the public view of a product if viewer may see it.
// Listings that are not both active and approved are only visible to their
// seller and admins.
func (s *ProductService) GetVisible(ctx context.Context, viewer *models.User, id uuid.UUID) (*PublicProduct, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.Status == models.StatusActive && product.ModerationStatus == models.ModerationApproved {
		return publicView(product), nil
	}
	if viewer != nil && (viewer.IsAdmin() || viewer.ID == product.SellerID) {
		return publicView(product), nil
	}
	return nil, gorm.ErrRecordNotFound
}

// Create stores a listing sold by actor. Listings from non-admins start in
// pending moderation and trigger a notification.
func (s *ProductService) Create(ctx context.Context, actor *models.User, payload validation.ProductPayload) (*models.Product, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if !actor.IsAdmin() {
		payload.StripPrivileged()
	}
	if err := payload.ValidateCreate(); err != nil {
		return nil, err
	}

	product := payload.NewProduct()
	product.SellerID = actor.ID
	if err := s.repo.CheckRefs(ctx, repository.ProductRefs{
		CategoryID:   product.CategoryID,
		SpeciesID:    product.SpeciesID,
		OriginID:     product.OriginID,
		LaboratoryID: product.LaboratoryID,
		Gemstones:    product.Gemstones,
	}); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.TagProducts, "")

	if !actor.IsAdmin() && s.notifier != nil {
		go func(p models.Product, seller models.User) {
			if err := s.notifier.NotifyPendingProduct(context.Background(), p, seller); err != nil {
				s.log.Warn("moderation notification failed", zap.String("product_id", p.ID.String()), zap.Error(err))
			}
		}(product, *actor)
	}

	return s.repo.Get(ctx, product.ID)
}

// authorize loads the owner of id and checks actor may modify it.
func (s *ProductService) authorize(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if actor == nil {
		return ErrUnauthorized
	}
	sellerID, err := s.repo.SellerOf(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && sellerID != actor.ID {
		return ErrForbidden
	}
	return nil
}

// Update applies a partial update on behalf of the seller or an admin.
func (s *ProductService) Update(ctx context.Context, actor *models.User, id uuid.UUID, payload validation.ProductPayload) (*models.Product, error) {
	if err := s.authorize(ctx, actor, id); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		payload.StripPrivileged()
	}
	if err := payload.ValidateUpdate(); err != nil {
		return nil, err
	}

	gemstones := payload.ProductGemstones()
	if len(gemstones) > 0 && payload.ProductType == nil {
		current, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.ProductType != models.ProductTypeJewellery {
			return nil, validation.Errors{"gemstones are only allowed on jewellery"}
		}
	}

	refs := repository.ProductRefs{
		CategoryID:   payload.CategoryID.ID,
		SpeciesID:    payload.SpeciesID.ID,
		OriginID:     payload.OriginID.ID,
		LaboratoryID: payload.LaboratoryID.ID,
		Gemstones:    gemstones,
	}
	if err := s.repo.CheckRefs(ctx, refs); err != nil {
		return nil, err
	}

	var images *[]models.ProductImage
	if payload.Images != nil {
		list := payload.ProductImages()
		images = &list
	}
	var stones *[]models.ProductGemstone
	if payload.Gemstones != nil {
		stones = &gemstones
	}

	product, err := s.repo.Update(ctx, id, payload.Updates(), images, stones)
	// A failure after the first step still leaves changed rows behind.
	s.cache.Invalidate(ctx, cache.TagProducts, id.String())
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a listing on behalf of the seller or an admin.
func (s *ProductService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.TagProducts, id.String())
	return nil
}

// Moderate records an admin review decision.
func (s *ProductService) Moderate(ctx context.Context, id uuid.UUID, payload validation.ModerationPayload) (*models.Product, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.SetModeration(ctx, id, payload.ModerationStatus, payload.Note); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.TagProducts, id.String())
	return s.repo.Get(ctx, id)
}

// SetFeatured toggles the featured flag.
func (s *ProductService) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*models.Product, error) {
	if err := s.repo.SetFeatured(ctx, id, featured); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.TagProducts, id.String())
	return s.repo.Get(ctx, id)
}

// ModerationCounts returns the number of products per moderation state.
func (s *ProductService) ModerationCounts(ctx context.Context) (map[string]int64, error) {
	return s.repo.CountByModeration(ctx)
}
