package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/gemmarket/internal/models"
)

// ErrCategoryCycle reports a parent change that would make a category its
// own ancestor.
var ErrCategoryCycle = errors.New("category cannot be a descendant of itself")

// CategoryRepository manages the category tree and its species links.
type CategoryRepository struct {
	crud[models.Category]
}

// NewCategoryRepository constructs CategoryRepository.
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{crud[models.Category]{db: db}}
}

// List returns every category with its species, ordered for display.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).
		Preload("Species", func(db *gorm.DB) *gorm.DB { return db.Order("name asc") }).
		Order("sort_order asc, name asc").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Get loads one category with its species.
func (r *CategoryRepository) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).
		Preload("Species", func(db *gorm.DB) *gorm.DB { return db.Order("name asc") }).
		First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Create inserts a category and links the given species.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category, speciesIDs []uuid.UUID) (*models.Category, error) {
	if err := ensureExists(ctx, r.db, &models.Category{}, category.ParentID, "parent_id"); err != nil {
		return nil, err
	}
	if err := r.create(ctx, category); err != nil {
		return nil, err
	}
	if len(speciesIDs) > 0 {
		if err := r.ReplaceSpecies(ctx, category.ID, speciesIDs); err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, category.ID)
}

// Update applies a partial update. A non-nil speciesIDs replaces the links.
func (r *CategoryRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any, speciesIDs *[]uuid.UUID) (*models.Category, error) {
	if parent, ok := updates["parent_id"].(*uuid.UUID); ok {
		if err := ensureExists(ctx, r.db, &models.Category{}, parent, "parent_id"); err != nil {
			return nil, err
		}
		if parent != nil {
			if err := r.checkAncestry(ctx, id, *parent); err != nil {
				return nil, err
			}
		}
	}
	if _, err := r.update(ctx, id, updates); err != nil {
		return nil, err
	}
	if speciesIDs != nil {
		if err := r.ReplaceSpecies(ctx, id, *speciesIDs); err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, id)
}

// checkAncestry walks up from parentID and fails if it reaches id.
func (r *CategoryRepository) checkAncestry(ctx context.Context, id, parentID uuid.UUID) error {
	seen := map[uuid.UUID]bool{}
	current := &parentID
	for current != nil {
		if *current == id {
			return ErrCategoryCycle
		}
		if seen[*current] {
			return nil
		}
		seen[*current] = true

		var node models.Category
		err := r.db.WithContext(ctx).Select("id", "parent_id").First(&node, "id = ?", *current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		current = node.ParentID
	}
	return nil
}

// ReplaceSpecies sets the species allowed under a category.
func (r *CategoryRepository) ReplaceSpecies(ctx context.Context, id uuid.UUID, speciesIDs []uuid.UUID) error {
	category, err := r.get(ctx, id)
	if err != nil {
		return err
	}

	species := make([]models.Species, 0, len(speciesIDs))
	if len(speciesIDs) > 0 {
		if err := r.db.WithContext(ctx).Where("id IN ?", speciesIDs).Find(&species).Error; err != nil {
			return err
		}
		if len(species) != len(uniqueIDs(speciesIDs)) {
			return ErrInvalidReference
		}
	}

	return r.db.WithContext(ctx).Model(category).Association("Species").Replace(species)
}

// Delete removes a category after detaching everything that references it.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := r.get(ctx, id)
	if err != nil {
		return err
	}
	if err := nullOut(ctx, r.db, "products", "category_id", id); err != nil {
		return err
	}
	if err := nullOut(ctx, r.db, "product_gemstones", "category_id", id); err != nil {
		return err
	}
	if err := nullOut(ctx, r.db, "categories", "parent_id", id); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(category).Association("Species").Clear(); err != nil {
		return err
	}
	return r.delete(ctx, id)
}

// Count returns the number of categories.
func (r *CategoryRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx)
}

// BuildTree nests a flat category list under its roots. Categories whose
// parent is missing from the list are treated as roots.
func BuildTree(categories []models.Category) []models.Category {
	byParent := make(map[uuid.UUID][]models.Category)
	known := make(map[uuid.UUID]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	var roots []models.Category
	for _, c := range categories {
		if c.ParentID == nil || !known[*c.ParentID] || *c.ParentID == c.ID {
			roots = append(roots, c)
			continue
		}
		byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
	}

	visited := make(map[uuid.UUID]bool, len(categories))
	var attach func(nodes []models.Category) []models.Category
	attach = func(nodes []models.Category) []models.Category {
		out := make([]models.Category, 0, len(nodes))
		for _, n := range nodes {
			if visited[n.ID] {
				continue
			}
			visited[n.ID] = true
			n.Children = attach(byParent[n.ID])
			out = append(out, n)
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
		return out
	}

	return attach(roots)
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// SpeciesRepository manages gemstone species.
type SpeciesRepository struct {
	crud[models.Species]
}

// NewSpeciesRepository constructs SpeciesRepository.
func NewSpeciesRepository(db *gorm.DB) *SpeciesRepository {
	return &SpeciesRepository{crud[models.Species]{db: db}}
}

// List returns all species by name.
func (r *SpeciesRepository) List(ctx context.Context) ([]models.Species, error) {
	return r.list(ctx, "name asc")
}

// Get loads one species with the categories it belongs to.
func (r *SpeciesRepository) Get(ctx context.Context, id uuid.UUID) (*models.Species, error) {
	var species models.Species
	if err := r.db.WithContext(ctx).Preload("Categories").First(&species, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &species, nil
}

// Create inserts a species.
func (r *SpeciesRepository) Create(ctx context.Context, species *models.Species) error {
	return r.create(ctx, species)
}

// Update applies a partial update.
func (r *SpeciesRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Species, error) {
	return r.update(ctx, id, updates)
}

// Delete removes a species and its references.
func (r *SpeciesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	species, err := r.get(ctx, id)
	if err != nil {
		return err
	}
	if err := nullOut(ctx, r.db, "products", "species_id", id); err != nil {
		return err
	}
	if err := nullOut(ctx, r.db, "product_gemstones", "species_id", id); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(species).Association("Categories").Clear(); err != nil {
		return err
	}
	return r.delete(ctx, id)
}

// Count returns the number of species.
func (r *SpeciesRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx)
}
