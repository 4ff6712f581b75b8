package validation

import (
	"strings"

	"github.com/google/uuid"

	"github.com/example/gemmarket/internal/models"
	"github.com/example/gemmarket/internal/utils"
)

// CategoryPayload is the create/update schema of a category.
type CategoryPayload struct {
	Name        *string      `json:"name"`
	Slug        *string      `json:"slug"`
	Description *string      `json:"description"`
	ParentID    OptionalID   `json:"parent_id"`
	SortOrder   *int         `json:"sort_order"`
	SpeciesIDs  *[]uuid.UUID `json:"species_ids"`
}

// ValidateCreate checks a new category.
func (p CategoryPayload) ValidateCreate() error {
	var errs Errors
	if trimmed(p.Name) == "" {
		errs.add("name is required")
	}
	p.validateFields(&errs)
	return errs.Err()
}

// ValidateUpdate checks a partial category update. A category cannot
// become its own parent.
func (p CategoryPayload) ValidateUpdate(id uuid.UUID) error {
	var errs Errors
	if p.Name != nil && trimmed(p.Name) == "" {
		errs.add("name must not be empty")
	}
	if p.ParentID.ID != nil && *p.ParentID.ID == id {
		errs.add("category cannot be its own parent")
	}
	p.validateFields(&errs)
	return errs.Err()
}

func (p CategoryPayload) validateFields(errs *Errors) {
	validateName(errs, p.Name)
	validateSlug(errs, p.Slug)
	if p.ParentID.Invalid {
		errs.add("parent_id must be a valid id")
	}
}

// NewCategory builds the model for a validated create payload. A missing
// slug is derived from the name.
func (p CategoryPayload) NewCategory() models.Category {
	category := models.Category{
		Name:     trimmed(p.Name),
		Slug:     slugOr(p.Slug, p.Name),
		ParentID: p.ParentID.ID,
	}
	setString(&category.Description, p.Description)
	if p.SortOrder != nil {
		category.SortOrder = *p.SortOrder
	}
	return category
}

// Updates returns the column changes of a partial update.
func (p CategoryPayload) Updates() map[string]any {
	updates := map[string]any{}
	putString(updates, "name", p.Name)
	putString(updates, "description", p.Description)
	if slug := slugOr(p.Slug, p.Name); p.Slug != nil && slug != "" {
		updates["slug"] = slug
	}
	if p.ParentID.Set {
		updates["parent_id"] = p.ParentID.ID
	}
	if p.SortOrder != nil {
		updates["sort_order"] = *p.SortOrder
	}
	return updates
}

// SpeciesLinkPayload replaces the species allowed under a category.
type SpeciesLinkPayload struct {
	SpeciesIDs []uuid.UUID `json:"species_ids"`
}

// ReferencePayload is the create/update schema shared by species,
// laboratories and origins. Fields an entity lacks are ignored.
type ReferencePayload struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Country     *string `json:"country"`
	Website     *string `json:"website"`
}

// ValidateCreate checks a new reference entity.
func (p ReferencePayload) ValidateCreate() error {
	var errs Errors
	if trimmed(p.Name) == "" {
		errs.add("name is required")
	}
	p.validateFields(&errs)
	return errs.Err()
}

// ValidateUpdate checks a partial update.
func (p ReferencePayload) ValidateUpdate() error {
	var errs Errors
	if p.Name != nil && trimmed(p.Name) == "" {
		errs.add("name must not be empty")
	}
	p.validateFields(&errs)
	return errs.Err()
}

func (p ReferencePayload) validateFields(errs *Errors) {
	validateName(errs, p.Name)
	validateSlug(errs, p.Slug)
	if w := trimmed(p.Website); w != "" && !strings.HasPrefix(w, "http://") && !strings.HasPrefix(w, "https://") {
		errs.add("website must be an http(s) URL")
	}
}

func (p ReferencePayload) NewSpecies() models.Species {
	species := models.Species{Name: trimmed(p.Name), Slug: slugOr(p.Slug, p.Name)}
	setString(&species.Description, p.Description)
	return species
}

func (p ReferencePayload) NewLaboratory() models.Laboratory {
	lab := models.Laboratory{Name: trimmed(p.Name), Slug: slugOr(p.Slug, p.Name)}
	setString(&lab.Description, p.Description)
	setString(&lab.Country, p.Country)
	setString(&lab.Website, p.Website)
	return lab
}

func (p ReferencePayload) NewOrigin() models.Origin {
	origin := models.Origin{Name: trimmed(p.Name), Slug: slugOr(p.Slug, p.Name)}
	setString(&origin.Description, p.Description)
	setString(&origin.Country, p.Country)
	return origin
}

// SpeciesUpdates returns the species columns of a partial update.
func (p ReferencePayload) SpeciesUpdates() map[string]any {
	updates := map[string]any{}
	putString(updates, "name", p.Name)
	putString(updates, "description", p.Description)
	if slug := slugOr(p.Slug, p.Name); p.Slug != nil && slug != "" {
		updates["slug"] = slug
	}
	return updates
}

// LaboratoryUpdates returns the laboratory columns of a partial update.
func (p ReferencePayload) LaboratoryUpdates() map[string]any {
	updates := p.SpeciesUpdates()
	putString(updates, "country", p.Country)
	putString(updates, "website", p.Website)
	return updates
}

// OriginUpdates returns the origin columns of a partial update.
func (p ReferencePayload) OriginUpdates() map[string]any {
	updates := p.SpeciesUpdates()
	putString(updates, "country", p.Country)
	return updates
}

func validateName(errs *Errors, name *string) {
	if len(trimmed(name)) > 120 {
		errs.add("name must be at most 120 characters")
	}
}

func validateSlug(errs *Errors, slug *string) {
	if slug == nil || trimmed(slug) == "" {
		return
	}
	if utils.Slugify(*slug) != trimmed(slug) {
		errs.add("slug may only contain lowercase letters, digits and dashes")
	}
}

// slugOr returns the supplied slug, or one derived from fallback.
func slugOr(slug, fallback *string) string {
	if s := trimmed(slug); s != "" {
		return s
	}
	return utils.Slugify(trimmed(fallback))
}
