package validation

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/example/gemmarket/internal/models"
)

// PublicationPayload is the create/update schema of news items and
// articles.
type PublicationPayload struct {
	Title       *string          `json:"title"`
	Slug        *string          `json:"slug"`
	Excerpt     *string          `json:"excerpt"`
	CoverImage  *string          `json:"cover_image"`
	Content     *json.RawMessage `json:"content"`
	Status      *string          `json:"status"`
	PublishedAt *time.Time       `json:"published_at"`
}

// ValidateCreate checks a new publication.
func (p PublicationPayload) ValidateCreate() error {
	var errs Errors
	if trimmed(p.Title) == "" {
		errs.add("title is required")
	}
	p.validateFields(&errs)
	return errs.Err()
}

// ValidateUpdate checks a partial update.
func (p PublicationPayload) ValidateUpdate() error {
	var errs Errors
	if p.Title != nil && trimmed(p.Title) == "" {
		errs.add("title must not be empty")
	}
	p.validateFields(&errs)
	return errs.Err()
}

func (p PublicationPayload) validateFields(errs *Errors) {
	if len(trimmed(p.Title)) > 200 {
		errs.add("title must be at most 200 characters")
	}
	validateSlug(errs, p.Slug)
	if p.Status != nil && !oneOf(*p.Status, models.PublicationDraft, models.PublicationPublished) {
		errs.add("status must be draft or published")
	}
	if p.Content != nil && !json.Valid(*p.Content) {
		errs.add("content must be valid JSON")
	}
}

// NewPublication builds the shared columns of a validated create payload.
// A published item without a date is published now.
func (p PublicationPayload) NewPublication() models.Publication {
	pub := models.Publication{
		Title:       trimmed(p.Title),
		Slug:        slugOr(p.Slug, p.Title),
		Status:      models.PublicationDraft,
		PublishedAt: p.PublishedAt,
	}
	setString(&pub.Excerpt, p.Excerpt)
	setString(&pub.CoverImage, p.CoverImage)
	setString(&pub.Status, p.Status)
	if p.Content != nil {
		pub.Content = datatypes.JSON(*p.Content)
	}
	if pub.Status == models.PublicationPublished && pub.PublishedAt == nil {
		now := time.Now()
		pub.PublishedAt = &now
	}
	return pub
}

// Updates returns the column changes of a partial update. current is the
// stored published_at, consulted when the item becomes published.
func (p PublicationPayload) Updates(current *time.Time) map[string]any {
	updates := map[string]any{}
	putString(updates, "title", p.Title)
	putString(updates, "excerpt", p.Excerpt)
	putString(updates, "cover_image", p.CoverImage)
	putString(updates, "status", p.Status)
	if slug := slugOr(p.Slug, p.Title); p.Slug != nil && slug != "" {
		updates["slug"] = slug
	}
	if p.Content != nil {
		updates["content"] = datatypes.JSON(*p.Content)
	}
	if p.PublishedAt != nil {
		updates["published_at"] = *p.PublishedAt
	} else if p.Status != nil && *p.Status == models.PublicationPublished && current == nil {
		updates["published_at"] = time.Now()
	}
	return updates
}
