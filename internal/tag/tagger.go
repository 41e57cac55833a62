// Package tag assigns newsroom categories to resolved entities.
package tag

import "github.com/pvoronin/newsdesk/internal/model"

// DefaultCategory is used for entity types without a mapping, keeping
// the category function total.
const DefaultCategory = "beat:general"

// Categories maps entity types to newsroom beats.
type Categories map[model.EntityType]string

// DefaultCategories returns the standard beat mapping.
func DefaultCategories() Categories {
	return Categories{
		model.EntityPerson:   "beat:people",
		model.EntityOrg:      "beat:institutions",
		model.EntityLocation: "beat:places",
		model.EntityOther:    DefaultCategory,
	}
}

// Tagger annotates resolved entities with categories.
type Tagger struct {
	categories Categories
}

// New creates a tagger. A nil table uses the default mapping.
func New(categories Categories) *Tagger {
	if categories == nil {
		categories = DefaultCategories()
	}
	return &Tagger{categories: categories}
}

// Tag produces exactly one TaggedEntity per input, order preserved.
func (t *Tagger) Tag(resolved []model.ResolvedEntity) []model.TaggedEntity {
	tagged := make([]model.TaggedEntity, 0, len(resolved))
	for _, entity := range resolved {
		category, ok := t.categories[entity.Type]
		if !ok {
			category = DefaultCategory
		}
		tagged = append(tagged, model.TaggedEntity{
			Entity:      entity.Span,
			CanonicalID: entity.CanonicalID,
			Category:    category,
			PassageID:   entity.PassageID,
			ArticleID:   entity.ArticleID,
		})
	}
	return tagged
}
