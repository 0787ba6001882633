package processing

import (
	"strings"

	"github.com/spacesedan/confessit/internal/models"
)

// DefaultCategories is the channel's category list in priority order. The
// first keyword found in a confession decides its category.
var DefaultCategories = []models.Category{
	models.CategoryOthers,
	models.CategoryStudies,
	models.CategoryRomance,
	models.CategoryCampus,
	models.CategoryRant,
	models.CategoryWhistleblow,
}

type Tagger struct {
	categories []models.Category
}

// NewTagger builds a tagger over categories. With no arguments it uses
// DefaultCategories.
func NewTagger(categories ...models.Category) Tagger {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	return Tagger{categories: append([]models.Category(nil), categories...)}
}

// Tag returns the first category whose name occurs in text. Matching is a
// case-sensitive substring test, so "Rant" matches "Rantings" but not
// "Granted".
func (t Tagger) Tag(text string) models.Category {
	for _, category := range t.categories {
		if strings.Contains(text, string(category)) {
			return category
		}
	}
	return models.CategoryNone
}

func (t Tagger) Categories() []models.Category {
	return append([]models.Category(nil), t.categories...)
}
