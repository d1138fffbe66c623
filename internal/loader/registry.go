package loader

import (
	"context"
	"fmt"
	"path/filepath"

	"kritika/internal/models"

	"gorm.io/gorm"
)

// creationOrder is the fixed dependency order: every entity's references are
// already loaded when its turn comes. Deletion runs the exact reverse.
var creationOrder = []string{"user", "category", "genre", "title", "review", "comment"}

// Registry holds one loader per entity and runs batch operations in
// dependency order.
type Registry struct {
	loaders map[string]Loader
}

// NewRegistry wires the per-entity loaders against the CSV files in dataDir.
func NewRegistry(db *gorm.DB, dataDir string) *Registry {
	file := func(name string) string { return filepath.Join(dataDir, name) }
	return &Registry{
		loaders: map[string]Loader{
			"user":     newUserLoader(db, file("users.csv")),
			"category": newCategoryLoader(db, file("category.csv")),
			"genre":    newGenreLoader(db, file("genre.csv")),
			"title":    newTitleLoader(db, file("titles.csv"), file("genre_title.csv")),
			"review":   newReviewLoader(db, file("review.csv")),
			"comment":  newCommentLoader(db, file("comments.csv")),
		},
	}
}

// Get returns the loader for one entity name.
func (r *Registry) Get(name string) (Loader, error) {
	loader, ok := r.loaders[name]
	if !ok {
		return nil, models.NewValidationError(
			fmt.Sprintf("unknown entity %q, expected one of %v", name, creationOrder))
	}
	return loader, nil
}

// Names lists the entity names in creation order.
func (r *Registry) Names() []string {
	names := make([]string, len(creationOrder))
	copy(names, creationOrder)
	return names
}

// LoadAll loads every entity in creation order.
func (r *Registry) LoadAll(ctx context.Context) error {
	for _, name := range creationOrder {
		if err := r.loaders[name].Load(ctx); err != nil {
			return fmt.Errorf("loading %s: %w", name, err)
		}
	}
	return nil
}

// DeleteAll wipes every table in reverse creation order, so no row ever
// dangles mid-way.
func (r *Registry) DeleteAll(ctx context.Context) error {
	for i := len(creationOrder) - 1; i >= 0; i-- {
		name := creationOrder[i]
		if err := r.loaders[name].Delete(ctx); err != nil {
			return fmt.Errorf("deleting %s: %w", name, err)
		}
	}
	return nil
}

// ReloadAll is DeleteAll followed by LoadAll.
func (r *Registry) ReloadAll(ctx context.Context) error {
	if err := r.DeleteAll(ctx); err != nil {
		return err
	}
	return r.LoadAll(ctx)
}
