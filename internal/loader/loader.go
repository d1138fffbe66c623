// Package loader implements the bulk import pipeline that seeds the store
// from CSV files. Duplicate rows are skipped silently so a load can be
// repeated; an unresolvable foreign key aborts the batch.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"

	"kritika/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Loader loads, dumps and wipes one entity's table.
type Loader interface {
	Name() string
	Load(ctx context.Context) error
	Show(ctx context.Context, w io.Writer) error
	Delete(ctx context.Context) error
	Reload(ctx context.Context) error
}

type entity interface {
	PK() uint
	String() string
}

// tableLoader is the simple single-file loader: each CSV row decodes into one
// record, rows violating uniqueness constraints are dropped on insert.
type tableLoader[T entity] struct {
	db     *gorm.DB
	name   string
	file   string
	decode func(ctx context.Context, row record) (T, error)
}

func (l *tableLoader[T]) Name() string { return l.name }

func (l *tableLoader[T]) Load(ctx context.Context) error {
	rows, err := readRecords(l.file)
	if err != nil {
		return err
	}

	items := make([]T, 0, len(rows))
	for _, row := range rows {
		item, err := l.decode(ctx, row)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil
	}

	err = l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&items).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (l *tableLoader[T]) Show(ctx context.Context, w io.Writer) error {
	var items []T
	if err := l.db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, item := range items {
		fmt.Fprintf(w, "%d:%s\n", item.PK(), item.String())
	}
	return nil
}

func (l *tableLoader[T]) Delete(ctx context.Context) error {
	var zero T
	err := l.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&zero).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (l *tableLoader[T]) Reload(ctx context.Context) error {
	if err := l.Delete(ctx); err != nil {
		return err
	}
	return l.Load(ctx)
}

// resolveRef looks up a referenced row by primary key. A miss is fatal to the
// batch, unlike a duplicate insert.
func resolveRef[T any](ctx context.Context, db *gorm.DB, resource string, id uint) (*T, error) {
	var out T
	err := db.WithContext(ctx).First(&out, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewReferenceNotFoundError(resource, id)
		}
		return nil, models.NewInternalError(err)
	}
	return &out, nil
}
