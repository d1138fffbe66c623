package repository

import (
	"context"
	"database/sql"
	"errors"

	"kritika/internal/models"

	"gorm.io/gorm"
)

// TitleFilter narrows title listings. Zero values mean "no constraint".
type TitleFilter struct {
	Name     string
	Year     *int
	Category string // category slug
	Genre    string // genre slug
}

// TitleRepository defines the interface for title data operations.
type TitleRepository interface {
	List(ctx context.Context, filter TitleFilter, limit, offset int) ([]models.Title, error)
	GetByID(ctx context.Context, id uint) (*models.Title, error)
	Create(ctx context.Context, title *models.Title) error
	Update(ctx context.Context, title *models.Title) error
	ReplaceGenres(ctx context.Context, title *models.Title, genres []models.Genre) error
	Delete(ctx context.Context, id uint) error
}

type titleRepository struct {
	db *gorm.DB
}

// NewTitleRepository creates a new title repository.
func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter, limit, offset int) ([]models.Title, error) {
	q := r.db.WithContext(ctx).Model(&models.Title{}).
		Preload("Category").
		Preload("Genres").
		Order("titles.id")

	if filter.Name != "" {
		q = q.Where("titles.name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Year != nil {
		q = q.Where("titles.year = ?", *filter.Year)
	}
	if filter.Category != "" {
		q = q.Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ?", filter.Category)
	}
	if filter.Genre != "" {
		q = q.Joins("JOIN title_genres ON title_genres.title_id = titles.id").
			Joins("JOIN genres ON genres.id = title_genres.genre_id").
			Where("genres.slug = ?", filter.Genre)
	}

	var titles []models.Title
	if err := q.Limit(limit).Offset(offset).Find(&titles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.fillRatings(ctx, titles); err != nil {
		return nil, err
	}
	return titles, nil
}

func (r *titleRepository) GetByID(ctx context.Context, id uint) (*models.Title, error) {
	var title models.Title
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Genres").
		First(&title, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Title", id)
		}
		return nil, models.NewInternalError(err)
	}

	var avg sql.NullFloat64
	err = r.db.WithContext(ctx).Model(&models.Review{}).
		Where("title_id = ?", id).
		Select("AVG(score)").
		Scan(&avg).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if avg.Valid {
		title.Rating = &avg.Float64
	}

	return &title, nil
}

func (r *titleRepository) Create(ctx context.Context, title *models.Title) error {
	if err := r.db.WithContext(ctx).Create(title).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *titleRepository) Update(ctx context.Context, title *models.Title) error {
	// Omit the association so genre changes go through ReplaceGenres only.
	if err := r.db.WithContext(ctx).Omit("Genres").Save(title).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *titleRepository) ReplaceGenres(ctx context.Context, title *models.Title, genres []models.Genre) error {
	assoc := r.db.WithContext(ctx).Model(title).Association("Genres")
	if len(genres) == 0 {
		if err := assoc.Clear(); err != nil {
			return models.NewInternalError(err)
		}
		return nil
	}
	if err := assoc.Replace(&genres); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *titleRepository) Delete(ctx context.Context, id uint) error {
	// Select(clause.Associations) is not needed: review rows go away via the
	// store's ON DELETE CASCADE, join rows via the association constraint.
	if err := r.db.WithContext(ctx).Delete(&models.Title{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// fillRatings computes average review scores for a page of titles in one query.
func (r *titleRepository) fillRatings(ctx context.Context, titles []models.Title) error {
	if len(titles) == 0 {
		return nil
	}

	ids := make([]uint, len(titles))
	for i := range titles {
		ids[i] = titles[i].ID
	}

	type ratingRow struct {
		TitleID uint
		Rating  float64
	}
	var rows []ratingRow
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("title_id, AVG(score) AS rating").
		Where("title_id IN ?", ids).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return models.NewInternalError(err)
	}

	byTitle := make(map[uint]float64, len(rows))
	for _, row := range rows {
		byTitle[row.TitleID] = row.Rating
	}
	for i := range titles {
		if rating, ok := byTitle[titles[i].ID]; ok {
			r := rating
			titles[i].Rating = &r
		}
	}
	return nil
}
