// Package seed creates demo data for development databases. Not wired into
// the API server; use cmd/seed.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"kritika/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options controls the shape of the generated dataset.
type Options struct {
	NumUsers  int
	NumTitles int
	// MaxReviewsPerTitle caps how many users review each title.
	MaxReviewsPerTitle int
	MaxCommentsPerReview int
}

// DefaultOptions returns a dataset big enough to exercise every list endpoint.
func DefaultOptions() Options {
	return Options{
		NumUsers:             50,
		NumTitles:            120,
		MaxReviewsPerTitle:   8,
		MaxCommentsPerReview: 4,
	}
}

var categories = []models.Category{
	{Name: "Film", Slug: "film"},
	{Name: "Book", Slug: "book"},
	{Name: "Music", Slug: "music"},
	{Name: "Game", Slug: "game"},
}

var genres = []models.Genre{
	{Name: "Drama", Slug: "drama"},
	{Name: "Comedy", Slug: "comedy"},
	{Name: "Thriller", Slug: "thriller"},
	{Name: "Fantasy", Slug: "fantasy"},
	{Name: "Sci-Fi", Slug: "sci-fi"},
	{Name: "Rock", Slug: "rock"},
	{Name: "Classic", Slug: "classic"},
	{Name: "Detective", Slug: "detective"},
}

// Seeder populates the database with generated demo data.
type Seeder struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll wipes every seeded table, children first.
func (s *Seeder) ClearAll() error {
	session := s.db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{
		&models.Comment{}, &models.Review{}, &models.Title{},
		&models.Genre{}, &models.Category{}, &models.User{},
	} {
		if err := session.Delete(model).Error; err != nil {
			return fmt.Errorf("clearing %T: %w", model, err)
		}
	}
	return nil
}

// Run generates the full dataset: users, catalog, reviews and comments.
func (s *Seeder) Run(opts Options) error {
	users, err := s.seedUsers(opts.NumUsers)
	if err != nil {
		return err
	}
	titles, err := s.seedCatalog(opts.NumTitles)
	if err != nil {
		return err
	}
	return s.seedReviews(titles, users, opts)
}

func (s *Seeder) seedUsers(n int) ([]models.User, error) {
	users := make([]models.User, 0, n+2)

	// Fixed operator accounts for manual testing.
	users = append(users,
		models.User{Username: "admin", Email: "admin@example.com", Role: models.RoleAdmin},
		models.User{Username: "moder", Email: "moder@example.com", Role: models.RoleModerator},
	)

	for i := 0; i < n; i++ {
		users = append(users, models.User{
			Username:  fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
			Email:     gofakeit.Email(),
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Bio:       gofakeit.Sentence(10),
			Role:      models.RoleUser,
		})
	}

	if err := s.db.CreateInBatches(&users, 100).Error; err != nil {
		return nil, fmt.Errorf("seeding users: %w", err)
	}
	log.Printf("seeded %d users", len(users))
	return users, nil
}

func (s *Seeder) seedCatalog(n int) ([]models.Title, error) {
	cats := make([]models.Category, len(categories))
	copy(cats, categories)
	if err := s.db.Create(&cats).Error; err != nil {
		return nil, fmt.Errorf("seeding categories: %w", err)
	}

	gens := make([]models.Genre, len(genres))
	copy(gens, genres)
	if err := s.db.Create(&gens).Error; err != nil {
		return nil, fmt.Errorf("seeding genres: %w", err)
	}

	currentYear := time.Now().Year()
	titles := make([]models.Title, 0, n)
	for i := 0; i < n; i++ {
		category := cats[s.rand.Intn(len(cats))]
		title := models.Title{
			Name:        gofakeit.MovieName(),
			Description: gofakeit.Sentence(15),
			Year:        currentYear - s.rand.Intn(80),
			CategoryID:  &category.ID,
		}
		for _, g := range s.pickGenres(gens) {
			title.Genres = append(title.Genres, g)
		}
		titles = append(titles, title)
	}

	if err := s.db.CreateInBatches(&titles, 50).Error; err != nil {
		return nil, fmt.Errorf("seeding titles: %w", err)
	}
	log.Printf("seeded %d categories, %d genres, %d titles", len(cats), len(gens), len(titles))
	return titles, nil
}

func (s *Seeder) pickGenres(gens []models.Genre) []models.Genre {
	count := 1 + s.rand.Intn(3)
	picked := make([]models.Genre, 0, count)
	seen := make(map[uint]bool)
	for len(picked) < count {
		g := gens[s.rand.Intn(len(gens))]
		if !seen[g.ID] {
			seen[g.ID] = true
			picked = append(picked, g)
		}
	}
	return picked
}

func (s *Seeder) seedReviews(titles []models.Title, users []models.User, opts Options) error {
	var reviews []models.Review
	var comments []models.Comment

	for _, title := range titles {
		reviewers := s.rand.Intn(opts.MaxReviewsPerTitle + 1)
		// one review per user per title: walk a shuffled user list
		perm := s.rand.Perm(len(users))
		if reviewers > len(users) {
			reviewers = len(users)
		}
		for _, idx := range perm[:reviewers] {
			reviews = append(reviews, models.Review{
				TitleID:  title.ID,
				AuthorID: users[idx].ID,
				Text:     gofakeit.Paragraph(1, 3, 8, " "),
				Score:    1 + s.rand.Intn(10),
				PubDate:  s.pastTime(),
			})
		}
	}
	if len(reviews) > 0 {
		if err := s.db.CreateInBatches(&reviews, 100).Error; err != nil {
			return fmt.Errorf("seeding reviews: %w", err)
		}
	}

	for _, review := range reviews {
		for i := 0; i < s.rand.Intn(opts.MaxCommentsPerReview+1); i++ {
			comments = append(comments, models.Comment{
				ReviewID: review.ID,
				AuthorID: users[s.rand.Intn(len(users))].ID,
				Text:     gofakeit.Sentence(12),
				PubDate:  s.pastTime(),
			})
		}
	}
	if len(comments) > 0 {
		if err := s.db.CreateInBatches(&comments, 100).Error; err != nil {
			return fmt.Errorf("seeding comments: %w", err)
		}
	}

	log.Printf("seeded %d reviews, %d comments", len(reviews), len(comments))
	return nil
}

// pastTime spreads timestamps over the last ~90 days.
func (s *Seeder) pastTime() time.Time {
	return time.Now().Add(-time.Duration(s.rand.Intn(90*24)) * time.Hour)
}
