package loader

import (
	"context"

	"kritika/internal/models"

	"gorm.io/gorm"
)

func newUserLoader(db *gorm.DB, file string) Loader {
	return &tableLoader[models.User]{
		db:   db,
		name: "user",
		file: file,
		decode: func(_ context.Context, row record) (models.User, error) {
			id, err := row.parseUint("id")
			if err != nil {
				return models.User{}, err
			}
			role := row["role"]
			if role == "" {
				role = models.RoleUser
			}
			return models.User{
				ID:        id,
				Username:  row["username"],
				Email:     row["email"],
				Role:      role,
				Bio:       row["bio"],
				FirstName: row["first_name"],
				LastName:  row["last_name"],
			}, nil
		},
	}
}

func newCategoryLoader(db *gorm.DB, file string) Loader {
	return &tableLoader[models.Category]{
		db:   db,
		name: "category",
		file: file,
		decode: func(_ context.Context, row record) (models.Category, error) {
			id, err := row.parseUint("id")
			if err != nil {
				return models.Category{}, err
			}
			return models.Category{ID: id, Name: row["name"], Slug: row["slug"]}, nil
		},
	}
}

func newGenreLoader(db *gorm.DB, file string) Loader {
	return &tableLoader[models.Genre]{
		db:   db,
		name: "genre",
		file: file,
		decode: func(_ context.Context, row record) (models.Genre, error) {
			id, err := row.parseUint("id")
			if err != nil {
				return models.Genre{}, err
			}
			return models.Genre{ID: id, Name: row["name"], Slug: row["slug"]}, nil
		},
	}
}

func newReviewLoader(db *gorm.DB, file string) Loader {
	return &tableLoader[models.Review]{
		db:   db,
		name: "review",
		file: file,
		decode: func(ctx context.Context, row record) (models.Review, error) {
			id, err := row.parseUint("id")
			if err != nil {
				return models.Review{}, err
			}
			titleID, err := row.parseUint("title_id")
			if err != nil {
				return models.Review{}, err
			}
			authorID, err := row.parseUint("author")
			if err != nil {
				return models.Review{}, err
			}
			score, err := row.parseInt("score")
			if err != nil {
				return models.Review{}, err
			}
			pubDate, err := row.parseTime("pub_date")
			if err != nil {
				return models.Review{}, err
			}

			title, err := resolveRef[models.Title](ctx, db, "Title", titleID)
			if err != nil {
				return models.Review{}, err
			}
			author, err := resolveRef[models.User](ctx, db, "User", authorID)
			if err != nil {
				return models.Review{}, err
			}

			return models.Review{
				ID:       id,
				TitleID:  title.ID,
				AuthorID: author.ID,
				Text:     row["text"],
				Score:    score,
				PubDate:  pubDate,
			}, nil
		},
	}
}

func newCommentLoader(db *gorm.DB, file string) Loader {
	return &tableLoader[models.Comment]{
		db:   db,
		name: "comment",
		file: file,
		decode: func(ctx context.Context, row record) (models.Comment, error) {
			id, err := row.parseUint("id")
			if err != nil {
				return models.Comment{}, err
			}
			reviewID, err := row.parseUint("review_id")
			if err != nil {
				return models.Comment{}, err
			}
			authorID, err := row.parseUint("author")
			if err != nil {
				return models.Comment{}, err
			}
			pubDate, err := row.parseTime("pub_date")
			if err != nil {
				return models.Comment{}, err
			}

			review, err := resolveRef[models.Review](ctx, db, "Review", reviewID)
			if err != nil {
				return models.Comment{}, err
			}
			author, err := resolveRef[models.User](ctx, db, "User", authorID)
			if err != nil {
				return models.Comment{}, err
			}

			return models.Comment{
				ID:       id,
				ReviewID: review.ID,
				AuthorID: author.ID,
				Text:     row["text"],
				PubDate:  pubDate,
			}, nil
		},
	}
}

// titleLoader is the two-phase composite loader: titles first, then the
// title/genre association file.
type titleLoader struct {
	tableLoader[models.Title]
	genreFile string
}

func newTitleLoader(db *gorm.DB, titlesFile, genreFile string) Loader {
	l := &titleLoader{genreFile: genreFile}
	l.db = db
	l.name = "title"
	l.file = titlesFile
	l.decode = func(ctx context.Context, row record) (models.Title, error) {
		id, err := row.parseUint("id")
		if err != nil {
			return models.Title{}, err
		}
		year, err := row.parseInt("year")
		if err != nil {
			return models.Title{}, err
		}

		title := models.Title{
			ID:          id,
			Name:        row["name"],
			Description: row["description"],
			Year:        year,
		}
		if row["category"] != "" {
			categoryID, err := row.parseUint("category")
			if err != nil {
				return models.Title{}, err
			}
			category, err := resolveRef[models.Category](ctx, db, "Category", categoryID)
			if err != nil {
				return models.Title{}, err
			}
			title.CategoryID = &category.ID
		}
		return title, nil
	}
	return l
}

func (l *titleLoader) Load(ctx context.Context) error {
	if err := l.tableLoader.Load(ctx); err != nil {
		return err
	}

	rows, err := readRecords(l.genreFile)
	if err != nil {
		return err
	}
	for _, row := range rows {
		titleID, err := row.parseUint("title_id")
		if err != nil {
			return err
		}
		genreID, err := row.parseUint("genre_id")
		if err != nil {
			return err
		}

		title, err := resolveRef[models.Title](ctx, l.db, "Title", titleID)
		if err != nil {
			return err
		}
		genre, err := resolveRef[models.Genre](ctx, l.db, "Genre", genreID)
		if err != nil {
			return err
		}

		err = l.db.WithContext(ctx).
			Model(title).
			Association("Genres").
			Append(genre)
		if err != nil {
			return models.NewInternalError(err)
		}
	}
	return nil
}

func (l *titleLoader) Reload(ctx context.Context) error {
	if err := l.Delete(ctx); err != nil {
		return err
	}
	return l.Load(ctx)
}
