package loader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"kritika/internal/database"
	"kritika/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupLoaderDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, database.Migrate(db))
	return db
}

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// writeDataSet lays out a complete consistent CSV directory.
func writeDataSet(t *testing.T, dir string) {
	writeCSV(t, dir, "users.csv",
		"id,username,email,role,bio,first_name,last_name\n"+
			"1,alice,alice@example.com,user,,Alice,Liddell\n"+
			"2,admin,admin@example.com,admin,,,\n")
	writeCSV(t, dir, "category.csv",
		"id,name,slug\n1,Film,film\n2,Book,book\n")
	writeCSV(t, dir, "genre.csv",
		"id,name,slug\n1,Drama,drama\n2,Comedy,comedy\n")
	writeCSV(t, dir, "titles.csv",
		"id,name,year,category\n1,Solaris,1972,1\n2,Dune,1965,2\n")
	writeCSV(t, dir, "genre_title.csv",
		"id,title_id,genre_id\n1,1,1\n2,1,2\n3,2,1\n")
	writeCSV(t, dir, "review.csv",
		"id,title_id,text,author,score,pub_date\n"+
			"1,1,Stunning.,1,10,2019-09-24T21:08:21Z\n")
	writeCSV(t, dir, "comments.csv",
		"id,review_id,text,author,pub_date\n"+
			"1,1,Agreed.,2,2019-09-25T10:00:00Z\n")
}

func TestLoadAllInOrder(t *testing.T) {
	db := setupLoaderDB(t)
	dir := t.TempDir()
	writeDataSet(t, dir)

	registry := NewRegistry(db, dir)
	require.NoError(t, registry.LoadAll(context.Background()))

	var users, categories, genres, titles, reviews, comments int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	require.NoError(t, db.Model(&models.Genre{}).Count(&genres).Error)
	require.NoError(t, db.Model(&models.Title{}).Count(&titles).Error)
	require.NoError(t, db.Model(&models.Review{}).Count(&reviews).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)

	assert.Equal(t, int64(2), users)
	assert.Equal(t, int64(2), categories)
	assert.Equal(t, int64(2), genres)
	assert.Equal(t, int64(2), titles)
	assert.Equal(t, int64(1), reviews)
	assert.Equal(t, int64(1), comments)

	// composite phase attached the genre associations
	var solaris models.Title
	require.NoError(t, db.Preload("Genres").First(&solaris, 1).Error)
	assert.Len(t, solaris.Genres, 2)
	require.NotNil(t, solaris.CategoryID)
	assert.Equal(t, uint(1), *solaris.CategoryID)
}

func TestDuplicateRowsAreSkipped(t *testing.T) {
	db := setupLoaderDB(t)
	dir := t.TempDir()
	writeCSV(t, dir, "category.csv",
		"id,name,slug\n1,Film,film\n")

	registry := NewRegistry(db, dir)
	l, err := registry.Get("category")
	require.NoError(t, err)

	require.NoError(t, l.Load(context.Background()))
	// second load hits the unique slug; the row is dropped, not an error
	require.NoError(t, l.Load(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUnresolvedReferenceAborts(t *testing.T) {
	db := setupLoaderDB(t)
	dir := t.TempDir()
	writeCSV(t, dir, "review.csv",
		"id,title_id,text,author,score,pub_date\n"+
			"1,999,orphan,1,5,\n")

	registry := NewRegistry(db, dir)
	l, err := registry.Get("review")
	require.NoError(t, err)

	err = l.Load(context.Background())
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeReferenceNotFound, appErr.Code)

	// nothing was inserted
	var count int64
	require.NoError(t, db.Model(&models.Review{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestShowDumpsIDAndString(t *testing.T) {
	db := setupLoaderDB(t)
	dir := t.TempDir()
	require.NoError(t, db.Create(&models.Category{ID: 3, Name: "Film", Slug: "film"}).Error)

	registry := NewRegistry(db, dir)
	l, err := registry.Get("category")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, l.Show(context.Background(), &buf))
	assert.Equal(t, "3:Film\n", buf.String())
}

func TestDeleteAllEmptiesEveryTable(t *testing.T) {
	db := setupLoaderDB(t)
	dir := t.TempDir()
	writeDataSet(t, dir)

	registry := NewRegistry(db, dir)
	ctx := context.Background()
	require.NoError(t, registry.LoadAll(ctx))
	require.NoError(t, registry.DeleteAll(ctx))

	for _, model := range []interface{}{
		&models.User{}, &models.Category{}, &models.Genre{},
		&models.Title{}, &models.Review{}, &models.Comment{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Equal(t, int64(0), count, "%T", model)
	}
}

func TestReloadAllIsIdempotent(t *testing.T) {
	db := setupLoaderDB(t)
	dir := t.TempDir()
	writeDataSet(t, dir)

	registry := NewRegistry(db, dir)
	ctx := context.Background()
	require.NoError(t, registry.LoadAll(ctx))
	require.NoError(t, registry.ReloadAll(ctx))

	var titles int64
	require.NoError(t, db.Model(&models.Title{}).Count(&titles).Error)
	assert.Equal(t, int64(2), titles)
}

func TestUnknownEntityName(t *testing.T) {
	registry := NewRegistry(setupLoaderDB(t), t.TempDir())
	_, err := registry.Get("widget")
	assert.Error(t, err)
}

func TestMissingFileFails(t *testing.T) {
	registry := NewRegistry(setupLoaderDB(t), t.TempDir())
	l, err := registry.Get("genre")
	require.NoError(t, err)
	assert.Error(t, l.Load(context.Background()))
}
