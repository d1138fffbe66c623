package server

import (
	"net/http"
	"testing"

	"kritika/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCategoriesIsPublic(t *testing.T) {
	_, app, db, _ := setupTestServer(t)
	require.NoError(t, db.Create(&models.Category{Name: "Film", Slug: "film"}).Error)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/categories/", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var categories []map[string]interface{}
	decodeBody(t, resp, &categories)
	require.Len(t, categories, 1)
	assert.Equal(t, "film", categories[0]["slug"])
}

func TestCreateCategoryRequiresAdmin(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	bob := createUser(t, db, "bob", models.RoleUser)
	admin := createUser(t, db, "admin", models.RoleAdmin)

	body := map[string]string{"name": "Film", "slug": "film"}

	resp := doJSON(t, app, http.MethodPost, "/api/v1/categories/", body, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/categories/", body, tokenFor(t, srv, bob))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/categories/", body, tokenFor(t, srv, admin))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCreateCategoryDuplicateSlug(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	require.NoError(t, db.Create(&models.Category{Name: "Film", Slug: "film"}).Error)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/categories/", map[string]string{
		"name": "Cinema", "slug": "film",
	}, tokenFor(t, srv, admin))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateCategoryInvalidSlug(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/categories/", map[string]string{
		"name": "Film", "slug": "bad slug!",
	}, tokenFor(t, srv, admin))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteCategoryNullsTitleReference(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)

	category := &models.Category{Name: "Film", Slug: "film"}
	require.NoError(t, db.Create(category).Error)
	title := &models.Title{Name: "Solaris", Year: 1972, CategoryID: &category.ID}
	require.NoError(t, db.Create(title).Error)

	resp := doJSON(t, app, http.MethodDelete, "/api/v1/categories/film", nil, tokenFor(t, srv, admin))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// title survives with its category reference nulled
	var reloaded models.Title
	require.NoError(t, db.First(&reloaded, title.ID).Error)
	assert.Nil(t, reloaded.CategoryID)
}

func TestDeleteCategoryNotFound(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)

	resp := doJSON(t, app, http.MethodDelete, "/api/v1/categories/ghost", nil, tokenFor(t, srv, admin))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGenreSearchByName(t *testing.T) {
	_, app, db, _ := setupTestServer(t)
	require.NoError(t, db.Create(&models.Genre{Name: "Drama", Slug: "drama"}).Error)
	require.NoError(t, db.Create(&models.Genre{Name: "Comedy", Slug: "comedy"}).Error)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/genres/?name=dra", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var genres []map[string]interface{}
	decodeBody(t, resp, &genres)
	require.Len(t, genres, 1)
	assert.Equal(t, "drama", genres[0]["slug"])
}

func TestCreateAndDeleteGenre(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/genres/", map[string]string{
		"name": "Drama", "slug": "drama",
	}, tokenFor(t, srv, admin))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/api/v1/genres/drama", nil, tokenFor(t, srv, admin))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Genre{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
