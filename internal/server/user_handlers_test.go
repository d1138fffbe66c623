package server

import (
	"net/http"
	"testing"

	"kritika/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsersRequiresAdmin(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	regular := createUser(t, db, "bob", models.RoleUser)
	moderator := createUser(t, db, "mod", models.RoleModerator)

	// anonymous
	resp := doJSON(t, app, http.MethodGet, "/api/v1/users/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// plain user and moderator are both denied
	resp = doJSON(t, app, http.MethodGet, "/api/v1/users/", nil, tokenFor(t, srv, regular))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = doJSON(t, app, http.MethodGet, "/api/v1/users/", nil, tokenFor(t, srv, moderator))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/users/", nil, tokenFor(t, srv, admin))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var users []map[string]interface{}
	decodeBody(t, resp, &users)
	assert.Len(t, users, 3)
}

func TestSuperuserActsAsAdmin(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	super := &models.User{
		Username:  "root",
		Email:     "root@example.com",
		Role:      models.RoleUser,
		Superuser: true,
	}
	require.NoError(t, db.Create(super).Error)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/users/", nil, tokenFor(t, srv, super))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminCreateUserWithRole(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/users/", map[string]string{
		"username": "newmod",
		"email":    "newmod@example.com",
		"role":     models.RoleModerator,
	}, tokenFor(t, srv, admin))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var user models.User
	require.NoError(t, db.Where("username = ?", "newmod").First(&user).Error)
	assert.Equal(t, models.RoleModerator, user.Role)
}

func TestAdminCreateUserRejectsBadRole(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/users/", map[string]string{
		"username": "x",
		"email":    "x@example.com",
		"role":     "emperor",
	}, tokenFor(t, srv, admin))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetUserByUsername(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	createUser(t, db, "bob", models.RoleUser)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/users/bob", nil, tokenFor(t, srv, admin))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, "bob", body["username"])
	// internal fields never serialize
	assert.NotContains(t, body, "id")

	resp = doJSON(t, app, http.MethodGet, "/api/v1/users/ghost", nil, tokenFor(t, srv, admin))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminUpdateUserRole(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	bob := createUser(t, db, "bob", models.RoleUser)

	resp := doJSON(t, app, http.MethodPatch, "/api/v1/users/bob", map[string]string{
		"role": models.RoleModerator,
		"bio":  "promoted",
	}, tokenFor(t, srv, admin))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(bob, bob.ID).Error)
	assert.Equal(t, models.RoleModerator, bob.Role)
	assert.Equal(t, "promoted", bob.Bio)
}

func TestUpdateUserDuplicateUsername(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	createUser(t, db, "bob", models.RoleUser)
	createUser(t, db, "carol", models.RoleUser)

	resp := doJSON(t, app, http.MethodPatch, "/api/v1/users/carol", map[string]string{
		"username": "bob",
	}, tokenFor(t, srv, admin))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteUser(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	bob := createUser(t, db, "bob", models.RoleUser)

	resp := doJSON(t, app, http.MethodDelete, "/api/v1/users/bob", nil, tokenFor(t, srv, admin))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", bob.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestDeleteUserCascadesContributions(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	bob := createUser(t, db, "bob", models.RoleUser)

	title := &models.Title{Name: "Solaris", Year: 1972}
	require.NoError(t, db.Create(title).Error)
	review := &models.Review{TitleID: title.ID, AuthorID: bob.ID, Text: "great", Score: 9}
	require.NoError(t, db.Create(review).Error)
	comment := &models.Comment{ReviewID: review.ID, AuthorID: admin.ID, Text: "agreed"}
	require.NoError(t, db.Create(comment).Error)

	resp := doJSON(t, app, http.MethodDelete, "/api/v1/users/bob", nil, tokenFor(t, srv, admin))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var reviews, comments int64
	require.NoError(t, db.Model(&models.Review{}).Count(&reviews).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Equal(t, int64(0), reviews)
	assert.Equal(t, int64(0), comments)
}

func TestMyProfile(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	bob := createUser(t, db, "bob", models.RoleUser)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/users/me", nil, tokenFor(t, srv, bob))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, "bob", body["username"])
}

func TestUpdateMyProfileIgnoresRole(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	bob := createUser(t, db, "bob", models.RoleUser)

	resp := doJSON(t, app, http.MethodPatch, "/api/v1/users/me", map[string]string{
		"first_name": "Bob",
		"role":       models.RoleAdmin,
	}, tokenFor(t, srv, bob))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(bob, bob.ID).Error)
	assert.Equal(t, "Bob", bob.FirstName)
	assert.Equal(t, models.RoleUser, bob.Role)
}

func TestListUsersSearch(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	createUser(t, db, "alpha", models.RoleUser)
	createUser(t, db, "beta", models.RoleUser)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/users/?search=alph", nil, tokenFor(t, srv, admin))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var users []map[string]interface{}
	decodeBody(t, resp, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "alpha", users[0]["username"])
}
