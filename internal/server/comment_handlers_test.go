package server

import (
	"fmt"
	"net/http"
	"testing"

	"kritika/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	alice := createUser(t, db, "alice", models.RoleUser)
	bob := createUser(t, db, "bob", models.RoleUser)
	title := createTitle(t, db, "Solaris")
	review := createReview(t, db, title, alice, 8)

	resp := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments/", title.ID, review.ID),
		map[string]interface{}{"text": "well said"}, tokenFor(t, srv, bob))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, "well said", body["text"])
	assert.Equal(t, "bob", body["author"])
}

func TestCreateCommentAnonymousRejected(t *testing.T) {
	_, app, db, _ := setupTestServer(t)
	alice := createUser(t, db, "alice", models.RoleUser)
	title := createTitle(t, db, "Solaris")
	review := createReview(t, db, title, alice, 8)

	resp := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments/", title.ID, review.ID),
		map[string]interface{}{"text": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateCommentUnknownReview(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	alice := createUser(t, db, "alice", models.RoleUser)
	title := createTitle(t, db, "Solaris")

	resp := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/v1/titles/%d/reviews/999/comments/", title.ID),
		map[string]interface{}{"text": "x"}, tokenFor(t, srv, alice))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCommentNotReachableUnderWrongTitle(t *testing.T) {
	_, app, db, _ := setupTestServer(t)
	alice := createUser(t, db, "alice", models.RoleUser)
	solaris := createTitle(t, db, "Solaris")
	stalker := createTitle(t, db, "Stalker")
	review := createReview(t, db, solaris, alice, 8)
	comment := &models.Comment{ReviewID: review.ID, AuthorID: alice.ID, Text: "x"}
	require.NoError(t, db.Create(comment).Error)

	resp := doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments/%d", stalker.ID, review.ID, comment.ID),
		nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListCommentsIsPublic(t *testing.T) {
	_, app, db, _ := setupTestServer(t)
	alice := createUser(t, db, "alice", models.RoleUser)
	title := createTitle(t, db, "Solaris")
	review := createReview(t, db, title, alice, 8)
	require.NoError(t, db.Create(&models.Comment{ReviewID: review.ID, AuthorID: alice.ID, Text: "first"}).Error)
	require.NoError(t, db.Create(&models.Comment{ReviewID: review.ID, AuthorID: alice.ID, Text: "second"}).Error)

	resp := doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments/", title.ID, review.ID), nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var comments []map[string]interface{}
	decodeBody(t, resp, &comments)
	assert.Len(t, comments, 2)
}

func TestUpdateCommentOwnership(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	alice := createUser(t, db, "alice", models.RoleUser)
	bob := createUser(t, db, "bob", models.RoleUser)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	title := createTitle(t, db, "Solaris")
	review := createReview(t, db, title, alice, 8)
	comment := &models.Comment{ReviewID: review.ID, AuthorID: alice.ID, Text: "original"}
	require.NoError(t, db.Create(comment).Error)
	path := fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments/%d", title.ID, review.ID, comment.ID)

	resp := doJSON(t, app, http.MethodPatch, path,
		map[string]interface{}{"text": "vandalism"}, tokenFor(t, srv, bob))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPatch, path,
		map[string]interface{}{"text": "edited"}, tokenFor(t, srv, alice))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPatch, path,
		map[string]interface{}{"text": "admin edit"}, tokenFor(t, srv, admin))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeleteCommentOwnership(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	alice := createUser(t, db, "alice", models.RoleUser)
	bob := createUser(t, db, "bob", models.RoleUser)
	title := createTitle(t, db, "Solaris")
	review := createReview(t, db, title, alice, 8)
	comment := &models.Comment{ReviewID: review.ID, AuthorID: alice.ID, Text: "x"}
	require.NoError(t, db.Create(comment).Error)
	path := fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments/%d", title.ID, review.ID, comment.ID)

	resp := doJSON(t, app, http.MethodDelete, path, nil, tokenFor(t, srv, bob))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, path, nil, tokenFor(t, srv, alice))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestDeleteReviewCascadesComments(t *testing.T) {
	srv, app, db, _ := setupTestServer(t)
	alice := createUser(t, db, "alice", models.RoleUser)
	title := createTitle(t, db, "Solaris")
	review := createReview(t, db, title, alice, 8)
	require.NoError(t, db.Create(&models.Comment{ReviewID: review.ID, AuthorID: alice.ID, Text: "x"}).Error)

	resp := doJSON(t, app, http.MethodDelete,
		fmt.Sprintf("/api/v1/titles/%d/reviews/%d", title.ID, review.ID), nil, tokenFor(t, srv, alice))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
