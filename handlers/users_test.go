package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/racecal/models"
	"github.com/padraicbc/racecal/store"
)

type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: map[string]*models.User{}}
	for _, u := range users {
		cp := *u
		s.users[u.ID] = &cp
	}
	return s
}

func (s *fakeUserStore) ByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) ByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeUserStore) Insert(_ context.Context, user *models.User) error {
	user.ID = "assigned-user-id"
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *fakeUserStore) Update(_ context.Context, id string, patch models.UserPatch) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u.ApplyPatch(patch)
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) Delete(_ context.Context, id string) error {
	delete(s.users, id)
	return nil
}

func TestCreateUserAssignsID(t *testing.T) {
	e := newTestServer(newFakeRaceStore(), newFakeUserStore(), "")

	rec := doJSON(e, http.MethodPost, "/user",
		`{"name":"Mario Rossi","email":"mario@example.com","interests":["trail"]}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Mario Rossi", created.Name)
}

func TestCreateUserRejectsUnknownInterest(t *testing.T) {
	e := newTestServer(newFakeRaceStore(), newFakeUserStore(), "")

	rec := doJSON(e, http.MethodPost, "/user",
		`{"name":"Mario","email":"mario@example.com","interests":["swim"]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUserRequiresEmail(t *testing.T) {
	e := newTestServer(newFakeRaceStore(), newFakeUserStore(), "")

	rec := doJSON(e, http.MethodPost, "/user", `{"name":"Mario"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUserNeverSerializesPasswordHash(t *testing.T) {
	e := newTestServer(newFakeRaceStore(), newFakeUserStore(), "")

	rec := doJSON(e, http.MethodPost, "/user",
		`{"name":"Mario","email":"mario@example.com","password":"hunter2"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestGetUserNotFound(t *testing.T) {
	e := newTestServer(newFakeRaceStore(), newFakeUserStore(), "")

	rec := doJSON(e, http.MethodGet, "/user/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateUserIsSelfService(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: "u1", Name: "Mario", Email: "mario@example.com"})
	e := newTestServer(newFakeRaceStore(), users, "someone-else")

	rec := doJSON(e, http.MethodPut, "/user/u1", `{"name":"Luigi"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateUserMergesFields(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: "u1", Name: "Mario", Email: "mario@example.com", Interests: []string{"trail"}})
	e := newTestServer(newFakeRaceStore(), users, "u1")

	rec := doJSON(e, http.MethodPut, "/user/u1", `{"name":"Luigi"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Luigi", updated.Name)
	assert.Equal(t, "mario@example.com", updated.Email)
	assert.Equal(t, []string{"trail"}, updated.Interests)
}

func TestDeleteUserReturnsConfirmation(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: "u1", Name: "Mario", Email: "mario@example.com"})
	e := newTestServer(newFakeRaceStore(), users, "u1")

	rec := doJSON(e, http.MethodDelete, "/user/u1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "User deleted successfully")

	// Deleting again still confirms: no existence check at this layer.
	rec = doJSON(e, http.MethodDelete, "/user/u1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
