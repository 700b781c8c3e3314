package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	mw "github.com/padraicbc/racecal/middleware"
	"github.com/padraicbc/racecal/models"
)

func userWithPassword(t *testing.T, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return &models.User{
		ID:           "u1",
		Name:         "Mario Rossi",
		Email:        "mario@example.com",
		PasswordHash: string(hash),
	}
}

func TestSigninIssuesTokenWithSessionIdentity(t *testing.T) {
	e := newTestServer(newFakeRaceStore(), newFakeUserStore(userWithPassword(t, "hunter2")), "")

	rec := doJSON(e, http.MethodPost, "/auth/signin",
		`{"email":"mario@example.com","password":"hunter2"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["token"])

	claims := &mw.Claims{}
	_, err := jwt.ParseWithClaims(body["token"], claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-key"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "Mario Rossi", claims.Name)
	assert.Equal(t, "mario@example.com", claims.Email)
}

func TestSigninRejectsWrongPassword(t *testing.T) {
	e := newTestServer(newFakeRaceStore(), newFakeUserStore(userWithPassword(t, "hunter2")), "")

	rec := doJSON(e, http.MethodPost, "/auth/signin",
		`{"email":"mario@example.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSigninUnknownEmail(t *testing.T) {
	e := newTestServer(newFakeRaceStore(), newFakeUserStore(), "")

	rec := doJSON(e, http.MethodPost, "/auth/signin",
		`{"email":"nobody@example.com","password":"x"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("   ")
	assert.Error(t, err)

	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))
}
