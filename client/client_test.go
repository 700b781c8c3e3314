package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/racecal/models"
)

func day(month, d int) time.Time {
	return time.Date(2024, time.Month(month), d, 0, 0, 0, 0, time.UTC)
}

func listRace(id string, date time.Time) models.Race {
	return models.Race{
		ID:       id,
		IDOwner:  "owner-1",
		Title:    "Race " + id,
		Length:   10,
		Data:     date,
		Comments: []models.Comment{},
		Likes:    []models.Like{},
	}
}

// apiStub serves a canned race list and lets tests pick per-route behavior.
type apiStub struct {
	races       []models.Race
	putStatus   int
	delStatus   int
	postStatus  int
	created     *models.Race
	putResponse *models.Race
	lastPut     map[string]json.RawMessage
}

func (a *apiStub) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /race", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(a.races)
	})
	mux.HandleFunc("PUT /race/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.lastPut = map[string]json.RawMessage{}
		_ = json.NewDecoder(r.Body).Decode(&a.lastPut)
		status := a.putStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if status == http.StatusOK {
			res := a.races[0]
			if a.putResponse != nil {
				res = *a.putResponse
			}
			_ = json.NewEncoder(w).Encode(res)
		}
	})
	mux.HandleFunc("DELETE /race/{id}", func(w http.ResponseWriter, r *http.Request) {
		status := a.delStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})
	mux.HandleFunc("POST /race", func(w http.ResponseWriter, r *http.Request) {
		status := a.postStatus
		if status == 0 {
			status = http.StatusCreated
		}
		w.WriteHeader(status)
		if status == http.StatusCreated && a.created != nil {
			_ = json.NewEncoder(w).Encode(a.created)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func signedIn(t *testing.T, stub *apiStub) *Client {
	t.Helper()

	srv := stub.server(t)
	c := New(srv.URL)
	c.SetSession("token", "me")
	require.NoError(t, c.Refresh(context.Background()))
	return c
}

func TestRefreshSortsByDateAscending(t *testing.T) {
	stub := &apiStub{races: []models.Race{
		listRace("a", day(5, 1)),
		listRace("b", day(3, 1)),
		listRace("c", day(4, 1)),
	}}
	c := signedIn(t, stub)

	got := c.Races()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestToggleLikeTwiceRestoresOriginalState(t *testing.T) {
	stub := &apiStub{races: []models.Race{listRace("a", day(5, 1))}}
	c := signedIn(t, stub)

	require.NoError(t, c.ToggleLike(context.Background(), "a"))
	liked := c.Races()[0]
	assert.True(t, liked.LikedBy("me"))

	require.NoError(t, c.ToggleLike(context.Background(), "a"))
	unliked := c.Races()[0]
	assert.False(t, unliked.LikedBy("me"))
	assert.Empty(t, unliked.Likes)
}

func TestToggleLikeSendsLikesOnlyPatch(t *testing.T) {
	stub := &apiStub{races: []models.Race{listRace("a", day(5, 1))}}
	c := signedIn(t, stub)

	require.NoError(t, c.ToggleLike(context.Background(), "a"))

	require.Contains(t, stub.lastPut, "likes")
	assert.NotContains(t, stub.lastPut, "title")
	assert.NotContains(t, stub.lastPut, "comments")
}

func TestToggleLikeRollsBackOnFailure(t *testing.T) {
	stub := &apiStub{races: []models.Race{listRace("a", day(5, 1))}, putStatus: http.StatusInternalServerError}
	c := signedIn(t, stub)
	before := c.Races()

	err := c.ToggleLike(context.Background(), "a")

	require.Error(t, err)
	assert.Equal(t, before, c.Races())
	assert.Equal(t, "Could not update like. Try again.", c.LastError())
}

func TestAddCommentAppends(t *testing.T) {
	race := listRace("a", day(5, 1))
	race.Comments = []models.Comment{{UserID: "alice", Content: "first", Date: day(4, 1)}}
	stub := &apiStub{races: []models.Race{race}}
	c := signedIn(t, stub)

	require.NoError(t, c.AddComment(context.Background(), "a", "ci sono"))

	got := c.Races()[0].Comments
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Content)
	assert.Equal(t, "ci sono", got[1].Content)
	assert.Equal(t, "me", got[1].UserID)
}

func TestAddCommentRollsBackOnFailure(t *testing.T) {
	stub := &apiStub{races: []models.Race{listRace("a", day(5, 1))}, putStatus: http.StatusInternalServerError}
	c := signedIn(t, stub)
	before := c.Races()

	err := c.AddComment(context.Background(), "a", "ci sono")

	require.Error(t, err)
	assert.Equal(t, before, c.Races())
	assert.Equal(t, "Could not add comment. Try again.", c.LastError())
}

func TestDeleteFailureLeavesListExactlyAsBefore(t *testing.T) {
	stub := &apiStub{
		races: []models.Race{
			listRace("a", day(3, 1)),
			listRace("b", day(4, 1)),
		},
		delStatus: http.StatusInternalServerError,
	}
	c := signedIn(t, stub)
	before := c.Races()

	err := c.Delete(context.Background(), "a")

	require.Error(t, err)
	assert.Equal(t, before, c.Races())
	assert.Equal(t, "Could not delete race.", c.LastError())
}

func TestDeleteRemovesEntryOnSuccess(t *testing.T) {
	stub := &apiStub{races: []models.Race{
		listRace("a", day(3, 1)),
		listRace("b", day(4, 1)),
	}}
	c := signedIn(t, stub)

	require.NoError(t, c.Delete(context.Background(), "a"))

	got := c.Races()
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestCreateAdoptsServerVersionAndResorts(t *testing.T) {
	created := listRace("server-id", day(3, 15))
	created.Title = "Nuova Gara"
	stub := &apiStub{
		races:   []models.Race{listRace("a", day(3, 1)), listRace("b", day(4, 1))},
		created: &created,
	}
	c := signedIn(t, stub)

	race := models.Race{Title: "Nuova Gara", Length: 12, Data: day(3, 15)}
	require.NoError(t, c.Create(context.Background(), race))

	got := c.Races()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "server-id", "b"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestCreateRollsBackOnFailure(t *testing.T) {
	stub := &apiStub{
		races:      []models.Race{listRace("a", day(3, 1))},
		postStatus: http.StatusInternalServerError,
	}
	c := signedIn(t, stub)
	before := c.Races()

	err := c.Create(context.Background(), models.Race{Title: "x", Length: 1, Data: day(5, 1)})

	require.Error(t, err)
	assert.Equal(t, before, c.Races())
}

func TestEditDoesNotResort(t *testing.T) {
	moved := listRace("a", day(6, 1))
	stub := &apiStub{
		races:       []models.Race{listRace("a", day(3, 1)), listRace("b", day(4, 1))},
		putResponse: &moved,
	}
	c := signedIn(t, stub)

	require.NoError(t, c.Edit(context.Background(), moved))

	got := c.Races()
	require.Len(t, got, 2)
	// The edited race moved to June but stays in first position until refresh.
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, day(6, 1), got[0].Data)
}

func TestMutationsRequireSession(t *testing.T) {
	stub := &apiStub{races: []models.Race{listRace("a", day(3, 1))}}
	srv := stub.server(t)

	c := New(srv.URL)
	require.NoError(t, c.Refresh(context.Background()))
	before := c.Races()

	assert.ErrorIs(t, c.ToggleLike(context.Background(), "a"), ErrSignInRequired)
	assert.ErrorIs(t, c.AddComment(context.Background(), "a", "x"), ErrSignInRequired)
	assert.ErrorIs(t, c.Create(context.Background(), models.Race{}), ErrSignInRequired)
	assert.ErrorIs(t, c.Edit(context.Background(), listRace("a", day(3, 1))), ErrSignInRequired)
	assert.ErrorIs(t, c.Delete(context.Background(), "a"), ErrSignInRequired)
	assert.Equal(t, before, c.Races())
}

func TestFilterIsPureProjection(t *testing.T) {
	a := listRace("a", day(3, 1))
	a.Title = "Dolomiti Trail"
	a.Typology = models.InterestTrail
	b := listRace("b", day(4, 1))
	b.Title = "Maratona di Trento"
	b.Typology = models.InterestMarathon
	stub := &apiStub{races: []models.Race{a, b}}
	c := signedIn(t, stub)

	before := c.Races()

	byText := c.Filter("dolomiti", "all")
	require.Len(t, byText, 1)
	assert.Equal(t, "a", byText[0].ID)

	byTypology := c.Filter("", models.InterestMarathon)
	require.Len(t, byTypology, 1)
	assert.Equal(t, "b", byTypology[0].ID)

	none := c.Filter("nonexistent", "")
	assert.Empty(t, none)

	// Canonical list untouched.
	assert.Equal(t, before, c.Races())
}
