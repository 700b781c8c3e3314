// Package client keeps an in-memory race list consistent with the server.
// Mutations are applied optimistically: the local list changes first, the
// request goes out, and a failure restores the exact pre-mutation snapshot
// and surfaces a single human-readable message. No retries are attempted.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/padraicbc/racecal/models"
)

// ErrSignInRequired is returned when a mutating action is attempted without
// a session. The UI reacts by starting the sign-in flow instead.
var ErrSignInRequired = errors.New("client: sign in required")

// Client is the list controller. The canonical list is kept sorted ascending
// by event date; filtering is a pure projection and never touches it.
type Client struct {
	base string
	http *http.Client

	mu      sync.Mutex
	token   string
	userID  string
	races   []models.Race
	lastErr string
}

// New returns a controller talking to the API at base, e.g. "https://host".
func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: http.DefaultClient,
	}
}

// SetSession installs the signed-in user's token and identifier. Pass empty
// strings on sign-out.
func (c *Client) SetSession(token, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.userID = userID
}

// LastError returns the most recent user-visible error message, if any.
func (c *Client) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Races returns a copy of the canonical list.
func (c *Client) Races() []models.Race {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Race(nil), c.races...)
}

// Filter returns the races matching the search text (title or description,
// case-insensitive) and typology ("" or "all" matches every typology).
// Read-only: the canonical list is not modified.
func (c *Client) Filter(search, typology string) []models.Race {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(search))
	var out []models.Race
	for _, r := range c.races {
		matchSearch := q == "" ||
			strings.Contains(strings.ToLower(r.Title), q) ||
			strings.Contains(strings.ToLower(r.Description), q)
		matchTypology := typology == "" || typology == "all" || r.Typology == typology
		if matchSearch && matchTypology {
			out = append(out, r)
		}
	}
	return out
}

// Refresh replaces the canonical list with the server's, sorted ascending by
// event date.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var races []models.Race
	if err := c.do(ctx, http.MethodGet, "/race", nil, http.StatusOK, &races); err != nil {
		c.lastErr = "Failed to fetch races"
		return err
	}

	sortByDate(races)
	c.races = races
	c.lastErr = ""
	return nil
}

// ToggleLike flips the session user's like on the given race, optimistically.
// On success the optimistic state is kept as final; no re-fetch happens.
func (c *Client) ToggleLike(ctx context.Context, raceID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == "" {
		return ErrSignInRequired
	}

	idx := c.index(raceID)
	if idx < 0 {
		return fmt.Errorf("client: unknown race %q", raceID)
	}

	snapshot := clone(c.races)
	c.races[idx].ToggleLike(c.userID, time.Now().UTC())

	body := map[string][]models.Like{"likes": c.races[idx].Likes}
	if err := c.do(ctx, http.MethodPut, "/race/"+raceID, body, http.StatusOK, nil); err != nil {
		c.races = snapshot
		c.lastErr = "Could not update like. Try again."
		return err
	}
	c.lastErr = ""
	return nil
}

// AddComment appends a comment by the session user, optimistically.
func (c *Client) AddComment(ctx context.Context, raceID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == "" {
		return ErrSignInRequired
	}

	idx := c.index(raceID)
	if idx < 0 {
		return fmt.Errorf("client: unknown race %q", raceID)
	}

	snapshot := clone(c.races)
	c.races[idx].AddComment(models.Comment{
		UserID:  c.userID,
		Content: text,
		Date:    time.Now().UTC(),
	})

	body := map[string][]models.Comment{"comments": c.races[idx].Comments}
	if err := c.do(ctx, http.MethodPut, "/race/"+raceID, body, http.StatusOK, nil); err != nil {
		c.races = snapshot
		c.lastErr = "Could not add comment. Try again."
		return err
	}
	c.lastErr = ""
	return nil
}

// Create prepends the race optimistically, posts it, and on success replaces
// the local entry with the server's authoritative version before re-sorting
// by date.
func (c *Client) Create(ctx context.Context, race models.Race) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == "" {
		return ErrSignInRequired
	}

	snapshot := clone(c.races)

	tempID := "local-" + uuid.NewString()
	race.ID = tempID
	race.IDOwner = c.userID
	if race.Comments == nil {
		race.Comments = []models.Comment{}
	}
	if race.Likes == nil {
		race.Likes = []models.Like{}
	}
	c.races = append([]models.Race{race}, c.races...)

	var created models.Race
	if err := c.do(ctx, http.MethodPost, "/race", race, http.StatusCreated, &created); err != nil {
		c.races = snapshot
		c.lastErr = "Error creating race"
		return err
	}

	if idx := c.index(tempID); idx >= 0 {
		c.races[idx] = created
	}
	sortByDate(c.races)
	c.lastErr = ""
	return nil
}

// Edit replaces the local entry optimistically and sends the full tracked
// field set. On success the server's version is adopted. The list is not
// re-sorted, so an edit that moves the date leaves the entry in place until
// the next refresh.
func (c *Client) Edit(ctx context.Context, race models.Race) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == "" {
		return ErrSignInRequired
	}

	idx := c.index(race.ID)
	if idx < 0 {
		return fmt.Errorf("client: unknown race %q", race.ID)
	}

	snapshot := clone(c.races)
	c.races[idx] = race

	body := map[string]interface{}{
		"title":          race.Title,
		"description":    race.Description,
		"length":         race.Length,
		"data":           race.Data,
		"principalimage": race.PrincipalImage,
		"otherImage":     race.OtherImage,
		"typology":       race.Typology,
		"latitude":       race.Latitude,
		"longitude":      race.Longitude,
	}

	var updated models.Race
	if err := c.do(ctx, http.MethodPut, "/race/"+race.ID, body, http.StatusOK, &updated); err != nil {
		c.races = snapshot
		c.lastErr = "Could not update race."
		return err
	}

	c.races[idx] = updated
	c.lastErr = ""
	return nil
}

// Delete removes the race optimistically. A failed request restores the list
// to exactly its pre-delete contents.
func (c *Client) Delete(ctx context.Context, raceID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == "" {
		return ErrSignInRequired
	}

	snapshot := clone(c.races)

	kept := c.races[:0:0]
	for _, r := range c.races {
		if r.ID != raceID {
			kept = append(kept, r)
		}
	}
	c.races = kept

	if err := c.do(ctx, http.MethodDelete, "/race/"+raceID, nil, http.StatusOK, nil); err != nil {
		c.races = snapshot
		c.lastErr = "Could not delete race."
		return err
	}
	c.lastErr = ""
	return nil
}

// index returns the canonical list position of the race, or -1. Callers hold mu.
func (c *Client) index(raceID string) int {
	for i, r := range c.races {
		if r.ID == raceID {
			return i
		}
	}
	return -1
}

// do issues one request and decodes the response into out when non-nil. Any
// transport error or unexpected status is a single failure; there is no
// retry or backoff.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, want int, out interface{}) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != want {
		io.Copy(io.Discard, res.Body)
		return fmt.Errorf("client: %s %s: unexpected status %d", method, path, res.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(res.Body).Decode(out)
	}
	io.Copy(io.Discard, res.Body)
	return nil
}

func sortByDate(races []models.Race) {
	sort.SliceStable(races, func(i, j int) bool {
		return races[i].Data.Before(races[j].Data)
	})
}

func clone(races []models.Race) []models.Race {
	return append([]models.Race(nil), races...)
}
