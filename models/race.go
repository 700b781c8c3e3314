package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Comment is a single user comment embedded in a race document.
// Comments are append-only: there is no edit or delete of individual entries.
type Comment struct {
	UserID  string    `json:"userId"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
}

// Like records one user's like. A race holds at most one per user.
type Like struct {
	UserID string    `json:"userId"`
	Date   time.Time `json:"date"`
}

// Race is a calendar event for a running competition. Comments and likes are
// embedded jsonb documents, mirroring the collection layout this data was
// migrated from.
type Race struct {
	bun.BaseModel `bun:"table:races,alias:rc"`

	ID             string    `bun:"id,pk" json:"_id"`
	IDOwner        string    `bun:"idowner,notnull" json:"idowner"`
	Title          string    `bun:"title,notnull" json:"title"`
	Description    string    `bun:"description,notnull,default:''" json:"description"`
	Length         float64   `bun:"length,notnull" json:"length"`
	Data           time.Time `bun:"data,notnull,type:date" json:"data"`
	PrincipalImage string    `bun:"principalimage,notnull,default:''" json:"principalimage"`
	OtherImage     []string  `bun:"otherimage,array" json:"otherImage"`
	Typology       string    `bun:"typology,notnull,default:''" json:"typology"`
	Latitude       *float64  `bun:"latitude" json:"latitude,omitempty"`
	Longitude      *float64  `bun:"longitude" json:"longitude,omitempty"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	Comments       []Comment `bun:"comments,type:jsonb" json:"comments"`
	Likes          []Like    `bun:"likes,type:jsonb" json:"likes"`
}

// LikedBy reports whether userID currently likes the race.
func (r *Race) LikedBy(userID string) bool {
	for _, l := range r.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// ToggleLike adds userID's like when absent and removes it when present,
// so a double toggle restores the original set. Returns true when the like
// was added.
func (r *Race) ToggleLike(userID string, at time.Time) bool {
	for i, l := range r.Likes {
		if l.UserID == userID {
			r.Likes = append(r.Likes[:i:i], r.Likes[i+1:]...)
			return false
		}
	}
	r.Likes = append(r.Likes, Like{UserID: userID, Date: at})
	return true
}

// AddComment appends a comment, preserving the order of prior entries.
func (r *Race) AddComment(c Comment) {
	r.Comments = append(r.Comments, c)
}

func (r *Race) hasComment(c Comment) bool {
	for _, have := range r.Comments {
		if have.UserID == c.UserID && have.Content == c.Content && have.Date.Equal(c.Date) {
			return true
		}
	}
	return false
}

// RacePatch is a partial update to a race. Nil fields are left untouched.
// Comments and Likes carry the client's desired state of the embedded lists;
// ApplyPatch reduces them to the actor's own append/toggle so concurrent
// edits from other users are never overwritten. ID, owner and createdAt are
// not patchable.
type RacePatch struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	Length         *float64   `json:"length"`
	Data           *time.Time `json:"data"`
	PrincipalImage *string    `json:"principalimage"`
	OtherImage     *[]string  `json:"otherImage"`
	Typology       *string    `json:"typology"`
	Latitude       *float64   `json:"latitude"`
	Longitude      *float64   `json:"longitude"`
	Comments       *[]Comment `json:"comments"`
	Likes          *[]Like    `json:"likes"`
}

// TouchesTrackedFields reports whether the patch edits anything beyond the
// embedded comment/like lists. Tracked-field edits are owner-only.
func (p *RacePatch) TouchesTrackedFields() bool {
	return p.Title != nil || p.Description != nil || p.Length != nil ||
		p.Data != nil || p.PrincipalImage != nil || p.OtherImage != nil ||
		p.Typology != nil || p.Latitude != nil || p.Longitude != nil
}

// ApplyPatch merges p into the race on behalf of actorID:
//   - scalar fields replace the current value when present;
//   - comments: entries authored by the actor and not already present are
//     appended, existing comments survive untouched;
//   - likes: only the actor's own membership is toggled to match the
//     desired list, everyone else's likes are kept as-is.
func (r *Race) ApplyPatch(p RacePatch, actorID string, now time.Time) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Length != nil {
		r.Length = *p.Length
	}
	if p.Data != nil {
		r.Data = *p.Data
	}
	if p.PrincipalImage != nil {
		r.PrincipalImage = *p.PrincipalImage
	}
	if p.OtherImage != nil {
		r.OtherImage = *p.OtherImage
	}
	if p.Typology != nil {
		r.Typology = *p.Typology
	}
	if p.Latitude != nil {
		r.Latitude = p.Latitude
	}
	if p.Longitude != nil {
		r.Longitude = p.Longitude
	}

	if p.Comments != nil {
		for _, c := range *p.Comments {
			if c.UserID != actorID || r.hasComment(c) {
				continue
			}
			if c.Date.IsZero() {
				c.Date = now
			}
			r.AddComment(c)
		}
	}

	if p.Likes != nil {
		want := false
		for _, l := range *p.Likes {
			if l.UserID == actorID {
				want = true
				break
			}
		}
		if want != r.LikedBy(actorID) {
			r.ToggleLike(actorID, now)
		}
	}
}
