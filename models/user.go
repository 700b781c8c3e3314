package models

import "github.com/uptrace/bun"

// User is a community member. The password hash is only set for accounts
// created through the credential flow and is never serialized.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string   `bun:"id,pk" json:"_id"`
	Name         string   `bun:"name,notnull" json:"name"`
	Email        string   `bun:"email,notnull,unique" json:"email"`
	Interests    []string `bun:"interests,array" json:"interests"`
	PasswordHash string   `bun:"password_hash,notnull,default:''" json:"-"`
}

// UserPatch is a partial update to a user profile. Nil fields are untouched;
// the identifier and password hash are not patchable through the API.
type UserPatch struct {
	Name      *string   `json:"name"`
	Email     *string   `json:"email"`
	Interests *[]string `json:"interests"`
}

// ApplyPatch merges p into the user.
func (u *User) ApplyPatch(p UserPatch) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Interests != nil {
		u.Interests = *p.Interests
	}
}
