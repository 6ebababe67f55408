package user

import (
	"context"
	"errors"
	"time"
)

// Account types.
const (
	TypeEmail  = "EMAIL"
	TypeSocial = "SOCIAL"
)

var (
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned by Save when the email+type pair already exists.
	ErrDuplicate = errors.New("user already exists")
)

// User is one stored account.
type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Type          string    `json:"type"`
	SocialID      string    `json:"socialId,omitempty"`
	Address       string    `json:"address,omitempty"`
	AddressPostNo string    `json:"addressPostNo,omitempty"`
	DropFlag      bool      `json:"dropFlag"`
	TempFlag      bool      `json:"tempFlag"`
	RegisterTime  time.Time `json:"registerTime"`
	ModifyTime    time.Time `json:"modifyTime"`
}

// DisplayName joins first and last name the way tokens carry it.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Draft is the insert shape for Save. PasswordHash is already hashed.
type Draft struct {
	Email         string
	PasswordHash  string
	FirstName     string
	LastName      string
	Type          string
	SocialID      string
	Address       string
	AddressPostNo string
	TempFlag      bool
}

// Directory is the persistent account store.
//
// Update methods stamp the modify time and return ErrNotFound when no row
// matched id.
type Directory interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindBySocialID(ctx context.Context, socialID string) (*User, bool, error)
	Save(ctx context.Context, draft Draft) (int64, error)
	CountByEmailAndType(ctx context.Context, email, accountType string) (int64, error)
	// List returns accounts ordered by register time, newest first, along with
	// the total account count.
	List(ctx context.Context, offset, limit int) ([]User, int64, error)

	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateAddress(ctx context.Context, id int64, address, postNo string) error
	UpdateName(ctx context.Context, id int64, firstName, lastName string) error
	UpdateDropFlag(ctx context.Context, id int64, drop bool) error
	UpdateTempFlag(ctx context.Context, id int64, temp bool) error
}
