package domain

import (
	"context"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// User is a single directory entry. Email is stored lowercased and is
// globally unique; the DB index is the last authority under concurrent
// writes. ProfileImage holds a filename inside the image store, empty
// means no photo.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	FirstName    string    `gorm:"size:64;not null" json:"firstName"`
	LastName     string    `gorm:"size:64;not null" json:"lastName"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Mobile       string    `gorm:"size:16;not null" json:"mobile"`
	Gender       Gender    `gorm:"size:8;not null" json:"gender"`
	Status       Status    `gorm:"size:10;not null;default:Active" json:"status"`
	Location     string    `gorm:"size:128;not null" json:"location"`
	ProfileImage string    `gorm:"size:191" json:"profileImage,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// ListQuery selects a page of users. Search is a free-text,
// case-insensitive substring match over firstName/lastName/email/location.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
}

type UserStore interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	// FindByEmail looks up a lowercased email; excludeID, when non-empty,
	// leaves that record out of the match (self-exclusion on update).
	FindByEmail(ctx context.Context, email, excludeID string) (*User, error)
	List(ctx context.Context, q ListQuery) ([]User, int64, error)
	// FindAllForExport returns the whole matching set, unpaginated. The
	// search additionally covers mobile.
	FindAllForExport(ctx context.Context, search string) ([]User, error)
	Save(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}
