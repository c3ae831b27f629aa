package model

import "time"

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
	VisibilityFriends = "friends"
)

// HiddenBio replaces the real bio when a private profile is viewed by a
// non-owner.
const HiddenBio = "This profile is private"

type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time

	FirstName *string
	LastName  *string
	Phone     *string
	BirthDate *time.Time
	Bio       *string
	AvatarURL *string
	Location  *string
	Website   *string
	Company   *string
	JobTitle  *string

	ProfileVisibility string
	ShowEmail         bool
	ShowPhone         bool
	ShowBirthDate     bool

	LastLogin        *time.Time
	ProfileUpdatedAt time.Time
}

// RefreshSession is one persisted refresh-token record. Records are keyed
// by the SHA-256 of the token value and deactivated rather than deleted.
type RefreshSession struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	IsActive  bool
	CreatedAt time.Time
}

// AuthUser is the resolved identity of an authenticated caller.
type AuthUser struct {
	ID       int64
	Username string
}

// PublicProfile is the projection of a profile visible to a given viewer.
// Email, phone and birth date are only present when the owner's privacy
// settings allow it.
type PublicProfile struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	FirstName *string    `json:"firstName"`
	LastName  *string    `json:"lastName"`
	Bio       *string    `json:"bio"`
	AvatarURL *string    `json:"avatarUrl"`
	Location  *string    `json:"location"`
	Website   *string    `json:"website"`
	Company   *string    `json:"company"`
	JobTitle  *string    `json:"jobTitle"`
	CreatedAt time.Time  `json:"createdAt"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	BirthDate *time.Time `json:"birthDate"`
}

// ProfileUpdate is a partial profile mutation. Nil fields are absent and
// leave the stored value untouched.
type ProfileUpdate struct {
	FirstName *string    `json:"firstName"`
	LastName  *string    `json:"lastName"`
	Phone     *string    `json:"phone"`
	BirthDate *time.Time `json:"birthDate"`
	Bio       *string    `json:"bio"`
	Location  *string    `json:"location"`
	Website   *string    `json:"website"`
	Company   *string    `json:"company"`
	JobTitle  *string    `json:"jobTitle"`
}

// ApplyTo merges the present fields into user, field by field.
func (u ProfileUpdate) ApplyTo(user *User) {
	if u.FirstName != nil {
		user.FirstName = u.FirstName
	}
	if u.LastName != nil {
		user.LastName = u.LastName
	}
	if u.Phone != nil {
		user.Phone = u.Phone
	}
	if u.BirthDate != nil {
		user.BirthDate = u.BirthDate
	}
	if u.Bio != nil {
		user.Bio = u.Bio
	}
	if u.Location != nil {
		user.Location = u.Location
	}
	if u.Website != nil {
		user.Website = u.Website
	}
	if u.Company != nil {
		user.Company = u.Company
	}
	if u.JobTitle != nil {
		user.JobTitle = u.JobTitle
	}
}

// PrivacyUpdate is a partial mutation of the visibility policy.
type PrivacyUpdate struct {
	ProfileVisibility *string `json:"profileVisibility"`
	ShowEmail         *bool   `json:"showEmail"`
	ShowPhone         *bool   `json:"showPhone"`
	ShowBirthDate     *bool   `json:"showBirthDate"`
}

func (u PrivacyUpdate) ApplyTo(user *User) {
	if u.ProfileVisibility != nil {
		user.ProfileVisibility = *u.ProfileVisibility
	}
	if u.ShowEmail != nil {
		user.ShowEmail = *u.ShowEmail
	}
	if u.ShowPhone != nil {
		user.ShowPhone = *u.ShowPhone
	}
	if u.ShowBirthDate != nil {
		user.ShowBirthDate = *u.ShowBirthDate
	}
}

// AccountUpdate is a partial mutation of the credential record.
type AccountUpdate struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Password *string `json:"password"`
}
