package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Password length limits. 72 bytes is the bcrypt input limit.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// User is a registered account. A user appears in project rosters as a
// TeamMember.
type User struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	ExperienceYears int       `json:"experienceYears"`
	Skills          []string  `json:"skills"`
	Password        string    `json:"-"` // plaintext, only during registration
	HashedPassword  string    `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewUser builds a user from registration data. The caller hashes Password
// before the user is stored.
func NewUser(email, password, name, role string, experienceYears int, skills []string) (*User, error) {
	now := time.Now().UTC()
	u := &User{
		ID:              uuid.New(),
		Email:           strings.ToLower(strings.TrimSpace(email)),
		Name:            strings.TrimSpace(name),
		Role:            strings.TrimSpace(role),
		ExperienceYears: experienceYears,
		Skills:          normalizeSkills(skills),
		Password:        password,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks the user record. Either a plaintext password within the
// length limits or a stored hash must be present.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if addr, err := mail.ParseAddress(u.Email); err != nil || addr.Address != u.Email {
		return ErrInvalidEmail
	}
	if u.Name == "" {
		return ErrEmptyName
	}
	if u.ExperienceYears < 0 {
		return ErrNegativeExperience
	}
	if u.Password != "" {
		if len(u.Password) < MinPasswordLength {
			return ErrPasswordTooShort
		}
		if len(u.Password) > MaxPasswordLength {
			return ErrPasswordTooLong
		}
		return nil
	}
	if u.HashedPassword == "" {
		return ErrEmptyHashedPassword
	}
	return nil
}

// AsTeamMember projects the user into a project roster entry.
func (u *User) AsTeamMember() TeamMember {
	return TeamMember{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		Skills:          append([]string(nil), u.Skills...),
		ExperienceYears: u.ExperienceYears,
	}
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
