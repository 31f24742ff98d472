// Package model defines domain entities for the application.
package model

import "time"

// Profile is the persisted user profile record.
// Timestamps are ISO-8601 UTC strings as written by the record store;
// CreatedAt is set once at first write and preserved on every update.
type Profile struct {
	UserID    string `json:"userId" redis:"user_id"`
	Email     string `json:"email" redis:"email"`
	Name      string `json:"name" redis:"name"`
	AvatarURL string `json:"avatarUrl" redis:"avatar_url"`
	CreatedAt string `json:"createdAt" redis:"created_at"`
	UpdatedAt string `json:"updatedAt" redis:"updated_at"`
}

// ProfileView is the wire representation returned to the caller,
// including flags derived from the stored fields.
type ProfileView struct {
	UserID             string `json:"userId"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	AvatarURL          string `json:"avatarUrl"`
	NameProvided       bool   `json:"nameProvided"`
	AvatarUploaded     bool   `json:"avatarUploaded"`
	OnboardingComplete bool   `json:"onboardingComplete"`
	CreatedAt          string `json:"createdAt"`
	UpdatedAt          string `json:"updatedAt"`
}

// View derives the wire representation from the stored record.
// Onboarding is complete once a display name is set; the avatar
// deliberately does not factor into it.
func (p *Profile) View() ProfileView {
	return ProfileView{
		UserID:             p.UserID,
		Email:              p.Email,
		Name:               p.Name,
		AvatarURL:          p.AvatarURL,
		NameProvided:       p.Name != "",
		AvatarUploaded:     p.AvatarURL != "",
		OnboardingComplete: p.Name != "",
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// DefaultProfileView is the transient view served when no record exists
// for the caller yet. Nothing is persisted for it.
func DefaultProfileView(userID, email string) ProfileView {
	return ProfileView{
		UserID: userID,
		Email:  email,
	}
}

// NewProfile builds a default profile record for a freshly confirmed
// account.
func NewProfile(userID, email string) *Profile {
	now := NowISO()
	return &Profile{
		UserID:    userID,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NowISO returns the current time as an ISO-8601 UTC string, the
// timestamp format stored on profile records.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
