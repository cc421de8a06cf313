package app

import (
	"slices"
	"strings"
)

// Role identifies the portal role of the signed-in user.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleTrainer       Role = "trainer"
	RoleParticipant   Role = "participant"
	RoleClient        Role = "client"
)

var validRoles = []Role{RoleAdministrator, RoleTrainer, RoleParticipant, RoleClient}

// ValidRole reports whether role is a known portal role.
func ValidRole(role string) bool {
	return slices.Contains(validRoles, Role(strings.ToLower(strings.TrimSpace(role))))
}

// Branding holds product display settings.
type Branding struct {
	ProductName string
	AccentColor string
}

// Session is the explicit user/branding context passed to UI surfaces.
type Session struct {
	UserID      string
	DisplayName string
	Role        Role
	Branding    Branding
}

// NewSession normalizes raw session values and fills display defaults.
func NewSession(userID, displayName, role string, branding Branding) Session {
	r := Role(strings.ToLower(strings.TrimSpace(role)))
	if !slices.Contains(validRoles, r) {
		r = RoleTrainer
	}
	branding.ProductName = strings.TrimSpace(branding.ProductName)
	if branding.ProductName == "" {
		branding.ProductName = "Workshop Agenda"
	}
	branding.AccentColor = strings.TrimSpace(branding.AccentColor)
	if branding.AccentColor == "" {
		branding.AccentColor = "62"
	}
	return Session{
		UserID:      strings.TrimSpace(userID),
		DisplayName: strings.TrimSpace(displayName),
		Role:        r,
		Branding:    branding,
	}
}

// Greeting renders a short "name · role" label.
func (s Session) Greeting() string {
	name := s.DisplayName
	if name == "" {
		name = s.UserID
	}
	if name == "" {
		return string(s.Role)
	}
	return name + " · " + string(s.Role)
}

// CanEditAgenda reports whether the role may create, edit, delete or reorder items.
func (s Session) CanEditAgenda() bool {
	return s.Role == RoleAdministrator || s.Role == RoleTrainer
}
