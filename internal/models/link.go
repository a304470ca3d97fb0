package models

import "time"

// LinkType is the access policy of a link.
type LinkType string

const (
	LinkTypeNone     LinkType = "none"
	LinkTypePassword LinkType = "password"
	LinkTypeDiscord  LinkType = "discord"
)

// Valid reports whether t is one of the supported policies.
func (t LinkType) Valid() bool {
	switch t {
	case LinkTypeNone, LinkTypePassword, LinkTypeDiscord:
		return true
	}
	return false
}

// Link maps a short code to its destination under an access policy.
type Link struct {
	Code string   `json:"code"`
	Type LinkType `json:"type"`
	URL  string   `json:"url"`
	// Password holds the bcrypt hash of the link password.
	Password string    `json:"-"`
	Users    []string  `json:"users,omitempty"`
	Views    []Visit   `json:"views"`
	Created  time.Time `json:"created_at"`
	Updated  time.Time `json:"updated_at"`
}

// HasUser reports whether id is on the link's Discord allow-list.
func (l *Link) HasUser(id string) bool {
	for _, u := range l.Users {
		if u == id {
			return true
		}
	}
	return false
}

// Normalize clears the fields that do not apply to the link's type.
func (l *Link) Normalize() {
	if l.Type != LinkTypePassword {
		l.Password = ""
	}
	if l.Type != LinkTypeDiscord {
		l.Users = nil
	}
}

// SaveLinkInput is the admin payload for creating or replacing a link.
type SaveLinkInput struct {
	ID       string   `json:"id" binding:"required"`
	Type     LinkType `json:"type" binding:"required,linktype"`
	URL      string   `json:"url" binding:"required,url"`
	Users    []string `json:"users,omitempty"`
	Password string   `json:"password,omitempty"`
}

// VisitRequest is a visitor's attempt to open a gated link.
type VisitRequest struct {
	ID       string   `json:"id" binding:"required"`
	Type     LinkType `json:"type"`
	Password string   `json:"password,omitempty"`
	Token    string   `json:"token,omitempty"`
}

// AccessDecision is the outcome of resolving a visit.
type AccessDecision struct {
	Granted bool   `json:"-"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
}
