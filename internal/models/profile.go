package models

import "fmt"

// Profile is the Discord user behind an access token.
type Profile struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator,omitempty"`
	GlobalName    string `json:"global_name,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
}

// DisplayName prefers the global name and falls back to the username.
func (p *Profile) DisplayName() string {
	if p.GlobalName != "" {
		return p.GlobalName
	}
	return p.Username
}

// Label formats the profile for the access log:
// "<displayName> | @<username>[#<discriminator>] (<id>)".
// Migrated accounts report discriminator "0", which is omitted.
func (p *Profile) Label() string {
	handle := "@" + p.Username
	if p.Discriminator != "" && p.Discriminator != "0" {
		handle += "#" + p.Discriminator
	}
	return fmt.Sprintf("%s | %s (%s)", p.DisplayName(), handle, p.ID)
}
