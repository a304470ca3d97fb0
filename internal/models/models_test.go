package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfile_Label(t *testing.T) {
	tests := []struct {
		profile Profile
		want    string
	}{
		{Profile{ID: "1", Username: "ada", GlobalName: "Ada"}, "Ada | @ada (1)"},
		{Profile{ID: "2", Username: "bob", Discriminator: "0"}, "bob | @bob (2)"},
		{Profile{ID: "3", Username: "eve", Discriminator: "1337"}, "eve | @eve#1337 (3)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.profile.Label())
	}
}

func TestLink_Normalize(t *testing.T) {
	link := Link{Type: LinkTypeNone, Password: "hash", Users: []string{"1"}}
	link.Normalize()
	assert.Empty(t, link.Password)
	assert.Nil(t, link.Users)

	link = Link{Type: LinkTypePassword, Password: "hash", Users: []string{"1"}}
	link.Normalize()
	assert.Equal(t, "hash", link.Password)
	assert.Nil(t, link.Users)

	link = Link{Type: LinkTypeDiscord, Password: "hash", Users: []string{"1"}}
	link.Normalize()
	assert.Empty(t, link.Password)
	assert.True(t, link.HasUser("1"))
	assert.False(t, link.HasUser("2"))
}

func TestNewVisit(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	granted := NewVisit(AnonymousUser, true, at)
	assert.Equal(t, Visit{User: AnonymousUser, Result: VisitGranted, Date: 1700000000123}, granted)
	assert.True(t, granted.Time().Equal(at))

	assert.Equal(t, VisitDenied, NewVisit("x", false, at).Result)
}

func TestLinkType_Valid(t *testing.T) {
	assert.True(t, LinkTypeNone.Valid())
	assert.True(t, LinkTypeDiscord.Valid())
	assert.False(t, LinkType("sso").Valid())
	assert.False(t, LinkType("").Valid())
}
