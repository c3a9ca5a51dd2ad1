package domain

import "fmt"

const avatarCDNURL = "https://cdn.discordapp.com/avatars"

// Identity is the identity provider's profile of the authenticated user.
// ID is the key for every authorization decision.
type Identity struct {
	ID            string
	Username      string
	Discriminator string
	GlobalName    string
	Avatar        string
}

// DisplayName prefers the friendly global name over the handle.
func (i Identity) DisplayName() string {
	if i.GlobalName != "" {
		return i.GlobalName
	}
	return i.Username
}

// AvatarURL returns the CDN URL of the avatar, or "" if the user has none.
func (i Identity) AvatarURL() string {
	if i.Avatar == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s.png", avatarCDNURL, i.ID, i.Avatar)
}
