package model

// Session is the persisted access token plus the authenticated profile.
// Token and User are always set and cleared together; a session with only
// one of the two never exists.
type Session struct {
	Token string
	User  Account
}
