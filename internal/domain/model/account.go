package model

import "time"

// Account is a GitHub user or organization profile as returned by the
// search and user endpoints. Accounts are immutable once fetched.
type Account struct {
	ID          int64
	Login       string
	AvatarURL   string
	HTMLURL     string
	Name        string
	Bio         string
	Company     string
	Location    string
	Type        string
	SiteAdmin   bool
	Followers   int
	Following   int
	PublicRepos int
	CreatedAt   time.Time
}

// DisplayName returns the account's full name, falling back to the login
// handle when no name is set on the profile.
func (a Account) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Login
}
