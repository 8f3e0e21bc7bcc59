package model

import "time"

// Repository is a single GitHub repository record. Immutable once fetched.
type Repository struct {
	ID             int64
	Name           string
	FullName       string
	OwnerLogin     string
	OwnerAvatarURL string
	Description    string
	HTMLURL        string
	Homepage       string
	Language       string
	Topics         []string
	License        string
	Stars          int
	Forks          int
	Watchers       int
	OpenIssues     int
	Size           int
	Fork           bool
	Archived       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	PushedAt       time.Time
}

// RepoSort is the sort order accepted by the repository list endpoint.
type RepoSort string

const (
	RepoSortUpdated  RepoSort = "updated"
	RepoSortCreated  RepoSort = "created"
	RepoSortPushed   RepoSort = "pushed"
	RepoSortFullName RepoSort = "full_name"
)

// DefaultRepoSort is applied when no sort order is supplied.
const DefaultRepoSort = RepoSortUpdated

// ParseRepoSort validates a sort string, returning DefaultRepoSort for the
// empty string and false for anything the upstream API would reject.
func ParseRepoSort(s string) (RepoSort, bool) {
	switch RepoSort(s) {
	case "":
		return DefaultRepoSort, true
	case RepoSortUpdated, RepoSortCreated, RepoSortPushed, RepoSortFullName:
		return RepoSort(s), true
	default:
		return "", false
	}
}
