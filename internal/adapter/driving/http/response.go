package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/ghexplorer/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeUpstreamError writes the normalized upstream failure: the upstream's
// own status code when it carried one, 502 otherwise, with the rate-limit
// flag so the caller can render the dedicated rate-limit notice.
func writeUpstreamError(w http.ResponseWriter, err *model.UpstreamError) {
	status := err.StatusCode
	if status < http.StatusBadRequest {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Error: err.Message, RateLimited: err.RateLimited})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error       string `json:"error"`
	RateLimited bool   `json:"rate_limited,omitempty"`
}

// AccountResponse is the JSON representation of a GitHub account. The same
// shape is accepted as the body of the select-user endpoint.
type AccountResponse struct {
	ID          int64  `json:"id"`
	Login       string `json:"login"`
	AvatarURL   string `json:"avatar_url"`
	HTMLURL     string `json:"html_url"`
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Type        string `json:"type"`
	SiteAdmin   bool   `json:"site_admin"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	PublicRepos int    `json:"public_repos"`
	CreatedAt   string `json:"created_at"`
}

// RepoResponse is the JSON representation of a repository. The same shape is
// accepted as the body of the select-repo endpoint.
type RepoResponse struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	FullName       string   `json:"full_name"`
	OwnerLogin     string   `json:"owner_login"`
	OwnerAvatarURL string   `json:"owner_avatar_url"`
	Description    string   `json:"description"`
	HTMLURL        string   `json:"html_url"`
	Homepage       string   `json:"homepage"`
	Language       string   `json:"language"`
	Topics         []string `json:"topics"`
	License        string   `json:"license"`
	Stars          int      `json:"stargazers_count"`
	Forks          int      `json:"forks_count"`
	Watchers       int      `json:"watchers_count"`
	OpenIssues     int      `json:"open_issues_count"`
	Size           int      `json:"size"`
	Fork           bool     `json:"fork"`
	Archived       bool     `json:"archived"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
	PushedAt       string   `json:"pushed_at"`
}

// SearchPageResponse is one page of account search results.
type SearchPageResponse struct {
	TotalCount        int               `json:"total_count"`
	IncompleteResults bool              `json:"incomplete_results"`
	Items             []AccountResponse `json:"items"`
}

// FeedResponse is the accumulated state of the infinite repository feed.
type FeedResponse struct {
	Owner       string         `json:"owner"`
	Sort        string         `json:"sort"`
	PerPage     int            `json:"per_page"`
	Items       []RepoResponse `json:"items"`
	HasNextPage bool           `json:"has_next_page"`
	Fetching    bool           `json:"fetching"`
	Error       string         `json:"error,omitempty"`
	RateLimited bool           `json:"rate_limited,omitempty"`
}

// SelectionResponse is the currently open detail target. Exactly one of User
// and Repo is set when Kind is not "none".
type SelectionResponse struct {
	Kind string           `json:"kind"`
	User *AccountResponse `json:"user,omitempty"`
	Repo *RepoResponse    `json:"repo,omitempty"`
}

// SessionResponse is the authentication state shown in the header.
type SessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	User          *AccountResponse `json:"user,omitempty"`
}

// TokenResponse is the body of a successful code-for-token exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// ExchangeRequest is the JSON body for the exchange endpoint.
type ExchangeRequest struct {
	Code string `json:"code"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toAccountResponse converts a domain Account to its JSON representation.
func toAccountResponse(a model.Account) AccountResponse {
	return AccountResponse{
		ID:          a.ID,
		Login:       a.Login,
		AvatarURL:   a.AvatarURL,
		HTMLURL:     a.HTMLURL,
		Name:        a.Name,
		Bio:         a.Bio,
		Company:     a.Company,
		Location:    a.Location,
		Type:        a.Type,
		SiteAdmin:   a.SiteAdmin,
		Followers:   a.Followers,
		Following:   a.Following,
		PublicRepos: a.PublicRepos,
		CreatedAt:   formatTime(a.CreatedAt),
	}
}

// toRepoResponse converts a domain Repository to its JSON representation.
func toRepoResponse(r model.Repository) RepoResponse {
	topics := r.Topics
	if topics == nil {
		topics = []string{}
	}

	return RepoResponse{
		ID:             r.ID,
		Name:           r.Name,
		FullName:       r.FullName,
		OwnerLogin:     r.OwnerLogin,
		OwnerAvatarURL: r.OwnerAvatarURL,
		Description:    r.Description,
		HTMLURL:        r.HTMLURL,
		Homepage:       r.Homepage,
		Language:       r.Language,
		Topics:         topics,
		License:        r.License,
		Stars:          r.Stars,
		Forks:          r.Forks,
		Watchers:       r.Watchers,
		OpenIssues:     r.OpenIssues,
		Size:           r.Size,
		Fork:           r.Fork,
		Archived:       r.Archived,
		CreatedAt:      formatTime(r.CreatedAt),
		UpdatedAt:      formatTime(r.UpdatedAt),
		PushedAt:       formatTime(r.PushedAt),
	}
}

// toAccount converts the JSON representation back to a domain Account.
func toAccount(a AccountResponse) model.Account {
	return model.Account{
		ID:          a.ID,
		Login:       a.Login,
		AvatarURL:   a.AvatarURL,
		HTMLURL:     a.HTMLURL,
		Name:        a.Name,
		Bio:         a.Bio,
		Company:     a.Company,
		Location:    a.Location,
		Type:        a.Type,
		SiteAdmin:   a.SiteAdmin,
		Followers:   a.Followers,
		Following:   a.Following,
		PublicRepos: a.PublicRepos,
		CreatedAt:   parseTime(a.CreatedAt),
	}
}

// toRepository converts the JSON representation back to a domain Repository.
func toRepository(r RepoResponse) model.Repository {
	topics := r.Topics
	if topics == nil {
		topics = []string{}
	}

	return model.Repository{
		ID:             r.ID,
		Name:           r.Name,
		FullName:       r.FullName,
		OwnerLogin:     r.OwnerLogin,
		OwnerAvatarURL: r.OwnerAvatarURL,
		Description:    r.Description,
		HTMLURL:        r.HTMLURL,
		Homepage:       r.Homepage,
		Language:       r.Language,
		Topics:         topics,
		License:        r.License,
		Stars:          r.Stars,
		Forks:          r.Forks,
		Watchers:       r.Watchers,
		OpenIssues:     r.OpenIssues,
		Size:           r.Size,
		Fork:           r.Fork,
		Archived:       r.Archived,
		CreatedAt:      parseTime(r.CreatedAt),
		UpdatedAt:      parseTime(r.UpdatedAt),
		PushedAt:       parseTime(r.PushedAt),
	}
}

// toSelectionResponse converts a domain Selection to its JSON representation.
func toSelectionResponse(sel model.Selection) SelectionResponse {
	resp := SelectionResponse{Kind: string(sel.Kind)}
	switch sel.Kind {
	case model.SelectionAccount:
		account := toAccountResponse(*sel.Account)
		resp.User = &account
	case model.SelectionRepository:
		repo := toRepoResponse(*sel.Repository)
		resp.Repo = &repo
	}
	return resp
}

// formatTime renders t as RFC 3339 UTC, or "" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// parseTime is the inverse of formatTime; malformed input yields the zero time.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
