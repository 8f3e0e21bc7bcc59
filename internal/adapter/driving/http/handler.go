// Package httphandler is the HTTP driving adapter serving the explorer API.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/ghexplorer/internal/application"
	"github.com/ericfisherdev/ghexplorer/internal/domain/model"
	"github.com/ericfisherdev/ghexplorer/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	clients   *application.GitHubClientProvider
	feed      *application.RepoFeed
	selection *application.SelectionState
	sessions  *application.SessionService
	oauth     *application.OAuthService
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	clients *application.GitHubClientProvider,
	feed *application.RepoFeed,
	selection *application.SelectionState,
	sessions *application.SessionService,
	oauth *application.OAuthService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		clients:   clients,
		feed:      feed,
		selection: selection,
		sessions:  sessions,
		oauth:     oauth,
		logger:    logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/search/users", h.SearchUsers)
	mux.HandleFunc("GET /api/v1/users/{user}/repos", h.ListRepos)
	mux.HandleFunc("GET /api/v1/users/{user}/repos/feed", h.Feed)
	mux.HandleFunc("POST /api/v1/users/{user}/repos/feed/next", h.FeedNext)

	mux.HandleFunc("GET /api/v1/selection", h.GetSelection)
	mux.HandleFunc("PUT /api/v1/selection/user", h.SelectUser)
	mux.HandleFunc("PUT /api/v1/selection/repo", h.SelectRepo)
	mux.HandleFunc("DELETE /api/v1/selection", h.ClearSelection)

	mux.HandleFunc("GET /api/v1/session", h.GetSession)
	mux.HandleFunc("POST /api/v1/logout", h.Logout)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	mux.HandleFunc("POST /api/auth/callback", h.ExchangeCode)
	mux.HandleFunc("GET /auth/login", h.LoginRedirect)
	mux.HandleFunc("GET /auth/callback", h.OAuthCallback)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// SearchUsers returns one page of account search results. The query is
// required; the request is rejected before any upstream call when it is
// missing.
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "search query is required")
		return
	}

	perPage, ok := intParam(w, r, "per_page")
	if !ok {
		return
	}
	page, ok := intParam(w, r, "page")
	if !ok {
		return
	}

	result, err := h.clients.Get().SearchUsers(r.Context(), query, driven.PageOptions{
		PerPage: perPage,
		Page:    page,
	})
	if err != nil {
		h.writeGitHubError(w, "user search failed", err)
		return
	}

	items := make([]AccountResponse, 0, len(result.Items))
	for _, a := range result.Items {
		items = append(items, toAccountResponse(a))
	}

	writeJSON(w, http.StatusOK, SearchPageResponse{
		TotalCount:        result.TotalCount,
		IncompleteResults: result.IncompleteResults,
		Items:             items,
	})
}

// ListRepos returns one page of a user's repositories.
func (h *Handler) ListRepos(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("user")

	sort, ok := sortParam(w, r)
	if !ok {
		return
	}
	perPage, ok := intParam(w, r, "per_page")
	if !ok {
		return
	}
	page, ok := intParam(w, r, "page")
	if !ok {
		return
	}

	repos, err := h.clients.Get().ListRepos(r.Context(), owner, driven.RepoListOptions{
		Sort:    sort,
		PerPage: perPage,
		Page:    page,
	})
	if err != nil {
		h.writeGitHubError(w, "repository list failed", err)
		return
	}

	resp := make([]RepoResponse, 0, len(repos))
	for _, repo := range repos {
		resp = append(resp, toRepoResponse(repo))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Feed activates the infinite repository feed for the path user and returns
// everything fetched so far. Changing user, sort, or page size restarts the
// feed from page 1; fetch failures are embedded in the feed state rather than
// failing the request, so the accumulated items stay visible.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	sort, ok := sortParam(w, r)
	if !ok {
		return
	}
	perPage, ok := intParam(w, r, "per_page")
	if !ok {
		return
	}

	snapshot, err := h.feed.Activate(r.Context(), application.FeedParams{
		Owner:   r.PathValue("user"),
		Sort:    sort,
		PerPage: perPage,
	})
	if err != nil {
		h.logger.Warn("feed page fetch failed", "owner", snapshot.Params.Owner, "error", err)
	}

	writeJSON(w, http.StatusOK, toFeedResponse(snapshot))
}

// FeedNext advances the active feed by one page. It is a no-op when a fetch
// is in flight or the feed has no continuation.
func (h *Handler) FeedNext(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("user")
	if h.feed.Snapshot().Params.Owner != owner {
		writeError(w, http.StatusConflict, "feed is not active for this user")
		return
	}

	snapshot, err := h.feed.FetchNext(r.Context())
	if err != nil {
		h.logger.Warn("feed page fetch failed", "owner", owner, "error", err)
	}

	writeJSON(w, http.StatusOK, toFeedResponse(snapshot))
}

// GetSelection returns the currently open detail target.
func (h *Handler) GetSelection(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toSelectionResponse(h.selection.Current()))
}

// SelectUser opens the account detail for the posted account, replacing any
// open repository detail.
func (h *Handler) SelectUser(w http.ResponseWriter, r *http.Request) {
	var req AccountResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Login == "" {
		writeError(w, http.StatusBadRequest, "login is required")
		return
	}

	h.selection.SelectAccount(toAccount(req))
	writeJSON(w, http.StatusOK, toSelectionResponse(h.selection.Current()))
}

// SelectRepo opens the repository detail for the posted repository, replacing
// any open account detail.
func (h *Handler) SelectRepo(w http.ResponseWriter, r *http.Request) {
	var req RepoResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FullName == "" {
		writeError(w, http.StatusBadRequest, "full_name is required")
		return
	}

	h.selection.SelectRepository(toRepository(req))
	writeJSON(w, http.StatusOK, toSelectionResponse(h.selection.Current()))
}

// ClearSelection closes whichever detail is open.
func (h *Handler) ClearSelection(w http.ResponseWriter, _ *http.Request) {
	h.selection.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// GetSession returns the authentication state for the header affordance.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Session(r.Context())
	if err != nil {
		h.logger.Error("failed to read session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := SessionResponse{}
	if sess != nil {
		resp.Authenticated = true
		user := toAccountResponse(sess.User)
		resp.User = &user
	}

	writeJSON(w, http.StatusOK, resp)
}

// Logout clears the persisted session and redirects home.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		h.logger.Error("failed to clear session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeGitHubError writes an upstream GitHub failure: the normalized status
// and message with the rate-limit flag, or a plain 500 for anything that is
// not an UpstreamError.
func (h *Handler) writeGitHubError(w http.ResponseWriter, logMsg string, err error) {
	h.logger.Error(logMsg, "error", err)

	var ue *model.UpstreamError
	if errors.As(err, &ue) {
		writeUpstreamError(w, ue)
		return
	}

	writeError(w, http.StatusInternalServerError, "internal server error")
}

// toFeedResponse converts a feed snapshot to its JSON representation.
func toFeedResponse(s application.FeedSnapshot) FeedResponse {
	items := make([]RepoResponse, 0, len(s.Items))
	for _, repo := range s.Items {
		items = append(items, toRepoResponse(repo))
	}

	resp := FeedResponse{
		Owner:       s.Params.Owner,
		Sort:        string(s.Params.Sort),
		PerPage:     s.Params.PerPage,
		Items:       items,
		HasNextPage: s.HasNextPage,
		Fetching:    s.Fetching,
	}
	if s.Err != nil {
		resp.Error = s.Err.Error()
		resp.RateLimited = model.IsRateLimited(s.Err)
	}

	return resp
}

// intParam parses an optional non-negative integer query parameter. It writes
// a 400 response and returns ok=false when the value is present but invalid.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name+" parameter")
		return 0, false
	}

	return v, true
}

// sortParam parses the optional sort query parameter against the known sort
// orders. It writes a 400 response and returns ok=false on an unknown value.
func sortParam(w http.ResponseWriter, r *http.Request) (model.RepoSort, bool) {
	raw := r.URL.Query().Get("sort")
	if raw == "" {
		return "", true
	}

	sort, ok := model.ParseRepoSort(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid sort parameter")
		return "", false
	}

	return sort, true
}
