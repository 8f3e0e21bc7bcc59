package application

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"

	"github.com/ericfisherdev/ghexplorer/internal/domain/model"
)

// userAgent identifies this application to the OAuth provider, matching the
// string sent on API calls.
const userAgent = "GitHub-Repositories-Explorer"

// User-facing outcomes of the OAuth flow. The callback sequence is a strict
// linear machine with one success state and these distinct failure reasons;
// there is no retry -- the user starts over from /auth/login.
const (
	MsgCodeRequired   = "Authorization code is required"
	MsgConfigMissing  = "OAuth configuration is missing"
	MsgExchangeServer = "Internal server error during OAuth callback"
	MsgDenied         = "Authorization was denied or cancelled"
	MsgNoCode         = "No authorization code received"
	MsgExchangeFailed = "Failed to exchange code for token"
	MsgProfileFailed  = "Failed to fetch user information"
	MsgLoginGeneric   = "An error occurred during login"
)

// RedirectDelay is how long the success page waits before sending the
// browser back home.
const RedirectDelay = 2 * time.Second

// ExchangeError is a failed code-for-token exchange, carrying the HTTP
// status the exchange endpoint responds with and its user-facing message.
type ExchangeError struct {
	Status  int
	Message string
}

// Error returns the user-facing message.
func (e *ExchangeError) Error() string {
	return e.Message
}

// TokenResult is a successful exchange: the fields extracted from the
// provider's token response.
type TokenResult struct {
	AccessToken string
	TokenType   string
	Scope       string
}

// CallbackResult is the terminal state of the callback continuation.
type CallbackResult struct {
	// FailureReason is empty on success.
	FailureReason string
	// User is the authenticated profile, set only on success.
	User *model.Account
}

// OAuthService runs the authorization-code exchange against the provider's
// token endpoint and the callback continuation that turns a code into a
// persisted session.
type OAuthService struct {
	clientID     string
	clientSecret string
	callbackURL  string
	tokenURL     string
	httpClient   *http.Client
	sessions     *SessionService
	clients      ClientFactory
}

// NewOAuthService creates an OAuthService. clients builds the API client
// used for the post-exchange profile fetch, bound to the token being
// exchanged rather than the current session.
func NewOAuthService(clientID, clientSecret, callbackURL string, sessions *SessionService, clients ClientFactory) *OAuthService {
	return &OAuthService{
		clientID:     clientID,
		clientSecret: clientSecret,
		callbackURL:  callbackURL,
		tokenURL:     oauthgithub.Endpoint.TokenURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		sessions:     sessions,
		clients:      clients,
	}
}

// WithTokenEndpoint overrides the provider token endpoint. Tests point this
// at an httptest server.
func (s *OAuthService) WithTokenEndpoint(tokenURL string) *OAuthService {
	s.tokenURL = tokenURL
	return s
}

// AuthorizeURL returns the provider authorization URL the login redirect
// sends the browser to.
func (s *OAuthService) AuthorizeURL() string {
	cfg := oauth2.Config{
		ClientID:    s.clientID,
		RedirectURL: s.callbackURL,
		Scopes:      []string{"read:user"},
		Endpoint:    oauthgithub.Endpoint,
	}
	return cfg.AuthCodeURL("")
}

// tokenEndpointResponse is the provider token response body. On rejection
// the provider responds 200 with the error fields set instead of a
// non-success status.
type tokenEndpointResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	Scope            string `json:"scope"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Exchange trades an authorization code for an access token. Every failure
// is an *ExchangeError whose Status and Message are exactly what the
// exchange endpoint responds with:
//
//	400 "Authorization code is required"        -- code missing
//	500 "OAuth configuration is missing"        -- client id/secret unset
//	500 "Internal server error during OAuth callback" -- provider unreachable or non-2xx
//	400 <provider error_description or error>   -- provider rejected the code
func (s *OAuthService) Exchange(ctx context.Context, code string) (*TokenResult, error) {
	if code == "" {
		return nil, &ExchangeError{Status: http.StatusBadRequest, Message: MsgCodeRequired}
	}
	if s.clientID == "" || s.clientSecret == "" {
		return nil, &ExchangeError{Status: http.StatusInternalServerError, Message: MsgConfigMissing}
	}

	body, err := json.Marshal(map[string]string{
		"client_id":     s.clientID,
		"client_secret": s.clientSecret,
		"code":          code,
	})
	if err != nil {
		return nil, &ExchangeError{Status: http.StatusInternalServerError, Message: MsgExchangeServer}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, bytes.NewReader(body))
	if err != nil {
		return nil, &ExchangeError{Status: http.StatusInternalServerError, Message: MsgExchangeServer}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &ExchangeError{Status: http.StatusInternalServerError, Message: MsgExchangeServer}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ExchangeError{Status: http.StatusInternalServerError, Message: MsgExchangeServer}
	}

	var token tokenEndpointResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, &ExchangeError{Status: http.StatusInternalServerError, Message: MsgExchangeServer}
	}

	if token.Error != "" {
		message := token.ErrorDescription
		if message == "" {
			message = token.Error
		}
		return nil, &ExchangeError{Status: http.StatusBadRequest, Message: message}
	}

	return &TokenResult{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		Scope:       token.Scope,
	}, nil
}

// HandleCallback runs the continuation after the provider redirects back:
// branch on the error and code query parameters, exchange the code, fetch
// the authenticated profile, and persist the session. The result is always
// terminal; failures carry a distinct user-facing reason.
func (s *OAuthService) HandleCallback(ctx context.Context, code, errParam string) CallbackResult {
	if errParam != "" {
		return CallbackResult{FailureReason: MsgDenied}
	}
	if code == "" {
		return CallbackResult{FailureReason: MsgNoCode}
	}

	token, err := s.Exchange(ctx, code)
	if err != nil {
		return CallbackResult{FailureReason: MsgExchangeFailed}
	}

	user, err := s.clients(token.AccessToken).AuthenticatedUser(ctx)
	if err != nil {
		return CallbackResult{FailureReason: MsgProfileFailed}
	}

	if err := s.sessions.Login(ctx, token.AccessToken, *user); err != nil {
		return CallbackResult{FailureReason: MsgLoginGeneric}
	}

	return CallbackResult{User: user}
}

// Configured reports whether both halves of the OAuth client pair are set.
func (s *OAuthService) Configured() bool {
	return s.clientID != "" && s.clientSecret != ""
}
