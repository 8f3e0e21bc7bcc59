package httphandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"

	"github.com/ericfisherdev/ghexplorer/internal/application"
)

// ExchangeCode trades an authorization code for an access token on behalf of
// a browser client. Failures map one-to-one to the exchange service's status
// and message pairs.
func (h *Handler) ExchangeCode(w http.ResponseWriter, r *http.Request) {
	// An unreadable or empty body leaves the code blank, which the exchange
	// rejects with the missing-code message.
	var req ExchangeRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	token, err := h.oauth.Exchange(r.Context(), req.Code)
	if err != nil {
		var xerr *application.ExchangeError
		if errors.As(err, &xerr) {
			writeError(w, xerr.Status, xerr.Message)
			return
		}
		h.logger.Error("token exchange failed", "error", err)
		writeError(w, http.StatusInternalServerError, application.MsgExchangeServer)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		Scope:       token.Scope,
	})
}

// LoginRedirect sends the browser to the GitHub authorization page.
func (h *Handler) LoginRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.oauth.AuthorizeURL(), http.StatusTemporaryRedirect)
}

// OAuthCallback is the landing page GitHub redirects back to. It runs the
// full login continuation server-side and renders a terminal status page; on
// success the page refreshes to the root after the fixed delay.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result := h.oauth.HandleCallback(r.Context(), q.Get("code"), q.Get("error"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if result.FailureReason != "" {
		h.logger.Warn("oauth callback failed", "reason", result.FailureReason)
		w.WriteHeader(http.StatusOK)
		writeCallbackPage(w, "Login failed", result.FailureReason)
		return
	}

	h.logger.Info("oauth login succeeded", "login", result.User.Login)

	w.Header().Set("Refresh", fmt.Sprintf("%d; url=/", int(application.RedirectDelay.Seconds())))
	w.WriteHeader(http.StatusOK)
	writeCallbackPage(w, "Login successful",
		fmt.Sprintf("Welcome, %s! Redirecting you back...", result.User.DisplayName()))
}

// writeCallbackPage renders the minimal terminal page for the OAuth callback.
func writeCallbackPage(w http.ResponseWriter, title, message string) {
	_, _ = fmt.Fprintf(w,
		"<!DOCTYPE html><html><head><title>%s</title></head><body><h1>%s</h1><p>%s</p></body></html>",
		html.EscapeString(title), html.EscapeString(title), html.EscapeString(message))
}
