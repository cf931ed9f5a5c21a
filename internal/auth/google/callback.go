package google

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vecindo/vecindo/internal/auth/token"
	"golang.org/x/oauth2"
)

// HandleCallback processes the OAuth callback from Google: it exchanges
// the authorization code, resolves the account's email, and upserts the
// community's integration row.
func HandleCallback(cfg *oauth2.Config, mgr *token.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID, ok := takeState(r.URL.Query().Get("state"))
		if !ok {
			http.Error(w, "Invalid state token", http.StatusBadRequest)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "Missing authorization code", http.StatusBadRequest)
			return
		}

		// The redirect URL must match the one used at the consent step.
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		flowCfg := *cfg
		flowCfg.RedirectURL = redirectURL(scheme, r.Host)

		tok, err := flowCfg.Exchange(r.Context(), code)
		if err != nil {
			http.Error(w, fmt.Sprintf("Token exchange failed: %v", err), http.StatusInternalServerError)
			return
		}

		email, err := fetchAccountEmail(r.Context(), &flowCfg, tok)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get account info: %v", err), http.StatusInternalServerError)
			return
		}

		if err := mgr.SaveAuthorized(communityID, email, Scopes, tok); err != nil {
			http.Error(w, fmt.Sprintf("Failed to save integration: %v", err), http.StatusInternalServerError)
			return
		}
		slog.Info("mailbox connected", "community", communityID, "email", email)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Mailbox Connected</title></head>
<body>
	<h1>Mailbox Connected</h1>
	<p><strong>Email:</strong> %s</p>
	<p>You can close this window and return to the dashboard.</p>
</body>
</html>`, email)
	}
}

// fetchAccountEmail asks Google's userinfo endpoint which account the
// token belongs to.
func fetchAccountEmail(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token) (string, error) {
	client := cfg.Client(ctx, tok)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var userInfo struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return "", err
	}
	if userInfo.Email == "" {
		return "", fmt.Errorf("userinfo response missing email")
	}
	return userInfo.Email, nil
}
