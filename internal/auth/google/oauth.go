package google

import (
	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// Scopes requested when connecting a community mailbox.
var Scopes = []string{
	gmail.GmailReadonlyScope,
	gmail.GmailSendScope,
	"https://www.googleapis.com/auth/userinfo.email",
}

// NewOAuthConfig returns the OAuth2 config for Google authentication.
// RedirectURL is filled in per-request from the incoming host.
func NewOAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       Scopes,
		Endpoint:     googleOAuth.Endpoint,
	}
}

// redirectURL builds the callback URL for the host the request came in on.
func redirectURL(scheme, host string) string {
	return scheme + "://" + host + "/auth/google/callback"
}
