package google

import (
	"net/http"

	"golang.org/x/oauth2"
)

// HandleConnect initiates the OAuth flow for a community by redirecting
// to Google's consent page. Requires a ?community= query parameter.
func HandleConnect(cfg *oauth2.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID := r.URL.Query().Get("community")
		if communityID == "" {
			http.Error(w, "missing community parameter", http.StatusBadRequest)
			return
		}

		// Dynamically construct redirect URL from the request
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		flowCfg := *cfg
		flowCfg.RedirectURL = redirectURL(scheme, r.Host)

		// prompt=consent forces Google to reissue a refresh token; without
		// it a repeat connect returns only an access token.
		url := flowCfg.AuthCodeURL(newState(communityID),
			oauth2.AccessTypeOffline,
			oauth2.ApprovalForce,
		)
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
	}
}
