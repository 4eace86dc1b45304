package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestProvider(t *testing.T) *GoogleOAuthProvider {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":             "g-123",
			"email":          "kim@example.com",
			"verified_email": true,
			"name":           "Kim",
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	p := NewGoogleOAuthProvider("client", "secret", "http://localhost/callback", nil)
	p.config.Endpoint = oauth2.Endpoint{
		AuthURL:  server.URL + "/auth",
		TokenURL: server.URL + "/token",
	}
	p.userInfoURL = server.URL + "/userinfo"
	return p
}

func TestGoogleExchange(t *testing.T) {
	p := newTestProvider(t)

	info, err := p.Exchange(context.Background(), "good-code")
	require.NoError(t, err)

	assert.Equal(t, "g-123", info.ID)
	assert.Equal(t, "kim@example.com", info.Email)
	assert.True(t, info.EmailVerified)
	assert.Equal(t, "google", info.Provider)
}

func TestGoogleExchangeBadCode(t *testing.T) {
	p := newTestProvider(t)

	_, err := p.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestGoogleAuthURLCarriesState(t *testing.T) {
	p := NewGoogleOAuthProvider("client", "secret", "http://localhost/callback", nil)

	u, err := url.Parse(p.GetAuthURL("state-xyz"))
	require.NoError(t, err)

	assert.Equal(t, "state-xyz", u.Query().Get("state"))
	assert.Equal(t, "client", u.Query().Get("client_id"))
}
