package oauth

import "context"

// Provider is a social login provider using the authorization code flow.
type Provider interface {
	Name() string
	GetAuthURL(state string) string
	// Exchange trades the callback code for the signed-in user's profile.
	Exchange(ctx context.Context, code string) (*UserInfo, error)
}

type UserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Provider      string `json:"provider"`
}
