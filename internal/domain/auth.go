package domain

// Identity is the authenticated principal the store is scoped to. A nil
// *Identity means guest mode.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthEvent names the identity-change events the session provider emits.
type AuthEvent string

const (
	EventSignedIn       AuthEvent = "signed_in"
	EventSignedOut      AuthEvent = "signed_out"
	EventTokenRefreshed AuthEvent = "token_refreshed"
	EventInitialSession AuthEvent = "initial_session"
)

// AuthService resolves and validates identities against the session provider.
type AuthService interface {
	ValidateToken(token string) (*Identity, error)
}
