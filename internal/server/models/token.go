package models

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is the envelope returned by register, login and refresh.
type AuthResult struct {
	User UserProjection `json:"user"`
	TokenPair
}
