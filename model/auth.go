package model

import "github.com/tdhoang/evdealer-client/constant"

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User describes the logged-in user as returned by the login endpoint and
// persisted in the token store under the user key.
type User struct {
	ID       uint64        `json:"id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Role     constant.Role `json:"role"`
	AgencyID uint64        `json:"agencyId,omitempty"`
}

// LoginResult is the data payload of a successful login.
type LoginResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// RefreshRequest is the body of the token refresh endpoint.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RefreshResult is the data payload of a successful token refresh. A rotated
// refresh token is optional; when absent the old one stays valid.
type RefreshResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}
