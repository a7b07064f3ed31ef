package model

import "github.com/golang-jwt/jwt"

// UserClaims are the JWT claims issued by the account service.
type UserClaims struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name,omitempty"`
	jwt.StandardClaims
}

// ResolvedUserID returns the user id carried by the token, falling back to the
// standard "sub" claim.
func (c UserClaims) ResolvedUserID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.StandardClaims.Subject
}
