package domain

import "time"

// AuthClaims is the identity a verified token carries. It is a snapshot of
// account state at issuance time: role changes made after login do not
// affect tokens already in flight.
type AuthClaims struct {
	Username string
	TokenID  string
	Actor    string
	Roles    []string
	IssuedAt time.Time
	Expiry   time.Time
}

// HasRole reports whether the claims include the named role.
func (c *AuthClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
