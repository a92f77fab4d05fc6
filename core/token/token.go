package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Roles as issued by the course platform.
const (
	RoleAdmin    = "admin"
	RoleNonAdmin = "non-admin"
	RoleUser     = "user"
)

// Claims is the advisory identity decoded from a bearer token. The payload
// is read without signature verification: it gates nothing the course
// platform does not re-check on every proxied call.
type Claims struct {
	UserID string
	Name   string
	Role   string
}

func (c Claims) IsAdmin() bool { return c.Role == RoleAdmin }

func (c Claims) IsBuyer() bool { return c.Role == RoleUser }

var parser = jwt.NewParser()

// Decode extracts the advisory claims from a bearer token.
func Decode(bearer string) (Claims, error) {
	if bearer == "" {
		return Claims{}, errors.New("empty token")
	}

	mc := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(bearer, mc); err != nil {
		return Claims{}, fmt.Errorf("parsing token payload: %w", err)
	}

	clm := Claims{
		UserID: asString(mc["id"]),
		Name:   asString(mc["name"]),
		Role:   asString(mc["role"]),
	}
	return clm, nil
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return fmt.Sprintf("%.0f", s)
	default:
		return ""
	}
}
