// Package token decodes the claims carried by the backend's access token.
package token

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/service-portal/internal/core/domain"
)

// Claims is the typed subset of the access token payload the portal reads.
type Claims struct {
	UserID    int64
	TokenType string
	ExpiresAt time.Time
}

var parser = jwt.NewParser()

// DecodeClaims reads the payload of raw without verifying its signature;
// the backend verifies the token on every call. It fails with
// domain.ErrDecode when the token is malformed or carries no user id.
func DecodeClaims(raw string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, mc); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}

	id, err := userID(mc["user_id"])
	if err != nil {
		return Claims{}, err
	}

	c := Claims{UserID: id}
	c.TokenType, _ = mc["token_type"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}

func userID(v any) (int64, error) {
	switch id := v.(type) {
	case float64:
		if id <= 0 || id != float64(int64(id)) {
			return 0, fmt.Errorf("%w: user_id %v is not a positive integer", domain.ErrDecode, id)
		}
		return int64(id), nil
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%w: user_id %q is not a positive integer", domain.ErrDecode, id)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("%w: user_id claim missing", domain.ErrDecode)
	default:
		return 0, fmt.Errorf("%w: user_id has type %T", domain.ErrDecode, v)
	}
}
