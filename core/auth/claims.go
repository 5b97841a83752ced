package auth

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Claims are the non-secret attributes read from an access token payload.
// They are NOT verified: use them for display and routing only.
type Claims struct {
	Role      Role
	TeacherID *int
	Raw       jwt.MapClaims
}

// DecodeClaims reads the payload segment of token without checking its signature.
// It returns nil on any malformed input.
func DecodeClaims(token string) *Claims {
	parts := strings.Split(token, ".")
	if len(parts) < 2 || parts[1] == "" {
		return nil
	}
	payload, err := jwt.DecodeSegment(parts[1])
	if err != nil {
		return nil
	}
	var raw jwt.MapClaims
	if err := json.Unmarshal(payload, &raw); err != nil || raw == nil {
		return nil
	}

	claims := &Claims{Raw: raw}
	if role, ok := raw["role"].(string); ok {
		claims.Role = Role(role)
	}
	claims.TeacherID = intClaim(raw["teacher_id"])
	return claims
}

// Session builds a Session from the claims, ok is false without a role claim.
func (c *Claims) Session() (Session, bool) {
	if c == nil || c.Role == "" {
		return Session{}, false
	}
	return Session{Role: c.Role, TeacherID: c.TeacherID}, true
}

func (c *Claims) Subject() string {
	if c == nil {
		return ""
	}
	switch sub := c.Raw["sub"].(type) {
	case string:
		return sub
	case float64:
		return strconv.FormatFloat(sub, 'f', -1, 64)
	}
	return ""
}

func (c *Claims) ExpiresAt() (time.Time, bool) {
	if c == nil {
		return time.Time{}, false
	}
	exp, ok := c.Raw["exp"].(float64)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(exp), 0), true
}

func intClaim(v interface{}) *int {
	var n int
	switch val := v.(type) {
	case float64:
		if val != math.Trunc(val) {
			return nil
		}
		n = int(val)
	case string:
		i, err := strconv.Atoi(val)
		if err != nil {
			return nil
		}
		n = i
	default:
		return nil
	}
	return &n
}
