package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is a closed set of user roles. Only CanMutate decides what a role may
// change.
type Role string

const (
	RoleScientist   Role = "scientist"
	RolePolicyMaker Role = "policy-maker"
	RoleResearcher  Role = "researcher"
)

// ParseRole maps a role string to a Role. Unrecognized values become
// RoleResearcher, the read-only role.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleScientist, RolePolicyMaker:
		return Role(s)
	default:
		return RoleResearcher
	}
}

// CanMutate reports whether the role may create or change records.
// Researchers and any role outside the set are read-only.
func CanMutate(r Role) bool {
	switch r {
	case RoleScientist, RolePolicyMaker:
		return true
	default:
		return false
	}
}

// Authorize returns ErrForbidden unless the role may change records.
func Authorize(r Role) error {
	if !CanMutate(r) {
		return fmt.Errorf("%w: role %q cannot modify records", ErrForbidden, r)
	}
	return nil
}

// Identity is the authenticated caller.
type Identity struct {
	UserID uuid.UUID
	Name   string
	Role   Role
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

type userMetadata struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role"`
}

type claims struct {
	UserMetadata userMetadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 bearer tokens.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &Verifier{secret: []byte(secret), issuer: issuer}, nil
}

// Verify parses and validates a token and returns the caller's identity.
func (v *Verifier) Verify(token string) (*Identity, error) {
	var c claims
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject", ErrUnauthorized)
	}

	return &Identity{
		UserID: userID,
		Name:   c.UserMetadata.Name,
		Role:   ParseRole(c.UserMetadata.Role),
	}, nil
}

// Issue signs a token for id valid for ttl.
func (v *Verifier) Issue(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		UserMetadata: userMetadata{Name: id.Name, Role: string(id.Role)},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
