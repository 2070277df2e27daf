package firebase

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingClaim is returned when a required claim is missing
	ErrMissingClaim = errors.New("missing required claim")

	// ErrInvalidClaim is returned when a claim is present but not acceptable
	ErrInvalidClaim = errors.New("invalid claim")
)

// maxSubjectLength is the longest uid Firebase Authentication will issue.
const maxSubjectLength = 128

// Claims represents the claims carried by a Firebase ID token
type Claims struct {
	jwt.RegisteredClaims
	UserID        string       `json:"user_id"`
	Email         string       `json:"email"`
	EmailVerified bool         `json:"email_verified"`
	Name          string       `json:"name"`
	Picture       string       `json:"picture"`
	AuthTime      int64        `json:"auth_time"`
	Firebase      FirebaseInfo `json:"firebase"`
}

// FirebaseInfo is the nested "firebase" claim
type FirebaseInfo struct {
	SignInProvider string              `json:"sign_in_provider"`
	Tenant         string              `json:"tenant,omitempty"`
	Identities     map[string][]string `json:"identities,omitempty"`
}

// ParsedClaims represents verified claims in the shape the rest of the service uses
type ParsedClaims struct {
	UID            string
	Email          string
	EmailVerified  bool
	Name           string
	SignInProvider string
	Tenant         string
	AuthTime       time.Time
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

// parseClaims checks the Firebase-specific claim rules and flattens the result.
// Signature, issuer, audience and expiry are checked by the caller.
func parseClaims(claims *Claims, now time.Time) (*ParsedClaims, error) {
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	if len(claims.Subject) > maxSubjectLength {
		return nil, fmt.Errorf("%w: sub longer than %d characters", ErrInvalidClaim, maxSubjectLength)
	}
	if claims.UserID != "" && claims.UserID != claims.Subject {
		return nil, fmt.Errorf("%w: user_id does not match sub", ErrInvalidClaim)
	}

	if claims.AuthTime == 0 {
		return nil, fmt.Errorf("%w: auth_time", ErrMissingClaim)
	}
	authTime := time.Unix(claims.AuthTime, 0)
	if authTime.After(now) {
		return nil, fmt.Errorf("%w: auth_time is in the future", ErrInvalidClaim)
	}

	parsed := &ParsedClaims{
		UID:            claims.Subject,
		Email:          claims.Email,
		EmailVerified:  claims.EmailVerified,
		Name:           claims.Name,
		SignInProvider: claims.Firebase.SignInProvider,
		Tenant:         claims.Firebase.Tenant,
		AuthTime:       authTime,
	}

	if claims.IssuedAt != nil {
		parsed.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		parsed.ExpiresAt = claims.ExpiresAt.Time
	}

	return parsed, nil
}

// UnverifiedSubject returns the sub claim without checking the signature.
// Only for log correlation of rejected tokens; never for authorization.
func UnverifiedSubject(tokenString string) string {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return ""
	}
	return claims.Subject
}
