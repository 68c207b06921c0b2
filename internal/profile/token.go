// Package profile gives every client an anonymous id carried in a signed
// cookie. The id only names a storage namespace; it grants nothing.
package profile

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenService struct {
	Secret   []byte
	Issuer   string
	Duration time.Duration
}

type Claims struct {
	ProfileID string `json:"pid"`
	jwt.RegisteredClaims
}

func (ts TokenService) Sign(profileID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ts.Duration)

	claims := Claims{
		ProfileID: profileID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.Issuer,
			Subject:   profileID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(ts.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign profile: %w", err)
	}
	return s, exp, nil
}

func (ts TokenService) Parse(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if ts.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(ts.Issuer))
	}
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return ts.Secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.ProfileID == "" {
		return nil, fmt.Errorf("invalid profile claims")
	}
	return claims, nil
}

// Resolve reads the profile id from a cookie value. Unlike Parse it accepts
// a token whose only fault is that it has expired: the profile keeps
// naming the same storage, so a returning client finds its data again.
// The signature and issuer are still checked.
func (ts TokenService) Resolve(tokenString string) (string, error) {
	claims, err := ts.Parse(tokenString)
	if err == nil {
		return claims.ProfileID, nil
	}
	if !errors.Is(err, jwt.ErrTokenExpired) {
		return "", err
	}

	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return ts.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return "", fmt.Errorf("parse profile: %w", err)
	}
	expired, ok := tok.Claims.(*Claims)
	if !ok || expired.ProfileID == "" {
		return "", fmt.Errorf("invalid profile claims")
	}
	if ts.Issuer != "" && expired.Issuer != ts.Issuer {
		return "", fmt.Errorf("parse profile: %w", jwt.ErrTokenInvalidIssuer)
	}
	return expired.ProfileID, nil
}
