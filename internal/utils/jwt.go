package utils // package utils provides helpers for credential tokens and password hashing

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/neofitness/gym-management/internal/auth"
)

// AccessToken is a signed HS256 JWT and its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// NewAccessToken signs a token whose sub claim is the account id and whose
// role claim is the account role.
func NewAccessToken(secret string, p auth.Principal, ttlMin int, now time.Time) (AccessToken, error) {
	exp := now.UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(p.SubjectID, 10),
		"role": string(p.Role),
		"exp":  exp.Unix(),
		"iat":  now.UTC().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature and expiry and resolves the token into
// a Principal.
func ParseAccessToken(secret, raw string) (auth.Principal, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// only HMAC signatures are accepted
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return auth.Principal{}, errors.New("invalid token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return auth.Principal{}, errors.New("invalid claims")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return auth.Principal{}, errors.New("invalid subject")
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return auth.Principal{}, errors.New("invalid subject")
	}
	roleStr, _ := claims["role"].(string)
	role, err := auth.ParseRole(roleStr)
	if err != nil {
		return auth.Principal{}, err
	}
	return auth.Principal{SubjectID: id, Role: role}, nil
}
