package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/storefront/internal/models"
)

const (
	PurposeSession     = "session"
	PurposeVerifyEmail = "verify_email"

	VerificationTTL = 60 * time.Minute
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID  uint
	Role    string
	Email   string
	Purpose string
}

// Tokens issues and parses HS256 tokens for sessions and email verification.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs a session token for u.
func (t *Tokens) Issue(u *models.User) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"sub":     strconv.FormatUint(uint64(u.ID), 10),
		"role":    u.RoleName(),
		"purpose": PurposeSession,
		"exp":     now.Add(t.ttl).Unix(),
		"iat":     now.Unix(),
	}
	return t.sign(claims)
}

// IssueVerification signs a short-lived link token bound to u's current email.
func (t *Tokens) IssueVerification(u *models.User) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"sub":     strconv.FormatUint(uint64(u.ID), 10),
		"email":   u.Email,
		"purpose": PurposeVerifyEmail,
		"exp":     now.Add(VerificationTTL).Unix(),
		"iat":     now.Unix(),
	}
	return t.sign(claims)
}

func (t *Tokens) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates raw and checks its purpose.
func (t *Tokens) Parse(raw, purpose string) (*Claims, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, err := mc.GetSubject()
	if err != nil {
		return nil, ErrInvalidToken
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return nil, ErrInvalidToken
	}

	claims := &Claims{UserID: uint(id)}
	claims.Role, _ = mc["role"].(string)
	claims.Email, _ = mc["email"].(string)
	claims.Purpose, _ = mc["purpose"].(string)

	if claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
