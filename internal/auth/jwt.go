package auth

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultLeeway = 30 * time.Second

var (
	ErrInvalidToken    = errors.New("invalid shopper token")
	ErrSigningDisabled = errors.New("jwt manager has no private key")
	ErrInvalidSubject  = errors.New("token subject is not a valid user id")
	ErrMissingAccount  = errors.New("token carries no account id")
)

// Claims identifies a shopper: Subject is the user id, AccountID the
// storefront the user belongs to.
type Claims struct {
	Email     string `json:"email"`
	AccountID int64  `json:"accountId"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidSubject
	}
	return id, nil
}

// Validate is called by the jwt parser after the registered claims pass.
func (c *Claims) Validate() error {
	if c.AccountID <= 0 {
		return ErrMissingAccount
	}
	_, err := c.UserID()
	return err
}

type Option func(*JWTManager)

func WithLeeway(d time.Duration) Option {
	return func(j *JWTManager) {
		if d >= 0 {
			j.leeway = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(j *JWTManager) {
		if now != nil {
			j.now = now
		}
	}
}

// JWTManager validates ES256 shopper tokens. It can also sign them when
// built with a private key, which only tests and tooling do.
type JWTManager struct {
	privateKey *ecdsa.PrivateKey
	publicKey  *ecdsa.PublicKey
	issuer     string
	audience   string
	ttl        time.Duration
	leeway     time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

func NewJWTValidator(publicKeyPEM []byte, issuer, audience string, opts ...Option) (*JWTManager, error) {
	publicKey, err := jwt.ParseECPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("could not parse public key: %w", err)
	}

	j := &JWTManager{
		publicKey: publicKey,
		issuer:    issuer,
		audience:  audience,
		leeway:    defaultLeeway,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	j.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.audience),
		jwt.WithLeeway(j.leeway),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)
	return j, nil
}

func NewJWTManager(privateKeyPEM, publicKeyPEM []byte, issuer, audience string, ttl time.Duration, opts ...Option) (*JWTManager, error) {
	privateKey, err := jwt.ParseECPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("could not parse private key: %w", err)
	}

	j, err := NewJWTValidator(publicKeyPEM, issuer, audience, opts...)
	if err != nil {
		return nil, err
	}
	j.privateKey = privateKey
	j.ttl = ttl
	return j, nil
}

func (j *JWTManager) GenerateToken(userID, accountID int64, email string) (string, error) {
	if j.privateKey == nil {
		return "", ErrSigningDisabled
	}

	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, &Claims{
		Email:     email,
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{j.audience},
			Subject:   strconv.FormatInt(userID, 10),
		},
	})

	signed, err := token.SignedString(j.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses a raw token (no "Bearer " prefix). Every failure
// wraps ErrInvalidToken and keeps the jwt cause for errors.Is.
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := j.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return j.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}
