package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"famledger/internal/caching"
	"famledger/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid covers every credential failure a caller may see:
// bad signature, expiry, logout, and supersession by a newer login.
var ErrTokenInvalid = errors.New("Token invalid or expired")

// SessionClaims are the JWT claims carried by a session token
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService mints, verifies and revokes signed session tokens. A signed
// token is only live while its cache entry exists: issuing a new token for
// a user deletes the previous token's entry, so the most recent login is
// authoritative even though the old credential is still cryptographically
// valid. Each audience ("app", "console") gets its own instance with a
// disjoint secret and key namespace.
type TokenService struct {
	cache    caching.CacheService
	secret   []byte
	audience string
	ttl      time.Duration
}

func NewTokenService(cache caching.CacheService, secret, audience string, ttl time.Duration) *TokenService {
	return &TokenService{
		cache:    cache,
		secret:   []byte(secret),
		audience: audience,
		ttl:      ttl,
	}
}

// Issue mints a token for the user and makes it the single live session.
// The delete-old/write-new sequence is deliberately non-transactional;
// a crash mid-sequence leaves the user logged out, never doubly logged in
// for sequential logins.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID, username string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "famledger",
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	oldHash, err := s.cache.GetString(ctx, s.userKey(userID))
	if err != nil {
		return "", err
	}
	if oldHash != "" {
		if err := s.cache.Delete(ctx, s.tokenKey(oldHash)); err != nil {
			return "", err
		}
	}

	identity := models.SessionIdentity{UserID: userID, Username: username}
	data, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("failed to encode session identity: %w", err)
	}

	hash := hashToken(tokenString)
	if err := s.cache.SetString(ctx, s.tokenKey(hash), string(data), s.ttl); err != nil {
		return "", err
	}
	if err := s.cache.SetString(ctx, s.userKey(userID), hash, s.ttl); err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify checks signature and expiry, then requires a live cache entry.
// The cache miss path is what makes logout and supersession effective.
func (s *TokenService) Verify(ctx context.Context, tokenString string) (*models.SessionIdentity, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithAudience(s.audience))
	if err != nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	data, err := s.cache.GetString(ctx, s.tokenKey(hashToken(tokenString)))
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, ErrTokenInvalid
	}

	identity := &models.SessionIdentity{}
	if err := json.Unmarshal([]byte(data), identity); err != nil {
		return nil, fmt.Errorf("failed to decode session identity: %w", err)
	}
	return identity, nil
}

// Revoke removes the session for a token. Revoking an unknown or already
// revoked token is not an error.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	hash := hashToken(tokenString)
	data, err := s.cache.GetString(ctx, s.tokenKey(hash))
	if err != nil {
		return err
	}
	if data == "" {
		return nil
	}

	identity := &models.SessionIdentity{}
	if err := json.Unmarshal([]byte(data), identity); err != nil {
		return fmt.Errorf("failed to decode session identity: %w", err)
	}

	if err := s.cache.Delete(ctx, s.userKey(identity.UserID)); err != nil {
		return err
	}
	return s.cache.Delete(ctx, s.tokenKey(hash))
}

// TTLSeconds reports the configured token lifetime
func (s *TokenService) TTLSeconds() int {
	return int(s.ttl / time.Second)
}

func (s *TokenService) tokenKey(hash string) string {
	return fmt.Sprintf("famledger:%s:token:%s", s.audience, hash)
}

func (s *TokenService) userKey(userID uuid.UUID) string {
	return fmt.Sprintf("famledger:%s:user_token:%s", s.audience, userID.String())
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
