package services

import (
	"context"
	cryptorand "crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/argon2"

	"github.com/cardledger/backend/internal/config"
	"github.com/cardledger/backend/internal/models"
)

const pqUniqueViolation = "23505"

// RegisterInput represents the registration request payload
// @Description Registration request structure
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"user@example.com"`
	Password string `json:"password" validate:"required,min=6,max=128" example:"password123"`
	Name     string `json:"name" validate:"required,max=100" example:"Sara Ahmadi"`
}

// LoginInput represents the login request payload
// @Description Login request structure
type LoginInput struct {
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`
	Password string `json:"password" validate:"required" example:"password123"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=128"`
}

// AuthResult represents the authentication response
// @Description Authentication response structure
type AuthResult struct {
	Token     string      `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

type sessionClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// AuthConfig carries the signing and hashing settings
type AuthConfig struct {
	SecretKey string
	TokenTTL  time.Duration
	Argon2    config.Argon2Config
}

// AuthService is the account directory: users, credentials and session
// tokens. Logged out tokens are blacklisted in redis until they expire.
type AuthService struct {
	db        *sql.DB
	redis     *redis.Client
	cfg       AuthConfig
	validator *ValidationHelper
	now       func() time.Time
}

func NewAuthService(db *sql.DB, redisClient *redis.Client, cfg AuthConfig) *AuthService {
	return &AuthService{
		db:        db,
		redis:     redisClient,
		cfg:       cfg,
		validator: NewValidationHelper(),
		now:       time.Now,
	}
}

// TokenTTL is the lifetime of issued tokens, used for the session cookie
func (s *AuthService) TokenTTL() time.Duration {
	return s.cfg.TokenTTL
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	hashed, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, NewUnexpectedError("failed to create user", err)
	}

	user := models.User{Email: in.Email, Name: in.Name}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password, name) VALUES ($1, $2, $3) RETURNING id, created_at`,
		in.Email, hashed, in.Name,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			log.Printf("[AUTH] Registration rejected, email exists: %s", in.Email)
			return nil, NewValidationError("email already registered", map[string]string{"email": "is already registered"})
		}
		log.Printf("[AUTH] User creation failed for %s: %v", in.Email, err)
		return nil, NewUnexpectedError("failed to create user", err)
	}

	log.Printf("[AUTH] User created successfully - ID: %d", user.ID)
	return s.session(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	var user models.User
	var hashed string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password, created_at FROM users WHERE email = $1`, in.Email,
	).Scan(&user.ID, &user.Email, &user.Name, &hashed, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Printf("[AUTH] Login failed, unknown email: %s", in.Email)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, NewUnexpectedError("failed to log in", err)
	}

	if !s.verifyPassword(in.Password, hashed) {
		log.Printf("[AUTH] Invalid password for user %d", user.ID)
		return nil, ErrInvalidCredentials
	}

	log.Printf("[AUTH] Login successful for user %d", user.ID)
	return s.session(user)
}

func (s *AuthService) Me(ctx context.Context, ownerID int64) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, created_at FROM users WHERE id = $1`, ownerID,
	).Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, NewUnexpectedError("failed to load user", err)
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, ownerID int64, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("validation failed", map[string]string{"name": "is required"})
	}
	if len(name) > 100 {
		return nil, NewValidationError("validation failed", map[string]string{"name": "must satisfy max=100"})
	}

	var user models.User
	err := s.db.QueryRowContext(ctx,
		`UPDATE users SET name = $1, updated_at = now() WHERE id = $2 RETURNING id, email, name, created_at`,
		name, ownerID,
	).Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, NewUnexpectedError("failed to update profile", err)
	}
	return &user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, ownerID int64, in ChangePasswordInput) error {
	if err := s.validator.Validate(in); err != nil {
		return err
	}

	var hashed string
	err := s.db.QueryRowContext(ctx, `SELECT password FROM users WHERE id = $1`, ownerID).Scan(&hashed)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return NewUnexpectedError("failed to change password", err)
	}

	if !s.verifyPassword(in.CurrentPassword, hashed) {
		return NewValidationError("current password is incorrect", map[string]string{"current_password": "is incorrect"})
	}

	newHash, err := s.hashPassword(in.NewPassword)
	if err != nil {
		return NewUnexpectedError("failed to change password", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE users SET password = $1, updated_at = now() WHERE id = $2`, newHash, ownerID); err != nil {
		return NewUnexpectedError("failed to change password", err)
	}

	log.Printf("[AUTH] Password changed for user %d", ownerID)
	return nil
}

// Logout blacklists the token for the rest of its lifetime. Unparseable
// or expired tokens need no blacklisting.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.parseClaims(token)
	if err != nil {
		return nil
	}
	if s.redis == nil {
		log.Printf("[AUTH] Redis unavailable, token for user %d not blacklisted", claims.UserID)
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, blacklistKey(token), "1", ttl).Err(); err != nil {
		log.Printf("[AUTH] Failed to blacklist token: %v", err)
		return NewUnexpectedError("failed to log out", err)
	}
	log.Printf("[AUTH] User %d logged out", claims.UserID)
	return nil
}

// ParseToken verifies signature, expiry and the blacklist and returns
// the owner ID
func (s *AuthService) ParseToken(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrLoginRequired
	}
	claims, err := s.parseClaims(token)
	if err != nil {
		return 0, ErrLoginRequired
	}

	if s.redis != nil {
		n, err := s.redis.Exists(ctx, blacklistKey(token)).Result()
		if err != nil {
			log.Printf("[AUTH] Blacklist lookup failed: %v", err)
		} else if n > 0 {
			return 0, ErrLoginRequired
		}
	}
	return claims.UserID, nil
}

func (s *AuthService) parseClaims(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.SecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.UserID <= 0 {
		return nil, errors.New("token has no user")
	}
	return claims, nil
}

func (s *AuthService) session(user models.User) (*AuthResult, error) {
	token, expires, err := s.issueToken(user.ID)
	if err != nil {
		log.Printf("[AUTH] JWT generation failed for user %d: %v", user.ID, err)
		return nil, NewUnexpectedError("failed to generate token", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expires, User: user}, nil
}

func (s *AuthService) issueToken(userID int64) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.cfg.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString([]byte(s.cfg.SecretKey))
	return signed, expires, err
}

func blacklistKey(token string) string {
	return fmt.Sprintf("blacklist:%s", token)
}

func (s *AuthService) hashPassword(password string) (string, error) {
	p := s.cfg.Argon2
	salt := make([]byte, p.SaltLength)
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLength)
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

func (s *AuthService) verifyPassword(password, hashedPassword string) bool {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	p := s.cfg.Argon2
	computed := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, computed) == 1
}
