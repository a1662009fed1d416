package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"chatlink/config"
	"chatlink/internal/domain"
	"chatlink/internal/repository"
	chatlink_errors "chatlink/pkg/errors"
	"chatlink/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// TokenStore holds hashed refresh tokens with a TTL. Backed by Redis in
// production.
type TokenStore interface {
	Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error
	Get(ctx context.Context, tokenHash string) (string, error)
	Delete(ctx context.Context, tokenHash string) error
}

type AuthService struct {
	users      repository.UserRepository
	tokens     TokenStore
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(users repository.UserRepository, tokens TokenStore, cfg *config.Config) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		jwtSecret:  []byte(cfg.JWTSecret),
		accessTTL:  time.Duration(cfg.JWTExpiryMin) * time.Minute,
		refreshTTL: time.Duration(cfg.RefreshExpiry) * 24 * time.Hour,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	ExpiresIn    int64    `json:"expires_in"`
	User         UserInfo `json:"user"`
}

type UserInfo struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email,omitempty"`
	ProfilePic string `json:"profilePic,omitempty"`
}

type AccessClaims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	if err := validateRegister(in); err != nil {
		return AuthResponse{}, err
	}

	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return AuthResponse{}, chatlink_errors.ErrAlreadyExists
	} else if !errors.Is(err, chatlink_errors.ErrNotFound) {
		return AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	newUser := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, newUser); err != nil {
		return AuthResponse{}, err
	}

	return s.issueTokens(ctx, newUser)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return AuthResponse{}, chatlink_errors.ErrInvalidInput
	}

	u, err := s.users.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, chatlink_errors.ErrNotFound) {
			return AuthResponse{}, chatlink_errors.ErrUnauthorized
		}
		return AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return AuthResponse{}, chatlink_errors.ErrUnauthorized
	}

	return s.issueTokens(ctx, u)
}

// Refresh rotates the refresh token: the presented token is revoked and a
// fresh pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (AuthResponse, error) {
	if refreshToken == "" {
		return AuthResponse{}, chatlink_errors.ErrUnauthorized
	}

	tokenHash := s.hashRefreshToken(refreshToken)
	userIDHex, err := s.tokens.Get(ctx, tokenHash)
	if err != nil {
		return AuthResponse{}, err
	}

	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		return AuthResponse{}, chatlink_errors.ErrUnauthorized
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, chatlink_errors.ErrNotFound) {
			return AuthResponse{}, chatlink_errors.ErrUnauthorized
		}
		return AuthResponse{}, err
	}

	if err := s.tokens.Delete(ctx, tokenHash); err != nil {
		return AuthResponse{}, err
	}

	return s.issueTokens(ctx, u)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokens.Delete(ctx, s.hashRefreshToken(refreshToken))
}

func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	if tokenString == "" {
		return AccessClaims{}, chatlink_errors.ErrUnauthorized
	}

	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, chatlink_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return AccessClaims{}, chatlink_errors.ErrUnauthorized
	}

	return *claims, nil
}

func (s *AuthService) issueTokens(ctx context.Context, u *domain.User) (AuthResponse, error) {
	accessToken, expiresIn, err := s.newAccessToken(u.ID)
	if err != nil {
		return AuthResponse{}, err
	}

	refreshToken, err := generateToken(32)
	if err != nil {
		return AuthResponse{}, err
	}
	if err := s.tokens.Save(ctx, s.hashRefreshToken(refreshToken), u.ID.Hex(), s.refreshTTL); err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		User:         toUserInfo(u),
	}, nil
}

func (s *AuthService) newAccessToken(userID primitive.ObjectID) (string, int64, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.accessTTL.Seconds()), nil
}

func (s *AuthService) hashRefreshToken(token string) string {
	sum := sha256.Sum256(append(s.jwtSecret, []byte(token)...))
	return hex.EncodeToString(sum[:])
}

func validateRegister(in RegisterInput) error {
	if strings.TrimSpace(in.Username) == "" {
		return chatlink_errors.ErrInvalidInput
	}
	if len(in.Password) < 8 {
		return chatlink_errors.ErrInvalidInput
	}
	return nil
}

func generateToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func toUserInfo(u *domain.User) UserInfo {
	return UserInfo{
		ID:         u.ID.Hex(),
		Username:   u.Username,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
	}
}

// HTTPStatus maps service errors onto response codes. Duplicates surface as
// 400 to match the API contract ("chat already exists" is a validation
// failure, not a conflict).
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, chatlink_errors.ErrInvalidInput),
		errors.Is(err, chatlink_errors.ErrAlreadyExists),
		errors.Is(err, chatlink_errors.ErrLinkExpired):
		return 400
	case errors.Is(err, chatlink_errors.ErrUnauthorized):
		return 401
	case errors.Is(err, chatlink_errors.ErrForbidden):
		return 403
	case errors.Is(err, chatlink_errors.ErrNotFound):
		return 404
	case errors.Is(err, chatlink_errors.ErrTooLarge):
		return 413
	case errors.Is(err, chatlink_errors.ErrRateLimited):
		return 429
	default:
		return 500
	}
}

type ctxKey string

var userIDKey ctxKey = "user_id"

// WithUserContext stamps the authenticated caller onto the request context,
// for both handlers and log correlation.
func WithUserContext(ctx context.Context, userID primitive.ObjectID) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, logger.UserIdKey, userID.Hex())
}

func UserIDFromContext(ctx context.Context) (primitive.ObjectID, bool) {
	value := ctx.Value(userIDKey)
	if value == nil {
		return primitive.NilObjectID, false
	}
	userID, ok := value.(primitive.ObjectID)
	return userID, ok
}
