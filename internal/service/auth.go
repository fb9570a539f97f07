package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	domainerrors "github.com/pageza/foodgram/backend/internal/errors"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenIssuer = "foodgram"

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	tokenTTL  time.Duration
	blocklist TokenBlocklist
}

// NewAuthService creates an AuthService. blocklist may be nil, in which case logout
// does not revoke tokens.
func NewAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration, blocklist TokenBlocklist) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		blocklist: blocklist,
	}
}

var errBadCredentials = domainerrors.InvalidCredentials("Unable to log in with provided credentials.")

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", strings.TrimSpace(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errBadCredentials
		}
		return "", domainerrors.Internal("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", errBadCredentials
	}

	return s.GenerateToken(&types.TokenClaims{UserID: user.ID, Username: user.Username})
}

// Logout revokes the token identified by claims until it expires.
func (s *AuthService) Logout(ctx context.Context, claims *types.TokenClaims) error {
	if s.blocklist == nil || claims == nil || claims.ID == "" {
		return nil
	}
	until := time.Now().Add(s.tokenTTL)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.blocklist.Revoke(ctx, claims.ID, until); err != nil {
		return domainerrors.Internal("failed to revoke token", err)
	}
	return nil
}

// GenerateToken signs claims, filling in the registered claims that are unset.
func (s *AuthService) GenerateToken(claims *types.TokenClaims) (string, error) {
	now := time.Now()
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
	if claims.Subject == "" {
		claims.Subject = strconv.FormatUint(uint64(claims.UserID), 10)
	}
	if claims.Issuer == "" {
		claims.Issuer = tokenIssuer
	}
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.tokenTTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", domainerrors.Internal("failed to sign token", err)
	}
	return signed, nil
}

func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, domainerrors.Unauthorized("Invalid token.").WithCause(err)
	}
	if claims.UserID == 0 {
		return nil, domainerrors.Unauthorized("Invalid token.")
	}

	if s.blocklist != nil && claims.ID != "" {
		revoked, err := s.blocklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, domainerrors.Internal("failed to check token", err)
		}
		if revoked {
			return nil, domainerrors.Unauthorized("Token has been revoked.")
		}
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", claims.UserID).Count(&count).Error; err != nil {
		return nil, domainerrors.Internal("failed to load token user", err)
	}
	if count == 0 {
		return nil, domainerrors.Unauthorized("User not found.")
	}

	return claims, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", domainerrors.Internal("failed to hash password", err)
	}
	return string(hashed), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
