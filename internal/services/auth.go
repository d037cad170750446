package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	authrepo "github.com/yungbote/wrongbook-backend/internal/data/repos/auth"
	userrepo "github.com/yungbote/wrongbook-backend/internal/data/repos/user"
	types "github.com/yungbote/wrongbook-backend/internal/domain"
	"github.com/yungbote/wrongbook-backend/internal/pkg/apierr"
	"github.com/yungbote/wrongbook-backend/internal/pkg/ctxutil"
	"github.com/yungbote/wrongbook-backend/internal/platform/logger"
)

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Grade    string `json:"grade"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, error)
	Login(ctx context.Context, email, password string) (access, refresh string, err error)
	Refresh(ctx context.Context, refreshToken string) (access, refresh string, err error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db         *gorm.DB
	log        *logger.Logger
	users      userrepo.UserRepo
	tokens     authrepo.UserTokenRepo
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users userrepo.UserRepo,
	tokens authrepo.UserTokenRepo,
	secretKey string,
	accessTTL, refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:         db,
		log:        baseLog.With("service", "AuthService"),
		users:      users,
		tokens:     tokens,
		secretKey:  []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", fmt.Errorf("email and password are required"))
	}
	existing, err := s.users.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, apierr.New(http.StatusConflict, "email_taken", fmt.Errorf("email %s is already registered", email))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hash),
		Name:     strings.TrimSpace(in.Name),
		Role:     types.RoleStudent,
		Grade:    strings.TrimSpace(in.Grade),
	}
	if _, err := s.users.Create(ctx, nil, []*types.User{u}); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByEmail(ctx, nil, email)
	if err != nil {
		return "", "", fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return "", "", apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("invalid email or password"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", "", apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("invalid email or password"))
	}
	return s.issueTokens(ctx, u)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return "", "", apierr.New(http.StatusUnauthorized, "unauthorized", err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", "", apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("bad subject claim"))
	}
	stored, err := s.tokens.GetByUserID(ctx, nil, userID)
	if err != nil {
		return "", "", fmt.Errorf("load refresh token: %w", err)
	}
	if stored == nil || stored.RefreshToken != refreshToken || stored.ExpiresAt.Before(time.Now()) {
		return "", "", apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("refresh token expired or revoked"))
	}
	u, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		return "", "", fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return "", "", apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("user gone"))
	}
	return s.issueTokens(ctx, u)
}

func (s *authService) Logout(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("not logged in"))
	}
	return s.tokens.FullDeleteByUserID(ctx, nil, rd.UserID)
}

func (s *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return ctx, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("bad subject claim")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Role:        claims.Role,
	}), nil
}

type authClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) issueTokens(ctx context.Context, u *types.User) (string, string, error) {
	access, err := s.signToken(u, s.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.signToken(u, s.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("sign refresh token: %w", err)
	}
	err = s.tokens.Upsert(ctx, nil, &types.UserToken{
		UserID:       u.ID,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(s.refreshTTL),
	})
	if err != nil {
		return "", "", fmt.Errorf("store refresh token: %w", err)
	}
	return access, refresh, nil
}

func (s *authService) signToken(u *types.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := authClaims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique jti so rotated tokens never collide even within one clock second.
			ID:        uuid.NewString(),
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}

func (s *authService) parseToken(tokenString string) (*authClaims, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
