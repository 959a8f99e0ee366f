package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	userrepo "github.com/storefront/orderflow/internal/data/repos/user"
	"github.com/storefront/orderflow/internal/domain/user"
	"github.com/storefront/orderflow/internal/platform/logger"
)

var (
	ErrBadCredentials = errors.New("incorrect username or password")
	ErrUserInactive   = errors.New("user is inactive")
	ErrUsernameTaken  = errors.New("username is already taken")
	ErrTokenExpired   = errors.New("authorization token has expired")
	ErrTokenInvalid   = errors.New("invalid token authorization")
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (*user.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	VerifyToken(tokenString string) (*user.Principal, error)
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     userrepo.Repo
	jwtSecretKey string
	tokenTTL     time.Duration
}

func NewAuthService(db *gorm.DB, log *logger.Logger, userRepo userrepo.Repo, jwtSecretKey string, tokenTTL time.Duration) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:           db,
		log:          serviceLog,
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		tokenTTL:     tokenTTL,
	}
}

// Register creates a customer account. Elevated roles are never
// self-assigned; staff accounts are provisioned out of band.
func (as *authService) Register(ctx context.Context, username, password string) (*user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		ID:       uuid.New(),
		Username: username,
		Password: string(hash),
		Role:     user.RoleCustomer,
		IsActive: true,
	}

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := as.userRepo.UsernameExists(ctx, tx, username)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if taken {
			return ErrUsernameTaken
		}
		return as.userRepo.Create(ctx, tx, u)
	})
	if err != nil {
		return nil, err
	}

	as.log.Info("User registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (as *authService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := as.userRepo.GetByUsername(ctx, nil, username)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return "", ErrBadCredentials
	}
	if !u.IsActive {
		return "", ErrUserInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", ErrBadCredentials
	}

	claims := jwt.MapClaims{
		"sub":      u.ID.String(),
		"username": u.Username,
		"role":     string(u.Role),
		"exp":      time.Now().Add(as.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (as *authService) VerifyToken(tokenString string) (*user.Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	username, _ := claims["username"].(string)
	roleStr, _ := claims["role"].(string)
	role := user.Role(roleStr)
	if !role.Valid() {
		return nil, ErrTokenInvalid
	}

	return &user.Principal{ID: id, Username: username, Role: role}, nil
}
