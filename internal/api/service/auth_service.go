package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/maho-na510/aquarium-visit-log/internal/api/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
	"github.com/maho-na510/aquarium-visit-log/internal/api/repository"
	"github.com/maho-na510/aquarium-visit-log/internal/config"
	"github.com/maho-na510/aquarium-visit-log/internal/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Claims is the payload of a session token.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	// Register creates the account and signs it in.
	Register(ctx context.Context, in dto.RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ParseToken(token string) (*Claims, error)
	CurrentUser(ctx context.Context, id int64) (*models.User, error)
}

type authService struct {
	users      repository.UserRepository
	jwtSecret  []byte
	sessionTTL time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

func NewAuthService(users repository.UserRepository, cfg *config.Config, logger *slog.Logger) AuthService {
	return &authService{
		users:      users,
		jwtSecret:  []byte(cfg.JWTSecret),
		sessionTTL: cfg.SessionTTL,
		now:        time.Now,
		logger:     logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) validateRegistration(ctx context.Context, in dto.RegisterInput) error {
	var errs validation
	email := normalizeEmail(in.Email)
	in.Email = email
	tagged := dto.FieldErrors(in)

	switch {
	case email == "":
		errs.add("Email can't be blank")
	case tagged["Email"] != "":
		errs.add(tagged["Email"])
	default:
		if _, err := s.users.FindByEmail(ctx, email); err == nil {
			errs.add("Email has already been taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	switch {
	case in.Password == "":
		errs.add("Password can't be blank")
	case tagged["Password"] != "":
		errs.add(tagged["Password"])
	}
	if in.PasswordConfirmation != in.Password {
		errs.add("Password confirmation doesn't match Password")
	}

	if strings.TrimSpace(in.Name) == "" {
		errs.add("Name can't be blank")
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		errs.add("Username can't be blank")
	} else if _, err := s.users.FindByUsername(ctx, username); err == nil {
		errs.add("Username has already been taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return errs.err()
}

func (s *authService) Register(ctx context.Context, in dto.RegisterInput) (*models.User, string, error) {
	if err := s.validateRegistration(ctx, in); err != nil {
		return nil, "", err
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	user := &models.User{
		Email:    normalizeEmail(in.Email),
		Username: strings.TrimSpace(in.Username),
		Name:     strings.TrimSpace(in.Name),
		Password: hashed,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", &ValidationError{Messages: []string{"Email has already been taken"}}
		}
		return nil, "", err
	}
	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", err
		}
		auth.BurnCompare(password)
		return nil, "", ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		s.logger.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) issueToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *authService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) CurrentUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}
