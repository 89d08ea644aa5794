package service

import (
	"alcyxob/healthera/internal/domain"
	"alcyxob/healthera/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// Registration carries the account fields collected at sign-up.
type Registration struct {
	LastName  string
	FirstName string
	Phone     string
	Email     string
	Password  string
	BirthDate string // YYYY-MM-DD, optional
}

const minPasswordLength = 6

var validate = validator.New()

type AuthService interface {
	Register(ctx context.Context, reg Registration) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
	adminEmails   map[string]struct{}
	now           func() time.Time
}

// NewAuthService creates a new instance of authService.
// Accounts registered with one of adminEmails get the admin role.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiration time.Duration, adminEmails []string) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		adminEmails:   admins,
		now:           time.Now,
	}
}

// Register handles new user registration.
func (s *authService) Register(ctx context.Context, reg Registration) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	if err := s.validateRegistration(reg, email); err != nil {
		return nil, err
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	role := domain.RoleUser
	if _, ok := s.adminEmails[email]; ok {
		role = domain.RoleAdmin
	}
	user := &domain.User{
		LastName:     reg.LastName,
		FirstName:    reg.FirstName,
		Phone:        reg.Phone,
		Email:        email,
		PasswordHash: string(hashedPassword),
		BirthDate:    reg.BirthDate,
		Role:         role,
	}

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// lost the race against a concurrent registration; the unique index caught it
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID
	user.PasswordHash = ""
	return user, nil
}

// validateRegistration applies the sign-up rules: both names, a well-formed email,
// an 8-digit phone when one is given, a password of at least 6 characters and a
// birth date strictly in the past.
func (s *authService) validateRegistration(reg Registration, email string) error {
	if strings.TrimSpace(reg.LastName) == "" || strings.TrimSpace(reg.FirstName) == "" {
		return fmt.Errorf("%w: last and first name are required", ErrValidationFailed)
	}
	if validate.Var(email, "required,email") != nil {
		return fmt.Errorf("%w: invalid email address", ErrValidationFailed)
	}
	if reg.Phone != "" && validate.Var(reg.Phone, "number,len=8") != nil {
		return fmt.Errorf("%w: phone must be exactly 8 digits", ErrValidationFailed)
	}
	if len(reg.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidationFailed, minPasswordLength)
	}
	if reg.BirthDate != "" {
		birth, err := domain.ParseDate(reg.BirthDate)
		if err != nil || !birth.Before(domain.DateOf(s.now())) {
			return ErrInvalidDate
		}
	}
	return nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	if email == "" || password == "" {
		err = ErrValidationFailed
		return
	}

	user, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed
		}
		user = nil
		return
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}
	user.PasswordHash = ""
	return token, user, nil
}

// Claims is the JWT payload issued at login and checked by the API middleware.
type Claims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "healthera",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
