package service

import (
	"context"
	"errors"
	"time"

	"gymdesk/pt-app/internal/domain"
	"gymdesk/pt-app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrLoginIDTaken         = errors.New("an account with this login id already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid login id or password")
	ErrAccountInactive      = errors.New("account is deactivated")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

// AuthService handles trainer registration and login for both roles. Member
// accounts are never created here; they only come from roster registration.
type AuthService interface {
	RegisterTrainer(ctx context.Context, name, loginID, password string) (*domain.Account, error)
	Login(ctx context.Context, loginID, password string) (token string, account *domain.Account, err error)
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	accountRepo   repository.AccountRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(accountRepo repository.AccountRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		accountRepo:   accountRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// RegisterTrainer creates a new trainer account. The login-id namespace is
// shared with members, so the duplicate check covers every account.
func (s *authService) RegisterTrainer(ctx context.Context, name, loginID, password string) (*domain.Account, error) {
	if name == "" || loginID == "" || password == "" {
		return nil, errors.New("name, login id, and password cannot be empty")
	}

	_, err := s.accountRepo.GetByLoginID(ctx, loginID)
	if err == nil {
		return nil, ErrLoginIDTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	account := &domain.Account{
		LoginID:      loginID,
		PasswordHash: string(hashedPassword),
		Name:         name,
		Role:         domain.RoleTrainer,
		IsActive:     true,
	}

	accountID, err := s.accountRepo.Create(ctx, account)
	if err != nil {
		// The unique index backstops the race between the duplicate check
		// above and this insert.
		if errors.Is(err, repository.ErrDuplicateLoginID) {
			return nil, ErrLoginIDTaken
		}
		return nil, err
	}
	account.ID = accountID

	account.PasswordHash = ""
	return account, nil
}

// Login authenticates any account (trainer or member) and issues a JWT.
func (s *authService) Login(ctx context.Context, loginID, password string) (token string, account *domain.Account, err error) {
	if loginID == "" || password == "" {
		err = errors.New("login id and password cannot be empty")
		return
	}

	account, err = s.accountRepo.GetByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed
			return
		}
		return
	}

	if !account.IsActive {
		err = ErrAccountInactive
		account = nil
		return
	}

	if err = bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		err = ErrAuthenticationFailed
		account = nil
		return
	}

	token, err = s.generateJWT(account)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	account.PasswordHash = ""
	return token, account, nil
}

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(account *domain.Account) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		UserID: account.ID.Hex(),
		Role:   account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "gymdesk",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// GetJWTSecret returns the JWT secret for middleware authentication.
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
