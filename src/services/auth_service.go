package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cryptotracker/src/clients/googleauth"
	"cryptotracker/src/models"
	"cryptotracker/src/repositories"
	"cryptotracker/src/utils"

	"github.com/go-chi/jwtauth"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceI interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, login, password string) (*models.User, string, error)
	LoginWithGoogle(ctx context.Context, credential string) (*models.User, string, error)
}

type AuthService struct {
	userRepo  repositories.UserRepository
	tokenAuth *jwtauth.JWTAuth
	tokenTTL  time.Duration
	cost      int
	google    googleauth.GoogleTokenValidatorI
}

type AuthOption func(*AuthService)

// WithGoogleValidator enables sign-in with Google ID tokens.
func WithGoogleValidator(validator googleauth.GoogleTokenValidatorI) AuthOption {
	return func(s *AuthService) { s.google = validator }
}

func NewAuthService(userRepo repositories.UserRepository, tokenAuth *jwtauth.JWTAuth, tokenTTL time.Duration, opts ...AuthOption) *AuthService {
	s := &AuthService{
		userRepo:  userRepo,
		tokenAuth: tokenAuth,
		tokenTTL:  tokenTTL,
		cost:      bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: username, Email: email, PasswordHash: string(hash)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username or email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("%w: create user: %w", ErrPersistence, err)
	}

	utils.LoggerFromContext(ctx).WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Login checks the credentials and issues a signed access token whose
// subject is the user id.
func (s *AuthService) Login(ctx context.Context, login, password string) (*models.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	user, err := s.userRepo.GetByLogin(ctx, login)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: load user: %w", ErrPersistence, err)
	}
	if user.PasswordHash == "" {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// LoginWithGoogle verifies a Google ID token and signs in the account with
// the token's email, creating it on first use. Accounts created this way
// have no password and can only sign in through Google.
func (s *AuthService) LoginWithGoogle(ctx context.Context, credential string) (*models.User, string, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, "", fmt.Errorf("%w: missing token", ErrInvalidInput)
	}
	if s.google == nil {
		return nil, "", fmt.Errorf("%w: google sign-in is not enabled", ErrUnauthorized)
	}

	identity, err := s.google.Validate(ctx, credential)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid token: %w", ErrInvalidInput, err)
	}
	if !identity.EmailVerified {
		return nil, "", fmt.Errorf("%w: google account email is not verified", ErrUnauthorized)
	}
	email := strings.ToLower(identity.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		if user, err = s.createGoogleUser(ctx, email, identity.Picture); err != nil {
			return nil, "", err
		}
	case err != nil:
		return nil, "", fmt.Errorf("%w: load user: %w", ErrPersistence, err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) createGoogleUser(ctx context.Context, email, picture string) (*models.User, error) {
	user := &models.User{Username: email, Email: email}
	if picture != "" {
		user.ProfilePicture = &picture
	}
	err := s.userRepo.Create(ctx, user)
	if errors.Is(err, repositories.ErrDuplicate) {
		// a concurrent sign-in created it first, or the username is taken
		existing, getErr := s.userRepo.GetByEmail(ctx, email)
		if getErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: username %s already registered", ErrConflict, email)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: create user: %w", ErrPersistence, err)
	}

	utils.LoggerFromContext(ctx).WithField("user_id", user.ID).Info("user registered with google")
	return user, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	claims := map[string]interface{}{
		"sub":      strconv.Itoa(user.ID),
		"username": user.Username,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, s.tokenTTL)

	_, token, err := s.tokenAuth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// UserIDFromClaims extracts the user id stored in the token subject.
func UserIDFromClaims(claims map[string]interface{}) (int, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return 0, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	id, err := strconv.Atoi(sub)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: token subject is not a user id", ErrUnauthorized)
	}
	return id, nil
}
