package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"uniride/internal/auth"
	"uniride/internal/domain"
	"uniride/internal/repository"
)

// AccountService handles registration, login and profile access.
type AccountService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
}

// NewAccountService creates a new AccountService.
func NewAccountService(userRepo repository.UserRepository, tokens *auth.TokenManager) *AccountService {
	return &AccountService{userRepo: userRepo, tokens: tokens}
}

// RegisterAccountRequest contains the parameters for creating an account.
type RegisterAccountRequest struct {
	UserID    string // institutional student code
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	City      string
	Address   string
}

// Register creates a new account and returns the user with a signed session.
func (s *AccountService) Register(ctx context.Context, req RegisterAccountRequest) (*Session, error) {
	if req.Email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if !domain.ValidPhone(req.Phone) {
		return nil, ErrInvalidPhone
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		UID:          uuid.New().String(),
		UserID:       req.UserID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		City:         req.City,
		Address:      req.Address,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.newSession(user)
}

// Session is an authenticated user with their access token.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Login verifies credentials and returns a session.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return s.newSession(user)
}

// Profile returns a user with their normalized my-trips references attached.
func (s *AccountService) Profile(ctx context.Context, uid string) (*domain.User, error) {
	if uid == "" {
		return nil, ErrInvalidUserID
	}

	user, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	refs, err := s.userRepo.MyTrips(ctx, uid)
	if err != nil {
		return nil, err
	}
	user.MyTrips = refs

	return user, nil
}

// UpdateProfileRequest contains the editable profile fields. Empty strings
// leave the stored value untouched.
type UpdateProfileRequest struct {
	UID            string
	FirstName      string
	LastName       string
	Phone          string
	Photo          string
	City           string
	Address        string
	NearbyLandmark string
}

// UpdateProfile applies profile changes.
func (s *AccountService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*domain.User, error) {
	if req.UID == "" {
		return nil, ErrInvalidUserID
	}

	user, err := s.userRepo.GetByUID(ctx, req.UID)
	if err != nil {
		return nil, err
	}

	if req.Phone != "" {
		if !domain.ValidPhone(req.Phone) {
			return nil, ErrInvalidPhone
		}
		user.Phone = req.Phone
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Photo != "" {
		user.Photo = req.Photo
	}
	if req.City != "" {
		user.City = req.City
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.NearbyLandmark != "" {
		user.NearbyLandmark = req.NearbyLandmark
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *AccountService) newSession(user *domain.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.UID, user.Email, user.UserID)
	if err != nil {
		return nil, err
	}

	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
