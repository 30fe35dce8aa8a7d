package user

import (
	"context"

	"dealflow/internal/errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service defines the interface for user business logic
type Service interface {
	Register(user *User) error
	Login(email, password string) (*User, error)
	GetUserByID(ctx context.Context, id uint64) (*User, error)
	DeactivateUser(id uint64) error
}

// DefaultService implements Service
type DefaultService struct {
	repository UserRepository
}

// NewService creates a new user service
func NewService(repository UserRepository) Service {
	return &DefaultService{repository: repository}
}

// Register registers a new user
func (s *DefaultService) Register(user *User) error {
	// Check if user with email already exists
	_, err := s.repository.FindByEmail(user.Email)
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if err == nil {
		return errors.UnprocessableEntity("User already registered", nil)
	}

	// Hash the password before saving
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.UnprocessableEntity("Can't hash password", err)
	}
	user.PasswordHash = string(hashedPassword)
	user.IsActive = true

	return s.repository.Create(user)
}

// Login authenticates a user
func (s *DefaultService) Login(email, password string) (*User, error) {
	user, err := s.repository.FindByEmail(email)
	if err != nil {
		return nil, errors.Unauthorized("User not found", err)
	}

	if !user.IsActive {
		return nil, errors.Unauthorized("User is not active", nil)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, errors.Unauthorized("Wrong password", err)
	}

	return user, nil
}

// GetUserByID gets a user by ID
func (s *DefaultService) GetUserByID(ctx context.Context, id uint64) (*User, error) {
	return s.repository.FindByID(id)
}

// DeactivateUser deactivates a user
func (s *DefaultService) DeactivateUser(id uint64) error {
	return s.repository.Deactivate(id)
}
