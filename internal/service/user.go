package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/asafonov/ecombot/internal/hash"
	"github.com/asafonov/ecombot/internal/models"
	"github.com/asafonov/ecombot/internal/repo"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type UserService struct {
	Repo *repo.GormRepo
}

func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	if _, err := s.Repo.UserByUsername(ctx, username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
		Role:         "user",
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.Repo.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	return s.Repo.UserByID(ctx, userID)
}

// UpdateProfile applies the non-empty fields of in to the user's profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*models.User, error) {
	updates := map[string]any{}
	if in.FirstName != nil {
		updates["first_name"] = *in.FirstName
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.Email != nil {
		updates["email"] = *in.Email
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	return s.Repo.UpdateUserProfile(ctx, userID, updates)
}

type ProfileUpdate struct {
	FirstName *string
	Phone     *string
	Email     *string
}

func (s *UserService) ListAddresses(ctx context.Context, userID uint) ([]models.DeliveryAddress, error) {
	return s.Repo.AddressesByUser(ctx, userID)
}

func (s *UserService) AddAddress(ctx context.Context, userID uint, label, fullAddress string) (*models.DeliveryAddress, error) {
	if label == "" || fullAddress == "" {
		return nil, fmt.Errorf("%w: label and address are required", ErrValidation)
	}
	addr := models.DeliveryAddress{
		UserID:      userID,
		Label:       label,
		FullAddress: fullAddress,
	}
	if err := s.Repo.CreateAddress(ctx, &addr); err != nil {
		return nil, err
	}
	return &addr, nil
}

// DeleteAddress removes the user's address; a missing or foreign address is a
// hard failure, never a silent no-op.
func (s *UserService) DeleteAddress(ctx context.Context, userID, addressID uint) error {
	ok, err := s.Repo.DeleteAddress(ctx, addressID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAddressNotFound
	}
	return nil
}

// SetDefaultAddress flips the user's default to addressID, atomically
// unsetting every other address of that user.
func (s *UserService) SetDefaultAddress(ctx context.Context, userID, addressID uint) error {
	ok, err := s.Repo.SetDefaultAddress(ctx, userID, addressID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAddressNotFound
	}
	return nil
}

// DefaultAddress returns the user's default address, or the first saved one
// when no default is marked.
func (s *UserService) DefaultAddress(ctx context.Context, userID uint) (*models.DeliveryAddress, error) {
	addrs, err := s.Repo.AddressesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, ErrAddressNotFound
	}
	for i := range addrs {
		if addrs[i].IsDefault {
			return &addrs[i], nil
		}
	}
	return &addrs[0], nil
}
