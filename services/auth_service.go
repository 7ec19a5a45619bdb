package services

import (
	"context"
	"errors"

	"shop-backend/models"
	"shop-backend/repositories"
	"shop-backend/utils"
)

// AuthService is a thin boundary collaborator: the engine itself never
// parses tokens, it only receives an already-resolved identity.
type AuthService struct {
	store repositories.Store
	users repositories.UserRepository
}

func NewAuthService(store repositories.Store, users repositories.UserRepository) *AuthService {
	return &AuthService{store: store, users: users}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	existing, err := s.users.FindByEmail(ctx, s.store, req.Email)
	if err != nil {
		var notFound *models.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, engineError(err)
		}
	}
	if existing != nil {
		return nil, &models.ConflictError{Message: "email already registered"}
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, engineError(err)
	}

	user := &models.User{
		Email:    req.Email,
		Password: hashed,
		Role:     "customer",
		FullName: req.FullName,
		Phone:    req.Phone,
	}
	if err := s.users.Create(ctx, s.store, user); err != nil {
		return nil, engineError(err)
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, engineError(err)
	}

	return &models.LoginResponse{Token: token, User: *user}, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, s.store, req.Email)
	if err != nil {
		var notFound *models.NotFoundError
		if errors.As(err, &notFound) {
			return nil, models.NewValidationError("invalid email or password")
		}
		return nil, engineError(err)
	}

	valid, err := utils.VerifyPassword(user.Password, req.Password)
	if err != nil || !valid {
		return nil, models.NewValidationError("invalid email or password")
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, engineError(err)
	}

	return &models.LoginResponse{Token: token, User: *user}, nil
}

func (s *AuthService) CreateAddress(ctx context.Context, userID int, req models.CreateAddressRequest) (*models.Address, error) {
	address := &models.Address{
		UserID:     userID,
		Label:      req.Label,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		PostalCode: req.PostalCode,
		Phone:      req.Phone,
	}
	if err := s.users.CreateAddress(ctx, s.store, address); err != nil {
		return nil, engineError(err)
	}
	return address, nil
}

func (s *AuthService) ListAddresses(ctx context.Context, userID int) ([]models.Address, error) {
	addresses, err := s.users.ListAddresses(ctx, s.store, userID)
	if err != nil {
		return nil, engineError(err)
	}
	return addresses, nil
}
