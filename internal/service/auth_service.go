package service

import (
	"context"
	"errors"
	"fmt"

	"todo_backend/internal/logging"
	"todo_backend/internal/model"
	"todo_backend/internal/repository"
	"todo_backend/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// AuthService provides authentication related services
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*model.User, string, error)
	ResolveIdentity(ctx context.Context, token string) (model.Identity, error)
	Signup(ctx context.Context, req model.SignupRequest) (*model.User, error)
	GetUser(ctx context.Context, id model.Identity) (*model.User, error)
	ChangePassword(ctx context.Context, id model.Identity, req model.PasswordChangeRequest) error
	ChangePhoneNumber(ctx context.Context, id model.Identity, req model.PhoneNumberChangeRequest) error
}

type authService struct {
	store        repository.Transactor
	jwtUtil      *utils.JWTUtil
	log          logging.Logger
	initialAdmin string
}

// NewAuthService creates a new AuthService. A signup whose username equals
// initialAdmin is stored with the admin role.
func NewAuthService(store repository.Transactor, jwtUtil *utils.JWTUtil, log logging.Logger, initialAdmin string) AuthService {
	return &authService{
		store:        store,
		jwtUtil:      jwtUtil,
		log:          log,
		initialAdmin: initialAdmin,
	}
}

// Authenticate checks the credentials and issues a bearer token
func (s *authService) Authenticate(ctx context.Context, username, password string) (*model.User, string, error) {
	var user *model.User
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		var err error
		user, err = repos.Users().FindByUsername(ctx, username)
		return err
	})
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by username: %w", err)
	}
	if user == nil || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(user.Username, user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// ResolveIdentity turns a bearer token into the caller's identity
func (s *authService) ResolveIdentity(ctx context.Context, token string) (model.Identity, error) {
	claims, err := s.jwtUtil.ValidateToken(token)
	if err != nil {
		s.log.Debug(ctx, "token rejected", "error", err)
		return model.Identity{}, ErrInvalidToken
	}
	return model.Identity{
		UserID:   claims.UserID,
		Username: claims.Subject,
		Role:     model.ParseRole(claims.Role),
	}, nil
}

// Signup creates a new user account
func (s *authService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if s.initialAdmin != "" && req.Username == s.initialAdmin {
		role = model.RoleAdminName
		s.log.Info(ctx, "registering user as admin via INITIAL_ADMIN_USERNAME", "username", req.Username)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hashedPassword,
		Role:         role,
		PhoneNumber:  req.PhoneNumber,
	}

	err = s.store.WithTx(ctx, func(repos repository.Repositories) error {
		existing, err := repos.Users().FindByUsername(ctx, req.Username)
		if err != nil {
			return fmt.Errorf("failed to check existing user: %w", err)
		}
		if existing != nil {
			return ErrUserAlreadyExists
		}
		return repos.Users().Create(ctx, user)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrUserAlreadyExists
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser returns the stored record of the caller
func (s *authService) GetUser(ctx context.Context, id model.Identity) (*model.User, error) {
	var user *model.User
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		var err error
		user, err = repos.Users().FindByID(ctx, id.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ChangePassword re-verifies the current password before storing the new one
func (s *authService) ChangePassword(ctx context.Context, id model.Identity, req model.PasswordChangeRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}

	return s.store.WithTx(ctx, func(repos repository.Repositories) error {
		user, err := repos.Users().FindByID(ctx, id.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
			s.log.Warn(ctx, "password change rejected", "user_id", id.UserID)
			return ErrUnauthorized
		}

		hashed, err := hashPassword(req.NewPassword)
		if err != nil {
			return err
		}
		return repos.Users().UpdatePasswordHash(ctx, id.UserID, hashed)
	})
}

// ChangePhoneNumber overwrites the caller's phone number
func (s *authService) ChangePhoneNumber(ctx context.Context, id model.Identity, req model.PhoneNumberChangeRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}

	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		return repos.Users().UpdatePhoneNumber(ctx, id.UserID, req.PhoneNumber)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// hashPassword reports bcrypt's length limit as a validation failure. The
// binding tags bound runes, so multi-byte passwords can still exceed 72 bytes.
func hashPassword(password string) (string, error) {
	hashed, err := utils.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", &ValidationError{Err: err}
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hashed, nil
}
