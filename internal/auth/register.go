package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/firesight-ai/firesight-backend/internal/users"
	pkgAuth "github.com/firesight-ai/firesight-backend/pkg/auth"
	"github.com/firesight-ai/firesight-backend/pkg/config"
	"github.com/firesight-ai/firesight-backend/pkg/db"
	"github.com/firesight-ai/firesight-backend/pkg/db/models"
	"github.com/firesight-ai/firesight-backend/pkg/enums"
	pkgerrors "github.com/firesight-ai/firesight-backend/pkg/errors"
	"github.com/firesight-ai/firesight-backend/pkg/security"
)

// RegistrationService creates password-backed accounts and hands back a
// session token so the client is signed in immediately after signup.
type RegistrationService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
}

type registrationService struct {
	users       userCreator
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
}

type userCreator interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// RegistrationServiceParams bundles the dependencies for a registration service.
type RegistrationServiceParams struct {
	UserRepo       userCreator
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(params RegistrationServiceParams) (RegistrationService, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &registrationService{
		users:       params.UserRepo,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registrationService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		FullName:       strings.TrimSpace(req.FullName),
		Email:          strings.TrimSpace(req.Email),
		CredentialHash: hash,
		Role:           enums.RoleUser,
	})
	if err != nil {
		// Uniqueness lives in the database; a duplicate email surfaces
		// here as a constraint violation rather than a pre-check race.
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "User already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), user.ID, user.Role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &AuthResponse{
		Token: token,
		User:  users.FromModel(user),
	}, nil
}
