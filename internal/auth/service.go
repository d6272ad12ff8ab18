package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/firesight-ai/firesight-backend/internal/users"
	pkgAuth "github.com/firesight-ai/firesight-backend/pkg/auth"
	"github.com/firesight-ai/firesight-backend/pkg/config"
	"github.com/firesight-ai/firesight-backend/pkg/db/models"
	pkgerrors "github.com/firesight-ai/firesight-backend/pkg/errors"
	"github.com/firesight-ai/firesight-backend/pkg/security"
)

// Unknown email, wrong password and federated-only accounts all answer with
// this exact message so the endpoint never leaks account existence.
const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the login controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
}

type service struct {
	users  userFinder
	jwtCfg config.JWTConfig
}

type userFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// ServiceParams bundles the dependencies required to build a login service.
type ServiceParams struct {
	UserRepo  userFinder
	JWTConfig config.JWTConfig
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{
		users:  params.UserRepo,
		jwtCfg: params.JWTConfig,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	// Accounts created via Google carry a sentinel instead of a hash; the
	// password path must treat them as plain bad credentials.
	if security.IsFederatedCredential(user.CredentialHash) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}

	valid, err := security.VerifyPassword(req.Password, user.CredentialHash)
	if err != nil {
		if errors.Is(err, security.ErrInvalidHash) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
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
