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
	"github.com/firesight-ai/firesight-backend/pkg/db"
	"github.com/firesight-ai/firesight-backend/pkg/db/models"
	"github.com/firesight-ai/firesight-backend/pkg/enums"
	pkgerrors "github.com/firesight-ai/firesight-backend/pkg/errors"
	"github.com/firesight-ai/firesight-backend/pkg/googleid"
	"github.com/firesight-ai/firesight-backend/pkg/security"
)

// GoogleService exchanges a verified Google ID token for a session token,
// creating the account on first sign-in.
type GoogleService interface {
	LoginWithGoogle(ctx context.Context, req GoogleLoginRequest) (*AuthResponse, error)
}

type googleService struct {
	users    googleUserRepository
	verifier tokenVerifier
	jwtCfg   config.JWTConfig
}

type googleUserRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type tokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*googleid.Identity, error)
}

// GoogleServiceParams bundles the dependencies for a Google sign-in service.
type GoogleServiceParams struct {
	UserRepo  googleUserRepository
	Verifier  tokenVerifier
	JWTConfig config.JWTConfig
}

// NewGoogleService constructs a Google sign-in service.
func NewGoogleService(params GoogleServiceParams) (GoogleService, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Verifier == nil {
		return nil, fmt.Errorf("token verifier is required")
	}
	return &googleService{
		users:    params.UserRepo,
		verifier: params.Verifier,
		jwtCfg:   params.JWTConfig,
	}, nil
}

func (s *googleService) LoginWithGoogle(ctx context.Context, req GoogleLoginRequest) (*AuthResponse, error) {
	identity, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Invalid Google token")
	}

	user, err := s.findOrCreate(ctx, identity)
	if err != nil {
		return nil, err
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

// findOrCreate binds the Google identity to the account holding its email.
// Creation races go through the unique index: on a duplicate the row that won
// is re-fetched and used as-is.
func (s *googleService) findOrCreate(ctx context.Context, identity *googleid.Identity) (*models.User, error) {
	email := strings.TrimSpace(identity.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = email
	}

	user, err = s.users.Create(ctx, users.CreateUserDTO{
		FullName:       name,
		Email:          email,
		CredentialHash: security.FederatedCredential(identity.Subject),
		Role:           enums.RoleUser,
	})
	if err == nil {
		return user, nil
	}
	if !db.IsUniqueViolation(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	user, err = s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user after conflict")
	}
	return user, nil
}
