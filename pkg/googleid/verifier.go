package googleid

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
)

var errClientIDRequired = errors.New("google client ID is required")

// Identity is the subset of a verified Google ID token this service uses.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Verifier validates Google-issued ID tokens against the configured OAuth
// client (the token audience).
type Verifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// NewVerifier builds a verifier bound to the given OAuth client ID.
func NewVerifier(clientID string) (*Verifier, error) {
	trimmed := strings.TrimSpace(clientID)
	if trimmed == "" {
		return nil, errClientIDRequired
	}
	return &Verifier{clientID: trimmed, validate: idtoken.Validate}, nil
}

// Verify checks the assertion's signature and audience and extracts the
// identity fields.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	if v == nil {
		return nil, errClientIDRequired
	}
	if strings.TrimSpace(rawToken) == "" {
		return nil, fmt.Errorf("id token is required")
	}

	payload, err := v.validate(ctx, rawToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("validate id token: %w", err)
	}

	identity := &Identity{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		identity.Name = name
	}

	if identity.Email == "" {
		return nil, fmt.Errorf("id token missing email claim")
	}
	if identity.Subject == "" {
		return nil, fmt.Errorf("id token missing subject")
	}

	return identity, nil
}
