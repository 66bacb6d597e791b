package googleauth

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
)

// Identity is the part of a verified Google ID token used to sign a user in.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type GoogleTokenValidatorI interface {
	Validate(ctx context.Context, credential string) (*Identity, error)
}

type GoogleTokenValidator struct {
	ClientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// NewTokenValidator checks ID tokens against Google's published keys. An
// empty clientID accepts tokens issued for any audience.
func NewTokenValidator(clientID string) *GoogleTokenValidator {
	return &GoogleTokenValidator{ClientID: clientID, validate: idtoken.Validate}
}

func (v *GoogleTokenValidator) Validate(ctx context.Context, credential string) (*Identity, error) {
	payload, err := v.validate(ctx, credential, v.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate google id token: %w", err)
	}
	return identityFromPayload(payload)
}

func identityFromPayload(payload *idtoken.Payload) (*Identity, error) {
	email, _ := payload.Claims["email"].(string)
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("google id token has no email claim")
	}
	identity := &Identity{Subject: payload.Subject, Email: email}
	// the claim is a bool in current tokens and a string in some older ones
	switch verified := payload.Claims["email_verified"].(type) {
	case bool:
		identity.EmailVerified = verified
	case string:
		identity.EmailVerified = verified == "true"
	}
	identity.Name, _ = payload.Claims["name"].(string)
	identity.Picture, _ = payload.Claims["picture"].(string)
	return identity, nil
}
