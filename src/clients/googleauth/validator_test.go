package googleauth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func TestGoogleTokenValidator(t *testing.T) {
	t.Run("claims become an identity", func(t *testing.T) {
		var gotAudience string
		v := NewTokenValidator("client-123")
		v.validate = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
			gotAudience = audience
			assert.Equal(t, "credential", token)
			return &idtoken.Payload{
				Subject: "1084",
				Claims: map[string]interface{}{
					"email":          "satoshi@example.com",
					"email_verified": true,
					"name":           "Satoshi",
					"picture":        "https://lh3.googleusercontent.com/a/pic",
				},
			}, nil
		}

		identity, err := v.Validate(context.Background(), "credential")
		require.NoError(t, err)
		assert.Equal(t, "client-123", gotAudience)
		assert.Equal(t, &Identity{
			Subject:       "1084",
			Email:         "satoshi@example.com",
			EmailVerified: true,
			Name:          "Satoshi",
			Picture:       "https://lh3.googleusercontent.com/a/pic",
		}, identity)
	})

	t.Run("string email_verified is accepted", func(t *testing.T) {
		identity, err := identityFromPayload(&idtoken.Payload{Claims: map[string]interface{}{
			"email":          "a@b.c",
			"email_verified": "true",
		}})
		require.NoError(t, err)
		assert.True(t, identity.EmailVerified)
		assert.Empty(t, identity.Picture)
	})

	t.Run("tokens without an email are rejected", func(t *testing.T) {
		_, err := identityFromPayload(&idtoken.Payload{Claims: map[string]interface{}{}})
		assert.Error(t, err)
	})

	t.Run("validation errors are returned", func(t *testing.T) {
		v := NewTokenValidator("")
		v.validate = func(context.Context, string, string) (*idtoken.Payload, error) {
			return nil, errors.New("idtoken: token expired")
		}
		_, err := v.Validate(context.Background(), "credential")
		assert.ErrorContains(t, err, "token expired")
	})
}
