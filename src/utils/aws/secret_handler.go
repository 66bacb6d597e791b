package aws_handler

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
)

// SecretManager reads credentials kept in AWS Secrets Manager.
type SecretManager struct {
	svc secretsmanageriface.SecretsManagerAPI
}

// NewSecretManager builds a client for region. endpoint overrides the AWS
// endpoint and is meant for local stacks; leave it empty otherwise.
func NewSecretManager(region, endpoint string) (*SecretManager, error) {
	awsCfg := &aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		awsCfg.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewSecretManagerFromAPI(secretsmanager.New(sess)), nil
}

func NewSecretManagerFromAPI(svc secretsmanageriface.SecretsManagerAPI) *SecretManager {
	return &SecretManager{svc: svc}
}

// GetSecretValue returns the current string value of secretID.
func (s *SecretManager) GetSecretValue(ctx context.Context, secretID string) (string, error) {
	result, err := s.svc.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return "", err
	}
	if result.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", secretID)
	}
	return *result.SecretString, nil
}
