package hydrolix

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsAPI is the slice of the Secrets Manager client used here.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// secretPayload is the JSON shape of the cluster credential secret.
type secretPayload struct {
	Host     string `json:"HYDROLIX_HOST"`
	Port     string `json:"HYDROLIX_PORT"`
	User     string `json:"HYDROLIX_USER"`
	Password string `json:"HYDROLIX_PASSWORD"`
}

// ConfigFromSecret fetches cluster credentials from Secrets Manager by ARN.
// The secret string is a JSON object with HYDROLIX_HOST, HYDROLIX_PORT,
// HYDROLIX_USER, and HYDROLIX_PASSWORD keys; port defaults to 8088 when
// the secret omits it.
func ConfigFromSecret(ctx context.Context, api SecretsAPI, arn string) (Config, error) {
	out, err := api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(arn),
	})
	if err != nil {
		return Config{}, fmt.Errorf("get secret value: %w", err)
	}
	if out.SecretString == nil {
		return Config{}, fmt.Errorf("secret %s has no string payload", arn)
	}

	var payload secretPayload
	if err := json.Unmarshal([]byte(*out.SecretString), &payload); err != nil {
		return Config{}, fmt.Errorf("parse secret payload: %w", err)
	}
	if payload.Host == "" {
		return Config{}, fmt.Errorf("secret %s missing HYDROLIX_HOST", arn)
	}
	if payload.Port == "" {
		payload.Port = "8088"
	}

	return Config{
		Host:     payload.Host,
		Port:     payload.Port,
		User:     payload.User,
		Password: payload.Password,
	}, nil
}
