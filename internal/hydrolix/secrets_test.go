package hydrolix

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type fakeSecrets struct {
	payload string
	err     error
	gotARN  string
}

func (f *fakeSecrets) GetSecretValue(_ context.Context, params *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.gotARN = aws.ToString(params.SecretId)
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(f.payload)}, nil
}

func TestConfigFromSecret(t *testing.T) {
	api := &fakeSecrets{payload: `{
		"HYDROLIX_HOST": "query.example.hydrolix.live",
		"HYDROLIX_PORT": "9440",
		"HYDROLIX_USER": "analyst",
		"HYDROLIX_PASSWORD": "s3cret"
	}`}

	cfg, err := ConfigFromSecret(context.Background(), api, "arn:aws:secretsmanager:us-east-1:123:secret:hdx")
	if err != nil {
		t.Fatal(err)
	}
	if api.gotARN != "arn:aws:secretsmanager:us-east-1:123:secret:hdx" {
		t.Errorf("wrong secret id requested: %s", api.gotARN)
	}
	if cfg.Host != "query.example.hydrolix.live" {
		t.Errorf("wrong host: %s", cfg.Host)
	}
	if cfg.Port != "9440" {
		t.Errorf("wrong port: %s", cfg.Port)
	}
	if cfg.User != "analyst" || cfg.Password != "s3cret" {
		t.Errorf("wrong credentials: %s / %s", cfg.User, cfg.Password)
	}
}

func TestConfigFromSecretDefaultPort(t *testing.T) {
	api := &fakeSecrets{payload: `{"HYDROLIX_HOST": "h.example.com", "HYDROLIX_USER": "u", "HYDROLIX_PASSWORD": "p"}`}

	cfg, err := ConfigFromSecret(context.Background(), api, "arn")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8088" {
		t.Errorf("expected default port 8088, got %s", cfg.Port)
	}
}

func TestConfigFromSecretMissingHost(t *testing.T) {
	api := &fakeSecrets{payload: `{"HYDROLIX_USER": "u"}`}

	if _, err := ConfigFromSecret(context.Background(), api, "arn"); err == nil {
		t.Fatal("expected error for secret without host")
	}
}

func TestConfigFromSecretFetchError(t *testing.T) {
	api := &fakeSecrets{err: errors.New("access denied")}

	if _, err := ConfigFromSecret(context.Background(), api, "arn"); err == nil {
		t.Fatal("expected error when fetch fails")
	}
}

func TestConfigFromSecretBadJSON(t *testing.T) {
	api := &fakeSecrets{payload: `not json`}

	if _, err := ConfigFromSecret(context.Background(), api, "arn"); err == nil {
		t.Fatal("expected error for malformed secret payload")
	}
}
