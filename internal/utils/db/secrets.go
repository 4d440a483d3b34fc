package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// retrieveCredentials prefers DB_USERNAME/DB_PASSWORD from the environment
// and falls back to the Secrets Manager secret identified by secretID.
func retrieveCredentials(secretID string) (string, string, error) {
	secretUsername := os.Getenv("DB_USERNAME")
	secretPassword := os.Getenv("DB_PASSWORD")
	if secretUsername != "" && secretPassword != "" {
		return secretUsername, secretPassword, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return "", "", fmt.Errorf("load aws config: %w", err)
	}
	secrets := secretsmanager.NewFromConfig(cfg)

	input := &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String("AWSCURRENT"),
	}
	result, err := secrets.GetSecretValue(context.TODO(), input)
	if err != nil {
		return "", "", fmt.Errorf("get secret %q: %w", secretID, err)
	}

	var secret Credentials
	if err := json.Unmarshal([]byte(*result.SecretString), &secret); err != nil {
		return "", "", fmt.Errorf("decode secret %q: %w", secretID, err)
	}
	return secret.Username, secret.Password, nil
}
