package service

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// readSecret fetches a secret from AWS Secrets Manager and unmarshals its
// JSON payload into out.
func readSecret(ctx context.Context, client *secretsmanager.Client, path string, out any) error {
	result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(path)})
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(*result.SecretString), out)
}
