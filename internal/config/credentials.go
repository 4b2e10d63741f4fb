package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names stored in the credentials dotfile.
const (
	EnvAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	EnvDefaultRegion   = "AWS_DEFAULT_REGION"
)

// Credentials are the static AWS keys saved by "ga login".
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// Empty reports whether no key is set.
func (c Credentials) Empty() bool {
	return c.AccessKeyID == "" && c.SecretAccessKey == ""
}

// SaveCredentials writes creds to path as a dotenv file readable only by the
// owner.
func SaveCredentials(path string, creds Credentials) error {
	content, err := godotenv.Marshal(map[string]string{
		EnvAccessKeyID:     creds.AccessKeyID,
		EnvSecretAccessKey: creds.SecretAccessKey,
		EnvDefaultRegion:   creds.Region,
	})
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0o600); err != nil {
		return fmt.Errorf("write credentials %s: %w", path, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("chmod credentials %s: %w", path, err)
	}
	return nil
}

// LoadCredentials reads the dotfile at path and overrides the process
// environment with its values. A missing file returns empty credentials and
// no error.
func LoadCredentials(path string) (Credentials, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Credentials{}, nil
	}
	if err := godotenv.Overload(path); err != nil {
		return Credentials{}, fmt.Errorf("load credentials %s: %w", path, err)
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials %s: %w", path, err)
	}
	return Credentials{
		AccessKeyID:     env[EnvAccessKeyID],
		SecretAccessKey: env[EnvSecretAccessKey],
		Region:          env[EnvDefaultRegion],
	}, nil
}
