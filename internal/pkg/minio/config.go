package minio

import (
	"errors"
)

// Config represents the configuration for MinIO client
type Config struct {
	// Endpoint is host:port without scheme, e.g. "localhost:9000"
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`
	Region          string `mapstructure:"region"`
	UseSSL          bool   `mapstructure:"use_ssl"`

	// Bucket holds uploaded source documents
	Bucket string `mapstructure:"bucket"`
}

// DefaultConfig returns a configuration for a local MinIO
func DefaultConfig() *Config {
	return &Config{
		Endpoint:        "localhost:9000",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		Bucket:          "doc-qa",
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("minio: endpoint is required")
	}
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return errors.New("minio: access key and secret key are required")
	}
	if err := ValidateBucketName(c.Bucket); err != nil {
		return err
	}
	return nil
}
