package milvus

import (
	"fmt"
	"time"
)

const (
	// DefaultDialTimeout is the default timeout for establishing a connection
	DefaultDialTimeout = 10 * time.Second
	// DefaultRequestTimeout is the default timeout for a single request
	DefaultRequestTimeout = 30 * time.Second
	// DefaultRetries is the default number of retries for retryable errors
	DefaultRetries = 3
	// DefaultRetryDelay is the delay between two attempts
	DefaultRetryDelay = time.Second
)

// Config Milvus 连接配置
type Config struct {
	Address        string        `mapstructure:"address"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	APIKey         string        `mapstructure:"api_key"`
	Database       string        `mapstructure:"database"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Address:        "localhost:19530",
		Database:       "default",
		DialTimeout:    DefaultDialTimeout,
		RequestTimeout: DefaultRequestTimeout,
		MaxRetries:     DefaultRetries,
		RetryDelay:     DefaultRetryDelay,
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("%w: address is required", ErrInvalidConfig)
	}
	if c.DialTimeout < 0 {
		return fmt.Errorf("%w: dial_timeout cannot be negative", ErrInvalidConfig)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("%w: request_timeout cannot be negative", ErrInvalidConfig)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries cannot be negative", ErrInvalidConfig)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry_delay cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// withDefaults 返回填充零值字段后的副本
func (c *Config) withDefaults() *Config {
	cp := *c
	if cp.DialTimeout == 0 {
		cp.DialTimeout = DefaultDialTimeout
	}
	if cp.RequestTimeout == 0 {
		cp.RequestTimeout = DefaultRequestTimeout
	}
	if cp.RetryDelay == 0 {
		cp.RetryDelay = DefaultRetryDelay
	}
	return &cp
}
