package conn

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config describes how to reach the store.
// A single address gives a plain client, several give a cluster client and
// a non-empty MasterName gives a sentinel-backed failover client.
type Config struct {
	Addrs      []string
	Username   string
	Password   string
	DB         int
	MasterName string

	PoolSize     int           // 0 => go-redis default (10 per CPU)
	DialTimeout  time.Duration // 0 => 5s
	ReadTimeout  time.Duration // 0 => 3s
	WriteTimeout time.Duration // 0 => ReadTimeout
}

// DefaultConfig points at a local server.
func DefaultConfig() Config {
	return Config{
		Addrs:       []string{"127.0.0.1:6379"},
		DialTimeout: 5 * time.Second,
		ReadTimeout: 3 * time.Second,
	}
}

func (c Config) Validate() error {
	if len(c.Addrs) == 0 {
		return errors.New("conn: at least one address is required")
	}
	for i, a := range c.Addrs {
		if a == "" {
			return fmt.Errorf("conn: empty address at position %d", i)
		}
	}
	if c.DB < 0 {
		return fmt.Errorf("conn: invalid db %d", c.DB)
	}
	if c.PoolSize < 0 {
		return fmt.Errorf("conn: invalid pool size %d", c.PoolSize)
	}
	if c.DB != 0 && len(c.Addrs) > 1 && c.MasterName == "" {
		return errors.New("conn: cluster mode does not support db selection")
	}
	return nil
}

// NewClient builds a client from cfg. The caller owns the client.
func NewClient(cfg Config) (redis.UniversalClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MasterName:   cfg.MasterName,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}), nil
}
