package client

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Config holds the information needed to connect to the dispatch service.
type Config struct {
	Service Service `json:"service"`
}

// Service contains information how to connect to the dispatch API server.
type Service struct {
	// Server is the base URL of the dispatch API server.
	Server string `json:"server"`
}

func NewDefault() *Config {
	return &Config{}
}

func (c *Config) Equal(c2 *Config) bool {
	if c == c2 {
		return true
	}
	if c == nil || c2 == nil {
		return false
	}
	return c.Service.Server == c2.Service.Server
}

func (c *Config) Validate() error {
	if c.Service.Server == "" {
		return fmt.Errorf("dispatch server URL is required")
	}
	if _, err := url.ParseRequestURI(c.Service.Server); err != nil {
		return fmt.Errorf("invalid dispatch server URL: %w", err)
	}
	return nil
}

// NewHTTPClientFromConfig returns a new HTTP Client from the given config.
func NewHTTPClientFromConfig(_ *Config) (*http.Client, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     false,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
	return httpClient, nil
}
