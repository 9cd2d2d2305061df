// Package config defines the ResilientClient's configuration shape and its
// TOML-file discovery (spec.md §6's configuration surface).
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nova-bci/cortex-go/protocol"
	"github.com/nova-bci/cortex-go/resilient"
	"github.com/nova-bci/cortex-go/stream"
)

// Config is the full set of knobs a caller supplies to build a
// resilient.ResilientClient.
type Config struct {
	Endpoint           string `toml:"endpoint"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`

	ClientID     string  `toml:"client_id"`
	ClientSecret string  `toml:"client_secret"`
	License      *string `toml:"license"`

	RequestTimeout      time.Duration `toml:"request_timeout"`
	StreamQueueCapacity int           `toml:"stream_queue_capacity"`

	Reconnect ReconnectPolicyConfig `toml:"reconnect"`
}

// ReconnectPolicyConfig mirrors resilient.ReconnectPolicy in TOML-friendly
// duration form.
type ReconnectPolicyConfig struct {
	InitialInterval time.Duration `toml:"initial_interval"`
	MaxInterval     time.Duration `toml:"max_interval"`
	Multiplier      float64       `toml:"multiplier"`
	MaxElapsedTime  time.Duration `toml:"max_elapsed_time"`
}

// Default returns a Config with the library's documented defaults filled
// in; callers start from this and override only what they need.
func Default() Config {
	return Config{
		RequestTimeout:      30 * time.Second,
		StreamQueueCapacity: stream.DefaultQueueCapacity,
		Reconnect: ReconnectPolicyConfig{
			InitialInterval: resilient.DefaultReconnectPolicy.InitialInterval,
			MaxInterval:     resilient.DefaultReconnectPolicy.MaxInterval,
			Multiplier:      resilient.DefaultReconnectPolicy.Multiplier,
			MaxElapsedTime:  resilient.DefaultReconnectPolicy.MaxElapsedTime,
		},
	}
}

// Validate checks the fields this module can verify without dialing
// anything (spec.md §6).
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", protocol.ErrConfig)
	}
	switch {
	case strings.HasPrefix(c.Endpoint, "wss://"):
		// always fine
	case strings.HasPrefix(c.Endpoint, "ws://") && isLoopbackWS(c.Endpoint):
		// the Cortex service only ever runs as a local daemon (127.0.0.1:54321
		// or localhost:54321); plain ws:// to the loopback interface never
		// crosses a network, so it's exempted from the WSS requirement.
	default:
		return fmt.Errorf("%w: endpoint must be wss:// (plain ws:// is only allowed to localhost)", protocol.ErrConfig)
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("%w: client_id and client_secret are required", protocol.ErrConfig)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request_timeout must be positive", protocol.ErrConfig)
	}
	return nil
}

// isLoopbackWS reports whether a ws:// endpoint's host is localhost or a
// loopback address, the only case spec.md §3's "endpoint must be WSS"
// invariant exempts.
func isLoopbackWS(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// ToReconnectPolicy converts the TOML-friendly shape into the type
// resilient.Connect expects.
func (c ReconnectPolicyConfig) ToReconnectPolicy() resilient.ReconnectPolicy {
	return resilient.ReconnectPolicy{
		InitialInterval: c.InitialInterval,
		MaxInterval:     c.MaxInterval,
		Multiplier:      c.Multiplier,
		MaxElapsedTime:  c.MaxElapsedTime,
	}
}

// ToResilientConfig converts this Config into the shape resilient.Connect
// expects. Logger is left nil; callers that want a non-default logger set
// it on the returned value before calling resilient.Connect.
func (c Config) ToResilientConfig() resilient.Config {
	return resilient.Config{
		Endpoint:            c.Endpoint,
		InsecureSkipVerify:  c.InsecureSkipVerify,
		ClientID:            c.ClientID,
		ClientSecret:        c.ClientSecret,
		License:             c.License,
		RequestTimeout:      c.RequestTimeout,
		StreamQueueCapacity: c.StreamQueueCapacity,
		Reconnect:           c.Reconnect.ToReconnectPolicy(),
	}
}
