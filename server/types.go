package server

import (
	"fmt"

	"github.com/momentics/hioload-tcp/api"
)

// Config holds all server-side configuration parameters.
type Config struct {
	Port           uint16 // IPv4 TCP port, 0 picks an ephemeral port
	Workers        int    // worker goroutines (<= 0 = NumCPU)
	ReadBufferSize int    // bytes requested by the single read per readiness event
	MaxEvents      int    // notifications returned by one multiplexer wait
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		Workers:        4,
		ReadBufferSize: 1024,
		MaxEvents:      16,
	}
}

// Validate rejects configurations that cannot run. It is checked before any
// descriptor is created.
func (c Config) Validate() error {
	if c.MaxEvents <= 0 {
		return api.NewError(api.KindInvalidConfig, fmt.Sprintf("invalid max events %d", c.MaxEvents), nil)
	}
	if c.ReadBufferSize <= 0 {
		return api.NewError(api.KindInvalidConfig, fmt.Sprintf("invalid read buffer size %d", c.ReadBufferSize), nil)
	}
	return nil
}
