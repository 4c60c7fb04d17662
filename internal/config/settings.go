package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/bolas/internal/physics"
)

// Environment variables read by Load.
const (
	EnvRefreshRate    = "BOLAS_REFRESH_RATE_MS"
	EnvAlgorithm      = "BOLAS_COLLISION_DETECTION_ALGORITHM"
	EnvStaticFilePath = "BOLAS_STATIC_FILE_PATH"
	EnvTCPAddrs       = "BOLAS_TCP_ADDRS"
	EnvUnixAddrs      = "BOLAS_UNIX_ADDRS"
	EnvLogLevel       = "BOLAS_LOG_LEVEL"
	EnvSSHHost        = "SSH_HOST"
	EnvSSHPort        = "SSH_PORT"
	EnvSSHHostKey     = "SSH_HOST_KEY"
)

// Defaults applied when a variable is unset.
const (
	DefaultRefreshRateMS = 32
	DefaultTCPAddr       = "127.0.0.1:8080"
	DefaultLogLevel      = "info"
	DefaultSSHHost       = "::"
	DefaultSSHPort       = "2222"
	DefaultSSHHostKey    = ".ssh/bolas_host_key"
)

// MaxRefreshRateMS is the slowest tick period that still yields a velocity scaling factor of at least 1.
const MaxRefreshRateMS = 256

// ErrNoListeners is returned when neither TCP nor unix addresses are configured.
var ErrNoListeners = errors.New("no addresses provided")

// Settings is the process configuration.
type Settings struct {
	RefreshRateMS  int
	Algorithm      physics.Algorithm
	StaticFilePath string
	TCPAddrs       []string
	UnixAddrs      []string
	LogLevel       string
	SSHHost        string
	SSHPort        string
	SSHHostKey     string
}

// Load reads Settings from the environment and validates them.
// Every problem found is reported in the returned error.
func Load() (Settings, error) {
	var errs []error

	s := Settings{
		StaticFilePath: GetEnv(EnvStaticFilePath, ""),
		TCPAddrs:       GetEnvList(EnvTCPAddrs, []string{DefaultTCPAddr}),
		UnixAddrs:      GetEnvList(EnvUnixAddrs, nil),
		LogLevel:       GetEnv(EnvLogLevel, DefaultLogLevel),
		SSHHost:        GetEnv(EnvSSHHost, DefaultSSHHost),
		SSHPort:        GetEnv(EnvSSHPort, DefaultSSHPort),
		SSHHostKey:     GetEnv(EnvSSHHostKey, DefaultSSHHostKey),
	}

	refresh, err := strconv.Atoi(GetEnv(EnvRefreshRate, strconv.Itoa(DefaultRefreshRateMS)))
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", EnvRefreshRate, err))
	}
	s.RefreshRateMS = refresh

	alg, err := physics.ParseAlgorithm(GetEnv(EnvAlgorithm, ""))
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", EnvAlgorithm, err))
	}
	s.Algorithm = alg

	if len(errs) > 0 {
		return s, errors.Join(errs...)
	}
	return s, s.Validate()
}

// Validate checks value ranges. It does not require any listener; see ValidateListeners.
func (s Settings) Validate() error {
	var errs []error
	if s.RefreshRateMS < 1 || s.RefreshRateMS > MaxRefreshRateMS {
		errs = append(errs, fmt.Errorf("%s: %d is outside 1..%d", EnvRefreshRate, s.RefreshRateMS, MaxRefreshRateMS))
	}
	if _, err := physics.ParseAlgorithm(string(s.Algorithm)); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", EnvAlgorithm, err))
	}
	if _, err := log.ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", EnvLogLevel, err))
	}
	for _, addr := range s.TCPAddrs {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvTCPAddrs, err))
		}
	}
	return errors.Join(errs...)
}

// ValidateListeners fails with ErrNoListeners when there is nothing to serve on.
func (s Settings) ValidateListeners() error {
	if len(s.TCPAddrs) == 0 && len(s.UnixAddrs) == 0 {
		return ErrNoListeners
	}
	return nil
}

// RefreshRate returns the tick period.
func (s Settings) RefreshRate() time.Duration {
	return time.Duration(s.RefreshRateMS) * time.Millisecond
}

// VelocityScalingFactor maps a launch gesture to a per-tick velocity: 256 / refresh ms,
// using integer division. Faster ticks divide the gesture by more.
func (s Settings) VelocityScalingFactor() float64 {
	if s.RefreshRateMS <= 0 || s.RefreshRateMS > MaxRefreshRateMS {
		return 1
	}
	return float64(MaxRefreshRateMS / s.RefreshRateMS)
}

// SSHAddr joins the SSH host and port.
func (s Settings) SSHAddr() string {
	return net.JoinHostPort(s.SSHHost, s.SSHPort)
}
