package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/fleetworks/courier-agent/internal/agent/client"
	"github.com/fleetworks/courier-agent/internal/agent/fileio"
)

const (
	// name of the file which stores the driver's session identity
	SessionFile = "session.json"
	// name of the file in which the platform location service records the
	// latest position fix
	PositionFile = "position.json"
	// DefaultRefreshInterval is the default interval between two job list refreshes
	DefaultRefreshInterval = time.Duration(60 * time.Second)
	// DefaultConfigDir is the default directory where the agent's configuration is stored
	DefaultConfigDir = "/etc/courier"
	// DefaultConfigFile is the default path to the agent's configuration file
	DefaultConfigFile = DefaultConfigDir + "/config.yaml"
	// DefaultDataDir is the default directory where the agent's data is stored
	DefaultDataDir = ".courier-agent/data"
	// DefaultDispatchEndpoint is the default address of the dispatch server
	DefaultDispatchEndpoint = "https://localhost:8443"
	// DefaultPositionMaxAge is how old a recorded position fix may be
	// before it is treated as unavailable
	DefaultPositionMaxAge = time.Duration(5 * time.Minute)
)

// Credentials is the driver's session identity as persisted by the sign-in
// collaborator. Only the display name is consumed here, as the CreatedBy
// fallback on submitted status updates.
type Credentials struct {
	DriverName string `json:"driverName"`
	Token      string `json:"token"`
}

type Config struct {
	// ConfigDir is the directory where the agent's configuration is stored
	ConfigDir string `json:"config-dir"`
	// DataDir is the directory where the agent's data is stored
	DataDir string `json:"data-dir"`

	// DriverID is the driver whose jobs this agent tracks
	DriverID int64 `json:"driver-id"`

	// DispatchService is the client configuration for connecting to the dispatch server
	DispatchService DispatchService `json:"dispatch-service,omitempty"`

	// RefreshInterval is the interval between two job list refreshes
	RefreshInterval Duration `json:"refresh-interval,omitempty"`

	// PositionMaxAge is the maximum age of a recorded position fix
	PositionMaxAge Duration `json:"position-max-age,omitempty"`

	// LogLevel is the level of logging. can be: "panic", "fatal", "error",
	// "warn"/"warning", "info", "debug"; any other will be treated as "info"
	LogLevel string `json:"log-level,omitempty"`

	reader *fileio.Reader
}

type DispatchService struct {
	client.Config
}

func (s *DispatchService) Equal(s2 *DispatchService) bool {
	if s == s2 {
		return true
	}
	return s.Config.Equal(&s2.Config)
}

func NewDefault() *Config {
	endpoint := DefaultDispatchEndpoint
	// Override with environment variable if set when running locally
	if envEndpoint := os.Getenv("COURIER_DISPATCH_ENDPOINT"); envEndpoint != "" {
		endpoint = envEndpoint
	}

	c := &Config{
		ConfigDir:       DefaultConfigDir,
		DataDir:         DefaultDataDir,
		DispatchService: DispatchService{Config: client.Config{Service: client.Service{Server: endpoint}}},
		RefreshInterval: Duration{Duration: DefaultRefreshInterval},
		PositionMaxAge:  Duration{Duration: DefaultPositionMaxAge},
		reader:          fileio.NewReader(),
		LogLevel:        "info",
	}

	return c
}

// Validate checks that the required fields are set and that the paths exist.
func (cfg *Config) Validate() error {
	if err := cfg.DispatchService.Validate(); err != nil {
		return err
	}
	if cfg.DriverID <= 0 {
		return fmt.Errorf("driver-id is required")
	}

	requiredFields := []struct {
		value     string
		name      string
		checkPath bool
	}{
		{cfg.DataDir, "data-dir", true},
	}

	for _, field := range requiredFields {
		if field.value == "" {
			return fmt.Errorf("%s is required", field.name)
		}
		if field.checkPath {
			if err := cfg.reader.CheckPathExists(field.value); err != nil {
				return fmt.Errorf("%s: %w", field.name, err)
			}
		}
	}

	return nil
}

// ParseConfigFile reads the config file and unmarshals it into the Config struct
func (cfg *Config) ParseConfigFile(cfgFile string) error {
	contents, err := cfg.reader.ReadFile(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config file: %w", err)
	}
	return nil
}

func (cfg *Config) String() string {
	contents, err := json.Marshal(cfg)
	if err != nil {
		return "<error>"
	}
	return string(contents)
}

// CreateDataDir resolves the data dir under the user's home directory and
// creates it if needed.
func (cfg *Config) CreateDataDir() error {
	if filepath.IsAbs(cfg.DataDir) {
		return os.MkdirAll(cfg.DataDir, 0o755)
	}

	base, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("error getting user home directory: %v", err)
	}
	cfg.DataDir = filepath.Join(base, cfg.DataDir)
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", cfg.DataDir, err)
	}
	return nil
}

// LoadCredentials reads the session identity from the data dir. A missing
// session file is not an error; the engine falls back to a generic identity.
func (cfg *Config) LoadCredentials() (*Credentials, error) {
	reader := fileio.NewReader()
	path := filepath.Join(cfg.DataDir, SessionFile)
	if err := reader.CheckPathExists(path); err != nil {
		return &Credentials{}, nil
	}
	contents, err := reader.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	creds := &Credentials{}
	if err := json.Unmarshal(contents, creds); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return creds, nil
}
