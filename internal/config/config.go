package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/rail44/roster/internal/gateway"
	"github.com/rail44/roster/internal/row"
	"github.com/rail44/roster/internal/schema"
)

// FileName is the config file looked up from the working directory upward.
const FileName = "roster.toml"

// DefaultEndpoint is the public mock service.
const DefaultEndpoint = "https://jsonplaceholder.typicode.com"

// Config represents the complete configuration for roster
type Config struct {
	Endpoint     string `toml:"endpoint" validate:"required,http_url"`
	Resource     string `toml:"resource" validate:"omitempty,excludesall=?#"`
	LogLevel     string `toml:"log_level" validate:"omitempty,oneof=error warn info debug"`
	MaxCellWidth int    `toml:"max_cell_width" validate:"gte=0"`
	ModifyName   string `toml:"modify_name"`

	Create CreateConfig `toml:"create"`

	// Columns overrides the default user table layout
	Columns []schema.ColumnSpec `toml:"columns"`

	Plain bool `toml:"-"` // CLI flag, not from config file

	// path of the file this config was read from; empty for defaults
	path string
}

// CreateConfig configures the "Add User" action
type CreateConfig struct {
	// Payload is a JSON file holding the record to post
	Payload string `toml:"payload"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the configuration used when no file is found
func Default() *Config {
	return &Config{
		Endpoint:     DefaultEndpoint,
		Resource:     "users",
		LogLevel:     "info",
		MaxCellWidth: 32,
		ModifyName:   gateway.DefaultModifyName,
	}
}

// Load looks for roster.toml starting from startPath. Defaults are returned
// when no file exists anywhere up the tree.
func Load(startPath string) (*Config, error) {
	configPath, err := findConfigFile(startPath)
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	return LoadFile(configPath)
}

// LoadFile reads the config at path on top of the defaults
func LoadFile(configPath string) (*Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if _, err := toml.Decode(string(configData), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.path = configPath

	cfg.Endpoint = expandEnvVars(cfg.Endpoint)
	if cfg.Create.Payload != "" {
		cfg.Create.Payload = normalizePath(expandEnvVars(cfg.Create.Payload), filepath.Dir(configPath))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file the config was read from, or "" for defaults
func (c *Config) Path() string {
	return c.path
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if strings.Contains(c.Endpoint, "${") {
		re := regexp.MustCompile(`\$\{([^}]+)\}`)
		if m := re.FindStringSubmatch(c.Endpoint); len(m) > 1 {
			return fmt.Errorf("environment variable %s is not set (required by endpoint in %s)", m[1], FileName)
		}
	}

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q", fieldName(fe.StructField()), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
}

// Schema compiles the configured columns, falling back to the user layout
func (c *Config) Schema() (*schema.Schema, error) {
	specs := c.Columns
	if len(specs) == 0 {
		specs = schema.UserColumns()
	}
	s, err := schema.Compile(specs)
	if err != nil {
		return nil, fmt.Errorf("invalid columns: %w", err)
	}
	return s, nil
}

// CreatePayload returns the record "Add User" posts
func (c *Config) CreatePayload() (row.Row, error) {
	if c.Create.Payload == "" {
		return gateway.DefaultNewUser(), nil
	}
	data, err := os.ReadFile(c.Create.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to read create payload: %w", err)
	}
	r, err := row.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse create payload %s: %w", c.Create.Payload, err)
	}
	return r, nil
}

// findConfigFile searches for roster.toml starting from the given path.
// It returns "" without error when none exists.
func findConfigFile(startPath string) (string, error) {
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	// If startPath is a file, start from its directory
	info, err := os.Stat(absPath)
	if err == nil && !info.IsDir() {
		absPath = filepath.Dir(absPath)
	}

	currentDir := absPath
	for {
		configPath := filepath.Join(currentDir, FileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", nil
		}
		currentDir = parentDir
	}
}

// expandEnvVars expands ${VAR_NAME} environment variables in the string
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]

		value := os.Getenv(varName)
		if value == "" {
			// Unset variables stay literal so validation can name them
			return match
		}
		return value
	})
}

// normalizePath converts relative paths to absolute paths based on config file location
func normalizePath(path, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(configDir, path)
}

func fieldName(structField string) string {
	switch structField {
	case "Endpoint":
		return "endpoint"
	case "Resource":
		return "resource"
	case "LogLevel":
		return "log_level"
	case "MaxCellWidth":
		return "max_cell_width"
	default:
		return structField
	}
}
