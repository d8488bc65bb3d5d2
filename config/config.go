package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/pkg/paths"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// configNames are searched in order in each directory.
var configNames = []string{
	"sigscope.yml",
	"sigscope.yaml",
	".sigscope.yml",
	".sigscope.yaml",
	"sigscope.toml",
}

// Load reads and parses a single configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	return LoadFromBytes(data, formatOf(path))
}

// LoadDefault finds and loads the configuration starting from the current
// directory:
// 1. Global config ($XDG_CONFIG_HOME/sigscope/sigscope.yml) - base layer
// 2. Project config (sigscope.yml) - overrides global
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}

	return LoadFrom(cwd)
}

// LoadOrDefault behaves like LoadFrom but returns the defaults when no
// configuration file exists anywhere.
func LoadOrDefault(startDir string) (*Config, error) {
	cfg, err := LoadFrom(startDir)
	if errors.Is(err, errors.ErrCodeConfigNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFrom loads configuration with hierarchical merging starting from the given directory
func LoadFrom(startDir string) (*Config, error) {
	return LoadFromWithLogger(startDir, logrus.New())
}

// LoadFromWithLogger loads configuration with hierarchical merging and logging
func LoadFromWithLogger(startDir string, logger *logrus.Logger) (*Config, error) {
	projectPath := findProjectConfig(startDir)
	globalPath := findGlobalConfig()
	if projectPath == "" && globalPath == "" {
		return nil, errors.ConfigNotFound(startDir).WithDetail("searchPath", startDir)
	}

	if projectPath != "" {
		loadDotEnv(filepath.Dir(projectPath), logger)
	}

	var finalConfig *Config

	// 1. Global config is optional and never fatal
	if globalPath != "" {
		logger.WithField("path", globalPath).Debug("Loading global configuration")
		globalConfig, err := readRaw(globalPath)
		if err == nil {
			finalConfig = globalConfig
		} else {
			logger.WithError(err).Warn("Failed to parse global configuration, continuing without it")
		}
	}

	// 2. Project config overrides global
	if projectPath != "" {
		logger.WithField("path", projectPath).Debug("Loading project configuration")
		projectConfig, err := readRaw(projectPath)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse project config").
				WithDetail("path", projectPath)
		}
		if finalConfig == nil {
			finalConfig = projectConfig
		} else {
			logger.Debug("Merging project configuration over global configuration")
			finalConfig = mergeConfigs(finalConfig, projectConfig)
		}
	}

	if finalConfig == nil {
		return nil, errors.ConfigNotFound(startDir)
	}

	if err := finalize(finalConfig); err != nil {
		return nil, err
	}

	logger.Debug("Configuration loaded and validated successfully")
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		if configData, err := yaml.Marshal(finalConfig); err == nil {
			logger.Debugf("Merged configuration:\n%s", string(configData))
		}
	}

	return finalConfig, nil
}

// LoadFromBytes parses, defaults and validates configuration. Format is
// "yaml" or "toml".
func LoadFromBytes(data []byte, format string) (*Config, error) {
	config, err := decode(data, format)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse configuration").
			WithDetail("format", format)
	}
	if err := finalize(config); err != nil {
		return nil, err
	}
	return config, nil
}

func finalize(config *Config) error {
	validator, err := NewSchemaValidator()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create validator")
	}
	if err := validator.Validate(config); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "schema validation failed")
	}

	config.SetDefaults()
	config.expandPaths()

	return config.Validate()
}

func readRaw(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(data, formatOf(path))
}

func decode(data []byte, format string) (*Config, error) {
	expanded := []byte(expandEnvVars(string(data)))

	var config Config
	if format != "toml" {
		if err := yaml.Unmarshal(expanded, &config); err != nil {
			return nil, err
		}
		return &config, nil
	}

	if err := toml.Unmarshal(expanded, &config); err != nil {
		return nil, err
	}
	// TOML has no inline capture, so unknown tables are collected by hand.
	var raw map[string]interface{}
	if err := toml.Unmarshal(expanded, &raw); err != nil {
		return nil, err
	}
	for key, value := range raw {
		if knownKeys[key] {
			continue
		}
		if config.Extensions == nil {
			config.Extensions = make(map[string]interface{})
		}
		config.Extensions[key] = value
	}
	return &config, nil
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}

// FindConfigFile searches for a configuration file with the following precedence:
// 1. Current directory up to filesystem root
// 2. Global config directory ($XDG_CONFIG_HOME/sigscope)
func FindConfigFile(startDir string) (string, error) {
	if path := findProjectConfig(startDir); path != "" {
		return path, nil
	}
	if path := findGlobalConfig(); path != "" {
		return path, nil
	}
	return "", errors.ConfigNotFound(startDir).WithDetail("searchPath", startDir)
}

func findProjectConfig(startDir string) string {
	dir := startDir
	for {
		if path := firstExisting(dir); path != "" {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func findGlobalConfig() string {
	dir := paths.ConfigDir()
	if dir == "" {
		return ""
	}
	return firstExisting(dir)
}

func firstExisting(dir string) string {
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// loadDotEnv loads a .env file next to the project config. Variables already
// set in the environment win.
func loadDotEnv(dir string, logger *logrus.Logger) {
	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); err != nil {
		return
	}
	if err := godotenv.Load(envPath); err != nil {
		logger.WithError(err).WithField("path", envPath).Warn("Failed to load .env file")
	}
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}
