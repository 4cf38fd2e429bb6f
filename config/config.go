// Package config loads the askdb configuration file.
//
// Configuration lives in askdb.yaml (current directory, ~/.askdb/, or
// ~/.config/askdb/). It declares the named databases and LLM providers the
// assistant may target; every switch operation validates against these
// entries. ${VAR} placeholders anywhere in the file are resolved from the
// environment before parsing, so secrets can stay out of the file itself.
//
// Separated from cmd so that ai, db, ssh, core and the surfaces can depend
// on config without importing Cobra.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Default limits applied when the file leaves them unset.
const (
	DefaultSchemaCharBudget = 32000
	DefaultMaxTokens        = 4096
)

// DefaultIntentKeywords trigger execution of generated read-only SQL when
// they appear in the natural-language question (substring,
// case-insensitive). Overridable via intent_keywords in askdb.yaml.
var DefaultIntentKeywords = []string{
	"show me", "give me", "list", "how many",
	"what are", "display", "export", "fetch", "count",
}

// DatabaseConfig describes one named database connection.
type DatabaseConfig struct {
	Name     string    `yaml:"-"`
	Driver   string    `yaml:"driver"` // "postgres" (default) or "sqlite"
	Host     string    `yaml:"host"`
	Port     int       `yaml:"port"`
	Database string    `yaml:"name"`
	User     string    `yaml:"user"`
	Password string    `yaml:"password"`
	SSLMode  string    `yaml:"sslmode"`
	Path     string    `yaml:"path"` // sqlite file path
	SSH      SSHConfig `yaml:"ssh"`
}

// SSHConfig holds tunnel settings for reaching a database through a bastion.
type SSHConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	User          string `yaml:"user"`
	KeyPath       string `yaml:"key_path"`
	KeyPassphrase string `yaml:"key_passphrase"`
}

// DSN builds a pgx-compatible connection string. When an SSH tunnel is
// active the caller overrides Host/Port with the local tunnel endpoint.
func (c DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Database +
		" sslmode=" + c.SSLMode
}

// LLMConfig describes one named LLM provider entry.
type LLMConfig struct {
	Name        string  `yaml:"-"`
	Type        string  `yaml:"type"` // openai, azure, anthropic, gemini, ollama, placeholder
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"` // literal, ${ENV}, or keyring:<item>
	Endpoint    string  `yaml:"endpoint"`
	Deployment  string  `yaml:"deployment"` // azure only
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Config is the parsed askdb.yaml.
type Config struct {
	Databases       map[string]DatabaseConfig
	DefaultDatabase string
	LLMs            map[string]LLMConfig
	DefaultLLM      string

	IntentKeywords   []string
	SchemaCharBudget int
	ExportsDir       string
	CacheDir         string
	Clipboard        bool
}

// rawConfig mirrors the YAML layout before normalization.
type rawConfig struct {
	Databases struct {
		Default string                    `yaml:"default"`
		Entries map[string]DatabaseConfig `yaml:",inline"`
	} `yaml:"databases"`
	LLM struct {
		Default   string               `yaml:"default"`
		Providers map[string]LLMConfig `yaml:"providers"`
	} `yaml:"llm"`
	IntentKeywords   []string `yaml:"intent_keywords"`
	SchemaCharBudget int      `yaml:"schema_char_budget"`
	ExportsDir       string   `yaml:"exports_dir"`
	CacheDir         string   `yaml:"cache_dir"`
	Clipboard        *bool    `yaml:"clipboard"`
}

// HomeDir returns the askdb state directory (~/.askdb), creating it.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".askdb")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// findConfigFile checks the standard locations for askdb.yaml.
func findConfigFile() string {
	var locations []string
	if cwd, err := os.Getwd(); err == nil {
		locations = append(locations,
			filepath.Join(cwd, "askdb.yaml"),
			filepath.Join(cwd, ".askdb.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations,
			filepath.Join(home, ".askdb", "askdb.yaml"),
			filepath.Join(home, ".config", "askdb", "askdb.yaml"))
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// resolveEnvVars replaces ${VAR} with the environment value; unknown
// variables are left as-is so validation errors point at the placeholder.
func resolveEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := string(match[2 : len(match)-1])
		if val, ok := os.LookupEnv(name); ok {
			return []byte(val)
		}
		return match
	})
}

// Load reads the configuration file at path, or from the standard locations
// when path is empty. A missing file yields an empty (but usable) Config.
func Load(path string) (*Config, error) {
	if path == "" {
		path = findConfigFile()
	}

	cfg := &Config{
		Databases:        map[string]DatabaseConfig{},
		LLMs:             map[string]LLMConfig{},
		IntentKeywords:   DefaultIntentKeywords,
		SchemaCharBudget: DefaultSchemaCharBudget,
		Clipboard:        true,
	}
	if err := cfg.fillDefaultDirs(); err != nil {
		return nil, err
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.parse(resolveEnvVars(data)); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse loads configuration from raw YAML bytes (used by tests and by Load).
func Parse(data []byte) (*Config, error) {
	cfg := &Config{
		Databases:        map[string]DatabaseConfig{},
		LLMs:             map[string]LLMConfig{},
		IntentKeywords:   DefaultIntentKeywords,
		SchemaCharBudget: DefaultSchemaCharBudget,
		Clipboard:        true,
	}
	if err := cfg.fillDefaultDirs(); err != nil {
		return nil, err
	}
	if err := cfg.parse(resolveEnvVars(data)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fillDefaultDirs() error {
	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory: fall back to relative paths.
		c.ExportsDir = "exports"
		c.CacheDir = "schemas"
		return nil
	}
	c.ExportsDir = filepath.Join(home, ".askdb", "exports")
	c.CacheDir = filepath.Join(home, ".askdb", "schemas")
	return nil
}

func (c *Config) parse(data []byte) error {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}

	for name, dbCfg := range raw.Databases.Entries {
		dbCfg.Name = name
		if dbCfg.Driver == "" {
			dbCfg.Driver = "postgres"
		}
		if dbCfg.Host == "" {
			dbCfg.Host = "localhost"
		}
		if dbCfg.Port == 0 {
			dbCfg.Port = 5432
		}
		if dbCfg.Database == "" {
			dbCfg.Database = name
		}
		if dbCfg.SSLMode == "" {
			dbCfg.SSLMode = "disable"
		}
		if dbCfg.SSH.Enabled && dbCfg.SSH.Port == 0 {
			dbCfg.SSH.Port = 22
		}
		c.Databases[name] = dbCfg
	}

	for name, llmCfg := range raw.LLM.Providers {
		llmCfg.Name = name
		if llmCfg.Type == "" {
			llmCfg.Type = name
		}
		if llmCfg.MaxTokens == 0 {
			llmCfg.MaxTokens = DefaultMaxTokens
		}
		c.LLMs[name] = llmCfg
	}

	c.DefaultDatabase = raw.Databases.Default
	if c.DefaultDatabase == "" && len(c.Databases) > 0 {
		c.DefaultDatabase = c.ListDatabases()[0]
	}
	c.DefaultLLM = raw.LLM.Default
	if c.DefaultLLM == "" && len(c.LLMs) > 0 {
		c.DefaultLLM = c.ListLLMs()[0]
	}

	if len(raw.IntentKeywords) > 0 {
		c.IntentKeywords = raw.IntentKeywords
	}
	if raw.SchemaCharBudget > 0 {
		c.SchemaCharBudget = raw.SchemaCharBudget
	}
	if raw.ExportsDir != "" {
		c.ExportsDir = raw.ExportsDir
	}
	if raw.CacheDir != "" {
		c.CacheDir = raw.CacheDir
	}
	if raw.Clipboard != nil {
		c.Clipboard = *raw.Clipboard
	}
	return nil
}

// GetDatabase looks up a database entry by name.
func (c *Config) GetDatabase(name string) (DatabaseConfig, bool) {
	dbCfg, ok := c.Databases[name]
	return dbCfg, ok
}

// GetLLM looks up an LLM provider entry by name.
func (c *Config) GetLLM(name string) (LLMConfig, bool) {
	llmCfg, ok := c.LLMs[name]
	return llmCfg, ok
}

// ListDatabases returns configured database names, sorted.
func (c *Config) ListDatabases() []string {
	names := make([]string, 0, len(c.Databases))
	for name := range c.Databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListLLMs returns configured LLM provider names, sorted.
func (c *Config) ListLLMs() []string {
	names := make([]string, 0, len(c.LLMs))
	for name := range c.LLMs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
