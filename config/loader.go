package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/properties"
)

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	ReadEnv(path string) (map[string]string, error)
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadEnv parses a .env file without touching the process environment.
func (rfs *RealFileSystem) ReadEnv(path string) (map[string]string, error) {
	return godotenv.Read(path)
}

// Resolver handles finding and resolving config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles finds the config and env files for name.
// Returns explicit paths if provided, otherwise searches for them.
func (cr *Resolver) ResolveFiles(name string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = cr.find(configCandidates(name))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = cr.find(envCandidates(name))
	}
	return resolved
}

func (cr *Resolver) find(candidates []string) string {
	for _, path := range candidates {
		if cr.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

// configCandidates lists <name>.yml, <name>.yaml and <name>.json in the
// working directory and ./config, in that order.
func configCandidates(name string) []string {
	var out []string
	for _, dir := range []string{".", "./config"} {
		for _, ext := range []string{"yml", "yaml", "json"} {
			out = append(out, fmt.Sprintf("%s/%s.%s", dir, name, ext))
		}
	}
	return out
}

func envCandidates(name string) []string {
	return []string{
		fmt.Sprintf("./.env.%s", name),
		"./.env",
		"./config/.env",
	}
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	// Environ replaces os.Environ, mainly for tests.
	Environ []string
}

// LoaderOption is a functional option for the loaders.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnviron uses env instead of the process environment.
func WithEnviron(env []string) LoaderOption {
	return func(lc *LoaderConfig) { lc.Environ = env }
}

func newLoaderConfig(opts []LoaderOption) LoaderConfig {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}
	if lc.Environ == nil {
		lc.Environ = os.Environ()
	}
	return lc
}

// LoadProperties builds the system property layer for providerID. Keys come
// from the properties file (apikit.yml by default), then the .env file, then
// the environment; later sources win. File keys are used as written, e.g.
// "apikit.max-retries" or "acme.endpoint"; variables are mapped by
// properties.FromEnviron.
func LoadProperties(providerID string, opts ...LoaderOption) (map[string]string, error) {
	lc := newLoaderConfig(opts)
	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles("apikit", lc)

	out := make(map[string]string)
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v := viper.New()
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.Configuration("cannot read properties file %s", files.ConfigFile).WithCause(err)
		}
		for _, key := range v.AllKeys() {
			out[key] = v.GetString(key)
		}
	}

	env, err := readEnv(lc, files.EnvFile)
	if err != nil {
		return nil, err
	}
	for k, v := range properties.FromEnviron(append(env, lc.Environ...), providerID) {
		out[k] = v
	}
	return out, nil
}

// LoadConfig loads the tool configuration for name into cfg. It reads the
// config file, then binds environment variables and the .env file, and
// unmarshals the result into cfg.
func LoadConfig(name string, cfg interface{}, opts ...LoaderOption) error {
	lc := newLoaderConfig(opts)
	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles(name, lc)

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			logger.Warn("failed to load config file", logger.Fields("file", files.ConfigFile, logger.FieldError, err.Error()))
		}
	}

	env, err := readEnv(lc, files.EnvFile)
	if err != nil {
		logger.Warn("failed to load env file", logger.Fields("file", files.EnvFile, logger.FieldError, err.Error()))
	}
	bindEnvVars(v, append(env, lc.Environ...))

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for %s: %w", name, err)
	}
	return nil
}

// readEnv returns the .env entries as KEY=VALUE pairs in key order.
func readEnv(lc LoaderConfig, path string) ([]string, error) {
	if path == "" || !lc.FileSystem.Exists(path) {
		return nil, nil
	}
	vars, err := lc.FileSystem.ReadEnv(path)
	if err != nil {
		return nil, apperrors.Configuration("cannot read env file %s", path).WithCause(err)
	}
	out := make([]string, 0, len(vars))
	for k, v := range vars {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out, nil
}

// bindEnvVars binds environment variables to Viper by converting
// UPPER_CASE_WITH_UNDERSCORES to the possible nested key formats.
func bindEnvVars(v *viper.Viper, env []string) {
	for _, entry := range env {
		pair := strings.SplitN(entry, "=", 2)
		if len(pair) != 2 {
			continue
		}
		for _, variant := range generateEnvKeyVariants(pair[0]) {
			v.Set(variant, pair[1])
		}
	}
}

// generateEnvKeyVariants creates all possible key variants for environment variable binding.
// Examples:
//
//	APIKIT_LOGGING_LEVEL -> [apikit_logging_level, apikit.logging.level, apikit.logging_level, ...]
//	TELEMETRY_SAMPLE_RATE -> [telemetry_sample_rate, telemetry.sample.rate, telemetry.sample_rate, ...]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")

	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}

	// Progressive nesting: a.b_c_d, a.b.c_d, ...
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], ".")
		suffix := strings.Join(parts[i:], "_")
		variants = append(variants, prefix+"."+suffix)
	}

	return removeDuplicates(variants)
}

// removeDuplicates removes duplicate strings from a slice.
func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))

	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}

	return result
}
