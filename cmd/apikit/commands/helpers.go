package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/kbukum/apikit/catalog"
	"github.com/kbukum/apikit/config"
	"github.com/kbukum/apikit/rest"
)

// Output formats.
const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// toolConfigName is the base name of the tool config file (apikit-cli.yml).
// It differs from "apikit" so the properties file stays a separate concern.
const toolConfigName = "apikit-cli"

var (
	ErrCatalogRequired = errors.New("a catalog file is required (--catalog or catalog in the tool config)")
	ErrInvalidPair     = errors.New("expected key=value")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// loadToolConfig reads the tool config and lets set flags override it.
func loadToolConfig() (*config.ToolConfig, error) {
	cfg := &config.ToolConfig{}
	var opts []config.LoaderOption
	if file := viper.GetString("config"); file != "" {
		opts = append(opts, config.WithConfigFile(file))
	}
	if err := config.LoadConfig(toolConfigName, cfg, opts...); err != nil {
		return nil, err
	}

	overrideFromFlag(&cfg.Catalog, "catalog")
	overrideFromFlag(&cfg.Provider, "provider")
	overrideFromFlag(&cfg.Endpoint, "endpoint")
	overrideFromFlag(&cfg.Identity, "identity")
	overrideFromFlag(&cfg.Credential, "credential")

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideFromFlag(dst *string, key string) {
	if v := viper.GetString(key); v != "" {
		*dst = v
	}
}

func loadCatalog(cfg *config.ToolConfig) (catalog.Catalog, error) {
	if cfg.Catalog == "" {
		return catalog.Catalog{}, ErrCatalogRequired
	}
	return catalog.LoadFile(cfg.Catalog)
}

// parseArgs turns key=value pairs into call arguments. Repeated keys become
// multi-valued arguments.
func parseArgs(pairs []string) (rest.Args, error) {
	args := make(rest.Args, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q: %w", pair, ErrInvalidPair)
		}
		switch cur := args[key].(type) {
		case nil:
			args[key] = value
		case string:
			args[key] = []string{cur, value}
		case []string:
			args[key] = append(cur, value)
		}
	}
	return args, nil
}

// parseProperties turns key=value pairs into property overrides; the last
// value of a repeated key wins.
func parseProperties(pairs []string) (map[string]string, error) {
	props := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("property %q: %w", pair, ErrInvalidPair)
		}
		props[key] = value
	}
	return props, nil
}

func writeOutput(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "", OutputFormatJSON:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
