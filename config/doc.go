// Package config loads configuration from files and the environment.
//
// LoadProperties builds the system property layer: a YAML or JSON
// properties file (apikit.yml by default), a .env file and the process
// environment, later sources winning. Variables are mapped the way
// properties.FromEnviron does, so APIKIT_MAX_RETRIES becomes
// apikit.max-retries.
//
//	system, err := config.LoadProperties("acme")
//	ctx, err := engine.ForProvider(acme).System(system).Build(context.Background())
//
// LoadConfig unmarshals the command line tool configuration with Viper.
package config
