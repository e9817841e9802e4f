// Package config loads typed configuration for restkit binaries.
//
// Values come from a YAML file, then a .env file, then the process
// environment, and are decoded into a struct with Viper. Files are searched
// for in the usual places (./cmd/<service>/config.yml, ./config/config.yml,
// ./config.yml and matching .env files) unless given explicitly.
//
//	var cfg config.DemoConfig
//	if err := config.LoadConfig("restdemo", &cfg, config.WithEnvPrefix("RESTDEMO")); err != nil {
//		return err
//	}
//	cfg.ApplyDefaults()
//
// Environment keys map onto nested fields by treating underscores as either
// separators or part of a field name, so RESTDEMO_CLIENT_BASE_URL sets
// client.base_url.
package config
