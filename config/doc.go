// Package config loads httpkit configuration with Viper.
//
// LoadConfig reads a YAML file, found in the working directory, ./config or
// the user config directory unless given explicitly, then overlays
// environment variables that carry the service prefix. A .env file is
// loaded into the environment first when present (godotenv).
//
//	var cfg FileConfig
//	err := config.LoadConfig("httpkit", &cfg, config.WithConfigFile("httpkit.yml"))
//
// With the default prefix, HTTPKIT_HTTPCLIENT_TIMEOUT=2s sets
// httpclient.timeout.
package config
