// Package config loads the dashboard configuration.
//
// Values are resolved in three layers, later layers winning:
//
//  1. Default()
//  2. a YAML file (PENYUSUTAN_CONFIG_FILE, ./config.yaml or ./configs/config.yaml)
//  3. environment variables, optionally seeded from a .env file
//
// Environment variables are namespaced with PENYUSUTAN and follow the struct
// nesting:
//
//	PENYUSUTAN_SERVER_PORT=8080
//	PENYUSUTAN_UPLOAD_MAX_BYTES=33554432
//	PENYUSUTAN_DASHBOARD_TOP_N=10
//	PENYUSUTAN_LOGGING_LEVEL=debug
package config
