// Package config holds runtime configuration for the AuthKeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given by --config (see (*Config).LoadJSON).
//  3. Command-line flags --addr and --timeout, which override earlier values.
//
// # JSON schema
//
// Durations are timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "10s"
//	}
package config
