// Package config loads, validates, and normalizes NestVision configuration.
//
// Configuration comes from a TOML file (default ~/.config/nestvision/config.toml,
// or nestvision.toml in the working directory). Defaults are safe for local
// use; only the feed token has no usable default. All path fields are expanded
// (~ and relative segments) before the config is handed to other packages.
package config
