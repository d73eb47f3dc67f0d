// Package config loads the client configuration file.
//
// The file is TOML. Missing keys keep their defaults, and a missing file
// yields the defaults unchanged, so the client works against a stock
// window manager install with no configuration at all.
package config
