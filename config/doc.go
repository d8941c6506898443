// Package config loads CosmoGraph settings.
//
// Values are layered, later sources overriding earlier ones:
//
//  1. Default()
//  2. a TOML (.toml) or YAML (.yaml, .yml) file
//  3. a .env file, whose entries never replace variables already set
//  4. COSMOGRAPH_* environment variables, plus OPENAI_API_KEY
//
// Validate reports configuration errors before any work starts.
package config
