// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a dotenv file and the
// process environment. The file supplies defaults for local runs; real
// environment variables always win so deployments can inject secrets
// without touching disk.
//
// Recognized keys: NCBI_EMAIL, NCBI_API_KEY, SILICONFLOW_API_KEY.
package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment keys for the credentials the tools need.
const (
	EnvEmail          = "NCBI_EMAIL"
	EnvNCBIKey        = "NCBI_API_KEY"
	EnvSiliconFlowKey = "SILICONFLOW_API_KEY"
)

// DefaultFile is the dotenv file consulted when no path is configured.
const DefaultFile = ".env"

// Load reads the dotenv file at path and returns its key/value pairs
// with empty values dropped. A missing file is not an error; Load
// returns an empty map so the process environment alone can supply
// every secret.
func Load(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets file %s: %w", path, err)
	}

	secrets := make(map[string]string, len(values))
	for key, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			secrets[key] = value
		}
	}
	return secrets, nil
}

// Resolve returns the value for key, preferring the process environment
// over the loaded file values. Missing everywhere resolves to "".
func Resolve(key string, fromFile map[string]string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fromFile[key]
}
