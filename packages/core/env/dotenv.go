package env

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv parses a .env file and returns key-value pairs.
// Supports KEY=value, quoted values, export prefixes, # comments and ${VAR} expansion.
// Note: This does NOT export to OS environment. Use LoadAndExportDotEnv if you
// need {{$VAR}} placeholders to see the file's values.
func LoadDotEnv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read env file: %w", err)
	}
	return vars, nil
}

// LoadAndExportDotEnv parses a .env file, returns key-value pairs,
// and exports them to the OS environment.
// Variables are only exported if not already set in the OS environment.
func LoadAndExportDotEnv(path string) (map[string]string, error) {
	vars, err := LoadDotEnv(path)
	if err != nil {
		return nil, err
	}

	for k, v := range vars {
		if _, ok := os.LookupEnv(k); !ok {
			_ = os.Setenv(k, v) // Error ignored: only fails for invalid key names
		}
	}

	return vars, nil
}
