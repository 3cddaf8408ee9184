package helpers

import (
	"os"
	"strconv"
)

// GetEnv returns the value of key, or fallback when it is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// FirstEnv returns the first non-empty value among keys.
func FirstEnv(keys ...string) string {
	for _, key := range keys {
		if value := GetEnv(key, ""); value != "" {
			return value
		}
	}
	return ""
}

// GetEnvInt parses the first non-empty value among keys as an integer, returning 0 when absent or malformed.
func GetEnvInt(keys ...string) int {
	parsed, err := strconv.Atoi(FirstEnv(keys...))
	if err != nil {
		return 0
	}
	return parsed
}
