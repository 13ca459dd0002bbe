package utils

import (
	"os"
	"strconv"

	"github.com/google/uuid"
)

// GetEnvVariable reads an environment variable with a fallback.
func GetEnvVariable(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvVariableInt reads an integer environment variable with a
// fallback. Unparseable values fall back too.
func GetEnvVariableInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// ParseStringToUUID parses s, returning uuid.Nil on any failure.
func ParseStringToUUID(s string) uuid.UUID {
	uid, err := uuid.Parse(s)
	if err != nil || s == "" {
		return uuid.Nil
	}
	return uid
}

// IsValidUUID checks UUID string format.
func IsValidUUID(u string) bool {
	_, err := uuid.Parse(u)
	return err == nil && len(u) == 36
}
