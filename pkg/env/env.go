package env

import "os"

// Get reads an environment variable, treating empty the same as unset so a
// blank value in a .env file falls through to the fallback.
func Get(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
