package config

// Default paths and values.
const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./catalog.db"

	// DefaultEnvFile is loaded before reading the environment, when present
	DefaultEnvFile = ".env"

	DefaultPort = 8188
)
