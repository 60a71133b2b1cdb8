// Package config provides configuration management for the claims tracker.
//
// It utilizes Viper for loading configuration from environment variables
// and a .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, admin users)
//   - Database: MySQL/SQLite connection details
//   - Ingest: source data directory and file names, monitor interval
//   - Cache: snapshot cache backend (memory or redis)
//   - Storage: S3/MinIO credentials and bucket settings for remote source files
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
