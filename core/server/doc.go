// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structure for server settings: the listen port, the
// API key guarding every route, and the admin user list used by the
// owner-or-admin checks on flags and notes.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server
// settings and by the claims feature to resolve admin privileges.
package server
