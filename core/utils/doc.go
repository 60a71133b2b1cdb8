// Package utils provides common utility functions for the claims tracker.
// It includes helper functions for string sanitization and other shared
// logic that doesn't fit into domain-specific packages.
package utils
