package server

import "strings"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// AdminUsers is a comma-separated list of usernames allowed to manage
	// any flag or note, not just their own.
	AdminUsers string `mapstructure:"admin_users" default:""`
}

// AdminList returns the configured admin usernames.
func (c Config) AdminList() []string {
	if c.AdminUsers == "" {
		return nil
	}
	parts := strings.Split(c.AdminUsers, ",")
	admins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			admins = append(admins, p)
		}
	}
	return admins
}

// IsAdmin checks whether the username is in the admin list.
func (c Config) IsAdmin(username string) bool {
	for _, admin := range c.AdminList() {
		if admin == username {
			return true
		}
	}
	return false
}
