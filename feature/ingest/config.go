package ingest

import "path/filepath"

// Config holds configuration for the ingestion pipeline.
type Config struct {
	// DataDir is the directory holding the source CSV files.
	DataDir string `mapstructure:"data_dir" default:"Data"`
	// ClaimListFile is the claim list file name inside DataDir.
	ClaimListFile string `mapstructure:"claim_list_file" default:"claim_list_data.csv"`
	// ClaimDetailFile is the claim detail file name inside DataDir.
	ClaimDetailFile string `mapstructure:"claim_detail_file" default:"claim_detail_data.csv"`
	// MonitorIntervalSeconds is the background check interval. Zero disables
	// the background monitor; reloads then only run via API or CLI.
	MonitorIntervalSeconds int `mapstructure:"monitor_interval_seconds" default:"0"`
}

// ClaimListPath returns the full path of the claim list file.
func (c Config) ClaimListPath() string {
	return filepath.Join(c.DataDir, c.ClaimListFile)
}

// ClaimDetailPath returns the full path of the claim detail file.
func (c Config) ClaimDetailPath() string {
	return filepath.Join(c.DataDir, c.ClaimDetailFile)
}
