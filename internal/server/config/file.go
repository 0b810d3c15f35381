package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/filesmanager/internal/flagx"
	"github.com/dmitrijs2005/filesmanager/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. Durations accept
// "24h"-style strings or integer nanoseconds. Only fields present in the
// file override the current values.
type FileConfig struct {
	EndpointAddrHTTP     string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC     string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN          string         `json:"database_dsn" yaml:"database_dsn"`
	SessionTTL           timex.Duration `json:"session_ttl" yaml:"session_ttl"`
	StoreTimeout         timex.Duration `json:"store_timeout" yaml:"store_timeout"`
	StorageBackend       string         `json:"storage_backend" yaml:"storage_backend"`
	FolderPath           string         `json:"folder_path" yaml:"folder_path"`
	S3RootUser           string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword       string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket             string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region             string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint       string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	ThumbnailWorkers     int            `json:"thumbnail_workers" yaml:"thumbnail_workers"`
	ThumbnailSizes       []int          `json:"thumbnail_sizes" yaml:"thumbnail_sizes"`
	ThumbnailMaxPixels   int64          `json:"thumbnail_max_pixels" yaml:"thumbnail_max_pixels"`
	JobPollInterval      timex.Duration `json:"job_poll_interval" yaml:"job_poll_interval"`
	SessionPurgeInterval timex.Duration `json:"session_purge_interval" yaml:"session_purge_interval"`
	LogLevel             string         `json:"log_level" yaml:"log_level"`
	LogJSON              *bool          `json:"log_json" yaml:"log_json"`
}

// parseFile overlays config with the file named by -c/-config, if any.
// Files ending in .yaml or .yml are decoded as YAML, anything else as JSON.
// Read or decode errors panic, matching flag handling.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	b, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, fc)
	default:
		err = json.Unmarshal(b, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&c.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.StorageBackend, fc.StorageBackend)
	setString(&c.FolderPath, fc.FolderPath)
	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&c.LogLevel, fc.LogLevel)

	if fc.SessionTTL.Duration > 0 {
		c.SessionTTL = fc.SessionTTL.Duration
	}
	if fc.StoreTimeout.Duration > 0 {
		c.StoreTimeout = fc.StoreTimeout.Duration
	}
	if fc.JobPollInterval.Duration > 0 {
		c.JobPollInterval = fc.JobPollInterval.Duration
	}
	if fc.SessionPurgeInterval.Duration > 0 {
		c.SessionPurgeInterval = fc.SessionPurgeInterval.Duration
	}
	if fc.ThumbnailWorkers > 0 {
		c.ThumbnailWorkers = fc.ThumbnailWorkers
	}
	if fc.ThumbnailMaxPixels > 0 {
		c.ThumbnailMaxPixels = fc.ThumbnailMaxPixels
	}
	if len(fc.ThumbnailSizes) > 0 {
		c.ThumbnailSizes = append([]int(nil), fc.ThumbnailSizes...)
	}
	if fc.LogJSON != nil {
		c.LogJSON = *fc.LogJSON
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
