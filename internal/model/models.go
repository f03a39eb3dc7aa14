package model

import (
	"fmt"
	"strings"
)

// SourceSpec describes where the monthly files live
type SourceSpec struct {
	BaseURL  string `yaml:"baseURL" json:"baseURL"`   // e.g. https://d37ci6vzurychx.cloudfront.net/trip-data or s3://bucket/prefix
	Prefix   string `yaml:"prefix" json:"prefix"`     // e.g. yellow_tripdata
	Ext      string `yaml:"ext" json:"ext"`           // only parquet is supported
	S3Region string `yaml:"s3Region" json:"s3Region"` // used for s3:// sources
}

// DatabaseSpec defines the destination datastore
type DatabaseSpec struct {
	Driver string `yaml:"driver" json:"driver"` // postgres, sqlite3
	URL    string `yaml:"url" json:"-"`
	Table  string `yaml:"table" json:"table"`
}

// JobSpec is the immutable configuration of one loader run
type JobSpec struct {
	Year            string       `yaml:"year" json:"year"`
	Months          []string     `yaml:"months" json:"months"`
	SampleCap       int          `yaml:"sampleSize" json:"sampleSize"`
	Seed            int64        `yaml:"seed" json:"seed"`
	SeedPerMonth    bool         `yaml:"seedPerMonth" json:"seedPerMonth"`
	Source          SourceSpec   `yaml:"source" json:"source"`
	Database        DatabaseSpec `yaml:"database" json:"database"`
	ScratchDir      string       `yaml:"scratchDir" json:"scratchDir"`
	HTTPTimeout     string       `yaml:"httpTimeout" json:"httpTimeout"` // e.g. "10m"
	MetricsTextfile string       `yaml:"metricsTextfile" json:"metricsTextfile"`
	Ledger          bool         `yaml:"ledger" json:"ledger"`
}

// FileName is the deterministic scratch/remote file name for a month.
func (j JobSpec) FileName(month string) string {
	return fmt.Sprintf("%s_%s-%s.%s", j.Source.Prefix, j.Year, month, j.Source.Ext)
}

// SourceURL builds the download URL for a month.
func (j JobSpec) SourceURL(month string) string {
	return strings.TrimRight(j.Source.BaseURL, "/") + "/" + j.FileName(month)
}

// SeedFor returns the sampling seed used for a month.
func (j JobSpec) SeedFor(month string) int64 {
	if !j.SeedPerMonth {
		return j.Seed
	}
	var n int64
	fmt.Sscanf(month, "%d", &n)
	return j.Seed + n
}

// ServerSpec configures the read API
type ServerSpec struct {
	Addr     string
	Database DatabaseSpec
}
