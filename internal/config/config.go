package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"nyc-trip-loader/internal/model"
	"nyc-trip-loader/internal/store"
	"nyc-trip-loader/pkg/utils"
)

var ErrInvalid = errors.New("invalid configuration")

var (
	yearPattern  = regexp.MustCompile(`^[0-9]{4}$`)
	monthPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
)

// Default returns the job configuration used when nothing overrides it.
func Default() model.JobSpec {
	return model.JobSpec{
		Year:      "2024",
		Months:    []string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12"},
		SampleCap: 200000,
		Seed:      42,
		Source: model.SourceSpec{
			BaseURL:  "https://d37ci6vzurychx.cloudfront.net/trip-data",
			Prefix:   "yellow_tripdata",
			Ext:      "parquet",
			S3Region: "us-east-1",
		},
		Database: model.DatabaseSpec{
			Table: "trips",
		},
		ScratchDir:  ".",
		HTTPTimeout: "10m",
		Ledger:      true,
	}
}

// Load builds the loader configuration from defaults, an optional YAML file,
// the environment and finally command-line flags, each overriding the last.
func Load(args []string, getenv func(string) string) (*model.JobSpec, error) {
	spec := Default()

	fs := flag.NewFlagSet("tripload", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to YAML config file (env TRIPLOAD_CONFIG)")
	year := fs.String("year", "", "Year of the monthly files")
	months := fs.String("months", "", "Comma separated months to load, e.g. 01,02")
	sampleSize := fs.Int("sample-size", 0, "Maximum rows kept per month")
	seed := fs.Int64("seed", 0, "Sampling seed")
	seedPerMonth := fs.Bool("seed-per-month", false, "Derive a distinct seed for every month")
	baseURL := fs.String("source", "", "Base URL of the monthly files (http(s):// or s3://)")
	dbURL := fs.String("database-url", "", "Destination database connection string")
	table := fs.String("table", "", "Destination table")
	scratch := fs.String("scratch-dir", "", "Directory for downloaded files")
	metrics := fs.String("metrics-textfile", "", "Write run metrics to this file")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	path := *configPath
	if path == "" {
		path = getenv("TRIPLOAD_CONFIG")
	}
	if path != "" {
		if err := loadFile(path, getenv, &spec); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&spec, getenv); err != nil {
		return nil, err
	}

	// Only flags given on the command line override.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "year":
			spec.Year = *year
		case "months":
			spec.Months = utils.SplitList(*months)
		case "sample-size":
			spec.SampleCap = *sampleSize
		case "seed":
			spec.Seed = *seed
		case "seed-per-month":
			spec.SeedPerMonth = *seedPerMonth
		case "source":
			spec.Source.BaseURL = *baseURL
		case "database-url":
			spec.Database.URL = *dbURL
		case "table":
			spec.Database.Table = *table
		case "scratch-dir":
			spec.ScratchDir = *scratch
		case "metrics-textfile":
			spec.MetricsTextfile = *metrics
		}
	})

	if spec.Database.Driver == "" && spec.Database.URL != "" {
		spec.Database.Driver = store.InferDriver(spec.Database.URL)
	}

	if err := Validate(spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// loadFile reads a YAML config file. ${VAR} references are expanded first.
func loadFile(path string, getenv func(string) string, spec *model.JobSpec) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	expanded := os.Expand(string(data), getenv)
	if err := yaml.Unmarshal([]byte(expanded), spec); err != nil {
		return fmt.Errorf("%w: failed to parse config %s: %v", ErrInvalid, path, err)
	}
	return nil
}

func applyEnv(spec *model.JobSpec, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str("TRIPLOAD_YEAR", &spec.Year)
	str("TRIPLOAD_SOURCE_BASE_URL", &spec.Source.BaseURL)
	str("TRIPLOAD_FILE_PREFIX", &spec.Source.Prefix)
	str("TRIPLOAD_FILE_EXT", &spec.Source.Ext)
	str("TRIPLOAD_S3_REGION", &spec.Source.S3Region)
	str("TRIPLOAD_SCRATCH_DIR", &spec.ScratchDir)
	str("TRIPLOAD_TABLE", &spec.Database.Table)
	str("DATABASE_DRIVER", &spec.Database.Driver)
	str("DATABASE_URL", &spec.Database.URL)
	str("TRIPLOAD_HTTP_TIMEOUT", &spec.HTTPTimeout)
	str("TRIPLOAD_METRICS_TEXTFILE", &spec.MetricsTextfile)

	if v := getenv("TRIPLOAD_MONTHS"); v != "" {
		spec.Months = utils.SplitList(v)
	}
	if v := getenv("TRIPLOAD_SAMPLE_SIZE"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: TRIPLOAD_SAMPLE_SIZE: %v", ErrInvalid, err)
		}
		spec.SampleCap = n
	}
	if v := getenv("TRIPLOAD_SEED"); v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: TRIPLOAD_SEED: %v", ErrInvalid, err)
		}
		spec.Seed = n
	}
	if v := getenv("TRIPLOAD_SEED_PER_MONTH"); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: TRIPLOAD_SEED_PER_MONTH: %v", ErrInvalid, err)
		}
		spec.SeedPerMonth = b
	}
	if v := getenv("TRIPLOAD_LEDGER"); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: TRIPLOAD_LEDGER: %v", ErrInvalid, err)
		}
		spec.Ledger = b
	}
	return nil
}

// Validate checks a job configuration before any work starts.
func Validate(spec model.JobSpec) error {
	if !yearPattern.MatchString(spec.Year) {
		return fmt.Errorf("%w: year %q must be four digits", ErrInvalid, spec.Year)
	}
	if len(spec.Months) == 0 {
		return fmt.Errorf("%w: no months to load", ErrInvalid)
	}
	seen := make(map[string]bool, len(spec.Months))
	for _, m := range spec.Months {
		if !monthPattern.MatchString(m) {
			return fmt.Errorf("%w: month %q must be 01..12", ErrInvalid, m)
		}
		if seen[m] {
			return fmt.Errorf("%w: month %s listed twice", ErrInvalid, m)
		}
		seen[m] = true
	}
	if spec.SampleCap <= 0 {
		return fmt.Errorf("%w: sample size must be positive, got %d", ErrInvalid, spec.SampleCap)
	}
	if spec.Source.BaseURL == "" || spec.Source.Prefix == "" {
		return fmt.Errorf("%w: source base URL and file prefix are required", ErrInvalid)
	}
	if spec.Source.Ext != "parquet" {
		return fmt.Errorf("%w: unsupported file extension %q (only parquet)", ErrInvalid, spec.Source.Ext)
	}
	if !store.ValidIdentifier(spec.Database.Table) {
		return fmt.Errorf("%w: table %q is not a plain identifier", ErrInvalid, spec.Database.Table)
	}
	if spec.Database.URL == "" {
		return fmt.Errorf("%w: DATABASE_URL is required", ErrInvalid)
	}
	if spec.HTTPTimeout != "" {
		if _, err := time.ParseDuration(spec.HTTPTimeout); err != nil {
			return fmt.Errorf("%w: http timeout %q: %v", ErrInvalid, spec.HTTPTimeout, err)
		}
	}
	return nil
}

// LoadServer builds the trips API configuration from the environment and flags.
func LoadServer(args []string, getenv func(string) string) (*model.ServerSpec, error) {
	spec := model.ServerSpec{
		Addr:     ":8080",
		Database: model.DatabaseSpec{Table: "trips"},
	}
	if v := getenv("API_ADDR"); v != "" {
		spec.Addr = v
	}
	if v := getenv("DATABASE_DRIVER"); v != "" {
		spec.Database.Driver = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		spec.Database.URL = v
	}
	if v := getenv("TRIPLOAD_TABLE"); v != "" {
		spec.Database.Table = v
	}

	fs := flag.NewFlagSet("trips-api", flag.ContinueOnError)
	fs.StringVar(&spec.Addr, "addr", spec.Addr, "Listen address")
	fs.StringVar(&spec.Database.URL, "database-url", spec.Database.URL, "Database connection string")
	fs.StringVar(&spec.Database.Table, "table", spec.Database.Table, "Trips table")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if spec.Database.URL == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL is required", ErrInvalid)
	}
	if spec.Database.Driver == "" {
		spec.Database.Driver = store.InferDriver(spec.Database.URL)
	}
	if !store.ValidIdentifier(spec.Database.Table) {
		return nil, fmt.Errorf("%w: table %q is not a plain identifier", ErrInvalid, spec.Database.Table)
	}
	return &spec, nil
}
