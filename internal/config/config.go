package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Artifact locations.
	UploadDir  string
	DataDir    string
	GeoJSONDir string

	// Dataset described by /sst-details.
	SSTDatasetPath string
	SSTVariable    string

	// Boundary layers drawn over every overlay.
	CoastlinePath     string
	LandMaskPath      string
	StateMaskPath     string
	BoundaryCacheSize int

	MaxPoints      int
	MaxUploadBytes int64
	OverlayDPI     int
	DustOverlayDPI int

	CORSAllowedOrigins []string

	// Optional artifact notifications.
	KafkaBrokers       []string
	KafkaArtifactTopic string
	KafkaEnabled       bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	dataDir := sharedcfg.EnvOrDefault("DATA_DIR", "data")
	geojsonDir := sharedcfg.EnvOrDefault("GEOJSON_DIR", "geojson")

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":5000"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		UploadDir:  sharedcfg.EnvOrDefault("UPLOAD_DIR", "uploads"),
		DataDir:    dataDir,
		GeoJSONDir: geojsonDir,

		SSTDatasetPath: sharedcfg.EnvOrDefault("SST_DATASET_PATH", filepath.Join(dataDir, "sst_today.nc")),
		SSTVariable:    sharedcfg.EnvOrDefault("SST_VARIABLE", "sst"),

		CoastlinePath: sharedcfg.EnvOrDefault("COASTLINE_PATH", filepath.Join(geojsonDir, "coastline_simplified.geojson")),
		LandMaskPath:  sharedcfg.EnvOrDefault("LAND_MASK_PATH", filepath.Join(geojsonDir, "land_mask_simplified.geojson")),
		StateMaskPath: sharedcfg.EnvOrDefault("STATE_MASK_PATH", filepath.Join(geojsonDir, "state_mask_simplified.geojson")),

		CORSAllowedOrigins: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		KafkaBrokers:       sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaArtifactTopic: sharedcfg.EnvOrDefault("KAFKA_ARTIFACT_TOPIC", "envis-artifacts"),
	}

	if cfg.MaxPoints, err = positiveInt("MAX_POINTS", 150_000); err != nil {
		return nil, err
	}
	if cfg.OverlayDPI, err = positiveInt("OVERLAY_DPI", 300); err != nil {
		return nil, err
	}
	if cfg.DustOverlayDPI, err = positiveInt("DUST_OVERLAY_DPI", 600); err != nil {
		return nil, err
	}
	if cfg.BoundaryCacheSize, err = positiveInt("BOUNDARY_CACHE_SIZE", 8); err != nil {
		return nil, err
	}
	maxUpload, err := positiveInt("MAX_UPLOAD_BYTES", 256<<20)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	cfg.KafkaEnabled = len(cfg.KafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		cfg.KafkaEnabled = v == "true"
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaArtifactTopic == "" {
		return nil, fmt.Errorf("KAFKA_ARTIFACT_TOPIC is required")
	}

	return cfg, nil
}

func positiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}
