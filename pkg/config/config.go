package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	DataFile        string
	AssetsDir       string
	BucketName      string
	Port            string
	DefaultLanguage string
	Languages       []string
	ViewsDir        string
	PublicDir       string
	ResolveTTL      time.Duration
	SecretKey       string
}

// ErrDataFileNotSet is returned when DATA_FILE is explicitly empty
var ErrDataFileNotSet = errors.New("DATA_FILE environment variable is empty")

// ErrInvalidResolveTTL is returned when RESOLVE_TTL is not a valid duration
var ErrInvalidResolveTTL = errors.New("RESOLVE_TTL is not a valid duration")

// ErrInvalidSecretKey is returned when SECRET_KEY cannot be used as a path segment
var ErrInvalidSecretKey = errors.New("SECRET_KEY must be a single path segment")

// Load loads configuration from environment variables
func Load() (*Config, error) {
	dataFile, ok := os.LookupEnv("DATA_FILE")
	if !ok {
		dataFile = "data.json"
	}
	if strings.TrimSpace(dataFile) == "" {
		return nil, ErrDataFileNotSet
	}

	ttl := 10 * time.Minute
	if raw := os.Getenv("RESOLVE_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidResolveTTL, raw)
		}
		ttl = d
	}

	secretKey := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if strings.ContainsAny(secretKey, "/{}*") {
		return nil, ErrInvalidSecretKey
	}

	var languages []string
	for _, lang := range strings.Split(os.Getenv("LANGUAGES"), ",") {
		if lang = strings.TrimSpace(lang); lang != "" {
			languages = append(languages, strings.ToUpper(lang))
		}
	}

	return &Config{
		DataFile:        dataFile,
		AssetsDir:       getenv("ASSETS_DIR", "data"),
		BucketName:      os.Getenv("BUCKET_NAME"),
		Port:            getenv("PORT", "8080"),
		DefaultLanguage: strings.ToUpper(getenv("DEFAULT_LANG", "ES")),
		Languages:       languages,
		ViewsDir:        getenv("VIEWS_DIR", "views"),
		PublicDir:       getenv("PUBLIC_DIR", "public"),
		ResolveTTL:      ttl,
		SecretKey:       secretKey,
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// UsesBucket reports whether assets and the data file live in Cloud Storage
func (c *Config) UsesBucket() bool {
	return c.BucketName != ""
}

// ServerAddress returns the server address with port
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// PrintServerStartMessage prints a message when the server starts
func (c *Config) PrintServerStartMessage() {
	fmt.Printf("Starting server at port %s\n", c.Port)
	fmt.Printf("Portfolio URL: http://localhost:%s/\n", c.Port)
	fmt.Printf("Live session: ws://localhost:%s/live\n", c.Port)
	if c.SecretKey != "" {
		fmt.Printf("Admin URL: http://localhost:%s/%s/admin\n", c.Port, c.SecretKey)
	}
	if c.UsesBucket() {
		fmt.Printf("Serving %s and assets from bucket %s\n", c.DataFile, c.BucketName)
	} else {
		fmt.Printf("Serving %s and assets from %s\n", c.DataFile, c.AssetsDir)
	}
}
