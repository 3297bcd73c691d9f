package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBlob   = "blob"
)

type Config struct {
	Catalog   CatalogConfig `json:"catalog"`
	Recipes   string        `json:"recipes"`
	Profile   string        `json:"profile"`
	Storage   StorageConfig `json:"storage"`
	Namespace string        `json:"namespace"`
	LogLevel  string        `json:"log_level"`
	// Logs are also appended to a blob in this container when set.
	LogContainer string `json:"log_container"`
}

type CatalogConfig struct {
	ItemsPath   string `json:"items_path"`
	OptionsPath string `json:"options_path"`
}

type StorageConfig struct {
	Backend    string `json:"backend"` // memory, file, sqlite or blob
	Dir        string `json:"dir"`
	SQLitePath string `json:"sqlite_path"`
	Account    string `json:"account"`
	AccountKey string `json:"-"`
	Container  string `json:"container"`
}

func Load() (*Config, error) {
	config := &Config{
		Catalog: CatalogConfig{
			ItemsPath:   getEnvOrDefault("BASKET_ITEMS", "./data/items.json"),
			OptionsPath: getEnvOrDefault("BASKET_OPTIONS", "./data/options.json"),
		},
		Recipes: getEnvOrDefault("BASKET_RECIPES", "./data/recipes.json"),
		Profile: os.Getenv("BASKET_PROFILE"),
		Storage: StorageConfig{
			Backend:    getEnvOrDefault("BASKET_STORAGE", defaultBackend()),
			Dir:        getEnvOrDefault("BASKET_STATE_DIR", "./state"),
			SQLitePath: getEnvOrDefault("BASKET_SQLITE_PATH", "./state/basket.db"),
			Account:    os.Getenv("AZURE_STORAGE_ACCOUNT_NAME"),
			AccountKey: os.Getenv("AZURE_STORAGE_PRIMARY_ACCOUNT_KEY"),
			Container:  getEnvOrDefault("BASKET_CONTAINER", "basket"),
		},
		Namespace: os.Getenv("BASKET_NAMESPACE"),
		LogLevel:  getEnvOrDefault("BASKET_LOG_LEVEL", "info"),

		LogContainer: os.Getenv("BASKET_LOG_CONTAINER"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Catalog.ItemsPath == "" {
		errs = append(errs, errors.New("catalog items path is required"))
	}
	if c.Recipes == "" {
		errs = append(errs, errors.New("recipes path is required"))
	}
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Storage.Dir == "" {
			errs = append(errs, errors.New("file storage needs BASKET_STATE_DIR"))
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite storage needs BASKET_SQLITE_PATH"))
		}
	case BackendBlob:
		if c.Storage.Account == "" || c.Storage.AccountKey == "" {
			errs = append(errs, errors.New("blob storage needs AZURE_STORAGE_ACCOUNT_NAME and AZURE_STORAGE_PRIMARY_ACCOUNT_KEY"))
		}
		if c.Storage.Container == "" {
			errs = append(errs, errors.New("blob storage needs a container"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}
	if strings.Contains(c.Namespace, "/") {
		errs = append(errs, fmt.Errorf("namespace %q must not contain '/'", c.Namespace))
	}
	if c.LogContainer != "" && (c.Storage.Account == "" || c.Storage.AccountKey == "") {
		errs = append(errs, errors.New("BASKET_LOG_CONTAINER needs AZURE_STORAGE_ACCOUNT_NAME and AZURE_STORAGE_PRIMARY_ACCOUNT_KEY"))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// Blob storage is picked automatically when an account is configured.
func defaultBackend() string {
	if os.Getenv("AZURE_STORAGE_ACCOUNT_NAME") != "" {
		return BackendBlob
	}
	return BackendFile
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
