package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig top-level application configuration
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Master MasterConfig `toml:"master"`
	Export ExportConfig `toml:"export"`
}

// ServerConfig HTTP server configuration
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig local data directory configuration
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// MasterConfig accepted header spellings for the master sheet, in priority order
type MasterConfig struct {
	ChannelColumns  []string `toml:"channel_columns"`
	CustomerColumns []string `toml:"customer_columns"`
}

// ExportConfig cosmetic settings for the exported workbook
type ExportConfig struct {
	SheetName  string  `toml:"sheet_name"`
	LabelWidth float64 `toml:"label_width"`
	ValueWidth float64 `toml:"value_width"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20482,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Master: MasterConfig{
			ChannelColumns:  []string{"CHANNEL_REPORT_NAME", "CHANNEL_NAME", "CHANNEL", "SALES_CHANNEL"},
			CustomerColumns: []string{"CUSTOMER_GROUP", "CUSTOMER_NAME", "CUSTOMER", "CUST_GROUP"},
		},
		Export: ExportConfig{
			SheetName:  "Report",
			LabelWidth: 36,
			ValueWidth: 13,
		},
	}
}

// GetExeDir returns the directory holding the running executable
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfig loads config.toml from the executable directory.
// Missing file or missing keys fall back to defaults.
func LoadConfig() (*AppConfig, error) {
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(config)
			return config, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	applyEnvOverrides(config)
	return config, nil
}

func applyEnvOverrides(config *AppConfig) {
	if v := os.Getenv("EMINA_REPORT_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
}

// SaveConfig writes config.toml next to the executable
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(exeDir, "config.toml"), data, 0644)
}

// EnsureDataDir creates the data directory (with uploads/exports subdirs) if needed
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	for _, subdir := range []string{"uploads", "exports"} {
		if err := os.MkdirAll(filepath.Join(dataDir, subdir), 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}
