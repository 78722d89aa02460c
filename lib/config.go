package lib

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/units"
	"github.com/kelseyhightower/envconfig"
)

/* This file implements logic for 'user controlled' global configurations of each module of the router */

const (
	// FILE NAMES in the 'data directory'
	ConfigFilePath  = "config.json"  // the file path for the router configuration
	GenesisFilePath = "genesis.json" // the file path for the genesis state

	// EnvPrefix is the prefix of every environment variable that overrides the config file
	EnvPrefix = "OMNIROUTE"
)

// Config is the structure of the user configuration options for the router runtime
type Config struct {
	MainConfig    // main options spanning over all modules
	StoreConfig   // persistence options
	LedgerConfig  // multi-asset ledger options
	RouterConfig  // route execution options
	MetricsConfig // telemetry options
}

// DefaultConfig() returns a Config with developer set options
func DefaultConfig() Config {
	return Config{
		MainConfig:    DefaultMainConfig(),
		StoreConfig:   DefaultStoreConfig(),
		LedgerConfig:  DefaultLedgerConfig(),
		RouterConfig:  DefaultRouterConfig(),
		MetricsConfig: DefaultMetricsConfig(),
	}
}

// MAIN CONFIG BELOW

type MainConfig struct {
	LogLevel string `json:"logLevel" envconfig:"LOG_LEVEL"` // any level includes the levels above it: debug < info < warning < error
}

// DefaultMainConfig() sets log level to 'info'
func DefaultMainConfig() MainConfig { return MainConfig{LogLevel: "info"} }

// GetLogLevel() parses the log string in the config file into a LogLevel Enum
func (m *MainConfig) GetLogLevel() int32 { return ParseLogLevel(m.LogLevel) }

// STORE CONFIG BELOW

// StoreConfig is user configurations for the key value database
type StoreConfig struct {
	DataDirPath    string `json:"dataDirPath" envconfig:"DATA_DIR"`             // path of the designated folder where the application stores its data
	DBName         string `json:"dbName" envconfig:"DB_NAME"`                   // name of the database
	InMemory       bool   `json:"inMemory" envconfig:"IN_MEMORY"`               // non-disk database, only for testing
	BlockCacheSize int64  `json:"blockCacheSize" envconfig:"BLOCK_CACHE_SIZE"`  // badger block cache in bytes
	IndexCacheSize int64  `json:"indexCacheSize" envconfig:"INDEX_CACHE_SIZE"`  // badger index cache in bytes
	OpenTimeoutMS  uint64 `json:"openTimeoutMS" envconfig:"OPEN_TIMEOUT_MS"`    // how long to retry opening a locked database
	ValueLogSize   int64  `json:"valueLogFileSize" envconfig:"VALUE_LOG_SIZE"` // badger value log file size in bytes
}

// DefaultDataDirPath() is $USERHOME/.omniroute
func DefaultDataDirPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	return filepath.Join(home, ".omniroute")
}

// DefaultStoreConfig() returns the developer recommended store configuration
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		DataDirPath:    DefaultDataDirPath(),
		DBName:         "omniroute",
		InMemory:       false,
		BlockCacheSize: int64(64 * units.MiB),
		IndexCacheSize: int64(16 * units.MiB),
		OpenTimeoutMS:  5000,
		ValueLogSize:   int64(128 * units.MiB),
	}
}

// LEDGER CONFIG BELOW

// LedgerConfig holds the asset ledger parameters that govern existential deposits
type LedgerConfig struct {
	NativeAssetId        uint32  `json:"nativeAssetId" envconfig:"NATIVE_ASSET_ID"`                // the asset used to pay insufficient asset deposits
	HubAssetId           uint32  `json:"hubAssetId" envconfig:"HUB_ASSET_ID"`                      // the omnipool hub asset
	InsufficientAssetED  Balance `json:"insufficientAssetED" envconfig:"INSUFFICIENT_ASSET_ED"`   // native amount charged when an account first holds an insufficient asset
	ExtraEDChargePercent uint64  `json:"extraEDChargePercent" envconfig:"EXTRA_ED_CHARGE_PERCENT"` // percentage of the deposit kept by the treasury on refund
}

// DefaultLedgerConfig() returns the developer recommended ledger parameters
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		NativeAssetId:        0,
		HubAssetId:           1,
		InsufficientAssetED:  MustBalance("11000000000000"), // 11 native units at 12 decimals
		ExtraEDChargePercent: 10,
	}
}

// ROUTER CONFIG BELOW

// RouterConfig holds the route execution and route oracle options
type RouterConfig struct {
	MaxNumberOfTrades   int    `json:"maxNumberOfTrades" envconfig:"MAX_NUMBER_OF_TRADES"`     // the maximum length of a route
	OraclePeriod        string `json:"oraclePeriod" envconfig:"ORACLE_PERIOD"`                 // the oracle period used to price candidate routes
	BaseWeight          uint64 `json:"baseWeight" envconfig:"BASE_WEIGHT"`                     // fixed ref time overhead of any router call
	PerHopWeight        uint64 `json:"perHopWeight" envconfig:"PER_HOP_WEIGHT"`                // ref time overhead added for each hop of the route
	PerIndexWeight      uint64 `json:"perIndexWeight" envconfig:"PER_INDEX_WEIGHT"`            // ref time overhead added by the position of a hop
	BaseProofSizeWeight uint64 `json:"baseProofSizeWeight" envconfig:"BASE_PROOF_SIZE_WEIGHT"` // fixed proof size overhead of any router call
}

// DefaultRouterConfig() returns the developer recommended router options
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		MaxNumberOfTrades:   9,
		OraclePeriod:        "tenMinutes",
		BaseWeight:          24_000_000,
		PerHopWeight:        6_500_000,
		PerIndexWeight:      1_200_000,
		BaseProofSizeWeight: 3_500,
	}
}

// METRICS CONFIG BELOW

// MetricsConfig represents the configuration for the metrics server
type MetricsConfig struct {
	Enabled           bool   `json:"enabled" envconfig:"METRICS_ENABLED"`              // if the metrics are enabled
	PrometheusAddress string `json:"prometheusAddress" envconfig:"PROMETHEUS_ADDRESS"` // the address of the server
}

// DefaultMetricsConfig() returns the default metrics configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:           false,
		PrometheusAddress: "0.0.0.0:9090",
	}
}

// WriteToFile() saves the Config object to a JSON file in the data directory
func (c Config) WriteToFile(dataDirPath string) ErrorI {
	return SaveJSONToFile(c, dataDirPath, ConfigFilePath)
}

// NewConfigFromFile() populates a Config object from the JSON file in the data directory (if any)
// and applies the environment overrides on top
func NewConfigFromFile(dataDirPath string) (Config, ErrorI) {
	// define the default config to fill in any blanks in the file
	c := DefaultConfig()
	if FileExists(dataDirPath, ConfigFilePath) {
		if err := NewJSONFromFile(&c, dataDirPath, ConfigFilePath); err != nil {
			return Config{}, err
		}
	}
	// the data directory the file was read from wins over the file's contents
	if dataDirPath != "" {
		c.DataDirPath = dataDirPath
	}
	if err := c.ApplyEnv(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// ApplyEnv() overrides fields with any OMNIROUTE_* environment variables set
func (c *Config) ApplyEnv() ErrorI {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return ErrInvalidConfig(err)
	}
	return nil
}

// ParseLogLevel() converts a human readable level into a LogLevel Enum
func ParseLogLevel(level string) int32 {
	switch l := strings.ToLower(level); {
	case strings.Contains(l, "deb"):
		return DebugLevel
	case strings.Contains(l, "inf"):
		return InfoLevel
	case strings.Contains(l, "war"):
		return WarnLevel
	case strings.Contains(l, "err"):
		return ErrorLevel
	default:
		return DebugLevel
	}
}
