package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/florincoin/floretarget/internal/chaincfg"
)

// Index backends.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
)

type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Network NetworkConfig `yaml:"network"`
	Index   IndexConfig   `yaml:"index"`
	Metrics MetricsConfig `yaml:"metrics"`
	Node    NodeConfig    `yaml:"node"`
}

type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LOGGING_LEVEL"`
}

type NetworkConfig struct {
	Name      string `yaml:"name"      envconfig:"NETWORK"`
	ClampMode string `yaml:"clampMode" envconfig:"NETWORK_CLAMP_MODE"`
}

type IndexConfig struct {
	Backend string `yaml:"backend" envconfig:"INDEX_BACKEND"`
	Path    string `yaml:"path"    envconfig:"INDEX_PATH"`
}

type MetricsConfig struct {
	ListenAddress string `yaml:"address" envconfig:"METRICS_LISTEN_ADDRESS"`
	ListenPort    uint   `yaml:"port"    envconfig:"METRICS_LISTEN_PORT"`
}

// NodeConfig points at a Florincoin node's JSON-RPC interface.
type NodeConfig struct {
	RPCURL      string  `yaml:"rpcUrl"      envconfig:"NODE_RPC_URL"`
	RPCUser     string  `yaml:"rpcUser"     envconfig:"NODE_RPC_USER"`
	RPCPassword string  `yaml:"rpcPassword" envconfig:"NODE_RPC_PASSWORD"`
	RateLimit   float64 `yaml:"rateLimit"   envconfig:"NODE_RATE_LIMIT"`
}

// Singleton config instance with default values
var globalConfig = defaultConfig()

func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Network: NetworkConfig{
			Name:      "main",
			ClampMode: string(chaincfg.ClampTwoSided),
		},
		Index: IndexConfig{
			Backend: BackendMemory,
			Path:    "./.state/headers.db",
		},
		Metrics: MetricsConfig{
			ListenAddress: "",
			ListenPort:    0,
		},
		Node: NodeConfig{
			RPCURL:    "http://127.0.0.1:7313",
			RateLimit: 50,
		},
	}
}

func Load(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// "dummy" keeps envconfig from picking up variables other than the
	// ones named in the struct tags
	err := envconfig.Process("dummy", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

// GetConfig returns the global config instance
func GetConfig() *Config {
	return globalConfig
}

// ChainParams returns the consensus parameters selected by the network
// section.
func (c *Config) ChainParams() (*chaincfg.Params, error) {
	params, err := chaincfg.ParamsForNetwork(c.Network.Name)
	if err != nil {
		return nil, err
	}
	mode, err := chaincfg.ParseClampMode(c.Network.ClampMode)
	if err != nil {
		return nil, err
	}
	if mode != params.ClampMode {
		params = params.WithClampMode(mode)
	}
	return params, nil
}

func (c *Config) validate() error {
	if _, err := c.ChainParams(); err != nil {
		return fmt.Errorf("invalid network config: %w", err)
	}
	switch c.Index.Backend {
	case BackendMemory:
	case BackendBolt:
		if c.Index.Path == "" {
			return fmt.Errorf("invalid index config: bolt backend needs a path")
		}
	default:
		return fmt.Errorf("invalid index config: unknown backend %q", c.Index.Backend)
	}
	if c.Node.RateLimit < 0 {
		return fmt.Errorf("invalid node config: negative rate limit")
	}
	return nil
}
