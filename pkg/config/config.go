// SPDX-License-Identifier: LGPL-3.0-or-later

// Package config loads and validates the operator's startup configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ValidationError represents a single configuration validation failure.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// ValidationResult accumulates validation errors and non-fatal warnings.
type ValidationResult struct {
	Valid    bool
	Errors   []*ValidationError
	Warnings []string
}

func (r *ValidationResult) addError(field string, value interface{}, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, &ValidationError{Field: field, Value: value, Message: message})
}

func (r *ValidationResult) addWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}

// ClusterConfig identifies the deployment and the VM/clone namespace.
type ClusterConfig struct {
	// SystemTag is the fixed `app` label value applied to every provisioned VM.
	SystemTag string `yaml:"system_tag"`
	// OperatorIdentity is the fixed `managed-by` label value.
	OperatorIdentity string `yaml:"operator_identity"`
	// Namespace is where VMs, clones, and snapshots live.
	Namespace string `yaml:"namespace"`
	// GoldenSnapshot is the name of the VirtualMachineSnapshot cloned when the
	// warm pool is empty.
	GoldenSnapshot string `yaml:"golden_snapshot"`
	// InCluster is true when running under a ServiceAccount inside Kubernetes.
	InCluster bool `yaml:"-"`
}

// GatewayConfig holds the readiness-notification HTTP target.
type GatewayConfig struct {
	// BaseURL is the gateway's base address. Out-of-cluster it is read from an
	// environment variable; in-cluster it defaults to the fixed service DNS name.
	BaseURL string `yaml:"base_url"`
}

// StoreConfig holds credentials for the external relational status store.
type StoreConfig struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

// LoggingConfig holds the log level and format resolved from the environment
// or the override file; Validate checks both values. The operator binary
// builds its logger from the --log-level flag with text output and does not
// read these fields.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the fully resolved operator configuration.
type Config struct {
	Cluster ClusterConfig `yaml:"cluster"`
	Gateway GatewayConfig `yaml:"gateway"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

const (
	defaultSystemTag        = "cyberdesk"
	defaultOperatorIdentity = "cyberdesk-operator"
	defaultNamespace        = "default"
	defaultGoldenSnapshot   = "cyberdesk-golden"
	inClusterGatewayDNSName = "http://cyberdesk-gateway.cyberdesk-system.svc.cluster.local"
)

// Load resolves configuration from the environment, applying defaults in the
// same places the source treats them as deployment-fixed constants.
func Load() (*Config, error) {
	inCluster := os.Getenv("KUBERNETES_SERVICE_HOST") != ""

	cfg := &Config{
		Cluster: ClusterConfig{
			SystemTag:        envOrDefault("CYBERDESK_SYSTEM_TAG", defaultSystemTag),
			OperatorIdentity: envOrDefault("CYBERDESK_OPERATOR_ID", defaultOperatorIdentity),
			Namespace:        envOrDefault("CYBERDESK_NAMESPACE", defaultNamespace),
			GoldenSnapshot:   envOrDefault("CYBERDESK_GOLDEN_SNAPSHOT", defaultGoldenSnapshot),
			InCluster:        inCluster,
		},
		Store: StoreConfig{
			URL: os.Getenv("CYBERDESK_STORE_URL"),
			Key: os.Getenv("CYBERDESK_STORE_KEY"),
		},
		Logging: LoggingConfig{
			Level:  envOrDefault("CYBERDESK_LOG_LEVEL", "info"),
			Format: envOrDefault("CYBERDESK_LOG_FORMAT", "text"),
		},
	}

	if inCluster {
		cfg.Gateway.BaseURL = envOrDefault("CYBERDESK_GATEWAY_URL", inClusterGatewayDNSName)
	} else {
		cfg.Gateway.BaseURL = os.Getenv("CYBERDESK_GATEWAY_URL")
	}

	result := cfg.Validate()
	if !result.Valid {
		return nil, result.Errors[0]
	}
	return cfg, nil
}

// LoadFromFile reads a YAML override file and layers it on top of the
// environment-resolved defaults: any field left zero in the file keeps its
// env/default value. The environment is validated by Load before the file is
// read, so required values such as the store URL and key must still resolve
// from the environment; the file cannot supply them on its own.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var overrides Config
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	applyOverrides(cfg, &overrides)

	result := cfg.Validate()
	if !result.Valid {
		return nil, result.Errors[0]
	}
	return cfg, nil
}

func applyOverrides(cfg, overrides *Config) {
	if overrides.Cluster.SystemTag != "" {
		cfg.Cluster.SystemTag = overrides.Cluster.SystemTag
	}
	if overrides.Cluster.OperatorIdentity != "" {
		cfg.Cluster.OperatorIdentity = overrides.Cluster.OperatorIdentity
	}
	if overrides.Cluster.Namespace != "" {
		cfg.Cluster.Namespace = overrides.Cluster.Namespace
	}
	if overrides.Cluster.GoldenSnapshot != "" {
		cfg.Cluster.GoldenSnapshot = overrides.Cluster.GoldenSnapshot
	}
	if overrides.Gateway.BaseURL != "" {
		cfg.Gateway.BaseURL = overrides.Gateway.BaseURL
	}
	if overrides.Store.URL != "" {
		cfg.Store.URL = overrides.Store.URL
	}
	if overrides.Store.Key != "" {
		cfg.Store.Key = overrides.Store.Key
	}
	if overrides.Logging.Level != "" {
		cfg.Logging.Level = overrides.Logging.Level
	}
	if overrides.Logging.Format != "" {
		cfg.Logging.Format = overrides.Logging.Format
	}
}

// Validate enumerates every configuration problem rather than stopping at the
// first one found, so an operator fixing a broken deployment sees the whole
// list in one pass.
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{Valid: true}

	if c.Cluster.SystemTag == "" {
		result.addError("cluster.system_tag", c.Cluster.SystemTag, "system tag is required")
	}
	if c.Cluster.OperatorIdentity == "" {
		result.addError("cluster.operator_identity", c.Cluster.OperatorIdentity, "operator identity is required")
	}
	if c.Cluster.Namespace == "" {
		result.addError("cluster.namespace", c.Cluster.Namespace, "namespace is required")
	}
	if c.Cluster.GoldenSnapshot == "" {
		result.addError("cluster.golden_snapshot", c.Cluster.GoldenSnapshot, "golden snapshot name is required")
	}

	if c.Store.URL == "" || c.Store.Key == "" {
		result.addError("store", c.Store, "external status store URL and key are both required")
	}

	if c.Gateway.BaseURL == "" {
		if c.Cluster.InCluster {
			result.addError("gateway.base_url", c.Gateway.BaseURL, "gateway base URL could not be resolved in-cluster")
		} else {
			result.addWarning("gateway.base_url is unset; readiness notifications will be skipped")
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		result.addError("logging.level", c.Logging.Level, "invalid log level, must be one of: debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		result.addError("logging.format", c.Logging.Format, "invalid log format, must be 'text' or 'json'")
	}

	return result
}

// WatchTimeoutSeconds returns the 210-second server-side watch timeout,
// chosen to balance reconnect frequency against idle-connection churn.
// Nothing in the operator passes it to the manager, so the informers run
// with controller-runtime's default watch timeout.
func WatchTimeoutSeconds() int64 {
	return 210
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
