package config

// DatadogConfig holds optional tracing configuration. Traces are exported
// to a local Datadog Agent over OTLP HTTP; the agent handles authentication
// and forwarding. Tracing is best-effort and never blocks startup.
type DatadogConfig struct {
	AgentHost   string `mapstructure:"agent_host"`
	Environment string `mapstructure:"environment"`
	ServiceName string `mapstructure:"service_name"`
	APIKey      string `mapstructure:"api_key"` // SENSITIVE: never logged
}
