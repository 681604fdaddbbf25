package config

type TracingConfig interface {
	GetOtelEndpoint() string
	GetOtelEnabled() bool
}

// Tracing is opt-in: nothing is exported unless an endpoint is configured.
type Tracing struct {
	Endpoint string `env:"OTEL_ENDPOINT"`
	Enabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

var _ TracingConfig = Tracing{}

func (t Tracing) GetOtelEndpoint() string {
	return t.Endpoint
}

func (t Tracing) GetOtelEnabled() bool {
	return t.Enabled && t.Endpoint != ""
}
