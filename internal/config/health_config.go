package config

import "time"

type HealthConfig interface {
	GetHealthInterval() time.Duration
	GetHealthTimeout() time.Duration
}

type Health struct {
	Interval time.Duration `env:"HEALTH_INTERVAL" envDefault:"60s"`
	Timeout  time.Duration `env:"HEALTH_TIMEOUT" envDefault:"5s"`
}

var _ HealthConfig = Health{}

func (h Health) GetHealthInterval() time.Duration {
	return h.Interval
}

func (h Health) GetHealthTimeout() time.Duration {
	return h.Timeout
}
