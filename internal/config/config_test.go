package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/kogase-admin/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	c, err := config.New()
	require.NoError(t, err)

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "http://localhost:5000/api/v1", c.GetAPIBaseURL())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, 60*time.Second, c.GetHealthInterval())
	require.Equal(t, 5*time.Second, c.GetHealthTimeout())
	require.False(t, c.GetOtelEnabled())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://localhost:3000"))
}

func TestNew_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("KOGASE_API_URL", "https://kogase.example.com/api/v1/")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("HEALTH_INTERVAL", "30s")
	t.Setenv("OTEL_ENDPOINT", "http://collector:4318")

	c, err := config.New()
	require.NoError(t, err)

	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, "https://kogase.example.com/api/v1", c.GetAPIBaseURL())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://b.example.com"))
	require.False(t, c.GetAllowedOrigins().IsAllowedOrigin("http://localhost:3000"))
	require.Equal(t, 30*time.Second, c.GetHealthInterval())
	require.True(t, c.GetOtelEnabled())
}

func TestNew_InvalidDuration(t *testing.T) {
	t.Setenv("HEALTH_TIMEOUT", "soon")

	_, err := config.New()
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse env:")
}
