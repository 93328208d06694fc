package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.TAXII.ServicesFile = "/etc/stip-taxii/services.yaml"
	cfg.TAXII.Community = "default-community"
	cfg.TAXII.Publisher = "taxii"
	cfg.Ingest.URL = "http://localhost:9000"
	return cfg
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateMissingRequired(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing services file", mutate: func(c *Config) { c.TAXII.ServicesFile = "" }},
		{name: "missing community", mutate: func(c *Config) { c.TAXII.Community = "" }},
		{name: "missing publisher", mutate: func(c *Config) { c.TAXII.Publisher = "" }},
		{name: "missing ingest url", mutate: func(c *Config) { c.Ingest.URL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5432, User: "stip", Password: "s3cret",
		DBName: "stip_taxii", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://stip:s3cret@db:5432/stip_taxii?sslmode=disable", cfg.DSN())
}
