package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearAGRMEnv blanks the variables these tests touch so the host environment
// cannot leak into Load.
func clearAGRMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"AGRM_APP_NAME", "AGRM_APP_ENV", "AGRM_APP_PORT",
		"AGRM_DATABASE_HOST", "AGRM_DATABASE_PORT", "AGRM_DATABASE_USER",
		"AGRM_DATABASE_PASSWORD", "AGRM_DATABASE_DBNAME", "AGRM_DATABASE_SSLMODE",
		"AGRM_DATABASE_MAX_OPEN_CONNS", "AGRM_DATABASE_MAX_IDLE_CONNS",
		"AGRM_TELEMETRY_SAMPLING_RATIO", "AGRM_TELEMETRY_DB_LOG_FULL_SQL",
		"AGRM_WORKFLOW_DEFINITION_PATH", "AGRM_WORKFLOW_PRODUCT_CACHE_ENABLED",
		"AGRM_WORKFLOW_PRODUCT_CACHE_TTL", "AGRM_WORKFLOW_LOCALE",
		"AGRM_HTTP_CORS_ALLOW_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearAGRMEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "agrm-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "agrm", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "agrm-backend", cfg.Telemetry.ServiceName)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.Equal(t, "", cfg.Workflow.DefinitionPath)
		assert.False(t, cfg.Workflow.ProductCacheEnabled)
		assert.Equal(t, 10*time.Minute, cfg.Workflow.ProductCacheTTL)
		assert.Equal(t, "en", cfg.Workflow.Locale)
		assert.Contains(t, cfg.HTTP.CORSAllowHeaders, "X-User-ID")
	})

	t.Run("loads values from environment variables with AGRM prefix", func(t *testing.T) {
		clearAGRMEnv(t)
		t.Setenv("AGRM_APP_NAME", "credit-api")
		t.Setenv("AGRM_DATABASE_HOST", "db.internal")
		t.Setenv("AGRM_DATABASE_PORT", "5433")
		t.Setenv("AGRM_DATABASE_PASSWORD", "secret")
		t.Setenv("AGRM_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("AGRM_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("AGRM_WORKFLOW_DEFINITION_PATH", "/etc/agrm/workflow.yaml")
		t.Setenv("AGRM_WORKFLOW_PRODUCT_CACHE_ENABLED", "true")
		t.Setenv("AGRM_WORKFLOW_PRODUCT_CACHE_TTL", "90s")
		t.Setenv("AGRM_WORKFLOW_LOCALE", "fr")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "credit-api", cfg.App.Name)
		assert.Equal(t, "credit-api", cfg.Telemetry.ServiceName)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "secret", cfg.Database.Password)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "/etc/agrm/workflow.yaml", cfg.Workflow.DefinitionPath)
		assert.True(t, cfg.Workflow.ProductCacheEnabled)
		assert.Equal(t, 90*time.Second, cfg.Workflow.ProductCacheTTL)
		assert.Equal(t, "fr", cfg.Workflow.Locale)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearAGRMEnv(t)
		t.Setenv("AGRM_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("AGRM_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearAGRMEnv(t)
		t.Setenv("AGRM_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		clearAGRMEnv(t)
		t.Setenv("AGRM_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearAGRMEnv(t)
		t.Setenv("AGRM_APP_ENV", "production")
		t.Setenv("AGRM_DATABASE_PASSWORD", "secure-password")
		t.Setenv("AGRM_DATABASE_SSLMODE", "require")
	}

	tests := []struct {
		name    string
		mutate  func(t *testing.T)
		wantErr string
	}{
		{"valid production config", func(t *testing.T) {}, ""},
		{"requires database.password", func(t *testing.T) { t.Setenv("AGRM_DATABASE_PASSWORD", "") }, "database.password is required in production"},
		{"requires SSL", func(t *testing.T) { t.Setenv("AGRM_DATABASE_SSLMODE", "disable") }, "database.sslmode cannot be 'disable' in production"},
		{"rejects full SQL in spans", func(t *testing.T) { t.Setenv("AGRM_TELEMETRY_DB_LOG_FULL_SQL", "true") }, "db_log_full_sql must be false"},
		{"rejects wildcard CORS", func(t *testing.T) { t.Setenv("AGRM_HTTP_CORS_ALLOW_ORIGINS", "*") }, "cors_allow_origins cannot be '*'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setValidProductionBase(t)
			tt.mutate(t)

			cfg, err := Load()
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "production", cfg.App.Env)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "agrm", Password: "pw", DBName: "agrm", SSLMode: "disable"}

		dsn := cfg.DSN()
		assert.Equal(t, "postgres://agrm:pw@localhost:5432/agrm?sslmode=disable", dsn)
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "user", Password: "pass@word#123", DBName: "db", SSLMode: "disable"}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
