package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("CERTIFICATE_DELAY_HOURS", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PAYMENT_GATEWAY_URL", "")

	LoadConfig()

	assert.Equal(t, "postgres", AppConfig.DBDriver)
	assert.Equal(t, 48*time.Hour, AppConfig.CertificateDelay)
	assert.Equal(t, 24*time.Hour, AppConfig.SessionTTL)
	assert.Contains(t, AppConfig.Warnings, "using default JWT_SECRET_KEY, update it in your environment")
	assert.Contains(t, AppConfig.Warnings, "PAYMENT_GATEWAY_URL not set, enrollments stay pending until an administrator confirms payment")
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_NAME", "school")
	t.Setenv("CERTIFICATE_DELAY_HOURS", "1")
	t.Setenv("SALT_ROUND", "not-a-number")
	t.Setenv("PAYMENT_GATEWAY_URL", "https://payments.example.com")

	LoadConfig()

	assert.Equal(t, "sqlite", AppConfig.DBDriver)
	assert.Equal(t, "school.db", AppConfig.DSN())
	assert.Equal(t, time.Hour, AppConfig.CertificateDelay)
	assert.Equal(t, 10, AppConfig.SaltRound)
	for _, w := range AppConfig.Warnings {
		assert.NotContains(t, w, "PAYMENT_GATEWAY_URL")
	}
}

func TestDSNPrefersExplicitValue(t *testing.T) {
	c := &Config{DBDriver: "mysql", DBDSN: "user:pw@tcp(db:3306)/x"}
	assert.Equal(t, "user:pw@tcp(db:3306)/x", c.DSN())

	c = &Config{DBDriver: "postgres", DBHost: "h", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "1"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=1 sslmode=disable", c.DSN())
}
