package db

import (
	"errors"
	"testing"

	"github.com/smallbiznis/counterreport/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDialectRejectsUnknownType(t *testing.T) {
	_, err := Dialect(Config{Type: "oracle"})
	require.Error(t, err)
}

func TestDialectNames(t *testing.T) {
	for _, typ := range []string{"postgres", "mysql", "sqlite"} {
		d, err := Dialect(Config{Type: typ, Host: "localhost", Port: "5432", Name: "counter"})
		require.NoError(t, err)
		assert.Equal(t, typ, d.Name())
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg := FromAppConfig(config.Config{
		DBType:            " Postgres ",
		DBHost:            "db",
		DBPort:            "5432",
		DBName:            "counter",
		DBConnMaxLifetime: 300,
	})
	assert.Equal(t, "postgres", cfg.Type)
	assert.Equal(t, "host=db user= password= dbname=counter port=5432 sslmode= TimeZone=UTC", DSN(cfg))
	assert.Equal(t, float64(300), cfg.connMaxLifetime().Seconds())
}

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: institutions.identifier")))
	assert.True(t, IsDuplicateKeyErr(errors.New(`ERROR: duplicate key value violates unique constraint "institutions_identifier_key"`)))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection refused")))
}
