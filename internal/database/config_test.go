package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfigDSN(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      DatabaseConfig
		expected string
	}{
		{
			name:     "sqlite path gets foreign keys",
			cfg:      DatabaseConfig{Driver: "sqlite", Path: "foodgram.db"},
			expected: "foodgram.db?_foreign_keys=on",
		},
		{
			name:     "sqlite keeps existing query",
			cfg:      DatabaseConfig{Driver: "sqlite", Path: "file::memory:?cache=shared"},
			expected: "file::memory:?cache=shared&_foreign_keys=on",
		},
		{
			name:     "sqlite explicit foreign key setting is kept",
			cfg:      DatabaseConfig{Driver: "", Path: "x.db?_foreign_keys=off"},
			expected: "x.db?_foreign_keys=off",
		},
		{
			name: "postgres from fields",
			cfg: DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "u",
				Password: "p", Name: "foodgram", SSLMode: "disable"},
			expected: "host=db user=u password=p dbname=foodgram port=5432 sslmode=disable",
		},
		{
			name:     "postgres url wins",
			cfg:      DatabaseConfig{Driver: "postgresql", URL: "postgres://u:p@db/foodgram", Host: "ignored"},
			expected: "postgres://u:p@db/foodgram",
		},
		{
			name:     "unknown driver",
			cfg:      DatabaseConfig{Driver: "mysql"},
			expected: "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.DSN())
		})
	}
}

func TestDatabaseConfigStringMasksPassword(t *testing.T) {
	cfg := DatabaseConfig{Driver: "postgres", Password: "hunter2", URL: "postgres://u:hunter2@db/x"}
	s := cfg.String()
	assert.NotContains(t, s, "hunter2")
	assert.Contains(t, s, "[REDACTED]")
}
