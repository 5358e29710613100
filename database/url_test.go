package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructDatabaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		baseURL  string
		database string
		want     string
	}{
		{
			name:    "no database name keeps url",
			baseURL: "postgres://u:p@host:5432/existing",
			want:    "postgres://u:p@host:5432/existing",
		},
		{
			name:     "appends database and sslmode",
			baseURL:  "postgres://u:p@host:5432",
			database: "curator",
			want:     "postgres://u:p@host:5432/curator?sslmode=disable",
		},
		{
			name:     "trailing slash trimmed",
			baseURL:  "postgres://u:p@host:5432/",
			database: "curator",
			want:     "postgres://u:p@host:5432/curator?sslmode=disable",
		},
		{
			name:     "existing query kept",
			baseURL:  "postgres://u:p@host:5432?connect_timeout=5",
			database: "curator",
			want:     "postgres://u:p@host:5432/curator?connect_timeout=5&sslmode=disable",
		},
		{
			name:     "existing sslmode respected",
			baseURL:  "postgres://u:p@host:5432?sslmode=require",
			database: "curator",
			want:     "postgres://u:p@host:5432/curator?sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ConstructDatabaseURL(tt.baseURL, tt.database))
		})
	}
}
