package main

import (
	"context"
	"testing"

	"attractions/internal/config"
	"attractions/internal/dataset"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "file",
			cfg:  config.Config{Dataset: config.DatasetConfig{Source: config.SourceFile, Path: "data/attractions.json"}},
			want: "data/attractions.json",
		},
		{
			name: "http",
			cfg:  config.Config{Dataset: config.DatasetConfig{Source: config.SourceHTTP, BaseURL: "http://localhost:8000/site/"}},
			want: "http://localhost:8000/site/attractions.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, closeSource, err := newSource(context.Background(), &tt.cfg, zerolog.Nop())
			require.NoError(t, err)
			defer closeSource()
			assert.Equal(t, tt.want, src.Name())
		})
	}
}

func TestNewSource_HTTPHasNoTimeout(t *testing.T) {
	cfg := config.Config{Dataset: config.DatasetConfig{Source: config.SourceHTTP, BaseURL: "http://localhost:8000/"}}

	src, _, err := newSource(context.Background(), &cfg, zerolog.Nop())
	require.NoError(t, err)

	httpSrc, ok := src.(dataset.HTTPSource)
	require.True(t, ok)
	require.NotNil(t, httpSrc.Client)
	assert.Zero(t, httpSrc.Client.Timeout)
}

func TestNewSource_S3RequiresCredentials(t *testing.T) {
	cfg := config.Config{Dataset: config.DatasetConfig{Source: config.SourceS3}}

	_, _, err := newSource(context.Background(), &cfg, zerolog.Nop())
	assert.Error(t, err)
}
