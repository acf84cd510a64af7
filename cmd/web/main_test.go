package main

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedFrontend(t *testing.T) {
	sub := frontend()
	require.NotNil(t, sub)

	page, err := fs.ReadFile(sub, "index.html")
	require.NoError(t, err)
	assert.Contains(t, string(page), "/api/uploads")
	assert.Contains(t, string(page), "Dashboard Analisis Biaya Penyusutan Aset")
}
