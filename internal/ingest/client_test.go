package ingest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stip-taxii-backend/internal/config"
	"stip-taxii-backend/pkg/logger"
)

func stageFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "push-test.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRegister(t *testing.T) {
	var gotCommunity, gotVia, gotContent, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/register", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotCommunity = r.FormValue("community")
		gotVia = r.FormValue("via")

		file, _, err := r.FormFile("stix_file")
		require.NoError(t, err)
		defer file.Close()
		body, err := io.ReadAll(file)
		require.NoError(t, err)
		gotContent = string(body)

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(config.IngestConfig{URL: srv.URL, APIKey: "k"}, logger.Nop())
	path := stageFile(t, "<stix/>")

	err := client.Register(context.Background(), path, "default-community", "taxii")
	require.NoError(t, err)
	assert.Equal(t, "default-community", gotCommunity)
	assert.Equal(t, "taxii", gotVia)
	assert.Equal(t, "<stix/>", gotContent)
	assert.Equal(t, "Bearer k", gotAuth)
}

func TestRegisterRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "duplicate package", http.StatusConflict)
	}))
	defer srv.Close()

	client := NewClient(config.IngestConfig{URL: srv.URL}, logger.Nop())

	err := client.Register(context.Background(), stageFile(t, "<stix/>"), "c", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 409")
}

func TestRegisterMissingFile(t *testing.T) {
	client := NewClient(config.IngestConfig{URL: "http://localhost:9"}, logger.Nop())

	err := client.Register(context.Background(), filepath.Join(t.TempDir(), "absent.xml"), "c", "v")
	assert.Error(t, err)
}
