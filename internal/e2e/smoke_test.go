package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	backend := newBackend(t)

	stdout, stderr, err := runIbuy(t, binaryPath, home, backend.URL, "categories")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Electronics")

	_, stderr, err = runIbuy(t, binaryPath, home, backend.URL,
		"login",
		"--email", "ada@example.com",
		"--password", "secret123",
	)
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, stderr, err = runIbuy(t, binaryPath, home, backend.URL, "whoami")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Signed in as Ada Lovelace")
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/category", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[int]string{1: "Electronics"})
	})
	r.Post("/login", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok", Path: "/"})
		_, _ = w.Write([]byte(`{"userId":"u1","firstName":"Ada","lastName":"Lovelace"}`))
	})
	r.Get("/auth/session", func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("session"); err != nil || cookie.Value != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"userId":"u1","name":"Ada","lastName":"Lovelace"}`))
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "ibuy-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/ibuy")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build ibuy binary: %s", string(output))
	return binaryPath
}

func runIbuy(t *testing.T, binaryPath, home, apiURL string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(),
		"HOME="+home,
		"IBUY_API_URL="+apiURL+"/",
		"IBUY_WS_URL=ws"+strings.TrimPrefix(apiURL, "http")+"/ws?user_id=",
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
