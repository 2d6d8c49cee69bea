package toml

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/ibuy-cli/internal/ports/mocks"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJar(t *testing.T, cookiesPath string) *CookieJar {
	t.Helper()

	config := viper.New()
	config.Set(CookiesPathKey, cookiesPath)

	jar, err := NewCookieJar(config, nil)
	require.NoError(t, err)
	return jar
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func cookieNames(cookies []*http.Cookie) []string {
	names := make([]string, 0, len(cookies))
	for _, cookie := range cookies {
		names = append(names, cookie.Name)
	}
	return names
}

func TestCookieJarPersistsAcrossInstances(t *testing.T) {
	t.Parallel()

	cookiesPath := filepath.Join(t.TempDir(), "cookies.toml")
	api := mustURL(t, "http://localhost:8080/login")

	first := newTestJar(t, cookiesPath)
	first.SetCookies(api, []*http.Cookie{
		{Name: "access_token", Value: "a1", Path: "/", HttpOnly: true},
		{Name: "refresh_token", Value: "r1", Path: "/auth"},
	})

	second := newTestJar(t, cookiesPath)
	assert.Equal(t, []string{"access_token"}, cookieNames(second.Cookies(mustURL(t, "http://localhost:8080/chats"))))
	assert.ElementsMatch(t, []string{"access_token", "refresh_token"}, cookieNames(second.Cookies(mustURL(t, "http://localhost:8080/auth/refresh"))))

	// The port is not part of cookie scope, so the websocket dial gets them too.
	assert.Equal(t, []string{"access_token"}, cookieNames(second.Cookies(mustURL(t, "http://localhost:9090/ws"))))
}

func TestCookieJarReplacesAndDeletesByMaxAge(t *testing.T) {
	t.Parallel()

	jar := newTestJar(t, filepath.Join(t.TempDir(), "cookies.toml"))
	api := mustURL(t, "http://localhost:8080/")

	jar.SetCookies(api, []*http.Cookie{{Name: "access_token", Value: "old", Path: "/"}})
	jar.SetCookies(api, []*http.Cookie{{Name: "access_token", Value: "new", Path: "/"}})

	cookies := jar.Cookies(api)
	require.Len(t, cookies, 1)
	assert.Equal(t, "new", cookies[0].Value)

	jar.SetCookies(api, []*http.Cookie{{Name: "access_token", Path: "/", MaxAge: -1}})
	assert.Empty(t, jar.Cookies(api))
}

func TestCookieJarDropsExpiredCookies(t *testing.T) {
	t.Parallel()

	clock := mocks.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	jar := newTestJar(t, filepath.Join(t.TempDir(), "cookies.toml")).WithClock(clock)
	api := mustURL(t, "http://localhost:8080/")

	jar.SetCookies(api, []*http.Cookie{
		{Name: "short", Value: "1", Path: "/", MaxAge: 60},
		{Name: "session", Value: "2", Path: "/"},
	})
	assert.ElementsMatch(t, []string{"short", "session"}, cookieNames(jar.Cookies(api)))

	clock.Advance(2 * time.Minute)
	assert.Equal(t, []string{"session"}, cookieNames(jar.Cookies(api)))

	count, err := jar.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCookieJarScopesByHostAndSecure(t *testing.T) {
	t.Parallel()

	jar := newTestJar(t, filepath.Join(t.TempDir(), "cookies.toml"))

	jar.SetCookies(mustURL(t, "https://api.shop.example/login"), []*http.Cookie{
		{Name: "host_only", Value: "1", Path: "/"},
		{Name: "shared", Value: "2", Path: "/", Domain: ".shop.example"},
		{Name: "secure", Value: "3", Path: "/", Secure: true},
		{Name: "foreign", Value: "4", Path: "/", Domain: "other.example"},
	})

	assert.ElementsMatch(t, []string{"host_only", "shared", "secure"}, cookieNames(jar.Cookies(mustURL(t, "https://api.shop.example/x"))))
	assert.ElementsMatch(t, []string{"host_only", "shared"}, cookieNames(jar.Cookies(mustURL(t, "http://api.shop.example/x"))))
	assert.Equal(t, []string{"shared"}, cookieNames(jar.Cookies(mustURL(t, "https://ws.shop.example/ws"))))
	assert.Empty(t, jar.Cookies(mustURL(t, "https://other.example/")))
}

func TestCookieJarLongestPathFirst(t *testing.T) {
	t.Parallel()

	jar := newTestJar(t, filepath.Join(t.TempDir(), "cookies.toml"))
	api := mustURL(t, "http://localhost/")

	jar.SetCookies(api, []*http.Cookie{
		{Name: "root", Value: "1", Path: "/"},
		{Name: "chat", Value: "2", Path: "/chat"},
	})

	assert.Equal(t, []string{"chat", "root"}, cookieNames(jar.Cookies(mustURL(t, "http://localhost/chat/messages"))))
	assert.Equal(t, []string{"root"}, cookieNames(jar.Cookies(mustURL(t, "http://localhost/chats"))))
}

func TestCookieJarClear(t *testing.T) {
	t.Parallel()

	jar := newTestJar(t, filepath.Join(t.TempDir(), "cookies.toml"))
	api := mustURL(t, "http://localhost:8080/")
	jar.SetCookies(api, []*http.Cookie{{Name: "access_token", Value: "a", Path: "/"}})

	require.NoError(t, jar.Clear(context.Background()))
	assert.Empty(t, jar.Cookies(api))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, errors.Is(jar.Clear(ctx), context.Canceled))
}

func TestCookieJarWorksWithHTTPClient(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok", Path: "/"})
			return
		}
		cookie, err := r.Cookie("access_token")
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(cookie.Value))
	}))
	t.Cleanup(server.Close)

	client := &http.Client{Jar: newTestJar(t, filepath.Join(t.TempDir(), "cookies.toml"))}

	resp, err := client.Post(server.URL+"/login", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	_ = resp.Body.Close()

	resp, err = client.Get(server.URL + "/auth/session")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCookieJarCreatesDefaultPathAndEnforcesPermissions(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	jar, err := NewCookieJar(viper.New(), nil)
	require.NoError(t, err)

	jar.SetCookies(mustURL(t, "http://localhost:8080/"), []*http.Cookie{{Name: "access_token", Value: "a", Path: "/"}})

	cookiesPath := filepath.Join(homeDir, ".ibuy", "cookies.toml")
	assert.Equal(t, cookiesPath, jar.Path())
	info, err := os.Stat(cookiesPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(cookiesPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version = 1")
}

func TestCookieJarMalformedFileYieldsNoCookies(t *testing.T) {
	t.Parallel()

	cookiesPath := filepath.Join(t.TempDir(), "cookies.toml")
	require.NoError(t, os.WriteFile(cookiesPath, []byte("cookies = ["), 0o600))

	jar := newTestJar(t, cookiesPath)
	assert.Empty(t, jar.Cookies(mustURL(t, "http://localhost:8080/")))

	_, err := jar.Len(context.Background())
	assert.ErrorContains(t, err, "decode cookies file")
}

func TestCookieJarFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	cookiesPath := filepath.Join(t.TempDir(), "cookies.toml")
	require.NoError(t, os.WriteFile(cookiesPath, []byte("version = 999\n\ncookies = []\n"), 0o600))

	_, err := newTestJar(t, cookiesPath).Len(context.Background())
	assert.ErrorContains(t, err, "unsupported cookies schema version")
}

func TestCookieJarConcurrentWritesAcrossInstances(t *testing.T) {
	t.Parallel()

	cookiesPath := filepath.Join(t.TempDir(), "cookies.toml")
	jarA := newTestJar(t, cookiesPath)
	jarB := newTestJar(t, cookiesPath)
	api := mustURL(t, "http://localhost/")

	const perJar = 50
	var wg sync.WaitGroup
	wg.Add(2)
	write := func(jar *CookieJar, prefix string) {
		defer wg.Done()
		for i := 0; i < perJar; i++ {
			jar.SetCookies(api, []*http.Cookie{{Name: prefix + strings.Repeat("x", i+1), Value: "v", Path: "/"}})
		}
	}
	go write(jarA, "a")
	go write(jarB, "b")
	wg.Wait()

	count, err := jarA.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, perJar*2, count)
}

func TestCookieJarRejectsPublicSuffixDomain(t *testing.T) {
	t.Parallel()

	jar := newTestJar(t, filepath.Join(t.TempDir(), "cookies.toml"))

	jar.SetCookies(mustURL(t, "https://shop.co.uk/login"), []*http.Cookie{
		{Name: "supercookie", Value: "1", Path: "/", Domain: "co.uk"},
		{Name: "shared", Value: "2", Path: "/", Domain: ".shop.co.uk"},
	})

	assert.Equal(t, []string{"shared"}, cookieNames(jar.Cookies(mustURL(t, "https://shop.co.uk/"))))
	assert.Empty(t, jar.Cookies(mustURL(t, "https://other.co.uk/")))

	count, err := jar.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCookieJarServesWebsocketURLs(t *testing.T) {
	t.Parallel()

	jar := newTestJar(t, filepath.Join(t.TempDir(), "cookies.toml"))
	jar.SetCookies(mustURL(t, "https://api.shop.example/login"), []*http.Cookie{
		{Name: "access_token", Value: "a", Path: "/", Secure: true},
	})

	assert.Equal(t, []string{"access_token"}, cookieNames(jar.Cookies(mustURL(t, "wss://api.shop.example/ws"))))
	assert.Empty(t, jar.Cookies(mustURL(t, "ws://api.shop.example/ws")))
}
