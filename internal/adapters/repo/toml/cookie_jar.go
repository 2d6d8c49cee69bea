// Package toml persists the session cookie jar to a TOML file so sign-in
// survives between CLI invocations.
package toml

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bnema/ibuy-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

const (
	CookiesPathKey    = "cookies.path"
	cookiesFileMode   = 0o600
	cookiesDirMode    = 0o700
	cookiesConfigDir  = ".ibuy"
	cookiesConfigFile = "cookies.toml"
	tempFilePattern   = ".cookies-*.toml.tmp"
)

// CookieJar is an http.CookieJar backed by a TOML file. Every call re-reads
// the file, so several processes sharing the path see each other's writes.
// Domain and path matching is delegated to net/http/cookiejar with the
// public suffix list.
type CookieJar struct {
	path   string
	mu     *sync.RWMutex
	clock  ports.Clock
	logger *zap.Logger
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.CookieStore = (*CookieJar)(nil)

func NewCookieJar(cfg *viper.Viper, logger *zap.Logger) (*CookieJar, error) {
	if cfg == nil {
		cfg = viper.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cookiesPath := cfg.GetString(CookiesPathKey)
	if cookiesPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cookiesPath = filepath.Join(homeDir, cookiesConfigDir, cookiesConfigFile)
	}

	cookiesPath, err := normalizePath(cookiesPath)
	if err != nil {
		return nil, err
	}

	return &CookieJar{
		path:   cookiesPath,
		mu:     lockForPath(cookiesPath),
		clock:  ports.SystemClock{},
		logger: logger,
	}, nil
}

// WithClock replaces the clock used for expiry checks.
func (j *CookieJar) WithClock(clock ports.Clock) *CookieJar {
	j.clock = clock
	return j
}

func (j *CookieJar) Path() string {
	return j.path
}

// SetCookies stores cookies received from u. Failures are logged because
// http.CookieJar has no error return.
func (j *CookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	if err := j.setCookies(u, cookies); err != nil {
		j.logger.Warn("persist cookies", zap.String("host", u.Host), zap.Error(err))
	}
}

func (j *CookieJar) setCookies(u *url.URL, cookies []*http.Cookie) error {
	if u.Host == "" {
		return errors.New("cookie url host is empty")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := j.readSchema()
	if err != nil {
		return err
	}

	now := j.clock.Now()
	byKey := make(map[string]int, len(file.Cookies))
	for i, entry := range file.Cookies {
		byKey[entry.key()] = i
	}

	removed := map[int]bool{}
	for _, cookie := range cookies {
		entry, ok := newEntry(u, cookie, now)
		if !ok {
			j.logger.Debug("cookie rejected", zap.String("host", u.Host), zap.String("name", cookieName(cookie)))
			continue
		}

		idx, exists := byKey[entry.key()]
		expired := isExpired(entry, now)
		switch {
		case expired && exists:
			removed[idx] = true
		case expired:
		case exists:
			entry.Created = file.Cookies[idx].Created
			file.Cookies[idx] = entry
			delete(removed, idx)
		default:
			byKey[entry.key()] = len(file.Cookies)
			file.Cookies = append(file.Cookies, entry)
		}
	}

	kept := file.Cookies[:0]
	for i, entry := range file.Cookies {
		if removed[i] || isExpired(entry, now) {
			continue
		}
		kept = append(kept, entry)
	}
	file.Cookies = kept

	return j.writeSchema(file)
}

// Cookies returns the unexpired cookies that should be sent to u, longest
// path first.
func (j *CookieJar) Cookies(u *url.URL) []*http.Cookie {
	cookies, err := j.cookies(u)
	if err != nil {
		j.logger.Warn("load cookies", zap.String("host", u.Host), zap.Error(err))
		return nil
	}
	return cookies
}

// cookies replays the stored entries, in creation order, into an in-memory
// jar and lets it do the RFC 6265 matching.
func (j *CookieJar) cookies(u *url.URL) ([]*http.Cookie, error) {
	if u.Host == "" {
		return nil, errors.New("cookie url host is empty")
	}

	j.mu.RLock()
	file, err := j.readSchema()
	j.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	jar, err := newMemoryJar()
	if err != nil {
		return nil, err
	}

	now := j.clock.Now()
	for _, entry := range file.Cookies {
		if isExpired(entry, now) {
			continue
		}
		origin, err := entry.originURL()
		if err != nil {
			j.logger.Debug("skip stored cookie", zap.String("name", entry.Name), zap.Error(err))
			continue
		}
		jar.SetCookies(origin, []*http.Cookie{entry.cookie()})
	}

	return jar.Cookies(httpURL(u)), nil
}

// Clear drops every stored cookie.
func (j *CookieJar) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	return j.writeSchema(fileSchema{})
}

// Len reports how many unexpired cookies are stored.
func (j *CookieJar) Len(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	file, err := j.readSchema()
	if err != nil {
		return 0, err
	}

	now := j.clock.Now()
	count := 0
	for _, entry := range file.Cookies {
		if !isExpired(entry, now) {
			count++
		}
	}
	return count, nil
}

// newEntry converts a received cookie into its stored form. The cookie is
// first set on a throwaway jar; if that jar does not hand it back for its own
// scope, the domain or path was not acceptable for u.
func newEntry(u *url.URL, cookie *http.Cookie, now time.Time) (cookieSchema, bool) {
	if cookie == nil || cookie.Name == "" {
		return cookieSchema{}, false
	}

	origin := httpURL(u)
	entry := cookieSchema{
		Name:     cookie.Name,
		Value:    cookie.Value,
		Origin:   (&url.URL{Scheme: origin.Scheme, Host: origin.Host, Path: origin.Path}).String(),
		Domain:   strings.TrimPrefix(strings.ToLower(cookie.Domain), "."),
		Path:     cookie.Path,
		Secure:   cookie.Secure,
		HTTPOnly: cookie.HttpOnly,
		SameSite: sameSite(cookie.SameSite),
		Created:  formatTime(now),
	}
	if !strings.HasPrefix(entry.Path, "/") {
		entry.Path = defaultPath(origin.Path)
	}

	switch {
	case cookie.MaxAge < 0:
		entry.Expires = formatTime(now.Add(-time.Second))
	case cookie.MaxAge > 0:
		entry.Expires = formatTime(now.Add(time.Duration(cookie.MaxAge) * time.Second))
	case !cookie.Expires.IsZero():
		entry.Expires = formatTime(cookie.Expires)
	}

	jar, err := newMemoryJar()
	if err != nil {
		return cookieSchema{}, false
	}
	jar.SetCookies(origin, []*http.Cookie{entry.cookie()})

	scope := &url.URL{Scheme: "https", Host: entry.scope(), Path: entry.Path}
	for _, got := range jar.Cookies(scope) {
		if got.Name == entry.Name {
			return entry, true
		}
	}
	return cookieSchema{}, false
}

func newMemoryJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return jar, nil
}

// httpURL maps websocket schemes onto their http counterparts; the memory
// jar ignores any other scheme.
func httpURL(u *url.URL) *url.URL {
	mapped := *u
	switch strings.ToLower(u.Scheme) {
	case "wss", "https":
		mapped.Scheme = "https"
	default:
		mapped.Scheme = "http"
	}
	return &mapped
}

func defaultPath(requestPath string) string {
	if !strings.HasPrefix(requestPath, "/") {
		return "/"
	}
	return path.Dir(requestPath)
}

func cookieName(cookie *http.Cookie) string {
	if cookie == nil {
		return ""
	}
	return cookie.Name
}

func isExpired(entry cookieSchema, now time.Time) bool {
	if entry.Expires == "" {
		return false
	}
	return !parseTime(entry.Expires).After(now)
}

func sameSite(mode http.SameSite) string {
	switch mode {
	case http.SameSiteLaxMode:
		return "lax"
	case http.SameSiteStrictMode:
		return "strict"
	case http.SameSiteNoneMode:
		return "none"
	default:
		return ""
	}
}

func parseSameSite(raw string) http.SameSite {
	switch raw {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}

func (j *CookieJar) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read cookies file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode cookies file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (j *CookieJar) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(j.path), cookiesDirMode); err != nil {
		return fmt.Errorf("create cookies directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode cookies file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(j.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp cookies file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp cookies file: %w", err)
	}

	if err := tempFile.Chmod(cookiesFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp cookies file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp cookies file: %w", err)
	}

	if err := os.Rename(tempName, j.path); err != nil {
		return fmt.Errorf("replace cookies file: %w", err)
	}

	cleanup = false

	if err := os.Chmod(j.path, cookiesFileMode); err != nil {
		return fmt.Errorf("chmod cookies file: %w", err)
	}

	return nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve cookies path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339Nano)
}
