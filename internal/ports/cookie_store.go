package ports

import (
	"context"
	"net/http"
)

// CookieStore is the cookie jar shared by HTTP and realtime requests. It
// outlives the process so a session survives between commands.
type CookieStore interface {
	http.CookieJar
	Clear(ctx context.Context) error
}
