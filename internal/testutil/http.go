package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/ehmughn/safelink-web-sub000/internal/app/system/auth"
	"github.com/google/uuid"
)

// TestIdentity returns a verified identity for handler tests.
func TestIdentity(name string) auth.Identity {
	return auth.Identity{
		UserID: uuid.NewString(),
		Name:   name,
		Email:  name + "@test.com",
	}
}

// AuthedRequest builds a request that already carries a verified
// identity, skipping token verification the same way the middleware
// would have populated it.
func AuthedRequest(method, target string, body io.Reader, id auth.Identity) *http.Request {
	r := httptest.NewRequest(method, target, body)
	return auth.WithIdentity(r, &id)
}
