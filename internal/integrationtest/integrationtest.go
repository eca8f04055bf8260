// Package integrationtest provides helpers used in end-to-end tests of the HTTP server.
package integrationtest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/cmd/httpserver"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// SetupServer returns a test server with an empty ledger.
func SetupServer(t *testing.T) *httpserver.Server {
	t.Helper()

	config := configpkg.Config{
		ServerAddress:    "127.0.0.1:0",
		Environment:      "test",
		Mode:             configpkg.ModeDesk,
		MetricsNamespace: "test",
	}

	server, err := httpserver.New(zerolog.Nop(), config)
	if err != nil {
		t.Fatalf(`httpserver.New(logger, config) returned error: %v`, err)
	}

	return server
}

// Do sends a JSON request to the server and decodes the JSON response into out
// when out is not nil. It returns the status code.
func Do(t *testing.T, server http.Handler, method, url string, body, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Encoding request body error: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("Creating request error: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if out != nil && w.Body.Len() > 0 {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("Decoding response body error: %v", err)
		}
	}

	return w.Code
}
