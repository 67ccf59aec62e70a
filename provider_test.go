package moreremesas

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// fakeProvider is an in-process provider. Handlers are keyed by operation
// path, e.g. opOrderCalc.path; the auth path answers with a fresh token by default.
type fakeProvider struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	calls    map[string]int
	bodies   map[string][]string
	headers  map[string][]http.Header
	tokens   int
	due      string
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	fp := &fakeProvider{
		t:        t,
		handlers: map[string]http.HandlerFunc{},
		calls:    map[string]int{},
		bodies:   map[string][]string{},
		headers:  map[string][]http.Header{},
		due:      time.Now().UTC().Add(time.Hour).Format("2006-01-02T15:04:05"),
	}
	fp.handlers[opAuth.path] = fp.authHandler

	fp.server = httptest.NewServer(http.HandlerFunc(fp.serve))
	t.Cleanup(fp.server.Close)

	return fp
}

func (fp *fakeProvider) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, DefaultBasePath)
	data, _ := io.ReadAll(r.Body)

	fp.mu.Lock()
	fp.calls[path]++
	fp.bodies[path] = append(fp.bodies[path], string(data))
	fp.headers[path] = append(fp.headers[path], r.Header.Clone())
	h := fp.handlers[path]
	fp.mu.Unlock()

	if h == nil {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (fp *fakeProvider) authHandler(w http.ResponseWriter, _ *http.Request) {
	fp.mu.Lock()
	fp.tokens++
	token := fmt.Sprintf("token-%d", fp.tokens)
	due := fp.due
	fp.mu.Unlock()

	writeSOAP(w, opAuth, `<ResponseCode>1000</ResponseCode><AccessToken>`+token+`</AccessToken><DueDate>`+due+`</DueDate>`)
}

func (fp *fakeProvider) handle(op operation, h http.HandlerFunc) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.handlers[op.path] = h
}

// respond makes op answer every call with a successful Response carrying inner.
func (fp *fakeProvider) respond(op operation, inner string) {
	fp.handle(op, func(w http.ResponseWriter, _ *http.Request) {
		writeSOAP(w, op, `<ResponseCode>1000</ResponseCode>`+inner)
	})
}

func (fp *fakeProvider) callCount(op operation) int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.calls[op.path]
}

func (fp *fakeProvider) lastBody(op operation) string {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	b := fp.bodies[op.path]
	if len(b) == 0 {
		return ""
	}
	return b[len(b)-1]
}

func (fp *fakeProvider) requestHeaders(op operation) []http.Header {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return append([]http.Header(nil), fp.headers[op.path]...)
}

func soapResponse(op operation, inner string) string {
	return `<?xml version="1.0" encoding="utf-8"?>` +
		`<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/">` +
		`<SOAP-ENV:Body><` + op.action + `Response xmlns="MMT"><Response>` + inner + `</Response></` + op.action + `Response>` +
		`</SOAP-ENV:Body></SOAP-ENV:Envelope>`
}

func soapFault(code, message string) string {
	return `<?xml version="1.0" encoding="utf-8"?>` +
		`<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/"><SOAP-ENV:Body>` +
		`<SOAP-ENV:Fault><faultcode>` + code + `</faultcode><faultstring>` + message + `</faultstring></SOAP-ENV:Fault>` +
		`</SOAP-ENV:Body></SOAP-ENV:Envelope>`
}

func writeSOAP(w http.ResponseWriter, op operation, inner string) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	_, _ = io.WriteString(w, soapResponse(op, inner))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient returns a client for fp that does not wait between retries.
func newTestClient(t *testing.T, fp *fakeProvider, mutate ...func(*Options)) *Client {
	t.Helper()

	opts := Options{
		Username:    "agent",
		Password:    "s3cret",
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
		MaxBackoff:  5 * time.Millisecond,
		Logger:      discardLogger(),
		Registerer:  prometheus.NewRegistry(),
	}
	for _, m := range mutate {
		m(&opts)
	}

	c, err := New(fp.server.URL, opts)
	require.NoError(t, err)

	c.transport.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return c
}

func testCertificate(t *testing.T) tls.Certificate {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(4242),
		Subject:      pkix.Name{CommonName: "agent"},
		Issuer:       pkix.Name{CommonName: "agent"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}
