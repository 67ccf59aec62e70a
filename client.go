package moreremesas

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/ma314smith/signedxml"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultBasePath is the path of the provider's homologation (sandbox) installation.
const DefaultBasePath = "/HmgChile16"

// Client talks to the provider SOAP API. It is safe for concurrent use and
// is supposed to be shared between goroutines: they share one access token.
type Client struct {
	url        string
	opts       Options
	httpClient *http.Client
	transport  *transport
	tokens     *tokenManager
	metrics    *metrics
	logger     *slog.Logger

	certIssuer string
	certSerial string
}

// Options defines the possible options to pass to a client
type Options struct {
	// Username and Password are the provider login credentials. Mandatory.
	Username string
	Password string

	// BasePath is prepended to every operation path. Defaults to DefaultBasePath.
	BasePath string

	// Timeout bounds each HTTP attempt. Defaults to 30s.
	Timeout time.Duration

	// MaxAttempts bounds the attempts of one call, the first one included. Defaults to 4.
	MaxAttempts int

	// Backoff is the wait before the first retry; it doubles on every retry
	// up to MaxBackoff. Defaults to 500ms and 10s.
	Backoff    time.Duration
	MaxBackoff time.Duration

	// TokenSafetyMargin refreshes the access token this long before its DueDate. Defaults to 60s.
	TokenSafetyMargin time.Duration

	// TokenRejectedCodes are provider fault codes meaning the access token
	// was refused. Such a call re-authenticates and is replayed once.
	TokenRejectedCodes []string

	// HTTPClient replaces the default client. Timeout and Certificate are then ignored.
	HTTPClient *http.Client

	// Certificate enables mutual TLS and signs every envelope with a
	// WS-Security signature. Optional.
	Certificate *tls.Certificate

	// VerifySignature validates the signature references before sending. Use it only for development
	VerifySignature bool

	// UserAgent is sent with every request.
	UserAgent string

	// Logger receives structured logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Registerer receives the client metrics. Optional.
	Registerer prometheus.Registerer

	// Debug logs scrubbed request and response bodies. Use it only for development
	Debug bool
}

func (opts *Options) applyDefaults() {
	if opts.BasePath == "" {
		opts.BasePath = DefaultBasePath
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 4
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 10 * time.Second
	}
	if opts.TokenSafetyMargin <= 0 {
		opts.TokenSafetyMargin = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "moreremesas-go/1.0"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
}

func (opts Options) validate() error {
	var c checker
	c.require("Username", opts.Username)
	c.require("Password", opts.Password)
	if opts.Certificate != nil {
		c.expect("Certificate", len(opts.Certificate.Certificate) > 0 && opts.Certificate.PrivateKey != nil)
	}
	return c.err("new")
}

func (opts Options) getHTTPClient() *http.Client {
	if opts.HTTPClient != nil {
		return opts.HTTPClient
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if opts.Certificate != nil {
		tlsConfig.Certificates = []tls.Certificate{*opts.Certificate}
	}

	return &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			TLSClientConfig:     tlsConfig,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}
}

// New creates a new Client for host, e.g. "https://www.moresistemas.com:7002".
func New(host string, opts Options) (*Client, error) {
	if strings.TrimSpace(host) == "" {
		return nil, validationError("new", "host")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.applyDefaults()

	url := strings.TrimRight(host, "/")
	if base := strings.Trim(opts.BasePath, "/"); base != "" {
		url += "/" + base
	}

	c := &Client{
		url:        url,
		opts:       opts,
		httpClient: opts.getHTTPClient(),
		metrics:    newMetrics(opts.Registerer),
		logger:     opts.Logger.With("component", "moreremesas"),
	}

	if opts.Certificate != nil {
		cert, err := x509.ParseCertificate(opts.Certificate.Certificate[0])
		if err != nil {
			return nil, &Error{Kind: KindValidation, Op: "new", Message: "invalid client certificate", Fields: []string{"Certificate"}, Err: err}
		}
		c.certIssuer, c.certSerial = cert.Issuer.String(), cert.SerialNumber.String()
	}

	c.transport = &transport{
		client:      c.httpClient,
		baseURL:     c.url,
		userAgent:   opts.UserAgent,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		maxBackoff:  opts.MaxBackoff,
		debug:       opts.Debug,
		logger:      c.logger,
		metrics:     c.metrics,
		sleep:       sleepContext,
	}
	c.tokens = newTokenManager(c.login, opts.TokenSafetyMargin, c.metrics, c.logger)

	return c, nil
}

// buildEnvelope builds the envelope for the request. token is empty for the auth call.
func (c *Client) buildEnvelope(op operation, p params, token string) *envelope {
	env := &envelope{
		Soap: soapNS,
		MMT:  mmtNS,
		Body: body{Call: call{operation: op.action, wrapper: op.wrapper, params: p}},
	}

	if token != "" {
		env.Header.Auth = &authHeader{AccessToken: token}
	}

	if c.opts.Certificate != nil {
		env.Wsu = wsuNS
		env.Body.ID = generateID("id")
		env.Header.Security = c.signatureTemplate(env.Body.ID)
	}

	return env
}

func (c *Client) signatureTemplate(bodyID string) *headerSecurity {
	sig := &headerSignature{
		ID:    generateID("SIG"),
		Xmlns: dsigNS,
	}
	sig.SignedInfo.CanonicalizationMethod.Algorithm = c14nAlg
	sig.SignedInfo.SignatureMethod.Algorithm = "http://www.w3.org/2000/09/xmldsig#rsa-sha1"
	sig.SignedInfo.Reference.URI = "#" + bodyID
	sig.SignedInfo.Reference.Transforms.Transform.Algorithm = c14nAlg
	sig.SignedInfo.Reference.DigestMethod.Algorithm = "http://www.w3.org/2000/09/xmldsig#sha1"

	sig.KeyInfo.ID = generateID("KI")
	data := &sig.KeyInfo.SecurityTokenReference.X509Data
	data.X509IssuerSerial.X509IssuerName = c.certIssuer
	data.X509IssuerSerial.X509SerialNumber = c.certSerial
	data.X509Certificate = base64.StdEncoding.EncodeToString(c.opts.Certificate.Certificate[0])

	return &headerSecurity{Wsse: wsseNS, Signature: sig}
}

// marshal renders the envelope, signing it when a certificate is configured.
func (c *Client) marshal(op operation, p params, token string) ([]byte, error) {
	xmlBytes, err := xml.Marshal(c.buildEnvelope(op, p, token))
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: "cannot encode envelope", Err: err}
	}

	if c.opts.Certificate == nil {
		return append([]byte(xmlProlog), xmlBytes...), nil
	}

	signer, err := signedxml.NewSigner(string(xmlBytes))
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: "preparing signature", Err: err}
	}

	signedXML, err := signer.Sign(c.opts.Certificate.PrivateKey)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: "signing envelope", Err: err}
	}

	if c.opts.VerifySignature {
		validator, err := signedxml.NewValidator(signedXML)
		if err != nil {
			return nil, &Error{Kind: KindValidation, Message: "error validating signature", Err: err}
		}

		if _, err := validator.ValidateReferences(); err != nil {
			return nil, &Error{Kind: KindValidation, Message: "error validating signature", Err: err}
		}
	}

	return []byte(xmlProlog + signedXML), nil
}

// login performs the bootstrap auth call. It carries no access token.
func (c *Client) login(ctx context.Context) (*session, error) {
	var p params
	p.add("LoginUser", c.opts.Username)
	p.add("LoginPass", c.opts.Password)

	node, err := c.exchange(ctx, opAuth, p, "")
	if err != nil {
		return nil, err
	}

	s := &session{token: node.StringAt("AccessToken"), doc: node}
	if s.token == "" {
		return nil, &Error{Kind: KindServer, Message: "AccessToken missing from auth response"}
	}

	if due, ok := parseDueDate(node.StringAt("DueDate")); ok {
		s.due = due
	} else {
		c.logger.Warn("auth response without usable DueDate, keeping token until rejected",
			"due_date", node.StringAt("DueDate"))
	}

	return s, nil
}

// call runs one authenticated operation: token, envelope, transport, parser.
func (c *Client) call(ctx context.Context, op operation, p params) (*Node, error) {
	node, err := c.do(ctx, op, p)
	if err != nil {
		err = withOp(err, op.name)
	}
	c.metrics.recordRequest(op.name, err)
	return node, err
}

func (c *Client) do(ctx context.Context, op operation, p params) (*Node, error) {
	replayed := false
	for {
		token, err := c.tokens.ensure(ctx)
		if err != nil {
			return nil, err
		}

		node, err := c.exchange(ctx, op, p, token)
		if err != nil && !replayed && c.tokenRejected(err) {
			c.logger.Info("access token rejected, re-authenticating", "operation", op.name)
			c.tokens.invalidate(token)
			replayed = true
			continue
		}
		return node, err
	}
}

func (c *Client) exchange(ctx context.Context, op operation, p params, token string) (*Node, error) {
	payload, err := c.marshal(op, p, token)
	if err != nil {
		return nil, err
	}

	data, err := c.transport.post(ctx, op, payload)
	if err != nil {
		return nil, err
	}

	return parseResponse(op.schema, data)
}

func (c *Client) tokenRejected(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindAuth:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case KindFault:
		return slices.Contains(c.opts.TokenRejectedCodes, e.Code)
	}
	return false
}

// ListOperations lists the operations published in the WSDL of the named
// facade operation, e.g. "order_calc".
func (c *Client) ListOperations(ctx context.Context, name string) ([]string, error) {
	op, ok := lookupOperation(name)
	if !ok {
		return nil, validationError("list_operations", "operation")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+op.path+"?wsdl", nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: "list_operations", Err: err}
	}

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: "list_operations", Message: "request failed", Err: err}
	}

	defer func() { _ = response.Body.Close() }()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: "list_operations", Status: response.StatusCode, Err: err}
	}

	if response.StatusCode != http.StatusOK {
		return nil, &Error{Kind: KindTransport, Op: "list_operations", Status: response.StatusCode, Message: http.StatusText(response.StatusCode)}
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &Error{Kind: KindServer, Op: "list_operations", Message: "invalid WSDL", Err: err}
	}

	result := make([]string, 0)
	for _, el := range doc.FindElements("//binding/operation") {
		result = append(result, el.SelectAttrValue("name", ""))
	}

	return result, nil
}

var _ ClientIface = &Client{}
