// Web API transport for the organization service. Every message is one POST
// of a JSON envelope to {url}/api/execute; faults come back as non-2xx JSON
// bodies.
package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Connection implements dataverse.Service against a hosted environment.
type Connection struct {
	url    string
	token  string
	client *http.Client
	log    logrus.FieldLogger
}

// DefaultClient builds the HTTP client used when none is supplied. Block
// transfers move megabytes per call, so the timeout is generous.
func DefaultClient() *http.Client {
	return &http.Client{
		Timeout: 300 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

type Option func(*Connection)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(conn *Connection) {
		if c != nil {
			conn.client = c
		}
	}
}

// WithTimeout adjusts the per-request timeout on the default client.
func WithTimeout(d time.Duration) Option {
	return func(conn *Connection) {
		if d > 0 {
			conn.client.Timeout = d
		}
	}
}

func NewConnection(url, token string, logger logrus.FieldLogger, opts ...Option) *Connection {
	conn := &Connection{
		url:    strings.TrimRight(url, "/"),
		token:  token,
		client: DefaultClient(),
		log:    logger,
	}
	for _, opt := range opts {
		opt(conn)
	}
	return conn
}

// Execute sends req and decodes the response body into resp.
func (self *Connection) Execute(ctx context.Context, req dataverse.Request, resp interface{}) error {
	params, err := json.Marshal(req)
	if err != nil {
		return errors.Wrapf(err, "Failed to encode %s request", req.RequestName())
	}
	body, err := json.Marshal(dataverse.Envelope{
		RequestName: req.RequestName(),
		Parameters:  params,
	})
	if err != nil {
		return errors.Wrap(err, "Failed to encode request envelope")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, self.url+"/api/execute", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "Failed to build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if self.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+self.token)
	}

	httpResp, err := self.client.Do(httpReq)
	if err != nil {
		return errors.Wrapf(err, "%s request failed", req.RequestName())
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		return decodeFault(httpResp, req.RequestName())
	}

	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return errors.Wrapf(err, "Failed to decode %s response", req.RequestName())
	}
	return nil
}

// Destroy releases idle connections held by the transport.
func (self *Connection) Destroy() {
	self.client.CloseIdleConnections()
}

func decodeFault(httpResp *http.Response, reqName string) error {
	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return errors.Wrapf(err, "%s failed with status %s", reqName, httpResp.Status)
	}
	var fault dataverse.Fault
	if err := json.Unmarshal(raw, &fault); err != nil || fault.Code == "" {
		return errors.Errorf("%s failed with status %s: %s", reqName, httpResp.Status, raw)
	}
	return errors.Wrapf(&fault, "%s failed", reqName)
}
