// Package remote talks to the simulation service that owns routing state.
//
// Every failure, whether the network, a non-2xx status or a response with
// success=false, is returned as a *TransportError so callers can keep their
// last good snapshot.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"netlens/internal/codec"
	"netlens/internal/logging"
)

// Operation names used in errors and metrics
const (
	OpFetchTopology  = "fetch_topology"
	OpSwitchTopology = "switch_topology"
	OpShortestPath   = "shortest_path"
)

// maxBody caps how much of a response is read
const maxBody = 4 << 20

// TransportError is a failed call to the simulation service
type TransportError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString("remote ")
	b.WriteString(e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Recorder observes call latency
type Recorder interface {
	ObserveRemote(op string, d time.Duration, err error)
}

// Client calls the simulation service
type Client struct {
	base     *url.URL
	http     *http.Client
	timeout  time.Duration
	log      logging.Logger
	recorder Recorder
}

// New creates a client for baseURL; timeout bounds every call
func New(baseURL string, timeout time.Duration, log logging.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid remote base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid remote base url %q: scheme must be http or https", baseURL)
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Client{
		base:    u,
		http:    &http.Client{},
		timeout: timeout,
		log:     log,
	}, nil
}

// WithRecorder sets the latency recorder
func (c *Client) WithRecorder(r Recorder) *Client {
	c.recorder = r
	return c
}

// BaseURL returns the service root
func (c *Client) BaseURL() string {
	return c.base.String()
}

type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}

func (e envelope) failed() bool {
	return e.Success != nil && !*e.Success
}

type networkResponse struct {
	envelope
	codec.RawTopology
}

// FetchTopology reads the service's current network. An empty key asks for
// whatever the service has loaded.
func (c *Client) FetchTopology(ctx context.Context, key string) (*codec.RawTopology, error) {
	path := "/api/rip/network"
	if key != "" {
		path += "?topology=" + url.QueryEscape(key)
	}

	var resp networkResponse
	if err := c.do(ctx, OpFetchTopology, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.failed() {
		return nil, &TransportError{Op: OpFetchTopology, Message: resp.Error}
	}
	raw := resp.RawTopology
	if raw.Key == "" {
		raw.Key = key
	}
	return &raw, nil
}

type switchRequest struct {
	Topology string      `json:"topology"`
	Data     switchGraph `json:"data"`
}

type switchGraph struct {
	Nodes []codec.RawNode `json:"nodes"`
	Links []codec.RawLink `json:"links"`
}

// SwitchTopology asks the service to load a topology. The service's answer is
// not authoritative; callers fetch again afterwards.
func (c *Client) SwitchTopology(ctx context.Context, key string, raw *codec.RawTopology) error {
	req := switchRequest{Topology: key}
	if raw != nil {
		req.Data = switchGraph{Nodes: raw.Nodes, Links: raw.Links}
	}

	var resp envelope
	if err := c.do(ctx, OpSwitchTopology, http.MethodPost, "/api/network/load-topology", req, &resp); err != nil {
		return err
	}
	if resp.failed() {
		return &TransportError{Op: OpSwitchTopology, Message: resp.Error}
	}
	return nil
}

// PathResult is a shortest path computed by the service
type PathResult struct {
	Source      string   `json:"source"`
	Destination string   `json:"destination"`
	Path        []string `json:"path"`
	Cost        float64  `json:"cost"`
	Found       bool     `json:"found"`
}

type pathRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

type pathResponse struct {
	envelope
	Path []string `json:"path"`
	Cost *float64 `json:"cost"`
}

// ShortestPath asks the service for the best route between two nodes. A
// missing path is not an error; Found is false.
func (c *Client) ShortestPath(ctx context.Context, source, destination string) (*PathResult, error) {
	var resp pathResponse
	err := c.do(ctx, OpShortestPath, http.MethodPost, "/api/rip/shortest-path",
		pathRequest{Source: source, Destination: destination}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.failed() {
		return nil, &TransportError{Op: OpShortestPath, Message: resp.Error}
	}

	res := &PathResult{Source: source, Destination: destination, Path: resp.Path}
	if resp.Cost != nil && *resp.Cost >= 0 && len(resp.Path) > 0 {
		res.Cost = *resp.Cost
		res.Found = true
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		if c.recorder != nil {
			c.recorder.ObserveRemote(op, time.Since(start), err)
		}
		if err != nil {
			c.log.Warn(ctx, "remote call failed", logging.String("op", op), logging.Err(err))
		} else {
			c.log.Debug(ctx, "remote call", logging.String("op", op),
				logging.Float("ms", float64(time.Since(start).Microseconds())/1000))
		}
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Message: "encode request", Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return &TransportError{Op: op, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logging.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		_ = json.Unmarshal(data, &env)
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &TransportError{Op: op, Status: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Message: "decode response", Err: err}
	}
	return nil
}
