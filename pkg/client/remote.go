package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/grovetools/sigscope/pkg/export"
	"github.com/grovetools/sigscope/pkg/signal"
)

// baseURL is the dummy host used for unix socket requests.
const baseURL = "http://unix"

// RemoteClient calls the daemon's HTTP API over a unix socket.
type RemoteClient struct {
	httpClient *http.Client
	socketPath string
}

// NewRemoteClient creates a client for the daemon listening on socketPath.
func NewRemoteClient(socketPath string) (*RemoteClient, error) {
	return &RemoteClient{
		httpClient: &http.Client{
			Transport: unixTransport(socketPath),
			Timeout:   10 * time.Second,
		},
		socketPath: socketPath,
	}, nil
}

func unixTransport(socketPath string) *http.Transport {
	return &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}
}

// do sends a request and decodes a JSON response into out (if non-nil).
// Non-2xx responses become errors carrying the daemon's message.
func (c *RemoteClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s", apiErr.Error)
		}
		return fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw, err = io.ReadAll(resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Signals returns the daemon's snapshot.
func (c *RemoteClient) Signals(ctx context.Context, query string) (signal.Snapshot, error) {
	path := "/api/signals"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var data []byte
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return export.Parse(data)
}

// Signal reads one signal live through the daemon's root.
func (c *RemoteClient) Signal(ctx context.Context, path string) (*SignalValue, error) {
	var v SignalValue
	if err := c.do(ctx, http.MethodGet, "/api/signal?path="+url.QueryEscape(path), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Changes returns up to limit changes, newest first.
func (c *RemoteClient) Changes(ctx context.Context, limit int) ([]Change, error) {
	var out []Change
	if err := c.do(ctx, http.MethodGet, "/api/changes?limit="+strconv.Itoa(limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClearChanges empties the daemon's change log.
func (c *RemoteClient) ClearChanges(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/changes", nil, nil)
}

// Expanded returns the expanded paths.
func (c *RemoteClient) Expanded(ctx context.Context) ([]string, error) {
	var out struct {
		Paths []string `json:"paths"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/expanded", nil, &out); err != nil {
		return nil, err
	}
	return out.Paths, nil
}

// Toggle flips the expanded state of path and returns the new state.
func (c *RemoteClient) Toggle(ctx context.Context, path string) (bool, error) {
	var out struct {
		Expanded bool `json:"expanded"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/expanded", map[string]string{"path": path}, &out); err != nil {
		return false, err
	}
	return out.Expanded, nil
}

// Patch pushes a patch object and returns the resulting changes.
func (c *RemoteClient) Patch(ctx context.Context, patch map[string]any) ([]Change, error) {
	var out struct {
		Changes []Change `json:"changes"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/patch", patch, &out); err != nil {
		return nil, err
	}
	return out.Changes, nil
}

// Export asks the daemon to write an export file and returns its path.
func (c *RemoteClient) Export(ctx context.Context, dir string) (string, error) {
	var out struct {
		Path string `json:"path"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/export", map[string]string{"dir": dir}, &out); err != nil {
		return "", err
	}
	return out.Path, nil
}

// Eval runs one console command in the daemon.
func (c *RemoteClient) Eval(ctx context.Context, input string) (string, error) {
	var out struct {
		Output string `json:"output"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/eval", map[string]string{"input": input}, &out); err != nil {
		return "", err
	}
	return out.Output, nil
}

// Config returns the daemon's running configuration.
func (c *RemoteClient) Config(ctx context.Context) (*RunningConfig, error) {
	var out RunningConfig
	if err := c.do(ctx, http.MethodGet, "/api/config", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IsRunning reports whether the daemon answers its health check.
func (c *RemoteClient) IsRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.do(ctx, http.MethodGet, "/health", nil, nil) == nil
}

// Stream subscribes to change events. The channel closes when ctx is done
// or the connection drops.
func (c *RemoteClient) Stream(ctx context.Context) (<-chan Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/stream", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}

	// Streaming needs its own client without a timeout.
	streamTransport := unixTransport(c.socketPath)
	streamClient := &http.Client{Transport: streamTransport}

	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	ch := make(chan Event, 10)
	go func() {
		defer resp.Body.Close()
		defer close(ch)
		defer streamTransport.CloseIdleConnections()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var ev Event
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
				continue
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// Close releases idle connections.
func (c *RemoteClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

var _ Client = (*RemoteClient)(nil)
