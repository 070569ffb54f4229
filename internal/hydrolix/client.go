// Package hydrolix is a thin client for the Hydrolix query API. Hydrolix
// exposes a ClickHouse-compatible HTTP endpoint; queries use ClickHouse
// dialect SQL and results are requested in JSON format.
package hydrolix

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds connection settings for a Hydrolix cluster.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
}

// ResultSet is the tabular result of one query. Columns preserves the
// column order reported by the server; Rows map column name to value.
type ResultSet struct {
	Columns []string
	Rows    []map[string]any
}

// Querier executes read-only SQL against the time-series engine.
type Querier interface {
	Query(ctx context.Context, sql string) (*ResultSet, error)
	ListTables(ctx context.Context) (*ResultSet, error)
}

// Client talks to the Hydrolix query head over HTTPS.
type Client struct {
	baseURL string
	user    string
	pass    string
	client  *http.Client
}

// New creates a client for the given cluster config.
func New(cfg Config) *Client {
	port := cfg.Port
	if port == "" {
		port = "8088"
	}
	return &Client{
		baseURL: fmt.Sprintf("https://%s:%s/query", cfg.Host, port),
		user:    cfg.User,
		pass:    cfg.Password,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// jsonResponse is the ClickHouse JSON output format.
type jsonResponse struct {
	Meta []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"meta"`
	Data []map[string]any `json:"data"`
	Rows int              `json:"rows"`
}

// Query executes a SELECT statement and returns its rows. Only SELECT and
// SHOW statements are accepted; the assistant never mutates telemetry.
func (c *Client) Query(ctx context.Context, sql string) (*ResultSet, error) {
	trimmed := strings.TrimSpace(sql)
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "SHOW") && !strings.HasPrefix(upper, "WITH") && !strings.HasPrefix(upper, "DESCRIBE") {
		return nil, fmt.Errorf("only read queries are allowed, got: %.40s", trimmed)
	}

	body := strings.NewReader(trimmed + " FORMAT JSON")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.SetBasicAuth(c.user, c.pass)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query error (status %d): %s", resp.StatusCode, truncateErr(string(raw)))
	}

	return parseResultSet(raw)
}

// ListTables inspects the schema: every non-system table with its database.
func (c *Client) ListTables(ctx context.Context) (*ResultSet, error) {
	return c.Query(ctx, "SELECT database, name FROM system.tables WHERE database NOT IN ('system', 'information_schema') ORDER BY database, name")
}

func parseResultSet(raw []byte) (*ResultSet, error) {
	var parsed jsonResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	rs := &ResultSet{Rows: parsed.Data}
	for _, col := range parsed.Meta {
		rs.Columns = append(rs.Columns, col.Name)
	}
	return rs, nil
}

func truncateErr(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 500 {
		return s[:500] + "..."
	}
	return s
}

// setBaseURL overrides the endpoint; used by tests to point at a local server.
func (c *Client) setBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	c.baseURL = u.String()
	return nil
}
