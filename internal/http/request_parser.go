package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// bodyParser reads a JSON object once and hands out its scalar fields as
// strings, so clients may send numbers either quoted or bare.
type bodyParser struct {
	data map[string]any
}

func parseBody(r *http.Request) (*bodyParser, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	p := &bodyParser{data: make(map[string]any)}
	if len(body) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(body, &p.data); err != nil {
		return nil, fmt.Errorf("parse body: %w", err)
	}
	return p, nil
}

// Has reports whether the field was present in the payload.
func (p *bodyParser) Has(key string) bool {
	_, ok := p.data[key]
	return ok
}

// Get returns the field as a trimmed string, tolerating numeric and boolean
// JSON values.
func (p *bodyParser) Get(key string) string {
	v, ok := p.data[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(stringValue(v))
}

// GetInt returns the field as an int; absent or unparseable values yield 0.
func (p *bodyParser) GetInt(key string) int {
	n, _ := strconv.Atoi(p.Get(key))
	return n
}

// GetInt64 returns the field as an int64; absent or unparseable values yield 0.
func (p *bodyParser) GetInt64(key string) int64 {
	n, _ := strconv.ParseInt(p.Get(key), 10, 64)
	return n
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
