package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// Header returns the first value of the named header, matched
// case-insensitively, or "" when absent.
func (r *Response) Header(key string) string {
	return r.Headers.Get(key)
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType(), "application/json")
}

// Query evaluates a gjson path against a JSON body.
func (r *Response) Query(path string) (string, bool) {
	if !gjson.ValidBytes(r.Body) {
		return "", false
	}
	res := gjson.GetBytes(r.Body, path)
	return res.String(), res.Exists()
}

// PrettyBody indents JSON bodies for display and returns other bodies as is.
func (r *Response) PrettyBody() string {
	if len(r.Body) > 0 && gjson.ValidBytes(r.Body) {
		return gjson.GetBytes(r.Body, "@pretty").Raw
	}
	return string(r.Body)
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
