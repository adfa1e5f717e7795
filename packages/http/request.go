package http

import (
	"time"

	"github.com/abdul-hamid-achik/testlang/packages/codegen"
)

type Header = codegen.Header

type Request struct {
	Method    string
	URL       string
	Headers   []Header
	Body      string
	SendsBody bool
	Timeout   time.Duration
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method: method,
		URL:    requestURL,
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers = append(r.Headers, Header{Name: key, Value: value})
	return r
}

// SetBody sets the payload and marks the request as carrying one.
func (r *Request) SetBody(body string) *Request {
	r.Body = body
	r.SendsBody = true
	return r
}

// FromPlan builds a request from a lowered request plan.
func FromPlan(p *codegen.RequestPlan) *Request {
	return &Request{
		Method:    p.Method,
		URL:       p.URL,
		Headers:   p.Headers,
		Body:      p.Body,
		SendsBody: p.SendsBody,
	}
}
