package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Handler serves API Gateway proxy events through an http.Handler so the
// Lambda deployment and the standalone server share one router.
type Handler struct {
	router http.Handler
}

func NewHandler(router http.Handler) (*Handler, error) {
	if router == nil {
		return nil, errors.New("handler: router must not be nil")
	}
	return &Handler{router: router}, nil
}

func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := toHTTPRequest(ctx, event)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	w := newResponseBuffer()
	h.router.ServeHTTP(w, req)
	return w.proxyResponse(), nil
}

func toHTTPRequest(ctx context.Context, event events.APIGatewayProxyRequest) (*http.Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("handler: decode base64 body: %w", err)
		}
		body = decoded
	}

	path := event.Path
	if path == "" {
		path = "/"
	}
	target := &url.URL{Path: path, RawQuery: queryString(event)}

	method := event.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("handler: build request: %w", err)
	}

	for k, v := range event.Headers {
		req.Header.Set(k, v)
	}
	for k, values := range event.MultiValueHeaders {
		req.Header.Del(k)
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
	}
	if ip := event.RequestContext.Identity.SourceIP; ip != "" {
		req.RemoteAddr = ip
	}
	return req, nil
}

func queryString(event events.APIGatewayProxyRequest) string {
	values := url.Values{}
	for k, v := range event.QueryStringParameters {
		values.Set(k, v)
	}
	for k, vs := range event.MultiValueQueryStringParameters {
		values[k] = append([]string(nil), vs...)
	}
	return values.Encode()
}

type responseBuffer struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: http.Header{}}
}

func (w *responseBuffer) Header() http.Header {
	return w.header
}

func (w *responseBuffer) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *responseBuffer) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(p)
}

func (w *responseBuffer) proxyResponse() events.APIGatewayProxyResponse {
	status := w.status
	if status == 0 {
		status = http.StatusOK
	}

	single := make(map[string]string, len(w.header))
	multi := make(map[string][]string, len(w.header))
	for k, values := range w.header {
		if len(values) == 0 {
			continue
		}
		single[k] = strings.Join(values, ", ")
		multi[k] = append([]string(nil), values...)
	}

	return events.APIGatewayProxyResponse{
		StatusCode:        status,
		Headers:           single,
		MultiValueHeaders: multi,
		Body:              w.body.String(),
	}
}
