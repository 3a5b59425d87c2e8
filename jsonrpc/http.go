package jsonrpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
)

const httpContentType = "application/json"

var _ Transport = &HTTPTransport{}

// HTTPTransport sends each request as an HTTP POST to the address URL.
type HTTPTransport struct {
	// HTTPClient is used for requests, http.DefaultClient if nil. Its
	// Timeout bounds every call.
	HTTPClient *http.Client
	// Header is added to every request (optional).
	Header http.Header
	// MaxContentLength is the response size limit (optional)
	MaxContentLength int64
}

func (t *HTTPTransport) Send(ctx context.Context, address string, request []byte) ([]byte, error) {
	req, err := http.NewRequest(http.MethodPost, address, bytes.NewReader(request))
	if err != nil {
		return nil, err
	}
	for key, values := range t.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", httpContentType)
	req.Header.Set("Accept", httpContentType)
	req = req.WithContext(ctx)

	client := t.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, HTTPRequestError{
			Response: resp,
			Reason:   fmt.Sprintf("bad status code: %d", resp.StatusCode),
		}
	}
	if t.MaxContentLength > 0 && resp.ContentLength > t.MaxContentLength {
		return nil, HTTPRequestError{
			Response: resp,
			Reason:   "response too large",
		}
	}

	if t.MaxContentLength <= 0 {
		return ioutil.ReadAll(resp.Body)
	}
	// Chunked replies carry no Content-Length, so read one byte past the
	// limit to tell a full body from an oversized one.
	body, err := ioutil.ReadAll(io.LimitReader(resp.Body, t.MaxContentLength+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > t.MaxContentLength {
		return nil, HTTPRequestError{
			Response: resp,
			Reason:   "response too large",
		}
	}
	return body, nil
}

// HTTPRequestError is used when RPC over HTTP encounters an error during transport.
type HTTPRequestError struct {
	Response *http.Response
	Reason   string
}

func (err HTTPRequestError) Error() string {
	return fmt.Sprintf("http rpc request error: %s", err.Reason)
}
