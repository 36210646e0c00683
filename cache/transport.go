package cache

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"time"

	"go.uber.org/zap"
)

// Transport is an http.RoundTripper caching successful GET responses in a Store.
// Cache failures never fail the request.
type Transport struct {
	Base   http.RoundTripper // http.DefaultTransport when nil
	Store  Store
	TTL    time.Duration
	Logger *zap.Logger
}

// NewClient returns an http.Client caching responses in store for ttl.
func NewClient(store Store, ttl time.Duration, logger *zap.Logger) *http.Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &http.Client{Transport: &Transport{Store: store, TTL: ttl, Logger: logger}}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

func (t *Transport) logger() *zap.Logger {
	if t.Logger == nil {
		return zap.NewNop()
	}
	return t.Logger
}

// RoundTrip serves GET requests from the store when possible, and stores
// fresh 2xx responses.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.base().RoundTrip(req)
	}
	ctx := req.Context()
	key := fmt.Sprintf("http:%x", sha1.Sum([]byte(req.Method+" "+req.URL.String())))

	if content, ok, err := t.Store.Get(ctx, key); err != nil {
		t.logger().Warn("http cache read failed", zap.String("host", req.URL.Host), zap.Error(err))
	} else if ok {
		resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
		if err == nil {
			return resp, nil
		}
		t.logger().Warn("corrupted http cache entry", zap.String("host", req.URL.Host), zap.Error(err))
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}
	t.logger().Debug("http request",
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	// DumpResponse reads the body and replaces it with an in-memory copy.
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		t.logger().Warn("http cache dump failed", zap.Error(err))
		return resp, nil
	}
	if err := t.Store.Set(ctx, key, content, t.TTL); err != nil {
		t.logger().Warn("http cache write failed", zap.String("host", req.URL.Host), zap.Error(err))
	}
	return resp, nil
}
