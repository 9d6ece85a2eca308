package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/social-feed/internal/config"
)

// captureWriter copies the response body while forwarding it to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 || cw.size < cw.limit {
		if remain := cw.limit - cw.size; cw.limit > 0 && int64(len(b)) > remain {
			cw.buf.Write(b[:remain])
		} else {
			cw.buf.Write(b)
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// encodePayload packs [4 bytes status][4 bytes header length][header JSON][body].
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}

// ResponseCache keeps successful GET responses in Redis under one key
// namespace.  It is mounted on routes whose response is the same for every
// caller (the feed) and purged whenever a write could change them.
type ResponseCache struct {
	cfg     config.CacheConfig
	rdb     *redis.Client
	log     logrus.FieldLogger
	metrics *Metrics
}

// NewResponseCache returns a cache; a nil client or disabled config turns
// every method into a no-op.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client, metrics *Metrics, log logrus.FieldLogger) *ResponseCache {
	return &ResponseCache{cfg: cfg, rdb: rdb, metrics: metrics, log: log.WithField("component", "cache")}
}

func (rc *ResponseCache) enabled() bool { return rc != nil && rc.cfg.Enabled && rc.rdb != nil }

// storedHeaders are the only response headers replayed on a hit.  Per
// request values such as X-Request-Id or the rate limit counters must come
// from the request being served.
var storedHeaders = []string{echo.HeaderContentType, echo.HeaderContentEncoding}

func (rc *ResponseCache) genKey() string { return rc.cfg.Prefix + ":gen" }

// key hashes route and query under the configured prefix and the current
// generation.  Purge bumps the generation, so a response rendered before a
// write lands under a key no reader asks for any more.
func (rc *ResponseCache) key(ctx context.Context, c echo.Context) (string, error) {
	gen, err := rc.rdb.Get(ctx, rc.genKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	tail := "route:" + c.Path() + ":q:" + c.Request().URL.RawQuery
	sum := sha1.Sum([]byte(tail))
	return fmt.Sprintf("%s:v%d:%x", rc.cfg.Prefix, gen, sum[:]), nil
}

// Middleware serves cached GET responses and stores fresh 200 responses.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
	if !rc.enabled() {
		return passThrough
	}
	maxBody := int64(rc.cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			key, err := rc.key(ctx, c)
			if err != nil {
				rc.log.WithError(err).Debug("cache generation lookup failed")
				return next(c)
			}

			if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for _, name := range storedHeaders {
						if v := hdr.Get(name); v != "" {
							c.Response().Header().Set(name, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					rc.metrics.cacheResult("hit")
					c.Response().WriteHeader(status)
					_, _ = c.Response().Write(body)
					return nil
				}
			}
			rc.metrics.cacheResult("miss")

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
				return nil
			}
			hdr := http.Header{}
			for _, name := range storedHeaders {
				if v := c.Response().Header().Get(name); v != "" {
					hdr.Set(name, v)
				}
			}
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err != nil {
				return nil
			}
			if err := rc.rdb.SetEx(context.Background(), key, payload, rc.cfg.TTL).Err(); err != nil {
				rc.log.WithError(err).Debug("cache store failed")
			}
			return nil
		}
	}
}

// Purge moves the cache to a new generation and drops every stored
// response.
func (rc *ResponseCache) Purge(ctx context.Context) error {
	if !rc.enabled() {
		return nil
	}
	if err := rc.rdb.Incr(ctx, rc.genKey()).Err(); err != nil {
		return err
	}
	iter := rc.rdb.Scan(ctx, 0, rc.cfg.Prefix+":v*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return rc.rdb.Del(ctx, keys...).Err()
}

// PurgeOnWrite purges the cache after every successful non-GET request
// that passes through it.
func (rc *ResponseCache) PurgeOnWrite() echo.MiddlewareFunc {
	if !rc.enabled() {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if c.Request().Method == http.MethodGet || err != nil || c.Response().Status >= http.StatusBadRequest {
				return err
			}
			if perr := rc.Purge(c.Request().Context()); perr != nil {
				rc.log.WithError(perr).Warn("cache purge failed")
			}
			return nil
		}
	}
}
