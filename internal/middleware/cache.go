package middleware

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ritik/event-backend/internal/config"
)

// captureWriter tees the response body so a successful reply can be
// stored in Redis after it has been sent to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	limit  int
	over   bool
}

func (w *captureWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	if !w.over {
		if w.buf.Len()+len(b) > w.limit {
			w.over = true
			w.buf.Reset()
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// NewResponseCache caches successful responses for configured methods
// in Redis.  Only 2xx responses with bodies under MaxBodyBytes are
// stored.  Cache hits replay the stored status, content type and body
// and set X-Cache: HIT; everything else passes through with
// X-Cache: MISS.  Redis failures fail open.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[c.Request().Method] {
				return next(c)
			}

			key := cacheKeyFrom(cfg, c)
			ctx := c.Request().Context()

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				status, contentType, body, derr := decodePayload(raw)
				if derr == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(status, contentType, body)
				}
				// Corrupt entry, drop it and fall through.
				rdb.Del(ctx, key)
			}

			c.Response().Header().Set("X-Cache", "MISS")
			cw := &captureWriter{ResponseWriter: c.Response().Writer, limit: cfg.MaxBodyBytes}
			c.Response().Writer = cw

			if err := next(c); err != nil {
				return err
			}

			if cw.status >= 200 && cw.status < 300 && !cw.over && cw.buf.Len() > 0 {
				contentType := c.Response().Header().Get(echo.HeaderContentType)
				payload := encodePayload(cw.status, contentType, cw.buf.Bytes())
				rdb.Set(ctx, key, payload, cfg.TTL)
			}
			return nil
		}
	}
}

func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
	req := c.Request()
	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{req.Method, c.Path()}
	case "url":
		parts = []string{req.Method, req.URL.String()}
	default: // "route_query"
		parts = []string{req.Method, req.URL.Path, req.URL.RawQuery}
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}

// Payload layout: uint16 status, uint16 content-type length, content
// type bytes, then the body.
func encodePayload(status int, contentType string, body []byte) []byte {
	out := make([]byte, 0, 4+len(contentType)+len(body))
	var hdr [4]byte
	binary.BigEndian.PutUint16(hdr[0:2], uint16(status))
	binary.BigEndian.PutUint16(hdr[2:4], uint16(len(contentType)))
	out = append(out, hdr[:]...)
	out = append(out, contentType...)
	out = append(out, body...)
	return out
}

func decodePayload(raw []byte) (status int, contentType string, body []byte, err error) {
	if len(raw) < 4 {
		return 0, "", nil, fmt.Errorf("cache payload too short: %d bytes", len(raw))
	}
	status = int(binary.BigEndian.Uint16(raw[0:2]))
	ctLen := int(binary.BigEndian.Uint16(raw[2:4]))
	if len(raw) < 4+ctLen {
		return 0, "", nil, fmt.Errorf("cache payload truncated")
	}
	contentType = string(raw[4 : 4+ctLen])
	body = raw[4+ctLen:]
	return status, contentType, body, nil
}
