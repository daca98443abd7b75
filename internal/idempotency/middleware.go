package idempotency

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lvcu04/fashion_shop/pkg/logging"
	authmw "github.com/lvcu04/fashion_shop/pkg/middleware/auth"
)

const (
	HeaderKey      = "Idempotency-Key"
	HeaderReplayed = "Idempotent-Replayed"
	maxKeyLen      = 255
	maxBodyLen     = 1 << 20
)

type recorder struct {
	http.ResponseWriter
	buf bytes.Buffer
}

func (r *recorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// Middleware replays the first successful response for a repeated
// Idempotency-Key of the same user. Requests without the header pass
// through. Failed responses release the key so the client may retry. A
// key reused with a different body is rejected with 422.
func Middleware(store Store, scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(HeaderKey)
			if raw == "" {
				return next(c)
			}
			if len(raw) > maxKeyLen {
				return echo.NewHTTPError(http.StatusBadRequest, "idempotency key too long")
			}

			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("middleware", "idempotency")
			uid, _ := authmw.UserID(c)
			key := fmt.Sprintf("idem:%s:%d:%s", scope, uid, raw)

			body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyLen))
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "cannot read body")
			}
			c.Request().Body = io.NopCloser(bytes.NewReader(body))
			sum := sha256.Sum256(body)
			fingerprint := hex.EncodeToString(sum[:])

			stored, err := store.Begin(ctx, key)
			switch {
			case errors.Is(err, ErrInFlight):
				return echo.NewHTTPError(http.StatusConflict, "request already in progress")
			case err != nil:
				l.Error("idempotency_store_error", "error", err)
				return next(c)
			// Entries written before fingerprints existed replay unchecked.
			case stored != nil && stored.Fingerprint != "" && stored.Fingerprint != fingerprint:
				l.Warn("idempotency_key_reused", "status", http.StatusUnprocessableEntity)
				return echo.NewHTTPError(http.StatusUnprocessableEntity, "idempotency key reused with a different request body")
			case stored != nil:
				c.Response().Header().Set(HeaderReplayed, "true")
				return c.Blob(stored.Status, stored.ContentType, stored.Body)
			}

			rec := &recorder{ResponseWriter: c.Response().Writer}
			c.Response().Writer = rec

			herr := next(c)

			bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()

			status := c.Response().Status
			if herr != nil || status >= 300 || !c.Response().Committed {
				if err := store.Abort(bg, key); err != nil {
					l.Error("idempotency_abort_error", "error", err)
				}
				return herr
			}

			resp := Response{
				Status:      status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        rec.buf.Bytes(),
				Fingerprint: fingerprint,
			}
			if err := store.Complete(bg, key, resp); err != nil {
				l.Error("idempotency_complete_error", "error", err)
			}
			return nil
		}
	}
}
