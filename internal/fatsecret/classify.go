package fatsecret

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/alnah/go-fatsecret/internal/apierr"
	"github.com/alnah/go-fatsecret/internal/model"
)

// remoteErrorBody is the error object the API returns, usually with HTTP 200.
type remoteErrorBody struct {
	Error *struct {
		Code    model.Int `json:"code"`
		Message string    `json:"message"`
	} `json:"error"`
}

// remoteError extracts a non-zero API error from body.
func remoteError(body []byte) (code int, message string, ok bool) {
	var env remoteErrorBody
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil {
		return 0, "", false
	}
	if !env.Error.Code.Valid || env.Error.Code.Value == 0 {
		return 0, "", false
	}
	return int(env.Error.Code.Value), strings.TrimSpace(env.Error.Message), true
}

// classifyResponse returns body when it is a success payload. A remote
// error object wins over the HTTP status; otherwise any non-2xx status is a
// transport error.
func classifyResponse(status int, body []byte) ([]byte, error) {
	if code, msg, ok := remoteError(body); ok {
		return nil, apierr.FromRemote(code, msg, status)
	}
	if status < 200 || status > 299 {
		msg := fmt.Sprintf("unexpected HTTP status %d %s", status, http.StatusText(status))
		return nil, apierr.Transport(msg, status, nil)
	}
	return body, nil
}

// classifyTransportError wraps a network-level failure. Expired deadlines
// also match apierr.ErrTimeout.
func classifyTransportError(op string, status int, err error) error {
	if isTimeout(err) {
		return apierr.Transport(op, status, fmt.Errorf("%w: %w", apierr.ErrTimeout, err))
	}
	return apierr.Transport(op, status, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
