// Copyright 2026 The Genesis Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errorhandler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"genesis.dev/genesis/errors"
	"genesis.dev/genesis/logging"
	"genesis.dev/genesis/router"
)

// New returns the error-handling middleware: the single sink that turns
// panics and collected errors into JSON responses, log lines, analytics
// updates and remote reports. Install it first so it wraps everything else.
//
//	r.Use(errorhandler.Development(logger))
//	r.Use(errorhandler.New(
//	    errorhandler.WithLogger(logger),
//	    errorhandler.WithFileLogging("./logs/requests.log"),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = logging.Discard()
	}
	var fileLog *jsonlWriter
	if cfg.logToFile {
		fileLog = &jsonlWriter{path: cfg.filePath}
	}

	return func(c *router.Context) {
		defer func() {
			var caught error
			if rec := recover(); rec != nil {
				if err, ok := rec.(error); ok {
					caught = err
				} else {
					caught = fmt.Errorf("%v", rec)
				}
			} else if errs := c.Errors(); len(errs) > 0 {
				caught = errs[0]
			}
			if caught == nil {
				return
			}
			handle(c, cfg, logger, fileLog, errors.Normalize(caught))
		}()
		c.Next()
	}
}

func handle(c *router.Context, cfg *config, logger *logging.Logger, fileLog *jsonlWriter, e *errors.Error) {
	requestID := c.RequestID()
	e = e.WithRequestID(requestID)

	if cfg.logErrors {
		attrs := []any{
			"type", e.Name(),
			"status", e.HTTPStatus(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
			"requestId", requestID,
		}
		if cfg.showStackTrace && len(e.Stack) > 0 {
			attrs = append(attrs, "stack", string(e.Stack))
		}
		if e.Operational {
			logger.Warn(e.Message, attrs...)
		} else {
			logger.Error(e.Message, attrs...)
		}
	}

	if fileLog != nil {
		fileLog.append(map[string]any{
			"timestamp": e.Timestamp.UTC().Format(time.RFC3339),
			"type":      e.Name(),
			"message":   e.Message,
			"status":    e.HTTPStatus(),
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"ip":        c.ClientIP(),
			"requestId": requestID,
			"headers":   logging.SanitizeHeaders(c.Request.Header),
		})
	}

	cfg.analytics.Record(e, requestID, c.ClientIP())

	status := e.HTTPStatus()
	message := e.Message
	if override, ok := cfg.customMessages[e.Name()]; ok {
		message = override
	}
	if cfg.sanitize && status >= 500 {
		message = "Internal server error"
	}

	body := map[string]any{
		"error": map[string]any{
			"message":   message,
			"type":      e.Name(),
			"timestamp": e.Timestamp.UTC().Format(time.RFC3339),
			"requestId": requestID,
		},
	}
	if cfg.includeRequest {
		body["request"] = map[string]any{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}
	}
	if e.Kind == errors.KindValidation {
		value := e.Value
		if cfg.sanitize {
			value = "[REDACTED]"
		}
		body["validation"] = map[string]any{"field": e.Field, "value": value}
	}
	if e.Kind == errors.KindRateLimit {
		body["retryAfter"] = e.RetryAfter
		c.SetHeader("Retry-After", fmt.Sprintf("%d", e.RetryAfter))
	}

	c.JSON(status, body)

	if status >= 500 && cfg.reporter != nil {
		// Best-effort; the reporter swallows its own failures.
		cfg.reporter(e, requestID)
	}
}

// jsonlWriter appends one JSON object per line, creating the parent
// directory on first use. Failures are silent; error handling must never
// take the request down with it.
type jsonlWriter struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

func (w *jsonlWriter) append(record map[string]any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
			return
		}
		f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return
		}
		w.f = f
	}
	line, err := json.Marshal(record)
	if err != nil {
		return
	}
	w.f.Write(append(line, '\n')) //nolint:errcheck
}
