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

// Command genesis-server is the HTTP-server child the kernel spawns. It
// composes the full middleware pipeline, registers the demo todo API, and
// prints SERVER_READY to stdout once its listener is bound.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"genesis.dev/genesis/errors"
	"genesis.dev/genesis/kernel"
	"genesis.dev/genesis/logging"
	"genesis.dev/genesis/metrics"
	"genesis.dev/genesis/middleware/accesslog"
	"genesis.dev/genesis/middleware/bodyparser"
	"genesis.dev/genesis/middleware/cors"
	"genesis.dev/genesis/middleware/errorhandler"
	"genesis.dev/genesis/middleware/health"
	"genesis.dev/genesis/middleware/requestid"
	"genesis.dev/genesis/middleware/security"
	"genesis.dev/genesis/middleware/timing"
	"genesis.dev/genesis/remotelog"
	"genesis.dev/genesis/router"
	"genesis.dev/genesis/validation"
)

func main() {
	cfg, err := kernel.LoadConfig("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	}
	logger := logging.MustNew(
		logging.WithLevel(level),
		logging.WithJSONFile("./logs/server.log"),
	)
	defer logger.Close()

	r := router.MustNew(router.WithLogger(logger))
	r.Use(buildPipeline(cfg, logger)...)

	monitor := metrics.NewMonitor()
	r.Use(monitor.Middleware())
	r.GET("/metrics", monitor.Handler())

	registerTodos(r)
	r.Static("/assets", "./public", staticPolicy(cfg))

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs
		r.Shutdown(context.Background()) //nolint:errcheck
	}()

	addr := fmt.Sprintf("%s:%d", cfg.ServerHostname, cfg.ServerPort)
	if err := r.Serve(addr); err != nil {
		logger.Error("server failed", "error", err.Error())
		os.Exit(1)
	}
}

func buildPipeline(cfg kernel.Config, logger *logging.Logger) []router.HandlerFunc {
	var errorMW router.HandlerFunc
	var corsMW router.HandlerFunc
	var securityMW router.HandlerFunc

	if cfg.Production() {
		var reporter errorhandler.Reporter
		if cfg.ErrorReportingURL != "" {
			sink := remotelog.NewSink(remotelog.WithDestination(remotelog.Destination{
				Name:   "error-reporting",
				URL:    cfg.ErrorReportingURL,
				APIKey: cfg.ErrorReportingKey,
			}))
			reporter = func(e *errors.Error, requestID string) {
				sink.Enqueue(logging.Entry{
					Time:    e.Timestamp,
					Level:   logging.LevelError,
					Message: e.Message,
					Attrs: map[string]any{
						"type":      e.Name(),
						"requestId": requestID,
					},
				})
			}
		}
		errorMW = errorhandler.Production(logger, reporter)
		corsMW = cors.New(cors.WithOrigins(cfg.AllowedOrigins...))
		securityMW = security.New(security.WithProduction())
	} else {
		errorMW = errorhandler.Development(logger)
		corsMW = cors.New()
		securityMW = security.New()
	}

	return []router.HandlerFunc{
		errorMW,
		corsMW,
		securityMW,
		requestid.New(),
		timing.New(),
		accesslog.New(accesslog.WithLogger(logger)),
		bodyparser.New(),
		health.New(),
	}
}

func staticPolicy(cfg kernel.Config) router.CachePolicy {
	if cfg.Production() {
		return router.CacheImmutable
	}
	return router.CacheNone
}

// todoStore is the demo in-memory resource served under /api/todos.
type todoStore struct {
	mu     sync.Mutex
	nextID int
	todos  map[int]map[string]any
}

var todoSchema = validation.Schema{
	"title": validation.RequiredString(validation.MinLength(1), validation.MaxLength(100)),
}

func registerTodos(r *router.Router) {
	store := &todoStore{nextID: 1, todos: map[int]map[string]any{}}

	r.GET("/api/todos", func(c *router.Context) {
		store.mu.Lock()
		out := make([]map[string]any, 0, len(store.todos))
		for _, t := range store.todos {
			out = append(out, t)
		}
		store.mu.Unlock()
		c.JSON(http.StatusOK, out)
	})

	r.POST("/api/todos", func(c *router.Context) {
		body, _ := bodyparser.Body(c)
		if result := validation.Validate(body, todoSchema); !result.Valid {
			c.Fail(result.Err())
			return
		}
		var title string
		switch b := body.(type) {
		case map[string]any:
			title, _ = b["title"].(string)
		case map[string]string:
			title = b["title"]
		}

		store.mu.Lock()
		id := store.nextID
		store.nextID++
		todo := map[string]any{"id": id, "title": strings.TrimSpace(title), "done": false}
		store.todos[id] = todo
		store.mu.Unlock()

		c.JSON(http.StatusCreated, todo)
	})

	r.GET("/api/todos/:id", func(c *router.Context) {
		store.mu.Lock()
		defer store.mu.Unlock()
		for id, t := range store.todos {
			if fmt.Sprint(id) == c.Param("id") {
				c.JSON(http.StatusOK, t)
				return
			}
		}
		c.Fail(errors.NewNotFound("todo"))
	})

	r.DELETE("/api/todos/:id", func(c *router.Context) {
		store.mu.Lock()
		defer store.mu.Unlock()
		for id := range store.todos {
			if fmt.Sprint(id) == c.Param("id") {
				delete(store.todos, id)
				c.Status(http.StatusNoContent)
				c.Commit(http.StatusNoContent, nil)
				return
			}
		}
		c.Fail(errors.NewNotFound("todo"))
	})
}
