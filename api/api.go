// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakevault/api/accounts"
	"github.com/vechain/stakevault/api/stakes"
	"github.com/vechain/stakevault/api/subscriptions"
	"github.com/vechain/stakevault/builtin/staker"
	"github.com/vechain/stakevault/log"
	"github.com/vechain/stakevault/logdb"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	LogsLimit       uint64
	SkipLogs        bool
	EnableReqLogger bool
	EnableMetrics   bool
	SoloMode        bool
}

// New return api router
func New(
	engine *staker.Staker,
	logDB *logdb.LogDB,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	if opts.SkipLogs {
		logDB = nil
	}
	stakes.New(engine, logDB, opts.LogsLimit).
		Mount(router, "/stakes")
	accounts.New(engine, opts.SoloMode).
		Mount(router, "/accounts")
	subs := subscriptions.New(engine, origins)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", "x-request-id"}),
		handlers.ExposedHeaders([]string{"x-request-id"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
