// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/stakevault/co"
	"github.com/vechain/stakevault/log"
)

var logger = log.WithContext("pkg", "httpserver")

// maxBodySize bounds request bodies accepted by the API server.
const maxBodySize = 200 * 1024

// StartAPIServer serves handler on addr. Request bodies are size limited.
// The returned func stops the server and waits for it to exit.
func StartAPIServer(addr string, handler http.Handler) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	url, stop := serve(listener, requestBodyLimit(handler), 0)
	return url, stop, nil
}

func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		h.ServeHTTP(w, r)
	})
}

// serve runs an http server on listener. A zero readTimeout leaves reads
// unbounded, which long-lived websocket connections need.
func serve(listener net.Listener, handler http.Handler, readTimeout time.Duration) (string, func()) {
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: readTimeout}
	var goes co.Goes
	goes.Go(func() error {
		return srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		if err := goes.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("http server exited", "addr", listener.Addr(), "err", err)
		}
	}
}
