// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/stakevault/api/utils"
	"github.com/vechain/stakevault/builtin/staker"
	"github.com/vechain/stakevault/log"
	"github.com/vechain/stakevault/metrics"
	"github.com/vechain/stakevault/thor"
)

var (
	logger = log.WithContext("pkg", "subscriptions")

	metricActiveWebsocket = metrics.LazyLoadGaugeVec("api_active_websocket_count", []string{"subject"})
)

const (
	listenerBufferSize = 64
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 7) / 10
)

// EventSource publishes committed engine events.
type EventSource interface {
	SubscribeEvents(ch chan<- *staker.Event) event.Subscription
}

type Subscriptions struct {
	src       EventSource
	upgrader  *websocket.Upgrader
	listeners map[chan *staker.Event]struct{}
	mu        sync.RWMutex
	done      chan struct{}
	wg        sync.WaitGroup
}

// New creates the subscriptions API and starts dispatching events of src.
// Close must be called to release it.
func New(src EventSource, allowedOrigins []string) *Subscriptions {
	s := &Subscriptions{
		src: src,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
		listeners: make(map[chan *staker.Event]struct{}),
		done:      make(chan struct{}),
	}

	ch := make(chan *staker.Event, listenerBufferSize)
	sub := src.SubscribeEvents(ch)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer sub.Unsubscribe()
		s.dispatchLoop(ch, sub.Err())
	}()
	return s
}

func (s *Subscriptions) subscribe(ch chan *staker.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners[ch] = struct{}{}
}

func (s *Subscriptions) unsubscribe(ch chan *staker.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.listeners, ch)
}

func (s *Subscriptions) dispatchLoop(ch <-chan *staker.Event, errCh <-chan error) {
	for {
		select {
		case ev := <-ch:
			s.mu.RLock()
			for lsn := range s.listeners {
				select {
				case lsn <- ev:
				default: // broadcast in a non-blocking manner, so a slow subscriber may miss events
				}
			}
			s.mu.RUnlock()
		case <-errCh:
			return
		case <-s.done:
			return
		}
	}
}

// filter selects the events a subscriber receives.
type filter struct {
	asset   *thor.Address
	account *thor.Address
}

func parseFilter(req *http.Request) (*filter, error) {
	var f filter
	query := req.URL.Query()
	for name, dst := range map[string]**thor.Address{"asset": &f.asset, "account": &f.account} {
		if s := query.Get(name); s != "" {
			addr, err := thor.ParseAddress(s)
			if err != nil {
				return nil, utils.BadRequest(errors.WithMessage(err, name))
			}
			*dst = &addr
		}
	}
	return &f, nil
}

func (f *filter) match(ev *staker.Event) bool {
	if f.asset != nil && *f.asset != ev.Asset {
		return false
	}
	if f.account != nil && *f.account != ev.Account {
		return false
	}
	return true
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	f, err := parseFilter(req)
	if err != nil {
		return err
	}
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		logger.Debug("upgrade failed", "err", err)
		// the upgrader already responded
		return nil
	}
	defer conn.Close()

	metricActiveWebsocket().AddWithLabel(1, map[string]string{"subject": "event"})
	defer metricActiveWebsocket().AddWithLabel(-1, map[string]string{"subject": "event"})

	ch := make(chan *staker.Event, listenerBufferSize)
	s.subscribe(ch)
	defer s.unsubscribe(ch)

	if err := s.pipe(conn, ch, f); err != nil {
		logger.Debug("subscription closed", "err", err)
	}
	return nil
}

// pipe writes matching events to conn until the peer goes away or the
// subscriptions are closed.
func (s *Subscriptions) pipe(conn *websocket.Conn, ch <-chan *staker.Event, f *filter) error {
	closed := make(chan struct{})
	// the peer is not expected to send anything, reading only serves control frames
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case ev := <-ch:
			if !f.match(ev) {
				continue
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}
			if err := conn.WriteJSON(ev); err != nil {
				return err
			}
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		case <-closed:
			return nil
		case <-s.done:
			return conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(writeWait))
		}
	}
}

// Close stops dispatching and ends all open subscriptions.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("subscriptions_events").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
