// internal/handlers/feed.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/partylabs/ideasthesia/internal/middleware"
	"github.com/sirupsen/logrus"
)

// DirectoryFeed fans a "directory changed" signal out to websocket
// subscribers. Signals are coalesced: a subscriber that has not drained its
// channel yet gets at most one pending wakeup.
type DirectoryFeed struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewDirectoryFeed() *DirectoryFeed {
	return &DirectoryFeed{subs: make(map[chan struct{}]struct{})}
}

// Notify wakes every subscriber. Safe to call from any goroutine; never blocks.
func (f *DirectoryFeed) Notify() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (f *DirectoryFeed) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

func (f *DirectoryFeed) unsubscribe(ch chan struct{}) {
	f.mu.Lock()
	delete(f.subs, ch)
	f.mu.Unlock()
}

// PartyFeedHandler streams the party roster over a websocket: a snapshot on
// connect, then a fresh snapshot after every directory change. Clients are
// read-only; anything they send is drained and ignored.
func PartyFeedHandler(logger *logrus.Logger, ps *PartyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		remoteAddr := r.RemoteAddr

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"party-directory"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		middleware.LogWebSocketConnect(logger, remoteAddr, r.URL.Path)
		logger.WithFields(logrus.Fields{
			"nickname": ident.Nickname,
		}).Debug("directory feed subscribed")

		ctx := r.Context()
		ch := ps.Feed.subscribe()
		defer ps.Feed.unsubscribe(ch)

		// Drain client frames so pings and closes are processed.
		go func() {
			for {
				if _, _, err := c.Read(ctx); err != nil {
					return
				}
			}
		}()

		sendRoster := func() error {
			roster, err := ps.Directory.List(ctx)
			if err != nil {
				logger.Warnf("feed roster fetch failed: %v", err)
				return err
			}
			data, err := json.Marshal(map[string]interface{}{
				"type":   "roster",
				"roster": roster,
			})
			if err != nil {
				return err
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return c.Write(writeCtx, websocket.MessageText, data)
		}

		if err := sendRoster(); err != nil {
			middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, err)
			return
		}

		for {
			select {
			case <-ctx.Done():
				middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, nil)
				c.Close(websocket.StatusNormalClosure, "bye")
				return
			case <-ch:
				if err := sendRoster(); err != nil {
					middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, err)
					return
				}
			}
		}
	}
}
