package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"CalicoFM/core/radio"
	"CalicoFM/logger"

	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NowPlayingHub relays the metadata feed to websocket listeners. The server
// polls the feed on the same cadence the web player would and pushes every
// fetched document to all connected clients; the latest document stays
// available as a snapshot for plain HTTP reads.
type NowPlayingHub struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]bool
	snapshot *radio.Metadata
}

// NewNowPlayingHub 创建新的广播中心
func NewNowPlayingHub() *NowPlayingHub {
	return &NowPlayingHub{
		clients: make(map[*websocket.Conn]bool),
	}
}

// Run polls the metadata feed until the context is cancelled, broadcasting
// each successful fetch. Fetch failures are logged and the next tick retries.
func (hub *NowPlayingHub) Run(ctx context.Context, client *radio.Client, interval time.Duration) {
	poll := func() {
		meta, err := client.FetchMetadata(ctx)
		if err != nil {
			logger.Warn("relay metadata fetch failed", logger.ErrorField(err))
			return
		}
		hub.Broadcast(meta)
	}

	poll()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll()
		}
	}
}

// Broadcast stores the document as the latest snapshot and pushes it to every
// connected client. Clients that fail a write are dropped.
func (hub *NowPlayingHub) Broadcast(meta *radio.Metadata) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	hub.snapshot = meta
	for conn := range hub.clients {
		if err := conn.WriteJSON(meta); err != nil {
			logger.Debug("dropping websocket client", logger.ErrorField(err))
			conn.Close()
			delete(hub.clients, conn)
		}
	}
}

// Snapshot returns the last broadcast document, or nil before the first
// successful fetch.
func (hub *NowPlayingHub) Snapshot() *radio.Metadata {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return hub.snapshot
}

// ServeWS handles GET /ws/nowplaying: upgrade, send the current snapshot,
// keep the connection registered until the peer goes away.
func (hub *NowPlayingHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	hub.mu.Lock()
	hub.clients[conn] = true
	snapshot := hub.snapshot
	hub.mu.Unlock()

	if snapshot != nil {
		if err := conn.WriteJSON(snapshot); err != nil {
			logger.Debug("initial snapshot write failed", logger.ErrorField(err))
		}
	}

	// Read loop only to observe the close; listeners never send anything.
	go func() {
		defer func() {
			hub.mu.Lock()
			delete(hub.clients, conn)
			hub.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// NowPlayingHandler handles GET /api/nowplaying from the relay snapshot.
func (hub *NowPlayingHub) NowPlayingHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := hub.Snapshot()
	if snapshot == nil {
		respondError(w, http.StatusNotFound, "no metadata available")
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}
