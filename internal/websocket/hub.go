// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

// Package websocket pushes refresh notifications to connected asset pages so
// an open timeline can re-fetch when a fresh view commits.
package websocket

import (
	"context"
	"sync"

	"github.com/rolltrace/rolltrace/internal/logging"
	"github.com/rolltrace/rolltrace/internal/metrics"
)

// Message types exchanged with the shell.
const (
	MessageTypeAssetRefreshed = "asset_refreshed"
	MessageTypePing           = "ping"
	MessageTypePong           = "pong"
)

// Message is one websocket frame payload.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// assetRefreshedData is the payload of an asset_refreshed message.
type assetRefreshedData struct {
	AssetID string `json:"assetId"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

// NewHub creates a hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
	}
}

// NotifyAssetRefreshed broadcasts a refresh notice for the asset. Drops the
// message when the broadcast buffer is full rather than blocking a load.
func (h *Hub) NotifyAssetRefreshed(assetID string) {
	message := Message{
		Type: MessageTypeAssetRefreshed,
		Data: assetRefreshedData{AssetID: assetID},
	}
	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Str("asset_id", assetID).Msg("broadcast buffer full, refresh notice dropped")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// String identifies the hub in supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

// Serve runs the hub event loop until the context is canceled. Implements
// suture.Service for supervised operation.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.stopOnce.Do(func() { close(h.done) })
			return ctx.Err()

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketClients.Set(float64(total))
			logging.Info().Int("total_clients", total).Msg("websocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketClients.Set(float64(total))
			logging.Info().Int("total_clients", total).Msg("websocket client disconnected")

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// broadcastToClients delivers a message to every connected client, dropping
// it for clients whose send buffer is full.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			logging.Warn().Msg("client send buffer full, message dropped")
		}
	}
}

// attach registers a client, refusing when the hub has already stopped.
func (h *Hub) attach(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// detach unregisters a client. Pumps call this on exit; once the hub has
// stopped there is no receiver on the unregister channel, so give up instead
// of blocking the goroutine forever.
func (h *Hub) detach(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// closeAll closes every client send channel during shutdown.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
	metrics.WebSocketClients.Set(0)
}
