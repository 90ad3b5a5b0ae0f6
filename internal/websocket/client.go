package websocket

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/msomdec/photocat/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Command is an inbound mutation request from a client.
type Command struct {
	Action string      `json:"action"`
	Data   CommandData `json:"data"`
}

// CommandData carries the command payload. Callers may address photos as
// a single PhotoID or a Photos batch; PhotoBatch normalizes both shapes.
type CommandData struct {
	PhotoID   string   `json:"photoId,omitempty"`
	Photos    []string `json:"photos,omitempty"`
	AlbumID   string   `json:"albumId,omitempty"`
	AlbumName string   `json:"albumName,omitempty"`
	NewName   string   `json:"newName,omitempty"`
}

// PhotoBatch returns the addressed photo ids as a batch of at least one.
func (d CommandData) PhotoBatch() []string {
	if len(d.Photos) > 0 {
		return d.Photos
	}
	if d.PhotoID != "" {
		return []string{d.PhotoID}
	}
	return nil
}

// reply is a targeted message sent back to a single client, used for
// failure signals that must not be broadcast.
type reply struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Client is one websocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local single-user service; the browser client is served from the
	// same origin, and there is no cookie-based auth to ride on.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and starts the client's pumps.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade", "error", err)
		return
	}

	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 64)}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump reads commands from the connection and dispatches them until
// the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	key := c.conn.RemoteAddr().String()
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("websocket read", "error", err)
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.reply("invalid_command", nil)
			continue
		}

		if !c.hub.limiter.Allow(key) {
			c.reply("rate_limited", cmd.Action)
			continue
		}

		c.dispatch(cmd)
	}
}

// dispatch routes a command to the gallery. Not-found failures are
// answered on this connection only; successful mutations reach every
// client through the hub's event subscription.
func (c *Client) dispatch(cmd Command) {
	var err error
	switch cmd.Action {
	case "addToAlbum":
		err = c.hub.gallery.AddToAlbum(cmd.Data.PhotoBatch(), cmd.Data.AlbumID)
	case "addToNewAlbum":
		err = c.hub.gallery.AddToNewAlbum(cmd.Data.PhotoBatch(), cmd.Data.AlbumName)
	case "removeFromAlbum":
		err = c.hub.gallery.RemoveFromAlbum(cmd.Data.PhotoBatch(), cmd.Data.AlbumID)
	case "deleteAlbum":
		err = c.hub.gallery.DeleteAlbum(cmd.Data.AlbumID)
	case "renamePhoto":
		err = c.hub.gallery.RenamePhoto(cmd.Data.PhotoID, cmd.Data.NewName)
	default:
		c.reply("unknown_action", cmd.Action)
		return
	}

	switch {
	case errors.Is(err, domain.ErrAlbumNotFound):
		c.reply("album_not_found", cmd.Data.AlbumID)
	case errors.Is(err, domain.ErrPhotoNotFound):
		c.reply("photo_not_found", cmd.Data.PhotoID)
	case err != nil:
		slog.Error("dispatch command", "action", cmd.Action, "error", err)
		c.reply("command_failed", cmd.Action)
	}
}

func (c *Client) reply(typ string, data any) {
	msg, err := json.Marshal(reply{Type: typ, Data: data})
	if err != nil {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// writePump writes outbound messages and keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
