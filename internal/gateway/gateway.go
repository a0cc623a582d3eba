// Package gateway is the WebSocket edge: it upgrades clients, routes their
// table commands, and pushes per-viewer snapshots whenever a table changes.
package gateway

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"truco-lite/internal/lobby"
	"truco-lite/truco"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict origins in production
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second
)

// Envelope is the wire frame in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type commandPayload struct {
	TableID   string `json:"tableId,omitempty"`
	Name      string `json:"name,omitempty"`
	Bet       int64  `json:"bet,omitempty"`
	CardIndex int    `json:"cardIndex"`
	Action    string `json:"action,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Connection is one WebSocket client.
type Connection struct {
	ID       string
	PlayerID string
	Name     string
	Conn     *websocket.Conn
	Send     chan []byte
	Gateway  *Gateway

	TableID string
	Table   *truco.Game
}

// Gateway manages WebSocket connections and table fan-out.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	nextConnID  uint64
	lobby       *lobby.Lobby
}

func New(lby *lobby.Lobby) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		lobby:       lby,
	}
}

// HandleWebSocket upgrades the request. The client identifies itself with
// ?player=<id>&name=<display>; anonymous connections get a generated ID.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] upgrade error: %v", err)
		return
	}

	g.mu.Lock()
	g.nextConnID++
	connID := fmt.Sprintf("conn_%d", g.nextConnID)
	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		playerID = connID
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = playerID
	}
	c := &Connection{
		ID:       connID,
		PlayerID: playerID,
		Name:     name,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Gateway:  g,
	}
	g.connections[connID] = c
	total := len(g.connections)
	g.mu.Unlock()

	log.Printf("[Gateway] client connected: %s (player=%s), total: %d", connID, playerID, total)

	c.sendEnvelope("welcome", map[string]string{"playerId": playerID})
	go c.readPump()
	go c.writePump()

	if tableID := r.URL.Query().Get("table"); tableID != "" {
		if game := g.lobby.GetTable(tableID); game != nil {
			if err := game.Join(c.PlayerID, c.Name); err != nil {
				c.sendError(err.Error())
				return
			}
			c.attachTable(game)
			g.broadcastTable(game)
		} else {
			c.sendError("no such table")
		}
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(65536)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] read error: %v", err)
			}
			break
		}
		c.handleMessage(message)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) handleMessage(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.sendError("malformed message")
		return
	}
	var cmd commandPayload
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &cmd); err != nil {
			c.sendError("malformed command payload")
			return
		}
	}

	switch env.Type {
	case "createTable":
		g, err := c.Gateway.lobby.CreateTable(cmd.Name, c.PlayerID, c.Name, cmd.Bet)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		c.attachTable(g)
		c.Gateway.broadcastTable(g)
	case "joinTable":
		g := c.Gateway.lobby.GetTable(cmd.TableID)
		if g == nil {
			c.sendError("no such table")
			return
		}
		if err := g.Join(c.PlayerID, c.Name); err != nil {
			c.sendError(err.Error())
			return
		}
		c.attachTable(g)
	case "addBot":
		if c.Table == nil {
			c.sendError("not at a table")
			return
		}
		if err := c.Table.AddBot(nil); err != nil {
			c.sendError(err.Error())
		}
	case "start":
		if c.Table == nil {
			c.sendError("not at a table")
			return
		}
		if err := c.Table.StartMatch(c.PlayerID); err != nil {
			c.sendError(err.Error())
		}
	case "playCard":
		if c.Table == nil {
			c.sendError("not at a table")
			return
		}
		if err := c.Table.PlayCard(c.PlayerID, cmd.CardIndex); err != nil {
			c.sendError(err.Error())
		}
	case "action":
		if c.Table == nil {
			c.sendError("not at a table")
			return
		}
		if err := c.Table.SubmitAction(c.PlayerID, truco.Action(cmd.Action), cmd.RequestID); err != nil {
			c.sendError(err.Error())
		}
	case "leaveTable":
		c.leaveTable()
	case "getState":
		if c.Table != nil {
			c.sendState()
		}
	default:
		c.sendError("unknown message type: " + env.Type)
	}
}

// attachTable binds the connection to a table and wires the table's change
// listener to snapshot fan-out. The listener is shared by design: setting it
// again for another viewer of the same table is harmless.
func (c *Connection) attachTable(g *truco.Game) {
	c.Table = g
	c.TableID = g.ID
	g.SetChangeListener(func() { c.Gateway.broadcastTable(g) })
	c.sendState()
}

func (c *Connection) leaveTable() {
	if c.Table == nil {
		return
	}
	g := c.Table
	empty := g.Leave(c.PlayerID)
	c.Table = nil
	c.TableID = ""
	if empty {
		c.Gateway.lobby.RemoveTable(g.ID)
	} else {
		c.Gateway.broadcastTable(g)
	}
}

func (c *Connection) sendState() {
	if c.Table == nil {
		return
	}
	c.sendEnvelope("state", c.Table.SnapshotFor(c.PlayerID))
}

func (c *Connection) sendError(msg string) {
	c.sendEnvelope("error", errorPayload{Message: msg})
}

func (c *Connection) sendEnvelope(typ string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Gateway] marshal %s failed: %v", typ, err)
		return
	}
	frame, err := json.Marshal(Envelope{Type: typ, Data: data})
	if err != nil {
		return
	}
	select {
	case c.Send <- frame:
	default:
		log.Printf("[Gateway] send buffer full, dropping %s for %s", typ, c.ID)
	}
}

// broadcastTable pushes a fresh per-viewer snapshot to every connection at
// the table.
func (g *Gateway) broadcastTable(game *truco.Game) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, c := range g.connections {
		if c.TableID == game.ID {
			c.sendState()
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	c.leaveTable()
	g.mu.Lock()
	if _, ok := g.connections[c.ID]; ok {
		delete(g.connections, c.ID)
		close(c.Send)
	}
	total := len(g.connections)
	g.mu.Unlock()
	log.Printf("[Gateway] client disconnected: %s, total: %d", c.ID, total)
}
