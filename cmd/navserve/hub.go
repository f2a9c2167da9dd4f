package main

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/internal/mapdata"
	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/internal/nav"
	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/internal/registry"
	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/logging"
)

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub owns the pathfinder behind a single lock. The engine itself is not
// safe for concurrent use, so every query and mutation funnels through here.
type Hub struct {
	mu          sync.Mutex
	publisher   logging.Publisher
	fixturePath string
	mapName     string
	pf          *nav.Pathfinder
	reg         *registry.Registry
	subscribers map[uint64]*subscriber
	nextID      atomic.Uint64
}

func newHub(fixturePath string, publisher logging.Publisher) (*Hub, error) {
	h := &Hub{
		publisher:   publisher,
		fixturePath: fixturePath,
		subscribers: make(map[uint64]*subscriber),
	}
	if err := h.Reload(); err != nil {
		return nil, err
	}
	return h, nil
}

// Reload re-reads the fixture and swaps in a freshly built grid.
func (h *Hub) Reload() error {
	fx, err := mapdata.LoadFixture(h.fixturePath)
	if err != nil {
		return err
	}
	m, err := fx.MapData()
	if err != nil {
		return err
	}
	reg, err := registry.FromFixture(fx)
	if err != nil {
		return err
	}
	pf := nav.New(nav.Deps{Publisher: h.publisher})
	if err := pf.Build(m, reg); err != nil {
		return err
	}

	h.mu.Lock()
	h.mapName = m.Name
	h.pf = pf
	h.reg = reg
	h.mu.Unlock()
	return nil
}

type gridMessage struct {
	Type       string             `json:"type"`
	Map        string             `json:"map"`
	CellsX     int                `json:"cellsX"`
	CellsY     int                `json:"cellsY"`
	Bounds     nav.Bounds         `json:"bounds"`
	Segments   []nav.SegmentState `json:"segments"`
	ServerTime int64              `json:"serverTime"`
}

type pathResponse struct {
	Type      string          `json:"type"`
	Waypoints []nav.Vec2      `json:"waypoints"`
	Stats     nav.SearchStats `json:"stats"`
}

type bridgeMessage struct {
	Type     string `json:"type"`
	Segment  int    `json:"segment"`
	Passable bool   `json:"passable"`
}

func (h *Hub) gridSnapshot() gridMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	grid := h.pf.Grid()
	return gridMessage{
		Type:       "grid",
		Map:        h.mapName,
		CellsX:     grid.CellsX(),
		CellsY:     grid.CellsY(),
		Bounds:     grid.PlayableBounds(),
		Segments:   h.pf.SegmentStates(),
		ServerTime: time.Now().UnixMilli(),
	}
}

// FindPath answers one query under the hub lock. The locomotor name picks
// the profile; unknown names (including "") fall back to plain ground.
func (h *Hub) FindPath(req nav.PathRequest, locomotor string) pathResponse {
	h.mu.Lock()
	defer h.mu.Unlock()
	req.Profile = h.reg.Profile(locomotor)
	waypoints := h.pf.FindPath(req)
	return pathResponse{Type: "path", Waypoints: waypoints, Stats: h.pf.LastSearchStats()}
}

// SetSegmentPassable toggles a segment by id and broadcasts on success.
func (h *Hub) SetSegmentPassable(id nav.SegmentID, passable bool) bool {
	h.mu.Lock()
	ok := h.pf.SetSegmentPassable(id, passable)
	h.mu.Unlock()
	if ok {
		h.broadcast(bridgeMessage{Type: "bridge", Segment: int(id), Passable: passable})
	}
	return ok
}

// SetBridgePassableAt toggles the segment owning a world position.
func (h *Hub) SetBridgePassableAt(x, y float64, passable bool) bool {
	h.mu.Lock()
	ok := h.pf.SetBridgePassableAt(x, y, passable)
	h.mu.Unlock()
	if ok {
		h.broadcast(h.gridSnapshot())
	}
	return ok
}

// EntityEvent routes a destroy or repair notification to the engine.
func (h *Hub) EntityEvent(action, entityID string) (bool, error) {
	h.mu.Lock()
	var ok bool
	switch action {
	case "destroyed":
		ok = h.pf.HandleObjectDestroyed(entityID)
	case "repaired":
		ok = h.pf.HandleObjectRepaired(entityID)
	default:
		h.mu.Unlock()
		return false, fmt.Errorf("unknown entity action %q", action)
	}
	h.mu.Unlock()
	if ok {
		h.broadcast(h.gridSnapshot())
	}
	return ok, nil
}

// Subscribe registers a websocket client for change broadcasts.
func (h *Hub) Subscribe(conn *websocket.Conn) (uint64, *subscriber) {
	id := h.nextID.Add(1)
	sub := &subscriber{conn: conn}
	h.mu.Lock()
	h.subscribers[id] = sub
	h.mu.Unlock()
	return id, sub
}

// Disconnect drops a websocket client.
func (h *Hub) Disconnect(id uint64) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	h.mu.Unlock()
	if ok {
		sub.conn.Close()
	}
}

func (h *Hub) broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal broadcast: %v", err)
		return
	}

	h.mu.Lock()
	subs := make(map[uint64]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			log.Printf("failed to send update to subscriber %d: %v", id, err)
			h.Disconnect(id)
		}
	}
}
