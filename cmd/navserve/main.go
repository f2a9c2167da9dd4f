// Command navserve serves one map fixture over HTTP for probing the
// navigation engine: path queries, bridge toggles, and entity events, with
// websocket broadcasts of grid changes and optional live fixture reload.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/internal/nav"
	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/logging"
	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/logging/sinks"
)

const writeWait = 10 * time.Second

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	fixture := flag.String("fixture", "fixtures/crossing.yaml", "map fixture to serve")
	jsonLog := flag.String("json-log", "", "append structured events to this file")
	watch := flag.Bool("watch", false, "rebuild the grid when the fixture changes")
	flag.Parse()

	cfg := logging.DefaultConfig()
	named := []logging.NamedSink{
		{Name: "console", Sink: sinks.NewConsoleSink(os.Stdout, cfg.Console)},
	}
	if *jsonLog != "" {
		f, err := os.OpenFile(*jsonLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("open json log: %v", err)
		}
		defer f.Close()
		cfg.EnabledSinks = append(cfg.EnabledSinks, "json")
		named = append(named, logging.NamedSink{Name: "json", Sink: sinks.NewJSON(f, cfg.JSON.FlushInterval)})
	}
	router, err := logging.NewRouter(logging.ClockFunc(time.Now), cfg, named)
	if err != nil {
		log.Fatalf("logging router: %v", err)
	}
	defer router.Close(context.Background())

	hub, err := newHub(*fixture, router)
	if err != nil {
		log.Fatalf("load fixture %s: %v", *fixture, err)
	}

	if *watch {
		fw, err := watchFixture(hub, *fixture)
		if err != nil {
			log.Fatalf("watch fixture: %v", err)
		}
		defer fw.Close()
	}

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	http.HandleFunc("/grid", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, hub.gridSnapshot())
	})

	http.HandleFunc("/path", func(w http.ResponseWriter, r *http.Request) {
		req, locomotor, err := parsePathQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, hub.FindPath(req, locomotor))
	})

	http.HandleFunc("/bridge", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var body struct {
			Segment  int      `json:"segment"`
			X        *float64 `json:"x"`
			Y        *float64 `json:"y"`
			Passable bool     `json:"passable"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "malformed body", http.StatusBadRequest)
			return
		}
		var ok bool
		if body.X != nil && body.Y != nil {
			ok = hub.SetBridgePassableAt(*body.X, *body.Y, body.Passable)
		} else {
			ok = hub.SetSegmentPassable(nav.SegmentID(body.Segment), body.Passable)
		}
		if !ok {
			http.Error(w, "no such bridge", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]bool{"ok": true})
	})

	http.HandleFunc("/entity", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var body struct {
			Action string `json:"action"`
			ID     string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "malformed body", http.StatusBadRequest)
			return
		}
		ok, err := hub.EntityEvent(body.Action, body.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]bool{"ok": ok})
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade failed: %v", err)
			return
		}

		id, sub := hub.Subscribe(conn)

		initial, err := json.Marshal(hub.gridSnapshot())
		if err != nil {
			log.Printf("failed to marshal initial grid for %d: %v", id, err)
			hub.Disconnect(id)
			return
		}
		sub.mu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err = conn.WriteMessage(websocket.TextMessage, initial)
		sub.mu.Unlock()
		if err != nil {
			hub.Disconnect(id)
			return
		}

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				hub.Disconnect(id)
				return
			}

			var msg struct {
				Type           string  `json:"type"`
				StartX         float64 `json:"sx"`
				StartY         float64 `json:"sy"`
				GoalX          float64 `json:"gx"`
				GoalY          float64 `json:"gy"`
				Locomotor      string  `json:"locomotor"`
				AttackDistance float64 `json:"attack"`
			}
			if err := json.Unmarshal(payload, &msg); err != nil {
				log.Printf("discarding malformed message from %d: %v", id, err)
				continue
			}

			switch msg.Type {
			case "path":
				resp := hub.FindPath(nav.PathRequest{
					Start:          nav.Vec2{X: msg.StartX, Y: msg.StartY},
					Goal:           nav.Vec2{X: msg.GoalX, Y: msg.GoalY},
					AttackDistance: msg.AttackDistance,
				}, msg.Locomotor)
				data, err := json.Marshal(resp)
				if err != nil {
					log.Printf("failed to marshal path for %d: %v", id, err)
					continue
				}
				sub.mu.Lock()
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				err = conn.WriteMessage(websocket.TextMessage, data)
				sub.mu.Unlock()
				if err != nil {
					hub.Disconnect(id)
					return
				}
			default:
				log.Printf("unknown message type %q from %d", msg.Type, id)
			}
		}
	})

	log.Printf("navserve listening on %s (fixture %s)", *addr, *fixture)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func parsePathQuery(r *http.Request) (nav.PathRequest, string, error) {
	var req nav.PathRequest
	query := r.URL.Query()
	parse := func(key string) (float64, error) {
		v, err := strconv.ParseFloat(query.Get(key), 64)
		if err != nil {
			return 0, errBadParam(key)
		}
		return v, nil
	}
	var err error
	if req.Start.X, err = parse("sx"); err != nil {
		return req, "", err
	}
	if req.Start.Y, err = parse("sy"); err != nil {
		return req, "", err
	}
	if req.Goal.X, err = parse("gx"); err != nil {
		return req, "", err
	}
	if req.Goal.Y, err = parse("gy"); err != nil {
		return req, "", err
	}
	if raw := query.Get("attack"); raw != "" {
		if req.AttackDistance, err = strconv.ParseFloat(raw, 64); err != nil {
			return req, "", errBadParam("attack")
		}
	}
	return req, query.Get("locomotor"), nil
}

type errBadParam string

func (e errBadParam) Error() string {
	return "missing or malformed query parameter " + string(e)
}
