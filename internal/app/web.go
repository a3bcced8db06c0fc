package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/cansat_ground/internal/config"
	"github.com/relabs-tech/cansat_ground/internal/mission"
	"github.com/relabs-tech/cansat_ground/internal/telemetry"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const eventLogCapacity = 100

// webState holds the latest bus data the dashboard is served from.
type webState struct {
	mu         sync.RWMutex
	lastSample telemetry.Sample
	haveSample bool
	lastStatus mission.Status
	haveStatus bool

	events *mission.Log

	// publishCommand forwards an operator command to the producer.
	publishCommand func(cmd string) error

	wsMu      sync.Mutex
	wsClients map[*websocket.Conn]bool
}

func newWebState(publishCommand func(cmd string) error) *webState {
	return &webState{
		events:         mission.NewLog(eventLogCapacity),
		publishCommand: publishCommand,
		wsClients:      make(map[*websocket.Conn]bool),
	}
}

// telemetryResponse is the /api/telemetry payload: the raw sample plus the
// precomputed dial fills the gauges render from.
type telemetryResponse struct {
	telemetry.Sample
	PressureFill    float64 `json:"pressure_fill"`
	TemperatureFill float64 `json:"temp_fill"`
}

func (s *webState) setSample(sample telemetry.Sample) {
	s.mu.Lock()
	s.lastSample = sample
	s.haveSample = true
	s.mu.Unlock()

	s.broadcast(sample)
}

func (s *webState) setStatus(st mission.Status) {
	s.mu.Lock()
	s.lastStatus = st
	s.haveStatus = true
	s.mu.Unlock()
}

func (s *webState) addEvent(ev mission.Event) {
	s.events.Add(ev)
}

// handleTelemetry serves the latest sample as JSON.
func (s *webState) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.haveSample {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	resp := telemetryResponse{
		Sample:          s.lastSample,
		PressureFill:    s.lastSample.PressureFill(),
		TemperatureFill: s.lastSample.TemperatureFill(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// handleEvents serves the recent mission log lines, oldest first.
func (s *webState) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.events.Recent()); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// handleMission serves the mission status on GET and forwards start/stop/
// toggle actions to the producer on POST.
func (s *webState) handleMission(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.RLock()
		defer s.mu.RUnlock()
		if !s.haveStatus {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.lastStatus); err != nil {
			log.Printf("web: json encode error: %v", err)
		}

	case http.MethodPost:
		var req struct {
			Action string `json:"action"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		switch req.Action {
		case "start", "stop", "toggle":
		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
			return
		}
		if err := s.publishCommand(req.Action); err != nil {
			log.Printf("web: command publish error: %v", err)
			http.Error(w, "publish failed", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleCommand forwards a free-text operator command. The producer only
// echoes it to the mission log; commands are not interpreted.
func (s *webState) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Command string `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Command == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := s.publishCommand(req.Command); err != nil {
		log.Printf("web: command publish error: %v", err)
		http.Error(w, "publish failed", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleWS upgrades the connection and streams every incoming sample to the
// browser until the client goes away.
func (s *webState) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	s.wsMu.Lock()
	s.wsClients[conn] = true
	s.wsMu.Unlock()
	log.Printf("web: websocket client connected (%d active)", s.clientCount())

	// Read loop only detects the close; clients don't send data.
	go func() {
		defer s.dropClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("web: websocket error: %v", err)
				}
				return
			}
		}
	}()
}

func (s *webState) clientCount() int {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	return len(s.wsClients)
}

func (s *webState) dropClient(conn *websocket.Conn) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	if s.wsClients[conn] {
		delete(s.wsClients, conn)
		conn.Close()
	}
}

// broadcast pushes one sample to every connected websocket client.
func (s *webState) broadcast(sample telemetry.Sample) {
	payload, err := json.Marshal(sample)
	if err != nil {
		log.Printf("web: sample marshal error: %v", err)
		return
	}

	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	for conn := range s.wsClients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("web: websocket write error: %v", err)
			delete(s.wsClients, conn)
			conn.Close()
		}
	}
}

func (s *webState) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/telemetry", s.handleTelemetry)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/api/mission", s.handleMission)
	mux.HandleFunc("/api/command", s.handleCommand)
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/", http.FileServer(http.Dir("web")))
	return mux
}

// RunWeb serves the mission dashboard: a JSON API plus a websocket stream,
// fed from the MQTT bus.
func RunWeb() error {
	cfg := config.Get()

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	state := newWebState(func(cmd string) error {
		token := client.Publish(cfg.TopicCommand, 0, false, []byte(cmd))
		token.Wait()
		return token.Error()
	})

	// 2) Subscribe to the bus and keep the latest state
	token := client.Subscribe(cfg.TopicTelemetry, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var sample telemetry.Sample
		if err := json.Unmarshal(msg.Payload(), &sample); err != nil {
			log.Printf("web: telemetry unmarshal error: %v", err)
			return
		}
		state.setSample(sample)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicTelemetry)

	token = client.Subscribe(cfg.TopicEvents, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev mission.Event
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("web: event unmarshal error: %v", err)
			return
		}
		state.addEvent(ev)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicEvents)

	token = client.Subscribe(cfg.TopicStatus, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var st mission.Status
		if err := json.Unmarshal(msg.Payload(), &st); err != nil {
			log.Printf("web: status unmarshal error: %v", err)
			return
		}
		state.setStatus(st)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicStatus)

	// 3) HTTP API + static dashboard files from ./web
	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: dashboard listening on %s", addr)
	return http.ListenAndServe(addr, state.routes())
}
