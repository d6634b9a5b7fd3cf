package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"txnsim/internal/engine"
	"txnsim/internal/events"
	"txnsim/internal/logger"
	"txnsim/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/websocket"
)

// Server はバッチ実行を外部から起動・観測するためのAPIサーバー
type Server struct {
	addr      string
	base      engine.Config
	log       *logger.Logger
	registry  *prometheus.Registry
	collector *metrics.Collector
	bus       *events.Bus

	mu        sync.RWMutex
	running   bool
	current   string
	last      *engine.Result
	lastErr   string
	runs      int
	wsClients map[*websocket.Conn]bool

	server *http.Server
}

// NewServer は新しいAPIサーバーを作成する
// base は各実行の既定設定（ロガーや起動方法を含む）
func NewServer(addr string, base engine.Config) *Server {
	log := base.Logger
	if log == nil {
		log = logger.Default
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Server{
		addr:      addr,
		base:      base,
		log:       log,
		registry:  registry,
		collector: metrics.NewCollector("txnsim", registry),
		bus:       events.NewBus(),
		wsClients: make(map[*websocket.Conn]bool),
	}
}

// Handler はルーティング済みのハンドラを返す
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/run", s.handleRun)
	mux.HandleFunc("/api/result", s.handleResult)
	mux.HandleFunc("/api/presets", s.handlePresets)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.Handle("/ws", websocket.Handler(s.handleWebSocket))

	return mux
}

// Start はサーバーを開始する
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.forwardEvents(ctx)

	s.log.Info("", "API Server starting on http://%s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
		s.bus.Close()
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StatusResponse はステータスレスポンス
type StatusResponse struct {
	Running       bool   `json:"running"`
	CurrentRun    string `json:"current_run,omitempty"`
	LastRunID     string `json:"last_run_id,omitempty"`
	LastError     string `json:"last_error,omitempty"`
	CompletedRuns int    `json:"completed_runs"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	resp := StatusResponse{
		Running:       s.running,
		CurrentRun:    s.current,
		LastError:     s.lastErr,
		CompletedRuns: s.runs,
	}
	if s.last != nil {
		resp.LastRunID = s.last.RunID
	}
	s.mu.RUnlock()

	s.writeJSON(w, http.StatusOK, resp)
}

// RunRequest はバッチ実行リクエスト
type RunRequest struct {
	Preset       string  `json:"preset,omitempty"`
	Transactions int     `json:"transactions,omitempty"`
	Workers      int     `json:"workers,omitempty"`
	Seed         int64   `json:"seed,omitempty"`
	LatencyScale float64 `json:"latency_scale,omitempty"`
}

// configFor はリクエストから実行設定を組み立てる
func (s *Server) configFor(req RunRequest) (engine.Config, error) {
	config := s.base
	if req.Preset != "" {
		preset, ok := engine.GetPreset(req.Preset)
		if !ok {
			return config, errors.New("unknown preset: " + req.Preset)
		}
		config = preset
	}

	config.Logger = s.log
	config.Launcher = s.base.Launcher
	config.Collector = s.collector

	if req.Transactions > 0 {
		config.Transactions = req.Transactions
	}
	if req.Workers > 0 {
		config.Workers = req.Workers
	}
	if req.Seed != 0 {
		config.Seed = req.Seed
	}
	if req.LatencyScale > 0 {
		config.LatencyScale = req.LatencyScale
	}

	return config, config.Validate()
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	config, err := s.configFor(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		http.Error(w, "Batch run already in progress", http.StatusConflict)
		return
	}
	s.running = true
	s.current = config.Name
	s.mu.Unlock()

	eng := engine.New(config)
	eng.SetEventBus(s.bus)

	if r.URL.Query().Get("wait") == "true" {
		result, err := s.execute(eng)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
		return
	}

	go func() {
		_, _ = s.execute(eng)
	}()

	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "started", "name": config.Name})
}

// execute は実行を行い、結果をサーバーの状態に反映する
func (s *Server) execute(eng *engine.Engine) (*engine.Result, error) {
	result, err := eng.Run()

	s.mu.Lock()
	s.running = false
	s.current = ""
	if err != nil {
		s.lastErr = err.Error()
	} else {
		s.last = result
		s.lastErr = ""
		s.runs++
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error("", "Batch run failed: %v", err)
		return nil, err
	}
	s.log.Info("", "Batch run %s completed in %.3f seconds", result.RunID, result.ElapsedSeconds())
	return result, nil
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	if last == nil {
		http.Error(w, "No completed run", http.StatusNotFound)
		return
	}

	s.writeJSON(w, http.StatusOK, last)
}

// PresetInfo はプリセット情報
type PresetInfo struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Transactions int     `json:"transactions"`
	Workers      int     `json:"workers"`
	LatencyScale float64 `json:"latency_scale"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	presets := make([]PresetInfo, 0, len(engine.ListPresets()))
	for _, name := range engine.ListPresets() {
		p, _ := engine.GetPreset(name)
		presets = append(presets, PresetInfo{
			Name:         p.Name,
			Description:  p.Description,
			Transactions: p.Transactions,
			Workers:      p.Workers,
			LatencyScale: p.LatencyScale,
		})
	}

	s.writeJSON(w, http.StatusOK, presets)
}

// WebSocket handling
func (s *Server) handleWebSocket(ws *websocket.Conn) {
	s.mu.Lock()
	s.wsClients[ws] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.wsClients, ws)
		s.mu.Unlock()
		_ = ws.Close()
	}()

	// クライアントが切断するまで保持
	for {
		var msg string
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			break
		}
	}
}

func (s *Server) clientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.wsClients)
}

func (s *Server) broadcast(data any) {
	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.wsClients))
	for ws := range s.wsClients {
		clients = append(clients, ws)
	}
	s.mu.RUnlock()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}

	for _, ws := range clients {
		_ = websocket.Message.Send(ws, string(jsonData))
	}
}

// forwardEvents はイベントバスの内容をWebSocketクライアントへ中継する
func (s *Server) forwardEvents(ctx context.Context) {
	ch := s.bus.Subscribe()
	defer s.bus.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			s.broadcast(event)
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("", "Failed to encode JSON: %v", err)
	}
}
