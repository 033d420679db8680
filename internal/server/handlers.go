package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"
)

const pingCount = 5

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "欢迎使用 AI 对冲基金 API"})
}

type pingEvent struct {
	Ping      string `json:"ping"`
	Timestamp int    `json:"timestamp"`
}

// handlePing streams five heartbeats, pausing after each one.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	sse, ok := newSSEWriter(w)
	if !ok {
		writeDetail(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	timer := time.NewTimer(s.pingInterval)
	defer timer.Stop()
	for i := 1; i <= pingCount; i++ {
		if err := sse.send("", pingEvent{Ping: fmt.Sprintf("心跳 %d/%d", i, pingCount), Timestamp: i}); err != nil {
			hlog.FromRequest(r).Debug().Err(err).Msg("ping client gone")
			return
		}
		timer.Reset(s.pingInterval)
		select {
		case <-r.Context().Done():
			return
		case <-timer.C:
		}
	}
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"agents": s.registry.AgentsList()})
}

func (s *Server) handleSwarms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"swarms": s.registry.Swarms()})
}

func (s *Server) handleOllamaStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ollama.Check(r.Context()))
}
