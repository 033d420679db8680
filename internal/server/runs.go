package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dyike/CortexHedge/consts"
	"github.com/dyike/CortexHedge/models"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/hlog"
)

// handleRun streams a run as SSE. Request errors are answered with a plain
// JSON error because no frame has been written yet.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req models.HedgeFundRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var (
		sse    *sseWriter
		broken bool
		logger = hlog.FromRequest(r)
	)
	sink := func(ev models.Event) {
		if broken {
			return
		}
		if sse == nil {
			var ok bool
			if sse, ok = newSSEWriter(w); !ok {
				broken = true
				return
			}
		}
		if err := sse.send(ev.Type, ev); err != nil {
			logger.Debug().Err(err).Msg("run client gone")
			broken = true
		}
	}

	_, _, err := s.runs.Run(r.Context(), &req, sink)
	if err != nil && sse == nil && !broken {
		writeError(w, r, err)
	}
}

const wsWriteWait = 10 * time.Second

// handleRunWebsocket reads one run request and sends every event as a JSON
// text message.
func (s *Server) handleRunWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	var req models.HedgeFundRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.writeWS(conn, models.Event{Type: consts.Event_Error, Message: "invalid run request: " + err.Error(), Timestamp: time.Now()})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		// any read error means the client is gone
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	started := false
	_, _, err = s.runs.Run(ctx, &req, func(ev models.Event) {
		started = true
		s.writeWS(conn, ev)
	})
	if err != nil && !started {
		s.writeWS(conn, models.Event{Type: consts.Event_Error, Message: err.Error(), Timestamp: time.Now()})
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(wsWriteWait))
}

func (s *Server) writeWS(conn *websocket.Conn, ev models.Event) {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(ev); err != nil {
		s.logger.Debug().Err(err).Msg("websocket write")
	}
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cursor, _ := strconv.ParseInt(q.Get("cursor"), 10, 64)
	limit, _ := strconv.Atoi(q.Get("limit"))

	page, err := s.store.ListRuns(r.Context(), cursor, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
