package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/fieldex/internal/pipeline"
	"github.com/MeKo-Tech/fieldex/internal/region"
	"github.com/gorilla/websocket"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// WebSocketExtractRequest is an extraction request sent over WebSocket.
// Exactly one of Image or Regions is expected.
type WebSocketExtractRequest struct {
	Type    string              `json:"type"` // "image" or "regions"
	Image   []byte              `json:"image,omitempty"`
	Regions []region.RegionJSON `json:"regions,omitempty"`
}

// WebSocketExtractResponse is one message of a streamed extraction session.
type WebSocketExtractResponse struct {
	Type     string                   `json:"type"`   // "region" or "document"
	Status   string                   `json:"status"` // "processing", "completed", "error"
	Region   *pipeline.RegionResult   `json:"region,omitempty"`
	Result   *pipeline.DocumentResult `json:"result,omitempty"`
	Error    string                   `json:"error,omitempty"`
	Sequence int                      `json:"sequence,omitempty"`
}

// extractWebSocketHandler handles WebSocket connections for streamed
// extraction: region results are emitted one by one in reading order before
// the final document result.
func (s *Server) extractWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)
	s.handleWebSocketConnection(r, conn)
}

func (s *Server) handleWebSocketConnection(r *http.Request, conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Keep the connection alive while extraction runs
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(r, conn, data)
		}
	}
}

func (s *Server) handleWebSocketMessage(r *http.Request, conn *websocket.Conn, data []byte) {
	var req WebSocketExtractRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	start := time.Now()
	var (
		res *pipeline.DocumentResult
		err error
	)
	switch req.Type {
	case "image":
		if len(req.Image) == 0 {
			s.sendWebSocketError(conn, "No image data provided")
			return
		}
		decoded, derr := pipeline.DecodeImage(req.Image)
		if derr != nil {
			s.sendWebSocketError(conn, fmt.Sprintf("Failed to decode image: %v", derr))
			return
		}
		res, err = s.pipeline.ProcessImage(r.Context(), decoded)
	case "regions":
		if len(req.Regions) == 0 {
			s.sendWebSocketError(conn, "No regions provided")
			return
		}
		regions := make([]region.TextRegion, 0, len(req.Regions))
		for _, rj := range req.Regions {
			regions = append(regions, region.FromJSON(rj))
		}
		res = s.pipeline.ProcessRegions(regions)
	default:
		s.sendWebSocketError(conn, "Unsupported request type: "+req.Type)
		return
	}
	if err != nil {
		extractionRequestsTotal.WithLabelValues("websocket", "error").Inc()
		s.sendWebSocketError(conn, fmt.Sprintf("Extraction failed: %v", err))
		return
	}

	// Stream region results in reading order before the document summary
	seq := 0
	for rr := range s.pipeline.Stream(r.Context(), res) {
		seq++
		s.sendWebSocketResponse(conn, WebSocketExtractResponse{
			Type:     "region",
			Status:   "processing",
			Region:   &rr,
			Sequence: seq,
		})
	}

	observeExtraction("websocket", time.Since(start).Seconds(), len(res.Fields), res.Confidence)
	s.sendWebSocketResponse(conn, WebSocketExtractResponse{
		Type:   "document",
		Status: "completed",
		Result: res,
	})
}

func (s *Server) sendWebSocketResponse(conn *websocket.Conn, resp WebSocketExtractResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("failed to marshal WebSocket response", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("failed to send WebSocket message", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

func (s *Server) sendWebSocketError(conn *websocket.Conn, message string) {
	s.sendWebSocketResponse(conn, WebSocketExtractResponse{
		Type:   "document",
		Status: "error",
		Error:  message,
	})
}
