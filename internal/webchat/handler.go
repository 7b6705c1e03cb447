package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/launchpadhq/intake-platform/internal/conversation"
	"github.com/launchpadhq/intake-platform/internal/intake"
	"github.com/launchpadhq/intake-platform/internal/leads"
	"github.com/launchpadhq/intake-platform/internal/observability/metrics"
	"github.com/launchpadhq/intake-platform/pkg/logging"
)

// Handler manages web chat connections and drives the intake engine.
// Each turn is processed synchronously to completion: parse, mutate the
// session, persist it, emit the reply.
type Handler struct {
	engine   *intake.Engine
	sessions intake.SessionStore
	leadsSvc *leads.Service
	archive  *conversation.Archive
	metrics  *metrics.IntakeMetrics
	logger   *logging.Logger
	widgetJS []byte

	mu    sync.RWMutex
	conns map[string]*wsConn // session id -> active connection
}

type wsConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type       string `json:"type"` // "message", "ping"
	BusinessID string `json:"business_id"`
	SessionID  string `json:"session_id"`
	Text       string `json:"text"`
	SourcePage string `json:"source_page,omitempty"`
	Referrer   string `json:"referrer,omitempty"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string           `json:"type"` // "message", "session", "history", "pong", "error"
	Text      string           `json:"text,omitempty"`
	Role      string           `json:"role,omitempty"`
	State     string           `json:"state,omitempty"`
	Done      bool             `json:"done,omitempty"`
	Escalated bool             `json:"escalated,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified message for history responses.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewHandler creates a web chat handler. archive and m may be nil.
func NewHandler(engine *intake.Engine, sessions intake.SessionStore, leadsSvc *leads.Service, archive *conversation.Archive, m *metrics.IntakeMetrics, widgetJS []byte, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		engine:   engine,
		sessions: sessions,
		leadsSvc: leadsSvc,
		archive:  archive,
		metrics:  m,
		logger:   logger,
		widgetJS: widgetJS,
		conns:    make(map[string]*wsConn),
	}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	businessID := r.URL.Query().Get("business")
	if businessID == "" {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "missing business parameter"})
		return
	}

	sessionID := r.URL.Query().Get("session")
	fresh := sessionID == ""
	if fresh {
		sessionID = generateSessionID()
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: sessionID,
	})

	ctx := r.Context()
	session, err := h.loadOrCreate(ctx, businessID, sessionID, r.URL.Query().Get("page"), r.Header.Get("Referer"))
	if err != nil {
		h.logger.Error("webchat: failed to load session", "error", err, "session_id", sessionID)
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "Sorry, something went wrong. Please try again."})
		return
	}

	if fresh || len(session.Transcript) == 0 {
		greeting := h.engine.Greeting(session)
		if err := h.persistTurn(ctx, session, nil, greeting.Reply); err != nil {
			h.logger.Error("webchat: failed to persist greeting", "error", err, "session_id", sessionID)
		}
		h.send(conn, replyMessage(greeting, sessionID))
	} else {
		h.send(conn, OutboundMessage{Type: "history", Messages: historyFromTranscript(session.Transcript)})
	}

	wsc := &wsConn{conn: conn, done: make(chan struct{})}
	h.mu.Lock()
	h.conns[sessionID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.conns[sessionID] == wsc {
			delete(h.conns, sessionID)
		}
		h.mu.Unlock()
		close(wsc.done)
	}()

	h.logger.Info("webchat: connection opened", "business_id", businessID, "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "business_id", businessID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		result, err := h.ProcessTurn(ctx, businessID, sessionID, msg.Text, msg.SourcePage, msg.Referrer)
		if err != nil {
			h.logger.Error("webchat: turn failed", "error", err, "session_id", sessionID)
			h.send(conn, OutboundMessage{Type: "error", Text: "Sorry, something went wrong. Please try again."})
			continue
		}
		h.send(conn, replyMessage(result, sessionID))
	}
}

// ProcessTurn runs one full chat turn: load session, advance the
// engine, persist, archive, and convert terminal sessions into leads.
func (h *Handler) ProcessTurn(ctx context.Context, businessID, sessionID, text, sourcePage, referrer string) (intake.TurnResult, error) {
	start := time.Now()

	session, err := h.loadOrCreate(ctx, businessID, sessionID, sourcePage, referrer)
	if err != nil {
		return intake.TurnResult{}, err
	}
	if len(session.Transcript) == 0 {
		// First contact arrived over HTTP without a greeting exchange.
		h.engine.Greeting(session)
	}

	stateBefore := session.State
	result := h.engine.ProcessTurn(ctx, session, text)

	if err := h.persistTurn(ctx, session, &text, result.Reply); err != nil {
		return intake.TurnResult{}, err
	}

	h.metrics.ObserveTurn(string(stateBefore), turnOutcome(stateBefore, result))
	h.metrics.ObserveTurnLatency(string(stateBefore), time.Since(start).Seconds())
	if result.Escalated && stateBefore != intake.StateEscalated {
		h.metrics.ObserveEscalation(result.EscalationCategory)
		h.archiveStatus(ctx, sessionID, "escalated")
	}
	if result.Done {
		h.convert(ctx, session)
	}
	return result, nil
}

func (h *Handler) loadOrCreate(ctx context.Context, businessID, sessionID, sourcePage, referrer string) (*intake.Session, error) {
	session, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, intake.ErrSessionNotFound) {
			return nil, err
		}
		session = intake.NewSession(sessionID, businessID)
		session.SourcePage = sourcePage
		session.Referrer = referrer
	}
	return session, nil
}

// persistTurn saves the session and mirrors new turns into the archive.
func (h *Handler) persistTurn(ctx context.Context, session *intake.Session, userText *string, botReply string) error {
	if err := h.sessions.Put(ctx, session); err != nil {
		return err
	}
	now := time.Now().UTC()
	if userText != nil {
		if err := h.archive.AppendMessage(ctx, session.BusinessID, session.ID, "user", *userText, now); err != nil {
			h.logger.Error("webchat: archive append failed", "error", err, "session_id", session.ID)
		}
	}
	if botReply != "" {
		if err := h.archive.AppendMessage(ctx, session.BusinessID, session.ID, "bot", botReply, now); err != nil {
			h.logger.Error("webchat: archive append failed", "error", err, "session_id", session.ID)
		}
	}
	return nil
}

// convert creates a Lead from a terminal session, once.
func (h *Handler) convert(ctx context.Context, session *intake.Session) {
	if session.Converted() {
		return
	}

	lead, err := h.leadsSvc.CreateFromSession(ctx, session)
	if err != nil {
		if errors.Is(err, leads.ErrMissingContact) {
			// The session stays unconverted; nothing to hand to an operator.
			h.logger.Info("webchat: session ended without contact info", "session_id", session.ID)
			return
		}
		h.logger.Error("webchat: lead creation failed", "error", err, "session_id", session.ID)
		return
	}

	session.LeadID = lead.ID
	if err := h.sessions.Put(ctx, session); err != nil {
		h.logger.Error("webchat: failed to mark session converted", "error", err, "session_id", session.ID)
	}

	if leadUUID, err := uuid.Parse(lead.ID); err == nil {
		if err := h.archive.LinkLead(ctx, session.ID, leadUUID); err != nil {
			h.logger.Error("webchat: failed to link lead", "error", err, "session_id", session.ID)
		}
	}
	h.archiveStatus(ctx, session.ID, "converted")
	h.metrics.ObserveLeadCreated(string(lead.Hotness), string(lead.Intent))
}

func (h *Handler) archiveStatus(ctx context.Context, sessionID, status string) {
	if err := h.archive.UpdateStatus(ctx, sessionID, status); err != nil {
		h.logger.Error("webchat: failed to update archive status", "error", err, "session_id", sessionID)
	}
}

func (h *Handler) send(conn *websocket.Conn, msg OutboundMessage) {
	_ = websocket.JSON.Send(conn, msg)
}

// turnOutcome labels a turn for metrics.
func turnOutcome(before intake.State, result intake.TurnResult) string {
	switch {
	case result.Escalated && before != intake.StateEscalated:
		return "escalated"
	case result.Done:
		return "complete"
	case result.State == before:
		return "retry"
	default:
		return "advanced"
	}
}

func replyMessage(result intake.TurnResult, sessionID string) OutboundMessage {
	return OutboundMessage{
		Type:      "message",
		Role:      "bot",
		Text:      result.Reply,
		State:     string(result.State),
		Done:      result.Done,
		Escalated: result.Escalated,
		SessionID: sessionID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func historyFromTranscript(transcript []intake.Message) []HistoryMessage {
	history := make([]HistoryMessage, 0, len(transcript))
	for _, m := range transcript {
		history = append(history, HistoryMessage{
			Role:      string(m.Role),
			Text:      m.Content,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		})
	}
	return history
}

// TurnRequest is the HTTP fallback request body.
type TurnRequest struct {
	BusinessID string `json:"business_id"`
	SessionID  string `json:"session_id"`
	Message    string `json:"message"`
	SourcePage string `json:"source_page,omitempty"`
	Referrer   string `json:"referrer,omitempty"`
}

// TurnResponse is the HTTP fallback response body.
type TurnResponse struct {
	Reply     string `json:"reply"`
	State     string `json:"state"`
	Done      bool   `json:"done"`
	Escalated bool   `json:"escalated"`
	SessionID string `json:"session_id"`
}

// StartRequest opens a session over HTTP and asks for the greeting.
type StartRequest struct {
	BusinessID string `json:"business_id"`
	SessionID  string `json:"session_id,omitempty"`
	SourcePage string `json:"source_page,omitempty"`
	Referrer   string `json:"referrer,omitempty"`
}

// HandleStart creates or resumes a session and returns the greeting or
// the existing history.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.BusinessID == "" {
		http.Error(w, "business_id is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = generateSessionID()
	}

	ctx := r.Context()
	session, err := h.loadOrCreate(ctx, req.BusinessID, req.SessionID, req.SourcePage, req.Referrer)
	if err != nil {
		h.logger.Error("webchat: failed to start session", "error", err, "session_id", req.SessionID)
		http.Error(w, "failed to start session", http.StatusInternalServerError)
		return
	}

	var reply string
	if len(session.Transcript) == 0 {
		result := h.engine.Greeting(session)
		reply = result.Reply
		if err := h.persistTurn(ctx, session, nil, reply); err != nil {
			h.logger.Error("webchat: failed to persist greeting", "error", err, "session_id", req.SessionID)
			http.Error(w, "failed to start session", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"session_id": session.ID,
		"reply":      reply,
		"state":      string(session.State),
		"messages":   historyFromTranscript(session.Transcript),
	})
}

// HandleMessage is the HTTP fallback for sending messages.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.BusinessID == "" || strings.TrimSpace(req.Message) == "" {
		http.Error(w, "business_id and message are required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = generateSessionID()
	}

	result, err := h.ProcessTurn(r.Context(), req.BusinessID, req.SessionID, req.Message, req.SourcePage, req.Referrer)
	if err != nil {
		h.logger.Error("webchat: turn failed", "error", err, "session_id", req.SessionID)
		http.Error(w, "failed to process message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(TurnResponse{
		Reply:     result.Reply,
		State:     string(result.State),
		Done:      result.Done,
		Escalated: result.Escalated,
		SessionID: req.SessionID,
	})
}

// HandleHistory returns chat history for a session.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, intake.ErrSessionNotFound) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"messages": []HistoryMessage{}})
			return
		}
		h.logger.Error("webchat: failed to load history", "error", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": historyFromTranscript(session.Transcript)})
}

// HandleWidgetJS serves the embeddable widget JavaScript.
func (h *Handler) HandleWidgetJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(h.widgetJS)
}
