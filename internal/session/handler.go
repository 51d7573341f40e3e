package session

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/goldencrust/interview-agent/internal/agent"
	"github.com/goldencrust/interview-agent/internal/config"
	"github.com/goldencrust/interview-agent/internal/contract"
	"github.com/goldencrust/interview-agent/internal/model"
	"github.com/goldencrust/interview-agent/internal/persona"
	"github.com/goldencrust/interview-agent/internal/resilience"
	"github.com/goldencrust/interview-agent/internal/store"
	"github.com/goldencrust/interview-agent/internal/verify"
	"github.com/goldencrust/interview-agent/pkg/anthropic"
	"github.com/goldencrust/interview-agent/pkg/elevenlabs"
	"github.com/goldencrust/interview-agent/pkg/groq"
)

// Handler orchestrates live interview sessions over websocket. Each
// connection gets its own session loop; the loop owns that session's state
// exclusively and serializes its turns. Sessions only share the registry.
type Handler struct {
	store    store.Store
	loader   *contract.Loader
	llm      anthropic.Client
	stt      groq.Transcriber
	tts      elevenlabs.Synthesizer
	registry *Registry
	monitor  *persona.Monitor

	model string
	cfg   config.InterviewConfig

	upgrader websocket.Upgrader
}

// NewHandler wires the session orchestrator.
func NewHandler(s store.Store, llm anthropic.Client, stt groq.Transcriber, tts elevenlabs.Synthesizer, model string, cfg config.InterviewConfig) *Handler {
	return &Handler{
		store:    s,
		loader:   contract.NewLoader(s),
		llm:      llm,
		stt:      stt,
		tts:      tts,
		registry: NewRegistry(),
		monitor:  persona.NewMonitor(),
		model:    model,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Registry exposes the active-session registry, mainly for observability.
func (h *Handler) Registry() *Registry {
	return h.registry
}

// ServeHTTP upgrades GET /ws/interview/{candidateID} and runs the session
// loop until the client ends the interview or disconnects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "candidateID")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Audio frames are base64 inside JSON; allow for the encoding overhead.
	conn.SetReadLimit(h.cfg.MaxAudioBytes*2 + 4096)

	h.runSession(r.Context(), conn, candidateID)
}

func (h *Handler) runSession(ctx context.Context, conn *websocket.Conn, candidateID string) {
	interviewID := uuid.NewString()
	log := zap.L().With(
		zap.String("interview_id", interviewID),
		zap.String("candidate_id", candidateID),
	)

	ct, err := h.loader.Load(ctx, candidateID, interviewID)
	if err != nil {
		log.Error("contract load failed", zap.Error(err))
		h.writeError(conn, "candidate not found or contract could not be created")
		return
	}

	state, err := agent.NewState(ct)
	if err != nil {
		log.Error("session init failed", zap.Error(err))
		h.writeError(conn, "interview cannot be conducted for this role")
		return
	}

	// The registration form is optional context; a candidate without one
	// still gets interviewed, just without form-contradiction checks.
	form, err := h.store.GetRegistrationForm(ctx, candidateID)
	if err != nil {
		log.Warn("registration form unavailable", zap.Error(err))
		form = nil
	}
	pipeline := agent.NewPipeline(h.llm, verify.NewFormDetector(form), h.model, h.cfg)

	if err := h.store.CreateInterview(ctx, interviewID, candidateID, state.StartedAt); err != nil {
		// The live path survives without the row; persistence will keep
		// failing and logging until the operator notices.
		log.Error("create interview record failed", zap.Error(err))
	}

	h.registry.Put(&Session{ID: interviewID, CandidateID: candidateID, State: state})
	defer h.registry.Remove(interviewID)

	log.Info("session started", zap.String("full_name", ct.FullName()))

	// Opening turn: empty input produces the greeting. The interview row
	// already exists, so even these early exits must finalize it.
	if err := pipeline.ProcessTurn(ctx, state, ""); err != nil {
		log.Error("opening turn failed", zap.Error(err))
		h.writeError(conn, "interview error")
		h.finalize(state, log)
		return
	}
	if err := h.sendResponse(ctx, conn, state, true); err != nil {
		log.Warn("send opening failed", zap.Error(err))
		h.finalize(state, log)
		return
	}

	limiter := rate.NewLimiter(rate.Limit(float64(h.cfg.MessagesPerMin)/60.0), 5)

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.Warn("client disconnected", zap.Error(err))
			h.finalize(state, log)
			return
		}

		switch msg.Type {
		case "audio":
			if err := h.handleAudioTurn(ctx, conn, pipeline, state, msg, limiter, log); err != nil {
				log.Error("session loop error", zap.Error(err))
				h.writeError(conn, "interview error")
				h.finalize(state, log)
				return
			}

		case "end":
			log.Info("interview ended by client", zap.Int("turns", state.TurnCount))
			h.finalize(state, log)
			h.writeJSON(conn, serverMessage{
				Type:    "status",
				Status:  "completed",
				Message: "Interview completed",
			})
			return

		default:
			h.writeError(conn, "unknown message type")
		}
	}
}

// handleAudioTurn processes one inbound audio frame end to end. The returned
// error is fatal for the session; degraded collaborator failures are absorbed.
func (h *Handler) handleAudioTurn(ctx context.Context, conn *websocket.Conn, pipeline *agent.Pipeline, state *agent.State, msg clientMessage, limiter *rate.Limiter, log *zap.Logger) error {
	if !limiter.Allow() {
		log.Warn("message rate limit exceeded")
		h.writeError(conn, "slow down")
		return nil
	}

	audio, err := base64.StdEncoding.DecodeString(msg.Data)
	if err != nil {
		h.writeError(conn, "invalid audio encoding")
		return nil
	}
	if int64(len(audio)) > h.cfg.MaxAudioBytes {
		h.writeError(conn, "audio payload too large")
		return nil
	}

	transcript := h.transcribe(ctx, audio, log)

	// Candidate speaking English gets a system-note annotation on the
	// transcript; the model is steered, the stored response untouched.
	if used, redirect := h.monitor.Check(transcript); used {
		log.Info("candidate used english")
		transcript += " [SYSTEM_NOTE: candidate used English - redirect them: " + redirect + "]"
	}

	if err := pipeline.ProcessTurn(ctx, state, transcript); err != nil {
		return eris.Wrap(err, "session: process turn")
	}

	if err := h.sendResponse(ctx, conn, state, false); err != nil {
		return eris.Wrap(err, "session: send response")
	}

	// Fire-and-forget persistence: the client already has its audio, the
	// store catches up when it catches up.
	h.persistAsync(state, log)
	return nil
}

// transcribe runs STT with retries. A failure is treated as silence; the
// agent asks the candidate to repeat rather than the session dying.
func (h *Handler) transcribe(ctx context.Context, audio []byte, log *zap.Logger) string {
	callCtx, cancel := context.WithTimeout(ctx, h.cfg.TurnTimeout())
	defer cancel()

	text, err := resilience.DoVal(callCtx, resilience.DefaultPolicy(), func(ctx context.Context) (string, error) {
		return h.stt.Transcribe(ctx, audio)
	})
	if err != nil {
		log.Error("transcription failed", zap.Error(err))
		return ""
	}
	return text
}

// sendResponse synthesizes the latest agent utterance and writes the audio
// frame. Synthesis failure degrades to a text-only frame.
func (h *Handler) sendResponse(ctx context.Context, conn *websocket.Conn, state *agent.State, opening bool) error {
	callCtx, cancel := context.WithTimeout(ctx, h.cfg.TurnTimeout())
	defer cancel()

	var encoded string
	audio, err := resilience.DoVal(callCtx, resilience.DefaultPolicy(), func(ctx context.Context) ([]byte, error) {
		return h.tts.Synthesize(ctx, state.LatestResponse)
	})
	if err != nil {
		zap.L().Error("synthesis failed, sending text-only frame",
			zap.String("interview_id", state.InterviewID),
			zap.Error(err),
		)
	} else {
		encoded = base64.StdEncoding.EncodeToString(audio)
	}

	meta := &metadata{
		Text:  state.LatestResponse,
		Stage: string(state.Stage),
		Turn:  state.TurnCount,
	}
	if opening {
		meta.InterviewID = state.InterviewID
	}

	return h.writeJSON(conn, serverMessage{Type: "audio", Data: encoded, Metadata: meta})
}

// persistAsync writes the transcript so far without blocking the audio path.
// The slices are copied first: the session loop keeps appending while the
// write is in flight.
func (h *Handler) persistAsync(state *agent.State, log *zap.Logger) {
	turns := make([]model.Turn, len(state.History))
	copy(turns, state.History)
	inconsistencies := make([]model.Inconsistency, len(state.Inconsistencies))
	copy(inconsistencies, state.Inconsistencies)
	interviewID := state.InterviewID

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.store.AppendTranscript(ctx, interviewID, turns, inconsistencies); err != nil {
			log.Error("transcript persist failed", zap.Error(err))
		}
	}()
}

// finalize marks the interview completed. Runs on end and on disconnect;
// uses a fresh context since the request context is gone by then.
func (h *Handler) finalize(state *agent.State, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	turns := make([]model.Turn, len(state.History))
	copy(turns, state.History)
	inconsistencies := make([]model.Inconsistency, len(state.Inconsistencies))
	copy(inconsistencies, state.Inconsistencies)

	if err := h.store.AppendTranscript(ctx, state.InterviewID, turns, inconsistencies); err != nil {
		log.Error("final transcript persist failed", zap.Error(err))
	}
	if err := h.store.MarkCompleted(ctx, state.InterviewID, state.Duration()); err != nil {
		log.Error("mark completed failed", zap.Error(err))
	}
}

func (h *Handler) writeError(conn *websocket.Conn, message string) {
	h.writeJSON(conn, serverMessage{Type: "error", Message: message})
}

func (h *Handler) writeJSON(conn *websocket.Conn, msg serverMessage) error {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(msg)
}
