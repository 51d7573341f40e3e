package agent

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/goldencrust/interview-agent/internal/config"
	"github.com/goldencrust/interview-agent/internal/model"
	"github.com/goldencrust/interview-agent/internal/persona"
	"github.com/goldencrust/interview-agent/internal/resilience"
	"github.com/goldencrust/interview-agent/internal/stage"
	"github.com/goldencrust/interview-agent/internal/verify"
	"github.com/goldencrust/interview-agent/pkg/anthropic"
)

// fallbackUtterance is spoken when generation fails; the session continues.
const fallbackUtterance = "عذراً، حدث خطأ. ممكن تعيد الجواب؟"

// silenceMarker stands in for an empty transcript on the wire; the messages
// API rejects empty text blocks. History keeps the empty text as-is.
const silenceMarker = "[صمت]"

// Pipeline runs the fixed per-turn processing sequence: verify contract
// integrity, detect form contradictions in the candidate's answer, generate,
// verify facts, enforce persona, record the turn, check the stage
// transition. It is strictly linear; every step transforms the session state
// and hands it to the next.
type Pipeline struct {
	llm      anthropic.Client
	enforcer *persona.Enforcer
	detector *verify.FormDetector

	model       string
	temperature float64
	maxTokens   int64
	turnTimeout time.Duration
}

// NewPipeline wires the turn pipeline. detector may be built over a nil form
// when the candidate has no registration form on record.
func NewPipeline(llm anthropic.Client, detector *verify.FormDetector, model string, cfg config.InterviewConfig) *Pipeline {
	return &Pipeline{
		llm:         llm,
		enforcer:    persona.NewEnforcer(),
		detector:    detector,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		turnTimeout: cfg.TurnTimeout(),
	}
}

// ProcessTurn advances the session by one turn. userInput is empty for the
// opening turn. The only error it returns is fatal for the session: a failed
// contract integrity check. Generation failures degrade to the fallback
// utterance; verification and persona steps absorb their own failures.
func (p *Pipeline) ProcessTurn(ctx context.Context, s *State, userInput string) error {
	// Step 1: a contract that no longer matches its digest means a bug or
	// tampering; never continue on it.
	if !s.Contract.VerifyIntegrity() {
		return eris.Errorf("agent: contract integrity check failed for interview %s", s.InterviewID)
	}

	// Only the very first turn with no input is the opening. An empty input
	// mid-session is a real turn (silent or unintelligible audio).
	opening := s.TurnCount == 0 && userInput == ""

	s.LatestUserInput = userInput

	// Step 2: the candidate's answer may contradict their registration form.
	if userInput != "" && p.detector != nil {
		if inc := p.detector.Detect(userInput, s.TurnCount+1); inc != nil {
			s.Inconsistencies = append(s.Inconsistencies, *inc)
			zap.L().Info("form inconsistency detected",
				zap.String("interview_id", s.InterviewID),
				zap.String("type", string(inc.Type)),
			)
		}
	}

	// Step 3: generate.
	response := p.generate(ctx, s, userInput)

	// Step 4: verify facts; hallucinations are corrected, recorded, and the
	// original never reaches the candidate.
	verifier := verify.NewVerifier(s.Contract)
	if res := verifier.Verify(response); !res.Valid {
		zap.L().Warn("hallucination corrected",
			zap.String("interview_id", s.InterviewID),
			zap.String("detail", res.Error),
		)
		s.Inconsistencies = append(s.Inconsistencies, model.Inconsistency{
			Type:           model.InconsistencyLLMHallucination,
			FormValue:      response,
			InterviewValue: res.Corrected,
			Severity:       model.SeverityHigh,
			Description:    res.Error,
			Turn:           s.TurnCount + 1,
			Timestamp:      time.Now().UTC(),
		})
		response = res.Corrected
	}

	// Step 5: enforce persona, lenient. Never blocks a live turn.
	response = p.enforcer.Enforce(response, false).Text
	s.LatestResponse = response

	// Record the turn: candidate entry first (only the opening turn has
	// none), then the agent entry, in chronological order. A silent turn
	// records an empty candidate entry so every turn adds exactly two.
	now := time.Now().UTC()
	if !opening {
		s.History = append(s.History, model.Turn{Role: model.RoleCandidate, Text: userInput, Timestamp: now})
	}
	s.History = append(s.History, model.Turn{Role: model.RoleAgent, Text: response, Timestamp: now})
	s.TurnCount++
	s.QuestionsAsked = append(s.QuestionsAsked, stage.QuestionID(s.Stage, len(s.QuestionsAsked)))

	// Step 6: stage transition over the updated asked-question list, so the
	// stage advances on the very turn its threshold question was recorded.
	s.Stage = stage.Advance(s.Stage, s.QuestionsAsked)

	return nil
}

// generate calls the LLM with the fact-constrained prompt. Any failure after
// retries degrades to the fixed fallback utterance.
func (p *Pipeline) generate(ctx context.Context, s *State, userInput string) string {
	messages := make([]anthropic.Message, 0, len(s.History)+1)
	for _, turn := range s.History {
		role := "user"
		if turn.Role == model.RoleAgent {
			role = "assistant"
		}
		text := turn.Text
		if text == "" {
			text = silenceMarker
		}
		messages = append(messages, anthropic.Message{Role: role, Content: text})
	}
	switch {
	case userInput != "":
		messages = append(messages, anthropic.Message{Role: "user", Content: userInput})
	case len(messages) == 0:
		// Opening turn: the model needs something to respond to.
		messages = append(messages, anthropic.Message{Role: "user", Content: "ابدئي المقابلة"})
	default:
		// Silent turn: the model reacts to the silence, not to its own
		// previous utterance.
		messages = append(messages, anthropic.Message{Role: "user", Content: silenceMarker})
	}

	temp := p.temperature
	req := anthropic.MessageRequest{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		Temperature: &temp,
		System:      anthropic.BuildCachedSystemBlocks(buildSystemPrompt(s.Contract, s.Role, s.Stage)),
		Messages:    messages,
	}

	callCtx, cancel := context.WithTimeout(ctx, p.turnTimeout)
	defer cancel()

	resp, err := resilience.DoVal(callCtx, resilience.DefaultPolicy(), func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return p.llm.CreateMessage(ctx, req)
	})
	if err != nil {
		zap.L().Error("generation failed, using fallback utterance",
			zap.String("interview_id", s.InterviewID),
			zap.Error(err),
		)
		return fallbackUtterance
	}

	resp.Usage.LogCost(p.model, "turn")

	text := strings.TrimSpace(resp.FirstText())
	if text == "" {
		zap.L().Warn("empty generation, using fallback utterance",
			zap.String("interview_id", s.InterviewID))
		return fallbackUtterance
	}
	return text
}
