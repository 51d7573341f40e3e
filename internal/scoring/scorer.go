package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goldencrust/interview-agent/internal/config"
	"github.com/goldencrust/interview-agent/internal/model"
	"github.com/goldencrust/interview-agent/internal/resilience"
	"github.com/goldencrust/interview-agent/internal/store"
	"github.com/goldencrust/interview-agent/pkg/anthropic"
)

const scoringSystemPrompt = "أنت خبير تقييم مصداقية موارد بشرية. أعطِ JSON فقط بدون أي نص إضافي."

// Scorer produces post-interview credibility reports by comparing the
// registration form against the spoken transcript.
type Scorer struct {
	llm           anthropic.Client
	store         store.Store
	model         string
	maxTokens     int64
	maxConcurrent int
}

// NewScorer wires the credibility scoring engine.
func NewScorer(llm anthropic.Client, st store.Store, cfg config.ScoringConfig) *Scorer {
	return &Scorer{
		llm:           llm,
		store:         st,
		model:         cfg.Model,
		maxTokens:     cfg.MaxTokens,
		maxConcurrent: cfg.MaxConcurrent,
	}
}

// Score assesses one completed interview and persists the resulting report.
func (s *Scorer) Score(ctx context.Context, interviewID string) (*model.CredibilityReport, error) {
	iv, err := s.store.GetInterview(ctx, interviewID)
	if err != nil {
		return nil, eris.Wrapf(err, "scoring: load interview %s", interviewID)
	}
	if iv.Status != model.InterviewStatusCompleted {
		return nil, eris.Errorf("scoring: interview %s is %s, not completed", interviewID, iv.Status)
	}

	form, err := s.store.GetRegistrationForm(ctx, iv.CandidateID)
	if err != nil {
		zap.L().Warn("registration form unavailable for scoring",
			zap.String("interview_id", interviewID),
			zap.Error(err),
		)
		form = nil
	}

	prompt := buildScoringPrompt(form, iv.Transcript, iv.Inconsistencies)

	temperature := 0.2
	resp, err := resilience.DoVal(ctx, resilience.DefaultPolicy(), func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return s.llm.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       s.model,
			MaxTokens:   s.maxTokens,
			System:      []anthropic.SystemBlock{{Text: scoringSystemPrompt}},
			Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
			Temperature: &temperature,
		})
	})
	if err != nil {
		return nil, eris.Wrapf(err, "scoring: model call for interview %s", interviewID)
	}
	resp.Usage.LogCost(s.model, "scoring")

	v, err := parseVerdict(resp.FirstText())
	if err != nil {
		zap.L().Error("verdict unparseable, using fallback score",
			zap.String("interview_id", interviewID),
			zap.Error(err),
		)
		v = fallbackVerdict()
	}

	report := v.toReport(interviewID)
	if err := s.store.SaveCredibilityReport(ctx, report); err != nil {
		return nil, eris.Wrapf(err, "scoring: save report %s", interviewID)
	}

	zap.L().Info("credibility report saved",
		zap.String("interview_id", interviewID),
		zap.Int("score", report.Score),
		zap.String("level", report.Level),
	)
	return report, nil
}

// ScorePending scores every completed interview that has no report yet.
// Interviews are scored concurrently; the first failure cancels the rest.
func (s *Scorer) ScorePending(ctx context.Context) (int, error) {
	pending, err := s.store.ListInterviews(ctx, model.InterviewFilter{
		Status:   model.InterviewStatusCompleted,
		Unscored: true,
	})
	if err != nil {
		return 0, eris.Wrap(err, "scoring: list pending interviews")
	}
	if len(pending) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for _, iv := range pending {
		iv := iv
		g.Go(func() error {
			_, err := s.Score(gctx, iv.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(pending), nil
}

// verdict mirrors the JSON shape the model is instructed to return.
type verdict struct {
	CredibilityScore int                    `json:"credibility_score"`
	CredibilityLevel string                 `json:"credibility_level"`
	Inconsistencies  []verdictInconsistency `json:"inconsistencies_found"`
	ConsistencyAreas []string               `json:"consistency_areas"`
	RedFlags         []string               `json:"red_flags"`
	Recommendation   string                 `json:"recommendation"`
	BottomLine       string                 `json:"bottom_line_summary"`
}

type verdictInconsistency struct {
	Area            string `json:"area"`
	FormAnswer      string `json:"form_answer"`
	InterviewAnswer string `json:"interview_answer"`
	Severity        string `json:"severity"`
	Explanation     string `json:"explanation"`
}

// parseVerdict extracts the JSON verdict, tolerating markdown code fences
// around the payload.
func parseVerdict(text string) (*verdict, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var v verdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, eris.Wrap(err, "scoring: decode verdict")
	}
	if v.CredibilityScore < 0 {
		v.CredibilityScore = 0
	}
	if v.CredibilityScore > 100 {
		v.CredibilityScore = 100
	}
	if v.CredibilityLevel == "" {
		v.CredibilityLevel = LevelForScore(v.CredibilityScore)
	}
	if v.Recommendation == "" {
		v.Recommendation = RecommendationForScore(v.CredibilityScore)
	}
	return &v, nil
}

// fallbackVerdict is the neutral middle-of-the-road result used when the
// model returns something unparseable. It always flags manual review.
func fallbackVerdict() *verdict {
	return &verdict{
		CredibilityScore: 50,
		CredibilityLevel: "غير محدد",
		RedFlags:         []string{"فشل التقييم التلقائي - يحتاج مراجعة يدوية"},
		Recommendation:   "يحتاج مراجعة يدوية",
		BottomLine:       "لم يتم التقييم بسبب خطأ تقني",
	}
}

func (v *verdict) toReport(interviewID string) *model.CredibilityReport {
	found := make([]string, 0, len(v.Inconsistencies))
	for _, inc := range v.Inconsistencies {
		found = append(found, fmt.Sprintf("%s: بالطلب %q، بالمقابلة %q (%s)",
			inc.Area, inc.FormAnswer, inc.InterviewAnswer, inc.Explanation))
	}
	return &model.CredibilityReport{
		InterviewID:          interviewID,
		Score:                v.CredibilityScore,
		Level:                v.CredibilityLevel,
		InconsistenciesFound: found,
		ConsistencyAreas:     v.ConsistencyAreas,
		RedFlags:             v.RedFlags,
		Recommendation:       v.Recommendation,
		Summary:              v.BottomLine,
		CreatedAt:            time.Now().UTC(),
	}
}

// LevelForScore maps a numeric score to its Arabic credibility label.
func LevelForScore(score int) string {
	switch {
	case score >= 90:
		return "عالية جداً"
	case score >= 75:
		return "عالية"
	case score >= 60:
		return "متوسطة"
	case score >= 40:
		return "منخفضة"
	default:
		return "منخفضة جداً"
	}
}

// RecommendationForScore maps a numeric score to a hiring recommendation.
func RecommendationForScore(score int) string {
	switch {
	case score >= 90:
		return "موثوق بشكل كامل"
	case score >= 75:
		return "موثوق"
	case score >= 60:
		return "مقبول مع متابعة"
	case score >= 40:
		return "يحتاج تحقق إضافي"
	default:
		return "غير موثوق"
	}
}
