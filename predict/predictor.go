package predict

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"gradecast/ml"
)

// Grades live on the 0-20 scale of the Portuguese system.
const (
	GradeMin = 0.0
	GradeMax = 20.0
)

const explanationCacheSize = 128

// Predictor owns the loaded pipeline for the process lifetime. It is safe for
// concurrent use: the pipeline is read-only after load and the explanation
// cache locks internally.
type Predictor struct {
	pipeline  *ml.Pipeline
	explainer *ml.TreeExplainer
	validate  *validator.Validate
	cache     *lru.Cache[string, []ml.Attribution]
	logger    *zap.Logger

	globalOnce sync.Once
	global     []ml.Importance
}

// New loads the pipeline artifact and prepares the predictor. Defaults are
// verified here so a misconfigured default vector fails at startup.
func New(artifactPath string, logger *zap.Logger) (*Predictor, error) {
	pipeline, err := ml.LoadPipeline(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("load pipeline: %w", err)
	}
	return NewFromPipeline(pipeline, logger)
}

// NewFromPipeline wraps an already-loaded pipeline; the trainer and tests use
// this to avoid a disk round trip.
func NewFromPipeline(pipeline *ml.Pipeline, logger *zap.Logger) (*Predictor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := VerifyDefaults(); err != nil {
		return nil, err
	}
	explainer, err := ml.NewTreeExplainer(pipeline.Forest, pipeline.FeatureNames())
	if err != nil {
		return nil, fmt.Errorf("build explainer: %w", err)
	}
	cache, err := lru.New[string, []ml.Attribution](explanationCacheSize)
	if err != nil {
		return nil, err
	}
	return &Predictor{
		pipeline:  pipeline,
		explainer: explainer,
		validate:  validator.New(),
		cache:     cache,
		logger:    logger,
	}, nil
}

// Predict validates the six user fields, completes the feature row, and runs
// the pipeline. The returned session carries the transform output so the
// explanation views can reuse it.
func (p *Predictor) Predict(in UserInput) (*Session, error) {
	if err := p.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	row, err := BuildFeatureRow(in)
	if err != nil {
		return nil, err
	}
	vector, err := p.pipeline.Transform(row)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	raw, err := p.pipeline.Forest.Predict(vector)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	grade := clampGrade(math.Round(raw*100) / 100)
	session := &Session{
		ID:        uuid.NewString(),
		Input:     in,
		Row:       row,
		Vector:    vector,
		Grade:     grade,
		Raw:       raw,
		CreatedAt: time.Now().UTC(),
	}

	p.logger.Info("prediction",
		zap.String("session", session.ID),
		zap.String("school", in.School),
		zap.Float64("grade", grade))
	return session, nil
}

// ExplainLocal returns the per-feature attributions for a session's
// prediction. Attributions for an identical feature row are served from the
// cache; distinct rows are always recomputed from their own transform output.
func (p *Predictor) ExplainLocal(s *Session) ([]ml.Attribution, error) {
	if s == nil {
		return nil, fmt.Errorf("no prediction to explain")
	}
	key := Fingerprint(s.Row)
	if cached, ok := p.cache.Get(key); ok {
		return cached, nil
	}
	attrs, err := p.explainer.Attributions(s.Vector)
	if err != nil {
		return nil, fmt.Errorf("explain: %w", err)
	}
	p.cache.Add(key, attrs)
	return attrs, nil
}

// ExplainGlobal returns the model's intrinsic importances, computed once per
// loaded artifact.
func (p *Predictor) ExplainGlobal() []ml.Importance {
	p.globalOnce.Do(func() {
		p.global = p.explainer.Importances()
	})
	return p.global
}

// BaseValue exposes the explainer baseline for rendering.
func (p *Predictor) BaseValue() float64 {
	return p.explainer.BaseValue()
}

// FeatureNames exposes the post-encoding feature names.
func (p *Predictor) FeatureNames() []string {
	return p.pipeline.FeatureNames()
}

func clampGrade(v float64) float64 {
	if v < GradeMin {
		return GradeMin
	}
	if v > GradeMax {
		return GradeMax
	}
	return v
}
