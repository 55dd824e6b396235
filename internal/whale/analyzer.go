package whale

import (
	"io"
	"log"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/observability"
)

// Analyzer runs classification, tier aggregation and structure synthesis.
type Analyzer struct {
	cfg        Config
	classifier *Classifier
	logger     *log.Logger
}

// NewAnalyzer creates a new Analyzer. known and logger may be nil.
func NewAnalyzer(cfg Config, known *KnownAccounts, logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Analyzer{
		cfg:        cfg,
		classifier: NewClassifier(cfg, known),
		logger:     logger,
	}
}

// Empty returns the movement analysis used when no trader data is available.
func Empty(token string, window domain.Window) domain.MovementAnalysis {
	whale := EmptyGroup(domain.TierWhale)
	shark := EmptyGroup(domain.TierShark)
	return domain.MovementAnalysis{
		Token:     token,
		Window:    window,
		Whale:     whale,
		Shark:     shark,
		Structure: EmptyStructure(),
		Insights:  DeriveInsights(whale, shark),
	}
}

// Analyze builds the movement analysis of one (token, window).
func (a *Analyzer) Analyze(token string, window domain.Window, records []domain.TraderRecord) domain.MovementAnalysis {
	result := Empty(token, window)
	result.Traders = len(records)
	if len(records) == 0 {
		return result
	}

	cls := a.classifier.Classify(records)
	result.Skipped = cls.SkippedTotal()
	for reason, n := range cls.Skipped {
		observability.RecordTraderSkipped(string(reason), n)
	}
	if result.Skipped > 0 {
		a.logger.Printf("%s %s: skipped %d of %d trader records %v", token, window, result.Skipped, len(records), cls.Skipped)
	}

	result.Whale = a.cfg.AggregateGroup(domain.TierWhale, cls.Whales)
	result.Shark = a.cfg.AggregateGroup(domain.TierShark, cls.Sharks)
	result.Structure = a.cfg.SynthesizeStructure(result.Whale, result.Shark)
	result.Insights = DeriveInsights(result.Whale, result.Shark)
	return result
}
