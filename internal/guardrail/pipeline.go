package guardrail

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/fincoach/internal/config"
	"github.com/Cyclone1070/fincoach/internal/metadata"
	"github.com/Cyclone1070/fincoach/internal/moderation"
	"github.com/Cyclone1070/fincoach/internal/provider"
	"go.uber.org/zap"
)

// Pipeline runs an ordered list of stages against each inbound message.
// Stages run strictly in order and the first rejection short-circuits the
// rest. The pipeline never retries; callers may retry the whole run on a
// StageError.
type Pipeline struct {
	stages []Stage
	log    *zap.Logger
}

// NewPipeline builds a pipeline over pre-constructed stages.
func NewPipeline(stages []Stage, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{stages: stages, log: log}
}

// Validate runs every stage in order. It returns the first rejection, or
// an allow verdict when all stages pass. A stage infrastructure failure
// aborts the run with a *StageError and no verdict; it is never converted
// into an implicit pass or reject.
func (p *Pipeline) Validate(ctx context.Context, text string) (Verdict, error) {
	for _, stage := range p.stages {
		verdict, err := stage.Check(ctx, text)
		if err != nil {
			p.log.Warn("guardrail stage failed",
				zap.String("stage", stage.Name()),
				zap.Error(err))
			return Verdict{}, &StageError{Stage: stage.Name(), Err: err}
		}
		if !verdict.Allowed {
			p.log.Info("guardrail rejected message",
				zap.String("stage", verdict.Stage),
				zap.String("reason", verdict.Reason))
			return verdict, nil
		}
	}
	return Allow(), nil
}

// Deps carries the collaborators stages are built from.
type Deps struct {
	Provider   provider.Provider
	Metadata   *metadata.Store
	Moderation moderation.Client
}

// StagesFor resolves the configured stage names into stage instances for
// a deployment variant. The topic stage is variant-specific: the
// marketing deployment classifies product relevance, the coach deployment
// classifies financial-topic acceptability.
func StagesFor(variant config.Variant, names []string, deps Deps) ([]Stage, error) {
	stages := make([]Stage, 0, len(names))

	for _, name := range names {
		switch name {
		case config.StageSensitive:
			stages = append(stages, NewScanner())
		case config.StageTopic:
			if variant == config.VariantMarketing {
				stages = append(stages, NewTopicStage(deps.Provider, deps.Metadata))
			} else {
				stages = append(stages, NewFinancialStage(deps.Provider))
			}
		case config.StageAdvice:
			stages = append(stages, NewAdviceStage(deps.Provider))
		case config.StageModeration:
			stages = append(stages, NewModerationStage(deps.Moderation))
		default:
			return nil, fmt.Errorf("unknown guardrail stage %q", name)
		}
	}

	return stages, nil
}
