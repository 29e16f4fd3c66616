package cleaning

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orangecx/cxpipe/internal/contracts"
	"github.com/orangecx/cxpipe/internal/table"
	"github.com/orangecx/cxpipe/pkg/logger"
)

// Logical source names the pipeline loads.
const (
	SourceIdentity = "id_business"
	SourceMetadata = "full_shop_infos"
	SourceReviews  = "google_reviews"
	SourceSurveys  = "sms_surveys"
)

// Pipeline turns the four raw extracts into the three analysis-ready tables
// plus the operation ledger. Stages run in order, since the shop dimension
// must exist before either fact linker, and each stage fully materializes its
// output before the next reads it.
type Pipeline struct {
	loader   table.Loader
	sink     table.Sink
	resolver *CodeResolver
	log      *logger.Logger
}

// NewPipeline creates a pipeline. sink may be nil when the caller only
// wants the in-memory result.
func NewPipeline(loader table.Loader, sink table.Sink, log *logger.Logger) *Pipeline {
	return &Pipeline{
		loader:   loader,
		sink:     sink,
		resolver: NewCodeResolver(DefaultCodePrefix),
		log:      log,
	}
}

// Run executes one full cleaning run over a snapshot set.
func (p *Pipeline) Run(ctx context.Context) (*contracts.RunResult, error) {
	result := &contracts.RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	log := p.log.WithField("run_id", result.RunID)

	identity, err := p.loader.Load(ctx, SourceIdentity)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", SourceIdentity, err)
	}
	metadata, err := p.loader.Load(ctx, SourceMetadata)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", SourceMetadata, err)
	}
	reviews, err := p.loader.Load(ctx, SourceReviews)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", SourceReviews, err)
	}
	surveys, err := p.loader.Load(ctx, SourceSurveys)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", SourceSurveys, err)
	}
	log.WithFields(map[string]interface{}{
		"identity": identity.NumRows(),
		"metadata": metadata.NumRows(),
		"reviews":  reviews.NumRows(),
		"surveys":  surveys.NumRows(),
	}).Info("Sources loaded")

	result.Shops, err = BuildShops(identity, metadata, &result.Ledger)
	if err != nil {
		return nil, err
	}
	log.Infof("dim_shops built: %d rows x %d columns", result.Shops.NumRows(), result.Shops.NumCols())

	result.Reviews, err = BuildReviews(reviews, result.Shops, &result.Ledger)
	if err != nil {
		return nil, err
	}
	log.Infof("fact_reviews built: %d rows x %d columns", result.Reviews.NumRows(), result.Reviews.NumCols())

	result.Surveys, err = BuildSurveys(surveys, result.Shops, p.resolver, &result.Ledger)
	if err != nil {
		return nil, err
	}
	log.Infof("fact_surveys built: %d rows x %d columns", result.Surveys.NumRows(), result.Surveys.NumCols())

	result.FinishedAt = time.Now().UTC()

	if p.sink != nil {
		for _, t := range result.Tables() {
			if err := p.sink.Store(ctx, t); err != nil {
				return nil, fmt.Errorf("persist %s: %w", t.Name, err)
			}
		}
		if err := p.sink.Store(ctx, result.Ledger.Snapshot()); err != nil {
			return nil, fmt.Errorf("persist cleaning log: %w", err)
		}
	}

	log.WithField("duration", result.Duration().String()).Info("Cleaning run completed")
	return result, nil
}
