package matching

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/campusbarter/tradematch/internal/domain"
)

// SemanticStrategy scores candidates by cosine similarity of embedding
// vectors. Vectors are computed per pass, one call per distinct item, and
// never persisted; callers wanting a cache wrap the embedder outside the
// engine.
type SemanticStrategy struct {
	embed   domain.Embedder
	workers int
	logger  *zap.Logger
}

// NewSemanticStrategy creates the embedding-backed strategy. workers bounds
// the number of concurrent embedding calls per pass.
func NewSemanticStrategy(embed domain.Embedder, workers int, logger *zap.Logger) *SemanticStrategy {
	if workers <= 0 {
		workers = 1
	}
	return &SemanticStrategy{embed: embed, workers: workers, logger: logger}
}

// Name implements Strategy.
func (s *SemanticStrategy) Name() string { return "semantic" }

// SupportsAnalysis implements Strategy. Listing analysis rides the same
// provider credential as embeddings.
func (s *SemanticStrategy) SupportsAnalysis() bool { return true }

// BeginItemPass embeds every subject and counterpart once, concurrently.
// Items whose embedding call fails get a nil vector and are later skipped.
func (s *SemanticStrategy) BeginItemPass(
	ctx context.Context, subjects, counterparts []domain.Item,
) ItemPass {
	texts := make([]string, 0, len(subjects)+len(counterparts))
	for i := range subjects {
		texts = append(texts, subjects[i].ComposedText())
	}
	for i := range counterparts {
		texts = append(texts, counterparts[i].ComposedText())
	}

	vecs := s.embedAll(ctx, texts)

	return &semanticItemPass{
		subjects:        subjects,
		counterparts:    counterparts,
		subjectVecs:     vecs[:len(subjects)],
		counterpartVecs: vecs[len(subjects):],
	}
}

// BeginNeedPass embeds the need once and every item once, concurrently.
func (s *SemanticStrategy) BeginNeedPass(
	ctx context.Context, need string, items []domain.Item,
) NeedPass {
	texts := make([]string, 0, len(items)+1)
	texts = append(texts, need)
	for i := range items {
		texts = append(texts, items[i].ComposedText())
	}

	vecs := s.embedAll(ctx, texts)

	return &semanticNeedPass{
		items:    items,
		needVec:  vecs[0],
		itemVecs: vecs[1:],
	}
}

// embedAll runs one embedding call per text on a bounded worker pool.
// Failures are isolated per task: a failed call leaves a nil vector and
// never cancels its siblings. Cancellation of ctx stops work early; any
// texts not yet embedded stay nil and the pass degrades to skips.
func (s *SemanticStrategy) embedAll(ctx context.Context, texts []string) [][]float32 {
	vecs := make([][]float32, len(texts))
	usage := domain.UsageFromContext(ctx)

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i := range texts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			res, err := s.embed.Embed(ctx, texts[i])
			if err != nil {
				s.logger.Debug("embedding unavailable, candidate will be skipped",
					zap.Int("index", i),
					zap.Error(err),
				)
				return
			}
			vecs[i] = res.Embedding
			usage.AddTokens(res.TotalTokens)
		}(i)
	}

	wg.Wait()
	return vecs
}

type semanticItemPass struct {
	subjects        []domain.Item
	counterparts    []domain.Item
	subjectVecs     [][]float32
	counterpartVecs [][]float32
}

func (p *semanticItemPass) Score(subjectIdx, counterpartIdx int) domain.MatchOutcome {
	sv := p.subjectVecs[subjectIdx]
	cv := p.counterpartVecs[counterpartIdx]
	if sv == nil || cv == nil {
		return domain.Skipped(domain.SkipEmbeddingUnavailable)
	}

	score, ok := cosineSimilarity(sv, cv)
	if !ok {
		return domain.Skipped(domain.SkipZeroVector)
	}

	subject := &p.subjects[subjectIdx]
	candidate := &p.counterparts[counterpartIdx]
	return domain.Scored(score, itemMatchReason(subject, candidate, score))
}

type semanticNeedPass struct {
	items    []domain.Item
	needVec  []float32
	itemVecs [][]float32
}

func (p *semanticNeedPass) Score(itemIdx int) domain.MatchOutcome {
	iv := p.itemVecs[itemIdx]
	if p.needVec == nil || iv == nil {
		return domain.Skipped(domain.SkipEmbeddingUnavailable)
	}

	score, ok := cosineSimilarity(p.needVec, iv)
	if !ok {
		return domain.Skipped(domain.SkipZeroVector)
	}

	return domain.Scored(score, needMatchReason(&p.items[itemIdx], score))
}
