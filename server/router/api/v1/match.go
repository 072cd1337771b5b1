package v1

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/facesense/plugin/embedding"
	"github.com/hrygo/facesense/plugin/match"
	"github.com/hrygo/facesense/store"
)

type matchRequest struct {
	// Embedding is the single-face query vector.
	Embedding []float32 `json:"embedding"`
	// Embeddings matches several faces from one photo independently.
	Embeddings [][]float32 `json:"embeddings"`
	TopK       int         `json:"topK"`
	// RecentPersonUids boost persons seen at the current occasion.
	RecentPersonUids []string `json:"recentPersonUids"`
}

// vectorSearchLimit bounds how many stored samples one pgvector query pulls
// back before they are folded into per-person best scores.
const vectorSearchLimit = 256

// loadCandidates assembles the in-memory gallery for the given persons.
func (s *APIV1Service) loadCandidates(ctx context.Context, persons []*store.Person) ([]match.Candidate, error) {
	candidates := make([]match.Candidate, 0, len(persons))
	for _, person := range persons {
		samples, err := s.Store.ListFaceSamples(ctx, &store.FindFaceSample{PersonID: &person.ID})
		if err != nil {
			return nil, err
		}
		vectors := make([]embedding.Vector, 0, len(samples))
		for _, sample := range samples {
			vectors = append(vectors, sample.Embedding)
		}
		candidates = append(candidates, match.Candidate{
			PersonUID: person.UID,
			Samples:   vectors,
		})
	}
	return candidates, nil
}

// scoreViaStore ranks one query with the store's vector index instead of the
// in-process scan. Only persons the integrity pass declared matchable can
// appear in the results; samples of anyone else are dropped from the hits.
func (s *APIV1Service) scoreViaStore(ctx context.Context, query embedding.Vector, persons []*store.Person, topK int, boost map[string]bool) ([]match.Result, error) {
	if len(query) == 0 {
		return []match.Result{}, nil
	}

	uidByID := make(map[int32]string, len(persons))
	for _, person := range persons {
		uidByID[person.ID] = person.UID
	}

	hits, err := s.Store.VectorSearch(ctx, &store.VectorSearchOptions{Vector: query, Limit: vectorSearchLimit})
	if err != nil {
		return nil, err
	}

	best := make(map[string]float64, len(hits))
	for _, hit := range hits {
		uid, ok := uidByID[hit.Sample.PersonID]
		if !ok {
			continue
		}
		if score, seen := best[uid]; !seen || hit.Score > score {
			best[uid] = hit.Score
		}
	}
	return s.Matcher.RankScored(best, topK, boost), nil
}

// Match ranks query embeddings against the gallery. Degenerate queries
// (empty vectors, no candidates) return empty results, not errors.
func (s *APIV1Service) Match(c echo.Context) error {
	ctx := c.Request().Context()

	request := &matchRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed match request")
	}

	topK := request.TopK
	if topK <= 0 {
		topK = s.Profile.MatchDefaultTopK
	}
	boost := make(map[string]bool, len(request.RecentPersonUids))
	for _, uid := range request.RecentPersonUids {
		boost[uid] = true
	}

	_, persons, err := s.Integrity.CleanAndFilter(ctx)
	if err != nil {
		s.logger.Error("failed to prepare match gallery", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load gallery")
	}

	// PostgreSQL ranks against the pgvector index; SQLite scans in process.
	if s.Profile.Driver == "postgres" {
		if len(request.Embeddings) > 0 {
			batches := make([][]match.Result, len(request.Embeddings))
			for i, query := range request.Embeddings {
				batch, err := s.scoreViaStore(ctx, query, persons, topK, boost)
				if err != nil {
					s.logger.Error("vector search failed", slog.Any("error", err))
					return echo.NewHTTPError(http.StatusInternalServerError, "failed to search gallery")
				}
				batches[i] = batch
			}
			return c.JSON(http.StatusOK, echo.Map{"batches": batches})
		}
		results, err := s.scoreViaStore(ctx, request.Embedding, persons, topK, boost)
		if err != nil {
			s.logger.Error("vector search failed", slog.Any("error", err))
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to search gallery")
		}
		return c.JSON(http.StatusOK, echo.Map{"results": results})
	}

	candidates, err := s.loadCandidates(ctx, persons)
	if err != nil {
		s.logger.Error("failed to load match candidates", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load gallery")
	}

	if len(request.Embeddings) > 0 {
		queries := make([]embedding.Vector, len(request.Embeddings))
		for i, q := range request.Embeddings {
			queries[i] = q
		}
		return c.JSON(http.StatusOK, echo.Map{
			"batches": s.Matcher.FindBatch(queries, candidates, topK, boost),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"results": s.Matcher.Find(request.Embedding, candidates, topK, boost),
	})
}
