// Package match ranks a freshly observed face embedding against the gallery
// of known persons. The gallery is small enough for linear scan; scores are
// cosine similarities with an optional additive boost for recently seen
// persons.
package match

import (
	"sort"

	"github.com/hrygo/facesense/plugin/embedding"
)

// Confidence buckets a raw similarity into the three tiers the UI acts on.
type Confidence string

const (
	// ConfidenceHigh means the match can be auto-accepted.
	ConfidenceHigh Confidence = "high"
	// ConfidenceAmbiguous means the match should be confirmed by the user.
	ConfidenceAmbiguous Confidence = "ambiguous"
	// ConfidenceNone means the face is treated as unknown.
	ConfidenceNone Confidence = "none"
)

// Config holds the tunable thresholds of the matcher. Tier boundaries are
// configuration, not business logic.
type Config struct {
	// Threshold is the minimum similarity for a candidate to be returned.
	Threshold float64
	// HighCutoff is the lower bound of the high-confidence tier.
	HighCutoff float64
	// AmbiguousCutoff is the lower bound of the ambiguous tier.
	AmbiguousCutoff float64
	// BoostDelta is added to the score of boosted candidates.
	BoostDelta float64
}

// DefaultConfig returns the matcher defaults.
func DefaultConfig() Config {
	return Config{
		Threshold:       0.65,
		HighCutoff:      0.80,
		AmbiguousCutoff: 0.65,
		BoostDelta:      0.05,
	}
}

// Candidate is a person eligible for matching. A candidate with no samples
// never appears in results.
type Candidate struct {
	PersonUID string
	Samples   []embedding.Vector
}

// Result is one ranked match.
type Result struct {
	PersonUID  string     `json:"person_uid"`
	Similarity float64    `json:"similarity"`
	Confidence Confidence `json:"confidence"`
}

// Matcher ranks query embeddings against candidate persons.
type Matcher struct {
	config Config
}

// NewMatcher creates a matcher with the given config.
func NewMatcher(config Config) *Matcher {
	return &Matcher{config: config}
}

// Classify maps a similarity score into a confidence tier.
func (m *Matcher) Classify(similarity float64) Confidence {
	switch {
	case similarity >= m.config.HighCutoff:
		return ConfidenceHigh
	case similarity >= m.config.AmbiguousCutoff:
		return ConfidenceAmbiguous
	default:
		return ConfidenceNone
	}
}

// Find ranks candidates against the query and returns at most topK results,
// each scoring at least Threshold, ordered by similarity descending.
// A candidate's score is the best cosine similarity across all of its
// samples. Candidates whose UID is in boost get BoostDelta added; the boost
// is not clamped so a boosted candidate always outranks its unboosted self.
// An empty query or empty candidate list yields an empty result, never an
// error.
func (m *Matcher) Find(query embedding.Vector, candidates []Candidate, topK int, boost map[string]bool) []Result {
	results := []Result{}
	if len(query) == 0 || len(candidates) == 0 || topK <= 0 {
		return results
	}

	for _, candidate := range candidates {
		if len(candidate.Samples) == 0 {
			continue
		}

		best := 0.0
		scored := false
		for _, sample := range candidate.Samples {
			sim := embedding.Cosine(query, sample)
			if !scored || sim > best {
				best = sim
				scored = true
			}
		}
		if !scored {
			continue
		}

		if boost[candidate.PersonUID] {
			best += m.config.BoostDelta
		}
		if best < m.config.Threshold {
			continue
		}

		results = append(results, Result{
			PersonUID:  candidate.PersonUID,
			Similarity: best,
			Confidence: m.Classify(best),
		})
	}

	// Stable order: similarity descending, UID ascending on ties so repeated
	// runs over the same gallery return the same ranking.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].PersonUID < results[j].PersonUID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// RankScored ranks candidates whose best similarity was already computed,
// for callers that score against the stored gallery (pgvector) instead of
// the in-process scan. Boost, threshold filtering, ordering and topK follow
// the same rules as Find.
func (m *Matcher) RankScored(scores map[string]float64, topK int, boost map[string]bool) []Result {
	results := []Result{}
	if len(scores) == 0 || topK <= 0 {
		return results
	}

	for uid, score := range scores {
		if boost[uid] {
			score += m.config.BoostDelta
		}
		if score < m.config.Threshold {
			continue
		}
		results = append(results, Result{
			PersonUID:  uid,
			Similarity: score,
			Confidence: m.Classify(score),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].PersonUID < results[j].PersonUID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// FindBatch matches several face embeddings from one photo independently.
// A missing or empty query (e.g. embedding extraction failed for that face)
// produces an empty row and never aborts the remaining faces.
func (m *Matcher) FindBatch(queries []embedding.Vector, candidates []Candidate, topK int, boost map[string]bool) [][]Result {
	batch := make([][]Result, len(queries))
	for i, query := range queries {
		batch[i] = m.Find(query, candidates, topK, boost)
	}
	return batch
}
