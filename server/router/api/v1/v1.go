// Package v1 exposes the JSON API: matching, person and sample CRUD, quiz
// recording, the review queue and the maintenance operations.
package v1

import (
	"log/slog"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/facesense/internal/profile"
	"github.com/hrygo/facesense/plugin/match"
	"github.com/hrygo/facesense/server/middleware"
	"github.com/hrygo/facesense/server/service/integrity"
	"github.com/hrygo/facesense/server/service/merge"
	"github.com/hrygo/facesense/store"
)

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store

	Matcher   *match.Matcher
	Integrity *integrity.Service
	Merge     *merge.Service

	logger *slog.Logger
}

// NewAPIV1Service assembles the API service. The integrity and merge
// services share one mutex so maintenance writes never interleave.
func NewAPIV1Service(p *profile.Profile, st *store.Store, logger *slog.Logger) *APIV1Service {
	maintenanceMu := &sync.Mutex{}
	return &APIV1Service{
		Profile: p,
		Store:   st,
		Matcher: match.NewMatcher(match.Config{
			Threshold:       p.MatchThreshold,
			HighCutoff:      p.MatchHighCutoff,
			AmbiguousCutoff: p.MatchThreshold,
			BoostDelta:      p.MatchBoostDelta,
		}),
		Integrity: integrity.NewService(st, maintenanceMu, logger),
		Merge:     merge.NewService(st, maintenanceMu, logger),
		logger:    logger,
	}
}

// Register mounts all v1 routes on the echo instance.
func (s *APIV1Service) Register(e *echo.Echo) {
	rateLimiter := middleware.NewRateLimiter()

	group := e.Group("/api/v1",
		rateLimiter.Middleware(),
		middleware.JWTAuth(s.Profile.Secret),
	)

	group.POST("/match", s.Match)

	group.GET("/persons", s.ListPersons)
	group.POST("/persons", s.CreatePerson)
	group.GET("/persons/:uid", s.GetPerson)
	group.PATCH("/persons/:uid", s.UpdatePerson)
	group.DELETE("/persons/:uid", s.DeletePerson)
	group.GET("/persons/:uid/samples", s.ListPersonSamples)
	group.POST("/persons/:uid/samples", s.CreatePersonSample)
	group.DELETE("/persons/:uid/samples/:sampleUid", s.DeletePersonSample)

	group.POST("/persons/:uid/quiz", s.RecordQuizAnswer)
	group.GET("/review/due", s.ListDueReviews)

	group.POST("/maintenance/cleanup", s.RunCleanup)
	group.POST("/maintenance/merge/persons", s.MergePersons)
	group.POST("/maintenance/merge/encounters", s.MergeEncounters)
	group.POST("/maintenance/photos/move", s.MovePhotos)
}
