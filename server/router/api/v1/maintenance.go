package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/facesense/internal/observability"
)

// RunCleanup removes orphaned face samples and reports what changed.
// Running it on a clean store is a harmless no-op.
func (s *APIV1Service) RunCleanup(c echo.Context) error {
	report, _, err := s.Integrity.CleanAndFilter(c.Request().Context())
	if err != nil {
		s.logger.Error("cleanup failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "cleanup failed")
	}
	return c.JSON(http.StatusOK, report)
}

type mergeRequest struct {
	PrimaryUid    string   `json:"primaryUid"`
	SecondaryUids []string `json:"secondaryUids"`
	CombineNotes  bool     `json:"combineNotes"`
}

func (s *APIV1Service) MergePersons(c echo.Context) error {
	request := &mergeRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed merge request")
	}
	if request.PrimaryUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "primaryUid is required")
	}

	merged, err := s.Merge.MergePersons(c.Request().Context(), request.PrimaryUid, request.SecondaryUids, request.CombineNotes)
	if err != nil {
		s.logger.Error("person merge failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "merge failed")
	}
	if merged == nil {
		// Unknown primary: nothing merged, nothing lost.
		return c.JSON(http.StatusOK, echo.Map{})
	}
	return c.JSON(http.StatusOK, convertPerson(merged))
}

type encounterPayload struct {
	UID        string `json:"uid"`
	Title      string `json:"title"`
	Location   string `json:"location"`
	Notes      string `json:"notes"`
	OccurredTs int64  `json:"occurredTs"`
}

func (s *APIV1Service) MergeEncounters(c echo.Context) error {
	request := &mergeRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed merge request")
	}
	if request.PrimaryUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "primaryUid is required")
	}

	merged, err := s.Merge.MergeEncounters(c.Request().Context(), request.PrimaryUid, request.SecondaryUids, request.CombineNotes)
	if err != nil {
		s.logger.Error("encounter merge failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "merge failed")
	}
	if merged == nil {
		// Unknown primary: nothing merged, nothing lost.
		return c.JSON(http.StatusOK, echo.Map{})
	}
	return c.JSON(http.StatusOK, &encounterPayload{
		UID:        merged.UID,
		Title:      merged.Title,
		Location:   merged.Location,
		Notes:      merged.Notes,
		OccurredTs: merged.OccurredTs,
	})
}

type movePhotosRequest struct {
	PhotoUids []string `json:"photoUids"`
	FromUid   string   `json:"fromUid"`
	ToUid     string   `json:"toUid"`
}

// MovePhotos moves photos between encounters. Unknown encounters yield a
// zero-effect result rather than an error.
func (s *APIV1Service) MovePhotos(c echo.Context) error {
	request := &movePhotosRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed move request")
	}

	result, err := s.Merge.MovePhotos(c.Request().Context(), request.PhotoUids, request.FromUid, request.ToUid)
	if err != nil {
		s.logger.Error("photo move failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "move failed")
	}
	if result.Skipped > 0 {
		if reqCtx, ok := observability.FromContext(c.Request().Context()); ok {
			reqCtx.Warn("photos skipped during move",
				slog.Int("skipped", result.Skipped),
				slog.Int("moved", result.Moved))
		}
	}
	return c.JSON(http.StatusOK, result)
}
