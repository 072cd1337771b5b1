package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/facesense/internal/observability"
	"github.com/hrygo/facesense/plugin/review"
	"github.com/hrygo/facesense/store"
)

// stateFromRow converts the persisted review state into the scheduler value.
func stateFromRow(row *store.ReviewState) review.State {
	state := review.State{
		EaseFactor:      row.EaseFactor,
		IntervalDays:    row.IntervalDays,
		Repetitions:     row.Repetitions,
		TotalAttempts:   row.TotalAttempts,
		CorrectAttempts: row.CorrectAttempts,
		NextReviewAt:    time.Unix(row.NextReviewTs, 0),
	}
	if row.LastReviewedTs != nil {
		lastReviewedAt := time.Unix(*row.LastReviewedTs, 0)
		state.LastReviewedAt = &lastReviewedAt
	}
	return state
}

// rowFromState converts a scheduler value back into its persisted form.
func rowFromState(personID int32, state review.State) *store.ReviewState {
	row := &store.ReviewState{
		PersonID:        personID,
		EaseFactor:      state.EaseFactor,
		IntervalDays:    state.IntervalDays,
		Repetitions:     state.Repetitions,
		TotalAttempts:   state.TotalAttempts,
		CorrectAttempts: state.CorrectAttempts,
		NextReviewTs:    state.NextReviewAt.Unix(),
	}
	if state.LastReviewedAt != nil {
		lastReviewedTs := state.LastReviewedAt.Unix()
		row.LastReviewedTs = &lastReviewedTs
	}
	return row
}

type quizAnswerRequest struct {
	Correct   bool   `json:"correct"`
	LatencyMs int64  `json:"latencyMs"`
	Guess     string `json:"guess"`
}

type reviewStatePayload struct {
	EaseFactor      float64 `json:"easeFactor"`
	IntervalDays    int     `json:"intervalDays"`
	Repetitions     int     `json:"repetitions"`
	TotalAttempts   int     `json:"totalAttempts"`
	CorrectAttempts int     `json:"correctAttempts"`
	Accuracy        float64 `json:"accuracy"`
	NextReviewTs    int64   `json:"nextReviewTs"`
	Trouble         bool    `json:"trouble"`
	Mastered        bool    `json:"mastered"`
}

func convertReviewState(state review.State) *reviewStatePayload {
	return &reviewStatePayload{
		EaseFactor:      state.EaseFactor,
		IntervalDays:    state.IntervalDays,
		Repetitions:     state.Repetitions,
		TotalAttempts:   state.TotalAttempts,
		CorrectAttempts: state.CorrectAttempts,
		Accuracy:        state.Accuracy(),
		NextReviewTs:    state.NextReviewAt.Unix(),
		Trouble:         review.IsTrouble(state),
		Mastered:        review.IsMastered(state),
	}
}

// RecordQuizAnswer applies one quiz answer: the review state is created
// lazily on the first answer, transformed, persisted, and the raw attempt is
// appended to the immutable history.
func (s *APIV1Service) RecordQuizAnswer(c echo.Context) error {
	ctx := c.Request().Context()

	person, err := s.findPersonByUID(c)
	if err != nil {
		return err
	}

	request := &quizAnswerRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed quiz request")
	}

	now := time.Now()
	row, err := s.Store.GetReviewState(ctx, person.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load review state")
	}

	var state review.State
	if row == nil {
		state = review.NewState(now)
	} else {
		state = stateFromRow(row)
	}

	state = review.Record(state, request.Correct, now)
	if _, err := s.Store.UpsertReviewState(ctx, rowFromState(person.ID, state)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save review state")
	}
	if _, err := s.Store.CreateQuizAttempt(ctx, &store.QuizAttempt{
		PersonID:  person.ID,
		Correct:   request.Correct,
		LatencyMs: request.LatencyMs,
		Guess:     request.Guess,
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record quiz attempt")
	}

	if reqCtx, ok := observability.FromContext(ctx); ok {
		reqCtx.Info("quiz answer recorded",
			slog.String(observability.LogFieldPersonUID, person.UID),
			slog.Bool("correct", request.Correct))
	}

	return c.JSON(http.StatusOK, convertReviewState(state))
}

type dueReviewPayload struct {
	PersonUID string              `json:"personUid"`
	Name      string              `json:"name"`
	State     *reviewStatePayload `json:"state"`
}

// ListDueReviews returns the persons due for review, most overdue first.
func (s *APIV1Service) ListDueReviews(c echo.Context) error {
	ctx := c.Request().Context()
	now := time.Now()
	dueBefore := now.Unix()

	rows, err := s.Store.ListReviewStates(ctx, &store.FindReviewState{DueBefore: &dueBefore})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list review states")
	}

	items := make([]review.DueItem, 0, len(rows))
	names := make(map[string]string, len(rows))
	for _, row := range rows {
		person, err := s.Store.GetPerson(ctx, &store.FindPerson{ID: &row.PersonID})
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to load person")
		}
		if person == nil {
			continue
		}
		items = append(items, review.DueItem{PersonUID: person.UID, State: stateFromRow(row)})
		names[person.UID] = person.Name
	}
	review.SortDue(items, now)

	payloads := make([]*dueReviewPayload, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, &dueReviewPayload{
			PersonUID: item.PersonUID,
			Name:      names[item.PersonUID],
			State:     convertReviewState(item.State),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"due": payloads})
}
