package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/facesense/plugin/embedding"
	"github.com/hrygo/facesense/store"
)

type personPayload struct {
	UID              string   `json:"uid"`
	Name             string   `json:"name"`
	Relationship     string   `json:"relationship"`
	Context          string   `json:"context"`
	Company          string   `json:"company"`
	Notes            string   `json:"notes"`
	Interests        []string `json:"interests"`
	IsSelf           bool     `json:"isSelf"`
	Favorite         bool     `json:"favorite"`
	PrimarySampleUID *string  `json:"primarySampleUid,omitempty"`
	CreatedTs        int64    `json:"createdTs"`
	UpdatedTs        int64    `json:"updatedTs"`
}

func convertPerson(person *store.Person) *personPayload {
	return &personPayload{
		UID:              person.UID,
		Name:             person.Name,
		Relationship:     person.Relationship,
		Context:          person.Context,
		Company:          person.Company,
		Notes:            person.Notes,
		Interests:        person.Interests,
		IsSelf:           person.IsSelf,
		Favorite:         person.Favorite,
		PrimarySampleUID: person.PrimarySampleUID,
		CreatedTs:        person.CreatedTs,
		UpdatedTs:        person.UpdatedTs,
	}
}

type upsertPersonRequest struct {
	Name         *string   `json:"name"`
	Relationship *string   `json:"relationship"`
	Context      *string   `json:"context"`
	Company      *string   `json:"company"`
	Notes        *string   `json:"notes"`
	Interests    *[]string `json:"interests"`
	IsSelf       *bool     `json:"isSelf"`
	Favorite     *bool     `json:"favorite"`
}

func (s *APIV1Service) ListPersons(c echo.Context) error {
	persons, err := s.Store.ListPersons(c.Request().Context(), &store.FindPerson{})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list persons")
	}

	payloads := make([]*personPayload, 0, len(persons))
	for _, person := range persons {
		payloads = append(payloads, convertPerson(person))
	}
	return c.JSON(http.StatusOK, echo.Map{"persons": payloads})
}

func (s *APIV1Service) CreatePerson(c echo.Context) error {
	request := &upsertPersonRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed person request")
	}

	person := &store.Person{UID: shortuuid.New()}
	if request.Name != nil {
		person.Name = *request.Name
	}
	if request.Relationship != nil {
		person.Relationship = *request.Relationship
	}
	if request.Context != nil {
		person.Context = *request.Context
	}
	if request.Company != nil {
		person.Company = *request.Company
	}
	if request.Notes != nil {
		person.Notes = *request.Notes
	}
	if request.Interests != nil {
		person.Interests = *request.Interests
	}
	if request.IsSelf != nil {
		person.IsSelf = *request.IsSelf
	}
	if request.Favorite != nil {
		person.Favorite = *request.Favorite
	}

	created, err := s.Store.CreatePerson(c.Request().Context(), person)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create person")
	}
	return c.JSON(http.StatusOK, convertPerson(created))
}

func (s *APIV1Service) findPersonByUID(c echo.Context) (*store.Person, error) {
	uid := c.Param("uid")
	person, err := s.Store.GetPerson(c.Request().Context(), &store.FindPerson{UID: &uid})
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to find person")
	}
	if person == nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "person not found")
	}
	return person, nil
}

func (s *APIV1Service) GetPerson(c echo.Context) error {
	person, err := s.findPersonByUID(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, convertPerson(person))
}

func (s *APIV1Service) UpdatePerson(c echo.Context) error {
	person, err := s.findPersonByUID(c)
	if err != nil {
		return err
	}

	request := &upsertPersonRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed person request")
	}

	update := &store.UpdatePerson{
		ID:           person.ID,
		Name:         request.Name,
		Relationship: request.Relationship,
		Context:      request.Context,
		Company:      request.Company,
		Notes:        request.Notes,
		Interests:    request.Interests,
		IsSelf:       request.IsSelf,
		Favorite:     request.Favorite,
	}
	if err := s.Store.UpdatePerson(c.Request().Context(), update); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update person")
	}

	updated, err := s.Store.GetPerson(c.Request().Context(), &store.FindPerson{ID: &person.ID})
	if err != nil || updated == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to reload person")
	}
	return c.JSON(http.StatusOK, convertPerson(updated))
}

func (s *APIV1Service) DeletePerson(c echo.Context) error {
	person, err := s.findPersonByUID(c)
	if err != nil {
		return err
	}
	if err := s.Store.DeletePerson(c.Request().Context(), &store.DeletePerson{ID: person.ID}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete person")
	}
	return c.NoContent(http.StatusNoContent)
}

type samplePayload struct {
	UID         string  `json:"uid"`
	OwnerBoxUID *string `json:"ownerBoxUid,omitempty"`
	CreatedTs   int64   `json:"createdTs"`
}

type createSampleRequest struct {
	Embedding   []float32 `json:"embedding"`
	Thumbnail   []byte    `json:"thumbnail"`
	OwnerBoxUID *string   `json:"ownerBoxUid"`
}

func (s *APIV1Service) ListPersonSamples(c echo.Context) error {
	person, err := s.findPersonByUID(c)
	if err != nil {
		return err
	}

	samples, err := s.Store.ListFaceSamples(c.Request().Context(), &store.FindFaceSample{PersonID: &person.ID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list samples")
	}

	payloads := make([]*samplePayload, 0, len(samples))
	for _, sample := range samples {
		payloads = append(payloads, &samplePayload{
			UID:         sample.UID,
			OwnerBoxUID: sample.OwnerBoxUID,
			CreatedTs:   sample.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"samples": payloads})
}

func (s *APIV1Service) CreatePersonSample(c echo.Context) error {
	person, err := s.findPersonByUID(c)
	if err != nil {
		return err
	}

	request := &createSampleRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed sample request")
	}
	if len(request.Embedding) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "embedding is required")
	}

	vector := embedding.Vector(request.Embedding)
	embedding.Normalize(vector)

	sample := &store.FaceSample{
		UID:         shortuuid.New(),
		PersonID:    person.ID,
		Embedding:   vector,
		Thumbnail:   request.Thumbnail,
		OwnerBoxUID: request.OwnerBoxUID,
	}
	created, err := s.Store.CreateFaceSample(c.Request().Context(), sample)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create sample")
	}
	return c.JSON(http.StatusOK, &samplePayload{
		UID:         created.UID,
		OwnerBoxUID: created.OwnerBoxUID,
		CreatedTs:   created.CreatedTs,
	})
}

func (s *APIV1Service) DeletePersonSample(c echo.Context) error {
	person, err := s.findPersonByUID(c)
	if err != nil {
		return err
	}

	sampleUID := c.Param("sampleUid")
	samples, err := s.Store.ListFaceSamples(c.Request().Context(), &store.FindFaceSample{UID: &sampleUID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to find sample")
	}
	if len(samples) == 0 || samples[0].PersonID != person.ID {
		return echo.NewHTTPError(http.StatusNotFound, "sample not found")
	}
	if err := s.Store.DeleteFaceSample(c.Request().Context(), &store.DeleteFaceSample{ID: samples[0].ID}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete sample")
	}
	return c.NoContent(http.StatusNoContent)
}
