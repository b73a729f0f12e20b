package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/twpayne/go-polyline"

	"github.com/fieldops/coursenav/pkg/datastructure"
	"github.com/fieldops/coursenav/pkg/server"
)

type PlanningService interface {
	FindPath(ctx context.Context, start, end datastructure.Pose) ([]datastructure.Pose, float64, error)
}

type PlannerHandler struct {
	svc PlanningService
	m   *Metrics
}

func PlannerRouter(r *chi.Mux, svc PlanningService, m *Metrics) {
	handler := &PlannerHandler{svc: svc, m: m}

	r.Group(func(r chi.Router) {
		r.Route("/api/navigation", func(r chi.Router) {
			r.Post("/find-path", handler.FindPath)
		})
	})
}

type PoseParam struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta" validate:"gte=-6.3,lte=6.3"`
}

type FindPathRequest struct {
	Start *PoseParam `json:"start" validate:"required"`
	End   *PoseParam `json:"end" validate:"required"`
}

func (s *FindPathRequest) Bind(r *http.Request) error {
	if s.Start == nil || s.End == nil {
		return errors.New("invalid request")
	}
	return nil
}

type FindPathResponse struct {
	Cost     float64     `json:"cost"`
	Polyline string      `json:"polyline"`
	Path     []PoseParam `json:"path"`
}

func RenderFindPathResponse(path []datastructure.Pose, cost float64) *FindPathResponse {
	poses := make([]PoseParam, 0, len(path))
	coords := make([][]float64, 0, len(path))
	for _, p := range path {
		poses = append(poses, PoseParam{X: p.X, Y: p.Y, Theta: p.Theta})
		coords = append(coords, []float64{p.Y, p.X})
	}
	return &FindPathResponse{
		Cost:     cost,
		Polyline: string(polyline.EncodeCoords(coords)),
		Path:     poses,
	}
}

func (h *PlannerHandler) FindPath(w http.ResponseWriter, r *http.Request) {
	data := &FindPathRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	start := datastructure.NewPose(data.Start.X, data.Start.Y, data.Start.Theta)
	end := datastructure.NewPose(data.End.X, data.End.Y, data.End.Theta)

	path, cost, err := h.svc.FindPath(r.Context(), start, end)
	if err != nil {
		h.m.PlansTotal.WithLabelValues("error").Inc()
		render.Render(w, r, mapServiceError(err))
		return
	}
	if len(path) == 0 {
		h.m.PlansTotal.WithLabelValues("not_found").Inc()
		render.Render(w, r, ErrNotFoundRend(errors.New("no drivable path between the given poses")))
		return
	}
	h.m.PlansTotal.WithLabelValues("found").Inc()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderFindPathResponse(path, cost))
}

func mapServiceError(err error) render.Renderer {
	var svcErr *server.Error
	if errors.As(err, &svcErr) {
		switch svcErr.Code() {
		case server.ErrNotFound:
			return ErrNotFoundRend(err)
		case server.ErrBadParamInput:
			return ErrInvalidRequest(err)
		case server.ErrUnavailable:
			return ErrUnavailableRend(err)
		}
	}
	return ErrInternalServerErrorRend(errors.New("internal server error"))
}

// ErrResponse is the error body shared by every endpoint.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrNotFoundRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 404,
		StatusText:     "Resource not found.",
		ErrorText:      err.Error(),
	}
}

func ErrUnavailableRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 503,
		StatusText:     "Service unavailable.",
		ErrorText:      err.Error(),
	}
}

func ErrInternalServerErrorRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 500,
		StatusText:     "Internal server error.",
		ErrorText:      err.Error(),
	}
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf(e.Translate(trans))
		errs = append(errs, translatedErr)
	}
	return errs
}
