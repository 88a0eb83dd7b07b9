package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

// LeadOperations são as cinco operações do ciclo de vida.
type LeadOperations interface {
	Get(ctx context.Context, id string) (*entity.GetOutput, error)
	List(ctx context.Context) (*entity.ScanOutput, error)
	Create(ctx context.Context, input usecase.CreateLeadInput) (*usecase.MessageOutput, error)
	Convert(ctx context.Context, id string) (*usecase.MessageOutput, error)
	Delete(ctx context.Context, id string) (*usecase.MessageOutput, error)
}

type Dispatcher struct {
	Service LeadOperations

	// OnResult, se definido, é chamado com a rota resolvida e o status final.
	OnResult func(route Route, status int)
}

func NewDispatcher(service LeadOperations) *Dispatcher {
	return &Dispatcher{Service: service}
}

// Handle é o ponto de entrada de uma requisição: intercepta OPTIONS,
// classifica, executa e traduz qualquer erro em resposta.
func (d *Dispatcher) Handle(ctx context.Context, req Request) Response {
	if strings.HasPrefix(req.RouteKey, "OPTIONS") {
		return preflight(originOf(req.Headers))
	}

	op, err := Classify(req)

	var resp Response
	switch {
	case err != nil:
		resp = errorResponse(err)
	case op.Route == RouteUnknown:
		resp = routeNotFound()
	default:
		resp = d.execute(ctx, op)
	}

	if d.OnResult != nil {
		d.OnResult(op.Route, resp.StatusCode)
	}
	return resp
}

// Panic dentro de uma operação vira erro comum e segue o mesmo caminho de
// tradução dos demais.
func (d *Dispatcher) execute(ctx context.Context, op Operation) (resp Response) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Str("route", op.Route.String()).
				Str("lead_id", op.ID).
				Interface("panic", rec).
				Msg("panic ao executar operação de lead")
			resp = errorResponse(fmt.Errorf("%v", rec))
		}
	}()

	var (
		out any
		err error
	)

	switch op.Route {
	case RouteGetByID:
		out, err = d.Service.Get(ctx, op.ID)
	case RouteConvertByID:
		out, err = d.Service.Convert(ctx, op.ID)
	case RouteDeleteByID:
		out, err = d.Service.Delete(ctx, op.ID)
	case RouteListAll:
		out, err = d.Service.List(ctx)
	case RouteCreate:
		out, err = d.Service.Create(ctx, op.Create)
	default:
		return routeNotFound()
	}

	if err != nil {
		return errorResponse(err)
	}
	return Respond(http.StatusOK, out, nil)
}

// errorResponse é o único caminho de tradução de erro. Erros fora do
// domínio (store, rede) caem no 400 genérico com a mensagem crua.
func errorResponse(err error) Response {
	var domainErr *usecase.DomainError
	if !errors.As(err, &domainErr) {
		return Respond(http.StatusBadRequest, messageBody{Message: err.Error()}, nil)
	}

	return Respond(statusFor(domainErr.Code), messageBody{Message: domainErr.Message}, nil)
}

func statusFor(code string) int {
	switch code {
	case usecase.CodeNotFound:
		return http.StatusNotFound
	case usecase.CodeConflict:
		return http.StatusConflict
	case usecase.CodeServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func originOf(headers map[string]string) string {
	if origin := headers["origin"]; origin != "" {
		return origin
	}
	return headers["Origin"]
}
