package router

import (
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

// Identificadores de rota reconhecidos. Comparação literal, sem inferência.
const (
	KeyGetByID     = "GET /leads/{id}"
	KeyConvertByID = "PUT /leads/{id}"
	KeyDeleteByID  = "DELETE /leads/{id}"
	KeyListAll     = "GET /leads"
	KeyCreate      = "POST /leads"
)

type Route int

const (
	RouteUnknown Route = iota
	RouteGetByID
	RouteConvertByID
	RouteDeleteByID
	RouteListAll
	RouteCreate
)

var routeNames = map[Route]string{
	RouteUnknown:     "unknown",
	RouteGetByID:     "get",
	RouteConvertByID: "convert",
	RouteDeleteByID:  "delete",
	RouteListAll:     "list",
	RouteCreate:      "create",
}

func (r Route) String() string {
	if name, ok := routeNames[r]; ok {
		return name
	}
	return "unknown"
}

var routeTable = map[string]Route{
	KeyGetByID:     RouteGetByID,
	KeyConvertByID: RouteConvertByID,
	KeyDeleteByID:  RouteDeleteByID,
	KeyListAll:     RouteListAll,
	KeyCreate:      RouteCreate,
}

// Request é a requisição já reduzida ao que o roteador precisa.
type Request struct {
	RouteKey       string
	PathParameters map[string]string
	Body           *string
	Headers        map[string]string
}

// Operation é o resultado da classificação, com argumentos já tipados.
type Operation struct {
	Route  Route
	ID     string
	Create usecase.CreateLeadInput
}

// Classify resolve a rota e extrai os argumentos uma única vez.
// O corpo só é lido no POST; nas demais rotas é ignorado.
func Classify(req Request) (Operation, error) {
	route, ok := routeTable[req.RouteKey]
	if !ok {
		return Operation{Route: RouteUnknown}, nil
	}

	op := Operation{Route: route}

	switch route {
	case RouteGetByID, RouteConvertByID, RouteDeleteByID:
		op.ID = req.PathParameters["id"]

	case RouteCreate:
		var body string
		if req.Body != nil {
			body = *req.Body
		}
		input, err := usecase.ParseCreateLeadInput(body)
		if err != nil {
			return op, err
		}
		op.Create = input
	}

	return op, nil
}
