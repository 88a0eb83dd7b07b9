package router

import (
	"encoding/json"
	"net/http"
)

const MsgRouteNotFound = "Rota não encontrada."

type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

type messageBody struct {
	Message string `json:"message"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Respond serializa o corpo e sempre inclui Content-Type JSON.
func Respond(status int, body any, headers map[string]string) Response {
	h := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		h[k] = v
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Response{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"message":"Erro no servidor."}`,
		}
	}

	return Response{StatusCode: status, Headers: h, Body: string(payload)}
}

func routeNotFound() Response {
	return Respond(http.StatusNotFound, errorBody{Error: MsgRouteNotFound}, nil)
}

func preflight(origin string) Response {
	return Respond(http.StatusOK, messageBody{Message: "Success"}, map[string]string{
		"Access-Control-Allow-Headers": "Content-Type",
		"Access-Control-Allow-Origin":  origin,
	})
}
