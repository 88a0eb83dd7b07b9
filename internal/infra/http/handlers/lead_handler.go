package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/ligue-leads/internal/router"
)

const maxBodyBytes = 1 << 20

// LeadHandler traduz a requisição HTTP para o formato do dispatcher
// e devolve a resposta sem reinterpretar nada.
type LeadHandler struct {
	Dispatcher *router.Dispatcher
}

func NewLeadHandler(dispatcher *router.Dispatcher) *LeadHandler {
	return &LeadHandler{Dispatcher: dispatcher}
}

// Route amarra um identificador de rota fixo a um handler chi.
func (h *LeadHandler) Route(routeKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, routeKey)
	}
}

// Unmatched cobre OPTIONS, 404 e 405 do chi com a chave "<METHOD> <path>".
func (h *LeadHandler) Unmatched(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, r.Method+" "+r.URL.Path)
}

func (h *LeadHandler) serve(w http.ResponseWriter, r *http.Request, routeKey string) {
	req := router.Request{
		RouteKey:       routeKey,
		PathParameters: pathParameters(r),
		Headers:        flattenHeaders(r.Header),
	}

	if r.Body != nil {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeResponse(w, router.Respond(http.StatusBadRequest, map[string]string{"message": err.Error()}, nil))
			return
		}
		if len(raw) > 0 {
			body := string(raw)
			req.Body = &body
		}
	}

	writeResponse(w, h.Dispatcher.Handle(r.Context(), req))
}

func pathParameters(r *http.Request) map[string]string {
	params := map[string]string{}
	if id := chi.URLParam(r, "id"); id != "" {
		params["id"] = id
	}
	return params
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

func writeResponse(w http.ResponseWriter, resp router.Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	io.WriteString(w, resp.Body)
}
