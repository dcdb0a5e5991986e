package handlers

import (
	"net/http"

	httpx "github.com/dropDatabas3/entrada/internal/http"
)

// GraphQL es un stub del futuro endpoint GraphQL. Por ahora responde
// siempre el mismo hello, sin parsear la query.
//
//	POST /graphql
func GraphQL(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"data": map[string]string{"hello": "🌍"},
	})
}

// GraphQLInfo responde el GET con una pista de uso en vez de un playground.
//
//	GET /graphql
func GraphQLInfo(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "GraphQL endpoint; usar POST con {\"query\": ...}",
	})
}
