// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/Timfon/cntr-webapp-sub001/definitions"
	"github.com/Timfon/cntr-webapp-sub001/middleware"
	"github.com/Timfon/cntr-webapp-sub001/models"
)

// ListDefinitions handles GET /definitions
func ListDefinitions(w http.ResponseWriter, r *http.Request) {
	terms := definitions.Terms()
	resp := make([]models.DefinitionResponse, 0, len(terms))
	for _, term := range terms {
		resp = append(resp, models.DefinitionResponse{Term: term, Definition: definitions.Define(term, "")})
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetDefinition handles GET /definitions/{term}
// Unknown terms get the placeholder definition rather than a 404.
func GetDefinition(w http.ResponseWriter, r *http.Request) {
	term := r.PathValue("term")
	middleware.JSONResponse(w, http.StatusOK, models.DefinitionResponse{
		Term:       term,
		Definition: definitions.Define(term, ""),
	})
}
