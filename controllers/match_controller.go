package controllers

import (
	"net/http"
	"strconv"

	"saathi_server/services"
)

// MatchController handles HTTP requests for match suggestions
type MatchController struct {
	MatchService *services.MatchService
}

// NewMatchController creates a new MatchController instance
func NewMatchController(matchService *services.MatchService) *MatchController {
	return &MatchController{MatchService: matchService}
}

// HandleSuggestions returns ranked match suggestions for the caller. Scores
// are recomputed per request; callers must not cache the ordering.
func (mc *MatchController) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	caller, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 0
	}

	suggestions, err := mc.MatchService.Suggestions(r.Context(), caller, limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, suggestions)
}
