package controllers

import (
	"encoding/json"
	"net/http"

	"saathi_server/services"
)

// ShortlistController handles HTTP requests for the bookmark set
type ShortlistController struct {
	ShortlistService *services.ShortlistService
}

// NewShortlistController creates a new ShortlistController instance
func NewShortlistController(shortlistService *services.ShortlistService) *ShortlistController {
	return &ShortlistController{ShortlistService: shortlistService}
}

// HandleToggle flips the target's presence in the caller's shortlist
func (sc *ShortlistController) HandleToggle(w http.ResponseWriter, r *http.Request) {
	caller, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var request struct {
		TargetID string `json:"targetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request payload"}`, http.StatusBadRequest)
		return
	}

	targets, err := sc.ShortlistService.Toggle(r.Context(), caller, request.TargetID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"targets": targets})
}

// HandleList returns the caller's shortlist with display fields attached
func (sc *ShortlistController) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	profiles, err := sc.ShortlistService.List(r.Context(), caller)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profiles)
}

// HandleReverseCount returns how many members shortlisted the target
func (sc *ShortlistController) HandleReverseCount(w http.ResponseWriter, r *http.Request) {
	if _, err := CallerID(r); err != nil {
		WriteError(w, err)
		return
	}

	target := r.URL.Query().Get("targetId")
	if target == "" {
		http.Error(w, `{"error": "targetId is required"}`, http.StatusBadRequest)
		return
	}

	owners, err := sc.ShortlistService.ListShortlistedBy(r.Context(), target)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"count": len(owners)})
}
