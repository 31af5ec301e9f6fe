package controllers

import (
	"encoding/json"
	"net/http"

	"saathi_server/services"
)

// InterestController handles HTTP requests for the interest lifecycle
type InterestController struct {
	InterestService *services.InterestService
}

// NewInterestController creates a new InterestController instance
func NewInterestController(interestService *services.InterestService) *InterestController {
	return &InterestController{InterestService: interestService}
}

// HandleExpressInterest creates a new pending interest from the caller
func (ic *InterestController) HandleExpressInterest(w http.ResponseWriter, r *http.Request) {
	caller, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var request struct {
		ToUser string `json:"toUser"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request payload"}`, http.StatusBadRequest)
		return
	}

	interest, err := ic.InterestService.ExpressInterest(r.Context(), caller, request.ToUser)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, interest)
}

// HandleRespond applies the caller's decision to a pending interest
func (ic *InterestController) HandleRespond(w http.ResponseWriter, r *http.Request) {
	caller, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var request struct {
		InterestID string `json:"interestId"`
		Status     string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request payload"}`, http.StatusBadRequest)
		return
	}
	if request.InterestID == "" || request.Status == "" {
		http.Error(w, `{"error": "interestId and status are required"}`, http.StatusBadRequest)
		return
	}

	interest, warning, err := ic.InterestService.Respond(r.Context(), request.InterestID, caller, request.Status)
	if err != nil {
		WriteError(w, err)
		return
	}

	response := map[string]interface{}{"interest": interest}
	if warning != "" {
		response["warning"] = warning
	}
	WriteJSON(w, http.StatusOK, response)
}

// HandleListSent returns the interests the caller has expressed
func (ic *InterestController) HandleListSent(w http.ResponseWriter, r *http.Request) {
	caller, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	interests, err := ic.InterestService.ListSent(r.Context(), caller)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, interests)
}

// HandleListReceived returns the interests addressed to the caller
func (ic *InterestController) HandleListReceived(w http.ResponseWriter, r *http.Request) {
	caller, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	interests, err := ic.InterestService.ListReceived(r.Context(), caller)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, interests)
}
