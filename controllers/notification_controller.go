package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"saathi_server/services"
)

// NotificationController handles HTTP requests for notifications
type NotificationController struct {
	NotificationService *services.NotificationService
}

// NewNotificationController creates a new NotificationController instance
func NewNotificationController(notificationService *services.NotificationService) *NotificationController {
	return &NotificationController{NotificationService: notificationService}
}

// HandleList returns the caller's notifications, newest first
func (nc *NotificationController) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	notifications, err := nc.NotificationService.List(r.Context(), caller, int32(limit))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, notifications)
}

// HandleMarkRead marks a single notification of the caller as read
func (nc *NotificationController) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	caller, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var request struct {
		NotificationID string `json:"notificationId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request payload"}`, http.StatusBadRequest)
		return
	}
	if request.NotificationID == "" {
		http.Error(w, `{"error": "notificationId is required"}`, http.StatusBadRequest)
		return
	}

	notification, err := nc.NotificationService.MarkRead(r.Context(), caller, request.NotificationID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, notification)
}

// HandleMarkAllRead marks every unread notification of the caller as read
func (nc *NotificationController) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	caller, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	count, err := nc.NotificationService.MarkAllRead(r.Context(), caller)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}
