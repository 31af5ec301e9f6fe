package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"saathi_server/services"
)

// ChatController handles HTTP requests for conversations and messages
type ChatController struct {
	ChatService *services.ChatService
}

// NewChatController initializes the chat controller
func NewChatController(chatService *services.ChatService) *ChatController {
	return &ChatController{ChatService: chatService}
}

// HandleListConversations returns the caller's conversations, most recently
// active first
func (cc *ChatController) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	caller, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	conversations, err := cc.ChatService.ListConversations(r.Context(), caller)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, conversations)
}

// HandleGetMessages returns one page of the conversation with otherUser in
// creation order. An empty page, not an error, when no conversation exists.
func (cc *ChatController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	caller, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	otherUser := r.URL.Query().Get("otherUser")
	if otherUser == "" {
		http.Error(w, `{"error": "otherUser is required"}`, http.StatusBadRequest)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 0
	}
	cursor := r.URL.Query().Get("cursor")

	messages, nextCursor, err := cc.ChatService.GetMessages(r.Context(), caller, otherUser, int32(limit), cursor)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages":   messages,
		"nextCursor": nextCursor,
	})
}

// HandleSendMessage appends a message from the caller to otherUser, creating
// the conversation on first contact
func (cc *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	caller, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var request struct {
		OtherUser string `json:"otherUser"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request payload"}`, http.StatusBadRequest)
		return
	}
	if request.OtherUser == "" {
		http.Error(w, `{"error": "otherUser is required"}`, http.StatusBadRequest)
		return
	}

	message, err := cc.ChatService.SendMessage(r.Context(), caller, request.OtherUser, request.Text)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, message)
}
