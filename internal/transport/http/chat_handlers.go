package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pushchat/pushchat-server/internal/core"
	"github.com/pushchat/pushchat-server/internal/notify"
)

// ChatHandlers provides HTTP handlers for rooms, messages and push tokens.
type ChatHandlers struct {
	coordinator *core.Coordinator
	log         *zerolog.Logger
}

// NewChatHandlers creates a new chat handlers instance.
func NewChatHandlers(coordinator *core.Coordinator, logger *zerolog.Logger) *ChatHandlers {
	return &ChatHandlers{
		coordinator: coordinator,
		log:         logger,
	}
}

// SendMessageRequest represents the message submission body.
type SendMessageRequest struct {
	SenderID   int64  `json:"sender_id" binding:"required"`
	SenderName string `json:"sender_name" binding:"required"`
	Message    string `json:"message" binding:"required"`
	RoomID     int64  `json:"room_id" binding:"required"`
}

// PushTokenRequest represents the push token registration body.
type PushTokenRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Token  string `json:"token" binding:"required"`
}

// NotificationResult is one per-token delivery outcome in the response.
// Exactly one of Response or Error is present.
type NotificationResult struct {
	Token    string `json:"token"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SendMessageData is the data payload of a message submission.
type SendMessageData struct {
	Notifications []NotificationResult `json:"notifications"`
}

// RoomData represents a room in the directory listing.
type RoomData struct {
	RoomID int64  `json:"room_id"`
	Name   string `json:"name"`
}

// MessageData represents a message in room history.
type MessageData struct {
	SenderID   int64  `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
}

// SendMessageAndNotify persists a message and fans out push notifications.
// POST /send_message_and_notify
func (h *ChatHandlers) SendMessageAndNotify(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid send message request")
		c.JSON(http.StatusBadRequest, fail("Invalid request body"))
		return
	}

	result, err := h.coordinator.SendAndNotify(c.Request.Context(), core.SendRequest{
		RoomID:     req.RoomID,
		SenderID:   req.SenderID,
		SenderName: req.SenderName,
		Body:       req.Message,
	})
	if err != nil {
		if errors.Is(err, core.ErrInvalidRoom) {
			c.JSON(http.StatusOK, fail("Invalid room ID"))
			return
		}
		h.log.Error().Err(err).Int64("room_id", req.RoomID).Msg("failed to persist message")
		c.JSON(http.StatusInternalServerError, fail("Failed to store message"))
		return
	}

	c.JSON(http.StatusOK, ok("Message sent and notifications processed", SendMessageData{
		Notifications: toNotificationResults(result.Outcomes),
	}))
}

// SubmitPushToken registers a device push token.
// POST /submit_push_token
func (h *ChatHandlers) SubmitPushToken(c *gin.Context) {
	var req PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid push token request")
		c.JSON(http.StatusBadRequest, fail("Invalid request body"))
		return
	}

	if err := h.coordinator.RegisterToken(c.Request.Context(), req.UserID, req.Token); err != nil {
		h.log.Error().Err(err).Int64("user_id", req.UserID).Msg("failed to store push token")
		c.JSON(http.StatusInternalServerError, fail("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, ok("Token stored successfully", nil))
}

// GetChatRooms lists the room directory.
// GET /get_chat_rooms
func (h *ChatHandlers) GetChatRooms(c *gin.Context) {
	rooms, err := h.coordinator.Rooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		c.JSON(http.StatusInternalServerError, fail("Internal server error"))
		return
	}

	if len(rooms) == 0 {
		c.JSON(http.StatusOK, fail("No chat rooms found"))
		return
	}

	data := make([]RoomData, 0, len(rooms))
	for _, room := range rooms {
		data = append(data, RoomData{RoomID: room.ID, Name: room.Name})
	}

	c.JSON(http.StatusOK, ok("Chat rooms retrieved successfully", data))
}

// GetMessages returns the message history of a room.
// GET /get_messages/:room_id
func (h *ChatHandlers) GetMessages(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("room_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, fail("Invalid room ID"))
		return
	}

	room, messages, err := h.coordinator.RoomMessages(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, core.ErrInvalidRoom) {
			c.JSON(http.StatusOK, fail("Invalid room ID"))
			return
		}
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, fail("Internal server error"))
		return
	}

	data := make([]MessageData, 0, len(messages))
	for _, msg := range messages {
		data = append(data, MessageData{
			SenderID:   msg.SenderID,
			SenderName: msg.SenderName,
			Message:    msg.Body,
			Timestamp:  msg.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, ok("Messages retrieved successfully from "+room.Name, data))
}

func toNotificationResults(outcomes []notify.Outcome) []NotificationResult {
	results := make([]NotificationResult, 0, len(outcomes))
	for _, o := range outcomes {
		result := NotificationResult{Token: o.Token}
		if o.OK() {
			result.Response = o.Receipt
		} else {
			result.Error = o.Err.Error()
		}
		results = append(results, result)
	}
	return results
}
