package events

import "time"

// Analytics events emitted on the NATS bus. Consumers are external
// (dashboards, offline aggregation), so payloads stay flat JSON maps.

func NewUserRegisteredEvent(userID, email string) Event {
	return BaseEvent{
		Type: "USER_REGISTERED",
		Data: map[string]interface{}{
			"user_id": userID,
			"email":   email,
		},
		OccurredAt: time.Now(),
	}
}

func NewUserLoggedInEvent(userID string) Event {
	return BaseEvent{
		Type: "USER_LOGGED_IN",
		Data: map[string]interface{}{
			"user_id": userID,
		},
		OccurredAt: time.Now(),
	}
}

func NewChatMessageProcessedEvent(userID, sessionID, messageType, replyType string) Event {
	return BaseEvent{
		Type: "CHAT_MESSAGE_PROCESSED",
		Data: map[string]interface{}{
			"user_id":         userID,
			"session_id":      sessionID,
			"message_type":    messageType,
			"reply_type":      replyType,
			"processed_at_ms": time.Now().UnixMilli(),
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionDeletedEvent(userID, sessionID string, hard bool) Event {
	return BaseEvent{
		Type: "CHAT_SESSION_DELETED",
		Data: map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
			"hard":       hard,
		},
		OccurredAt: time.Now(),
	}
}
