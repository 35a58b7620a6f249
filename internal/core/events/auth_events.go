package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	LoginSucceeded   = "auth.login_succeeded"
	LoginFailed      = "auth.login_failed"
	TokenRefreshed   = "auth.token_refreshed"
	PasswordChanged  = "auth.password_changed"
	PositionRepaired = "user.position_repaired"
	UserProvisioned  = "user.provisioned"
	UserDeactivated  = "user.deactivated"
	PositionAssigned = "user.position_assigned"
)

func newEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

func NewLoginSucceeded(userID, email string) BaseEvent {
	return newEvent(LoginSucceeded, map[string]interface{}{
		"user_id": userID,
		"email":   email,
	})
}

// NewLoginFailed carries the precise reason, which is never sent to clients.
func NewLoginFailed(email, reason string) BaseEvent {
	return newEvent(LoginFailed, map[string]interface{}{
		"email":  email,
		"reason": reason,
	})
}

func NewTokenRefreshed(userID string) BaseEvent {
	return newEvent(TokenRefreshed, map[string]interface{}{
		"user_id": userID,
	})
}

func NewPasswordChanged(userID string) BaseEvent {
	return newEvent(PasswordChanged, map[string]interface{}{
		"user_id": userID,
	})
}

// NewPositionRepaired records a null or dangling position_id being replaced.
// previous is nil when the column was null.
func NewPositionRepaired(userID string, previous *int64, assigned int64) BaseEvent {
	data := map[string]interface{}{
		"user_id":              userID,
		"assigned_position_id": assigned,
	}
	if previous != nil {
		data["previous_position_id"] = *previous
	}
	return newEvent(PositionRepaired, data)
}

func NewUserProvisioned(userID, email string, positionID int64, actorID string) BaseEvent {
	return newEvent(UserProvisioned, map[string]interface{}{
		"user_id":     userID,
		"email":       email,
		"position_id": positionID,
		"actor_id":    actorID,
	})
}

func NewPositionAssigned(userID string, positionID int64, actorID string) BaseEvent {
	return newEvent(PositionAssigned, map[string]interface{}{
		"user_id":     userID,
		"position_id": positionID,
		"actor_id":    actorID,
	})
}

func NewUserDeactivated(userID, actorID string) BaseEvent {
	return newEvent(UserDeactivated, map[string]interface{}{
		"user_id":  userID,
		"actor_id": actorID,
	})
}
