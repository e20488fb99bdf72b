package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// MessageKind tells how the user's text arrived.
type MessageKind string

const (
	MessageKindText  MessageKind = "text"
	MessageKindVoice MessageKind = "voice"
)

// JSONB represents a JSONB field for PostgreSQL
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Exchange is one completed request/reply pair. It is written to the
// journal after the reply has been sent; the bot never reads it back.
type Exchange struct {
	ID                string      `json:"id" db:"id"`
	ChatID            int64       `json:"chat_id" db:"chat_id"`
	TelegramMessageID int64       `json:"telegram_message_id" db:"telegram_message_id"`
	Kind              MessageKind `json:"kind" db:"kind"`
	UserText          string      `json:"user_text" db:"user_text"`
	ReplyText         string      `json:"reply_text" db:"reply_text"`
	Crisis            bool        `json:"crisis" db:"crisis"`
	Fallback          bool        `json:"fallback" db:"fallback"`
	Meta              JSONB       `json:"meta" db:"meta"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
}
