package dtos

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type ResolveBotRequest struct {
	APIKey string `json:"api_key" validate:"max=256"`
}

type CreateArchiveRequest struct {
	APIKey         string `json:"api_key" validate:"max=256"`
	BotName        string `json:"bot_name" validate:"max=64"`
	SenderChatID   string `json:"sender_chat_id" validate:"max=64"`
	ReceiverChatID string `json:"receiver_chat_id" validate:"max=64"`
}

// Form echoes the request back as form state.
func (r CreateArchiveRequest) Form() FormState {
	return FormState{
		APIKey:         r.APIKey,
		BotName:        r.BotName,
		SenderChatID:   r.SenderChatID,
		ReceiverChatID: r.ReceiverChatID,
	}
}

type ProfileRequest struct {
	UserChatID string `json:"user_chat_id" validate:"max=64"`
}

type LoginRequest struct {
	Username string `validate:"required,min=3,max=32"`
	Password string `validate:"required,min=1,max=128"`
}

type RegisterRequest struct {
	Username        string `validate:"required,min=3,max=32"`
	Password        string `validate:"required,min=8,max=128"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

// LogRequest is a line from the browser's diagnostic console.
type LogRequest struct {
	Level   string                 `json:"level" validate:"required,oneof=debug info warn error"`
	Message string                 `json:"message" validate:"required,max=2000"`
	Context map[string]interface{} `json:"context"`
}

// Validate checks req against its struct tags and returns a readable error.
func Validate(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s does not match", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
