package message

// Server -> client messages.
import (
	"fmt"

	"pickleball/internal/network"
)

const (
	TypeSuccess = "RESPONSE_SUCCESS"
	TypeError   = "RESPONSE_ERROR"

	TypeChallengeReceived = "CHALLENGE_RECEIVED"
	TypeMatchStarted      = "MATCH_STARTED"
	TypeOpponentShot      = "OPPONENT_SHOT"
	TypeRoundResult       = "ROUND_RESULT"
	TypeGameOver          = "GAME_OVER"
)

// SuccessClientPayload is used by command responses and pushes alike.
type SuccessClientPayload struct {
	State   string `json:"state"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type ErrorClientPayload struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CreateSuccessResponse answers a command.
func CreateSuccessResponse(state, message string, data any) network.Message {
	return CreatePush(TypeSuccess, state, message, data)
}

// CreatePush builds an unsolicited notification of msgType.
func CreatePush(msgType, state, message string, data any) network.Message {
	msg, err := network.NewMessage(msgType, SuccessClientPayload{
		State:   state,
		Message: message,
		Data:    data,
	})
	if err != nil {
		return CreateErrorResponse("INTERNAL", err.Error())
	}
	return msg
}

func CreateErrorResponse(code, errorMsg string) network.Message {
	// Two plain strings always marshal.
	msg, _ := network.NewMessage(TypeError, ErrorClientPayload{Error: errorMsg, Code: code})
	return msg
}

// Sender is anything that can queue a message for one client.
type Sender interface {
	Send(msg network.Message) bool
}

func SendError(sender Sender, code, format string, args ...any) {
	sender.Send(CreateErrorResponse(code, fmt.Sprintf(format, args...)))
}

func SendSuccess(sender Sender, state, message string, data any) {
	sender.Send(CreateSuccessResponse(state, message, data))
}

func SendPush(sender Sender, msgType, state, message string, data any) {
	sender.Send(CreatePush(msgType, state, message, data))
}
