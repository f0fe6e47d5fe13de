package http

import (
	"encoding/json"
	"net/http"

	"learnitquick/internal/app"
	"learnitquick/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(service *app.GameService, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log.With().Str("component", "ws").Logger(),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Mode       domain.Mode       `json:"mode"`
	Difficulty domain.Difficulty `json:"difficulty"`
}

type answerPayload struct {
	Value domain.Answer `json:"value"`
}

type profilePayload struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type countdownPayload struct {
	TimeRemaining int `json:"timeRemaining"`
}

// ServeWS upgrades HTTP requests to websockets and runs the player's rounds
// over them.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		http.Error(w, "missing playerId", http.StatusBadRequest)
		return
	}
	log := h.log.With().Str("player", playerID).Logger()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	profile, err := h.service.Profile(r.Context(), playerID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}

	events, cancel, err := h.service.Subscribe(r.Context(), playerID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	// closing the page abandons the round
	defer h.service.ExitRound(r.Context(), playerID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Msg("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- eventMessage(ev):
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "profile", Payload: profile}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if msg, ok := h.handle(r, playerID, inbound); ok {
			send <- msg
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

// handle runs one inbound message. Round progress reaches the client as
// session events, so only replies that are not events are returned here.
func (h *WSHandler) handle(r *http.Request, playerID string, inbound inboundMessage) (outboundMessage[any], bool) {
	ctx := r.Context()
	switch inbound.Type {
	case "start":
		var payload startPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorText("invalid start payload"), true
		}
		if _, err := h.service.StartRound(ctx, playerID, payload.Mode, payload.Difficulty); err != nil {
			return errorMessage(err), true
		}
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorText("invalid answer payload"), true
		}
		_, accepted, err := h.service.SubmitAnswer(ctx, playerID, payload.Value)
		if err != nil {
			return errorMessage(err), true
		}
		if !accepted {
			return errorText("no question awaiting an answer"), true
		}
	case "finish":
		if _, err := h.service.FinishRound(ctx, playerID); err != nil {
			return errorMessage(err), true
		}
	case "exit":
		h.service.ExitRound(ctx, playerID)
	case "profile":
		var payload profilePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorText("invalid profile payload"), true
		}
		profile, err := h.service.UpdateProfile(ctx, playerID, payload.Name, payload.Avatar)
		if err != nil {
			return errorMessage(err), true
		}
		return outboundMessage[any]{Type: "profile", Payload: profile}, true
	default:
		return errorText("unsupported message type"), true
	}
	return outboundMessage[any]{}, false
}

func eventMessage(ev domain.Event) outboundMessage[any] {
	msg := outboundMessage[any]{Type: string(ev.Type)}
	switch ev.Type {
	case domain.EventQuestion:
		msg.Payload = ev.Question
	case domain.EventAnswerResult:
		msg.Payload = ev.Result
	case domain.EventSummary:
		msg.Payload = ev.Summary
	case domain.EventRoundStarted, domain.EventLeaderboard:
		msg.Payload = ev.Leaderboard
	default:
		msg.Payload = countdownPayload{TimeRemaining: ev.TimeRemaining}
	}
	return msg
}

func errorMessage(err error) outboundMessage[any] {
	return errorText(err.Error())
}

func errorText(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
