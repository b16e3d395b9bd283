// pickleball/cmd/bot/main.go
package main

import (
	"encoding/json"
	"math/rand/v2"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"

	"pickleball/internal/network"
	"pickleball/internal/session/message"
)

func main() {
	_ = godotenv.Load()
	logger := hclog.New(&hclog.LoggerOptions{Name: "pickleball-bot", Level: hclog.LevelFromString(os.Getenv("LOG_LEVEL"))})

	addr := getenv("PB_SERVER_ADDR", "localhost:8080")
	id := getenv("PB_BOT_ID", "sparring-bot")

	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		logger.Error("could not connect", "addr", u.String(), "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	b := newBot(id, rand.IntN)
	if err := write(conn, b.identify()); err != nil {
		logger.Error("identify failed", "error", err)
		os.Exit(1)
	}
	logger.Info("bot online", "player", id, "server", addr)

	for {
		var msg network.Message
		if err := conn.ReadJSON(&msg); err != nil {
			logger.Warn("connection closed", "error", err)
			return
		}
		logger.Debug("received", "type", msg.Type)
		for _, out := range b.react(msg) {
			// A short think time keeps the bot readable for humans.
			time.Sleep(time.Duration(200+rand.IntN(600)) * time.Millisecond)
			if err := write(conn, out); err != nil {
				logger.Warn("write failed", "error", err)
				return
			}
		}
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func write(conn *websocket.Conn, msg network.Message) error {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(msg)
}

// bot accepts every challenge and plays a random shot whenever it is its turn.
type bot struct {
	id    string
	shots []string
	pick  func(n int) int
}

func newBot(id string, pick func(n int) int) *bot {
	return &bot{id: id, pick: pick}
}

func (b *bot) identify() network.Message {
	msg, _ := network.NewMessage("IDENTIFY", map[string]string{"playerId": b.id, "name": "Sparring Bot"})
	return msg
}

// view covers the data shapes the server sends: snapshots, shot results and rule sheets.
type view struct {
	CurrentTurn string   `json:"currentTurn"`
	Shots       []string `json:"shots"`
	Match       *struct {
		CurrentTurn string `json:"currentTurn"`
	} `json:"match"`
}

func (v view) turn() string {
	if v.Match != nil {
		return v.Match.CurrentTurn
	}
	return v.CurrentTurn
}

// react returns the commands to send in answer to msg.
func (b *bot) react(msg network.Message) []network.Message {
	if msg.Type == message.TypeError {
		return nil
	}
	var p struct {
		message.SuccessClientPayload
		Data json.RawMessage `json:"data"`
	}
	if err := msg.Decode(&p); err != nil {
		return nil
	}
	var v view
	if len(p.Data) > 0 {
		_ = json.Unmarshal(p.Data, &v)
	}
	if len(v.Shots) > 0 {
		b.shots = v.Shots
	}

	var out []network.Message
	if b.shots == nil && msg.Type == message.TypeSuccess && p.State != "anonymous" {
		out = append(out, command("RULES", nil))
	}
	switch {
	case msg.Type == message.TypeChallengeReceived:
		out = append(out, command("ACCEPT", nil))
	case v.turn() == b.id:
		out = append(out, b.shot())
	}
	return out
}

func (b *bot) shot() network.Message {
	shots := b.shots
	if len(shots) == 0 {
		shots = []string{"drive", "lob", "dink", "drop", "smash"}
	}
	return command("SHOT", map[string]string{"shot": shots[b.pick(len(shots))]})
}

func command(msgType string, payload any) network.Message {
	msg, _ := network.NewMessage(msgType, payload)
	return msg
}
