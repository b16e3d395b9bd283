// pickleball/cmd/client/main.go
package main

import (
	"bufio"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"pickleball/internal/network"
	"pickleball/internal/services/cluster"
	"pickleball/internal/session/message"
)

const defaultServerAddrs = "localhost:8080"

var (
	infoColor   = color.New(color.FgCyan)
	pushColor   = color.New(color.FgYellow, color.Bold)
	errorColor  = color.New(color.FgRed)
	promptColor = color.New(color.FgGreen)

	pingStartTime time.Time
	pingMutex     sync.Mutex
	writeMutex    sync.Mutex
	stateMutex    sync.Mutex

	clientState = "anonymous"
)

func main() {
	_ = godotenv.Load()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	conn := dial(serverAddresses())
	defer conn.Close()

	pingResult := make(chan time.Duration, 1)
	conn.SetPongHandler(func(string) error {
		pingMutex.Lock()
		defer pingMutex.Unlock()
		if !pingStartTime.IsZero() {
			pingResult <- time.Since(pingStartTime)
			pingStartTime = time.Time{}
		}
		return nil
	})

	done := make(chan struct{})
	go readLoop(conn, done)

	if id := os.Getenv("PB_PLAYER_ID"); id != "" {
		send(conn, "IDENTIFY", map[string]string{"playerId": id, "name": os.Getenv("PB_PLAYER_NAME")})
	}

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			handleUserInput(conn, scanner.Text(), pingResult)
		}
	}()

	select {
	case <-done:
		log.Println("Disconnected from server.")
	case <-interrupt:
		log.Println("Interrupted, closing connection.")
		writeMutex.Lock()
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		writeMutex.Unlock()
	}
}

// serverAddresses resolves the server through consul when CONSUL_HTTP_ADDR is
// set, falling back to PB_SERVER_ADDRS.
func serverAddresses() []string {
	if consulAddrs := os.Getenv("CONSUL_HTTP_ADDR"); consulAddrs != "" {
		serviceName := os.Getenv("PB_SERVICE_NAME")
		if serviceName == "" {
			serviceName = "pickleball"
		}
		client, err := cluster.NewConsulClient(consulAddrs, nil)
		if err == nil {
			addr, err := cluster.DiscoverAnyHealthy(client, serviceName)
			if err == nil {
				return []string{addr}
			}
			log.Printf("WARN: discovery of %s failed: %v", serviceName, err)
		} else {
			log.Printf("WARN: %v", err)
		}
	}

	addrs := os.Getenv("PB_SERVER_ADDRS")
	if addrs == "" {
		addrs = defaultServerAddrs
	}
	return strings.Split(addrs, ",")
}

// dial tries every address until one accepts the websocket.
func dial(addrs []string) *websocket.Conn {
	for _, addr := range addrs {
		u := url.URL{Scheme: "ws", Host: strings.TrimSpace(addr), Path: "/ws"}
		log.Printf("Connecting to %s", u.String())

		conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
		if err == nil {
			return conn
		}
		log.Printf("WARN: failed to connect to %s: %v", addr, err)
		if resp != nil {
			log.Printf("WARN: response status: %s", resp.Status)
		}
	}
	log.Fatalf("No pickleball server reachable in %v.", addrs)
	return nil
}

func readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		var msg network.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("\nRead error: %v", err)
			}
			return
		}
		printServerMessage(msg)
		printPrompt()
	}
}

func printServerMessage(msg network.Message) {
	if msg.Type == message.TypeError {
		var p message.ErrorClientPayload
		if err := msg.Decode(&p); err != nil {
			errorColor.Printf("\n[%s] %s\n", msg.Type, err)
			return
		}
		errorColor.Printf("\n[%s] %s\n", p.Code, p.Error)
		return
	}

	var p message.SuccessClientPayload
	if err := msg.Decode(&p); err != nil {
		errorColor.Printf("\n[%s] %s\n", msg.Type, err)
		return
	}
	if p.State != "" {
		stateMutex.Lock()
		clientState = p.State
		stateMutex.Unlock()
	}
	if msg.Type == message.TypeSuccess {
		infoColor.Printf("\n%s\n", p.Message)
		return
	}
	pushColor.Printf("\n>> %s\n", p.Message)
}

func printPrompt() {
	stateMutex.Lock()
	state := clientState
	stateMutex.Unlock()
	promptColor.Printf("[%s] > ", state)
}

func printHelp() {
	fmt.Println(`Commands:
  login <id> [name]   identify as a player
  challenge <id>      challenge another player
  accept              accept the challenge waiting for you
  shot <name>         play a shot (see rules)
  forfeit             give up the current match or challenge
  status              show your current match
  rules               list shots and what they beat
  ping                measure round-trip latency
  help                show this list`)
}

func handleUserInput(conn *websocket.Conn, line string, pingResult chan time.Duration) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		printPrompt()
		return
	}
	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "login":
		if len(args) == 0 {
			errorColor.Println("usage: login <id> [name]")
			break
		}
		send(conn, "IDENTIFY", map[string]string{"playerId": args[0], "name": strings.Join(args[1:], " ")})
		return
	case "challenge":
		if len(args) != 1 {
			errorColor.Println("usage: challenge <id>")
			break
		}
		send(conn, "CHALLENGE", map[string]string{"opponent": args[0]})
		return
	case "accept":
		send(conn, "ACCEPT", nil)
		return
	case "shot":
		if len(args) != 1 {
			errorColor.Println("usage: shot <name>")
			break
		}
		send(conn, "SHOT", map[string]string{"shot": args[0]})
		return
	case "forfeit":
		send(conn, "FORFEIT", nil)
		return
	case "status":
		send(conn, "STATUS", nil)
		return
	case "rules":
		send(conn, "RULES", nil)
		return
	case "ping":
		ping(conn, pingResult)
	case "help":
		printHelp()
	default:
		errorColor.Printf("unknown command %q, try help\n", fields[0])
	}
	printPrompt()
}

func send(conn *websocket.Conn, msgType string, payload any) {
	msg, err := network.NewMessage(msgType, payload)
	if err != nil {
		errorColor.Println(err)
		return
	}
	writeMutex.Lock()
	defer writeMutex.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		errorColor.Printf("failed to send %s: %v\n", msgType, err)
	}
}

func ping(conn *websocket.Conn, pingResult chan time.Duration) {
	pingMutex.Lock()
	pingStartTime = time.Now()
	pingMutex.Unlock()

	if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
		errorColor.Println("ping failed:", err)
		pingMutex.Lock()
		pingStartTime = time.Time{}
		pingMutex.Unlock()
		return
	}

	select {
	case latency := <-pingResult:
		infoColor.Printf("pong in %v\n", latency)
	case <-time.After(3 * time.Second):
		errorColor.Println("ping timed out")
	}
}
