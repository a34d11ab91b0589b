package main

import (
	"bufio"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"
)

// 交互式测试客户端。用法:
//
//	create
//	join <roomCode> <name>
//	spin <roomCode>
//	shot <roomCode>
//	event <roomCode> <eventType>
//	emoji <roomCode> <emoji>
type packet struct {
	Type string          `json:"type"`
	Ack  uint32          `json:"ack,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

func send(c *websocket.Conn, ack *uint32, msgType string, data interface{}) error {
	*ack++
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.WriteJSON(packet{Type: msgType, Ack: *ack, Data: raw})
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:3000", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			var p packet
			if err := c.ReadJSON(&p); err != nil {
				log.Printf("Read error: %v", err)
				return
			}
			log.Printf("<- %s %s", p.Type, string(p.Data))
		}
	}()

	// Input loop
	go func() {
		var ack uint32
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "create":
				err = send(c, &ack, "createRoom", nil)
			case "join":
				if len(fields) < 3 {
					log.Println("usage: join <roomCode> <name>")
					continue
				}
				err = send(c, &ack, "joinRoom", map[string]string{
					"roomCode": fields[1], "playerName": fields[2],
				})
			case "spin":
				if len(fields) < 2 {
					log.Println("usage: spin <roomCode>")
					continue
				}
				err = send(c, &ack, "requestSpin", map[string]string{"roomCode": fields[1]})
			case "shot":
				if len(fields) < 2 {
					log.Println("usage: shot <roomCode>")
					continue
				}
				err = send(c, &ack, "takeShot", map[string]string{"roomCode": fields[1]})
			case "event":
				if len(fields) < 3 {
					log.Println("usage: event <roomCode> <eventType>")
					continue
				}
				err = send(c, &ack, "triggerEvent", map[string]string{
					"roomCode": fields[1], "eventType": fields[2],
				})
			case "emoji":
				if len(fields) < 3 {
					log.Println("usage: emoji <roomCode> <emoji>")
					continue
				}
				err = send(c, &ack, "sendEmoji", map[string]string{
					"roomCode": fields[1], "emoji": fields[2],
				})
			default:
				log.Printf("Unknown command: %s", fields[0])
				continue
			}

			if err != nil {
				log.Printf("Send error: %v", err)
				return
			}
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupted, closing connection")
		c.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
