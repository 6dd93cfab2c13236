package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"streaksage/internal/service"
	"streaksage/internal/ws"

	"github.com/alecthomas/kong"
	"github.com/gorilla/websocket"
)

var CLI struct {
	Addr    string        `help:"Base URL of the API." default:"http://127.0.0.1:8080"`
	Task    int64         `help:"Task to complete." default:"1"`
	Timeout time.Duration `help:"How long to wait for events." default:"5s"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("ws_smoke"),
		kong.Description("Complete a task and print the live events it produces."),
		kong.UsageOnError(),
	)

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	base, err := url.Parse(CLI.Addr)
	if err != nil {
		return fmt.Errorf("parse addr: %w", err)
	}
	wsURL := *base
	wsURL.Scheme = "ws"
	if base.Scheme == "https" {
		wsURL.Scheme = "wss"
	}
	wsURL.Path = "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL.String(), err)
	}
	defer conn.Close()

	deadline := time.Now().Add(CLI.Timeout)
	_ = conn.SetReadDeadline(deadline)

	var ready ws.Event
	if err := conn.ReadJSON(&ready); err != nil {
		return fmt.Errorf("read ready: %w", err)
	}
	if ready.Type != ws.MsgReady {
		return fmt.Errorf("expected %q first, got %q", ws.MsgReady, ready.Type)
	}
	fmt.Println("connected")

	res, err := http.Post(CLI.Addr+"/api/tasks/"+strconv.FormatInt(CLI.Task, 10)+"/complete", "application/json", nil)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	fmt.Printf("POST complete -> %d %s\n", res.StatusCode, body)
	if res.StatusCode != http.StatusCreated {
		return fmt.Errorf("task %d was not completed", CLI.Task)
	}

	want := map[string]bool{service.EventTaskCompleted: false, service.EventProgressUpdated: false}
	for {
		var e ws.Event
		if err := conn.ReadJSON(&e); err != nil {
			return fmt.Errorf("read event: %w", err)
		}
		data, _ := json.Marshal(e.Data)
		fmt.Printf("event %s %s\n", e.Type, data)

		if _, ok := want[e.Type]; ok {
			want[e.Type] = true
		}
		if want[service.EventTaskCompleted] && want[service.EventProgressUpdated] {
			fmt.Println("ok")
			return nil
		}
	}
}
