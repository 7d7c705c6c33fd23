package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/muesli/termenv"

	"github.com/lcrostarosa/ploscope/internal/server"
)

type WatchCmd struct {
	Server string `kong:"default='ws://localhost:8080/ws',help='WebSocket gateway URL'"`
}

// watchPrinter renders gateway events as colored terminal lines.
type watchPrinter struct {
	out *termenv.Output
}

func (c *WatchCmd) Run() error {
	conn, _, err := websocket.DefaultDialer.Dial(strings.TrimSpace(c.Server), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.Server, err)
	}
	defer conn.Close()

	logger := setupLogger("info")
	ctx := signalContext(logger)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	p := &watchPrinter{out: termenv.NewOutput(os.Stdout)}
	p.headline("watching %s", c.Server)

	for {
		var msg server.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if err := p.print(&msg); err != nil {
			return err
		}
	}
}

func (p *watchPrinter) print(msg *server.Message) error {
	switch msg.Type {
	case server.MessageTypeHandStart:
		var data server.HandStartData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		p.headline("hand %s  %d/%d  button seat %d",
			data.HandID, data.SmallBlind, data.BigBlind, data.Button)
		for _, player := range data.Players {
			p.line("  seat %d  %-12s %5d  %s",
				player.Seat, player.Name, player.Stack, p.cards(player.HoleCards))
		}

	case server.MessageTypePlayerAction:
		var data server.PlayerActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		text := data.Action
		if data.Amount > 0 {
			text = fmt.Sprintf("%s %d", data.Action, data.Amount)
		}
		p.line("%s: %s  (pot %d)", data.Player, p.action(text), data.PotAfter)

	case server.MessageTypeStreetChange:
		var data server.StreetChangeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		p.headline("%s  %s  pot %d", data.Street, p.cards(data.Board), data.Pot)

	case server.MessageTypeHandSettled:
		var data server.HandSettledData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		names := make(map[int]string, len(data.Players))
		for _, player := range data.Players {
			names[player.Seat] = player.Name
		}
		seats := make([]int, 0, len(data.Payouts))
		for seat := range data.Payouts {
			seats = append(seats, seat)
		}
		sort.Ints(seats)
		for _, seat := range seats {
			p.win("%s wins %d", names[seat], data.Payouts[seat])
		}

	case server.MessageTypeHandAborted:
		var data server.HandAbortedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		p.alert("hand %s aborted: %s", data.HandID, data.Reason)
	}
	return nil
}

func (p *watchPrinter) headline(format string, args ...interface{}) {
	fmt.Println(p.out.String(fmt.Sprintf(format, args...)).Foreground(p.out.Color("#5A3FD4")).Bold())
}

func (p *watchPrinter) line(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

func (p *watchPrinter) win(format string, args ...interface{}) {
	fmt.Println(p.out.String(fmt.Sprintf(format, args...)).Foreground(p.out.Color("#04B575")))
}

func (p *watchPrinter) alert(format string, args ...interface{}) {
	fmt.Println(p.out.String(fmt.Sprintf(format, args...)).Foreground(p.out.Color("#FF6B6B")))
}

func (p *watchPrinter) action(text string) string {
	return p.out.String(text).Foreground(p.out.Color("#FFD700")).String()
}

// cards colors each card by suit, red for hearts and diamonds.
func (p *watchPrinter) cards(formatted string) string {
	if formatted == "" {
		return ""
	}
	parts := strings.Fields(formatted)
	for i, card := range parts {
		color := "#AFAFAF"
		if len(card) == 2 && (card[1] == 'h' || card[1] == 'd') {
			color = "#FF6B6B"
		}
		parts[i] = p.out.String(card).Foreground(p.out.Color(color)).String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
