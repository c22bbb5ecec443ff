package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tayfyvz/BlackJack/internal/client"
	"github.com/tayfyvz/BlackJack/internal/server"
)

// Sender delivers messages into a running Bubble Tea program. *tea.Program
// satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Attach forwards every server message received by c into program and
// reports disconnection once c shuts down. Call it before c.Connect so the
// welcome message is not missed.
func Attach(c *client.Client, program Sender) {
	c.AddGlobalHandler(forward(program))

	go func() {
		<-c.Done()
		program.Send(DisconnectedMsg{})
	}()
}

func forward(program Sender) client.EventHandler {
	return func(msg *server.Message) {
		program.Send(ServerMsg{Message: msg})
	}
}
