package tui

import (
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tayfyvz/BlackJack/internal/server"
)

type fakeActions struct {
	calls []string
	err   error
}

func (f *fakeActions) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeActions) Hit() error                 { return f.record("hit") }
func (f *fakeActions) Stand() error               { return f.record("stand") }
func (f *fakeActions) PlayAgain() error           { return f.record("play_again") }
func (f *fakeActions) FindMatch() error           { return f.record("find_match") }
func (f *fakeActions) CreateRoom() error          { return f.record("create_room") }
func (f *fakeActions) JoinRoom(code string) error { return f.record("join " + code) }
func (f *fakeActions) LeaveRoom() error           { return f.record("leave_room") }

func newTestModel(t *testing.T) (*TUIModel, *fakeActions) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}) // Quiet logger for tests
	actions := &fakeActions{}
	return NewTUIModel(actions, "alice", logger), actions
}

func serverMsg(t *testing.T, msgType server.MessageType, data any) ServerMsg {
	t.Helper()
	msg, err := server.NewMessage(msgType, data)
	require.NoError(t, err)
	return ServerMsg{Message: msg}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func update(m *TUIModel, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func cards(labels ...string) []server.CardData {
	out := make([]server.CardData, len(labels))
	for i, s := range labels {
		runes := []rune(s)
		out[i] = server.CardData{Label: string(runes[:len(runes)-1]), Suit: string(runes[len(runes)-1])}
	}
	return out
}

func gameStart(t *testing.T) ServerMsg {
	return serverMsg(t, server.MessageTypeGameStart, server.GameStartData{
		RoomID:            "room_a_b",
		Round:             1,
		YourHand:          cards("10♠", "7♥"),
		OpponentFirstCard: cards("K♣")[0],
		YourSum:           17,
		WinThreshold:      10,
	})
}

func lastLog(m *TUIModel) string {
	if len(m.gameLog) == 0 {
		return ""
	}
	return m.gameLog[len(m.gameLog)-1]
}

func TestWelcomeEntersIdle(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, PhaseConnecting, m.Phase())

	update(m, serverMsg(t, server.MessageTypeWelcome, server.WelcomeData{ParticipantID: "p1"}))

	assert.Equal(t, PhaseIdle, m.Phase())
	assert.Equal(t, "p1", m.participantID)
}

func TestMatchmakingKeys(t *testing.T) {
	m, actions := newTestModel(t)
	update(m, serverMsg(t, server.MessageTypeWelcome, server.WelcomeData{ParticipantID: "p1"}))

	update(m, key("h"), key("n"))
	assert.Equal(t, []string{"find_match"}, actions.calls, "hit is ignored outside a round")

	update(m, serverMsg(t, server.MessageTypeWaiting, server.WaitingData{}))
	assert.Equal(t, PhaseWaiting, m.Phase())

	update(m, key("n"))
	assert.Len(t, actions.calls, 1, "find match is only offered while idle")

	update(m, key("l"))
	assert.Equal(t, []string{"find_match", "leave_room"}, actions.calls)
	assert.Equal(t, PhaseIdle, m.Phase())
}

func TestRoundPlay(t *testing.T) {
	m, actions := newTestModel(t)
	update(m, gameStart(t))

	assert.Equal(t, PhasePlaying, m.Phase())
	assert.Equal(t, "room_a_b", m.roomID)
	assert.Equal(t, 17, m.yourSum)
	assert.Equal(t, 2, m.opponentLen)

	update(m, key("h"))
	update(m, serverMsg(t, server.MessageTypeUpdateHand, server.UpdateHandData{
		RoomID:   "room_a_b",
		YourHand: cards("10♠", "7♥", "2♦"),
		YourSum:  19,
	}))
	assert.Equal(t, 19, m.yourSum)
	assert.Contains(t, lastLog(m), "19")

	update(m, key("s"))
	assert.Equal(t, PhaseStanding, m.Phase())

	update(m, key("h"), key("s"))
	assert.Equal(t, []string{"hit", "stand"}, actions.calls)

	update(m, serverMsg(t, server.MessageTypeOpponentUpdate, server.OpponentUpdateData{
		RoomID:             "room_a_b",
		OpponentHandLength: 3,
	}))
	update(m, serverMsg(t, server.MessageTypeOpponentStand, server.OpponentStandData{RoomID: "room_a_b"}))
	assert.Equal(t, 3, m.opponentLen)
	assert.True(t, m.opponentStanding)
}

func TestBustEndsTurn(t *testing.T) {
	m, _ := newTestModel(t)
	update(m, gameStart(t))

	update(m, serverMsg(t, server.MessageTypeUpdateHand, server.UpdateHandData{
		RoomID:   "room_a_b",
		YourHand: cards("10♠", "7♥", "K♦"),
		YourSum:  27,
		Busted:   true,
	}))

	assert.Equal(t, PhaseStanding, m.Phase())
	assert.True(t, m.busted)
	assert.Contains(t, lastLog(m), "Bust")
}

func TestRoundOverAndRematch(t *testing.T) {
	m, actions := newTestModel(t)
	update(m, gameStart(t))

	update(m, serverMsg(t, server.MessageTypeRoundOver, server.RoundOverData{
		RoomID:       "room_a_b",
		Round:        1,
		YourHand:     cards("10♠", "7♥"),
		OpponentHand: cards("K♣", "9♦"),
		YourSum:      17,
		OpponentSum:  19,
		Winner:       "opponent",
		Scores:       server.ScoresData{You: 0, Opponent: 1},
	}))
	assert.Equal(t, PhaseRoundOver, m.Phase())
	assert.Equal(t, 1, m.scores.Opponent)

	update(m, key("p"))
	assert.Empty(t, actions.calls, "play again waits for the match to end")

	update(m, serverMsg(t, server.MessageTypeRoundOver, server.RoundOverData{
		RoomID:      "room_a_b",
		Round:       2,
		Winner:      "you",
		Scores:      server.ScoresData{You: 10, Opponent: 9},
		MatchOver:   true,
		MatchWinner: "you",
	}))
	assert.Equal(t, PhaseMatchOver, m.Phase())
	assert.Contains(t, lastLog(m), "You won the match")

	update(m, key("p"), key("p"))
	assert.Equal(t, []string{"play_again"}, actions.calls)

	update(m, gameStart(t))
	assert.Equal(t, PhasePlaying, m.Phase())
	assert.Equal(t, server.ScoresData{}, m.scores)
}

func TestJoinPrompt(t *testing.T) {
	m, actions := newTestModel(t)
	update(m, serverMsg(t, server.MessageTypeWelcome, server.WelcomeData{ParticipantID: "p1"}))

	t.Run("enter submits code", func(t *testing.T) {
		update(m, key("j"))
		require.True(t, m.joining)

		update(m, key("ABC123"), key("enter"))
		assert.False(t, m.joining)
		assert.Equal(t, []string{"join ABC123"}, actions.calls)
	})

	t.Run("esc cancels without quitting", func(t *testing.T) {
		actions.calls = nil
		update(m, key("j"), key("XYZ"))
		cmd := update(m, key("esc"))

		assert.Nil(t, cmd)
		assert.False(t, m.joining)
		assert.False(t, m.quitting)
		assert.Empty(t, actions.calls)
	})
}

func TestPrivateRoomAndLeave(t *testing.T) {
	m, actions := newTestModel(t)
	update(m, serverMsg(t, server.MessageTypeWelcome, server.WelcomeData{ParticipantID: "p1"}))

	update(m, key("c"))
	update(m, serverMsg(t, server.MessageTypeRoomCreated, server.RoomCreatedData{RoomID: "K3J9QX"}))
	assert.Equal(t, PhaseHosting, m.Phase())
	assert.Contains(t, lastLog(m), "K3J9QX")

	update(m, key("l"))
	assert.Equal(t, []string{"create_room", "leave_room"}, actions.calls)
	assert.Equal(t, PhaseIdle, m.Phase())
	assert.Empty(t, m.roomID)
}

func TestOpponentDisconnectResetsRoom(t *testing.T) {
	m, _ := newTestModel(t)
	update(m, gameStart(t))

	update(m, serverMsg(t, server.MessageTypeOpponentDisconnected, server.OpponentDisconnectedData{RoomID: "room_a_b"}))

	assert.Equal(t, PhaseIdle, m.Phase())
	assert.Empty(t, m.roomID)
	assert.Empty(t, m.yourHand)
}

func TestRoomClosedShowsReason(t *testing.T) {
	m, _ := newTestModel(t)
	update(m, gameStart(t))

	update(m, serverMsg(t, server.MessageTypeRoomClosed, server.RoomClosedData{RoomID: "room_a_b", Reason: "deck exhausted"}))

	assert.Equal(t, PhaseIdle, m.Phase())
	assert.Contains(t, lastLog(m), "deck exhausted")
}

func TestActionErrorIsLogged(t *testing.T) {
	m, actions := newTestModel(t)
	actions.err = errors.New("not connected")
	update(m, serverMsg(t, server.MessageTypeWelcome, server.WelcomeData{ParticipantID: "p1"}))

	update(m, key("n"))

	assert.Contains(t, lastLog(m), "Could not find match: not connected")
}

func TestServerErrorIsLogged(t *testing.T) {
	m, _ := newTestModel(t)
	update(m, serverMsg(t, server.MessageTypeError, server.ErrorData{Code: server.ErrorCodeRoomNotFound, Message: "no such room"}))

	assert.Contains(t, lastLog(m), "room_not_found")
	assert.Contains(t, lastLog(m), "no such room")
}

func TestDisconnectAndQuit(t *testing.T) {
	m, _ := newTestModel(t)
	update(m, DisconnectedMsg{})
	assert.Equal(t, PhaseDisconnected, m.Phase())

	cmd := update(m, key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestViewHidesOpponentHoleCards(t *testing.T) {
	m, _ := newTestModel(t)
	update(m, tea.WindowSizeMsg{Width: 80, Height: 24}, gameStart(t))

	view := m.View()
	assert.Contains(t, view, "room room_a_b")
	assert.Contains(t, view, "first to 10")
	assert.Contains(t, view, "10♠")
	assert.Contains(t, view, "K♣")
	assert.Contains(t, view, "??")
	assert.Contains(t, view, "[h]it")
	assert.NotContains(t, view, "9♦")

	update(m, serverMsg(t, server.MessageTypeRoundOver, server.RoundOverData{
		RoomID:       "room_a_b",
		Round:        1,
		YourHand:     cards("10♠", "7♥"),
		OpponentHand: cards("K♣", "9♦"),
		YourSum:      17,
		OpponentSum:  19,
		Winner:       "opponent",
		Scores:       server.ScoresData{Opponent: 1},
	}))
	view = m.View()
	assert.Contains(t, view, "9♦")
	assert.False(t, strings.Contains(view, "??"))
}

func TestViewBeforeResize(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, "Loading...", m.View())
}

type recordingSender struct {
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) { r.msgs = append(r.msgs, msg) }

func TestForwardWrapsServerMessages(t *testing.T) {
	sender := &recordingSender{}
	msg, err := server.NewMessage(server.MessageTypeWaiting, server.WaitingData{})
	require.NoError(t, err)

	forward(sender)(msg)

	require.Len(t, sender.msgs, 1)
	assert.Equal(t, ServerMsg{Message: msg}, sender.msgs[0])
}

func TestFormatCards(t *testing.T) {
	assert.Empty(t, formatCards(nil))
	formatted := formatCards(cards("A♥", "10♣"))
	assert.Contains(t, formatted, "A♥")
	assert.Contains(t, formatted, "10♣")
}
