package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tayfyvz/BlackJack/internal/server"
)

// Actions are the requests the player can send to the server.
type Actions interface {
	Hit() error
	Stand() error
	PlayAgain() error
	FindMatch() error
	CreateRoom() error
	JoinRoom(code string) error
	LeaveRoom() error
}

// ServerMsg carries a server message into the Bubble Tea loop
type ServerMsg struct {
	Message *server.Message
}

// DisconnectedMsg signals that the connection to the server was lost
type DisconnectedMsg struct{}

// Phase is what the local player is currently doing
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseIdle
	PhaseWaiting
	PhaseHosting
	PhasePlaying
	PhaseStanding
	PhaseRoundOver
	PhaseMatchOver
	PhaseDisconnected
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseIdle:
		return "idle"
	case PhaseWaiting:
		return "waiting for opponent"
	case PhaseHosting:
		return "waiting for guest"
	case PhasePlaying:
		return "your move"
	case PhaseStanding:
		return "standing"
	case PhaseRoundOver:
		return "round over"
	case PhaseMatchOver:
		return "match over"
	case PhaseDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// TUIModel represents the Bubble Tea model for a Blackjack player
type TUIModel struct {
	actions    Actions
	playerName string
	logger     *log.Logger

	// UI components
	logViewport viewport.Model
	codeInput   textinput.Model
	joining     bool

	gameLog []string

	// Display state, driven entirely by server messages
	phase            Phase
	participantID    string
	roomID           string
	round            int
	winThreshold     int
	yourHand         []server.CardData
	yourSum          int
	busted           bool
	opponentFirst    server.CardData
	opponentLen      int
	opponentHand     []server.CardData
	opponentSum      int
	opponentBusted   bool
	opponentStanding bool
	scores           server.ScoresData
	rematchAsked     bool

	// Dimensions
	width       int
	height      int
	initialized bool
	quitting    bool
}

// NewTUIModel creates a new TUI model that sends player actions through actions
func NewTUIModel(actions Actions, playerName string, logger *log.Logger) *TUIModel {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "room code"
	ti.CharLimit = 16
	ti.Width = 20
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.Prompt = "join> "

	return &TUIModel{
		actions:     actions,
		playerName:  playerName,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		codeInput:   ti,
		gameLog:     []string{},
		phase:       PhaseConnecting,
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return nil
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case ServerMsg:
		m.handleServerMessage(msg.Message)

	case DisconnectedMsg:
		m.phase = PhaseDisconnected
		m.AddLogEntry(ErrorStyle.Render("Disconnected from server. Press q to quit."))

	case tea.KeyMsg:
		if m.joining {
			return m, m.updateJoinInput(msg)
		}
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *TUIModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return tea.Quit, true

	case "h":
		if m.phase == PhasePlaying {
			m.act("hit", m.actions.Hit)
		}
		return nil, true

	case "s":
		if m.phase == PhasePlaying {
			if m.act("stand", m.actions.Stand) {
				m.phase = PhaseStanding
			}
		}
		return nil, true

	case "p":
		if m.phase == PhaseMatchOver && !m.rematchAsked {
			if m.act("play again", m.actions.PlayAgain) {
				m.rematchAsked = true
			}
		}
		return nil, true

	case "n":
		if m.phase == PhaseIdle {
			m.act("find match", m.actions.FindMatch)
		}
		return nil, true

	case "c":
		if m.phase == PhaseIdle {
			m.act("create room", m.actions.CreateRoom)
		}
		return nil, true

	case "j":
		if m.phase == PhaseIdle {
			m.joining = true
			m.codeInput.SetValue("")
			return m.codeInput.Focus(), true
		}
		return nil, true

	case "l":
		if m.roomID != "" || m.phase == PhaseWaiting {
			if m.act("leave", m.actions.LeaveRoom) {
				m.resetRoom()
				m.phase = PhaseIdle
				m.AddLogEntry("You left the room.")
			}
		}
		return nil, true
	}
	return nil, false
}

func (m *TUIModel) updateJoinInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.joining = false
		m.codeInput.Blur()
		return nil
	case "enter":
		code := strings.TrimSpace(m.codeInput.Value())
		m.joining = false
		m.codeInput.Blur()
		if code != "" {
			m.act("join "+code, func() error { return m.actions.JoinRoom(code) })
		}
		return nil
	}

	var cmd tea.Cmd
	m.codeInput, cmd = m.codeInput.Update(msg)
	return cmd
}

// act runs a player action and logs failures.
func (m *TUIModel) act(name string, fn func() error) bool {
	if err := fn(); err != nil {
		m.logger.Error("Action failed", "action", name, "error", err)
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Could not %s: %v", name, err)))
		return false
	}
	return true
}

func (m *TUIModel) resetRoom() {
	m.roomID = ""
	m.round = 0
	m.scores = server.ScoresData{}
	m.rematchAsked = false
	m.resetRound()
}

func (m *TUIModel) resetRound() {
	m.yourHand = nil
	m.yourSum = 0
	m.busted = false
	m.opponentFirst = server.CardData{}
	m.opponentLen = 0
	m.opponentHand = nil
	m.opponentSum = 0
	m.opponentBusted = false
	m.opponentStanding = false
}

// handleServerMessage folds a server message into the display state
func (m *TUIModel) handleServerMessage(msg *server.Message) {
	switch msg.Type {
	case server.MessageTypeWelcome:
		var data server.WelcomeData
		if m.decode(msg, &data) {
			m.participantID = data.ParticipantID
			m.phase = PhaseIdle
			m.AddLogEntry(InfoStyle.Render("Connected as " + m.playerName))
		}

	case server.MessageTypeWaiting:
		m.phase = PhaseWaiting
		m.AddLogEntry("Waiting for an opponent...")

	case server.MessageTypeRoomCreated:
		var data server.RoomCreatedData
		if m.decode(msg, &data) {
			m.phase = PhaseHosting
			m.roomID = data.RoomID
			m.AddLogEntry(WarningStyle.Render("Private room created. Share code: " + data.RoomID))
		}

	case server.MessageTypeGameStart:
		var data server.GameStartData
		if m.decode(msg, &data) {
			m.resetRound()
			m.phase = PhasePlaying
			m.roomID = data.RoomID
			m.round = data.Round
			m.winThreshold = data.WinThreshold
			m.scores = data.Scores
			m.rematchAsked = false
			m.yourHand = data.YourHand
			m.yourSum = data.YourSum
			m.opponentFirst = data.OpponentFirstCard
			m.opponentLen = 2
			m.AddLogEntry(HandInfoStyle.Render(fmt.Sprintf("Round %d: you have %s (%d)", data.Round, formatCards(data.YourHand), data.YourSum)))
		}

	case server.MessageTypeUpdateHand:
		var data server.UpdateHandData
		if m.decode(msg, &data) {
			m.yourHand = data.YourHand
			m.yourSum = data.YourSum
			m.busted = data.Busted
			if data.Busted {
				m.phase = PhaseStanding
				m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Bust! %s (%d)", formatCards(data.YourHand), data.YourSum)))
			} else if n := len(data.YourHand); n > 0 {
				m.AddLogEntry(fmt.Sprintf("You drew: %s (%d)", formatCards(data.YourHand[n-1:]), data.YourSum))
			}
		}

	case server.MessageTypeOpponentUpdate:
		var data server.OpponentUpdateData
		if m.decode(msg, &data) {
			m.opponentLen = data.OpponentHandLength
			m.opponentBusted = data.OpponentBusted
			if data.OpponentBusted {
				m.opponentStanding = true
				m.AddLogEntry("Opponent busted.")
			} else {
				m.AddLogEntry("Opponent drew a card.")
			}
		}

	case server.MessageTypeOpponentStand:
		m.opponentStanding = true
		m.AddLogEntry("Opponent stands.")

	case server.MessageTypeRoundOver:
		var data server.RoundOverData
		if m.decode(msg, &data) {
			m.handleRoundOver(data)
		}

	case server.MessageTypePlayAgainWait:
		m.AddLogEntry("Waiting for opponent to accept the rematch...")

	case server.MessageTypeOpponentDisconnected:
		m.resetRoom()
		m.phase = PhaseIdle
		m.AddLogEntry(WarningStyle.Render("Opponent left. Press n to find a new match."))

	case server.MessageTypeRoomClosed:
		var data server.RoomClosedData
		m.decode(msg, &data)
		m.resetRoom()
		m.phase = PhaseIdle
		m.AddLogEntry(ErrorStyle.Render("Room closed: " + data.Reason))

	case server.MessageTypeError:
		var data server.ErrorData
		if m.decode(msg, &data) {
			m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Error (%s): %s", data.Code, data.Message)))
			if m.phase == PhaseStanding && data.Code != server.ErrorCodeInternal {
				m.phase = PhasePlaying
			}
		}

	default:
		m.logger.Debug("Ignoring message", "type", msg.Type)
	}
}

func (m *TUIModel) handleRoundOver(data server.RoundOverData) {
	m.yourHand = data.YourHand
	m.yourSum = data.YourSum
	m.opponentHand = data.OpponentHand
	m.opponentLen = len(data.OpponentHand)
	m.opponentSum = data.OpponentSum
	m.opponentBusted = data.OpponentBusted
	m.scores = data.Scores

	var result string
	switch data.Winner {
	case "you":
		result = SuccessStyle.Render("You win the round!")
	case "opponent":
		result = ErrorStyle.Render("Opponent wins the round.")
	default:
		result = WarningStyle.Render("Draw.")
	}
	m.AddLogEntry(fmt.Sprintf("%s  You %d vs %d  (%d-%d)", result, data.YourSum, data.OpponentSum, data.Scores.You, data.Scores.Opponent))

	if !data.MatchOver {
		m.phase = PhaseRoundOver
		return
	}

	m.phase = PhaseMatchOver
	m.rematchAsked = false
	if data.MatchWinner == "you" {
		m.AddLogEntry(SuccessStyle.Render("You won the match! Press p to play again."))
	} else {
		m.AddLogEntry(ErrorStyle.Render("You lost the match. Press p to play again."))
	}
}

func (m *TUIModel) decode(msg *server.Message, v any) bool {
	if err := msg.Decode(v); err != nil {
		m.logger.Error("Failed to decode message", "type", msg.Type, "error", err)
		return false
	}
	return true
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := HeaderStyle.Width(m.width).Render(m.renderHeader())
	table := PaneStyle.Width(m.width - 2).Render(m.renderTable())
	actions := m.renderActionPane()

	logHeight := m.height - lipgloss.Height(header) - lipgloss.Height(table) - lipgloss.Height(actions) - 2
	if logHeight < 1 {
		logHeight = 1
	}
	logWidth := m.width - 2
	if logWidth < 1 {
		logWidth = 1
	}

	m.logViewport.Width = logWidth
	m.logViewport.Height = logHeight
	m.logViewport.SetContent(m.renderLogPane())
	if !m.initialized {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logPane := PaneStyle.Width(logWidth).Height(logHeight).Render(m.logViewport.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, table, logPane, actions)
}

func (m *TUIModel) renderHeader() string {
	parts := []string{"Blackjack", m.playerName}
	if m.roomID != "" {
		parts = append(parts, "room "+m.roomID)
	}
	if m.round > 0 {
		parts = append(parts, fmt.Sprintf("round %d", m.round))
	}
	if m.winThreshold > 0 {
		parts = append(parts, fmt.Sprintf("first to %d", m.winThreshold))
	}
	return strings.Join(parts, " • ")
}

// renderTable renders scores and both hands
func (m *TUIModel) renderTable() string {
	var content strings.Builder

	content.WriteString(WarningStyle.Render(fmt.Sprintf("Score  You %d : %d Opponent", m.scores.You, m.scores.Opponent)))
	content.WriteString("\n\n")

	content.WriteString("Opponent: ")
	content.WriteString(m.renderOpponentHand())
	content.WriteString("\n")

	content.WriteString("You:      ")
	if len(m.yourHand) > 0 {
		content.WriteString(formatCards(m.yourHand))
		content.WriteString(HandInfoStyle.Render(fmt.Sprintf("  %d", m.yourSum)))
		if m.busted {
			content.WriteString(ErrorStyle.Render("  BUST"))
		}
	}
	content.WriteString("\n\n")
	content.WriteString(InfoStyle.Render("Status: " + m.phase.String()))

	return content.String()
}

func (m *TUIModel) renderOpponentHand() string {
	if len(m.opponentHand) > 0 {
		s := formatCards(m.opponentHand) + HandInfoStyle.Render(fmt.Sprintf("  %d", m.opponentSum))
		if m.opponentBusted {
			s += ErrorStyle.Render("  BUST")
		}
		return s
	}
	if m.opponentLen == 0 {
		return ""
	}

	cards := []string{formatCard(m.opponentFirst)}
	for i := 1; i < m.opponentLen; i++ {
		cards = append(cards, HiddenCardStyle.Render("??"))
	}
	s := "[" + strings.Join(cards, " ") + "]"
	switch {
	case m.opponentBusted:
		s += ErrorStyle.Render("  BUST")
	case m.opponentStanding:
		s += InfoStyle.Render("  stands")
	}
	return s
}

// renderLogPane renders the game log pane content
func (m *TUIModel) renderLogPane() string {
	return strings.Join(m.gameLog, "\n")
}

// renderActionPane renders the available keys or the join prompt
func (m *TUIModel) renderActionPane() string {
	if m.joining {
		return m.codeInput.View() + "\n" + InfoStyle.Render("Enter to join • Esc to cancel")
	}

	var keys []string
	switch m.phase {
	case PhasePlaying:
		keys = append(keys, SuccessStyle.Render("[h]it"), WarningStyle.Render("[s]tand"))
	case PhaseMatchOver:
		if !m.rematchAsked {
			keys = append(keys, SuccessStyle.Render("[p]lay again"))
		}
	case PhaseIdle:
		keys = append(keys, SuccessStyle.Render("[n]ew match"), WarningStyle.Render("[c]reate room"), WarningStyle.Render("[j]oin room"))
	}
	if m.roomID != "" || m.phase == PhaseWaiting {
		keys = append(keys, InfoStyle.Render("[l]eave"))
	}
	keys = append(keys, InfoStyle.Render("[q]uit"))

	return ActionsStyle.Render("Actions: ") + strings.Join(keys, " ")
}

// AddLogEntry adds an entry to the game log
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Phase returns what the player is currently doing
func (m *TUIModel) Phase() Phase {
	return m.phase
}

func formatCard(card server.CardData) string {
	text := card.Label + card.Suit
	if card.Suit == "♥" || card.Suit == "♦" {
		return RedCardStyle.Render(text)
	}
	return BlackCardStyle.Render(text)
}

// formatCards formats cards with colors
func formatCards(cards []server.CardData) string {
	if len(cards) == 0 {
		return ""
	}

	formatted := make([]string, len(cards))
	for i, card := range cards {
		formatted[i] = formatCard(card)
	}
	return "[" + strings.Join(formatted, " ") + "]"
}
