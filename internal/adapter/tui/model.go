package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/park285/oware-session/internal/domain"
	"github.com/park285/oware-session/internal/msgcat"
	"github.com/park285/oware-session/internal/obslog"
	"github.com/park285/oware-session/internal/session"
	"github.com/park285/oware-session/internal/view"
)

// Controller is what the terminal UI drives.
type Controller interface {
	Sync(ctx context.Context) error
	NewGame(ctx context.Context) error
	Undo(ctx context.Context) error
	Move(ctx context.Context, slot int) error
	AIMove(ctx context.Context, depth int) error
}

type frameMsg view.Instructions

type doneMsg struct {
	op  string
	err error
}

// Model is the bubbletea model for one game.
type Model struct {
	ctx    context.Context
	ctrl   Controller
	frames <-chan view.Instructions
	cat    *msgcat.Catalog
	log    *zap.Logger

	in    view.Instructions
	depth int
	width int
	keys  keyMap
	help  help.Model
}

func New(ctx context.Context, ctrl Controller, frames *Frames, cat *msgcat.Catalog, depth int) Model {
	if depth < 1 {
		depth = 1
	}
	m := Model{
		ctx:    ctx,
		ctrl:   ctrl,
		frames: frames.C(),
		cat:    cat,
		log:    obslog.L(),
		depth:  depth,
		keys:   newKeyMap(cat.Text("tui.houses", nil, "houses")),
		help:   help.New(),
	}
	m.in = view.NewRenderer(cat).Render(nil, false)
	return m
}

func (m Model) Depth() int                      { return m.depth }
func (m Model) Instructions() view.Instructions { return m.in }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitFrame(), m.run("sync", m.ctrl.Sync))
}

func (m Model) waitFrame() tea.Cmd {
	return func() tea.Msg {
		select {
		case in := <-m.frames:
			return frameMsg(in)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m Model) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return doneMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.in = view.Instructions(msg)
		m.keys.setEnabled(!m.in.DisableAll, m.in.StartGameEnabled, m.in.UndoEnabled, m.in.AIMoveEnabled)
		return m, m.waitFrame()
	case doneMsg:
		if msg.err != nil && !errors.Is(msg.err, session.ErrBusy) {
			m.log.Debug("tui_action_failed", zap.String("op", msg.op), zap.Error(msg.err))
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.DepthUp):
		m.depth++
		return m, nil
	case key.Matches(msg, m.keys.DepthDown):
		if m.depth > 1 {
			m.depth--
		}
		return m, nil
	case key.Matches(msg, m.keys.NewGame):
		return m, m.run("new_game", m.ctrl.NewGame)
	case key.Matches(msg, m.keys.Undo):
		return m, m.run("undo", m.ctrl.Undo)
	case key.Matches(msg, m.keys.AIMove):
		depth := m.depth
		return m, m.run("ai_move", func(ctx context.Context) error { return m.ctrl.AIMove(ctx, depth) })
	case key.Matches(msg, m.keys.Houses):
		slot, ok := houseKeys[msg.String()]
		if !ok || !m.in.Slots[slot].Clickable {
			return m, nil
		}
		return m, m.run("move", func(ctx context.Context) error { return m.ctrl.Move(ctx, slot) })
	}
	return m, nil
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ECEFFF"))
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD678"))
	statusStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#FFD678"))
	pitStyle    = lipgloss.NewStyle().Width(5).Align(lipgloss.Center).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#C8955A"))
	pitOffStyle = pitStyle.BorderForeground(lipgloss.Color("#555555")).Foreground(lipgloss.Color("#777777"))
	storeStyle  = lipgloss.NewStyle().Width(6).Height(4).Align(lipgloss.Center, lipgloss.Center).Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#5E3519"))
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.cat.Text("tui.title", nil, "Oware")))
	b.WriteString("\n")
	b.WriteString(bannerStyle.Render(m.in.Banner))
	b.WriteString("\n\n")
	b.WriteString(m.boardView())
	b.WriteString("\n")
	b.WriteString(m.cat.Text("tui.scores", map[string]string{"Top": m.in.TopScoreText, "Bottom": m.in.BottomScoreText},
		"Top "+m.in.TopScoreText+"  |  Bottom "+m.in.BottomScoreText))
	b.WriteString("\n")
	b.WriteString(m.cat.Text("tui.depth", map[string]int{"Depth": m.depth}, "AI depth: "+strconv.Itoa(m.depth)))
	if m.in.StatusText != "" {
		b.WriteString("   ")
		b.WriteString(statusStyle.Render(m.in.StatusText))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m Model) boardView() string {
	top := make([]string, 0, domain.HousesPerSide)
	for slot := domain.SlotCount - 1; slot >= domain.HousesPerSide; slot-- {
		top = append(top, m.pit(slot))
	}
	bottom := make([]string, 0, domain.HousesPerSide)
	for slot := 0; slot < domain.HousesPerSide; slot++ {
		bottom = append(bottom, m.pit(slot))
	}
	rows := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, top...),
		lipgloss.JoinHorizontal(lipgloss.Top, bottom...),
	)
	return lipgloss.JoinHorizontal(lipgloss.Center,
		storeStyle.Render(m.in.TopScoreText),
		rows,
		storeStyle.Render(m.in.BottomScoreText),
	)
}

func (m Model) pit(slot int) string {
	s := m.in.Slots[slot]
	text := s.Text
	if text == "" {
		text = "·"
	}
	if s.Clickable {
		return pitStyle.Render(text)
	}
	return pitOffStyle.Render(text)
}
