package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/cell-commander/pkg/engine"
	"github.com/jwebster45206/cell-commander/pkg/state"
	"github.com/jwebster45206/cell-commander/pkg/story"
)

const PlaceHolderText = "Enter to continue, or type a command (/help)"

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	engine       *engine.Engine
	catalog      *story.Catalog
	view         engine.View
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	notice       string
	busy         bool

	transcript []entry
	lastLine   string
	lastScene  story.Scene

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state, shown while the death and video animations run
	animating    bool
	progressTick int
}

// entry is one transcript row.
type entry struct {
	speaker string
	text    string
	header  bool // scene title
}

// signalMsg carries an engine signal into the update loop.
type signalMsg engine.Signal

type intentDoneMsg struct {
	intent engine.Intent
	err    error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")). // green
			Italic(true)

	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")). // teal
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(e *engine.Engine) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	m := ConsoleUI{
		engine:       e,
		catalog:      e.Catalog(),
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
	}
	m.refresh()
	return m
}

// refresh pulls a new view from the engine and records the line the player
// has just reached.
func (m *ConsoleUI) refresh() {
	m.view = m.engine.View()
	v := m.view
	if v.State.CurrentScene != m.lastScene {
		m.lastScene = v.State.CurrentScene
		m.transcript = append(m.transcript, entry{text: v.SceneName, header: true})
	}
	if v.Line != nil {
		key := fmt.Sprintf("%s/%d/%s", v.State.CurrentScene, v.LineIndex, v.Line.ID)
		if key != m.lastLine {
			m.lastLine = key
			m.transcript = append(m.transcript, entry{speaker: v.SpeakerName, text: v.Line.Text})
		}
	}
}

func (m ConsoleUI) animationRunning() bool {
	return m.view.UI.IsDying || (m.view.UI.VideoPhase >= 1 && m.view.UI.VideoPhase <= 4)
}

func (m *ConsoleUI) layout() {
	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

// writeChatContent builds the transcript and the open overlays for the
// current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding
	if chatWidth < 10 {
		chatWidth = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("CELL COMMANDER") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")

	for _, e := range m.transcript {
		switch {
		case e.header:
			content.WriteString(titleStyle.Render("【"+e.text+"】") + "\n\n")
		case e.speaker == "":
			content.WriteString(systemStyle.Render(wordwrap.String(e.text, chatWidth)) + "\n\n")
		default:
			prefix := e.speaker + ": "
			wrapped := wordwrap.String(e.text, chatWidth-lipgloss.Width(prefix))
			content.WriteString(speakerStyle.Render(prefix) + wrapped + "\n\n")
		}
	}

	if m.view.ShowArrow {
		content.WriteString(promptStyle.Render("▼") + "\n\n")
	}
	if overlay := renderOverlay(m.view, m.catalog, chatWidth-4); overlay != "" {
		content.WriteString(overlayStyle.Render(overlay) + "\n\n")
	}
	if m.animating {
		content.WriteString(m.renderProgressBar() + "\n\n")
	}
	if m.notice != "" {
		content.WriteString(loadingStyle.Render(wordwrap.String(m.notice, chatWidth)) + "\n\n")
	}
	if m.err != nil {
		content.WriteString(errorStyle.Render(wordwrap.String("✗ "+m.err.Error(), chatWidth)) + "\n\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

// renderOverlay draws whatever panels the UI state has open.
func renderOverlay(v engine.View, cat *story.Catalog, width int) string {
	var b strings.Builder
	ui := v.UI

	if ui.ShowMap {
		b.WriteString(titleStyle.Render("地图") + "\n")
		for _, node := range story.MapNodes {
			mark := "🔒"
			if node.AlwaysReachable() || v.State.IsUnlocked(node) {
				mark = "  "
			}
			fmt.Fprintf(&b, "%s %s (go %s)\n", mark, node.DisplayName(), strings.ToLower(string(node)))
		}
	}
	if ui.ShowPhone {
		b.WriteString(titleStyle.Render("通讯录") + "\n")
		for _, id := range v.PhoneContacts {
			name := string(id)
			if ch, ok := cat.Character(id); ok {
				name = ch.Name
			}
			fmt.Fprintf(&b, "• %s (call %s)\n", name, strings.ToLower(string(id)))
		}
	}
	if ui.ShowWeaponSelect {
		b.WriteString(titleStyle.Render("选择武器") + "\n")
		for _, w := range []engine.Weapon{engine.WeaponAntibody, engine.WeaponNet, engine.WeaponDrill} {
			fmt.Fprintf(&b, "• weapon %s\n", strings.ToLower(string(w)))
		}
	}
	if ui.ShowShop {
		fmt.Fprintf(&b, "%s  %d pts\n", titleStyle.Render("淋巴结商店"), v.State.Points)
		for _, id := range cat.ShopItems {
			it, ok := cat.Item(id)
			if !ok {
				continue
			}
			owned := ""
			if v.State.Owns(id) {
				owned = " ✓"
			}
			fmt.Fprintf(&b, "%s %s %d (buy %s)%s\n", it.Icon, it.Name, it.Price, id, owned)
		}
	}
	if ui.ShowQuizModal && v.Quiz != nil {
		b.WriteString(titleStyle.Render(wordwrap.String(v.Quiz.Question, width)) + "\n")
		for i, opt := range v.Quiz.Options {
			fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
		}
		b.WriteString(promptStyle.Render("answer <n>") + "\n")
	}
	if ui.ShowThymusGame {
		b.WriteString(titleStyle.Render("胸腺填空") + "\n")
		if ui.ThymusInput != "" {
			fmt.Fprintf(&b, "> %s\n", ui.ThymusInput)
		}
		b.WriteString(promptStyle.Render("blank <answer>") + "\n")
	}
	if ui.ShowTasks {
		b.WriteString(titleStyle.Render("任务") + "\n")
		b.WriteString(renderTasks(v.Tasks))
	}
	if ui.ShowInventory {
		if ui.InventoryTab == state.TabDex {
			b.WriteString(titleStyle.Render("图鉴") + "\n")
			for _, ch := range cat.Characters() {
				fmt.Fprintf(&b, "• %s (bio %s)\n", ch.Name, strings.ToLower(string(ch.ID)))
			}
		} else {
			b.WriteString(titleStyle.Render("背包") + "\n")
			for _, it := range v.State.Inventory {
				fmt.Fprintf(&b, "%s %s (item %s)\n", it.Icon, it.Name, it.ID)
			}
		}
		if v.SelectedItem != nil {
			b.WriteString("\n" + wordwrap.String(v.SelectedItem.Description, width) + "\n")
		}
	}
	if v.DiaryPage != nil {
		fmt.Fprintf(&b, "%s  %d/%d\n", titleStyle.Render(v.DiaryPage.Title), ui.DiaryPage+1, len(cat.Diary()))
		b.WriteString(wordwrap.String(v.DiaryPage.Content, width) + "\n")
	}
	if v.SelectedBio != nil {
		b.WriteString(titleStyle.Render(v.SelectedBio.Name) + "\n")
		b.WriteString(wordwrap.String(v.SelectedBio.Bio, width) + "\n")
	}
	if ui.VideoPhase > 0 {
		fmt.Fprintf(&b, "%s %d/4\n", titleStyle.Render("📼 抗原呈递"), min(ui.VideoPhase, 4))
		if ui.VideoPhase > 4 {
			b.WriteString(promptStyle.Render("skip") + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderTasks(tasks []engine.Task) string {
	var b strings.Builder
	if len(tasks) == 0 {
		b.WriteString("None\n")
	}
	for _, t := range tasks {
		box := "[ ]"
		if t.Done {
			box = "[x]"
		}
		fmt.Fprintf(&b, "%s %s\n", box, t.Text)
	}
	return b.String()
}

func writeMetadata(v engine.View, cat *story.Catalog) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	content.WriteString("Scene:\n")
	content.WriteString(v.SceneName + "\n\n")

	content.WriteString("HP:\n")
	hp := max(v.State.HP, 0)
	content.WriteString(strings.Repeat("♥", hp) + strings.Repeat("♡", max(v.State.MaxHP-hp, 0)))
	content.WriteString(fmt.Sprintf(" %d/%d\n\n", v.State.HP, v.State.MaxHP))

	content.WriteString("Points:\n")
	content.WriteString(fmt.Sprintf("%d\n\n", v.State.Points))

	if v.State.Flags.BattlePhase != state.BattleNone {
		content.WriteString("Battle:\n")
		content.WriteString(string(v.State.Flags.BattlePhase) + "\n\n")
	}

	content.WriteString("Tasks:\n")
	content.WriteString(renderTasks(v.Tasks) + "\n")

	content.WriteString("Contacts:\n")
	for _, id := range v.State.Contacts {
		name := string(id)
		if ch, ok := cat.Character(id); ok {
			name = ch.Name
		}
		content.WriteString("• " + name + "\n")
	}
	if v.PhoneRinging {
		content.WriteString(loadingStyle.Render("📱 ringing") + "\n")
	}
	content.WriteString("\n")

	content.WriteString("Items:\n")
	if len(v.State.Inventory) == 0 {
		content.WriteString("None\n")
	}
	for _, it := range v.State.Inventory {
		content.WriteString(it.Icon + " " + it.Name + "\n")
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Next\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /copy: Copy view\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func (m *ConsoleUI) redraw() {
	if !m.ready {
		return
	}
	m.writeChatContent()
	m.metaViewport.SetContent(writeMetadata(m.view, m.catalog))
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.redraw()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			m.err = nil
			m.notice = ""

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			in, err := parseCommand(input, m.view, m.catalog)
			if err != nil {
				m.err = err
				m.redraw()
				return m, nil
			}
			m.busy = true
			return m, m.apply(in)
		}

	case intentDoneMsg:
		m.busy = false
		if msg.err != nil && !errors.Is(msg.err, engine.ErrGated) {
			m.err = msg.err
		}
		if errors.Is(msg.err, engine.ErrGated) {
			m.notice = gateHint(m.view)
		}
		m.refresh()
		m.redraw()
		return m, m.startAnimation()

	case signalMsg:
		m.refresh()
		if msg.Type == engine.SignalShake {
			m.notice = "💥"
		}
		m.redraw()
		return m, m.startAnimation()

	case progressTickMsg:
		if !m.animationRunning() {
			m.animating = false
			m.redraw()
			return m, nil
		}
		m.progressTick++
		m.redraw()
		return m, progressTick()
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// apply runs the intent off the update loop; the engine notifier sends
// signals back through the program while it runs.
func (m ConsoleUI) apply(in engine.Intent) tea.Cmd {
	e := m.engine
	return func() tea.Msg {
		return intentDoneMsg{intent: in, err: e.Apply(in)}
	}
}

func (m *ConsoleUI) startAnimation() tea.Cmd {
	if m.animating || !m.animationRunning() {
		return nil
	}
	m.animating = true
	m.progressTick = 0
	return progressTick()
}

// gateHint tells the player what the current line is waiting for.
func gateHint(v engine.View) string {
	if v.Line == nil {
		return ""
	}
	switch v.Line.Trigger {
	case story.TriggerMapOpen:
		return "Open the map to continue (map)"
	case story.TriggerPhoneCall:
		return "Answer the phone to continue (phone)"
	}
	return ""
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		m.notice = helpText
	case "/copy":
		data, err := json.MarshalIndent(m.view, "", "  ")
		if err != nil {
			m.err = fmt.Errorf("failed to marshal view: %w", err)
			break
		}
		if err := clipboard.WriteAll(string(data)); err != nil {
			m.err = fmt.Errorf("failed to copy view: %w", err)
			break
		}
		m.notice = "View copied to clipboard"
	case "/quit":
		m.showQuitModal = true
	default:
		m.err = fmt.Errorf("unknown command %q", cmd)
	}

	m.redraw()
	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case signalMsg:
		m.refresh()

	case intentDoneMsg:
		m.busy = false
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.redraw()
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Progress is not saved in the console. Quit anyway?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	style := chatPanelStyle
	if m.view.UI.Shake {
		style = style.PaddingLeft(5)
	}

	chatPanel := style.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for the timed scenes
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
