package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"

	walletDomain "github.com/fd1az/whitelist-dapp/business/wallet/domain"
	"github.com/fd1az/whitelist-dapp/business/whitelist/domain"
	"github.com/fd1az/whitelist-dapp/internal/apperror"
	"github.com/fd1az/whitelist-dapp/pkg/ui/components"
)

// Actions are the page operations the keys trigger. They run outside Update.
type Actions interface {
	Press(ctx context.Context) error
	Refresh(ctx context.Context) error
	ClearError()
}

// ReadyMsg hands the started page service to the UI and opens the page.
type ReadyMsg struct {
	Actions Actions
}

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name    string
	Status  string // "pending", "connecting", "connected", "done", "skipped", "failed"
	Message string
}

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome Phase = "welcome"
	PhaseStartup Phase = "startup"
	PhasePage    Phase = "page"
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// maxErrors is how many errors the panel keeps.
const maxErrors = 3

var stepOrder = []string{"config", "ethereum", "wallet", "contract"}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	actions Actions
	ctx     context.Context // cancelled on quit so in-flight calls stop
	cancel  context.CancelFunc

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	status  *components.StatusComponent
	errors  *components.ErrorsComponent

	phase        Phase
	welcomeStart time.Time
	startupTime  time.Time
	startupSteps map[string]*StartupStep

	state      domain.State
	pressing   bool
	refreshing bool

	width    int
	height   int
	quitting bool
}

// New creates a new TUI model for network.
func New(network string) Model {
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorWarning)

	return Model{
		ctx:          ctx,
		cancel:       cancel,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		spinner:      sp,
		status:       components.NewStatusComponent(network),
		errors:       components.NewErrorsComponent(maxErrors),
		phase:        PhaseWelcome,
		welcomeStart: now,
		startupTime:  now,
		startupSteps: map[string]*StartupStep{
			"config":   {Name: "Loading configuration", Status: "pending"},
			"ethereum": {Name: "Connecting to Ethereum", Status: "pending"},
			"wallet":   {Name: "Unlocking wallet", Status: "pending"},
			"contract": {Name: "Checking whitelist contract", Status: "pending"},
		},
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spinner.Tick)
}

// tickCmd returns a command that sends a tick every 100ms for the animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Phase returns the current phase.
func (m Model) Phase() Phase {
	return m.phase
}

// State returns the last page state received.
func (m Model) State() domain.State {
	return m.state
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case TickMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m = m.enterStartup()
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StartupMsg:
		if step, ok := m.startupSteps[msg.Step]; ok {
			step.Status = msg.Status
			step.Message = msg.Message
		}

	case ReadyMsg:
		m.actions = msg.Actions
		m.phase = PhasePage

	case StateMsg:
		m.state = msg.State
		if m.state.WalletConnected {
			m.status.SetAccount(walletDomain.ShortAddress(m.state.Account))
		} else {
			m.status.SetAccount("")
		}

	case BlockMsg:
		m.status.SetBlock(msg.Number, msg.Gas)

	case ErrorMsg:
		if msg.Error != nil {
			m.errors.Add(apperror.UserMessage(msg.Error))
		}

	case actionDoneMsg:
		switch msg.op {
		case "press":
			m.pressing = false
		case "refresh":
			m.refreshing = false
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Always allow quit
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	}

	// During welcome phase, any other key skips to startup
	if m.phase == PhaseWelcome {
		return m.enterStartup(), nil
	}
	if m.phase != PhasePage || m.actions == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Press):
		if m.pressing || !m.state.Action().Pressable() {
			return m, nil
		}
		m.pressing = true
		return m, m.run("press", m.actions.Press)

	case key.Matches(msg, m.keys.Refresh):
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		return m, m.run("refresh", m.actions.Refresh)

	case key.Matches(msg, m.keys.ClearErrors):
		m.errors.Clear()
		actions := m.actions
		return m, func() tea.Msg {
			actions.ClearError()
			return nil
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// run calls fn off the event loop. The service publishes through Send, which
// would block if called from inside Update.
func (m Model) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) enterStartup() Model {
	m.phase = PhaseStartup
	m.startupTime = time.Now()
	if OnStartModules != nil {
		go OnStartModules()
	}
	return m
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		return m.renderStartupScreen()
	}
	return m.renderPage()
}

func (m Model) renderPage() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(" " + domain.Title + " "))
	b.WriteString("\n\n")
	b.WriteString(m.status.View())
	b.WriteString("\n\n")

	var page strings.Builder
	page.WriteString(HeaderStyle.Render(m.state.Headline()))
	page.WriteString("\n\n")
	page.WriteString(m.state.Description())
	page.WriteString("\n\n")

	action := m.state.Action()
	if action == domain.ActionLoading {
		page.WriteString(m.spinner.View() + " " + components.Button(action.Label(), false))
	} else {
		page.WriteString(components.Button(action.Label(), action.Pressable() && !m.pressing))
	}
	if m.state.Loading && m.state.LastTx != (common.Hash{}) {
		page.WriteString("\n\n")
		page.WriteString(MutedValue.Render("tx "))
		page.WriteString(HashStyle.Render(m.state.LastTx.Hex()))
	}

	box := BoxStyle
	if m.width > 4 {
		box = box.Width(m.width - 4)
	}
	b.WriteString(box.Render(page.String()))
	b.WriteString("\n\n")

	if panel := m.errors.View(); panel != "" {
		b.WriteString(panel)
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))
	b.WriteString("\n\n")
	b.WriteString(FooterStyle.Render(domain.Footer))
	return b.String()
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	// Animated dots based on time
	dotCount := int(time.Since(m.welcomeStart).Milliseconds()/300) % 4
	dots := strings.Repeat(".", dotCount)

	var sb strings.Builder
	sb.WriteString("\n\n\n")
	sb.WriteString(LogoStyle.Render(LogoTextStyle.Render("C R Y P T O   D E V S")))
	sb.WriteString("\n\n")
	sb.WriteString(MutedValue.Render("        W H I T E L I S T   D A P P"))
	sb.WriteString("\n\n\n")
	sb.WriteString(StepDoneStyle.Render("        Initializing" + dots))
	sb.WriteString("\n\n")
	sb.WriteString(MutedValue.Render("   Press any key to skip, or wait..."))
	sb.WriteString("\n")
	return sb.String()
}

// renderStartupScreen renders the loading/startup screen.
func (m Model) renderStartupScreen() string {
	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(LogoTextStyle.Render("  " + domain.Title))
	sb.WriteString("\n\n")
	sb.WriteString(StartingStyle.Render("  Starting up..."))
	sb.WriteString("\n\n")

	failed := false
	for _, name := range stepOrder {
		step := m.startupSteps[name]

		var icon, statusText string
		var style lipgloss.Style

		switch step.Status {
		case "connected", "done":
			icon, statusText, style = "✓", "Ready", StepDoneStyle
		case "skipped":
			icon, statusText, style = "–", "Skipped", MutedValue
		case "connecting":
			icon, statusText, style = m.spinner.View(), "Connecting...", StepConnectingStyle
		case "failed":
			icon, statusText, style = "✗", "Failed", StepFailedStyle
			failed = true
		default:
			icon, statusText, style = "○", "Pending", MutedValue
		}

		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			style.Render(icon),
			MutedValue.Render(step.Name),
			style.Render(statusText),
		))
		if step.Message != "" {
			sb.WriteString(MutedValue.Render("      " + step.Message))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	elapsed := time.Since(m.startupTime).Round(time.Second)
	sb.WriteString(MutedValue.Render(fmt.Sprintf("  Elapsed: %s", elapsed)))
	sb.WriteString("\n\n")

	if failed {
		sb.WriteString(StepFailedStyle.Render("  Startup failed. Press q to quit."))
	} else {
		sb.WriteString(MutedValue.Render("  Reading the whitelist contract..."))
	}
	sb.WriteString("\n")
	return sb.String()
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules should start.
// main sets it before running the program.
var OnStartModules func()

// Send sends a message to the running program. It must not be called from Update.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
