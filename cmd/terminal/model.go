package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/oxidecomputer/rfd-pipeline/internal/app"
	"github.com/oxidecomputer/rfd-pipeline/internal/storage"
)

const asciiLogo = `
╔═══════════════════════════════════════════════════════════╗
║                                                             ║
║   ██████╗ ███████╗██████╗     ██████╗ ██╗██████╗ ███████╗  ║
║   ██╔══██╗██╔════╝██╔══██╗    ██╔══██╗██║██╔══██╗██╔════╝  ║
║   ██████╔╝█████╗  ██║  ██║    ██████╔╝██║██████╔╝█████╗    ║
║   ██╔══██╗██╔══╝  ██║  ██║    ██╔═══╝ ██║██╔═══╝ ██╔══╝    ║
║   ██║  ██║██║     ██████╔╝    ██║     ██║██║     ███████╗  ║
║   ╚═╝  ╚═╝╚═╝     ╚═════╝     ╚═╝     ╚═╝╚═╝     ╚══════╝  ║
║                                                             ║
║                 RFD PIPELINE TERMINAL                       ║
║                                                             ║
╚═══════════════════════════════════════════════════════════╝
`

type model struct {
	styles styles
	app    *app.App

	viewport  viewport.Model
	textarea  textarea.Model
	spinner   spinner.Model
	isLoading bool

	history  []string
	showLogo bool

	docs []*storage.DocumentRecord
}

func initialModel(theme ThemeName) *model {
	s := GetTheme(theme)
	ta := textarea.New()
	ta.Placeholder = "Enter a command..."
	ta.Focus()
	ta.Prompt = s.prompt.Render("► ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))

	return &model{
		styles:    s,
		textarea:  ta,
		spinner:   sp,
		isLoading: true,
		showLogo:  true,
		history:   []string{s.ascii.Render(asciiLogo), "", "⚙ CONNECTING TO RFD PIPELINE..."},
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(initializeAppCmd(), m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	m.spinner, spCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m, m.processCommand(input)
		}

	case appInitializedMsg:
		m.isLoading = false
		if msg.err != nil {
			fmt.Fprintf(os.Stderr, "ERROR initializing app: %v\n", msg.err)
			m.appendHistory(m.styles.error.Render(msg.err.Error()))
			return m, nil
		}
		m.app = msg.app
		return m, loadDocsCmd(m.app)

	case docsLoadedMsg:
		if msg.err != nil {
			m.appendHistory(m.styles.error.Render("Could not load documents: " + msg.err.Error()))
		} else {
			m.docs = msg.docs
			m.appendHistory(m.styles.success.Render(fmt.Sprintf("✓ %d RFD(s) tracked", len(m.docs))))
		}
		m.appendHistory("Type /help for commands.")
		return m, nil

	case reconcileCompleteMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendHistory(m.styles.error.Render(fmt.Sprintf("RECONCILE FAILED (RFD %d): %v", msg.number, msg.err)))
		} else {
			m.appendHistory(m.styles.success.Render(fmt.Sprintf("✓ RFD %d reconciled", msg.number)))
		}
		return m, loadDocsCmd(m.app)

	case errorMsg:
		m.isLoading = false
		m.appendHistory(m.styles.error.Render("⚠ " + msg.err.Error()))
		return m, nil

	case tea.WindowSizeMsg:
		m.styles.header.Width(msg.Width - 4)
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 10
		m.textarea.SetWidth(msg.Width - 10)
		m.viewport.SetContent(strings.Join(m.history, "\n"))
	}

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m *model) appendHistory(lines ...string) {
	m.history = append(m.history, "")
	m.history = append(m.history, lines...)
	m.viewport.SetContent(strings.Join(m.history, "\n"))
	m.viewport.GotoBottom()
}

func (m *model) View() string {
	if m.app == nil {
		return fmt.Sprintf("\n  %s CONNECTING...\n\n", m.spinner.View())
	}

	status := m.styles.inactive.Render(fmt.Sprintf("DOCS: %s/%s │ TRACKED: %d", m.app.Cfg.Docs.Owner, m.app.Cfg.Docs.Repo, len(m.docs)))

	var loadingIndicator string
	if m.isLoading {
		loadingIndicator = " " + m.spinner.View() + " " + m.styles.success.Render("WORKING...")
	}

	return m.styles.app.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.styles.viewport.Render(m.viewport.View()),
			"",
			m.styles.footer.Render(
				lipgloss.JoinHorizontal(lipgloss.Left,
					m.textarea.View(),
					loadingIndicator,
				),
			),
			status,
		),
	)
}

func (m *model) processCommand(input string) tea.Cmd {
	m.appendHistory(m.styles.prompt.Render("► ") + input)

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}
	command := parts[0]
	args := parts[1:]

	switch command {
	case "/list", "/ls":
		if len(m.docs) == 0 {
			m.appendHistory(m.styles.inactive.Render("No RFDs are currently tracked."))
			return nil
		}
		var b strings.Builder
		b.WriteString(m.styles.success.Render("TRACKED RFDs:"))
		for _, doc := range m.docs {
			b.WriteString(fmt.Sprintf("\n  - %s %s [%s]", m.styles.prompt.Render(doc.NumberString), doc.Title, doc.State))
		}
		m.appendHistory(b.String())
		return nil

	case "/show":
		if len(args) != 1 {
			m.appendHistory(m.styles.error.Render("USAGE: /show [number]"))
			return nil
		}
		doc := m.findDoc(args[0])
		if doc == nil {
			m.appendHistory(m.styles.error.Render(fmt.Sprintf("RFD %s not found. Use /list to see tracked RFDs.", args[0])))
			return nil
		}
		m.appendHistory(fmt.Sprintf(
			"%s %s\nState:      %s\nAuthors:    %s\nLink:       %s\nRendered:   %s\nSHA:        %s",
			m.styles.prompt.Render(doc.NumberString), doc.Title, doc.State, doc.Authors, doc.Link, doc.RenderedLink, shortSHA(doc.SHA),
		))
		return nil

	case "/cat":
		if len(args) != 1 {
			m.appendHistory(m.styles.error.Render("USAGE: /cat [number]"))
			return nil
		}
		doc := m.findDoc(args[0])
		if doc == nil {
			m.appendHistory(m.styles.error.Render(fmt.Sprintf("RFD %s not found. Use /list to see tracked RFDs.", args[0])))
			return nil
		}
		m.appendHistory(renderDocumentBody(doc.Content))
		return nil

	case "/reconcile":
		if len(args) != 1 {
			m.appendHistory(m.styles.error.Render("USAGE: /reconcile [number]"))
			return nil
		}
		number, err := strconv.Atoi(args[0])
		if err != nil {
			m.appendHistory(m.styles.error.Render(fmt.Sprintf("invalid RFD number %q", args[0])))
			return nil
		}
		m.isLoading = true
		m.appendHistory(m.styles.command.Render(fmt.Sprintf("→ Reconciling RFD %d...", number)))
		return tea.Batch(m.spinner.Tick, reconcileDocCmd(m.app, number))

	case "/help", "/h":
		helpText := m.styles.success.Render("AVAILABLE COMMANDS:") + `

  /list, /ls           List all tracked RFDs.
  /show [number]       Show details for one RFD.
  /cat [number]        Render an RFD's source body in the terminal.
  /reconcile [number]  Manually re-run reconciliation for one RFD.
  /help                Show this help message.
  /exit, /quit         Exit.`
		m.appendHistory(helpText)
		return nil

	case "/exit", "/quit":
		return tea.Quit

	default:
		m.appendHistory(
			m.styles.error.Render(fmt.Sprintf("UNKNOWN COMMAND: %s", command)),
			m.styles.inactive.Render("Type /help for assistance."),
		)
		return nil
	}
}

func (m *model) findDoc(numberOrString string) *storage.DocumentRecord {
	for _, doc := range m.docs {
		if doc.NumberString == numberOrString || strconv.Itoa(doc.Number) == numberOrString {
			return doc
		}
	}
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// renderDocumentBody renders a document's stored source through
// glamour for readable terminal display. Stored AsciiDoc content
// renders imperfectly as Markdown, but headings, lists and emphasis
// still come through legibly, and the fallback to plain text keeps
// /cat usable either way.
func renderDocumentBody(content string) string {
	out, err := glamour.Render(content, "dark")
	if err != nil {
		return content
	}
	return out
}
