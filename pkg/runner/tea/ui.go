// Package teaui is the interactive operation browser.
package teaui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/tradelog/pkg/controller"
	"tableflip.dev/tradelog/pkg/legform"
	"tableflip.dev/tradelog/pkg/operation"
	"tableflip.dev/tradelog/pkg/viewmodel"
)

type mode int

const (
	modeNormal mode = iota
	modeForm
	modeConfirm
	modeHelp
)

// formStep is the field the add form is prompting for.
type formStep int

const (
	stepUnderlying formStep = iota
	stepLeg
	stepJustification
)

const detailWidth = 48

const normalHelp = "←/→ tabs, ↑/↓ move, a add, d delete, r reload, ? help, q quit"

// operation item for the list
type operationItem struct{ op operation.Operation }

func (it operationItem) Title() string {
	return fmt.Sprintf("#%d %s  %s  (%d legs)", it.op.ID, it.op.Underlying, it.op.Strategy, len(it.op.Legs))
}
func (it operationItem) Description() string { return it.op.EnteredAt.Local().Format("Jan 2 15:04") }
func (it operationItem) FilterValue() string { return it.op.Underlying }

// messages
type viewMsg struct{ view controller.View }
type statusMsg struct {
	text string
	err  error
}

// Model contains UI state
type Model struct {
	ctl   *controller.Controller
	ctx   context.Context
	theme Theme
	mode  mode

	view   controller.View
	opList list.Model

	input   textinput.Model
	step    formStep
	values  controller.FormValues
	lastLeg int

	pendingDelete int64

	status string
	err    error

	termWidth  int
	termHeight int
}

// New creates a UI model driving ctl. Deletes are confirmed inside the UI, so
// ctl should be built with controller.AlwaysConfirm.
func New(ctx context.Context, ctl *controller.Controller) Model {
	d := list.NewDefaultDelegate()
	d.SetSpacing(0)

	l := list.New([]list.Item{}, d, 60, 20)
	l.Title = "Operations"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Prompt = ""

	return Model{
		ctl:    ctl,
		ctx:    ctx,
		theme:  DefaultTheme(),
		mode:   modeNormal,
		opList: l,
		input:  ti,
		status: "loading...",
	}
}

// Init loads initial data
func (m Model) Init() tea.Cmd {
	return m.fetch()
}

func (m Model) fetch() tea.Cmd {
	ctl, ctx := m.ctl, m.ctx
	return func() tea.Msg {
		if err := ctl.FetchAll(ctx); err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{text: "loaded"}
	}
}

func (m Model) selectTab(tab viewmodel.Tab) tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		ctl.SelectTab(tab.Key)
		return statusMsg{text: tab.Label}
	}
}

func (m Model) deleteOperation(id int64) tea.Cmd {
	ctl, ctx := m.ctl, m.ctx
	return func() tea.Msg {
		deleted, err := ctl.RequestDelete(ctx, id)
		if err != nil {
			return statusMsg{err: err}
		}
		if !deleted {
			return statusMsg{text: "delete declined"}
		}
		return statusMsg{text: fmt.Sprintf("operation %d deleted", id)}
	}
}

func (m Model) submit(values controller.FormValues) tea.Cmd {
	ctl, ctx := m.ctl, m.ctx
	return func() tea.Msg {
		if err := ctl.Submit(ctx, values); err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{text: fmt.Sprintf("%s added", values.Underlying)}
	}
}

// Update handles messages and keybindings
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.applySizes()
	case viewMsg:
		m.applyView(msg.view)
	case statusMsg:
		m.status, m.err = msg.text, msg.err
		if msg.err != nil && m.ctl.FormOpen() {
			// back to the legs so the user can fix them
			m.mode = modeForm
			m.step = stepLeg
			m.input.Placeholder = legform.ExprFormat
			cmds = append(cmds, m.input.Focus())
		}
	case tea.KeyPressMsg:
		switch m.mode {
		case modeHelp:
			if key := msg.String(); key == "q" || key == "esc" || key == "?" {
				m.mode = modeNormal
			}
		case modeConfirm:
			switch msg.String() {
			case "y", "Y":
				cmds = append(cmds, m.deleteOperation(m.pendingDelete))
				m.status = fmt.Sprintf("deleting %d...", m.pendingDelete)
				m.mode = modeNormal
			case "n", "N", "esc", "q":
				m.status = "delete cancelled"
				m.mode = modeNormal
			}
		case modeForm:
			cmds = append(cmds, m.updateForm(msg))
		case modeNormal:
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "?":
				m.mode = modeHelp
			case "left", "h":
				if tab, ok := m.adjacentTab(-1); ok {
					cmds = append(cmds, m.selectTab(tab))
				}
			case "right", "l":
				if tab, ok := m.adjacentTab(1); ok {
					cmds = append(cmds, m.selectTab(tab))
				}
			case "r":
				m.status = "reloading..."
				cmds = append(cmds, m.fetch())
			case "a":
				cmds = append(cmds, m.openForm())
			case "d":
				if op, ok := m.selected(); ok {
					m.pendingDelete = op.ID
					m.mode = modeConfirm
				}
			default:
				var cmd tea.Cmd
				m.opList, cmd = m.opList.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) applyView(v controller.View) {
	m.view = v
	items := make([]list.Item, 0, len(v.Operations))
	for _, op := range v.Operations {
		items = append(items, operationItem{op: op})
	}
	idx := m.opList.Index()
	m.opList.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.opList.Select(idx)
	}
}

// adjacentTab returns the tab dir steps from the active one.
func (m *Model) adjacentTab(dir int) (viewmodel.Tab, bool) {
	tabs := m.view.Tabs
	if len(tabs) == 0 {
		return viewmodel.Tab{}, false
	}
	active := 0
	for i, tab := range tabs {
		if tab.Active {
			active = i
		}
	}
	next := active + dir
	if next < 0 || next >= len(tabs) {
		return viewmodel.Tab{}, false
	}
	return tabs[next], true
}

func (m *Model) selected() (operation.Operation, bool) {
	sel := m.opList.SelectedItem()
	if sel == nil {
		return operation.Operation{}, false
	}
	it, ok := sel.(operationItem)
	return it.op, ok
}

func (m *Model) openForm() tea.Cmd {
	m.ctl.OpenNewOperationForm()
	m.values = controller.FormValues{Legs: map[int]legform.SlotInput{}}
	m.lastLeg = legform.FirstSlot
	m.step = stepUnderlying
	m.mode = modeForm
	m.err = nil
	m.input.Reset()
	m.input.Placeholder = "SPY"
	return m.input.Focus()
}

func (m *Model) closeForm(status string) {
	m.ctl.CloseForm()
	m.mode = modeNormal
	m.input.Reset()
	m.input.Blur()
	m.status = status
}

// updateForm walks the form one field at a time: underlying, then legs until
// an empty line, then the justification which submits.
func (m *Model) updateForm(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closeForm("add cancelled")
		return nil
	case "enter":
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}

	value := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	m.err = nil

	switch m.step {
	case stepUnderlying:
		if value == "" {
			m.err = errors.New("underlying is required")
			return nil
		}
		m.values.Underlying = value
		m.step = stepLeg
		m.input.Placeholder = legform.ExprFormat
	case stepLeg:
		switch {
		case value == "" && len(m.values.Legs) > 0:
			m.step = stepJustification
			m.input.Placeholder = "why? (markdown, optional)"
		case value == "":
			m.err = errors.New("at least one leg is required")
		case value == "-":
			m.removeLastLeg()
		default:
			in, err := legform.ParseExpr(value)
			if err != nil {
				m.err = err
				return nil
			}
			if _, used := m.values.Legs[m.lastLeg]; used {
				seq, err := m.ctl.AddLeg()
				if err != nil {
					m.err = err
					return nil
				}
				m.lastLeg = seq
			}
			m.values.Legs[m.lastLeg] = in
		}
	case stepJustification:
		m.values.Justification = value
		m.mode = modeNormal
		m.input.Blur()
		m.status = "saving..."
		return m.submit(m.values)
	}
	return nil
}

func (m *Model) removeLastLeg() {
	if m.lastLeg == legform.FirstSlot {
		delete(m.values.Legs, legform.FirstSlot)
		return
	}
	if err := m.ctl.RemoveLeg(m.lastLeg); err != nil {
		m.err = err
		return
	}
	delete(m.values.Legs, m.lastLeg)
	slots := m.ctl.Slots()
	m.lastLeg = slots[len(slots)-1].Seq
}

// View renders the tab strip, the operation list, the selected operation and
// the footer.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	body := m.opList.View()
	if op, ok := m.selected(); ok {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", m.renderDetail(op))
	}
	b.WriteString(body)

	switch m.mode {
	case modeForm:
		b.WriteString("\n\n")
		b.WriteString(m.renderForm())
	case modeConfirm:
		b.WriteString("\n\n")
		b.WriteString(m.theme.Prompt.Render(fmt.Sprintf("Delete operation %d? (y/n)", m.pendingDelete)))
	case modeHelp:
		b.WriteString("\n\n")
		b.WriteString(m.theme.Help.Italic(true).Render(
			"Keys: ←/→ switch tabs, ↑/↓ move, a add operation, d delete, r reload from server, q quit.\n" +
				"Add form: enter advances; legs use " + legform.ExprFormat + "; empty line ends legs; - removes the last leg; esc cancels."))
	}

	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(m.theme.Error.Render("ERR: " + m.err.Error()))
	} else {
		b.WriteString(m.theme.Status.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render(normalHelp))
	return b.String()
}

func (m Model) renderTabs() string {
	if len(m.view.Tabs) == 0 {
		return m.theme.Status.Render("no operations yet, press a to add one")
	}
	parts := make([]string, 0, len(m.view.Tabs))
	for _, tab := range m.view.Tabs {
		style := m.theme.Tab
		if tab.Active {
			style = m.theme.ActiveTab
		}
		parts = append(parts, style.Render(tab.Label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderDetail(op operation.Operation) string {
	lines := []string{m.theme.Title.Render(fmt.Sprintf("%s %s", op.Underlying, op.Strategy))}
	for _, leg := range op.Legs {
		style := m.theme.Buy
		if leg.Action == operation.Sell {
			style = m.theme.Sell
		}
		lines = append(lines, style.Render(leg.String()))
	}
	if len(op.Images) > 0 {
		lines = append(lines, fmt.Sprintf("%d image(s)", len(op.Images)))
	}
	if j := strings.TrimSpace(op.Justification); j != "" {
		lines = append(lines, "", wordwrap.String(j, detailWidth))
	}
	return m.theme.Panel.Render(strings.Join(lines, "\n"))
}

func (m Model) renderForm() string {
	var prompt string
	switch m.step {
	case stepUnderlying:
		prompt = "Underlying: "
	case stepLeg:
		prompt = fmt.Sprintf("Leg %d: ", len(m.values.Legs)+1)
	case stepJustification:
		prompt = "Justification: "
	}
	lines := []string{m.theme.Title.Render("New operation")}
	if m.values.Underlying != "" {
		lines = append(lines, "Underlying: "+m.values.Underlying)
	}
	for _, slot := range m.ctl.Slots() {
		if in, ok := m.values.Legs[slot.Seq]; ok {
			lines = append(lines, fmt.Sprintf("Leg %d: %s", slot.Seq, in.Expr()))
		}
	}
	lines = append(lines, m.theme.Prompt.Render(prompt)+m.input.View())
	return m.theme.Panel.Render(strings.Join(lines, "\n"))
}

// applySizes recalculates the list size based on the terminal size.
func (m *Model) applySizes() {
	if m.termWidth == 0 || m.termHeight == 0 {
		return
	}
	width := m.termWidth / 2
	if width < 40 {
		width = 40
	}
	height := m.termHeight - 8
	if height < 5 {
		height = 5
	}
	m.opList.SetSize(width, height)
}

// Run launches the UI and blocks until the user quits.
func Run(ctx context.Context, ctl *controller.Controller) error {
	p := tea.NewProgram(New(ctx, ctl), tea.WithAltScreen(), tea.WithContext(ctx))
	ctl.SetRenderer(controller.RenderFunc(func(v controller.View) {
		p.Send(viewMsg{view: v})
	}))
	defer ctl.SetRenderer(nil)
	_, err := p.Run()
	return err
}
