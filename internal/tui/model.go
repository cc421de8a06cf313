package tui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"

	"github.com/hylla/agenda/internal/app"
	"github.com/hylla/agenda/internal/domain"
)

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeEditItem
	modeConfirmDelete
)

// listTop is the first screen row holding an agenda item.
const listTop = 3

// formField describes one editor input.
type formField struct {
	name        string
	label       string
	placeholder string
	limit       int
}

var formFields = []formField{
	{name: app.FieldTitle, label: "title", placeholder: "Opening circle", limit: 120},
	{name: app.FieldActivityType, label: "type", placeholder: "session, break, group_work...", limit: 32},
	{name: app.FieldStartTime, label: "start", placeholder: "09:00", limit: 8},
	{name: app.FieldEndTime, label: "end", placeholder: "09:30", limit: 8},
	{name: app.FieldFacilitatorName, label: "facilitator", placeholder: "optional", limit: 80},
	{name: app.FieldDescription, label: "description", placeholder: "markdown, optional", limit: 2000},
	{name: app.FieldMaterials, label: "materials", placeholder: "comma separated", limit: 500},
	{name: app.FieldNotes, label: "notes", placeholder: "optional", limit: 1000},
}

// Model is the Bubble Tea agenda board for one workshop.
type Model struct {
	store      *app.Store
	drag       *app.DragController
	editor     *app.ItemEditor
	workshopID string

	session        app.Session
	lookupWorkshop WorkshopLookupFunc
	copyText       ClipboardFunc
	details        *detailPane

	ready  bool
	width  int
	height int
	err    error
	status string

	help help.Model
	keys keyMap

	workshop    *domain.Workshop
	items       []domain.AgendaItem
	selected    int
	offset      int
	showDetails bool

	mode          inputMode
	inputs        []textinput.Model
	formFocus     int
	formErrors    map[string]string
	pendingDelete string

	// saving is set while a submit, delete or reorder command runs.
	saving bool
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	items    []domain.AgendaItem
	workshop *domain.Workshop
	err      error
}

// reorderCommittedMsg reports the result of persisting a local reorder.
type reorderCommittedMsg struct {
	focusID string
	err     error
}

// savedMsg reports an editor submit.
type savedMsg struct {
	item domain.AgendaItem
	err  error
}

// deletedMsg reports a delete.
type deletedMsg struct {
	id  string
	err error
}

// NewModel constructs the agenda board over store for workshopID.
func NewModel(store *app.Store, workshopID string, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		store:       store,
		drag:        app.NewDragController(store),
		editor:      app.NewItemEditor(store, domain.TimeRangeReject),
		workshopID:  strings.TrimSpace(workshopID),
		session:     app.NewSession("", "", "", app.Branding{}),
		copyText:    clipboard.WriteAll,
		details:     &detailPane{},
		status:      "loading...",
		help:        h,
		keys:        newKeyMap(),
		showDetails: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(max(0, msg.Width-2))
		m.ensureVisible()
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, app.ErrMutationInFlight) {
				m.status = "save in progress, reload skipped"
				return m, nil
			}
			if len(m.items) > 0 {
				m.status = "reload failed, showing last loaded agenda: " + msg.err.Error()
				return m, nil
			}
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		focusID := m.selectedID()
		m.items = msg.items
		if msg.workshop != nil {
			m.workshop = msg.workshop
		}
		m.focus(focusID)
		if len(m.items) == 0 {
			m.status = "no agenda items yet, press n to add one"
		} else if m.status == "" || strings.HasSuffix(m.status, "loading...") {
			m.status = fmt.Sprintf("loaded %d items", len(m.items))
		}
		return m, nil

	case reorderCommittedMsg:
		m.saving = false
		m.items = m.store.Items()
		m.focus(msg.focusID)
		if msg.err != nil {
			m.status = reorderFailureStatus(msg.err)
			return m, nil
		}
		m.status = "order saved"
		return m, nil

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			var fetchErr *app.FetchError
			if errors.As(msg.err, &fetchErr) {
				// The write went through; only the follow-up load failed.
				m.editor.Close()
				m.closeForm()
				m.status = "saved, but reload failed: " + fetchErr.Err.Error()
				return m, nil
			}
			m.status = "save failed: " + msg.err.Error()
			return m, nil
		}
		m.closeForm()
		m.items = m.store.Items()
		m.focus(msg.item.ID)
		m.status = "saved " + msg.item.Title
		return m, nil

	case deletedMsg:
		m.saving = false
		m.items = m.store.Items()
		m.clampSelection()
		if msg.err != nil {
			m.status = "delete failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "deleted"
		return m, nil

	case tea.KeyPressMsg:
		switch m.mode {
		case modeEditItem:
			return m.handleFormKey(msg)
		case modeConfirmDelete:
			return m.handleConfirmKey(msg)
		default:
			return m.handleNormalModeKey(msg)
		}

	case tea.MouseClickMsg:
		return m.handleMousePress(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	case tea.MouseWheelMsg:
		if m.mode != modeNone {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseWheelUp:
			m.moveSelection(-1)
		case tea.MouseWheelDown:
			m.moveSelection(1)
		}
		return m, nil

	default:
		return m, nil
	}
}

// loadData loads the agenda and, when configured, the workshop header.
func (m Model) loadData() tea.Msg {
	ctx := context.Background()
	if m.workshopID == "" {
		return loadedMsg{err: app.ErrNoWorkshop}
	}
	if err := m.store.Load(ctx, m.workshopID); err != nil {
		return loadedMsg{err: err}
	}
	out := loadedMsg{items: m.store.Items()}
	if m.lookupWorkshop != nil {
		// The header is optional; a lookup failure leaves it blank.
		if w, err := m.lookupWorkshop(ctx, m.workshopID); err == nil {
			out.workshop = &w
		}
	}
	return out
}

// handleNormalModeKey handles board navigation and commands.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.reload):
		if m.busy() {
			return m, nil
		}
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.cancel):
		if m.drag.State() == app.DragDragging {
			m.drag.Cancel()
			m.status = "drag cancelled"
		}
		return m, nil
	}
	if m.err != nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.moveUp):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.moveDown):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.itemUp):
		return m.moveSelectedItem(-1)
	case key.Matches(msg, m.keys.itemDown):
		return m.moveSelectedItem(1)
	case key.Matches(msg, m.keys.details):
		m.showDetails = !m.showDetails
	case key.Matches(msg, m.keys.copyItem):
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		if err := m.copyText(itemSummary(item)); err != nil {
			m.status = "copy failed: " + err.Error()
		} else {
			m.status = "copied " + item.Title
		}
	case key.Matches(msg, m.keys.addItem):
		if !m.requireEditor() || m.busy() {
			return m, nil
		}
		m.editor.OpenNew()
		return m, m.startForm()
	case key.Matches(msg, m.keys.editItem):
		item, ok := m.selectedItem()
		if !ok || !m.requireEditor() || m.busy() {
			return m, nil
		}
		m.editor.OpenEdit(item)
		return m, m.startForm()
	case key.Matches(msg, m.keys.deleteItem):
		item, ok := m.selectedItem()
		if !ok || !m.requireEditor() || m.busy() {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.pendingDelete = item.ID
		m.status = fmt.Sprintf("delete %q? y/n", item.Title)
	}
	return m, nil
}

// handleConfirmKey resolves the delete prompt.
func (m Model) handleConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		id := m.pendingDelete
		m.mode = modeNone
		m.pendingDelete = ""
		if m.busy() {
			return m, nil
		}
		m.saving = true
		m.status = "deleting..."
		store := m.store
		return m, func() tea.Msg {
			return deletedMsg{id: id, err: store.Delete(context.Background(), id)}
		}
	case "n", "N", "esc", "q":
		m.mode = modeNone
		m.pendingDelete = ""
		m.status = "delete cancelled"
	}
	return m, nil
}

// handleFormKey drives the item editor form.
func (m Model) handleFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editor.Close()
		m.closeForm()
		m.status = "edit cancelled"
		return m, nil
	case "tab", "down":
		return m, m.focusFormField(m.formFocus + 1)
	case "shift+tab", "up":
		return m, m.focusFormField(m.formFocus - 1)
	case "ctrl+s":
		return m.submitForm()
	case "enter":
		if m.formFocus == len(m.inputs)-1 {
			return m.submitForm()
		}
		return m, m.focusFormField(m.formFocus + 1)
	}
	var cmd tea.Cmd
	m.inputs[m.formFocus], cmd = m.inputs[m.formFocus].Update(msg)
	return m, cmd
}

// startForm builds inputs from the editor draft and focuses the first one.
func (m *Model) startForm() tea.Cmd {
	values := draftValues(m.editor.Draft)
	m.inputs = make([]textinput.Model, len(formFields))
	for i, f := range formFields {
		m.inputs[i] = newModalInput(f.label+": ", f.placeholder, values[f.name], f.limit)
	}
	m.mode = modeEditItem
	m.formErrors = nil
	m.formFocus = 0
	if _, editing := m.editor.Editing(); editing {
		m.status = "editing item"
	} else {
		m.status = "new item"
	}
	return m.focusFormField(0)
}

// focusFormField moves focus to idx, wrapping around.
func (m *Model) focusFormField(idx int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	idx = wrapIndex(idx, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.formFocus = idx
	return m.inputs[idx].Focus()
}

// submitForm validates locally and saves asynchronously.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	if m.busy() {
		return m, nil
	}
	m.editor.Draft = m.draftFromInputs()
	if _, err := m.editor.Validate(); err != nil {
		m.formErrors = formErrorMap(err)
		m.status = "fix the highlighted fields"
		return m, nil
	}
	m.formErrors = nil
	m.saving = true
	m.status = "saving..."
	editor := m.editor
	return m, func() tea.Msg {
		item, err := editor.Submit(context.Background())
		return savedMsg{item: item, err: err}
	}
}

func (m *Model) closeForm() {
	m.mode = modeNone
	m.inputs = nil
	m.formErrors = nil
	m.formFocus = 0
}

// draftFromInputs reads the form back into a draft.
func (m Model) draftFromInputs() app.ItemDraft {
	values := map[string]string{}
	for i, f := range formFields {
		if i < len(m.inputs) {
			values[f.name] = m.inputs[i].Value()
		}
	}
	return app.ItemDraft{
		Title:           values[app.FieldTitle],
		ActivityType:    values[app.FieldActivityType],
		StartTime:       values[app.FieldStartTime],
		EndTime:         values[app.FieldEndTime],
		FacilitatorName: values[app.FieldFacilitatorName],
		Description:     values[app.FieldDescription],
		Materials:       values[app.FieldMaterials],
		Notes:           values[app.FieldNotes],
	}
}

func draftValues(d app.ItemDraft) map[string]string {
	return map[string]string{
		app.FieldTitle:           d.Title,
		app.FieldActivityType:    d.ActivityType,
		app.FieldStartTime:       d.StartTime,
		app.FieldEndTime:         d.EndTime,
		app.FieldFacilitatorName: d.FacilitatorName,
		app.FieldDescription:     d.Description,
		app.FieldMaterials:       d.Materials,
		app.FieldNotes:           d.Notes,
	}
}

func formErrorMap(err error) map[string]string {
	var form *app.FormError
	if !errors.As(err, &form) {
		return map[string]string{"": err.Error()}
	}
	out := make(map[string]string, len(form.Fields))
	for _, f := range form.Fields {
		out[f.Field] = f.Message
	}
	return out
}

// moveSelectedItem swaps the selected item with its neighbour and commits.
func (m Model) moveSelectedItem(delta int) (tea.Model, tea.Cmd) {
	if !m.requireEditor() || m.busy() {
		return m, nil
	}
	target := m.selected + delta
	if m.selected < 0 || m.selected >= len(m.items) || target < 0 || target >= len(m.items) {
		return m, nil
	}
	return m.applyReorder(m.items[m.selected].ID, m.items[target].ID)
}

// applyReorder moves sourceID into targetID's slot locally and starts the commit.
func (m Model) applyReorder(sourceID, targetID string) (tea.Model, tea.Cmd) {
	items, applied, err := m.store.ApplyReorder(sourceID, targetID)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	if !applied {
		return m, nil
	}
	m.items = items
	m.focus(sourceID)
	m.status = "saving order..."
	cmd := m.commitReorder(sourceID)
	return m, cmd
}

// commitReorder persists the store's pending order.
func (m *Model) commitReorder(focusID string) tea.Cmd {
	m.saving = true
	store := m.store
	return func() tea.Msg {
		return reorderCommittedMsg{focusID: focusID, err: store.CommitReorder(context.Background())}
	}
}

// handleMousePress selects the row under the pointer and starts a drag.
func (m Model) handleMousePress(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone || m.err != nil || msg.Button != tea.MouseLeft {
		return m, nil
	}
	idx, ok := m.rowAt(msg.Y)
	if !ok {
		m.drag.Cancel()
		return m, nil
	}
	m.selected = idx
	if m.session.CanEditAgenda() && !m.saving {
		m.drag.OnDragStart(m.items[idx].ID)
	}
	return m, nil
}

// handleMouseMotion tracks the hovered row while dragging.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if m.drag.State() != app.DragDragging {
		return m, nil
	}
	idx, ok := m.rowAt(msg.Y)
	if !ok {
		m.drag.OnDragOver("")
		return m, nil
	}
	m.drag.OnDragOver(m.items[idx].ID)
	return m, nil
}

// handleMouseRelease drops the dragged row on the row under the pointer.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if m.drag.State() != app.DragDragging {
		return m, nil
	}
	target := ""
	if idx, ok := m.rowAt(msg.Y); ok {
		target = m.items[idx].ID
	}
	if m.busy() {
		m.drag.Cancel()
		return m, nil
	}
	res := m.drag.OnDrop(target)
	if res.Err != nil {
		m.status = res.Err.Error()
		return m, nil
	}
	if !res.Applied {
		return m, nil
	}
	m.items = m.store.Items()
	m.focus(res.SourceID)
	m.status = "saving order..."
	cmd := m.commitReorder(res.SourceID)
	return m, cmd
}

// rowAt maps a screen row to an item index.
func (m Model) rowAt(y int) (int, bool) {
	row := y - listTop
	if row < 0 || row >= m.listRows() {
		return 0, false
	}
	idx := m.offset + row
	if idx < 0 || idx >= len(m.items) {
		return 0, false
	}
	return idx, true
}

// listRows returns how many item rows fit on screen.
func (m Model) listRows() int {
	if m.height <= 0 {
		return len(m.items)
	}
	reserved := listTop + 4
	if m.showDetails {
		reserved += 10
	}
	return max(3, m.height-reserved)
}

func (m *Model) ensureVisible() {
	rows := m.listRows()
	if rows <= 0 {
		m.offset = 0
		return
	}
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+rows {
		m.offset = m.selected - rows + 1
	}
	m.offset = clamp(m.offset, 0, max(0, len(m.items)-rows))
}

func (m *Model) moveSelection(delta int) {
	if len(m.items) == 0 {
		return
	}
	m.selected = clamp(m.selected+delta, 0, len(m.items)-1)
	m.ensureVisible()
}

func (m *Model) clampSelection() {
	m.selected = clamp(m.selected, 0, max(0, len(m.items)-1))
	m.ensureVisible()
}

// focus selects id when present and otherwise keeps the current index in range.
func (m *Model) focus(id string) {
	if idx := domain.IndexOf(m.items, id); id != "" && idx >= 0 {
		m.selected = idx
	}
	m.clampSelection()
}

func (m Model) selectedID() string {
	if item, ok := m.selectedItem(); ok {
		return item.ID
	}
	return ""
}

func (m Model) selectedItem() (domain.AgendaItem, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return domain.AgendaItem{}, false
	}
	return m.items[m.selected], true
}

// busy reports whether a save is still running, setting status when it is.
func (m *Model) busy() bool {
	if !m.saving {
		return false
	}
	m.status = "save in progress"
	return true
}

// requireEditor reports whether the session may change the agenda, setting status when not.
func (m *Model) requireEditor() bool {
	if m.session.CanEditAgenda() {
		return true
	}
	m.status = fmt.Sprintf("%s accounts can view the agenda but not change it", m.session.Role)
	return false
}

func reorderFailureStatus(err error) string {
	var stale *app.StaleStateError
	if errors.As(err, &stale) {
		if stale.Reloaded {
			return "order not saved, reloaded from server"
		}
		return "order not saved, restored last saved order"
	}
	return "order not saved: " + err.Error()
}

// View handles view.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// render builds the full screen as text.
func (m Model) render() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n\npress r to retry • q quit\n"
	}
	if !m.ready {
		return "loading..."
	}

	accent := lipgloss.Color(m.session.Branding.AccentColor)
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	subStyle := lipgloss.NewStyle().Foreground(muted)
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	lines := []string{
		titleStyle.Render(m.session.Branding.ProductName) + "  " + m.workshopTitle(),
		subStyle.Render(m.headerDetails()),
		"",
	}
	lines = append(lines, m.renderRows(accent, muted)...)

	sections := []string{strings.Join(lines, "\n")}
	switch m.mode {
	case modeEditItem:
		sections = append(sections, m.renderForm(accent, muted))
	default:
		if m.showDetails {
			if item, ok := m.selectedItem(); ok {
				sections = append(sections, m.details.view(item, m.width-4))
			}
		}
	}
	sections = append(sections, statusStyle.Render(m.status))

	helpBubble := m.help
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Render(helpBubble.View(m.keys))
	sections = append(sections, helpLine)
	return strings.Join(sections, "\n")
}

func (m Model) workshopTitle() string {
	if m.workshop == nil {
		return m.workshopID
	}
	return m.workshop.Title
}

// headerDetails renders date, location, session and sync state.
func (m Model) headerDetails() string {
	parts := []string{}
	if w := m.workshop; w != nil {
		if !w.Date.IsZero() {
			parts = append(parts, w.Date.Format("Mon 2 Jan 2006"))
		}
		if w.Location != "" {
			parts = append(parts, w.Location)
		}
		if w.PathwayTitle != "" {
			parts = append(parts, w.PathwayTitle)
		}
	}
	parts = append(parts, m.session.Greeting(), fmt.Sprintf("%d items", len(m.items)))
	if state := m.store.SyncState(); state != app.SyncClean {
		parts = append(parts, state.String())
	}
	return strings.Join(parts, " · ")
}

// renderRows renders the visible slice of the agenda.
func (m Model) renderRows(accent, muted color.Color) []string {
	if len(m.items) == 0 {
		return []string{lipgloss.NewStyle().Foreground(muted).Render("(no agenda items)")}
	}
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	draggingStyle := lipgloss.NewStyle().Foreground(muted).Italic(true)
	hoverStyle := lipgloss.NewStyle().Foreground(accent).Underline(true)
	typeStyle := lipgloss.NewStyle().Foreground(muted)

	rows := m.listRows()
	end := min(len(m.items), m.offset+rows)
	out := make([]string, 0, end-m.offset)
	dragging := m.drag.State() == app.DragDragging
	for idx := m.offset; idx < end; idx++ {
		item := m.items[idx]
		marker := "  "
		if idx == m.selected {
			marker = "> "
		}
		title := truncate(item.Title, max(12, m.width-40))
		line := fmt.Sprintf("%s%2d  %s-%s  %s", marker, item.OrderIndex, item.StartTime, item.EndTime, title)
		suffix := "  " + typeStyle.Render(item.ActivityType.Label())
		if item.FacilitatorName != "" {
			suffix += typeStyle.Render(" · " + item.FacilitatorName)
		}
		switch {
		case dragging && item.ID == m.drag.Source():
			line = draggingStyle.Render(line + "  (moving)")
		case dragging && item.ID == m.drag.Hover():
			line = hoverStyle.Render(line)
		case idx == m.selected:
			line = selectedStyle.Render(line)
		}
		out = append(out, line+suffix)
	}
	return out
}

// renderForm renders the editor inputs with per-field errors.
func (m Model) renderForm(accent, muted color.Color) string {
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	heading := "New agenda item"
	if _, editing := m.editor.Editing(); editing {
		heading = "Edit agenda item"
	}
	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(accent).Render(heading)}
	for i, f := range formFields {
		if i >= len(m.inputs) {
			break
		}
		line := m.inputs[i].View()
		if msg, ok := m.formErrors[f.name]; ok {
			line += "  " + errStyle.Render(msg)
		}
		lines = append(lines, line)
	}
	if msg, ok := m.formErrors[""]; ok {
		lines = append(lines, errStyle.Render(msg))
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(muted).Render("tab next • enter on last field or ctrl+s save • esc cancel"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// itemSummary renders one line for the clipboard.
func itemSummary(item domain.AgendaItem) string {
	s := fmt.Sprintf("%s-%s %s (%s)", item.StartTime, item.EndTime, item.Title, item.ActivityType.Label())
	if item.FacilitatorName != "" {
		s += " with " + item.FacilitatorName
	}
	return s
}

// newModalInput constructs modal input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
		in.CursorEnd()
	}
	return in
}

func wrapIndex(idx, total int) int {
	if total <= 0 {
		return 0
	}
	idx %= total
	if idx < 0 {
		idx += total
	}
	return idx
}

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	if limit <= 1 {
		return string(rs[:limit])
	}
	return string(rs[:limit-1]) + "…"
}
