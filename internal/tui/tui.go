package tui

import (
	"fmt"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
	"go.uber.org/zap"

	"github.com/Joseda-hg/tasktracker/internal/model"
	"github.com/Joseda-hg/tasktracker/internal/tasks"
)

const (
	viewHeader = "header"
	viewFooter = "footer"
	viewTasks  = "tasks"
	viewDetail = "detail"
	viewSearch = "search"
	viewForm   = "form"
	viewHelp   = "help"
)

type Options struct {
	DataPath   string
	DateLayout string
	Logger     *zap.Logger
}

type UI struct {
	manager *tasks.Manager
	opts    Options
	logger  *zap.Logger
	gui     *gocui.Gui

	mode     listMode
	query    string
	visible  []*model.Task
	selected int

	form         *formState
	formEditor   *formEditor
	searchActive bool
	helpActive   bool
	status       string

	// loadErr holds the last failed reload. Edits are refused until the file
	// reads cleanly again so they cannot overwrite it.
	loadErr error
}

type formState struct {
	taskID int
	fields []formField
	index  int
}

type formEditor struct {
	ui *UI
}

// Run opens the terminal UI over manager. Every change is written to
// opts.DataPath immediately, and the file is reloaded when it changes on disk.
func Run(manager *tasks.Manager, opts Options) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(manager, opts)
	ui.gui = gui
	ui.formEditor = &formEditor{ui: ui}

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}

	watcher, err := watchFile(opts.DataPath, ui.logger, func() {
		gui.Update(func(*gocui.Gui) error {
			return ui.reloadFromDisk()
		})
	})
	if err != nil {
		ui.logger.Warn("file watching disabled", zap.Error(err))
	} else {
		defer watcher.Close()
	}

	if err := gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

func newUI(manager *tasks.Manager, opts Options) *UI {
	if opts.DateLayout == "" {
		opts.DateLayout = "2006-01-02"
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ui := &UI{
		manager: manager,
		opts:    opts,
		logger:  logger,
	}
	ui.formEditor = &formEditor{ui: ui}
	ui.refresh()
	return ui
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	bindings := []struct {
		view    string
		key     interface{}
		handler func(*gocui.Gui, *gocui.View) error
	}{
		{"", gocui.KeyCtrlC, u.quit},
		{"", 'q', u.quit},
		{"", 'r', u.reload},
		{"", 'a', u.addTask},
		{"", 'e', u.editTask},
		{"", 'd', u.deleteTask},
		{"", 'x', u.toggleDone},
		{"", 'f', u.cycleMode},
		{"", '/', u.startSearch},
		{"", '?', u.toggleHelp},
		{viewTasks, gocui.KeyArrowDown, u.moveDown},
		{viewTasks, 'j', u.moveDown},
		{viewTasks, gocui.KeyArrowUp, u.moveUp},
		{viewTasks, 'k', u.moveUp},
		{viewTasks, gocui.KeyEnter, u.editTask},
		{viewSearch, gocui.KeyEnter, u.submitSearch},
		{viewSearch, gocui.KeyEsc, u.cancelSearch},
		{viewForm, gocui.KeyEnter, u.submitFormNow},
		{viewForm, gocui.KeyTab, u.nextFormField},
		{viewForm, gocui.KeyBacktab, u.prevFormField},
		{viewForm, gocui.KeyArrowDown, u.nextFormField},
		{viewForm, gocui.KeyArrowUp, u.prevFormField},
		{viewForm, gocui.KeyEsc, u.cancelForm},
		{viewHelp, gocui.KeyEsc, u.closeHelp},
		{viewHelp, '?', u.closeHelp},
	}
	for _, b := range bindings {
		if err := gui.SetKeybinding(b.view, b.key, gocui.ModNone, b.handler); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 2, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY0 := max(maxY-4, 3)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, maxY-1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	u.renderFooter(footerView)

	bodyTop := 2
	bodyBottom := footerY0 - 1
	if bodyBottom <= bodyTop {
		return nil
	}
	split := max(maxX*3/5, 20)

	tasksView, err := gui.SetView(viewTasks, 0, bodyTop, split-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		_, _ = gui.SetCurrentView(viewTasks)
	}
	tasksView.Title = fmt.Sprintf("Tasks (%s)", u.mode)
	applyViewStyle(tasksView, !u.inputActive())
	u.renderTaskList(tasksView)

	detailView, err := gui.SetView(viewDetail, split, bodyTop, maxX-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	detailView.Title = "Detail"
	detailView.Wrap = true
	applyViewStyle(detailView, false)
	u.renderDetail(detailView)

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	}
	if u.searchActive {
		if err := u.showSearch(gui); err != nil {
			return err
		}
	}
	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	query := u.query
	if query == "" {
		query = "type / to search"
	}
	all := u.manager.List()
	fmt.Fprintf(view, "Search: %s | Showing: %s | %d tasks, %d done",
		query, u.mode, len(all), countCompleted(all))
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	fmt.Fprintln(view, "a add | e edit | d delete | x toggle done | f filter | / search | r reload | ? help | q quit")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderTaskList(view *gocui.View) {
	view.Clear()
	if len(u.visible) == 0 {
		fmt.Fprintln(view, "  no tasks")
		return
	}
	for i, task := range u.visible {
		prefix := " "
		if i == u.selected {
			prefix = ">"
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatTaskSummary(task, u.opts.DateLayout))
	}
	view.SetCursor(0, u.selected)
}

func (u *UI) renderDetail(view *gocui.View) {
	view.Clear()
	if task := u.selectedTask(); task != nil {
		fmt.Fprint(view, formatTaskDetail(task, u.opts.DateLayout))
	}
}

// refresh recomputes the visible list from the manager and clamps the selection.
func (u *UI) refresh() {
	u.visible = u.manager.Filter(model.Filter{Query: u.query, Completed: u.mode.completed()})
	if u.selected >= len(u.visible) {
		u.selected = max(len(u.visible)-1, 0)
	}
}

func (u *UI) selectedTask() *model.Task {
	if u.selected < 0 || u.selected >= len(u.visible) {
		return nil
	}
	return u.visible[u.selected]
}

// persist saves the manager and reports the outcome in the status line.
func (u *UI) persist(message string) {
	if u.readOnly() {
		return
	}
	if err := u.manager.Save(u.opts.DataPath); err != nil {
		u.logger.Error("save failed", zap.String("path", u.opts.DataPath), zap.Error(err))
		u.status = "save failed: " + err.Error()
		return
	}
	u.status = message
}

func (u *UI) reloadFromDisk() error {
	if err := u.manager.Load(u.opts.DataPath); err != nil {
		u.logger.Warn("reload failed", zap.String("path", u.opts.DataPath), zap.Error(err))
		u.loadErr = err
		u.status = "read-only until the task file is fixed: " + err.Error()
		return nil
	}
	u.loadErr = nil
	u.refresh()
	return nil
}

// readOnly reports whether edits are blocked by a failed reload.
func (u *UI) readOnly() bool {
	if u.loadErr == nil {
		return false
	}
	u.status = "read-only until the task file is fixed: " + u.loadErr.Error()
	return true
}

func (u *UI) reload(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.status = ""
	return u.reloadFromDisk()
}

func (u *UI) moveDown(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.selected < len(u.visible)-1 {
		u.selected++
	}
	return nil
}

func (u *UI) moveUp(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.selected > 0 {
		u.selected--
	}
	return nil
}

func (u *UI) cycleMode(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.mode = u.mode.next()
	u.selected = 0
	u.refresh()
	return nil
}

func (u *UI) startSearch(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.searchActive = true
	return nil
}

func (u *UI) showSearch(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(40, maxX/3)
	x0 := (maxX - width) / 2
	y0 := maxY/2 - 1

	view, err := gui.SetView(viewSearch, x0, y0, x0+width, y0+2, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Search"
		view.Clear()
		fmt.Fprint(view, u.query)
	}
	view.Editable = true
	view.Editor = gocui.DefaultEditor
	_, _ = gui.SetCurrentView(viewSearch)
	return nil
}

func (u *UI) submitSearch(gui *gocui.Gui, view *gocui.View) error {
	if view != nil {
		u.applySearch(view.Buffer())
	}
	u.searchActive = false
	u.closeOverlay(gui, viewSearch)
	return nil
}

func (u *UI) applySearch(query string) {
	u.query = strings.TrimSpace(query)
	u.selected = 0
	u.status = ""
	u.refresh()
}

func (u *UI) cancelSearch(gui *gocui.Gui, _ *gocui.View) error {
	u.searchActive = false
	u.closeOverlay(gui, viewSearch)
	return nil
}

func (u *UI) addTask(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.readOnly() {
		return nil
	}
	u.form = &formState{fields: buildFormFields(nil, u.opts.DateLayout)}
	return nil
}

func (u *UI) editTask(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.readOnly() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	u.form = &formState{taskID: selected.ID(), fields: buildFormFields(selected, u.opts.DateLayout)}
	return nil
}

func (u *UI) showForm(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 4
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if u.form.taskID != 0 {
		view.Title = fmt.Sprintf("Edit Task #%d", u.form.taskID)
	} else {
		view.Title = "New Task"
	}
	view.Editable = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

func (u *UI) submitFormNow(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.readOnly() {
		return nil
	}

	var message string
	if u.form.taskID == 0 {
		task, err := u.createFromForm()
		if err != nil {
			u.status = err.Error()
			return nil
		}
		message = fmt.Sprintf("added #%d", task.ID())
	} else {
		if err := u.updateFromForm(); err != nil {
			u.status = err.Error()
			return nil
		}
		message = fmt.Sprintf("updated #%d", u.form.taskID)
	}

	u.form = nil
	u.closeOverlay(gui, viewForm)
	u.refresh()
	u.persist(message)
	return nil
}

func (u *UI) createFromForm() (*model.Task, error) {
	fields := u.form.fields
	dueAt, err := parseDue(fields[fieldDue].Value, u.opts.DateLayout)
	if err != nil {
		return nil, err
	}
	return u.manager.Create(
		strings.TrimSpace(fields[fieldTitle].Value),
		strings.TrimSpace(fields[fieldDescription].Value),
		model.FormatTimestamp(dueAt),
	)
}

func (u *UI) updateFromForm() error {
	task, err := u.manager.Get(u.form.taskID)
	if err != nil {
		return err
	}
	changes, err := formChanges(task, u.form.fields, u.opts.DateLayout)
	if err != nil {
		return err
	}
	for _, change := range changes {
		if _, err := u.manager.Apply(task.ID(), change); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	u.form = nil
	u.closeOverlay(gui, viewForm)
	return nil
}

func (u *UI) nextFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, field.Value)
	}
	field := u.form.fields[u.form.index]
	cursorX := len([]rune(field.Label)) + len([]rune(field.Value)) + 4
	view.SetCursor(cursorX, u.form.index)
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil {
		return false
	}
	field := &ui.form.fields[ui.form.index]

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}

	ui.renderForm(view)
	return true
}

func (u *UI) deleteTask(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.readOnly() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	if _, err := u.manager.Delete(selected.ID()); err != nil {
		u.status = err.Error()
		return nil
	}
	u.refresh()
	u.persist(fmt.Sprintf("deleted #%d", selected.ID()))
	return nil
}

func (u *UI) toggleDone(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.readOnly() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	if _, err := u.manager.Apply(selected.ID(), tasks.CompletedChange(!selected.Completed())); err != nil {
		u.status = err.Error()
		return nil
	}
	u.refresh()
	u.persist(fmt.Sprintf("toggled #%d", selected.ID()))
	return nil
}

func (u *UI) toggleHelp(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() && !u.helpActive {
		return nil
	}
	u.helpActive = !u.helpActive
	if !u.helpActive {
		u.closeOverlay(gui, viewHelp)
	}
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	u.closeOverlay(gui, viewHelp)
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	text := helpText()
	width := min(maxX-2, 60)
	height := min(maxY-2, strings.Count(text, "\n")+2)
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	view.Title = "Help"
	view.Wrap = true
	view.Clear()
	fmt.Fprint(view, text)
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

// closeOverlay drops a popup view and gives focus back to the task list.
func (u *UI) closeOverlay(gui *gocui.Gui, name string) {
	if gui == nil {
		return
	}
	_ = gui.DeleteView(name)
	_, _ = gui.SetCurrentView(viewTasks)
}

func (u *UI) inputActive() bool {
	return u.searchActive || u.form != nil || u.helpActive
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	if u.form != nil || u.searchActive {
		return nil
	}
	return gocui.ErrQuit
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  j/k or arrows move selection",
		"  f cycle filter (all/pending/done)",
		"  / search title and description",
		"",
		"Actions:",
		"  a add task | e or enter edit task | d delete task",
		"  x toggle completed",
		"",
		"Form:",
		"  tab/arrows change field | enter save | esc cancel | ctrl-u clear field",
		"",
		"Other:",
		"  r reload from disk | ? help | q quit",
	}, "\n")
}

func applyViewStyle(view *gocui.View, focused bool) {
	view.Frame = true
	view.Highlight = focused
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
		view.TitleColor = gocui.ColorDefault
	}
}
