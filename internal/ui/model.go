package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"farmdash/internal/config"
	"farmdash/internal/farm"
	"farmdash/internal/inventory"
)

type pane int

const (
	cropsPane pane = iota
	ordersPane
)

type Model struct {
	cfg      config.Config
	svc      *inventory.Service
	dispatch *inventory.Dispatcher

	// events carries store changes from other goroutines into Update.
	// settled holds at most one pending search signal; it is separate so a
	// burst of store changes can never crowd it out.
	events  chan tea.Msg
	settled chan struct{}
	search  *inventory.Debouncer

	styles  styles
	keys    keyMap
	help    help.Model
	spinner spinner.Model

	width  int
	height int

	focus    pane
	crops    []farm.Crop
	orders   []farm.Order
	cropSel  int
	orderSel int
	cropErr  error
	orderErr error

	searchInput  textinput.Model
	searchActive bool
	query        string
	statusFilter inventory.StatusFilter
	sortKey      inventory.SortKey

	formOpen bool
	form     cropForm

	confirmOpen bool
	confirm     confirmModal

	activityOpen bool
	activity     activityModel

	loaded      bool
	initErr     error
	pending     int
	serverLabel string
	lastRefresh time.Time
	statusLine  string
}

type storeChangedMsg struct{}

type searchSettledMsg struct{}

type actionDoneMsg struct {
	action inventory.Action
	label  string
	err    error
}

func NewModel(cfg config.Config, svc *inventory.Service, serverLabel string) Model {
	h := help.New()
	h.ShowAll = false

	ti := textinput.New()
	ti.Placeholder = "search crops and orders…"
	ti.Prompt = "/ "
	ti.CharLimit = 128
	ti.Width = 28

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	events := make(chan tea.Msg, 16)
	svc.Store().OnChange(func() {
		select {
		case events <- storeChangedMsg{}:
		default:
		}
	})
	settled := make(chan struct{}, 1)
	debounce := inventory.NewDebouncer(cfg.UI.SearchDebounce, func() {
		select {
		case settled <- struct{}{}:
		default:
			// One is already pending and reads the latest input.
		}
	})

	st := newStyles()
	return Model{
		cfg:          cfg,
		svc:          svc,
		dispatch:     svc.Dispatcher(),
		events:       events,
		settled:      settled,
		search:       debounce,
		styles:       st,
		keys:         newKeyMap(),
		help:         h,
		spinner:      sp,
		searchInput:  ti,
		statusFilter: inventory.FilterAll,
		sortKey:      inventory.SortNone,
		activity:     newActivityModel(st),
		serverLabel:  serverLabel,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.run(inventory.ActionReload, inventory.Request{}, "load"), m.waitForEvent(), m.spinner.Tick)
}

func (m Model) waitForEvent() tea.Cmd {
	events, settled := m.events, m.settled
	return func() tea.Msg {
		select {
		case msg := <-events:
			return msg
		case <-settled:
			return searchSettledMsg{}
		}
	}
}

// run dispatches an action off the UI goroutine. The store reports its own
// changes through events; the returned message only carries the outcome.
func (m *Model) run(a inventory.Action, req inventory.Request, label string) tea.Cmd {
	m.pending++
	d := m.dispatch
	return func() tea.Msg {
		err := d.Dispatch(context.Background(), a, req)
		return actionDoneMsg{action: a, label: label, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.activity.setSize(msg.Width, max(0, msg.Height-2))
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case storeChangedMsg:
		m.reproject()
		return m, m.waitForEvent()
	case searchSettledMsg:
		m.query = m.searchInput.Value()
		m.reproject()
		return m, m.waitForEvent()
	case actionDoneMsg:
		return m.handleDone(msg)
	case tea.KeyMsg:
		if m.formOpen {
			return m.updateForm(msg)
		}
		if m.confirmOpen {
			return m.updateConfirm(msg)
		}
		if m.activityOpen {
			if key.Matches(msg, m.keys.Clear) || key.Matches(msg, m.keys.Activity) {
				m.activityOpen = false
				return m, nil
			}
			var cmd tea.Cmd
			m.activity, cmd = m.activity.Update(msg)
			return m, cmd
		}
		if m.searchActive {
			return m.updateSearch(msg)
		}
		return m.updateMain(msg)
	}
	return m, nil
}

func (m Model) handleDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	if m.pending > 0 {
		m.pending--
	}
	m.activity.add(activityEntry{at: time.Now(), label: msg.label, err: msg.err})

	switch msg.action {
	case inventory.ActionReload:
		if msg.err != nil {
			if !m.loaded {
				m.initErr = msg.err
			}
			m.statusLine = "reload failed"
			return m, nil
		}
		m.loaded = true
		m.initErr = nil
		m.lastRefresh = time.Now().UTC()
	case inventory.ActionCreateCrop, inventory.ActionEditCrop:
		if m.formOpen {
			m.form.pending = false
			if msg.err != nil {
				m.form.err = userError(msg.err)
				return m, nil
			}
			m.formOpen = false
			m.form = cropForm{}
		}
	case inventory.ActionImportSample:
		if msg.err == nil {
			m.lastRefresh = time.Now().UTC()
		}
	}

	m.reproject()
	if msg.err != nil {
		m.statusLine = msg.label + ": " + userError(msg.err).Error()
	} else {
		m.statusLine = msg.label + " ✓"
	}
	return m, nil
}

// userError turns gateway failures into a retry hint; other errors (bad
// input, missing crops) are already meant for the user.
func userError(err error) error {
	var ge *farm.GatewayError
	if errors.As(err, &ge) {
		return errors.New("server request failed, try again")
	}
	return err
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.search.Cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.statusLine = "reloading…"
		cmd := m.run(inventory.ActionReload, inventory.Request{}, "reload")
		return m, cmd
	case key.Matches(msg, m.keys.SwitchPane):
		if m.focus == cropsPane {
			m.focus = ordersPane
		} else {
			m.focus = cropsPane
		}
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.focus == cropsPane && m.cropSel > 0 {
			m.cropSel--
		} else if m.focus == ordersPane && m.orderSel > 0 {
			m.orderSel--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.focus == cropsPane && m.cropSel < len(m.crops)-1 {
			m.cropSel++
		} else if m.focus == ordersPane && m.orderSel < len(m.orders)-1 {
			m.orderSel++
		}
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.searchActive = true
		cmd := m.searchInput.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Clear):
		if m.searchInput.Value() != "" || m.query != "" {
			m.clearSearch()
		}
		return m, nil
	case key.Matches(msg, m.keys.Filter):
		m.statusFilter = m.statusFilter.Next()
		m.reproject()
		m.statusLine = "status: " + string(m.statusFilter)
		return m, nil
	case key.Matches(msg, m.keys.Sort):
		m.sortKey = m.sortKey.Next()
		m.reproject()
		m.statusLine = "sort: " + string(m.sortKey)
		return m, nil
	case key.Matches(msg, m.keys.NewCrop):
		m.form = newCropForm(nil)
		m.formOpen = true
		return m, textinput.Blink
	case key.Matches(msg, m.keys.EditCrop):
		c, ok := m.selectedCrop()
		if !ok {
			return m, nil
		}
		m.form = newCropForm(&c)
		m.formOpen = true
		return m, textinput.Blink
	case key.Matches(msg, m.keys.CycleStatus):
		if m.focus == cropsPane {
			c, ok := m.selectedCrop()
			if !ok {
				return m, nil
			}
			next := c.Status.Next()
			cmd := m.run(inventory.ActionCropStatus, inventory.Request{ID: c.ID, CropStatus: next},
				fmt.Sprintf("%s → %s", c.Name, next))
			return m, cmd
		}
		o, ok := m.selectedOrder()
		if !ok {
			return m, nil
		}
		next := o.Status.Next()
		cmd := m.run(inventory.ActionOrderStatus, inventory.Request{ID: o.ID, OrderStatus: next},
			fmt.Sprintf("order %s → %s", o.ID, next))
		return m, cmd
	case key.Matches(msg, m.keys.Delete):
		if m.focus == cropsPane {
			c, ok := m.selectedCrop()
			if !ok {
				return m, nil
			}
			m.openConfirm(fmt.Sprintf("Delete crop %q?", c.Name), inventory.ActionDeleteCrop, inventory.Request{ID: c.ID}, "delete "+c.Name)
			return m, nil
		}
		o, ok := m.selectedOrder()
		if !ok {
			return m, nil
		}
		m.openConfirm(fmt.Sprintf("Delete order %s from %s?", o.ID, o.Buyer), inventory.ActionDeleteOrder, inventory.Request{ID: o.ID}, "delete order "+o.ID.String())
		return m, nil
	case key.Matches(msg, m.keys.SampleOrder):
		cmd := m.run(inventory.ActionSampleOrder, inventory.Request{}, "sample order")
		return m, cmd
	case key.Matches(msg, m.keys.ClearAll):
		m.openConfirm("Delete ALL crops and orders on the server? This cannot be undone.", inventory.ActionClearAll, inventory.Request{}, "clear all")
		return m, nil
	case key.Matches(msg, m.keys.Import):
		m.openConfirm("Import sample crops and orders? Current lists will be reloaded.", inventory.ActionImportSample, inventory.Request{}, "import samples")
		return m, nil
	case key.Matches(msg, m.keys.Activity):
		m.activityOpen = true
		return m, nil
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.clearSearch()
		return m, nil
	case tea.KeyEnter:
		m.searchActive = false
		m.searchInput.Blur()
		m.search.Cancel()
		m.query = m.searchInput.Value()
		m.reproject()
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	after := m.searchInput.Value()
	switch {
	case after == before:
	case strings.TrimSpace(after) == "":
		// Clearing is shown right away.
		m.search.Cancel()
		m.query = ""
		m.reproject()
	default:
		m.search.Trigger()
	}
	return m, cmd
}

func (m *Model) clearSearch() {
	m.search.Cancel()
	m.searchInput.SetValue("")
	m.searchInput.Blur()
	m.searchActive = false
	m.query = ""
	m.reproject()
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.pending {
		return m, nil
	}
	switch msg.Type {
	case tea.KeyEsc:
		m.formOpen = false
		m.form = cropForm{}
		m.statusLine = "edit cancelled"
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		m.form.move(1)
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.form.move(-1)
		return m, nil
	case tea.KeyEnter:
		if !m.form.lastField() {
			m.form.move(1)
			return m, nil
		}
		return m.submitForm()
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	if m.form.editing() {
		m.form.pending = true
		m.form.err = nil
		c, _ := m.svc.Store().Crop(m.form.editID)
		cmd := m.run(inventory.ActionEditCrop, inventory.Request{ID: m.form.editID, Prompter: m.form.answers()}, "edit "+c.Name)
		return m, cmd
	}

	in, err := inventory.ParseCropInput(m.form.values())
	if err != nil {
		m.form.err = err
		return m, nil
	}
	m.form.pending = true
	m.form.err = nil
	cmd := m.run(inventory.ActionCreateCrop, inventory.Request{Crop: in}, "add "+in.Name)
	return m, cmd
}

func (m *Model) openConfirm(question string, a inventory.Action, req inventory.Request, label string) {
	m.confirm = confirmModal{question: question, action: a, req: req, label: label}
	m.confirmOpen = true
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		c := m.confirm
		m.confirmOpen = false
		m.confirm = confirmModal{}
		c.req.Prompter = inventory.Answers{Confirmed: true}
		m.statusLine = c.label + "…"
		cmd := m.run(c.action, c.req, c.label)
		return m, cmd
	case "n", "N", "esc":
		m.statusLine = m.confirm.label + " cancelled"
		m.confirmOpen = false
		m.confirm = confirmModal{}
		return m, nil
	}
	return m, nil
}

var (
	projectCrops  = inventory.ProjectCrops
	projectOrders = inventory.ProjectOrders
)

// reproject recomputes both visible lists from the store. Each list is
// derived on its own so one failing cannot blank the other.
func (m *Model) reproject() {
	store := m.svc.Store()

	prevCrop, hadCrop := m.selectedCrop()
	m.cropErr = guard(func() {
		m.crops = projectCrops(store.Crops(), inventory.CropQuery{
			Search: m.query,
			Status: m.statusFilter,
			Sort:   m.sortKey,
		})
	})
	m.cropSel = keepSelection(m.cropSel, len(m.crops), func(i int) bool { return hadCrop && m.crops[i].ID == prevCrop.ID })

	prevOrder, hadOrder := m.selectedOrder()
	m.orderErr = guard(func() {
		m.orders = projectOrders(store.Orders(), inventory.OrderQuery{Search: m.query})
	})
	m.orderSel = keepSelection(m.orderSel, len(m.orders), func(i int) bool { return hadOrder && m.orders[i].ID == prevOrder.ID })
}

func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	fn()
	return nil
}

func keepSelection(cur, n int, same func(int) bool) int {
	if n == 0 {
		return 0
	}
	for i := 0; i < n; i++ {
		if same(i) {
			return i
		}
	}
	return clamp(cur, 0, n-1)
}

func (m Model) selectedCrop() (farm.Crop, bool) {
	if m.cropSel < 0 || m.cropSel >= len(m.crops) {
		return farm.Crop{}, false
	}
	return m.crops[m.cropSel], true
}

func (m Model) selectedOrder() (farm.Order, bool) {
	if m.orderSel < 0 || m.orderSel >= len(m.orders) {
		return farm.Order{}, false
	}
	return m.orders[m.orderSel], true
}
