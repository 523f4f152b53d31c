package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"farmdash/internal/farm"
	"farmdash/internal/inventory"
)

type confirmModal struct {
	question string
	action   inventory.Action
	req      inventory.Request
	label    string
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.activityOpen {
		return m.activity.View()
	}

	headerTitle := "farmdash"
	if m.statusFilter != inventory.FilterAll {
		headerTitle += "  [status:" + string(m.statusFilter) + "]"
	}
	if m.sortKey != inventory.SortNone {
		headerTitle += "  [sort:" + string(m.sortKey) + "]"
	}
	if m.pending > 0 {
		headerTitle += "  " + m.spinner.View()
	}
	if m.searchInput.Value() != "" || m.searchActive {
		headerTitle += "  " + m.searchInput.View()
	}
	header := m.styles.Header.Width(m.width).Render(headerTitle)

	footer := m.renderFooter(m.width)

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 0 {
		bodyHeight = 0
	}

	var body string
	switch {
	case m.initErr != nil:
		body = m.renderInitError(m.width, bodyHeight)
	case !m.loaded:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.spinner.View()+" loading crops and orders…")
	case m.formOpen:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.form.view(m.styles))
	case m.confirmOpen:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.renderConfirm())
	default:
		body = m.renderBody(m.width, bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Top, header, body, footer)
}

func (m Model) renderBody(w, h int) string {
	sidebarWidth := m.cfg.UI.SidebarWidth
	if sidebarWidth < 20 {
		sidebarWidth = 20
	}
	mainWidth := w - sidebarWidth
	if mainWidth < 30 {
		mainWidth = 30
		sidebarWidth = max(20, w-mainWidth)
	}

	cropsHeight := h / 2
	ordersHeight := h - cropsHeight

	sidebar := m.renderSummary(sidebarWidth, h)
	main := lipgloss.JoinVertical(lipgloss.Top,
		m.renderCrops(mainWidth, cropsHeight),
		m.renderOrders(mainWidth, ordersHeight),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
}

func (m Model) renderInitError(w, h int) string {
	content := "Could not load crops and orders:\n\n" + m.initErr.Error() + "\n\n" +
		"Common fixes:\n" +
		"  • Check that the farm server is running at " + m.serverLabel + "\n" +
		"  • Set FARMDASH_SERVER or pass --server to point elsewhere\n" +
		"  • Run with --mock to try the dashboard without a server\n\n" +
		"Press 'r' to retry."
	return m.styles.Pane.Width(max(0, w-2)).Height(max(0, h-2)).Render(m.styles.Error.Render(content))
}

func (m Model) renderSummary(w, h int) string {
	store := m.svc.Store()
	s := inventory.Summarize(store.Crops(), store.Orders())

	label := func(t string) string { return m.styles.StatusLabel.Render(t) }
	lines := []string{
		m.styles.PaneTitle.Render("Farm"),
		strings.Repeat("─", max(0, w-4)),
		label("crops      ") + fmt.Sprintf("%d", s.Crops),
		label("available  ") + fmt.Sprintf("%d", s.Available),
		label("sold out   ") + fmt.Sprintf("%d", s.SoldOut),
		label("stock      ") + fmt.Sprintf("%.1f kg", s.StockKg),
		label("value      ") + fmt.Sprintf("%.2f", s.StockValue),
		"",
		label("orders     ") + fmt.Sprintf("%d", s.Orders),
	}
	for _, st := range farm.OrderStatuses {
		lines = append(lines, label(fmt.Sprintf("  %-9s", strings.ToLower(string(st))))+fmt.Sprintf("%d", s.OrdersByStatus[st]))
	}
	return m.styles.Pane.Width(max(0, w-2)).Height(max(0, h-2)).Render(strings.Join(lines, "\n"))
}

func (m Model) paneStyle(p pane) lipgloss.Style {
	if m.focus == p {
		return m.styles.PaneFocused
	}
	return m.styles.Pane
}

func (m Model) renderCrops(w, h int) string {
	all := len(m.svc.Store().Crops())
	title := fmt.Sprintf("Crops (%d)", all)
	if len(m.crops) != all {
		title = fmt.Sprintf("Crops (%d/%d)", len(m.crops), all)
	}
	lines := []string{m.styles.PaneTitle.Render(title)}

	rows := make([]string, 0, len(m.crops))
	for _, c := range m.crops {
		rows = append(rows, cropLine(c))
	}
	lines = append(lines, m.renderRows(rows, m.cropSel, m.focus == cropsPane, m.cropErr, max(0, h-3), func(i int) bool {
		return m.crops[i].Status == farm.CropSoldOut
	})...)
	return m.paneStyle(cropsPane).Width(max(0, w-2)).Height(max(0, h-2)).Render(strings.Join(lines, "\n"))
}

func (m Model) renderOrders(w, h int) string {
	all := len(m.svc.Store().Orders())
	title := fmt.Sprintf("Orders (%d)", all)
	if len(m.orders) != all {
		title = fmt.Sprintf("Orders (%d/%d)", len(m.orders), all)
	}
	lines := []string{m.styles.PaneTitle.Render(title)}

	rows := make([]string, 0, len(m.orders))
	for _, o := range m.orders {
		rows = append(rows, orderLine(o))
	}
	lines = append(lines, m.renderRows(rows, m.orderSel, m.focus == ordersPane, m.orderErr, max(0, h-3), func(int) bool { return false })...)
	return m.paneStyle(ordersPane).Width(max(0, w-2)).Height(max(0, h-2)).Render(strings.Join(lines, "\n"))
}

// renderRows shows the visible window of rows around sel. A failed
// projection replaces the rows with an inline error.
func (m Model) renderRows(rows []string, sel int, focused bool, projErr error, maxItems int, warn func(int) bool) []string {
	if projErr != nil {
		return []string{m.styles.Error.Render("could not render list: " + projErr.Error())}
	}
	if len(rows) == 0 {
		return []string{m.styles.Muted.Render("  (no items)")}
	}
	if maxItems <= 0 {
		return nil
	}

	start := 0
	if sel >= maxItems {
		start = sel - maxItems + 1
	}
	end := min(len(rows), start+maxItems)

	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		switch {
		case i == sel && focused:
			out = append(out, m.styles.ItemSelected.Render("▶ "+rows[i]))
		case warn(i):
			out = append(out, m.styles.SoldOut.Render("  "+rows[i]))
		default:
			out = append(out, m.styles.Item.Render("  "+rows[i]))
		}
	}
	if len(rows) > end {
		out[len(out)-1] += m.styles.Muted.Render("  …")
	}
	return out
}

func cropLine(c farm.Crop) string {
	line := fmt.Sprintf("%-18s %8.1f kg  @ %7.2f  %s", truncate(c.Name, 18), c.Quantity, c.Price, c.Status)
	if c.Note != "" {
		line += "  · " + truncate(c.Note, 24)
	}
	return line
}

func orderLine(o farm.Order) string {
	return fmt.Sprintf("#%-8s %-16s %-14s ×%-5g %s", truncate(o.ID.String(), 8), truncate(o.Buyer, 16), truncate(o.Product, 14), o.Qty, o.Status)
}

func (m Model) renderConfirm() string {
	lines := []string{
		m.styles.PaneTitle.Render("Confirm"),
		"",
		m.confirm.question,
		"",
		m.styles.Muted.Render("y=confirm  n/esc=cancel"),
	}
	return m.styles.Modal.Render(strings.Join(lines, "\n"))
}

func (m Model) renderFooter(w int) string {
	ts := "never"
	if !m.lastRefresh.IsZero() {
		ts = m.lastRefresh.Format("15:04:05Z")
	}

	label := func(s string) string { return m.styles.StatusLabel.Render(s) }
	val := func(s string) string { return m.styles.StatusValue.Render(s) }

	leftParts := []string{
		label("server:") + val(m.serverLabel),
		label("refresh:") + val(ts),
	}
	if strings.TrimSpace(m.statusLine) != "" {
		leftParts = append(leftParts, label("msg:")+val(m.statusLine))
	}
	left := strings.Join(leftParts, "  ")

	right := m.help.View(m.keys)

	gap := w - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + right
	return m.styles.StatusBar.Width(w).Render(line)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
