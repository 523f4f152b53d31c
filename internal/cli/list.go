package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"farmdash/internal/farm"
	"farmdash/internal/inventory"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			// Row 0 is the header.
			if row == 0 {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func newCropsCmd(app *App) *cobra.Command {
	var status, search, sortBy string

	cmd := &cobra.Command{
		Use:   "crops",
		Short: "List crops",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := inventory.ParseStatusFilter(status)
			if err != nil {
				return err
			}
			key, err := inventory.ParseSortKey(sortBy)
			if err != nil {
				return err
			}
			svc, err := app.loadedService(cmd.Context())
			if err != nil {
				return err
			}

			crops := inventory.ProjectCrops(svc.Store().Crops(), inventory.CropQuery{Search: search, Status: filter, Sort: key})
			if len(crops) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no crops")
				return nil
			}
			rows := make([][]string, 0, len(crops))
			for _, c := range crops {
				rows = append(rows, []string{c.ID.String(), c.Name, amount(c.Quantity), amount(c.Price), string(c.Status), c.Note})
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "NAME", "QTY (KG)", "PRICE", "STATUS", "NOTE"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "all", "status filter (all, available, sold-out)")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive match on name or note")
	cmd.Flags().StringVar(&sortBy, "sort", "none", "sort (none, qty-desc, qty-asc, price-desc, price-asc)")
	return cmd
}

func newOrdersCmd(app *App) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.loadedService(cmd.Context())
			if err != nil {
				return err
			}

			orders := inventory.ProjectOrders(svc.Store().Orders(), inventory.OrderQuery{Search: search})
			if len(orders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no orders")
				return nil
			}
			rows := make([][]string, 0, len(orders))
			for _, o := range orders {
				rows = append(rows, []string{o.ID.String(), o.Buyer, o.Product, amount(o.Qty), string(o.Status)})
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "BUYER", "PRODUCT", "QTY", "STATUS"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "case-insensitive match on buyer, product or id")
	return cmd
}

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show inventory and order totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.loadedService(cmd.Context())
			if err != nil {
				return err
			}
			s := inventory.Summarize(svc.Store().Crops(), svc.Store().Orders())

			rows := [][]string{
				{"crops", strconv.Itoa(s.Crops)},
				{"available", strconv.Itoa(s.Available)},
				{"sold out", strconv.Itoa(s.SoldOut)},
				{"stock (kg)", amount(s.StockKg)},
				{"stock value", fmt.Sprintf("%.2f", s.StockValue)},
				{"orders", strconv.Itoa(s.Orders)},
			}
			for _, st := range farm.OrderStatuses {
				rows = append(rows, []string{"  " + string(st), strconv.Itoa(s.OrdersByStatus[st])})
			}
			renderTable(cmd.OutOrStdout(), []string{"METRIC", "VALUE"}, rows)
			return nil
		},
	}
}
