package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/farmfresh-backend/internal/cart"
	"github.com/angelmondragon/farmfresh-backend/internal/orders"
	products "github.com/angelmondragon/farmfresh-backend/internal/products"
	"github.com/angelmondragon/farmfresh-backend/pkg/enums"
	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
	"github.com/angelmondragon/farmfresh-backend/pkg/pagination"
)

func newRootCmd(open appOpener) *cobra.Command {
	var a *app

	root := &cobra.Command{
		Use:           "farmfresh",
		Short:         "FarmFresh storefront operator tool",
		Long:          `Inspect the catalog, carts, and orders held in the configured storage backend.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			opened, err := open(cmd.Context())
			if err != nil {
				return err
			}
			a = opened
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a == nil {
				return nil
			}
			return a.store.Close()
		},
	}

	current := func() *app { return a }
	root.AddCommand(newCatalogCmd(current), newOrdersCmd(current), newCartCmd(current))
	return root
}

func newCatalogCmd(current func() *app) *cobra.Command {
	var (
		category string
		query    string
		sort     string
		page     int
		limit    int
	)
	catalog := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the seed catalog",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List products with the storefront filters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := products.ParseSortOrder(sort)
			if err != nil {
				return err
			}
			result, err := current().catalog.ListProducts(cmd.Context(), products.ListProductsInput{
				Filters:    products.ListFilters{Category: category, Query: query, Sort: order},
				Pagination: pagination.Params{Page: page, Limit: limit},
			})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tFARMER")
			for _, p := range result.Products {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Category, p.Price.StringFixed(2), p.Stock, p.Farmer.Name)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %d products\n", result.Page, result.TotalPages, result.TotalProducts)
			return nil
		},
	}
	list.Flags().StringVar(&category, "category", "", "only products in this category")
	list.Flags().StringVarP(&query, "query", "q", "", "search name, description, and tags")
	list.Flags().StringVar(&sort, "sort", "", "newest|price-low|price-high|rating|popular")
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVar(&limit, "limit", pagination.DefaultLimit, "page size")
	catalog.AddCommand(list)
	return catalog
}

func newOrdersCmd(current func() *app) *cobra.Command {
	var (
		status string
		page   int
		limit  int
	)
	ordersCmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and advance orders",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List every order, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filters orders.ListFilters
			if status != "" {
				parsed, err := enums.ParseOrderStatus(status)
				if err != nil {
					return err
				}
				filters.Status = &parsed
			}
			result, err := current().orders.ListAll(cmd.Context(), filters, pagination.Params{Page: page, Limit: limit})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSER\tSTATUS\tITEMS\tTOTAL\tTRACKING\tCREATED")
			for _, o := range result.Orders {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s %s\t%s\t%s\n",
					o.ID, o.UserID, o.Status, o.TotalItems, o.GrandTotal.StringFixed(2), o.Currency,
					o.TrackingNumber, o.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&status, "status", "", "only orders in this status")
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVar(&limit, "limit", pagination.DefaultLimit, "page size")

	advance := &cobra.Command{
		Use:   "advance <order-id> <status>",
		Short: "Move an order forward in its lifecycle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			next, err := enums.ParseOrderStatus(args[1])
			if err != nil {
				return err
			}
			order, err := current().orders.UpdateStatus(cmd.Context(), args[0], next)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %s is now %s\n", order.ID, order.Status)
			return nil
		},
	}

	ordersCmd.AddCommand(list, advance)
	return ordersCmd
}

func newCartCmd(current func() *app) *cobra.Command {
	cartCmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect stored carts",
	}
	var asUser bool
	show := &cobra.Command{
		Use:   "show <session-or-user-id>",
		Short: "Print the cart stored for a browser session or, with --user, a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := kv.GuestProfile(args[0])
			if asUser {
				profile = kv.UserProfile(args[0])
			}
			c, err := current().carts.Get(cmd.Context(), profile)
			if err != nil {
				return err
			}
			summary, err := current().carts.Summary(cmd.Context(), profile)
			if err != nil {
				return err
			}
			printCart(cmd, c, summary)
			return nil
		},
	}
	show.Flags().BoolVar(&asUser, "user", false, "treat the argument as a user id")
	cartCmd.AddCommand(show)
	return cartCmd
}

func printCart(cmd *cobra.Command, c *cart.Cart, summary cart.Summary) {
	out := cmd.OutOrStdout()
	if len(c.Items) == 0 {
		fmt.Fprintln(out, "cart is empty")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tNAME\tQTY\tLINE TOTAL")
	for _, item := range c.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", item.Product.ID, item.Product.Name, item.Quantity, item.LineTotal().StringFixed(2))
	}
	_ = w.Flush()
	fmt.Fprintf(out, "items %d, subtotal %s, delivery %s, total %s %s\n",
		summary.TotalItems, summary.Subtotal.StringFixed(2), summary.DeliveryFee.StringFixed(2),
		summary.Total.StringFixed(2), summary.Currency)
}
