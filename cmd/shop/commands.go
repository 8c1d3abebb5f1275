package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"woostore/storefront/internal/cart"
	"woostore/storefront/internal/catalog"
	"woostore/storefront/internal/checkout"
	"woostore/storefront/internal/config"
	"woostore/storefront/internal/container"
	"woostore/storefront/internal/domain"
	"woostore/storefront/internal/storefront"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type app struct {
	configPath string
	proxyURL   string

	cfg    *config.Config
	client *storefront.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "shop",
		Short:         "Browse the catalog, manage a cart and place orders through the storefront proxy",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.client != nil {
				return a.client.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./config.yaml)")
	root.PersistentFlags().StringVar(&a.proxyURL, "proxy", "", "storefront proxy URL (overrides shop.proxy_url)")

	root.AddCommand(a.productsCmd(), a.categoriesCmd(), a.cartCmd(), a.checkoutCmd())
	return root
}

func (a *app) init() error {
	cfg, err := config.LoadFile(a.configPath)
	if err != nil {
		return err
	}
	container.SetupLogging(cfg.Log)
	if a.proxyURL != "" {
		cfg.Shop.ProxyURL = a.proxyURL
	}

	a.cfg = cfg
	a.client = storefront.NewClient(cfg.Shop.ProxyURL, time.Duration(cfg.Shop.Timeout)*time.Second)
	return nil
}

func (a *app) cartStore(ctx context.Context) *cart.Store {
	return cart.New(ctx, cart.NewFileStorage(a.cfg.Shop.CartDir, cart.StorageKey))
}

func (a *app) productsCmd() *cobra.Command {
	var (
		pages   int
		group   bool
		filters domain.ProductQuery
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List published products, 12 per page",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fetcher := catalog.NewFetcher(a.client)

			if _, err := fetcher.SetFilters(ctx, filters); err != nil {
				return fmt.Errorf("%s: %w", fetcher.Snapshot().Err, err)
			}
			for i := 1; i < pages; i++ {
				applied, err := fetcher.LoadMore(ctx)
				if err != nil {
					return err
				}
				if !applied {
					break
				}
			}

			state := fetcher.Snapshot()
			out := cmd.OutOrStdout()
			if group {
				for _, g := range catalog.GroupByCategory(state.Products) {
					fmt.Fprintf(out, "\n%s\n", g.Category.Name)
					printProducts(out, g.Products)
				}
			} else {
				printProducts(out, state.Products)
			}

			fmt.Fprintf(out, "\nShowing %d of %d products", len(state.Products), state.TotalProducts)
			if state.HasMore {
				fmt.Fprintf(out, " (more with --pages %d)", state.Page+1)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	cmd.Flags().BoolVar(&group, "group", false, "group products by category")
	cmd.Flags().StringVar(&filters.Search, "search", "", "search term")
	cmd.Flags().StringVar(&filters.Category, "category", "", "category id")
	cmd.Flags().StringVar(&filters.MinPrice, "min-price", "", "minimum price")
	cmd.Flags().StringVar(&filters.MaxPrice, "max-price", "", "maximum price")
	cmd.Flags().StringVar(&filters.OrderBy, "orderby", "", "sort field: date, price, popularity, rating, title")
	cmd.Flags().StringVar(&filters.Order, "order", "", "asc or desc")
	return cmd
}

func printProducts(out io.Writer, products []domain.Product) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK")
	for _, p := range products {
		price := p.Price
		if p.OnSale() {
			price = fmt.Sprintf("%s (was %s)", p.SalePrice, p.RegularPrice)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Name, price, p.StockStatus)
	}
	w.Flush()
}

func (a *app) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List up to 50 non-empty categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher := catalog.NewCategoryFetcher(a.client)
			if _, err := fetcher.Fetch(cmd.Context()); err != nil {
				return fmt.Errorf("%s: %w", fetcher.Snapshot().Err, err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPRODUCTS")
			for _, c := range fetcher.Snapshot().Categories {
				fmt.Fprintf(w, "%d\t%s\t%d\n", c.ID, c.Name, c.Count)
			}
			return w.Flush()
		},
	}
}

func (a *app) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the local cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			printCart(cmd.OutOrStdout(), a.cartStore(cmd.Context()))
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Look up a product through the proxy and add one unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			product, err := a.client.GetProduct(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to look up product %d: %w", id, err)
			}
			if _, err := decimal.NewFromString(product.Price); err != nil {
				return fmt.Errorf("product %d has no valid price %q", id, product.Price)
			}

			store := a.cartStore(cmd.Context())
			store.AddToCart(cmd.Context(), domain.CartLineItemFromProduct(*product))
			printCart(cmd.OutOrStdout(), store)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			store := a.cartStore(cmd.Context())
			store.RemoveFromCart(cmd.Context(), id)
			printCart(cmd.OutOrStdout(), store)
			return nil
		},
	}

	update := &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Set a quantity; 0 or less removes the product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			store := a.cartStore(cmd.Context())
			store.UpdateQuantity(cmd.Context(), id, quantity)
			printCart(cmd.OutOrStdout(), store)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.cartStore(cmd.Context())
			store.ClearCart(cmd.Context())
			printCart(cmd.OutOrStdout(), store)
			return nil
		},
	}

	cmd.AddCommand(add, remove, update, clearCmd)
	return cmd
}

func printCart(out io.Writer, store *cart.Store) {
	if store.IsEmpty() {
		fmt.Fprintln(out, "Your cart is empty")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tQTY")
	for _, item := range store.Items() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", item.ID, item.Name, item.Price, item.Quantity)
	}
	w.Flush()
	fmt.Fprintf(out, "%d items, total %s\n", store.ItemCount(), store.FormatTotal())
}

func (a *app) checkoutCmd() *cobra.Command {
	form := checkout.NewForm()
	var separateShipping bool

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(domain.PaymentMethods, domain.PaymentMethod(form.PaymentMethod)) {
				return fmt.Errorf("invalid payment method %q, expected one of: %s", form.PaymentMethod, paymentMethodList())
			}
			form.SameAsBilling = !separateShipping
			c := checkout.New(a.cartStore(cmd.Context()), a.client)

			order, err := c.PlaceOrder(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order #%d placed (%s). Thank you!\n", order.ID, form.PaymentMethod)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&form.Billing.FirstName, "first-name", "", "billing first name")
	f.StringVar(&form.Billing.LastName, "last-name", "", "billing last name")
	f.StringVar(&form.Billing.Email, "email", "", "billing email")
	f.StringVar(&form.Billing.Phone, "phone", "", "billing phone")
	f.StringVar(&form.Billing.Company, "company", "", "billing company")
	f.StringVar(&form.Billing.Address1, "address", "", "billing street address")
	f.StringVar(&form.Billing.Address2, "address-2", "", "billing address line 2")
	f.StringVar(&form.Billing.City, "city", "", "billing city")
	f.StringVar(&form.Billing.State, "state", "", "billing state or province")
	f.StringVar(&form.Billing.Postcode, "postcode", "", "billing postcode")
	f.StringVar(&form.Billing.Country, "country", domain.DefaultCountry, "billing country code")

	f.BoolVar(&separateShipping, "ship-elsewhere", false, "use the --ship-* address instead of the billing address")
	f.StringVar(&form.Shipping.FirstName, "ship-first-name", "", "shipping first name")
	f.StringVar(&form.Shipping.LastName, "ship-last-name", "", "shipping last name")
	f.StringVar(&form.Shipping.Address1, "ship-address", "", "shipping street address")
	f.StringVar(&form.Shipping.City, "ship-city", "", "shipping city")
	f.StringVar(&form.Shipping.Postcode, "ship-postcode", "", "shipping postcode")
	f.StringVar(&form.Shipping.Country, "ship-country", domain.DefaultCountry, "shipping country code")

	f.StringVar(&form.PaymentMethod, "payment", domain.PaymentMethodCOD.String(), "payment method: "+paymentMethodList())
	f.StringVar(&form.CustomerNote, "note", "", "order note")
	return cmd
}

func paymentMethodList() string {
	names := make([]string, 0, len(domain.PaymentMethods))
	for _, m := range domain.PaymentMethods {
		names = append(names, m.String())
	}
	return strings.Join(names, ", ")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}
