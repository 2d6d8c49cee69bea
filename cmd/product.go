package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/ibuy-cli/internal/adapters/render/catalog"
	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newProductsCmd(app *app) *cobra.Command {
	var userID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var products []domain.Product
			err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching products...", func(ctx context.Context) error {
				var err error
				products, err = app.catalog.Products(ctx, userID)
				return err
			})
			if err != nil {
				return sessionError(err)
			}

			if asJSON {
				return writeJSON(cmd, products)
			}
			return writeView(cmd, app, catalog.Products(products, app.labels(cmd.Context())))
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Only list products of this user")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newProductCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Show or add products",
	}

	cmd.AddCommand(newProductShowCmd(app), newProductAddCmd(app))

	return cmd
}

func newProductShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show product details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := app.catalog.Product(cmd.Context(), domain.ProductID(args[0]))
			if err != nil {
				return sessionError(err)
			}

			if asJSON {
				return writeJSON(cmd, product)
			}
			return writeView(cmd, app, catalog.Product(product, app.labels(cmd.Context())))
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newProductAddCmd(app *app) *cobra.Command {
	var product domain.NewProduct
	var imagePaths []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "List a new product for sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.requireUser(cmd.Context(), false); err != nil {
				return err
			}

			images, err := readImages(imagePaths)
			if err != nil {
				return err
			}
			product.Images = images

			// Loaded so the category can be checked before upload.
			if _, err := app.reference.EnsureCategories(cmd.Context()); err != nil {
				return sessionError(err)
			}

			token, err := app.catalog.AddProduct(cmd.Context(), product)
			if err != nil {
				return sessionError(err)
			}

			out := cmd.OutOrStdout()
			if token == "" {
				_, err = fmt.Fprintf(out, "Listed %s\n", product.Name)
				return err
			}
			_, err = fmt.Fprintf(out, "Listed %s (%s)\n", product.Name, token)
			return err
		},
	}

	cmd.Flags().StringVar(&product.Name, "name", "", "Product name")
	cmd.Flags().StringVar(&product.Description, "description", "", "Product description")
	cmd.Flags().Float64Var(&product.Price, "price", 0, "Price")
	cmd.Flags().IntVar(&product.Category, "category", 0, "Category id (see `ibuy categories`)")
	cmd.Flags().StringVar(&product.Condition, "condition", "", "Condition (New, Like New, Good, Fair, Poor)")
	cmd.Flags().StringVar(&product.Location, "location", "", "Pickup location")
	cmd.Flags().StringArrayVar(&imagePaths, "image", nil, "Image file to attach (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func readImages(paths []string) ([]domain.ImageUpload, error) {
	images := make([]domain.ImageUpload, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", path, err)
		}
		images = append(images, domain.ImageUpload{Filename: filepath.Base(path), Data: data})
	}
	return images, nil
}
