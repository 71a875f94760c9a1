package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/azurescope/explorer/pkg/catalog"
)

func newCatalogCmd() *cobra.Command {
	var searchQuery string

	catalogCmd := &cobra.Command{
		Use:   "catalog [category]",
		Short: "Browse the Azure service reference",
		Long: `Catalog lists the service categories Azurescope knows about. Pass a
category key to see its services, or search across every category with
--search.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Default()
			if err != nil {
				return err
			}

			if searchQuery != "" {
				return printCatalogSearch(cat, searchQuery)
			}

			if len(args) == 1 {
				return printCatalogCategory(cat, args[0])
			}

			printCatalogOverview(cat)
			return nil
		},
	}

	catalogCmd.Flags().StringVarP(&searchQuery, "search", "q", "", "search services by name, description or use case")

	return catalogCmd
}

func printCatalogOverview(cat *catalog.Catalog) {
	for _, category := range cat.Categories() {
		color.New(color.FgCyan, color.Bold).Printf("%s", category.Name)
		fmt.Printf("  (%s, %d services)\n", category.Key, len(category.Services))
		fmt.Printf("  %s\n\n", category.Description)
	}
}

func printCatalogCategory(cat *catalog.Catalog, key string) error {
	category, ok := cat.Category(key)
	if !ok {
		return fmt.Errorf("unknown category %q", key)
	}

	color.New(color.FgCyan, color.Bold).Println(category.Name)
	fmt.Printf("%s\n\n", category.Description)

	for _, svc := range category.Services {
		color.New(color.Bold).Printf("%s", svc.Name)
		fmt.Printf("  (%s)\n", svc.Key)
		fmt.Printf("  %s\n", svc.Description)

		for _, useCase := range svc.UseCases {
			fmt.Printf("    - %s\n", useCase)
		}

		fmt.Println()
	}

	return nil
}

func printCatalogSearch(cat *catalog.Catalog, query string) error {
	results := cat.Search(query)
	if len(results) == 0 {
		color.New(color.FgYellow).Printf("No services match %q\n", query)
		return nil
	}

	for _, r := range results {
		color.New(color.Bold).Printf("%s", r.Name)
		fmt.Printf("  [%s]\n", r.CategoryName)
		fmt.Printf("  %s\n\n", r.Description)
	}

	return nil
}
