package main

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/climateledger/disclosure-export/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Static catalogue utilities",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Verify every schema form has a default-attribute template",
	Long:  "Checks the workbook schema against the template catalogue so missing default-attribute templates surface before export time.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initExport(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var missing []string
		for _, form := range env.Schema.FormNames() {
			if _, err := env.Catalog.DefaultTemplate(ctx, form, ""); err != nil {
				if errors.Is(err, catalog.ErrTemplateNotFound) {
					missing = append(missing, form)
					continue
				}
				return err
			}
		}

		if len(missing) > 0 {
			for _, form := range missing {
				fmt.Printf("missing template: %s\n", form)
			}
			return eris.Errorf("catalog: %d form(s) without default templates", len(missing))
		}

		fmt.Println("catalog OK")
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
	rootCmd.AddCommand(catalogCmd)
}
