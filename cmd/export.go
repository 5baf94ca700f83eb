package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/climateledger/disclosure-export/internal/workbook"
	"github.com/climateledger/disclosure-export/internal/xlsxout"
)

var (
	exportByName   bool
	exportOut      string
	exportCSVSheet string
)

var exportCmd = &cobra.Command{
	Use:   "export <company>",
	Short: "Export one company's disclosure history as an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initExport(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		path, err := runExport(ctx, env, args[0])
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	exportCmd.Flags().BoolVar(&exportByName, "by-name", false, "resolve the argument as a company name instead of an ID")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file path (default <output_dir>/<company>.xlsx)")
	exportCmd.Flags().StringVar(&exportCSVSheet, "csv-sheet", "", "also dump the named sheet as CSV next to the workbook")
	rootCmd.AddCommand(exportCmd)
}

// runExport assembles and writes one company's workbook, returning the
// output path.
func runExport(ctx context.Context, env *exportEnv, company string) (string, error) {
	companyID := company
	if exportByName {
		id, err := env.Provider.CompanyIDByName(ctx, company)
		if err != nil {
			return "", err
		}
		if id == "" {
			return "", eris.Errorf("export: unknown company %q", company)
		}
		companyID = id
	}

	wb, err := env.Assembler.Assemble(ctx, companyID)
	if err != nil {
		return "", err
	}

	path := exportOut
	if path == "" {
		path = filepath.Join(cfg.Export.OutputDir, companyID+".xlsx")
	}
	if err := xlsxout.WriteWorkbook(wb, path); err != nil {
		return "", err
	}
	wb.Run.OutputPath = path

	if exportCSVSheet != "" {
		if err := dumpSheetCSV(wb, exportCSVSheet, path); err != nil {
			return "", err
		}
	}

	zap.L().Info("export: workbook written",
		zap.String("run_id", wb.Run.ID),
		zap.String("company_id", companyID),
		zap.String("path", path),
	)
	return path, nil
}

func dumpSheetCSV(wb *workbook.Workbook, sheet, xlsxPath string) error {
	for _, t := range wb.Wide {
		if t.Sheet == sheet {
			csvPath := xlsxPath[:len(xlsxPath)-len(filepath.Ext(xlsxPath))] + ".csv"
			return xlsxout.WriteTableCSV(t, csvPath)
		}
	}
	return eris.Errorf("export: no sheet %q in workbook", sheet)
}
