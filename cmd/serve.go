package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/climateledger/disclosure-export/internal/xlsxout"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the export webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		env, err := initExport(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		r.Post("/export/{companyID}", func(w http.ResponseWriter, req *http.Request) {
			companyID := chi.URLParam(req, "companyID")

			wb, err := env.Assembler.Assemble(req.Context(), companyID)
			if err != nil {
				zap.L().Error("serve: export failed",
					zap.String("company_id", companyID),
					zap.Error(err),
				)
				http.Error(w, `{"error":"export failed"}`, http.StatusInternalServerError)
				return
			}

			path := filepath.Join(cfg.Export.OutputDir, companyID+".xlsx")
			if err := xlsxout.WriteWorkbook(wb, path); err != nil {
				zap.L().Error("serve: write failed",
					zap.String("company_id", companyID),
					zap.Error(err),
				)
				http.Error(w, `{"error":"write failed"}`, http.StatusInternalServerError)
				return
			}
			wb.Run.OutputPath = path

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"run_id":     wb.Run.ID,
				"company_id": companyID,
				"path":       path,
				"sheet_rows": wb.Run.SheetRows,
				"degraded":   wb.Run.Degraded,
			})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("serve: listening", zap.Int("port", port))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return eris.Wrap(err, "serve: shutdown")
			}
			return nil
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "serve: listen")
			}
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
