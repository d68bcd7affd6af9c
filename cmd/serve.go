package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/san-import-cli/internal/importer"
	"github.com/sells-group/san-import-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP preview endpoint",
	Long: `Start an HTTP server exposing the reconciliation pipeline: upload raw
switch configuration documents and receive the reconciled alias and zone
candidates without writing anything to the backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close()

		orch := importer.New(st, buildClassifier())

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: buildRouter(orch, importOptions),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// previewRequest is the body of POST /api/v1/import/preview.
type previewRequest struct {
	FabricID  string                 `json:"fabric_id"`
	Documents []model.SourceDocument `json:"documents"`
}

// buildRouter assembles the HTTP routes. optsFor supplies the per-fabric
// import options, decoupled so tests can inject fixtures.
func buildRouter(orch *importer.Orchestrator, optsFor func(fabricID string) importer.Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/v1/import/preview", func(w http.ResponseWriter, req *http.Request) {
		var body previewRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if body.FabricID == "" || len(body.Documents) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "fabric_id and documents are required"})
			return
		}

		plan, err := orch.Plan(req.Context(), body.Documents, optsFor(body.FabricID))
		if err != nil {
			zap.L().Error("preview failed",
				zap.String("fabric", body.FabricID), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "preview failed"})
			return
		}

		writeJSON(w, http.StatusOK, plan)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
