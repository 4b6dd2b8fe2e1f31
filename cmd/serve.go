package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brandscope/brandscope-cli/internal/model"
	"github.com/brandscope/brandscope-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env.Store, env.Pipeline),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// analyzeRequest is the POST /v1/analyze body.
type analyzeRequest struct {
	BrandName     string   `json:"brand_name"`
	Category      string   `json:"category"`
	Positioning   string   `json:"positioning"`
	Countries     []string `json:"countries"`
	Understanding string   `json:"understanding,omitempty"`
	ThemeKeywords []string `json:"theme_keywords,omitempty"`
}

// analyzeResponse is the POST /v1/analyze response.
type analyzeResponse struct {
	RunID              string                        `json:"run_id"`
	GlobalMatrix       *model.RegionMarket           `json:"global_matrix,omitempty"`
	CountryAnalysis    map[string]model.RegionMarket `json:"country_analysis"`
	WhiteSpaceAnalysis model.WhiteSpaceReport        `json:"white_space_analysis"`
	AllCompetitors     []model.Candidate             `json:"all_competitors"`
	Meta               model.RunMeta                 `json:"meta"`
}

// newRouter builds the chi router for the analysis API.
func newRouter(st store.Store, p analyzer) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/analyze", handleAnalyze(st, p))
	r.Get("/v1/runs", handleListRuns(st))
	r.Get("/v1/runs/{id}", handleGetRun(st))

	return r
}

// requestLogger logs each request with method, path, and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func handleAnalyze(st store.Store, p analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.BrandName = strings.TrimSpace(req.BrandName)
		req.Category = strings.TrimSpace(req.Category)
		if req.BrandName == "" {
			writeError(w, http.StatusBadRequest, "brand_name is required")
			return
		}
		if req.Category == "" {
			writeError(w, http.StatusBadRequest, "category is required")
			return
		}

		in := model.RunInput{
			BrandName:     req.BrandName,
			Category:      req.Category,
			Positioning:   req.Positioning,
			Regions:       req.Countries,
			ThemeKeywords: themeKeywords(req),
		}

		run, result, err := analyzeAndPersist(r.Context(), st, p, in)
		if err != nil {
			zap.L().Error("analyze request failed",
				zap.String("brand", in.BrandName),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "analysis failed")
			return
		}

		writeJSON(w, http.StatusOK, buildAnalyzeResponse(run.ID, result))
	}
}

func handleListRuns(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.RunFilter{
			Status:    model.RunStatus(r.URL.Query().Get("status")),
			BrandName: r.URL.Query().Get("brand"),
			Limit:     50,
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			filter.Limit = n
		}

		runs, err := st.ListRuns(r.Context(), filter)
		if err != nil {
			zap.L().Error("list runs failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list runs failed")
			return
		}
		if runs == nil {
			runs = []model.Run{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	}
}

func handleGetRun(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := chi.URLParam(r, "id")
		run, err := st.GetRun(r.Context(), runID)
		if err != nil {
			if eris.Is(err, store.ErrRunNotFound) {
				writeError(w, http.StatusNotFound, "run not found")
				return
			}
			zap.L().Error("get run", zap.String("run_id", runID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

// themeKeywords derives keywords from the request: explicit keywords win,
// otherwise the free-text understanding is split on commas.
func themeKeywords(req analyzeRequest) []string {
	if len(req.ThemeKeywords) > 0 {
		return req.ThemeKeywords
	}
	if req.Understanding == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(req.Understanding, ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			out = append(out, kw)
		}
		if len(out) == 3 {
			break
		}
	}
	return out
}

func buildAnalyzeResponse(runID string, result *model.PipelineRun) analyzeResponse {
	resp := analyzeResponse{
		RunID:              runID,
		CountryAnalysis:    map[string]model.RegionMarket{},
		WhiteSpaceAnalysis: result.WhiteSpace,
		AllCompetitors:     result.Candidates,
		Meta:               result.Meta,
	}
	if resp.AllCompetitors == nil {
		resp.AllCompetitors = []model.Candidate{}
	}
	for region, market := range result.Markets {
		if region == model.RegionGlobal {
			m := market
			resp.GlobalMatrix = &m
			continue
		}
		resp.CountryAnalysis[region] = market
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
