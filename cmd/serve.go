package main

import (
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

	"github.com/goldencrust/interview-agent/internal/analytics"
	"github.com/goldencrust/interview-agent/internal/scoring"
	"github.com/goldencrust/interview-agent/internal/session"
	"github.com/goldencrust/interview-agent/pkg/anthropic"
	"github.com/goldencrust/interview-agent/pkg/elevenlabs"
	"github.com/goldencrust/interview-agent/pkg/groq"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interview API and websocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		llm := anthropic.NewClient(cfg.Anthropic.Key)
		stt := groq.NewClient(cfg.Groq.Key,
			groq.WithBaseURL(cfg.Groq.BaseURL),
			groq.WithModel(cfg.Groq.Model),
			groq.WithLanguage(cfg.Groq.Language),
		)
		tts := elevenlabs.NewClient(cfg.ElevenLabs.Key,
			elevenlabs.WithBaseURL(cfg.ElevenLabs.BaseURL),
			elevenlabs.WithVoiceID(cfg.ElevenLabs.VoiceID),
		)

		ws := session.NewHandler(st, llm, stt, tts, cfg.Anthropic.Model, cfg.Interview)
		api := &apiServer{
			store:     st,
			scorer:    scoring.NewScorer(llm, st, cfg.Scoring),
			analytics: analytics.NewService(st),
		}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", api.handleHealth)
		r.Route("/api", func(r chi.Router) {
			r.Get("/candidates/{id}", api.handleGetCandidate)
			r.Post("/interviews/start", api.handleStartInterview)
			r.Get("/interviews/{id}", api.handleGetInterview)
			r.Post("/scoring/{id}/analyze", api.handleAnalyze)
			r.Get("/scoring/{id}", api.handleGetReport)
			r.Get("/analytics/dashboard", api.handleDashboard)
		})
		r.Get("/ws/interview/{candidateID}", ws.ServeHTTP)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server",
				zap.Int("active_sessions", ws.Registry().Len()),
			)
			srv.Shutdown(ctx)
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
