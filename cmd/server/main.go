package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/quizcraft/grammarquiz/internal/api/http"
	"github.com/quizcraft/grammarquiz/internal/auth"
	"github.com/quizcraft/grammarquiz/internal/config"
	"github.com/quizcraft/grammarquiz/internal/db"
	"github.com/quizcraft/grammarquiz/internal/genai"
	"github.com/quizcraft/grammarquiz/internal/quiz"
	"github.com/quizcraft/grammarquiz/internal/storage"
	"github.com/quizcraft/grammarquiz/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	if cfg.GenAIAPIKey == "" {
		log.Fatal("GENAI_API_KEY not configured")
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	st := store.NewSQLStore(dbh, cfg.DBDriver)

	// --- Model client + quiz domain ---
	model := genai.New(genai.Config{
		BaseURL: cfg.GenAIBaseURL,
		Model:   cfg.GenAIModel,
		APIKey:  cfg.GenAIAPIKey,
	})
	gen := quiz.NewGenerator(model)
	eval := quiz.NewEvaluator(model)
	attempts := quiz.NewManager()

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second)) // model calls are slow

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	var authSvc *auth.Service
	if cfg.EnableLocalAuth {
		authSvc = auth.NewService(cfg.AuthHMACSecret, cfg.AuthUser, cfg.AuthPassHash)
		r.Post("/auth/login", auth.LoginHandler(authSvc))
	}

	r.Group(func(pr chi.Router) {
		if authSvc != nil {
			pr.Use(auth.JWTMiddleware(authSvc))
		}

		pr.Get("/meta", api.MetaHandler())

		pr.Post("/quizzes", api.GenerateQuizHandler(attempts, gen))
		pr.Get("/quizzes/{attemptID}", api.GetQuizHandler(attempts))
		pr.Post("/quizzes/{attemptID}/start", api.StartQuizHandler(attempts))
		pr.Post("/quizzes/{attemptID}/navigate", api.NavigateHandler(attempts))
		pr.Post("/quizzes/{attemptID}/answers", api.AnswerHandler(attempts, eval, st, bs))
		pr.Post("/quizzes/{attemptID}/finish", api.FinishQuizHandler(attempts, st))
		pr.Delete("/quizzes/{attemptID}", api.DiscardQuizHandler(attempts))

		pr.Get("/sessions", api.ListSessionsHandler(st))
		pr.Get("/sessions/{sessionID}/questions", api.SessionQuestionsHandler(st))
		pr.Delete("/sessions/{sessionID}", api.DeleteSessionHandler(st))
		pr.Delete("/sessions", api.ClearHistoryHandler(st))

		pr.Get("/stats/overall", api.OverallStatsHandler(st))
		pr.Get("/stats/topics", api.TopicStatsHandler(st))
		pr.Get("/stats/topics/{topic}/history", api.TopicHistoryHandler(st))

		pr.Route("/assets", func(ar chi.Router) {
			api.MountAssets(ar, bs)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s, model=%s)", cfg.HTTPAddr, cfg.DBDriver, cfg.GenAIModel)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
