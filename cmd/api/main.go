package main

// @title           Socialite API
// @version         1.0
// @description     Social network API with token-authenticated accounts, follows, posts, comments and notifications.
// @BasePath        /api/v1

// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization
// @description Opaque token, sent as "Token <value>"

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/yhamdan/socialite/docs"
	"github.com/yhamdan/socialite/internal/account"
	"github.com/yhamdan/socialite/internal/auth"
	"github.com/yhamdan/socialite/internal/comment"
	"github.com/yhamdan/socialite/internal/config"
	"github.com/yhamdan/socialite/internal/database"
	"github.com/yhamdan/socialite/internal/media"
	"github.com/yhamdan/socialite/internal/notification"
	"github.com/yhamdan/socialite/internal/post"
	mw "github.com/yhamdan/socialite/pkg/middleware"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	log.Println("Connected to database successfully")

	// Media storage for profile pictures
	mediaStore, err := media.NewStore(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize media storage: %v", err)
	}

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// Auth tokens
	authRepo := auth.NewRepository(db)
	authService := auth.NewService(authRepo)

	// Account feature
	accountRepo := account.NewRepository(db)
	accountService := account.NewService(accountRepo, authService, mediaStore, notificationService)
	accountHandler := account.NewHandler(accountService)

	// Post feature
	postRepo := post.NewRepository(db)
	postService := post.NewService(postRepo, accountService, notificationService)
	postHandler := post.NewHandler(postService)

	// Comment feature
	commentRepo := comment.NewRepository(db)
	commentService := comment.NewService(commentRepo, postRepo, accountService, notificationService)
	commentHandler := comment.NewHandler(commentService)

	// Token authentication middleware
	authMW := mw.Auth(authService)

	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Uploaded media
	r.Handle(cfg.MediaBaseURL+"/*", http.StripPrefix(cfg.MediaBaseURL+"/", http.FileServer(http.Dir(cfg.MediaDir))))

	// API docs
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Register/login are anonymous; the rest of the account routes
		// apply the auth middleware themselves.
		r.Mount("/accounts", accountHandler.Routes(authMW))

		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Mount("/posts", postHandler.Routes())
			r.Mount("/comments", commentHandler.Routes())
			r.Mount("/notifications", notificationHandler.Routes())
		})
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
