package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpAdapter "github.com/khoahotran/devfolio/adapters/http"
	"github.com/khoahotran/devfolio/adapters/llm"
	"github.com/khoahotran/devfolio/adapters/media_storage"
	"github.com/khoahotran/devfolio/adapters/persistence"
	"github.com/khoahotran/devfolio/internal/application/service"
	"github.com/khoahotran/devfolio/internal/application/store"
	authUC "github.com/khoahotran/devfolio/internal/application/usecase/auth"
	blogUC "github.com/khoahotran/devfolio/internal/application/usecase/blog"
	mediaUC "github.com/khoahotran/devfolio/internal/application/usecase/media"
	postUC "github.com/khoahotran/devfolio/internal/application/usecase/post"
	profileUC "github.com/khoahotran/devfolio/internal/application/usecase/profile"
	"github.com/khoahotran/devfolio/internal/config"
	"github.com/khoahotran/devfolio/internal/domain/portfolio"
	"github.com/khoahotran/devfolio/pkg/auth"
	"github.com/khoahotran/devfolio/pkg/logger"
	"github.com/khoahotran/devfolio/pkg/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	log := logger.NewZapLogger(cfg.App.Env)
	defer func() { _ = log.Sync() }()
	log.Info("Starting devfolio API server", zap.String("env", cfg.App.Env), zap.String("strategy", cfg.Storage.Strategy))

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.NewTracerProvider(cfg, log, "devfolio-api")
	if err != nil {
		log.Fatal("Failed to initialize tracer", err)
	}

	// Persistence
	backend, err := persistence.OpenBackend(ctx, cfg, log, true)
	if err != nil {
		log.Fatal("Failed to open storage backend", err)
	}

	opts := []store.Option{
		store.WithLogger(log),
		store.WithNotifier(store.NotifierFunc(func(err error) {
			log.Error("Portfolio persistence failed", err)
		})),
	}
	if cfg.Storage.Seed {
		opts = append(opts, store.WithSeed(portfolio.Seed(time.Now())))
	}
	portfolioStore := store.New(backend.Repository, opts...)
	portfolioStore.Init(ctx)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)

	var uploader service.Uploader
	if cfg.Cloudinary.CloudName != "" {
		if uploader, err = media_storage.NewCloudinaryAdapter(cfg, log); err != nil {
			log.Fatal("Failed to initialize uploader", err)
		}
	} else {
		log.Warn("Cloudinary not configured, images stay inline")
	}

	suggester, err := llm.NewTagSuggester(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tag suggester", err)
	}

	var denylist service.TokenDenylist
	if backend.Redis != nil {
		denylist = persistence.NewRedisDenylist(backend.Redis)
	} else {
		log.Warn("Redis not configured, revoked tokens are only remembered by this process")
		denylist = persistence.NewMemoryDenylist()
	}

	owner := authUC.Owner{
		ID:           cfg.Storage.OwnerID,
		Email:        cfg.Auth.OwnerEmail,
		PasswordHash: cfg.Auth.OwnerPasswordHash,
	}
	providers := map[string]*authUC.OAuthProvider{
		authUC.ProviderGoogle: authUC.GoogleProvider(
			cfg.OAuth.Google.ClientID,
			cfg.OAuth.Google.ClientSecret,
			cfg.OAuth.Google.RedirectURL,
		),
	}

	// Use Cases
	images := mediaUC.NewResolveImageUseCase(uploader, log)

	loginUseCase := authUC.NewLoginUseCase(owner, jwtSvc, log)
	logoutUseCase := authUC.NewLogoutUseCase(denylist, log)
	oauthUseCase := authUC.NewOAuthUseCase(owner, providers, jwtSvc, log)
	sessionUseCase := authUC.NewSessionUseCase(jwtSvc, denylist)

	profileUseCase := profileUC.NewProfileUseCase(portfolioStore, images, log)
	avatarUseCase := profileUC.NewAvatarUseCase(portfolioStore, images, log)

	createPostUseCase := postUC.NewCreatePostUseCase(portfolioStore, images, log)
	listPostsUseCase := postUC.NewListPostsUseCase(portfolioStore)
	updatePostUseCase := postUC.NewUpdatePostUseCase(portfolioStore, images, log)
	deletePostUseCase := postUC.NewDeletePostUseCase(portfolioStore, log)
	getPostUseCase := postUC.NewGetPostUseCase(portfolioStore)
	suggestTagsUseCase := postUC.NewSuggestTagsUseCase(suggester, log)

	createBlogUseCase := blogUC.NewCreateBlogPostUseCase(portfolioStore, images, log)
	updateBlogUseCase := blogUC.NewUpdateBlogPostUseCase(portfolioStore, images, log)
	deleteBlogUseCase := blogUC.NewDeleteBlogPostUseCase(portfolioStore, log)
	listBlogUseCase := blogUC.NewListBlogPostsUseCase(portfolioStore)
	getBlogUseCase := blogUC.NewGetBlogPostUseCase(portfolioStore, log)
	rssUseCase := blogUC.NewRSSUseCase(portfolioStore, portfolioStore, cfg.App.SiteURL, log)

	uploadMediaUseCase := mediaUC.NewUploadMediaUseCase(uploader, log)

	// HTTP Handlers
	router := httpAdapter.NewRouter(httpAdapter.Handlers{
		Auth:    httpAdapter.NewAuthHandler(loginUseCase, logoutUseCase, oauthUseCase, log),
		Profile: httpAdapter.NewProfileHandler(profileUseCase, avatarUseCase),
		Posts: httpAdapter.NewPostHandler(
			createPostUseCase,
			listPostsUseCase,
			updatePostUseCase,
			deletePostUseCase,
			getPostUseCase,
			suggestTagsUseCase,
		),
		Blog: httpAdapter.NewBlogHandler(
			createBlogUseCase,
			updateBlogUseCase,
			deleteBlogUseCase,
			listBlogUseCase,
			getBlogUseCase,
		),
		RSS:           httpAdapter.NewRSSHandler(rssUseCase, log),
		Media:         httpAdapter.NewMediaHandler(uploadMediaUseCase),
		Sessions:      sessionUseCase,
		SessionSecret: cfg.Auth.SessionSecret,
		Ready:         func() bool { return !portfolioStore.IsLoading() },
	}, log)

	config.Watch(func(name string) {
		log.Warn("Config file changed, restart to apply", zap.String("file", name))
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server stopped", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", err)
	}
	// flushes queued writes before the connections go away
	if err := portfolioStore.Close(); err != nil {
		log.Error("Failed to close portfolio store", err)
	}
	backend.Close()
	if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
		log.Error("Failed to flush traces", err)
	}
}
