package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/devconnector-api/internal/http/health"
	"github.com/janisto/devconnector-api/internal/http/v1/routes"
	"github.com/janisto/devconnector-api/internal/platform/auth"
	"github.com/janisto/devconnector-api/internal/platform/config"
	"github.com/janisto/devconnector-api/internal/platform/firebase"
	"github.com/janisto/devconnector-api/internal/platform/logging"
	appmiddleware "github.com/janisto/devconnector-api/internal/platform/middleware"
	"github.com/janisto/devconnector-api/internal/platform/mongodb"
	"github.com/janisto/devconnector-api/internal/platform/respond"
	githubsvc "github.com/janisto/devconnector-api/internal/service/github"
	profilesvc "github.com/janisto/devconnector-api/internal/service/profile"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

const (
	apiPrefix    = "/api"
	docsPath     = "/api-docs"
	maxBodyBytes = 1 << 20
)

// dependencies are the collaborators the router needs.
type dependencies struct {
	verifier    auth.Verifier
	profiles    profilesvc.Service
	github      githubsvc.Service
	checks      []health.Check
	corsOrigins []string
	projectID   string
}

// newRouter builds the HTTP handler: base middleware, /health and the huma
// API mounted under /api.
func newRouter(deps dependencies) (*chi.Mux, huma.API) {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(apiPrefix+docsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(deps.corsOrigins...),
		appmiddleware.RequestID(),
		// RealIP extracts client IP from X-Real-IP or X-Forwarded-For headers.
		// SECURITY: Only use behind a trusted reverse proxy (e.g., Cloud Run, nginx).
		// Without a trusted proxy, clients can spoof their IP address.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(maxBodyBytes),
		logging.RequestLogger(deps.projectID),
		logging.AccessLogger(),
		respond.Recoverer(),
	)

	router.Get("/health", health.Handler(deps.checks...))

	cfg := huma.DefaultConfig("DevConnector API", Version)
	cfg.DocsPath = docsPath
	cfg.Servers = []*huma.Server{{URL: apiPrefix}}
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
	}

	var api huma.API
	router.Route(apiPrefix, func(r chi.Router) {
		r.NotFound(respond.NotFoundHandler())
		r.MethodNotAllowed(respond.MethodNotAllowedHandler())
		api = humachi.New(r, cfg)
	})

	// Add CBOR content type to OpenAPI requests and responses
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation, addCBORContent)

	routes.Register(api, deps.verifier, deps.profiles, deps.github)
	return router, api
}

func addCBORContent(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = jsonContent
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if jsonContent, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = jsonContent
		}
	}
}

// backends holds the connections opened for the configured stack so they
// can be closed on shutdown.
type backends struct {
	deps     dependencies
	firebase *firebase.Clients
	mongo    *mongodb.Client
}

func (b *backends) Close(ctx context.Context) {
	if err := b.mongo.Close(ctx); err != nil {
		logging.LogError(ctx, "mongodb close error", err)
	}
	if err := b.firebase.Close(); err != nil {
		logging.LogError(ctx, "firebase close error", err)
	}
}

// openBackends connects the store, verifier and GitHub client selected by cfg.
func openBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	b := &backends{deps: dependencies{
		corsOrigins: cfg.CORSOrigins,
		projectID:   cfg.Firebase.ProjectID,
	}}

	if cfg.NeedsFirebase() {
		clients, err := firebase.InitializeClients(ctx, firebase.Config{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsFile: cfg.Firebase.Credentials,
			WithAuth:        cfg.Auth.Mode == config.AuthFirebase,
			WithFirestore:   cfg.Store.Backend == config.StoreFirestore,
		})
		if err != nil {
			return nil, err
		}
		b.firebase = clients
	}

	var store profilesvc.Store
	switch cfg.Store.Backend {
	case config.StoreFirestore:
		store = profilesvc.NewFirestoreStore(b.firebase.Firestore)
	case config.StoreMongo:
		client, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			b.Close(ctx)
			return nil, err
		}
		b.mongo = client
		mongoStore := profilesvc.NewMongoStore(client.DB)
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			b.Close(ctx)
			return nil, err
		}
		store = mongoStore
		b.deps.checks = append(b.deps.checks, health.Check{Name: "mongo", Fn: client.Ping})
	case config.StoreMemory:
		store = profilesvc.NewMemoryStore()
	default:
		b.Close(ctx)
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	var opts []profilesvc.Option
	switch cfg.Auth.Mode {
	case config.AuthFirebase:
		b.deps.verifier = auth.NewFirebaseVerifier(b.firebase.Auth)
		opts = append(opts, profilesvc.WithAccountRemover(auth.NewFirebaseAccountRemover(b.firebase.Auth)))
	case config.AuthJWT:
		b.deps.verifier = auth.NewJWTVerifier(cfg.Auth.JWTSecret)
	default:
		b.Close(ctx)
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
	b.deps.profiles = profilesvc.NewManager(store, opts...)

	b.deps.github = githubsvc.NewClient(
		&http.Client{Timeout: cfg.GitHub.Timeout},
		githubsvc.WithBaseURL(cfg.GitHub.BaseURL),
		githubsvc.WithToken(cfg.GitHub.Token),
		githubsvc.WithClientCredentials(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret),
	)
	return b, nil
}

func main() {
	defer func() {
		_ = logging.Sync()
	}()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logging.LogFatal(ctx, "config load failed", err)
	}
	respond.Install()

	b, err := openBackends(ctx, cfg)
	if err != nil {
		logging.LogFatal(ctx, "backend init failed", err,
			zap.String("store", cfg.Store.Backend), zap.String("auth", cfg.Auth.Mode))
	}

	router, _ := newRouter(b.deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}

	listenErr := make(chan error, 1)
	go func() {
		logging.LogInfo(ctx, "server listening", zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store.Backend), zap.String("auth", cfg.Auth.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		logging.LogError(ctx, "listen failed", err, zap.String("addr", srv.Addr))
		b.Close(ctx)
		_ = logging.Sync()
		os.Exit(1)
	case <-stop:
		logging.LogInfo(ctx, "shutdown signal received")
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogError(shutdownCtx, "server shutdown error", err)
	}
	b.Close(shutdownCtx)
	logging.LogInfo(ctx, "server exited")
}
