package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pysugar/meli-eco-nexus/internal/auth/meli"
	"github.com/pysugar/meli-eco-nexus/internal/auth/token"
	"github.com/pysugar/meli-eco-nexus/internal/config"
	"github.com/pysugar/meli-eco-nexus/internal/db"
	"github.com/pysugar/meli-eco-nexus/internal/marketplace"
	"github.com/pysugar/meli-eco-nexus/internal/session"
	"github.com/pysugar/meli-eco-nexus/internal/web/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if !cfg.CredentialsConfigured() {
		log.Println("⚠️ WARNING: Mercado Libre API credentials (MELI_CLIENT_ID, MELI_CLIENT_SECRET, MELI_REDIRECT_URI) are not set.")
		log.Println("⚠️ The server will run, but authentication will fail until they are configured.")
	}

	if err := marketplace.InitSites(cfg.SitesFile); err != nil {
		log.Printf("⚠️ Site catalog: %v (using built-in defaults)", err)
	}
	if _, ok := marketplace.LookupSite(cfg.SiteID); !ok {
		log.Printf("⚠️ Unknown site %q, known sites: %v", cfg.SiteID, marketplace.SiteIDs())
	}

	database, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	creds := meli.Credentials{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
	}
	authURL := meli.DefaultAuthURL
	if site, ok := marketplace.LookupSite(cfg.SiteID); ok {
		authURL = site.AuthURL
	}

	store := session.NewGormStore(database)
	authority := meli.NewAuthority(creds, authURL, cfg.HTTPTimeout)
	tokenManager := token.NewManager(store, authority, cfg.TokenSkew)
	searchClient := marketplace.NewClient(cfg.HTTPTimeout)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(session.Middleware)

	r.Get("/", handlers.HomeHandler(store, cfg.SiteID))
	r.Get("/healthz", handlers.HealthzHandler())
	r.Get("/login", handlers.LoginHandler(creds, cfg.SiteID))
	r.Get("/callback", handlers.CallbackHandler(authority, store))
	r.Get("/products", handlers.ProductsHandler(tokenManager, searchClient, cfg.SiteID, cfg.DefaultQuery))
	r.Post("/logout", handlers.LogoutHandler(store, tokenManager))

	log.Printf("🚀 meli-eco-nexus starting on http://%s (site: %s)", cfg.Addr(), cfg.SiteID)
	if err := http.ListenAndServe(cfg.Addr(), r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
