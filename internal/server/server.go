package server

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/hyoshino/fruitledger/internal/handler"
	"github.com/hyoshino/fruitledger/internal/ledger"
	appmw "github.com/hyoshino/fruitledger/internal/middleware"
	"github.com/hyoshino/fruitledger/internal/repository"
	"github.com/hyoshino/fruitledger/internal/settlement"
)

type Server struct {
	e          *echo.Echo
	engine     *ledger.Engine
	store      *repository.LedgerStore
	walletRepo repository.WalletRepository
	wallet     *settlement.Switchable
	sha        string
	build      string
}

// New wires the ledger engine behind the HTTP surface. db may be nil: with
// persistent set, the engine rejects mutations (database not initialized)
// until SetDB attaches the connection — listings handed out before the
// persisted state is restored would otherwise be lost. Without persistent it
// runs memory-only for good.
func New(db *gorm.DB, persistent bool, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Debug-UID"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			return false, nil
		},
	}))

	listingRepo := repository.NewListingRepository(db)
	repRepo := repository.NewReputationRepository(db)
	store := repository.NewLedgerStore(db, listingRepo, repRepo)
	walletRepo := repository.NewWalletRepository(db)

	wallet := settlement.NewSwitchable(settlement.NewMemoryWallet())
	var engineStore ledger.Store
	if db != nil || persistent {
		wallet.Swap(walletRepo)
		engineStore = store
	}
	engine := ledger.New(wallet, engineStore)

	listingHandler := handler.NewListingHandler(engine)
	ratingHandler := handler.NewRatingHandler(engine)
	walletHandler := handler.NewWalletHandler(wallet)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api")
	authMw, err := appmw.NewAuthMiddleware(context.Background())
	if err != nil {
		log.Printf("firebase auth disabled (%v); falling back to X-Debug-UID", err)
		api.Use(appmw.DebugUID)
		api.POST("/listings", listingHandler.Create)
		api.POST("/listings/:index/purchase", listingHandler.Purchase)
		api.PUT("/listings/:index/price", listingHandler.Reprice)
		api.POST("/listings/:index/rating", ratingHandler.Rate)
		api.GET("/me/wallet", walletHandler.Get)
		api.POST("/me/wallet/deposit", walletHandler.Deposit)
	} else {
		api.POST("/listings", listingHandler.Create, authMw.RequireAuth)
		api.POST("/listings/:index/purchase", listingHandler.Purchase, authMw.RequireAuth)
		api.PUT("/listings/:index/price", listingHandler.Reprice, authMw.RequireAuth)
		api.POST("/listings/:index/rating", ratingHandler.Rate, authMw.RequireAuth)
		api.GET("/me/wallet", walletHandler.Get, authMw.RequireAuth)
		api.POST("/me/wallet/deposit", walletHandler.Deposit, authMw.RequireAuth)
	}
	api.GET("/listings", listingHandler.List)
	api.GET("/sellers/:uid/rating", ratingHandler.GetSellerRating)

	return &Server{
		e:          e,
		engine:     engine,
		store:      store,
		walletRepo: walletRepo,
		wallet:     wallet,
		sha:        sha,
		build:      buildTime,
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// Engine exposes the ledger for seeding and tests.
func (s *Server) Engine() *ledger.Engine {
	return s.engine
}

// Handler exposes the route tree for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

// SetDB attaches persistence after startup. The persisted ledger is restored
// first, while the engine's own store still rejects writes; only then do the
// repositories get the connection. Nothing a client committed can be replaced
// by the restore, because no mutation commits before this returns.
func (s *Server) SetDB(db *gorm.DB) error {
	loader := repository.NewLedgerStore(db,
		repository.NewListingRepository(db),
		repository.NewReputationRepository(db))
	listings, reps, err := loader.Load(context.Background())
	if err != nil {
		return err
	}
	s.engine.Restore(listings, reps)
	s.engine.AttachStore(s.store)
	s.store.SetDB(db)
	s.walletRepo.SetDB(db)
	s.wallet.Swap(s.walletRepo)
	return nil
}
