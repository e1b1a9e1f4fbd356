package app

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/RomanPilyushin/Privatbank/internal/config"
	"github.com/RomanPilyushin/Privatbank/internal/storage"
)

type App struct {
	cfg    config.Config
	store  *storage.Store
	router *gin.Engine
}

func New(cfg config.Config) (*App, error) {
	a := &App{cfg: cfg}

	store, err := storage.Open(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	a.store = store

	a.router = newRouter(cfg, store)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Backend names the store resolved at startup ("postgres" or "sqlite").
func (a *App) Backend() string {
	return a.store.Backend
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	if a.store != nil {
		a.store.Close()
	}
	return nil
}

func newRouter(cfg config.Config, store *storage.Store) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, store)
	return r
}
