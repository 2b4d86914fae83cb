package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	cartservice "github.com/nahomjim91/spice-marketplace/internal/cart/service"
	catalogdomain "github.com/nahomjim91/spice-marketplace/internal/catalog/domain"
	checkoutservice "github.com/nahomjim91/spice-marketplace/internal/checkout/service"
	"github.com/nahomjim91/spice-marketplace/internal/config"
	obsmiddleware "github.com/nahomjim91/spice-marketplace/internal/observability/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultSessionHeader = "X-Cart-Session"

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterRoutes()
	}),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, gatherer prometheus.Gatherer) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(log, obsmiddleware.MiddlewareConfig{
		Debug:           cfg.LogLevel == "debug",
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type ServerParams struct {
	fx.In

	Engine      *gin.Engine
	Config      config.Config
	Log         *zap.Logger
	CatalogSvc  catalogdomain.Service
	Carts       *cartservice.Manager
	CheckoutSvc *checkoutservice.Service
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	catalogSvc    catalogdomain.Service
	carts         *cartservice.Manager
	checkoutSvc   *checkoutservice.Service
	sessionHeader string
}

func NewServer(p ServerParams) *Server {
	header := strings.TrimSpace(p.Config.Cart.SessionHeader)
	if header == "" {
		header = defaultSessionHeader
	}
	return &Server{
		engine:        p.Engine,
		cfg:           p.Config,
		log:           p.Log.Named("http.server"),
		catalogSvc:    p.CatalogSvc,
		carts:         p.Carts,
		checkoutSvc:   p.CheckoutSvc,
		sessionHeader: header,
	}
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api")

	api.GET("/products", s.ListProducts)
	api.GET("/products/:id", s.GetProduct)

	cart := api.Group("/cart", s.CartSession())
	cart.GET("", s.GetCart)
	cart.DELETE("", s.ClearCart)
	cart.POST("/items", s.AddCartItem)
	cart.PATCH("/items/:id", s.UpdateCartItem)
	cart.DELETE("/items/:id", s.RemoveCartItem)
	cart.POST("/toggle", s.ToggleCart)
	cart.POST("/open", s.OpenCart)
	cart.POST("/close", s.CloseCart)

	api.POST("/checkout", s.CartSession(), s.Checkout)
	api.GET("/orders/:id", s.GetOrder)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}
