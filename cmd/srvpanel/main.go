package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"srvpanel/internal/config"
	"srvpanel/internal/constants"
	"srvpanel/internal/daemon"
	"srvpanel/internal/handlers"
	"srvpanel/internal/middleware"
	"srvpanel/internal/models"
	"srvpanel/internal/panel"
	"srvpanel/internal/utils"
	"srvpanel/internal/version"
)

// App wires the panel together: the daemon link, the stats channel, the view
// model, the browser hub, and the HTTP surface.
type App struct {
	cfg         *config.Config
	logger      *utils.Logger
	viewModel   *panel.ViewModel
	client      *daemon.Client
	channel     *panel.Channel
	wsHub       *middleware.Hub
	rateLimiter *middleware.RateLimiter
	releases    []func()
}

func main() {
	configPath := flag.String("config", "", "path to the panel config file (JSON)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := utils.NewLogger(cfg.LogFile)
	defer logger.Close()

	app := &App{
		cfg:         cfg,
		logger:      logger,
		viewModel:   panel.NewViewModel(cfg.Server.Limits, cfg.Server.Allocations),
		client:      daemon.NewClient(cfg.DaemonURL, logger),
		wsHub:       middleware.NewHub(logger),
		rateLimiter: middleware.NewRateLimiter(rate.Every(time.Minute/100), 10),
	}

	// New browsers immediately receive the current model; every recompute is
	// then fanned out through the hub.
	app.wsHub.OnRegisterSend(func() []byte { return marshalModel(app.viewModel.Model()) })
	go app.wsHub.Run()
	app.viewModel.OnRender(func(m panel.DisplayModel) {
		if frame := marshalModel(m); frame != nil {
			app.wsHub.Broadcast(frame)
		}
	})

	// Lifecycle status rides the same daemon link as the stats events.
	app.releases = append(app.releases, app.client.Subscribe(constants.EventStatus, func(payload string) {
		app.viewModel.SetStatus(models.Status(payload))
	}))
	app.channel = panel.OpenChannel(app.client, app.viewModel.ApplySnapshot)
	app.client.Start()

	srv := &http.Server{
		Addr:           ":" + strconv.Itoa(cfg.ListenPort),
		Handler:        setupRouter(app),
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Starting panel for %q on port %d (daemon %s)", cfg.Server.Name, cfg.ListenPort, cfg.DaemonURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down panel...")

	// Release subscriptions before the transport goes away so no callback
	// fires during teardown.
	app.channel.Close()
	for _, release := range app.releases {
		release()
	}
	app.client.Close()
	app.rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Panel exited")
}

func marshalModel(m panel.DisplayModel) []byte {
	frame, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return frame
}

func setupRouter(app *App) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))

	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	// Rate limiting - 100 requests per minute per IP
	r.Use(app.rateLimiter.Middleware())

	panelHandlers := handlers.NewPanelHandlers(app.cfg.Server.Name, app.viewModel, app.wsHub, app.logger)

	r.GET("/healthz", panelHandlers.Health)

	api := r.Group("/api")
	{
		api.GET("/server", panelHandlers.GetServer)
		api.GET("/server/resources", panelHandlers.GetResources)
	}

	r.GET("/ws", app.wsHub.HandleWebSocket())

	return r
}
