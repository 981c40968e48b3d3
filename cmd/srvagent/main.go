package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"srvpanel/internal/agent"
	"srvpanel/internal/utils"
	"srvpanel/internal/version"
)

func main() {
	listen := flag.String("listen", ":8081", "address to serve the stats websocket on")
	rootPath := flag.String("root", "/", "path whose filesystem usage is reported as disk")
	interval := flag.Duration("interval", 5*time.Second, "sampling and streaming interval")
	logFile := flag.String("log", "", "log file path (defaults next to the executable)")
	flag.Parse()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := utils.NewLogger(*logFile)
	defer logger.Close()

	sampler := agent.NewSampler(*rootPath, *interval, logger)
	sampler.Start()

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.String()})
	})
	r.GET("/ws", agent.NewServer(sampler, logger).HandleWebSocket())

	srv := &http.Server{
		Addr:           *listen,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Starting agent on %s (root %s, interval %s)", *listen, *rootPath, *interval)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Agent failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down agent...")

	sampler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Agent forced to shutdown:", err)
	}

	log.Println("Agent exited")
}
