package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/crowd/model"
	"github.com/zucenko/crowd/server"
)

type Server struct {
	router    *way.Router
	SimServer *server.SimServer
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("reading .env: %v", err)
	}

	cfg, err := server.LoadConfig(os.Getenv("CROWD_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	server.SetLogLevel(cfg.LogLevel)

	var layout *model.Grid
	if path := os.Getenv("CROWD_LAYOUT"); path != "" {
		if layout, err = server.LoadLayout(path); err != nil {
			log.Fatalf("layout: %v", err)
		}
		log.WithFields(log.Fields{"path": path, "size": layout.Size}).Info("layout loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := Server{
		SimServer: server.NewSimServer(cfg, layout),
	}
	go s.SimServer.Loop(ctx)
	s.routes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		log.Printf("Defaulting to port %s", port)
	}
	srv := &http.Server{Addr: ":" + port, Handler: s.router}
	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		srv.Shutdown(context.Background())
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalln(err)
	}
}
