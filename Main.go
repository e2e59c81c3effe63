package main

import (
	"FoodieHub/config"
	"FoodieHub/jwt"
	"FoodieHub/routers"
	"FoodieHub/session"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "foodiehub: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig(config.DefaultPath)
	if err != nil {
		return err
	}

	log, err := config.SetupLogger(cfg)
	if err != nil {
		return err
	}

	db, err := config.SetupMySQLConnection(cfg)
	if err != nil {
		return err
	}
	defer func() {
		dbInstance, _ := db.DB()
		_ = dbInstance.Close()
	}()

	rdb := config.SetupRedisConnection(cfg)
	defer rdb.Close()

	keys, err := jwt.LoadKeys(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//每個購物者工作階段擁有一個購物車，閒置過久則清除
	sessions := session.NewRegistry(cfg.Session.IdleTimeout, log)
	go sessions.Run(ctx, cfg.Session.SweepInterval)

	router, err := routers.SetupRouters(routers.Dependencies{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Keys:     keys,
		Sessions: sessions,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
		//關閉時一併結束購物車事件串流
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	log.WithField("addr", cfg.Server.Addr).Info("server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
