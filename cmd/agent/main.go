package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"coinclass/agent/internal/api"
	"coinclass/agent/internal/attendance"
	"coinclass/agent/internal/balance"
	"coinclass/agent/internal/config"
	internalhttp "coinclass/agent/internal/http"
	"coinclass/agent/internal/notify"
	"coinclass/agent/internal/session"
)

// logDisplay writes incoming notifications to the process log, the agent's
// stand-in for an on-screen toast.
type logDisplay struct{}

func (logDisplay) Display(n notify.Notification) {
	log.Printf("notification #%d: %s: %s", n.ID, n.Title, n.Message)
}

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := session.New()
	client := api.New(cfg.BackendURL, cfg.RequestTimeout, sess, func() {
		sess.Clear()
		log.Printf("backend session expired, credentials required again")
	})

	seen := notify.NewMemorySeen()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatalf("redis ping failed: %v", err)
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}()
		seen = notify.NewRedisSeen(redisClient, cfg.SeenTTL)
	}

	if cfg.AgentUsername != "" {
		if err := sess.Login(ctx, client, cfg.AgentUsername, cfg.AgentPassword); err != nil {
			log.Fatalf("auto login failed: %v", err)
		}
		log.Printf("logged in as %s (%s)", cfg.AgentUsername, sess.Role())
	}

	balances := &balance.Cache{}
	svc := attendance.NewService(client, cfg.TeacherRewardRate)

	poller := notify.New(client, logDisplay{}, seen, balances, cfg.PollInterval)
	poller.Gate = func() bool {
		return sess.Active() && sess.Role() == session.RoleStudent
	}
	poller.Start(ctx)

	server := internalhttp.NewServer(sess, client, svc, balances)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("agent listening on %s (backend %s)", cfg.HTTPAddr, cfg.BackendURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
