// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server and scheduler.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/eventhive/eventhive/internal/auth"
	"github.com/eventhive/eventhive/internal/config"
	"github.com/eventhive/eventhive/internal/database"
	"github.com/eventhive/eventhive/internal/handler"
	"github.com/eventhive/eventhive/internal/notify"
	"github.com/eventhive/eventhive/internal/realtime"
	"github.com/eventhive/eventhive/internal/repository"
	"github.com/eventhive/eventhive/internal/scheduler"
	"github.com/eventhive/eventhive/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx, cfg.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	if err := database.InitSchema(ctx, pool); err != nil {
		log.Fatalf("database: %v", err)
	}
	log.Println("connected to PostgreSQL")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	eventRepo := repository.NewEventRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)
	msgRepo := repository.NewMessageRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	verifier := auth.NewVerifier(cfg.TokenSecret, userRepo, nil)

	eventSvc := service.NewEventService(eventRepo, regRepo)
	admissionSvc := service.NewAdmissionService(regRepo)
	lifecycleSvc := service.NewLifecycleService(eventRepo, nil)

	var sender service.Sender
	if cfg.SMTPHost != "" {
		smtpSender, err := notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
		if err != nil {
			log.Fatalf("notify: %v", err)
		}
		sender = smtpSender
	} else {
		log.Println("no SMTP relay configured, reminders go to the log")
		sender = notify.LogSender{}
	}
	reminderSvc := service.NewReminderService(eventRepo, regRepo, sender, cfg.ReminderWindow, nil)

	gateway := realtime.NewGateway(verifier, eventRepo, msgRepo, questionRepo)
	eventHandler := handler.NewEventHandler(eventSvc, admissionSvc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.Logger)
	r.Use(handler.CORS)

	r.Get("/health", handler.HealthCheck)
	eventHandler.Routes(r, handler.RequireAuth(verifier))
	r.Handle("/ws", gateway.Handler())

	// ── 4. Scheduler: lifecycle + reminders share one non-overlapping tick.
	tick := scheduler.New("tick", cfg.TickInterval, func(ctx context.Context) error {
		if err := lifecycleSvc.Tick(ctx); err != nil {
			log.Printf("lifecycle: %v", err)
		}
		return reminderSvc.Tick(ctx)
	})
	tick.Start(ctx)
	defer tick.Stop()

	// ── 5. Serve until SIGINT or SIGTERM. ─────────────────────────────────
	// Only the header read gets a timeout: read/write timeouts would kill
	// long-lived WebSocket connections on /ws.
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
	log.Println("server stopped")
}
