package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"telegramdebtlog/pkg/auth"
	"telegramdebtlog/pkg/bot"
	"telegramdebtlog/pkg/bot/telegramadapter"
	"telegramdebtlog/pkg/config"
	"telegramdebtlog/pkg/fsm"
	"telegramdebtlog/pkg/httpapi"
	"telegramdebtlog/pkg/records"
	"telegramdebtlog/pkg/router"
	"telegramdebtlog/pkg/state"
	"telegramdebtlog/pkg/storage"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	texts, err := config.LoadTexts(settings.TextsFile)
	if err != nil {
		log.Fatalf("Failed to load texts: %v", err)
	}
	loc, err := settings.Location()
	if err != nil {
		log.Fatalf("Invalid time zone: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, settings.Database.Driver, settings.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}()

	authService, err := auth.NewService(store)
	if err != nil {
		log.Fatalf("Failed to create auth service: %v", err)
	}
	if err := authService.Bootstrap(ctx, settings.SeedAdminID); err != nil {
		log.Fatalf("Failed to bootstrap admins: %v", err)
	}

	botClient, err := bot.NewClient(settings.BotToken)
	if err != nil {
		log.Fatalf("Failed to initialize bot client: %v", err)
	}
	botPort, err := telegramadapter.New(botClient, log.Default())
	if err != nil {
		log.Fatalf("Failed to create telegram adapter: %v", err)
	}

	engine := fsm.NewEngine(state.NewStore(fsm.NewFSMCreator()), fsm.WithLocation(loc))
	manager, err := records.NewManager(store, engine)
	if err != nil {
		log.Fatalf("Failed to create record manager: %v", err)
	}
	r, err := router.New(router.Dependencies{
		Bot:     botPort,
		Engine:  engine,
		Auth:    authService,
		Records: manager,
		Texts:   texts,
	})
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	server := httpapi.NewServer(settings.HTTPAddr, store, engine)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		pollUpdates(gctx, botClient, r, settings.PollTimeout)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("Stopped with error: %v", err)
		return
	}
	log.Println("Shutdown complete.")
}

// pollUpdates handles each update in its own goroutine until ctx is done and
// waits for in-flight handlers before returning. Events of one user are
// serialized inside the router.
func pollUpdates(ctx context.Context, client *bot.Client, r *router.Router, timeout int) {
	updates := client.GetUpdatesChan(timeout)
	log.Println("Starting update processing...")

	var inflight sync.WaitGroup
	defer inflight.Wait()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.UpdateID == 0 {
				continue
			}
			inflight.Add(1)
			go func() {
				defer inflight.Done()
				r.HandleUpdate(ctx, update)
			}()
		case <-ctx.Done():
			log.Println("Stopping update processing loop...")
			client.StopReceivingUpdates()
			return
		}
	}
}
