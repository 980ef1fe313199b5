package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"khakiestate/config"
	"khakiestate/internal/database"
	"khakiestate/internal/queue"
	"khakiestate/internal/repository"
	"khakiestate/internal/router"
	"khakiestate/internal/worker"
	"khakiestate/pkg/cloudinary"
	"khakiestate/pkg/mailer"
	"khakiestate/pkg/sms"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := database.SeedNotificationTypes(db); err != nil {
		log.Fatalf("seed notification types: %v", err)
	}
	if err := database.ValidateNotificationTypes(db); err != nil {
		log.Fatalf("notification types: %v", err)
	}
	if err := database.SeedCategories(db); err != nil {
		log.Fatalf("seed categories: %v", err)
	}
	database.SeedAdmin(db)

	cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		log.Fatalf("cloudinary: %v", err)
	}

	var q queue.Queue
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		q = queue.NewRedis(client, cfg.Redis.QueueKey)
		log.Printf("[queue] using redis at %s", cfg.Redis.Addr)
	} else {
		q = queue.NewMemory(256)
		log.Printf("[queue] REDIS_ADDR not set, using in-process queue")
	}

	mail := mailer.New(mailer.Config{
		Host:     cfg.Mail.SMTPHost,
		Port:     cfg.Mail.SMTPPort,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})
	var emailSender worker.EmailSender
	if mail != nil {
		emailSender = mail
	} else {
		log.Printf("[mail] SMTP_HOST not set, email delivery disabled")
	}

	deliverer := worker.NewDeliverer(
		repository.NewNotificationRepository(db),
		repository.NewUserRepository(db),
		repository.NewResidentRepository(db),
		repository.NewStaffRepository(db),
		emailSender,
		sms.StubSender{},
	)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	workersDone := make(chan struct{})
	go func() {
		deliverer.Run(workerCtx, q, cfg.Delivery.Workers)
		close(workersDone)
	}()

	engine := router.Setup(cfg, db, cloud, q)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}

	// Stop accepting delivery jobs, then let in-flight ones finish.
	_ = q.Close()
	stopWorkers()
	select {
	case <-workersDone:
	case <-time.After(5 * time.Second):
		log.Println("delivery workers did not drain in time")
	}
	fmt.Println("server stopped")
}
