package main

import (
	"context"
	"log"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	fsjetstream "github.com/go-monolith/mono/plugin/fs-jetstream"

	"github.com/magbay/LAN-Chat/config"
	"github.com/magbay/LAN-Chat/modules/activity"
	"github.com/magbay/LAN-Chat/modules/api"
	"github.com/magbay/LAN-Chat/modules/presence"
	"github.com/magbay/LAN-Chat/modules/uploads"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	errorsOnly, _ := cfg.ErrorLogsOnly()

	log.Println("=== LAN Chat ===")
	log.Printf("HTTP Port: %d", cfg.Port)
	log.Printf("Storage Path: %s", cfg.StoragePath)
	log.Printf("Max Upload Size: %d bytes", cfg.MaxUploadSize)

	logLevel := mono.LogLevelInfo
	if errorsOnly {
		logLevel = mono.LogLevelError
	}

	// Create mono application with embedded NATS JetStream
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.Shutdown),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
		mono.WithJetStreamStorageDir(cfg.StoragePath),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}

	// Uploaded images live in an object store bucket on the embedded server
	storagePlugin, err := fsjetstream.New(fsjetstream.Config{
		Buckets: []fsjetstream.BucketConfig{
			{
				Name:        uploads.BucketName,
				Description: "Uploaded chat images",
				MaxBytes:    cfg.UploadBucketMaxBytes,
				Storage:     fsjetstream.FileStorage,
				Compression: true,
			},
		},
	})
	if err != nil {
		log.Fatalf("Failed to create storage plugin: %v", err)
	}
	if err := app.RegisterPlugin(storagePlugin, "storage"); err != nil {
		log.Fatalf("Failed to register storage plugin: %v", err)
	}

	// Create modules
	presenceModule := presence.NewModule(presence.RoomConfig{
		MaxMessageRunes:  cfg.MaxMessageRunes,
		AnnouncePresence: cfg.AnnouncePresence,
	}, app.Logger())
	activityModule := activity.NewModule(app.Logger())
	uploadsModule := uploads.NewModule(app.Logger())
	apiModule := api.NewModule(api.Config{
		Addr:               cfg.Addr(),
		MaxUploadSize:      cfg.MaxUploadSize,
		SendQueueSize:      cfg.SendQueueSize,
		ChatRateLimit:      cfg.ChatRateLimit,
		ChatRateBurst:      cfg.ChatRateBurst,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, app.Logger())

	// The hub and the image store are not exposed via ServiceContainer
	apiModule.SetHub(presenceModule.GetHub())
	apiModule.SetImageStore(uploadsModule)

	// Order: independent modules first, then modules with dependencies
	// - presence: room state, hub, request/reply services, event emitter
	// - activity: event consumer keeping statistics
	// - uploads: image storage on the fs-jetstream plugin
	// - api: Fiber HTTP/WebSocket server, depends on presence and activity
	app.Register(presenceModule)
	app.Register(activityModule)
	app.Register(uploadsModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg.Port)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Shutdown,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(port int) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("Endpoints (http://localhost:%d):", port)
	log.Println("  GET    /ws                     - WebSocket chat (join, chat, typing)")
	log.Println("  POST   /upload                 - Upload an image (multipart field \"file\")")
	log.Println("  GET    /uploads/:id/:name      - Fetch an uploaded image")
	log.Println("  GET    /api/v1/roster          - Current nicknames")
	log.Println("  GET    /api/v1/nickname        - Random nickname")
	log.Println("  GET    /api/v1/stats           - Room statistics")
	log.Println("  GET    /health                 - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
