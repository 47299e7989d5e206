package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/presence-relay/modules/broadcast"
	"github.com/example/presence-relay/modules/gateway"
	"github.com/example/presence-relay/modules/relay"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Presence Relay - Fiber + EventBus Pubsub ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	// Create modules. The broadcast hub is injected manually because it is
	// not exposed via ServiceContainer.
	broadcastModule := broadcast.NewModule(app.Logger())
	relayModule := relay.NewModule(broadcastModule.GetHub(), app.Logger())
	gatewayModule := gateway.NewModule(":"+port, relayModule, broadcastModule.GetHub(), app.Logger())

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - relay: Core domain (EventEmitterModule, routes room-scoped events)
	// - broadcast: Event consumer (WebSocket hub, delivers global fan-outs)
	// - gateway: Driving adapter (Fiber HTTP/WebSocket server)
	app.Register(relayModule)
	app.Register(broadcastModule)
	app.Register(gatewayModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(port)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
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

func printStartupInfo(port string) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber with WebSocket support")
	log.Println("  - Event Bus: NATS JetStream (internal pubsub)")
	log.Printf("  - NATS URL: %s", natsURL)
	log.Println("")
	log.Println("Event Routing:")
	log.Println("  - UserOnline/UserOffline events -> broadcast module -> all sessions")
	log.Println("  - MessagePosted events -> broadcast module -> all sessions")
	log.Println("  - Room-scoped events -> relay roster -> member sessions")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health                  - Health check")
	log.Println("  GET    /api/v1/stats            - Relay counters")
	log.Println("  GET    /api/v1/online           - Online user list")
	log.Println("  GET    /api/v1/locations/:area  - Location presence snapshot")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", port)
	log.Println("  Connect with: ws://localhost:3000/ws?userId=u1&username=yourname")
	log.Println("  Message types: join-conversation, send-message, typing,")
	log.Println("    join-location-chat, send-location-message and friends")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
