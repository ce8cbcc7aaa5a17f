// Command anime-security-training starts the map-world training game
// server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, content and save directories, debug logging,
// and version output.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/mkowalska/anime-security-training/api"
	"github.com/mkowalska/anime-security-training/game/dialogue"
	"github.com/mkowalska/anime-security-training/game/maps"
	"github.com/mkowalska/anime-security-training/game/save"
	"github.com/mkowalska/anime-security-training/game/service"
	"github.com/mkowalska/anime-security-training/game/world"
	"github.com/mkowalska/anime-security-training/pkg/logger"
	"github.com/mkowalska/anime-security-training/transport/mcp"
	"github.com/mkowalska/anime-security-training/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Anime Security Training World Server"
)

// Configuration flags control how the server starts.
var (
	port     = flag.Int("port", 8080, "HTTP server port")
	host     = flag.String("host", "localhost", "HTTP server host")
	dataDir  = flag.String("data-dir", getDataDirDefault(), "Directory containing maps/, dialogues/ and challenges/")
	savesDir = flag.String("saves-dir", "saves", "Directory for save slot files")
	debug    = flag.Bool("debug", false, "Enable debug logging")
	version  = flag.Bool("version", false, "Show version information")
)

// getDataDirDefault returns the default content directory. It first
// honors the DATA_DIR environment variable, then falls back to "data".
func getDataDirDefault() string {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		return dir
	}
	return "data"
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090         # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp          # Run MCP stdio server\n", os.Args[0])
	}
}

// main parses flags, initializes the world service, and starts the
// selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	logger.Init()

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	if *debug {
		logger.Log.SetLevel(logrus.DebugLevel)
	}

	// Determine mode from command
	args := flag.Args()
	mode := "server"
	if len(args) > 0 {
		mode = args[0]
	}

	logger.Log.Infof("Starting %s v%s (mode: %s)", AppName, Version, mode)

	worldService, err := initializeServices()
	if err != nil {
		logger.Log.Fatalf("Failed to initialize services: %v", err)
	}

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCPWithInternalServer(worldService)

	case "server", "http":
		runHTTPServer(worldService)

	default:
		logger.Log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// initializeServices wires the content managers, save store and world
// service from the configured directories.
func initializeServices() (service.WorldService, error) {
	mapManager := maps.NewManager(filepath.Join(*dataDir, "maps"))
	library := dialogue.NewLibrary(*dataDir, filepath.Join(*dataDir, "challenges"))
	store := save.NewStore(*savesDir)

	return service.NewWorldService(mapManager, library, store), nil
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub,
// the fixed-rate simulation loop, and an /mcp proxy endpoint.
func runHTTPServer(worldService service.WorldService) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Websocket intents feed the pending input of the next tick.
	hub := websocket.NewHub(func(in world.Intent) {
		if err := worldService.ApplyIntent(ctx, in); err != nil {
			logger.Log.Warnf("apply intent: %v", err)
		}
	})
	go hub.Run()

	// The simulation advances on its own clock and publishes a frame
	// to the hub after every step.
	go service.Run(ctx, worldService, hub)

	apiServer := api.NewServer(worldService, hub)

	addr := fmt.Sprintf("%s:%d", *host, *port)

	// MCP clients can also speak JSON-RPC over plain HTTP POST.
	baseURL := fmt.Sprintf("http://%s", addr)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Log.Infof("HTTP server listening on %s", addr)
		logger.Log.Infof("REST API: http://%s/api", addr)
		logger.Log.Infof("WebSocket: ws://%s/ws", addr)
		logger.Log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	sig := <-stop
	logger.Log.Infof("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warnf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	logger.Log.Info("Server stopped")
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It tries to
// reuse an external API at http://localhost:8080; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port
// and targets that.
func runStdioMCPWithInternalServer(worldService service.WorldService) {
	var baseURL string

	externalURL := "http://localhost:8080"
	logger.Log.Infof("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/healthz")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		logger.Log.Infof("External API server found at %s, using it for MCP", externalURL)
		baseURL = externalURL
	} else {
		logger.Log.Info("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			logger.Log.Fatalf("Failed to get available port: %v", err)
		}

		internalAddr := fmt.Sprintf("127.0.0.1:%d", listener.Addr().(*net.TCPAddr).Port)
		logger.Log.Infof("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		hub := websocket.NewHub(func(in world.Intent) {
			if err := worldService.ApplyIntent(ctx, in); err != nil {
				logger.Log.Warnf("apply intent: %v", err)
			}
		})
		go hub.Run()
		go service.Run(ctx, worldService, hub)

		httpServer := &http.Server{
			Handler: api.NewServer(worldService, hub),
		}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				logger.Log.Warnf("Internal HTTP server error: %v", err)
			}
		}()

		// Wait a moment for the server to be ready
		time.Sleep(100 * time.Millisecond)

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)

	logger.Log.Info("MCP stdio server ready")
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		logger.Log.Fatalf("MCP stdio server error: %v", err)
	}
}
