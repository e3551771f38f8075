// Nebula - holographic word memory chat
//
// Nebula remembers every word it is told as a node in an associative memory,
// links neighbouring words, and answers by walking the strongest links.
// A decaying state simulator turns each turn into display metrics.
//
// Components:
//   - holographic: node store, interference matrix, response walk
//   - quantum: auxiliary state simulator
//   - session: one memory + simulator + transcript
//   - api: HTTP/WebSocket server for web front ends
//   - shell: interactive REPL
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/api"
	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/config"
	nerrors "github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/errors"
	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/session"
	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/shell"
)

const version = "0.3.0"

func main() {
	configPath := flag.String("config", "", "Config file path (default: ./nebula.yaml)")
	sessionName := flag.String("session", "", "Session name (default: from config)")
	initConfig := flag.Bool("init", false, "Initialize default config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	serve := flag.Bool("serve", false, "Start the HTTP/WebSocket API even if disabled in config")
	noShell := flag.Bool("no-shell", false, "Run without the interactive shell (API only)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Nebula %s\n", version)
		os.Exit(0)
	}

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}

	if *initConfig {
		if err := config.InitConfig(cfgPath); err != nil {
			nerrors.Display(err)
			os.Exit(1)
		}
		fmt.Printf("Config initialized at: %s\n", cfgPath)
		fmt.Println("Edit this file to size the memory and tune the simulator.")
		os.Exit(0)
	}

	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		nerrors.Display(err)
		os.Exit(1)
	}
	if *serve {
		cfg.API.Enabled = true
	}
	if *noShell && !cfg.API.Enabled {
		fmt.Println("Nothing to run: --no-shell needs the API (use --serve).")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║           Nebula - Holographic Word Memory                ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config: (using defaults, run --init to create)\n")
	}
	fmt.Printf("Memory: %d words × %d dims, walk up to %d tokens\n",
		cfg.Memory.Capacity, cfg.Memory.VectorDim, cfg.Memory.MaxTokens)
	fmt.Println()

	manager := session.NewManager(cfg)
	sess, err := manager.Create(*sessionName)
	if err != nil {
		nerrors.Display(err)
		os.Exit(1)
	}
	fmt.Printf("Session: %s (%s)\n", sess.Name, sess.ID[:8])

	var server *api.Server
	if cfg.API.Enabled {
		server = api.NewServer(cfg, manager, nil)
		if err := server.Start(); err != nil {
			fmt.Printf("Failed to start API: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("API:     http://%s (ws://%s/ws)\n", server.Address(), server.Address())
	}
	fmt.Println()

	if *noShell {
		<-ctx.Done()
	} else {
		historyFile := cfg.Shell.HistoryFile
		if historyFile == "" {
			homeDir, _ := os.UserHomeDir()
			historyFile = filepath.Join(homeDir, ".nebula_history")
		}

		shellCfg := shell.Config{
			HistoryFile: historyFile,
			ExportDir:   cfg.Session.ExportPath,
		}
		if server != nil {
			hub := server.Hub()
			shellCfg.OnTurn = func(turn *session.Turn) {
				hub.PublishTurn(sess.ID, turn)
			}
		}

		sh, err := shell.New(sess, shellCfg)
		if err != nil {
			nerrors.Display(err)
			os.Exit(1)
		}
		if err := sh.Run(ctx); err != nil && err != context.Canceled {
			fmt.Printf("Shell error: %v\n", err)
			os.Exit(1)
		}
	}

	if server != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Warning: API shutdown: %v\n", err)
		}
		stop()
	}

	sess.End()
	if cfg.Session.AutoExport && sess.Stats().MessageCount > 0 {
		if path, err := sess.Export(cfg.Session.ExportPath); err != nil {
			fmt.Printf("Warning: Failed to export session: %v\n", err)
		} else {
			fmt.Printf("Session exported to %s\n", path)
		}
	}

	fmt.Println("Goodbye!")
}
