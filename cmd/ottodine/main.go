// Command ottodine runs a terminal restaurant: stock, menu, carts and orders.
//
// Usage:
//
//	ottodine [-data dir] [-memory] [-http :8080] [-verbose] [-quiet] [-log-file path]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"time"

	"github.com/hammamikhairi/ottodine/internal/account"
	"github.com/hammamikhairi/ottodine/internal/config"
	"github.com/hammamikhairi/ottodine/internal/conversation"
	"github.com/hammamikhairi/ottodine/internal/display"
	"github.com/hammamikhairi/ottodine/internal/domain"
	"github.com/hammamikhairi/ottodine/internal/engine"
	"github.com/hammamikhairi/ottodine/internal/httpapi"
	"github.com/hammamikhairi/ottodine/internal/logger"
	"github.com/hammamikhairi/ottodine/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	dataDir := flag.String("data", cfg.DataDir, "directory holding the restaurant's data files")
	memory := flag.Bool("memory", false, "keep everything in memory; nothing is written to disk")
	httpAddr := flag.String("http", cfg.HTTPAddr, "serve the read-only menu board on this address (empty disables)")
	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".ottodine/ottodine.log", "file to write logs to (use \"stderr\" to log to console)")
	flag.Parse()

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the terminal UI stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// gin and other libraries log through the standard logger.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire repositories.
	var (
		repos     engine.Repositories
		customers domain.CustomerRepository
	)
	if *memory {
		store := storage.NewMemoryStore(log.Named("storage"))
		repos = engine.Repositories{Ingredients: store, Dishes: store.Dishes(), Orders: store, Budget: store.Budget()}
		customers = store.Customers()
		log.Info("using in-memory storage")
	} else {
		store, err := storage.NewFileStore(*dataDir, log.Named("storage"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		repos = engine.Repositories{Ingredients: store.Ingredients(), Dishes: store.Dishes(), Orders: store.Orders(), Budget: store.Budget()}
		customers = store.Customers()
		log.Info("using data directory %s", store.Dir())
	}

	eng := engine.New(repos, log.Named("engine"), engine.WithInitialBudget(cfg.InitialBudget))
	if err := eng.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	accounts, err := account.New(customers, account.Admin{
		Username: cfg.AdminUser,
		Password: cfg.AdminPassword,
		Email:    cfg.AdminEmail,
	}, log.Named("account"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := accounts.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Optional HTTP menu board.
	if *httpAddr != "" {
		srv := httpapi.NewServer(*httpAddr, eng, log.Named("http"))
		srv.Start()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 3*time.Second)
			defer done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("%v", err)
			}
		}()
	}

	app := &cliApp{
		engine:   eng,
		accounts: accounts,
		parser:   conversation.NewKeywordParser(log.Named("parser")),
		log:      log,
	}
	ui := display.NewUI(app.status)
	app.ui = ui
	app.notifier = conversation.NewCLINotifier(log, ui.Printf)

	fmt.Println(display.RenderBanner("restaurant order management"))
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Println()

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
}
