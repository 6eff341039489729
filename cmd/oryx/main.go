package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/oryxcli/oryx/internal/approval"
	"github.com/oryxcli/oryx/internal/audit"
	"github.com/oryxcli/oryx/internal/config"
	"github.com/oryxcli/oryx/internal/discovery"
	"github.com/oryxcli/oryx/internal/loop"
	"github.com/oryxcli/oryx/internal/memory"
	"github.com/oryxcli/oryx/internal/prompts"
	"github.com/oryxcli/oryx/internal/providers"
	"github.com/oryxcli/oryx/internal/runner"
	"github.com/oryxcli/oryx/internal/session"
	"github.com/oryxcli/oryx/internal/tools"
	"github.com/oryxcli/oryx/internal/workspace"
)

func main() {
	// Load .env if present so API keys need no shell setup.
	_ = godotenv.Load()

	ctx := context.Background()

	args := os.Args[1:]
	if len(args) > 0 && args[0] == "config" {
		if err := runConfigCommand(args[1:]); err != nil {
			log.Fatalf("config command failed: %v", err)
		}
		return
	}

	if err := runChat(ctx, args); err != nil {
		log.Fatalf("oryx failed: %v", err)
	}
}

func runChat(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("oryx", flag.ExitOnError)
	repoFlag := fs.String("repo", "", "workspace root (default: current directory)")
	resumeFlag := fs.String("resume", "", "session id to carry context from")
	listFlag := fs.Bool("sessions", false, "list saved sessions for this workspace and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	root := *repoFlag
	if root == "" {
		var err error
		root, err = os.Getwd()
		if err != nil {
			return err
		}
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	mgr, err := config.NewManager()
	if err != nil {
		return err
	}
	cfg, err := mgr.Load()
	if err != nil {
		return err
	}
	config.ApplyEnv(cfg)

	store := session.NewStore(filepath.Dir(mgr.Path()))
	if *listFlag {
		return printSessions(store, root)
	}

	app, err := buildApp(ctx, root, cfg, mgr, store, *resumeFlag)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	return app.Run(ctx)
}

func buildApp(ctx context.Context, root string, cfg *config.Config, mgr *config.Manager, store *session.Store, resumeID string) (*app, error) {
	model, err := providers.NewClient(cfg.Provider, cfg.APIKey, cfg.Model, cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	dbPath := cfg.AuditDBPath
	if dbPath == "" {
		dbPath = filepath.Join(filepath.Dir(mgr.Path()), "audit.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}
	auditLog, err := audit.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	memIndex, err := memory.NewIndex(sessionID)
	if err != nil {
		auditLog.Close()
		return nil, err
	}

	builder, err := prompts.NewBuilder(prompts.DefaultRegistry(), "assistant")
	if err != nil {
		auditLog.Close()
		memIndex.Close()
		return nil, err
	}
	builder.AddProjectContext(workspace.DetectProjectType(root))

	var resumed *session.Session
	if resumeID != "" {
		resumed, err = store.Load(resumeID, root)
		if err != nil {
			auditLog.Close()
			memIndex.Close()
			return nil, fmt.Errorf("failed to resume session %s: %w", resumeID, err)
		}
		builder.AddSessionSummary(resumed.Summary)
	}

	catalog := tools.NewCatalog()
	orch := loop.New(loop.Config{
		Catalog:    catalog,
		Checker:    tools.NewChecker(root),
		Approvals:  approval.NewState(),
		Discovery:  discovery.NewEngine(catalog),
		Model:      model,
		Runner:     runner.New(root),
		Audit:      auditLog,
		Memory:     memIndex,
		BasePrompt: builder.Build(),
		Deadline:   toolDeadline(cfg),
	})

	a := &app{
		o:          orch,
		root:       root,
		auditLog:   auditLog,
		memIndex:   memIndex,
		store:      store,
		summarizer: session.NewSummarizer(model),
		sessionID:  sessionID,
	}

	if cfg.WatchWorkspace {
		w, err := workspace.NewWatcher(root)
		if err != nil {
			log.Printf("workspace watcher unavailable: %v", err)
		} else if err := w.Start(); err != nil {
			log.Printf("workspace watcher failed to start: %v", err)
		} else {
			a.watcher = w
		}
	}
	return a, nil
}

func printSessions(store *session.Store, root string) error {
	metas, err := store.List(root)
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println("no saved sessions for this workspace")
		return nil
	}
	for _, m := range metas {
		fmt.Printf("%s  %s  %s\n", m.ID, m.UpdatedAt.Format("2006-01-02 15:04"), m.Title)
	}
	return nil
}
