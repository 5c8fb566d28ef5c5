package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"channelos/internal/app"
	"channelos/internal/config"
	"channelos/internal/db"
	"channelos/internal/domain"
	"channelos/internal/engine"
	"channelos/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "cos",
	Short: "Channel OS CLI",
	Long: `Channel OS plans YouTube videos from idea to upload.
- Input: niche, persona, goal and cadence that tune every suggestion.
- Ideas: batches of video concepts; locking a batch puts its cards on the board.
- Titles: score working titles and keep a short history of iterations.
- Script: an outline with cold open, hook, beats, outro and b-roll prompts.
- Board: cards move Ideas -> Pre-Production -> Production -> Ready to Publish.
- Recipes: automation playbooks fired when cards enter a phase.
- Event log: every board change, view with 'cos log tail'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(viper.GetString("log-level"), false)
		return nil
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	workspace := viper.GetString("workspace")
	if err := godotenv.Load(filepath.Join(workspace, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: .env:", err)
	}
	viper.SetEnvPrefix("CHANNELOS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("workspace", "w", ".", "workspace directory")
	flags.Bool("json", false, "output JSON")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("backend", "", "storage backend override (sqlite or redis)")
	flags.String("redis-addr", "", "redis address override")
	flags.String("redis-namespace", "", "redis key namespace override")
	_ = viper.BindPFlag("workspace", flags.Lookup("workspace"))
	_ = viper.BindPFlag("json", flags.Lookup("json"))
	_ = viper.BindPFlag("log-level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("storage.backend", flags.Lookup("backend"))
	_ = viper.BindPFlag("storage.redis.addr", flags.Lookup("redis-addr"))
	_ = viper.BindPFlag("storage.redis.namespace", flags.Lookup("redis-namespace"))
}

func registerCommands() {
	rootCmd.AddCommand(inputCmd())
	rootCmd.AddCommand(ideasCmd())
	rootCmd.AddCommand(titleCmd())
	rootCmd.AddCommand(scriptCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(boardCmd())
	rootCmd.AddCommand(recipesCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(serveCmd())
}

func inputCmd() *cobra.Command {
	in := &cobra.Command{
		Use:   "input",
		Short: "Idea input",
		Long:  "The niche, persona, goal and cadence every generator reads. Unknown niches fall back to General and unknown cadences to Weekly.",
	}
	in.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current input",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return printInput(e.Input(ctx))
			})
		},
	})
	in.AddCommand(inputSetCmd())
	return in
}

func inputSetCmd() *cobra.Command {
	var niche, persona, goal, cadence string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update input fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				in := e.Input(ctx)
				if cmd.Flags().Changed("niche") {
					in.Niche = domain.Niche(niche)
				}
				if cmd.Flags().Changed("persona") {
					in.Persona = persona
				}
				if cmd.Flags().Changed("goal") {
					in.Goal = goal
				}
				if cmd.Flags().Changed("cadence") {
					in.Cadence = domain.Cadence(cadence)
				}
				return printInput(e.SetInput(ctx, in))
			})
		},
	}
	cmd.Flags().StringVar(&niche, "niche", "", "Technology, Education, Lifestyle, Gaming, Finance or Health")
	cmd.Flags().StringVar(&persona, "persona", "", "target viewer")
	cmd.Flags().StringVar(&goal, "goal", "", "channel goal")
	cmd.Flags().StringVar(&cadence, "cadence", "", "Weekly, Twice Weekly or Daily")
	return cmd
}

func ideasCmd() *cobra.Command {
	ideas := &cobra.Command{
		Use:   "ideas",
		Short: "Video idea batches",
	}
	ideas.AddCommand(&cobra.Command{
		Use:   "suggest",
		Short: "Preview a batch for the current input",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return printIdeas(e.SuggestIdeas(ctx))
			})
		},
	})
	ideas.AddCommand(&cobra.Command{
		Use:   "lock",
		Short: "Lock a batch and add its cards to the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				res := e.LockIdeas(ctx)
				if viper.GetBool("json") {
					return printJSON(res)
				}
				fmt.Printf("Locked %d ideas, %d new cards on the board\n", len(res.Ideas), res.Added)
				return printWorkflow(res.Workflow)
			})
		},
	})
	ideas.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List locked ideas",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return printIdeas(e.Ideas(ctx))
			})
		},
	})
	return ideas
}

func titleCmd() *cobra.Command {
	title := &cobra.Command{
		Use:   "title",
		Short: "Title lab",
	}
	title.AddCommand(&cobra.Command{
		Use:   "score <title>",
		Short: "Score a working title against the current niche",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				eval := e.ScoreTitle(ctx, strings.Join(args, " "))
				if viper.GetBool("json") {
					return printJSON(eval)
				}
				fmt.Printf("Score: %d/100\n", eval.Score)
				for _, f := range eval.Feedback {
					fmt.Println("  +", f)
				}
				for _, s := range eval.Suggestions {
					fmt.Println("  -", s)
				}
				return nil
			})
		},
	})
	title.AddCommand(&cobra.Command{
		Use:   "log <title>",
		Short: "Record a title iteration",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return printHistory(e.LogTitle(ctx, strings.Join(args, " ")))
			})
		},
	})
	title.AddCommand(&cobra.Command{
		Use:   "history",
		Short: "Show recent title iterations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return printHistory(e.TitleHistory(ctx))
			})
		},
	})
	return title
}

func scriptCmd() *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Outline a script for a locked idea",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				outline, err := e.Outline(ctx, title)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(outline)
				}
				fmt.Println("Cold open:", outline.ColdOpen)
				fmt.Println("Hook:", outline.Hook)
				for i, s := range outline.BodySections {
					fmt.Printf("%d. %s: %s\n", i+1, s.Heading, s.Beat)
				}
				fmt.Println("Outro:", outline.Outro)
				fmt.Println("B-roll:")
				for _, b := range outline.BrollPrompts {
					fmt.Println("  *", b)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "idea title (defaults to the first locked idea)")
	return cmd
}

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Plan releases for the locked ideas",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				entries := e.Schedule(ctx)
				if viper.GetBool("json") {
					return printJSON(entries)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"Title", "Release", "Teaser", "Retention Mission"})
				for _, s := range entries {
					tw.AppendRow(table.Row{s.Title, s.Release, s.Teaser, s.RetentionMission})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func boardCmd() *cobra.Command {
	board := &cobra.Command{
		Use:   "board",
		Short: "Production board",
		Long:  "Cards move one phase at a time: Ideas -> Pre-Production -> Production -> Ready to Publish.",
	}
	board.AddCommand(boardListCmd())
	board.AddCommand(boardMoveCmd())
	board.AddCommand(&cobra.Command{
		Use:   "check <id> <label>",
		Short: "Toggle a checklist entry",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				item, err := e.ToggleChecklist(ctx, args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				return printItem(item)
			})
		},
	})
	board.AddCommand(&cobra.Command{
		Use:   "deadline <id> <YYYY-MM-DD>",
		Short: "Set a card deadline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				item, err := e.UpdateDeadline(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return printItem(item)
			})
		},
	})
	return board
}

func boardListCmd() *cobra.Command {
	var phase string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List board cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items := e.Workflow(ctx)
				if phase != "" {
					var filtered []domain.WorkflowItem
					for _, item := range items {
						if strings.EqualFold(string(item.Phase), phase) {
							filtered = append(filtered, item)
						}
					}
					items = filtered
				}
				return printWorkflow(items)
			})
		},
	}
	cmd.Flags().StringVar(&phase, "phase", "", "phase filter")
	return cmd
}

func boardMoveCmd() *cobra.Command {
	var back bool
	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move a card to the next phase (or back with --back)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta := 1
			if back {
				delta = -1
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				res, err := e.MovePhase(ctx, args[0], delta)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(res)
				}
				if !res.Moved {
					fmt.Printf("%s stays in %s\n", res.Item.Title, res.Item.Phase)
					return nil
				}
				fmt.Printf("%s -> %s\n", res.Item.Title, res.Item.Phase)
				for _, r := range res.Recipes {
					fmt.Printf("  recipe fired: %s (%s)\n", r.Name, r.Result)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&back, "back", false, "move to the previous phase")
	return cmd
}

func recipesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List automation playbooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				recipes := e.Recipes()
				if viper.GetBool("json") {
					return printJSON(recipes)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"Name", "Trigger", "Stack", "Result"})
				for _, r := range recipes {
					tw.AppendRow(table.Row{r.Name, r.Trigger, strings.Join(r.Stack, ", "), r.Result})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Event log",
		Long:  "The diary of board activity: locks, phase moves, checklist toggles, deadlines and fired recipes.",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				evts, err := e.RecentEvents(ctx, n, evtType)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(evts)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "TS", "Type", "Entity", "Payload"})
				for _, evt := range evts {
					tw.AppendRow(table.Row{evt.ID, evt.TS, evt.Type, evt.EntityID, evt.Payload})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Workspace config",
		Long:  "channelos.yml holds default input, card owner, storage backend, server settings and webhooks.",
	}
	cfg.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig()
			if err != nil {
				return err
			}
			return printJSON(cfg)
		},
	})
	cfg.AddCommand(configInitCmd())
	return cfg
}

func configInitCmd() *cobra.Command {
	var niche string
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default channelos.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			path := config.Path(workspace)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			n, ok := domain.ParseNiche(niche)
			if niche != "" && !ok {
				return fmt.Errorf("unknown niche %q", niche)
			}
			if niche == "" {
				n = ""
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault(n)), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&niche, "niche", "", "default niche")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(viper.GetString("log-level"), true)
			cfg, err := resolveConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("base-path") {
				cfg.Server.BasePath = basePath
			}
			rt, err := app.Open(cmd.Context(), viper.GetString("workspace"), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			handler, err := server.New(server.Config{
				Engine:    rt.Engine,
				BasePath:  cfg.Server.BasePath,
				RateLimit: cfg.Server.RateLimit,
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: cfg.Server.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
			dispatcher := server.NewWebhookDispatcher(rt.Engine, cfg.Webhooks, logger)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				logger.Info("serving Channel OS API", "addr", cfg.Server.Addr, "base_path", cfg.Server.BasePath, "backend", rt.Backend)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				return dispatcher.Run(ctx)
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

// --- helpers ---

func resolveConfig() (*config.Config, error) {
	cfg, err := app.ResolveConfig(viper.GetString("workspace"))
	if err != nil {
		return nil, err
	}
	if v := viper.GetString("storage.backend"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := viper.GetString("storage.redis.addr"); v != "" {
		cfg.Storage.Redis.Addr = v
	}
	if v := viper.GetString("storage.redis.namespace"); v != "" {
		cfg.Storage.Redis.Namespace = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	workspace := viper.GetString("workspace")
	if _, err := db.EnsureWorkspace(workspace); err != nil {
		return err
	}
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	rt, err := app.Open(ctx, workspace, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt.Engine)
}

func setupLogger(level string, jsonOutput bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	return tw
}

func printInput(in domain.IdeaInput) error {
	if viper.GetBool("json") {
		return printJSON(in)
	}
	tw := newTable()
	tw.AppendRows([]table.Row{
		{"Niche", in.Niche},
		{"Persona", in.Persona},
		{"Goal", in.Goal},
		{"Cadence", in.Cadence},
	})
	tw.Render()
	return nil
}

func printIdeas(ideas []domain.IdeaBlueprint) error {
	if viper.GetBool("json") {
		return printJSON(ideas)
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"#", "Title", "Summary", "Hook"})
	for i, idea := range ideas {
		tw.AppendRow(table.Row{i + 1, idea.Title, idea.Summary, idea.Hook})
	}
	tw.Render()
	return nil
}

func printHistory(history []string) error {
	if viper.GetBool("json") {
		return printJSON(history)
	}
	for i, t := range history {
		fmt.Printf("%d. %s\n", i+1, t)
	}
	return nil
}

func printWorkflow(items []domain.WorkflowItem) error {
	if viper.GetBool("json") {
		return printJSON(items)
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "Title", "Phase", "Owner", "Deadline", "Checklist"})
	for _, item := range items {
		tw.AppendRow(table.Row{item.ID, item.Title, item.Phase, item.Owner, item.Deadline, checklistProgress(item)})
	}
	tw.Render()
	return nil
}

func printItem(item domain.WorkflowItem) error {
	if viper.GetBool("json") {
		return printJSON(item)
	}
	fmt.Printf("%s [%s] due %s, owner %s\n", item.Title, item.Phase, item.Deadline, item.Owner)
	for _, c := range item.Checklist {
		mark := " "
		if c.Done {
			mark = "x"
		}
		fmt.Printf("  [%s] %s\n", mark, c.Label)
	}
	return nil
}

func checklistProgress(item domain.WorkflowItem) string {
	done := 0
	for _, c := range item.Checklist {
		if c.Done {
			done++
		}
	}
	return fmt.Sprintf("%d/%d", done, len(item.Checklist))
}
