package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/hylla/agenda/internal/adapters/agendaapi"
	serveradapter "github.com/hylla/agenda/internal/adapters/server"
	servercommon "github.com/hylla/agenda/internal/adapters/server/common"
	"github.com/hylla/agenda/internal/adapters/storage/sqlite"
	"github.com/hylla/agenda/internal/app"
	"github.com/hylla/agenda/internal/config"
	"github.com/hylla/agenda/internal/domain"
	"github.com/hylla/agenda/internal/observability"
	"github.com/hylla/agenda/internal/platform"
	"github.com/hylla/agenda/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
	return serveradapter.Run(ctx, cfg, deps)
}

// main handles main.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: load .env:", err)
	}
	root := newRootCommand(os.Stdout, os.Stderr)
	if err := fang.Execute(context.Background(), root, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// run executes one command line without fang styling; used by tests.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// clientOptions select the agenda backend for client-side commands.
type clientOptions struct {
	workshopID string
	apiURL     string
	local      bool
}

// newRootCommand builds the command tree.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	g := &globalOptions{}
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("AGENDA_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	defaultApp := platform.DefaultAppName
	if envApp := strings.TrimSpace(os.Getenv("AGENDA_APP_NAME")); envApp != "" {
		defaultApp = envApp
	}

	copts := &clientOptions{}
	root := &cobra.Command{
		Use:           "agenda",
		Short:         "Plan and reorder workshop agendas",
		Long:          "Open the agenda board for one workshop. Drag rows with the mouse or use [ and ] to reorder.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withEnv(g, stderr, "tui", func(env *runtimeEnv) error {
				return runTUI(env, copts)
			})
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "path to config TOML")
	pf.StringVar(&g.dbPath, "db", "", "path to sqlite database")
	pf.StringVar(&g.appName, "app", defaultApp, "application name for config/data path resolution")
	pf.BoolVar(&g.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	addClientFlags(root, copts)

	root.AddCommand(
		newServeCommand(g, stderr),
		newSeedCommand(g, stderr),
		newListCommand(g, stderr),
		newMoveCommand(g, stderr),
		newPathsCommand(g),
		newInitCommand(g),
	)
	return root
}

func addClientFlags(cmd *cobra.Command, o *clientOptions) {
	cmd.Flags().StringVarP(&o.workshopID, "workshop", "w", "", "workshop id (default agenda.default_workshop_id)")
	cmd.Flags().StringVar(&o.apiURL, "api", "", "agenda REST API base URL (default client.base_url)")
	cmd.Flags().BoolVar(&o.local, "local", false, "use the local sqlite database instead of the REST API")
}

func newServeCommand(g *globalOptions, stderr io.Writer) *cobra.Command {
	var (
		httpBind string
		seedDemo bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local agenda backend (REST, MCP and metrics)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(g, stderr, "serve", func(env *runtimeEnv) error {
				svc, closeRepo, err := env.openService()
				if err != nil {
					return err
				}
				defer closeRepo()
				if seedDemo {
					w, err := app.SeedDemo(cmd.Context(), svc, time.Now())
					if err != nil {
						return fmt.Errorf("seed demo workshop: %w", err)
					}
					env.logger.Info("demo workshop ready", "workshop_id", w.ID)
				}
				bind := env.cfg.Server.HTTPBind
				if strings.TrimSpace(httpBind) != "" {
					bind = httpBind
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return serveCommandRunner(ctx, serveradapter.Config{
					HTTPBind:        bind,
					APIEndpoint:     env.cfg.Server.APIEndpoint,
					MCPEndpoint:     env.cfg.Server.MCPEndpoint,
					MetricsEndpoint: env.cfg.Server.MetricsEndpoint,
					ServerName:      env.appName,
					ServerVersion:   version,
				}, serveradapter.Dependencies{
					Agenda:  servercommon.NewAppServiceAdapter(svc),
					Logger:  env.logger.Component("server"),
					Metrics: observability.NewMetrics(),
				})
			})
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "", "HTTP listen address (default server.http_bind)")
	cmd.Flags().BoolVar(&seedDemo, "seed-demo", false, "create the demo workshop before serving")
	return cmd
}

func newSeedCommand(g *globalOptions, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo workshop in the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(g, stderr, "seed", func(env *runtimeEnv) error {
				svc, closeRepo, err := env.openService()
				if err != nil {
					return err
				}
				defer closeRepo()
				w, err := app.SeedDemo(cmd.Context(), svc, time.Now())
				if err != nil {
					return fmt.Errorf("seed demo workshop: %w", err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), w.ID)
				return nil
			})
		},
	}
}

func newListCommand(g *globalOptions, stderr io.Writer) *cobra.Command {
	o := &clientOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print a workshop agenda",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(g, stderr, "list", func(env *runtimeEnv) error {
				store, closeClient, err := env.loadStore(cmd.Context(), o)
				if err != nil {
					return err
				}
				defer closeClient()
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderAgendaTable(store.Items()))
				return nil
			})
		},
	}
	addClientFlags(cmd, o)
	return cmd
}

func newMoveCommand(g *globalOptions, stderr io.Writer) *cobra.Command {
	o := &clientOptions{}
	cmd := &cobra.Command{
		Use:   "move SOURCE_ID TARGET_ID",
		Short: "Move one agenda item into another item's slot",
		Long:  "Performs the same drop as dragging SOURCE_ID onto TARGET_ID in the board, then prints the saved order.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(g, stderr, "move", func(env *runtimeEnv) error {
				store, closeClient, err := env.loadStore(cmd.Context(), o)
				if err != nil {
					return err
				}
				defer closeClient()
				drag := app.NewDragController(store)
				if !drag.OnDragStart(args[0]) {
					return fmt.Errorf("move %s: %w", args[0], app.ErrUnknownItem)
				}
				res, err := drag.DropAndCommit(cmd.Context(), args[1])
				if err != nil {
					return fmt.Errorf("move %s onto %s: %w", args[0], args[1], err)
				}
				if !res.Applied {
					return fmt.Errorf("move %s onto %s: nothing to move", args[0], args[1])
				}
				env.logger.Info("agenda item moved", "source", res.SourceID, "target", res.TargetID)
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderAgendaTable(store.Items()))
				return nil
			})
		},
	}
	addClientFlags(cmd, o)
	return cmd
}

func newPathsCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := resolvePaths(g)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", g.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", g.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(out, "log_dir: %s\n", paths.LogDir)
			return nil
		},
	}
}

func newInitCommand(g *globalOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := resolvePaths(g)
			if err != nil {
				return err
			}
			if _, err := os.Stat(paths.ConfigPath); err == nil && !force {
				return fmt.Errorf("config %s already exists (use --force to overwrite)", paths.ConfigPath)
			}
			encoded, err := toml.Marshal(config.Default(paths.DBPath))
			if err != nil {
				return fmt.Errorf("encode default config: %w", err)
			}
			if err := config.EnsureConfigDir(paths.ConfigPath); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			if err := os.WriteFile(paths.ConfigPath, encoded, 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), paths.ConfigPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}

// runtimeEnv is the resolved configuration shared by command flows.
type runtimeEnv struct {
	appName string
	devMode bool
	paths   platform.Paths
	cfg     config.Config
	logger  *runtimeLogger
}

// withEnv resolves paths, config and logging, then runs fn.
func withEnv(g *globalOptions, stderr io.Writer, command string, fn func(*runtimeEnv) error) error {
	env, err := loadRuntimeEnv(g, stderr, command)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := env.logger.Close(); closeErr != nil && !env.logger.muted {
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	env.logger.Info("command flow start")
	if err := fn(env); err != nil {
		env.logger.Error("command flow failed", "err", err)
		return fmt.Errorf("run %s command: %w", command, err)
	}
	env.logger.Info("command flow complete")
	return nil
}

// resolvePaths applies flag and env overrides to the platform paths.
func resolvePaths(g *globalOptions) (platform.Paths, error) {
	configPath := strings.TrimSpace(g.configPath)
	if configPath == "" {
		configPath = strings.TrimSpace(os.Getenv("AGENDA_CONFIG"))
	}
	dbPath := strings.TrimSpace(g.dbPath)
	if dbPath == "" {
		dbPath = strings.TrimSpace(os.Getenv("AGENDA_DB_PATH"))
	}
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName:    g.appName,
		DevMode:    g.devMode,
		ConfigPath: configPath,
		DBPath:     dbPath,
	})
}

func loadRuntimeEnv(g *globalOptions, stderr io.Writer, command string) (*runtimeEnv, error) {
	paths, err := resolvePaths(g)
	if err != nil {
		return nil, err
	}
	dbOverridden := strings.TrimSpace(g.dbPath) != "" || strings.TrimSpace(os.Getenv("AGENDA_DB_PATH")) != ""

	cfg, err := config.Load(paths.ConfigPath, config.Default(paths.DBPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", paths.ConfigPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = paths.DBPath
	}
	if envURL := strings.TrimSpace(os.Getenv("AGENDA_API_URL")); envURL != "" {
		cfg.Client.BaseURL = envURL
	}

	logger, err := newRuntimeLogger(stderr, cfg.Logging, loggerOptions{
		AppName: g.appName,
		DevMode: g.devMode,
		DataDir: paths.DataDir,
		Now:     time.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.ForCommand(command)
	if command == "tui" {
		// Runtime logs stay in the dev-file sink while the board is active.
		logger.SetConsoleEnabled(false)
	}
	logger.Debug("runtime paths resolved", "config_path", paths.ConfigPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	logger.Info("configuration loaded", "app", g.appName, "dev_mode", g.devMode, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}
	return &runtimeEnv{
		appName: g.appName,
		devMode: g.devMode,
		paths:   paths,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// openService opens the sqlite repository and the local agenda service.
func (e *runtimeEnv) openService() (*app.Service, func(), error) {
	e.logger.Info("opening sqlite repository", "db_path", e.cfg.Database.Path)
	repo, err := sqlite.Open(e.cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	svc := app.NewService(repo, uuid.NewString, nil, app.ServiceConfig{
		LeaveGapsOnDelete: !e.cfg.Agenda.CompactOnDelete,
		TimeRangePolicy:   timeRangePolicy(e.cfg),
	})
	closeRepo := func() {
		if err := repo.Close(); err != nil {
			e.logger.Warn("sqlite close failed", "db_path", e.cfg.Database.Path, "err", err)
		}
	}
	return svc, closeRepo, nil
}

// agendaClient returns the REST client, or the in-process client when local is set.
func (e *runtimeEnv) agendaClient(apiURL string, local bool) (app.AgendaClient, func(), error) {
	if local {
		svc, closeRepo, err := e.openService()
		if err != nil {
			return nil, nil, err
		}
		return app.NewLocalClient(svc), closeRepo, nil
	}
	base := strings.TrimSpace(apiURL)
	if base == "" {
		base = e.cfg.Client.BaseURL
	}
	timeout, err := e.cfg.ClientTimeout()
	if err != nil {
		return nil, nil, err
	}
	client, err := agendaapi.New(base, agendaapi.WithTimeout(timeout), agendaapi.WithLogger(e.logger.Component("agendaapi")))
	if err != nil {
		return nil, nil, err
	}
	e.logger.Debug("agenda api client ready", "base_url", base)
	return client, func() {}, nil
}

// loadStore builds a Store for the selected workshop and loads it.
func (e *runtimeEnv) loadStore(ctx context.Context, o *clientOptions) (*app.Store, func(), error) {
	workshopID := e.workshopID(o)
	if workshopID == "" {
		return nil, nil, errors.New("no workshop selected: pass --workshop or set agenda.default_workshop_id")
	}
	client, closeClient, err := e.agendaClient(o.apiURL, o.local)
	if err != nil {
		return nil, nil, err
	}
	store := app.NewStore(client)
	if err := store.Load(ctx, workshopID); err != nil {
		closeClient()
		if agendaapi.IsRetryable(err) {
			return nil, nil, fmt.Errorf("%w (is `agenda serve` running?)", err)
		}
		return nil, nil, err
	}
	return store, closeClient, nil
}

func (e *runtimeEnv) workshopID(o *clientOptions) string {
	if id := strings.TrimSpace(o.workshopID); id != "" {
		return id
	}
	return strings.TrimSpace(e.cfg.Agenda.DefaultWorkshopID)
}

func (e *runtimeEnv) session() app.Session {
	s := e.cfg.Session
	return app.NewSession(s.UserID, s.DisplayName, s.Role, app.Branding{
		ProductName: s.BrandName,
		AccentColor: s.AccentColor,
	})
}

// runTUI runs the agenda board.
func runTUI(env *runtimeEnv, o *clientOptions) error {
	workshopID := env.workshopID(o)
	if workshopID == "" {
		return errors.New("no workshop selected: pass --workshop or set agenda.default_workshop_id")
	}
	client, closeClient, err := env.agendaClient(o.apiURL, o.local)
	if err != nil {
		return err
	}
	defer closeClient()

	store := app.NewStore(client)
	m := tui.NewModel(
		store,
		workshopID,
		tui.WithSession(env.session()),
		tui.WithWorkshopLookup(client.GetWorkshop),
		tui.WithTimeRangePolicy(timeRangePolicy(env.cfg)),
		tui.WithShowDescription(env.cfg.UI.ShowDescription),
	)
	env.logger.Info("starting tui program loop", "workshop_id", workshopID, "local", o.local)
	if _, err := programFactory(m).Run(); err != nil {
		return fmt.Errorf("run tui program: %w", err)
	}
	return nil
}

// renderAgendaTable renders items as a bordered table.
func renderAgendaTable(items []domain.AgendaItem) string {
	if len(items) == 0 {
		return "(no agenda items)"
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			strconv.Itoa(it.OrderIndex),
			it.StartTime.String() + "-" + it.EndTime.String(),
			it.Title,
			it.ActivityType.Label(),
			it.FacilitatorName,
			it.ID,
		})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("#", "Time", "Title", "Type", "Facilitator", "ID").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.String()
}

// timeRangePolicy maps agenda.time_range_policy onto the domain policy.
func timeRangePolicy(cfg config.Config) domain.TimeRangePolicy {
	if cfg.AcceptsInvertedTimeRanges() {
		return domain.TimeRangeAccept
	}
	return domain.TimeRangeReject
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
