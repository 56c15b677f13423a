// Command tt shows a task folder export as an expandable, sortable tree table.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/vanderheijden86/tasktable/pkg/config"
	"github.com/vanderheijden86/tasktable/pkg/loader"
	"github.com/vanderheijden86/tasktable/pkg/logging"
	"github.com/vanderheijden86/tasktable/pkg/model"
	"github.com/vanderheijden86/tasktable/pkg/tasktree"
	"github.com/vanderheijden86/tasktable/pkg/ui"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options holds parsed command line flags.
type options struct {
	configPath string
	dataDir    string
	folder     string
	all        bool
	dump       bool
	watch      bool
	discover   bool
	logLevel   string

	allSet bool // --all was given explicitly
}

func parseFlags(args []string) (options, *flag.FlagSet, error) {
	var opts options
	fs := flag.NewFlagSet("tt", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVarP(&opts.configPath, "config", "c", "", "Config file (default .tasktable/config.yaml in the project root)")
	fs.StringVarP(&opts.dataDir, "data", "d", "", "Directory with folder.json, tasks.json, ...")
	fs.StringVar(&opts.folder, "folder", "", "Folder id whose tasks form the top level")
	fs.BoolVarP(&opts.all, "all", "a", false, "Show tasks of every status, not only active ones")
	fs.BoolVar(&opts.dump, "dump", false, "Print the fully expanded tree and exit")
	fs.BoolVarP(&opts.watch, "watch", "w", false, "Reload when the data files change")
	fs.BoolVar(&opts.discover, "discover", false, "List datasets found under the configured scan paths and exit")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return opts, fs, err
	}
	opts.allSet = fs.Changed("all")
	return opts, fs, nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: tt [options]")
	fmt.Fprintln(w, "\nBrowse a task folder export as a tree table.")
	fmt.Fprintln(w, "\nOptions:")
	fmt.Fprint(w, fs.FlagUsages())
}

func run(args []string, out, errOut io.Writer) int {
	opts, fs, err := parseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		printUsage(out, fs)
		return 0
	}
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		printUsage(errOut, fs)
		return 2
	}

	cfg, root, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	if opts.discover {
		for _, dir := range config.DiscoverDatasets(cfg) {
			fmt.Fprintln(out, dir)
		}
		return 0
	}

	logger, closeLog, err := openLogger(cfg, errOut, opts.dump)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	defer closeLog()

	tree := tasktree.New(tasktree.Options{
		Logger:     logger.With("component", "tasktree"),
		ActiveOnly: cfg.ActiveOnly,
		RowHeight:  cfg.RowHeight,
	})

	if opts.dump {
		if err := dump(out, tree, cfg, opts, logger); err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}
		return 0
	}

	if root != "" {
		ignoreStateFile(root, cfg.StateFile, logger)
	}
	if err := runTUI(tree, cfg, opts, logger); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	return 0
}

// loadConfig reads the config file and applies flag overrides. root is the
// project directory when one was found.
func loadConfig(opts options) (config.Config, string, error) {
	path := opts.configPath
	root, found := config.DetectRoot()
	if path == "" {
		if !found {
			wd, err := os.Getwd()
			if err != nil {
				return config.Config{}, "", err
			}
			root = wd
		}
		path = config.Path(root)
	} else if !found {
		root = ""
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", err
	}

	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if opts.folder != "" {
		cfg.FolderID = opts.folder
	}
	if opts.allSet {
		cfg.ActiveOnly = !opts.all
	}
	if opts.watch {
		cfg.Watch = true
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, "", err
	}
	return cfg, root, nil
}

// openLogger logs to the configured file. Without one, dump mode logs to
// stderr and the TUI discards, since it owns the terminal.
func openLogger(cfg config.Config, errOut io.Writer, dumping bool) (*slog.Logger, func(), error) {
	if cfg.LogFile != "" {
		f, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			return nil, nil, err
		}
		lg := logging.NewLogger(logging.Options{Level: cfg.LogLevel, Writer: f, Component: "tt"})
		return lg, func() { f.Close() }, nil
	}
	if dumping {
		return logging.NewLogger(logging.Options{Level: cfg.LogLevel, Writer: errOut, Component: "tt"}), func() {}, nil
	}
	return logging.Discard(), func() {}, nil
}

// ignoreStateFile adds the view state file to the project's .gitignore when
// the project is a git checkout and the file lives inside it.
func ignoreStateFile(root, stateFile string, logger *slog.Logger) {
	if _, err := os.Stat(filepath.Join(root, ".git")); err != nil {
		return
	}
	rel, err := filepath.Rel(root, stateFile)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return
	}
	if err := loader.EnsureIgnored(root, filepath.ToSlash(rel)); err != nil {
		logger.Warn("update .gitignore", "root", root, "error", err)
	}
}

// ingest loads the dataset into tree on the calling goroutine.
func ingest(tree *tasktree.Model, cfg config.Config) error {
	ds, err := loader.LoadDataset(context.Background(), cfg.DataDir)
	if err != nil {
		return err
	}
	tree.SetRegistry(ds.Registry())
	return tree.Ingest(ds.Folder, model.FolderID(cfg.FolderID), ds.Tasks)
}

func dump(out io.Writer, tree *tasktree.Model, cfg config.Config, opts options, logger *slog.Logger) error {
	vs, ok, err := tasktree.LoadViewState(cfg.StateFile)
	if err != nil {
		logger.Warn("load view state", "path", cfg.StateFile, "error", err)
	} else if ok {
		if err := tree.ApplyViewState(vs); err != nil {
			logger.Warn("apply view state", "path", cfg.StateFile, "error", err)
		}
	}
	if opts.allSet {
		tree.SetActiveOnly(cfg.ActiveOnly)
	}

	if err := ingest(tree, cfg); err != nil {
		return err
	}
	if err := ui.ExpandAll(tree); err != nil {
		return err
	}
	return ui.Dump(out, tree, cfg.Scale, terminalWidth(out))
}

// terminalWidth returns the width of out when it is a terminal, else 0.
func terminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

func runTUI(tree *tasktree.Model, cfg config.Config, opts options, logger *slog.Logger) error {
	var p *tea.Program
	worker, err := ui.NewBackgroundWorker(ui.WorkerConfig{
		DataDir:  cfg.DataDir,
		Watch:    cfg.Watch,
		Debounce: cfg.Debounce,
		Logger:   logger.With("component", "worker"),
		Send:     func(msg tea.Msg) { p.Send(msg) },
	})
	if err != nil {
		return fmt.Errorf("create worker: %w", err)
	}

	m := ui.NewTableModel(tree, ui.TableOptions{
		DataDir:   cfg.DataDir,
		Folder:    model.FolderID(cfg.FolderID),
		Scale:     cfg.Scale,
		StatePath: cfg.StateFile,
		Logger:    logger.With("component", "ui"),
		Refresher: worker,
	})
	if opts.allSet {
		tree.SetActiveOnly(cfg.ActiveOnly)
	}

	// The program must exist before the worker can send to it.
	p = tea.NewProgram(m, tea.WithAltScreen())
	if err := worker.Start(); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	defer worker.Stop()

	_, err = p.Run()
	return err
}
