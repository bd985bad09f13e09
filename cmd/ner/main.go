// ner is a terminal mail reader over a local maildir index.
//
// Usage:
//
//	ner [flags]                     run the interactive reader
//	ner index [flags]               index the maildir (and IMAP when enabled)
//	ner search [flags] <query...>   print matching threads
//	ner set-password [flags]        store the IMAP password from stdin
//	ner init-config [flags]         write a default config file
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/lineCode/ner/internal/app"
	"github.com/lineCode/ner/internal/credential"
	"github.com/lineCode/ner/internal/index"
	"github.com/lineCode/ner/internal/model"
)

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "":
		err = runTUI(args)
	case "index":
		err = runIndex(args)
	case "search":
		err = runSearch(args, os.Stdout)
	case "set-password":
		err = runSetPassword(args, os.Stdin)
	case "init-config":
		err = runInitConfig(args)
	case "help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "ner: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: ner [command] [flags]

Commands:
  (none)        Run the interactive mail reader
  index         Index the maildir and fetch IMAP mail when enabled
  search        Print threads matching a query
  set-password  Store the IMAP password read from stdin in the keyring
  init-config   Write a default configuration file

Run "ner <command> -h" for the flags of a command.
`)
}

// configFlag registers --config on fs.
func configFlag(fs *flag.FlagSet) *string {
	return fs.String("config", "", "Path to config file (default: ~/.config/ner/config.yaml)")
}

// loadConfig reads the config at path, or the default location, falling
// back to the legacy single-file location when only that exists.
func loadConfig(path string) (*model.AppConfig, error) {
	if path == "" {
		path = model.DefaultConfigPath()
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if _, err := os.Stat(model.LegacyConfigPath()); err == nil {
				path = model.LegacyConfigPath()
			}
		}
	}
	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func openIndex(cfg *model.AppConfig) (*index.SQLiteIndex, error) {
	idx, err := index.NewSQLiteIndex(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", cfg.Database, err)
	}
	return idx, nil
}

func runTUI(args []string) error {
	fs := flag.NewFlagSet("ner", flag.ContinueOnError)
	configPath := configFlag(fs)
	logPath := fs.String("log", os.Getenv("NER_LOG"), "Write a debug log to this file")
	noSync := fs.Bool("no-sync", false, "Do not poll sources or watch the maildir")
	query := fs.String("query", "", "Open a search for this query instead of the saved searches")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the reader needs a terminal; use \"ner search\" for scripts")
	}

	if *logPath != "" {
		f, err := tea.LogToFile(*logPath, "ner")
		if err != nil {
			return fmt.Errorf("opening log: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	idx, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer idx.Close()

	m, err := app.New(app.Options{
		Config: cfg,
		Store:  idx,
		Query:  *query,
		Sync:   !*noSync,
	})
	if err != nil {
		return err
	}
	defer m.Shutdown()

	return runProgram(m)
}

// runProgram runs the reader, quitting cleanly on SIGTERM, and shuts down
// the final model so the watcher it started is stopped.
func runProgram(m app.Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigCh:
			p.Quit()
		case <-done:
		}
	}()

	final, err := p.Run()
	if fm, ok := final.(app.Model); ok {
		fm.Shutdown()
	}
	return err
}

func runIndex(args []string) error {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)
	configPath := configFlag(fs)
	timeout := fs.Duration("timeout", 10*time.Minute, "Give up after this long")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	idx, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer idx.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	_, sources := app.Sources(cfg, idx)
	// Remote sources deliver into the maildir, so they run before it.
	ordered := append(slices.Clone(sources[1:]), sources[0])

	var failed error
	for _, src := range ordered {
		res, err := src.Sync(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", src.Name(), err)
			failed = errors.Join(failed, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		fmt.Printf("%s: %s\n", src.Name(), res)
	}
	return failed
}

func runSetPassword(args []string, stdin io.Reader) error {
	fs := flag.NewFlagSet("set-password", flag.ContinueOnError)
	configPath := configFlag(fs)
	remove := fs.Bool("delete", false, "Forget the stored password instead")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if cfg.IMAP.Host == "" || cfg.IMAP.Username == "" {
		return errors.New("imap.host and imap.username must be configured first")
	}
	acct := credential.Account{Username: cfg.IMAP.Username, Host: cfg.IMAP.Host}

	store, err := credential.Open()
	if err != nil {
		return err
	}
	if *remove {
		if err := store.DeletePassword(acct); err != nil {
			return err
		}
		fmt.Printf("Password for %s removed\n", acct)
		return nil
	}

	var password string
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(os.Stderr, "Password for %s: ", acct)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		password = string(b)
	} else {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errors.New("empty password")
	}

	if err := store.SetPassword(acct, password); err != nil {
		return err
	}
	fmt.Println("Password saved")
	return nil
}

func runInitConfig(args []string) error {
	fs := flag.NewFlagSet("init-config", flag.ContinueOnError)
	configPath := configFlag(fs)
	force := fs.Bool("force", false, "Overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *configPath
	if path == "" {
		path = model.DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := model.SaveConfig(path, model.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
