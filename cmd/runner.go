package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/plsort/internal/repositories"
	"github.com/desertthunder/plsort/internal/services"
	"github.com/desertthunder/plsort/internal/shared"
	"github.com/desertthunder/plsort/internal/ui"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	service services.Service
	journal *repositories.RunRepository
	db      *sql.DB
	logger  *log.Logger
	input   *bufio.Scanner
	output  io.Writer
	palette *ui.Palette

	// connect establishes the authorized session when no service was injected.
	connect func(ctx context.Context) (services.Service, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Service services.Service            // Authorized session; established on demand when nil
	Journal *repositories.RunRepository // Rewrite journal; opened from config when nil
	Logger  *log.Logger
	Input   io.Reader // Prompt answers (default: stdin)
	Output  io.Writer // Prompts and results (default: stdout)
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:  opts.Config,
		service: opts.Service,
		journal: opts.Journal,
		logger:  opts.Logger,
		input:   bufio.NewScanner(opts.Input),
		output:  opts.Output,
		palette: ui.NewPalette(opts.Output),
	}
	r.connect = r.establishSession
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){historyCommand, setupCommand} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the configuration from the --config and --env flags and applies --debug.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	config, err := shared.ResolveConfig(cmd.String("config"), cmd.String("env"))
	if err != nil {
		return ctx, err
	}
	r.config = config
	r.logger.Debug("configuration resolved", "config", cmd.String("config"), "env", cmd.String("env"))
	return ctx, nil
}

// openJournal opens the rewrite journal on first use and reuses it afterwards.
//
// Returns [shared.ErrJournalUnavailable] when the journal is disabled or cannot be opened.
func (r *Runner) openJournal() (*repositories.RunRepository, error) {
	if r.journal != nil {
		return r.journal, nil
	}

	db, err := shared.OpenJournal(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	r.journal = repositories.NewRunRepository(db)
	return r.journal, nil
}

// Close releases the journal database if this runner opened it.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// prompt writes label and reads one trimmed line of input.
//
// Returns [shared.ErrInputClosed] at end of input.
func (r *Runner) prompt(label string) (string, error) {
	if err := r.writePlain("%s", label); err != nil {
		return "", err
	}
	if !r.input.Scan() {
		if err := r.input.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", shared.ErrInputClosed
	}
	return strings.TrimSpace(r.input.Text()), nil
}

// promptChoice reads a number between 0 and upper inclusive, re-prompting until one is given.
func (r *Runner) promptChoice(label string, upper int, outOfRange string) (int, error) {
	for {
		answer, err := r.prompt(label)
		if err != nil {
			return 0, err
		}

		choice, err := parseChoice(answer, upper)
		switch {
		case errors.Is(err, shared.ErrOutOfRange):
			r.logger.Debug("rejected input", "error", err)
			r.writePlain("%s\n", r.palette.Warn(outOfRange))
		case errors.Is(err, shared.ErrInvalidInput):
			r.logger.Debug("rejected input", "error", err)
			r.writePlain("%s\n", r.palette.Warn("Invalid input. Please enter a number."))
		default:
			return choice, nil
		}
	}
}

// confirm asks a yes/no question until it gets y, yes, n or no (any case).
func (r *Runner) confirm(question string) (bool, error) {
	for {
		answer, err := r.prompt(question + " (y/n): ")
		if err != nil {
			return false, err
		}

		ok, err := parseConfirmation(answer)
		if err == nil {
			return ok, nil
		}
		r.logger.Debug("rejected input", "error", err)
		r.writePlain("%s\n", r.palette.Warn("Invalid answer. Please type 'y' for yes or 'n' for no."))
	}
}

// parseChoice converts a menu answer into a choice between 0 and upper inclusive.
//
// Returns [shared.ErrInvalidInput] for a non-number and [shared.ErrOutOfRange] for a number outside the menu.
func parseChoice(answer string, upper int) (int, error) {
	choice, err := strconv.Atoi(answer)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", shared.ErrInvalidInput, answer)
	}
	if choice < 0 || choice > upper {
		return 0, fmt.Errorf("%w: %d is not between 0 and %d", shared.ErrOutOfRange, choice, upper)
	}
	return choice, nil
}

func parseConfirmation(answer string) (bool, error) {
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not yes or no", shared.ErrInvalidInput, answer)
}

// isInputClosed reports whether err means the user closed stdin.
func isInputClosed(err error) bool {
	return errors.Is(err, shared.ErrInputClosed)
}
