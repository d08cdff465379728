package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/RichardKnop/minidb/internal/minidb"
	"github.com/RichardKnop/minidb/internal/parser"
)

const prompt = "db > "

type StatementPreparer interface {
	Parse(ctx context.Context, line string) (minidb.Statement, error)
}

type Database interface {
	ExecuteStatement(ctx context.Context, stmt minidb.Statement) (minidb.StatementResult, error)
	DumpTree(ctx context.Context, w io.Writer, pageIdx minidb.PageIndex, indentLevel int) error
	Stats(ctx context.Context) (minidb.Stats, error)
	Root() minidb.PageIndex
}

// REPL reads one statement or meta command per line and writes the results
// to out. It stops on .exit, at the end of input or on the first error that
// leaves the database unusable.
type REPL struct {
	db       Database
	preparer StatementPreparer
	in       io.Reader
	out      io.Writer
	logger   *zap.Logger
}

func New(logger *zap.Logger, db Database, preparer StatementPreparer, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		db:       db,
		preparer: preparer,
		in:       in,
		out:      out,
		logger:   logger,
	}
}

type metaCommand int

const (
	Unknown metaCommand = iota + 1
	Help
	Exit
	BTree
	Constants
	Stats
)

func isMetaCommand(inputBuffer string) bool {
	return len(inputBuffer) > 0 && inputBuffer[:1] == "."
}

func doMetaCommand(inputBuffer string) metaCommand {
	switch inputBuffer {
	case "help":
		return Help
	case "exit":
		return Exit
	case "btree":
		return BTree
	case "constants":
		return Constants
	case "stats":
		return Stats
	default:
		return Unknown
	}
}

func sanitizeReplInput(input string) string {
	return strings.TrimSpace(input)
}

// Run returns nil when the session ends normally. A non nil error means the
// session was aborted and its message has already been printed.
func (r *REPL) Run(ctx context.Context) error {
	reader := bufio.NewScanner(r.in)
	r.printPrompt()

	for reader.Scan() {
		inputBuffer := sanitizeReplInput(reader.Text())

		var (
			exit bool
			err  error
		)
		switch {
		case inputBuffer == "":
		case isMetaCommand(inputBuffer):
			exit, err = r.runMetaCommand(ctx, inputBuffer)
		default:
			err = r.runStatement(ctx, inputBuffer)
		}
		if err != nil {
			r.logger.Error("aborting session", zap.String("input", inputBuffer), zap.Error(err))
			return err
		}
		if exit {
			return nil
		}

		r.printPrompt()
	}
	if err := reader.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	// Print an additional line if we encountered an EOF character
	fmt.Fprintln(r.out)
	return nil
}

func (r *REPL) printPrompt() {
	fmt.Fprint(r.out, prompt)
}

func (r *REPL) runMetaCommand(ctx context.Context, inputBuffer string) (bool, error) {
	switch doMetaCommand(inputBuffer[1:]) {
	case Help:
		fmt.Fprintln(r.out, ".help       - Show available commands")
		fmt.Fprintln(r.out, ".exit       - Closes program")
		fmt.Fprintln(r.out, ".btree      - Print the structure of the table's B+Tree")
		fmt.Fprintln(r.out, ".constants  - Print the on-disk layout constants")
		fmt.Fprintln(r.out, ".stats      - Print pager statistics")
	case Exit:
		fmt.Fprintln(r.out, "Bye!")
		return true, nil
	case BTree:
		fmt.Fprintln(r.out, "Tree:")
		if err := r.db.DumpTree(ctx, r.out, r.db.Root(), 0); err != nil {
			r.printError(err)
			return false, err
		}
	case Constants:
		fmt.Fprintln(r.out, "Constants:")
		minidb.DumpConstants(r.out)
	case Stats:
		stats, err := r.db.Stats(ctx)
		if err != nil {
			r.printError(err)
			return false, err
		}
		stats.Dump(r.out)
	case Unknown:
		fmt.Fprintf(r.out, "Unrecognized command: %s\n", inputBuffer)
	}
	return false, nil
}

// runStatement only returns errors the session cannot recover from.
func (r *REPL) runStatement(ctx context.Context, inputBuffer string) error {
	stmt, err := r.preparer.Parse(ctx, inputBuffer)
	if err != nil {
		r.printError(err)
		return nil
	}

	aResult, err := r.db.ExecuteStatement(ctx, stmt)
	if err != nil {
		r.printError(err)
		if minidb.IsFatal(err) {
			return err
		}
		return nil
	}

	for _, aRow := range aResult.Rows {
		fmt.Fprintln(r.out, aRow.String())
	}
	fmt.Fprintln(r.out, "Executed.")
	return nil
}

func (r *REPL) printError(err error) {
	fmt.Fprintln(r.out, errorMessage(err))
}

func errorMessage(err error) string {
	var (
		validationErr   *minidb.ValidationError
		unrecognizedErr *parser.UnrecognizedStatementError
	)
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &unrecognizedErr):
		return unrecognizedErr.Error()
	case errors.Is(err, parser.ErrSyntax):
		return parser.ErrSyntax.Error()
	case errors.Is(err, minidb.ErrDuplicateKey):
		return "Error: " + minidb.ErrDuplicateKey.Error()
	case errors.Is(err, minidb.ErrSplitUnimplemented):
		return minidb.ErrSplitUnimplemented.Error()
	case errors.Is(err, minidb.ErrCapacity):
		return wrappingMessage(err, minidb.ErrCapacity)
	default:
		return "Error: " + err.Error()
	}
}

// wrappingMessage strips the context prefixes added on the way up and keeps the
// error that wraps target directly, together with its details.
func wrappingMessage(err, target error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if strings.HasPrefix(e.Error(), target.Error()) {
			return e.Error()
		}
	}
	return target.Error()
}
