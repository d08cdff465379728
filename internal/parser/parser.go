package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RichardKnop/minidb/internal/minidb"
	"github.com/RichardKnop/minidb/pkg/lrucache"
)

const DefaultCacheSize = 128

var ErrSyntax = errors.New("Syntax error. Could not parse statement.")

// UnrecognizedStatementError is returned when a line starts with neither of
// the supported keywords.
type UnrecognizedStatementError struct {
	Line string
}

func (e *UnrecognizedStatementError) Error() string {
	return fmt.Sprintf("Unrecognized keyword at start of '%s'.", e.Line)
}

type Option func(*Parser)

// WithCacheSize sets how many prepared statements are remembered.
func WithCacheSize(size int) Option {
	return func(p *Parser) {
		if size > 0 {
			p.cacheSize = size
		}
	}
}

// Parser prepares statements from input lines. Successfully prepared lines
// are cached so repeated statements skip tokenizing and validation.
type Parser struct {
	cacheSize int
	cache     *lrucache.Cache[string, minidb.Statement]
}

func New(opts ...Option) *Parser {
	p := &Parser{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(p)
	}
	p.cache = lrucache.New[string, minidb.Statement](p.cacheSize)
	return p
}

func (p *Parser) Parse(ctx context.Context, line string) (minidb.Statement, error) {
	if stmt, ok := p.cache.Get(line); ok {
		return stmt, nil
	}

	var (
		stmt minidb.Statement
		err  error
	)
	switch {
	case strings.HasPrefix(line, "insert"):
		stmt, err = prepareInsert(line)
	case strings.HasPrefix(line, "select"):
		stmt = prepareSelect()
	default:
		err = &UnrecognizedStatementError{Line: line}
	}
	if err != nil {
		return minidb.Statement{}, err
	}

	p.cache.Put(line, stmt)

	return stmt, nil
}

// CachedStatements returns the number of prepared statements held in the cache.
func (p *Parser) CachedStatements() int {
	return p.cache.Len()
}
