package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RichardKnop/minidb/internal/minidb"
)

// prepareInsert expects "insert <id> <username> <email>". Tokens past the
// email are ignored.
func prepareInsert(line string) (minidb.Statement, error) {
	tokens := strings.Fields(line)
	if len(tokens) < 4 {
		return minidb.Statement{}, ErrSyntax
	}

	id, err := strconv.ParseInt(tokens[1], 10, 32)
	if err != nil {
		return minidb.Statement{}, fmt.Errorf("%w: invalid id %q", ErrSyntax, tokens[1])
	}

	aRow := minidb.Row{
		ID:       int32(id),
		Username: tokens[2],
		Email:    tokens[3],
	}
	if err := aRow.Validate(); err != nil {
		return minidb.Statement{}, err
	}

	return minidb.Statement{
		Kind:        minidb.Insert,
		RowToInsert: aRow,
	}, nil
}
