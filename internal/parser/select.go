package parser

import (
	"github.com/RichardKnop/minidb/internal/minidb"
)

// Only full table scans exist, anything after the keyword is ignored.
func prepareSelect() minidb.Statement {
	return minidb.Statement{Kind: minidb.Select}
}
