package parser

import (
	"testing"

	"github.com/RichardKnop/minidb/internal/minidb"
)

func TestParse_Insert(t *testing.T) {
	t.Parallel()

	testCases := []testCase{
		{
			"Empty INSERT fails",
			"insert",
			minidb.Statement{},
			ErrSyntax,
		},
		{
			"INSERT with missing email fails",
			"insert 2 user2",
			minidb.Statement{},
			ErrSyntax,
		},
		{
			"INSERT with non numeric id fails",
			"insert one user1 person1@example.com",
			minidb.Statement{},
			ErrSyntax,
		},
		{
			"INSERT with id overflowing int32 fails",
			"insert 2147483648 user1 person1@example.com",
			minidb.Statement{},
			ErrSyntax,
		},
		{
			"INSERT with negative id fails",
			"insert -1 cstack foo@bar.com",
			minidb.Statement{},
			minidb.ErrIDNotPositive,
		},
		{
			"INSERT with zero id fails",
			"insert 0 cstack foo@bar.com",
			minidb.Statement{},
			minidb.ErrIDNotPositive,
		},
		{
			"INSERT works",
			"insert 1 user1 person1@example.com",
			minidb.Statement{
				Kind:        minidb.Insert,
				RowToInsert: minidb.Row{ID: 1, Username: "user1", Email: "person1@example.com"},
			},
			nil,
		},
		{
			"INSERT with extra whitespace works",
			"insert   42  user42\tperson42@example.com",
			minidb.Statement{
				Kind:        minidb.Insert,
				RowToInsert: minidb.Row{ID: 42, Username: "user42", Email: "person42@example.com"},
			},
			nil,
		},
		{
			"INSERT ignores trailing tokens",
			"insert 7 user7 person7@example.com whatever",
			minidb.Statement{
				Kind:        minidb.Insert,
				RowToInsert: minidb.Row{ID: 7, Username: "user7", Email: "person7@example.com"},
			},
			nil,
		},
		{
			"INSERT with max int32 id works",
			"insert 2147483647 a b",
			minidb.Statement{
				Kind:        minidb.Insert,
				RowToInsert: minidb.Row{ID: 2147483647, Username: "a", Email: "b"},
			},
			nil,
		},
	}

	runTestCases(t, testCases)
}
