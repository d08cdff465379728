package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RichardKnop/minidb/internal/minidb"
)

type testCase struct {
	Name     string
	Line     string
	Expected minidb.Statement
	Err      error
}

func runTestCases(t *testing.T, testCases []testCase) {
	for _, aTestCase := range testCases {
		t.Run(aTestCase.Name, func(t *testing.T) {
			aStatement, err := New().Parse(context.Background(), aTestCase.Line)
			if aTestCase.Err != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, aTestCase.Err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, aTestCase.Expected, aStatement)
		})
	}
}

func TestParse_Unrecognized(t *testing.T) {
	t.Parallel()

	for _, line := range []string{"hello world", "", "INSERT 1 a b", " select"} {
		_, err := New().Parse(context.Background(), line)
		require.Error(t, err)

		var unrecognizedErr *UnrecognizedStatementError
		require.ErrorAs(t, err, &unrecognizedErr)
		assert.Equal(t, line, unrecognizedErr.Line)
	}

	_, err := New().Parse(context.Background(), "hello world")
	assert.Equal(t, "Unrecognized keyword at start of 'hello world'.", err.Error())
}

func TestParse_Cache(t *testing.T) {
	t.Parallel()

	var (
		ctx     = context.Background()
		aParser = New(WithCacheSize(2))
	)

	first, err := aParser.Parse(ctx, "insert 1 user1 person1@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, aParser.CachedStatements())

	second, err := aParser.Parse(ctx, "insert 1 user1 person1@example.com")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, aParser.CachedStatements())

	// Failed preparations are never cached
	_, err = aParser.Parse(ctx, "insert 2 user2")
	require.ErrorIs(t, err, ErrSyntax)
	_, err = aParser.Parse(ctx, "insert -1 user1 person1@example.com")
	require.ErrorIs(t, err, minidb.ErrIDNotPositive)
	assert.Equal(t, 1, aParser.CachedStatements())

	_, err = aParser.Parse(ctx, "select")
	require.NoError(t, err)
	_, err = aParser.Parse(ctx, "insert 3 user3 person3@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, aParser.CachedStatements())
}

func TestNew_CacheSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultCacheSize, New().cacheSize)
	assert.Equal(t, DefaultCacheSize, New(WithCacheSize(0)).cacheSize)
	assert.Equal(t, 10, New(WithCacheSize(10)).cacheSize)
}

func TestParse_LongStrings(t *testing.T) {
	t.Parallel()

	var (
		longUsername = strings.Repeat("a", minidb.ColumnUsernameSize)
		longEmail    = strings.Repeat("a", minidb.ColumnEmailSize)
	)

	runTestCases(t, []testCase{
		{
			"Maximum length strings work",
			"insert 1 " + longUsername + " " + longEmail,
			minidb.Statement{
				Kind:        minidb.Insert,
				RowToInsert: minidb.Row{ID: 1, Username: longUsername, Email: longEmail},
			},
			nil,
		},
		{
			"Username too long fails",
			"insert 1 " + longUsername + "a " + longEmail,
			minidb.Statement{},
			minidb.ErrStringTooLong,
		},
		{
			"Email too long fails",
			"insert 1 " + longUsername + " " + longEmail + "a",
			minidb.Statement{},
			minidb.ErrStringTooLong,
		},
	})
}
