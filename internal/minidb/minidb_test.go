package minidb

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

//go:generate mockery --name=Pager --structname=MockPager --inpackage --case=snake --testonly

var (
	gen        = newDataGen(time.Now().Unix())
	testLogger = zap.NewNop()
)

type dataGen struct {
	*gofakeit.Faker
}

func newDataGen(seed int64) *dataGen {
	g := dataGen{
		Faker: gofakeit.New(seed),
	}

	return &g
}

func (g *dataGen) Row(id int32) Row {
	username := g.Username()
	if len(username) > ColumnUsernameSize {
		username = username[:ColumnUsernameSize]
	}
	return Row{
		ID:       id,
		Username: username,
		Email:    g.Email(),
	}
}

// Rows returns rows with IDs 1..number in random order.
func (g *dataGen) Rows(number int) []Row {
	ids := make([]int, 0, number)
	for i := 1; i <= number; i++ {
		ids = append(ids, i)
	}
	g.ShuffleInts(ids)

	rows := make([]Row, 0, number)
	for _, id := range ids {
		rows = append(rows, g.Row(int32(id)))
	}
	return rows
}

func templateRow(id int32) Row {
	return Row{
		ID:       id,
		Username: fmt.Sprintf("user%d", id),
		Email:    fmt.Sprintf("person%d@example.com", id),
	}
}

func openTestTable(t *testing.T, path string, opts ...Option) *Table {
	t.Helper()
	aTable, err := Open(context.Background(), testLogger, path, opts...)
	require.NoError(t, err)
	return aTable
}

func tempDBPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "test.db")
}

func insertKeys(t *testing.T, aTable *Table, keys ...int32) {
	t.Helper()
	for _, key := range keys {
		require.NoError(t, aTable.Insert(context.Background(), templateRow(key)))
	}
}

func keyRange(from, to int32) []int32 {
	keys := make([]int32, 0, to-from+1)
	for k := from; k <= to; k++ {
		keys = append(keys, k)
	}
	return keys
}

func dumpTree(t *testing.T, aTable *Table) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, aTable.DumpTree(context.Background(), &buf, aTable.RootPageIdx, 0))
	return buf.String()
}

func leafDump(indentLevel int, keys ...int32) string {
	var buf bytes.Buffer
	indent := ""
	for i := 0; i < indentLevel; i++ {
		indent += "  "
	}
	fmt.Fprintf(&buf, "%s- leaf (size %d)\n", indent, len(keys))
	for _, key := range keys {
		fmt.Fprintf(&buf, "%s  - %d\n", indent, key)
	}
	return buf.String()
}

// assertTreeInvariants walks the whole tree and returns keys in leaf order.
func assertTreeInvariants(t *testing.T, aTable *Table) []uint32 {
	t.Helper()

	var (
		ctx    = context.Background()
		leaves []PageIndex
		keys   []uint32
	)

	var walk func(pageIdx, parentIdx PageIndex, isRoot bool, lowerBound, upperBound *uint32)
	walk = func(pageIdx, parentIdx PageIndex, isRoot bool, lowerBound, upperBound *uint32) {
		aPage, err := aTable.pager.ReadPage(ctx, pageIdx)
		require.NoError(t, err)
		require.Equal(t, isRoot, aPage.IsRoot(), "page %d root flag", pageIdx)
		if !isRoot {
			require.Equal(t, parentIdx, aPage.Parent(), "page %d parent", pageIdx)
		}

		if aPage.LeafNode != nil {
			for _, key := range aPage.LeafNode.Keys() {
				if lowerBound != nil {
					require.Greater(t, key, *lowerBound)
				}
				if upperBound != nil {
					require.LessOrEqual(t, key, *upperBound)
				}
			}
			leaves = append(leaves, pageIdx)
			return
		}

		aNode := aPage.InternalNode
		require.NotEqual(t, RightChildNotSet, aNode.Header.RightChild)
		lower := lowerBound
		for idx := uint32(0); idx < aNode.Header.KeysNum; idx++ {
			aChildPage, err := aTable.pager.ReadPage(ctx, aNode.ICells[idx].Child)
			require.NoError(t, err)
			maxKey, err := aTable.GetMaxKey(ctx, aChildPage)
			require.NoError(t, err)
			require.Equal(t, aNode.ICells[idx].Key, maxKey, "separator %d of page %d", idx, pageIdx)

			key := aNode.ICells[idx].Key
			walk(aNode.ICells[idx].Child, pageIdx, false, lower, &key)
			lower = &key
		}
		walk(aNode.Header.RightChild, pageIdx, false, lower, upperBound)
	}
	walk(aTable.RootPageIdx, 0, true, nil, nil)

	for i, leafIdx := range leaves {
		aPage, err := aTable.pager.ReadPage(ctx, leafIdx)
		require.NoError(t, err)
		if i == len(leaves)-1 {
			require.Equal(t, PageIndex(0), aPage.LeafNode.Header.NextLeaf)
		} else {
			require.Equal(t, leaves[i+1], aPage.LeafNode.Header.NextLeaf)
		}
		keys = append(keys, aPage.LeafNode.Keys()...)
	}

	for i := 1; i < len(keys); i++ {
		require.Less(t, keys[i-1], keys[i])
	}

	return keys
}

func resetMock(aMock *mock.Mock) {
	aMock.ExpectedCalls = nil
	aMock.Calls = nil
}

func assertRowsInOrder(t *testing.T, expected []Row, actual []Row) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		assert.Equal(t, expected[i], actual[i])
	}
}
