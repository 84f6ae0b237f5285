package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func childrenOf(tree map[bson.ObjectID][]bson.ObjectID) func([]bson.ObjectID) ([]bson.ObjectID, error) {
	return func(parents []bson.ObjectID) ([]bson.ObjectID, error) {
		var out []bson.ObjectID
		for _, p := range parents {
			out = append(out, tree[p]...)
		}
		return out, nil
	}
}

func TestThreadIDsFollowsNestedReplies(t *testing.T) {
	root, r1, r2, r3, sibling := bson.NewObjectID(), bson.NewObjectID(), bson.NewObjectID(), bson.NewObjectID(), bson.NewObjectID()
	tree := map[bson.ObjectID][]bson.ObjectID{
		root: {r1, sibling},
		r1:   {r2},
		r2:   {r3},
	}

	ids, err := threadIDs(root, childrenOf(tree))
	require.NoError(t, err)
	assert.Equal(t, root, ids[0])
	assert.ElementsMatch(t, []bson.ObjectID{root, r1, sibling, r2, r3}, ids)

	leaf, err := threadIDs(r3, childrenOf(tree))
	require.NoError(t, err)
	assert.Equal(t, []bson.ObjectID{r3}, leaf)
}

func TestThreadIDsStopsOnCycles(t *testing.T) {
	a, b := bson.NewObjectID(), bson.NewObjectID()
	tree := map[bson.ObjectID][]bson.ObjectID{a: {b}, b: {a}}

	ids, err := threadIDs(a, childrenOf(tree))
	require.NoError(t, err)
	assert.Equal(t, []bson.ObjectID{a, b}, ids)
}

func TestThreadIDsPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := threadIDs(bson.NewObjectID(), func([]bson.ObjectID) ([]bson.ObjectID, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}
