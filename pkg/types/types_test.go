package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortKeyCycle(t *testing.T) {
	assert.Equal(t, SortByScore, SortByName.Next())
	assert.Equal(t, SortByLastVisit, SortByScore.Next())
	assert.Equal(t, SortByName, SortByLastVisit.Next())
}

func TestParseSortKey(t *testing.T) {
	for _, key := range []SortKey{SortByName, SortByScore, SortByLastVisit} {
		got, err := ParseSortKey(key.String())
		require.NoError(t, err)
		assert.Equal(t, key, got)
	}

	_, err := ParseSortKey("color")
	assert.Error(t, err)
}

func TestPageRequestWire(t *testing.T) {
	req := PageRequest{Offset: 200, Limit: 100, Sort: SortByScore}
	assert.Equal(t, "score:200:100", req.Key())

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"offset":200,"limit":100,"sort":"score"}`, string(data))
}

func TestPageTotalOmittedWhenUnknown(t *testing.T) {
	data, err := json.Marshal(Page{Offset: 0})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "total")
}
