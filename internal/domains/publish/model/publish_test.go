package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidate(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"page ids", Request{PageIDs: []string{id}}, false},
		{"batch", Request{BatchID: id}, false},
		{"all", Request{PublishAll: true}, false},
		{"none", Request{}, true},
		{"two selectors", Request{BatchID: id, PublishAll: true}, true},
		{"bad page id", Request{PageIDs: []string{"nope"}}, true},
		{"bad batch id", Request{BatchID: "nope"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequestSelectorDedupesIDs(t *testing.T) {
	id := uuid.New()
	sel, err := Request{PageIDs: []string{id.String(), id.String()}}.Selector()
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, sel.IDs)

	sel, err = Request{PublishAll: true}.Selector()
	require.NoError(t, err)
	assert.True(t, sel.All)

	sel, err = Request{BatchID: id.String()}.Selector()
	require.NoError(t, err)
	require.NotNil(t, sel.BatchID)
	assert.Equal(t, id, *sel.BatchID)
}

func TestStageCountsRecord(t *testing.T) {
	var s StageCounts
	s.Record(true)
	s.Record(false)
	s.Record(true)
	assert.Equal(t, StageCounts{Attempted: 3, Successful: 2, Failed: 1}, s)
}
