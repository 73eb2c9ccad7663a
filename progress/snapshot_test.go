package progress

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShapesYieldSameSubTopics(t *testing.T) {
	legacy, err := Parse([]byte(`["7","9","7"]`))
	require.NoError(t, err)

	current, err := Parse([]byte(`{"subtopics":["7","9"],"contentProgress":{}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"7", "9"}, legacy.SubTopics)
	assert.Equal(t, legacy.SubTopics, current.SubTopics)
	assert.True(t, legacy.Legacy())
	assert.True(t, current.Legacy())
}

func TestParseEmptyAndNull(t *testing.T) {
	for _, raw := range []string{"", "null", "  "} {
		snap, err := Parse([]byte(raw))
		require.NoError(t, err)
		assert.Empty(t, snap.SubTopics)
		assert.Empty(t, snap.ContentProgress)
	}
}

func TestParseNumericLegacyIDs(t *testing.T) {
	snap, err := Parse([]byte(`[3, 4, "4"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "4"}, snap.SubTopics)
}

func TestParseRejectsScalars(t *testing.T) {
	_, err := Parse([]byte(`42`))
	assert.Error(t, err)
}

func TestParseContentProgress(t *testing.T) {
	raw := `{"subtopics":[],"contentProgress":{
		"11":{"completed":true,"completedAt":"2024-05-01T10:00:00.000Z","updatedAt":"2024-05-01T10:00:00.000Z"},
		"12":{"completed":false,"completedAt":null},
		"13":"garbage"}}`
	snap, err := Parse([]byte(raw))
	require.NoError(t, err)

	assert.True(t, snap.ContentCompleted("11"))
	assert.False(t, snap.ContentCompleted("12"))
	assert.NotContains(t, snap.ContentProgress, "13")
	require.NotNil(t, snap.ContentProgress["11"].CompletedAt)
	assert.Equal(t, 2024, snap.ContentProgress["11"].CompletedAt.Year())
}

func TestMarshalMigratesLegacy(t *testing.T) {
	snap, err := Parse([]byte(`["1","2"]`))
	require.NoError(t, err)

	out, err := snap.Marshal()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.EqualValues(t, SchemaVersion, decoded["version"])
	assert.Equal(t, []interface{}{"1", "2"}, decoded["subtopics"])
	assert.NotNil(t, decoded["contentProgress"])

	again, err := Parse(out)
	require.NoError(t, err)
	assert.False(t, again.Legacy())
	assert.Equal(t, snap.SubTopics, again.SubTopics)
}

func TestMarkContentIsIdempotent(t *testing.T) {
	snap := New()
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	snap.MarkContent("5", true, t1)
	first := snap.ContentProgress["5"]
	snap.MarkContent("5", true, t2)
	second := snap.ContentProgress["5"]

	assert.Len(t, snap.ContentProgress, 1)
	assert.Equal(t, first.Completed, second.Completed)
	assert.Equal(t, t2, *second.CompletedAt)

	snap.MarkContent("5", false, t2)
	assert.False(t, snap.ContentCompleted("5"))
	assert.Nil(t, snap.ContentProgress["5"].CompletedAt)
}

func TestAddRemoveSubTopicRestoresList(t *testing.T) {
	snap := New()
	snap.AddSubTopic("1")
	snap.AddSubTopic("2")
	before := append([]string(nil), snap.SubTopics...)

	assert.True(t, snap.AddSubTopic("3"))
	assert.False(t, snap.AddSubTopic("3"))
	assert.True(t, snap.RemoveSubTopic("3"))
	assert.False(t, snap.RemoveSubTopic("3"))

	assert.Equal(t, before, snap.SubTopics)
}

func TestEntriesSortedNumerically(t *testing.T) {
	snap := New()
	now := time.Now()
	snap.MarkContent("10", true, now)
	snap.MarkContent("9", false, now)
	snap.MarkContent("100", true, now)

	entries := snap.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "9", entries[0].ContentID)
	assert.Equal(t, "10", entries[1].ContentID)
	assert.Equal(t, "100", entries[2].ContentID)
	assert.Nil(t, entries[0].CompletedAt)
}

func TestEntriesMixedKeysPutNumbersFirst(t *testing.T) {
	snap := New()
	now := time.Now()
	for _, id := range []string{"2x", "10", "legacy", "3"} {
		snap.MarkContent(id, true, now)
	}

	var ids []string
	for _, e := range snap.Entries() {
		ids = append(ids, e.ContentID)
	}
	assert.Equal(t, []string{"3", "10", "2x", "legacy"}, ids)

	// the relation is transitive across the former cycle 10 < 2x < 3 < 10
	assert.True(t, lessID("3", "10"))
	assert.True(t, lessID("10", "2x"))
	assert.True(t, lessID("3", "2x"))
	assert.False(t, lessID("2x", "3"))
}
