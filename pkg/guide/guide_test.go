package guide

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicsOrder(t *testing.T) {
	keys := []string{}
	for _, topic := range Topics() {
		keys = append(keys, topic.Key)
		assert.NotEmpty(t, topic.Title, topic.Key)
		assert.NotEmpty(t, topic.Sections, topic.Key)
		for _, s := range topic.Sections {
			assert.NotEmpty(t, s.Title, topic.Key)
			assert.NotEmpty(t, s.Content, s.Title)
		}
	}
	assert.Equal(t, []string{"basics", "hills", "advanced", "tips"}, keys)
}

func TestFind(t *testing.T) {
	hills, ok := Find("hills")
	require.True(t, ok)
	assert.Equal(t, "Starting on Hills", hills.Title)

	_, ok = Find("drifting")
	assert.False(t, ok)
}
