package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasic(t *testing.T) {
	rows := []Row{
		{{"Key", "42"}, {"Owner", "Alice"}, {"Size", int64(1024)}},
		{{"Key", "7"}, {"Owner", "Bob"}, {"Size", int64(12)}},
		{{"Key", "13"}, {"Owner", "Carol"}, {"Size", nil}},
	}

	out := string(Basic{}.Render(rows, Options{Sort: true}))
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 7)

	assert.Equal(t, "|---|-----|----|", lines[0])
	assert.Equal(t, "|Key|Owner|Size|", lines[1])
	assert.Equal(t, "|13 |Carol|    |", lines[3])
	assert.Equal(t, "|42 |Alice|1024|", lines[4])
	assert.Equal(t, "|7  |Bob  |12  |", lines[5])
	assert.Equal(t, lines[0], lines[6])
}

func TestBasicEmpty(t *testing.T) {
	assert.Nil(t, Basic{}.Render(nil, Options{}))
	assert.Nil(t, Basic{}.Render([]Row{{}}, Options{}))
}
