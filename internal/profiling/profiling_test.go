package profiling

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackAccumulates(t *testing.T) {
	ResetFrame()
	for range 3 {
		stop := Track("test.op")
		time.Sleep(time.Millisecond)
		stop()
	}
	Track("test.other")()

	snap := Snapshot()
	assert.GreaterOrEqual(t, snap["test.op"], 3*time.Millisecond)
	assert.Equal(t, 3, Calls("test.op"))
	assert.Equal(t, 1, Calls("test.other"))

	top := TopN(1)
	assert.True(t, strings.HasPrefix(top, "test.op:"), top)
	assert.True(t, strings.HasSuffix(top, "ms"), top)

	ResetFrame()
	assert.Empty(t, Snapshot())
	assert.Equal(t, "", TopN(5))
}
