package isotime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTruncatesToMillisInUTC(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 123999999, time.FixedZone("WIB", 7*3600))
	assert.Equal(t, "2024-03-09T07:05:07.123Z", Format(ts))
}
