package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordBookingCommand(t *testing.T) {
	before := testutil.ToFloat64(BookingCommandsTotal.WithLabelValues("create", "ConflictError"))
	RecordBookingCommand("create", "ConflictError")
	after := testutil.ToFloat64(BookingCommandsTotal.WithLabelValues("create", "ConflictError"))

	assert.Equal(t, before+1, after)
}

func TestRecordAvailabilityQuery(t *testing.T) {
	before := testutil.ToFloat64(AvailabilityQueriesTotal.WithLabelValues("hit"))
	RecordAvailabilityQuery("hit")
	assert.Equal(t, before+1, testutil.ToFloat64(AvailabilityQueriesTotal.WithLabelValues("hit")))
}
