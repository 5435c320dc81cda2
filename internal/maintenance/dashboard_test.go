package maintenance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

func TestSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.m.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, *empty)

	f.dueService(t, "DASH1", models.ServiceOilChange)
	f.assigned(t, "DASH2", "dash2@fleet.com")
	done, tech := f.assigned(t, "DASH3", "dash3@fleet.com")
	_, err = f.m.UpdateAssignmentStatus(ctx, done.ID.Hex(), "Completed", identityOf(tech))
	require.NoError(t, err)
	f.technician(t, "idle@fleet.com", []string{models.ServiceBatteryTest}, "monday")

	s, err := f.m.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{
		TotalVehicles:     3,
		ScheduledServices: 3,
		InProgress:        1,
		Completed:         1,
		ActiveTechnicians: 1,
		TotalTechnicians:  3,
	}, *s)
}
