package services

import (
	"testing"

	"gamezone_pos_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appt(id, roomID int64, date, timeOfDay, hours, status string) models.Appointment {
	return models.Appointment{
		ID:              id,
		RoomID:          roomID,
		CustomerName:    "Customer",
		AppointmentDate: date,
		AppointmentTime: timeOfDay,
		DurationHours:   decimal.RequireFromString(hours),
		Status:          status,
	}
}

func TestHasConflict(t *testing.T) {
	existing := []models.Appointment{
		appt(1, 1, "2026-04-01", "14:00", "2", models.AppointmentStatusScheduled),
	}

	tests := []struct {
		name      string
		candidate models.Appointment
		excludeID *int64
		want      bool
	}{
		{
			name:      "back to back after is allowed",
			candidate: appt(0, 1, "2026-04-01", "16:00", "1", models.AppointmentStatusScheduled),
			want:      false,
		},
		{
			name:      "back to back before is allowed",
			candidate: appt(0, 1, "2026-04-01", "13:00", "1", models.AppointmentStatusScheduled),
			want:      false,
		},
		{
			name:      "overlapping tail conflicts",
			candidate: appt(0, 1, "2026-04-01", "15:00", "2", models.AppointmentStatusScheduled),
			want:      true,
		},
		{
			name:      "overlapping head conflicts",
			candidate: appt(0, 1, "2026-04-01", "13:00", "1.5", models.AppointmentStatusScheduled),
			want:      true,
		},
		{
			name:      "contained slot conflicts",
			candidate: appt(0, 1, "2026-04-01", "14:30", "0.5", models.AppointmentStatusScheduled),
			want:      true,
		},
		{
			name:      "containing slot conflicts",
			candidate: appt(0, 1, "2026-04-01", "13:00", "4", models.AppointmentStatusScheduled),
			want:      true,
		},
		{
			name:      "other room does not conflict",
			candidate: appt(0, 2, "2026-04-01", "14:00", "2", models.AppointmentStatusScheduled),
			want:      false,
		},
		{
			name:      "other date does not conflict",
			candidate: appt(0, 1, "2026-04-02", "14:00", "2", models.AppointmentStatusScheduled),
			want:      false,
		},
		{
			name:      "excluded appointment is skipped",
			candidate: appt(0, 1, "2026-04-01", "14:00", "2", models.AppointmentStatusScheduled),
			excludeID: func() *int64 { id := int64(1); return &id }(),
			want:      false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			candidate := tc.candidate
			got, err := HasConflict(&candidate, existing, tc.excludeID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHasConflictIgnoresCancelled(t *testing.T) {
	existing := []models.Appointment{
		appt(1, 1, "2026-04-01", "14:00", "2", models.AppointmentStatusCancelled),
	}
	candidate := appt(0, 1, "2026-04-01", "14:00", "2", models.AppointmentStatusScheduled)

	got, err := HasConflict(&candidate, existing, nil)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestHasConflictRejectsMalformedCandidate(t *testing.T) {
	candidate := appt(0, 1, "2026-04-01", "25:99", "1", models.AppointmentStatusScheduled)

	_, err := HasConflict(&candidate, nil, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

type appointmentTestEnv struct {
	svc          AppointmentService
	appointments *fakeAppointmentRepo
	rooms        *fakeRoomRepo
}

// The appointment service writes through the plain connection, so no
// transaction expectations are needed here.
func newAppointmentEnv(t *testing.T) *appointmentTestEnv {
	t.Helper()
	db, _ := newMockDB(t)
	env := &appointmentTestEnv{
		appointments: newFakeAppointmentRepo(),
		rooms:        newFakeRoomRepo(),
	}
	env.rooms.addRoom(models.Room{
		ID:            1,
		Name:          "Room 1",
		ConsoleType:   models.ConsoleTypePS5,
		Status:        models.RoomStatusAvailable,
		PricingSingle: decimal.NewFromInt(25),
	})
	env.svc = NewAppointmentService(env.appointments, env.rooms, db)
	return env
}

func TestCreateAppointmentRefusesOverlap(t *testing.T) {
	env := newAppointmentEnv(t)

	first, err := env.svc.CreateAppointment(CreateAppointmentRequest{
		RoomID:          1,
		CustomerName:    "Aibek",
		AppointmentDate: "2026-04-01",
		AppointmentTime: "14:00",
		DurationHours:   decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusScheduled, first.Status)

	_, err = env.svc.CreateAppointment(CreateAppointmentRequest{
		RoomID:          1,
		CustomerName:    "Dana",
		AppointmentDate: "2026-04-01",
		AppointmentTime: "15:00",
		DurationHours:   decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, ErrAppointmentConflict)

	// The adjacent slot right after is fine.
	_, err = env.svc.CreateAppointment(CreateAppointmentRequest{
		RoomID:          1,
		CustomerName:    "Dana",
		AppointmentDate: "2026-04-01",
		AppointmentTime: "16:00",
		DurationHours:   decimal.NewFromInt(1),
	})
	assert.NoError(t, err)
}

func TestCreateAppointmentUnknownRoom(t *testing.T) {
	env := newAppointmentEnv(t)

	_, err := env.svc.CreateAppointment(CreateAppointmentRequest{
		RoomID:          7,
		CustomerName:    "Aibek",
		AppointmentDate: "2026-04-01",
		AppointmentTime: "14:00",
		DurationHours:   decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, ErrRoomForAppointment)
}

func TestUpdateAppointmentExcludesItselfFromConflictCheck(t *testing.T) {
	env := newAppointmentEnv(t)

	created, err := env.svc.CreateAppointment(CreateAppointmentRequest{
		RoomID:          1,
		CustomerName:    "Aibek",
		AppointmentDate: "2026-04-01",
		AppointmentTime: "14:00",
		DurationHours:   decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	// Shrinking the same slot must not collide with its own record.
	newDuration := decimal.NewFromInt(1)
	updated, err := env.svc.UpdateAppointment(created.ID, UpdateAppointmentRequest{
		DurationHours: &newDuration,
	})
	require.NoError(t, err)
	decEqual(t, "1", updated.DurationHours)
}

func TestUpdateAppointmentRefusesTerminalStates(t *testing.T) {
	env := newAppointmentEnv(t)

	created, err := env.svc.CreateAppointment(CreateAppointmentRequest{
		RoomID:          1,
		CustomerName:    "Aibek",
		AppointmentDate: "2026-04-01",
		AppointmentTime: "14:00",
		DurationHours:   decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	_, err = env.svc.UpdateAppointmentStatus(created.ID, models.AppointmentStatusCompleted)
	require.NoError(t, err)

	name := "Someone Else"
	_, err = env.svc.UpdateAppointment(created.ID, UpdateAppointmentRequest{CustomerName: &name})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateAppointmentStatusTransitions(t *testing.T) {
	env := newAppointmentEnv(t)

	created, err := env.svc.CreateAppointment(CreateAppointmentRequest{
		RoomID:          1,
		CustomerName:    "Aibek",
		AppointmentDate: "2026-04-01",
		AppointmentTime: "14:00",
		DurationHours:   decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	active, err := env.svc.UpdateAppointmentStatus(created.ID, models.AppointmentStatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusActive, active.Status)

	completed, err := env.svc.UpdateAppointmentStatus(created.ID, models.AppointmentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCompleted, completed.Status)

	// Completed is terminal.
	_, err = env.svc.UpdateAppointmentStatus(created.ID, models.AppointmentStatusScheduled)
	assert.ErrorIs(t, err, ErrAppointmentStatusChange)
}
