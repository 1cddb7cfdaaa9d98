package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pms/config"
	"pms/infras/metrics"
	otelMocks "pms/infras/otel/mocks"
	postgresMocks "pms/infras/postgres/mocks"
	s3Mocks "pms/infras/s3/mocks"
	bookingMocks "pms/internal/domains/booking/mocks"
	bookingModel "pms/internal/domains/booking/model"
	"pms/internal/domains/groupbooking/allocation"
	"pms/internal/domains/groupbooking/event"
	groupMocks "pms/internal/domains/groupbooking/mocks"
	"pms/internal/domains/groupbooking/model"
	"pms/internal/domains/groupbooking/model/dto"
	"pms/internal/domains/groupbooking/service"
	roomMocks "pms/internal/domains/room/mocks"
	roomModel "pms/internal/domains/room/model"
	roomRepo "pms/internal/domains/room/repository"
	"pms/shared/cache"
	cacheMocks "pms/shared/cache/mocks"
	"pms/shared/constant"
	gDto "pms/shared/dto"
	"pms/shared/failure"
)

var (
	checkIn  = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	checkOut = time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc       service.GroupBooking
	repo      *groupMocks.MockGroupBooking
	rooms     *roomMocks.MockRoom
	bookings  *bookingMocks.MockBooking
	storage   *s3Mocks.MockS3
	published chan event.GroupBookingEvent
	cleared   chan string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Allocation.DefaultMaxOccupancy = 2
	cfg.Allocation.UpcomingDays = 30
	cfg.Allocation.BlockCodePrefix = "GRP"

	f := &fixture{
		repo:      groupMocks.NewMockGroupBooking(ctrl),
		rooms:     roomMocks.NewMockRoom(ctrl),
		bookings:  bookingMocks.NewMockBooking(ctrl),
		storage:   s3Mocks.NewMockS3(ctrl),
		published: make(chan event.GroupBookingEvent, 8),
		cleared:   make(chan string, 32),
	}

	redis := cacheMocks.NewMockRedisCache(ctrl)
	redis.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil).AnyTimes()
	redis.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	redis.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	redis.EXPECT().Clear(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, prefix string) error {
			f.cleared <- prefix

			return nil
		}).AnyTimes()

	publisher := groupMocks.NewMockPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, evt event.GroupBookingEvent) error {
			f.published <- evt

			return nil
		}).AnyTimes()

	f.svc = service.New(
		f.repo,
		f.rooms,
		f.bookings,
		postgresMocks.NewTransactor(),
		publisher,
		f.storage,
		metrics.New(cfg),
		cfg,
		redis,
		otelMocks.NewOtel(),
	)

	return f
}

func (f *fixture) waitEvent(t *testing.T) event.GroupBookingEvent {
	t.Helper()

	select {
	case evt := <-f.published:
		return evt
	case <-time.After(time.Second):
		t.Fatal("no event published")

		return event.GroupBookingEvent{}
	}
}

func (f *fixture) waitInvalidated(t *testing.T) {
	t.Helper()

	deadline := time.After(time.Second)

	for {
		select {
		case prefix := <-f.cleared:
			if prefix == "group_booking:upcoming:*" {
				return
			}
		case <-deadline:
			t.Fatal("caches were not invalidated")
		}
	}
}

func ctxWithUser() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "operator-1")
}

func inventory() []roomModel.Room {
	return []roomModel.Room{
		{ID: "A", Number: "101", Type: roomModel.TypeDouble, Status: roomModel.StatusClean, MaxOccupancy: 2},
		{ID: "B", Number: "102", Type: roomModel.TypeDeluxe, Status: roomModel.StatusClean, MaxOccupancy: 4},
		{ID: "C", Number: "201", Type: roomModel.TypeSuite, Status: roomModel.StatusInspected, MaxOccupancy: 6},
	}
}

func inquiry(guests int) model.GroupBooking {
	return model.GroupBooking{
		ID:             "grp-1",
		GroupName:      "Acme Offsite",
		ContactPerson:  "Dana Reyes",
		TotalGuests:    guests,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Status:         model.StatusInquiry,
		TotalAmount:    1200,
		Currency:       "USD",
		BlockCode:      "GRP-ACME",
		RoomAllocation: model.Allocation{},
	}
}

func allocated() model.GroupBooking {
	group := inquiry(10)
	group.RoomAllocation = model.Allocation{
		{RoomID: "C", RoomNumber: "201", RoomType: roomModel.TypeSuite, MaxOccupancy: 6, AssignedGuests: 6, GuestNames: []string{}},
		{RoomID: "B", RoomNumber: "102", RoomType: roomModel.TypeDeluxe, MaxOccupancy: 4, AssignedGuests: 4, GuestNames: []string{}},
	}
	group.TotalRooms = 2

	return group
}

func withStatus(group model.GroupBooking, status string) model.GroupBooking {
	group.Status = status

	return group
}

func TestGroupBookingService_Create(t *testing.T) {
	t.Run("allocates right after insert", func(t *testing.T) {
		f := newFixture(t)

		var saved map[string]any

		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, group model.GroupBooking) error {
				assert.Equal(t, model.StatusInquiry, group.Status)
				assert.Empty(t, group.RoomAllocation)
				assert.Contains(t, group.BlockCode, "GRP-")

				return nil
			})
		f.rooms.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(inventory(), nil)
		f.bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				saved = fields

				return nil
			})

		res, err := f.svc.Create(ctxWithUser(), dto.CreateGroupBookingRequest{
			GroupName:     "Acme Offsite",
			ContactPerson: "Dana Reyes",
			TotalGuests:   10,
			CheckIn:       "2025-03-10",
			CheckOut:      "2025-03-12",
		})

		require.NoError(t, err)
		assert.Equal(t, model.StatusInquiry, res.Status)
		assert.Equal(t, 2, res.TotalRooms)
		require.Len(t, res.RoomAllocation, 2)
		assert.Equal(t, "C", res.RoomAllocation[0].RoomID)
		assert.Equal(t, 6, res.RoomAllocation[0].AssignedGuests)
		assert.Equal(t, "B", res.RoomAllocation[1].RoomID)
		assert.Equal(t, 4, res.RoomAllocation[1].AssignedGuests)
		assert.False(t, res.Summary.Partial)
		assert.Equal(t, []string{"C", "B"}, res.RoomsBlocked)

		require.NotNil(t, saved)
		assert.Equal(t, 2, saved[model.FieldTotalRooms])
		assert.Equal(t, "operator-1", saved[constant.FieldModifiedBy])

		evt := f.waitEvent(t)
		assert.Equal(t, event.TypeAllocated, evt.Type)
		assert.Equal(t, 10, evt.AssignedGuests)
	})

	t.Run("rejects an empty stay before touching storage", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(ctxWithUser(), dto.CreateGroupBookingRequest{
			GroupName:     "Acme Offsite",
			ContactPerson: "Dana Reyes",
			TotalGuests:   10,
			CheckIn:       "2025-03-12",
			CheckOut:      "2025-03-12",
		})

		require.ErrorIs(t, err, allocation.ErrInvalidRequest)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("insert failure", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))

		_, err := f.svc.Create(ctxWithUser(), dto.CreateGroupBookingRequest{
			GroupName:     "Acme Offsite",
			ContactPerson: "Dana Reyes",
			TotalGuests:   4,
			CheckIn:       "2025-03-10",
			CheckOut:      "2025-03-12",
		})

		assert.Error(t, err)
	})
}

func TestGroupBookingService_Allocate(t *testing.T) {
	t.Run("partial allocation is stored without error", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(inquiry(15), nil)
		f.rooms.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(inventory(), nil)
		f.bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.svc.Allocate(ctxWithUser(), "grp-1")

		require.NoError(t, err)
		assert.Equal(t, "grp-1", res.GroupBookingID)
		assert.Len(t, res.Rooms, 3)
		assert.Equal(t, 12, res.Summary.AssignedGuests)
		assert.Equal(t, 3, res.Summary.Shortfall)
		assert.True(t, res.Summary.Partial)

		assert.Equal(t, event.TypeAllocated, f.waitEvent(t).Type)
	})

	t.Run("equal capacity rooms keep inventory order", func(t *testing.T) {
		f := newFixture(t)

		// 1001 was added after 201; a string sort on the number would flip them.
		rooms := []roomModel.Room{
			{ID: "R201", Number: "201", Type: roomModel.TypeDeluxe, Status: roomModel.StatusClean, MaxOccupancy: 4},
			{ID: "R1001", Number: "1001", Type: roomModel.TypeDeluxe, Status: roomModel.StatusClean, MaxOccupancy: 4},
		}

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(inquiry(4), nil)
		f.rooms.EXPECT().GetAll(gomock.Any(), roomRepo.InventoryOrder(), gomock.Any()).Return(rooms, nil)
		f.bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.svc.Allocate(ctxWithUser(), "grp-1")

		require.NoError(t, err)
		require.Len(t, res.Rooms, 1)
		assert.Equal(t, "R201", res.Rooms[0].RoomID)

		f.waitEvent(t)
	})

	t.Run("skips rooms booked in the window", func(t *testing.T) {
		f := newFixture(t)

		busy := []bookingModel.Booking{
			{ID: "bk-1", RoomID: "C", CheckIn: checkIn, CheckOut: checkOut, Status: bookingModel.StatusConfirmed},
		}

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(inquiry(5), nil)
		f.rooms.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(inventory(), nil)
		f.bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(busy, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.svc.Allocate(ctxWithUser(), "grp-1")

		require.NoError(t, err)
		require.Len(t, res.Rooms, 2)
		assert.Equal(t, "B", res.Rooms[0].RoomID)
		assert.Equal(t, "A", res.Rooms[1].RoomID)
		assert.Equal(t, 1, res.Rooms[1].AssignedGuests)
	})

	tests := []struct {
		name    string
		group   model.GroupBooking
		wantErr error
		code    int
	}{
		{
			name:    "confirmed group",
			group:   withStatus(allocated(), model.StatusConfirmed),
			wantErr: allocation.ErrAlreadyConfirmed,
			code:    http.StatusConflict,
		},
		{
			name:    "cancelled group",
			group:   withStatus(inquiry(4), model.StatusCancelled),
			wantErr: allocation.ErrInvalidTransition,
			code:    http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(tt.group, nil)

			_, err := f.svc.Allocate(ctxWithUser(), "grp-1")

			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.code, failure.GetCode(err))
		})
	}

	t.Run("unknown group", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(model.GroupBooking{}, nil)

		_, err := f.svc.Allocate(ctxWithUser(), "missing")

		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestGroupBookingService_Confirm(t *testing.T) {
	t.Run("creates one booking per allocated room", func(t *testing.T) {
		f := newFixture(t)

		var (
			inserted []bookingModel.Booking
			saved    map[string]any
		)

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(allocated(), nil)
		f.rooms.EXPECT().GetAllForUpdate(gomock.Any(), gomock.Any()).Return(inventory()[1:], nil)
		f.bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		f.bookings.EXPECT().InsertBulk(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, bookings []bookingModel.Booking) error {
				inserted = bookings

				return nil
			})
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				saved = fields

				return nil
			})

		res, err := f.svc.Confirm(ctxWithUser(), "grp-1")

		require.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, res.Status)
		require.Len(t, res.Bookings, 2)
		assert.Equal(t, "grp-1-room-1", res.Bookings[0].ID)
		assert.Equal(t, "GRP-ACME-201", res.Bookings[0].ConfirmationNumber)
		assert.Equal(t, "grp-1-room-2", res.Bookings[1].ID)

		require.Len(t, inserted, 2)
		assert.Equal(t, "operator-1", inserted[0].CreatedBy)
		assert.InDelta(t, 600.0, inserted[0].TotalAmount, 0.0001)
		assert.Equal(t, model.StatusConfirmed, saved[model.FieldStatus])

		evt := f.waitEvent(t)
		assert.Equal(t, event.TypeConfirmed, evt.Type)
		assert.Equal(t, model.StatusConfirmed, evt.Status)
	})

	t.Run("room booked since allocation", func(t *testing.T) {
		f := newFixture(t)

		clash := []bookingModel.Booking{
			{ID: "bk-9", RoomID: "B", CheckIn: checkIn.AddDate(0, 0, 1), CheckOut: checkOut.AddDate(0, 0, 2), Status: bookingModel.StatusPending},
		}

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(allocated(), nil)
		f.rooms.EXPECT().GetAllForUpdate(gomock.Any(), gomock.Any()).Return(inventory()[1:], nil)
		f.bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(clash, nil)

		_, err := f.svc.Confirm(ctxWithUser(), "grp-1")

		require.ErrorIs(t, err, allocation.ErrRoomUnavailable)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("room taken out of service since allocation", func(t *testing.T) {
		f := newFixture(t)

		rooms := inventory()[1:]
		rooms[1].Status = roomModel.StatusMaintenance

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(allocated(), nil)
		f.rooms.EXPECT().GetAllForUpdate(gomock.Any(), gomock.Any()).Return(rooms, nil)

		_, err := f.svc.Confirm(ctxWithUser(), "grp-1")

		assert.ErrorIs(t, err, allocation.ErrRoomUnavailable)
	})

	t.Run("nothing allocated", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(inquiry(4), nil)

		_, err := f.svc.Confirm(ctxWithUser(), "grp-1")

		require.ErrorIs(t, err, allocation.ErrNotAllocated)
		assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
	})

	t.Run("already confirmed", func(t *testing.T) {
		f := newFixture(t)

		group := allocated()
		group.Status = model.StatusConfirmed

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(group, nil)

		_, err := f.svc.Confirm(ctxWithUser(), "grp-1")

		assert.ErrorIs(t, err, allocation.ErrAlreadyConfirmed)
	})

	t.Run("bulk insert failure", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(allocated(), nil)
		f.rooms.EXPECT().GetAllForUpdate(gomock.Any(), gomock.Any()).Return(inventory()[1:], nil)
		f.bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		f.bookings.EXPECT().InsertBulk(gomock.Any(), gomock.Any()).Return(errors.New("exclusion violation"))

		_, err := f.svc.Confirm(ctxWithUser(), "grp-1")

		assert.Error(t, err)
	})
}

func TestGroupBookingService_Cancel(t *testing.T) {
	t.Run("releases blocked rooms", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(allocated(), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, model.StatusCancelled, fields[model.FieldStatus])
				assert.Empty(t, fields[model.FieldRoomsBlocked])

				return nil
			})

		require.NoError(t, f.svc.Cancel(ctxWithUser(), "grp-1"))
		assert.Equal(t, event.TypeCancelled, f.waitEvent(t).Type)
	})

	t.Run("confirmed groups stay confirmed", func(t *testing.T) {
		f := newFixture(t)

		group := allocated()
		group.Status = model.StatusConfirmed

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(group, nil)

		assert.ErrorIs(t, f.svc.Cancel(ctxWithUser(), "grp-1"), allocation.ErrInvalidTransition)
	})
}

func TestGroupBookingService_UpdateStatus(t *testing.T) {
	t.Run("inquiry to quoted", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(inquiry(4), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		require.NoError(t, f.svc.UpdateStatus(ctxWithUser(), dto.UpdateGroupBookingStatusRequest{Status: model.StatusQuoted}, "grp-1"))
		f.waitInvalidated(t)
	})

	t.Run("quoted again is not a transition", func(t *testing.T) {
		f := newFixture(t)

		group := inquiry(4)
		group.Status = model.StatusQuoted

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(group, nil)

		err := f.svc.UpdateStatus(ctxWithUser(), dto.UpdateGroupBookingStatusRequest{Status: model.StatusQuoted}, "grp-1")

		assert.ErrorIs(t, err, allocation.ErrInvalidTransition)
	})

	t.Run("cancelled goes through cancel", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(inquiry(4), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		require.NoError(t, f.svc.UpdateStatus(ctxWithUser(), dto.UpdateGroupBookingStatusRequest{Status: model.StatusCancelled}, "grp-1"))
		assert.Equal(t, event.TypeCancelled, f.waitEvent(t).Type)
	})
}

func TestGroupBookingService_UpdateAllocation(t *testing.T) {
	t.Run("stores a valid manual plan", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(inquiry(10), nil)
		f.rooms.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(inventory(), nil)
		f.bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.svc.UpdateAllocation(ctxWithUser(), dto.UpdateAllocationRequest{
			Rooms: []dto.AllocationEntryRequest{
				{RoomID: "A", AssignedGuests: 2, GuestNames: []string{"Ana", "Bo"}},
				{RoomID: "B", AssignedGuests: 3},
			},
		}, "grp-1")

		require.NoError(t, err)
		require.Len(t, res.Rooms, 2)
		assert.Equal(t, "101", res.Rooms[0].RoomNumber)
		assert.Equal(t, []string{"Ana", "Bo"}, res.Rooms[0].GuestNames)
		assert.Equal(t, 4, res.Rooms[1].MaxOccupancy)
		assert.Equal(t, 5, res.Summary.Shortfall)

		assert.Equal(t, event.TypeAllocated, f.waitEvent(t).Type)
	})

	tests := []struct {
		name    string
		rooms   []dto.AllocationEntryRequest
		busy    []bookingModel.Booking
		wantErr error
	}{
		{
			name:    "unknown room",
			rooms:   []dto.AllocationEntryRequest{{RoomID: "Z", AssignedGuests: 1}},
			wantErr: allocation.ErrOverAllocated,
		},
		{
			name:    "over capacity",
			rooms:   []dto.AllocationEntryRequest{{RoomID: "A", AssignedGuests: 3}},
			wantErr: allocation.ErrOverAllocated,
		},
		{
			name: "more guests than the group",
			rooms: []dto.AllocationEntryRequest{
				{RoomID: "C", AssignedGuests: 6},
				{RoomID: "B", AssignedGuests: 4},
				{RoomID: "A", AssignedGuests: 2},
			},
			wantErr: allocation.ErrOverAllocated,
		},
		{
			name:  "room booked in the window",
			rooms: []dto.AllocationEntryRequest{{RoomID: "A", AssignedGuests: 2}},
			busy: []bookingModel.Booking{
				{ID: "bk-1", RoomID: "A", CheckIn: checkIn, CheckOut: checkOut, Status: bookingModel.StatusCheckedIn},
			},
			wantErr: allocation.ErrRoomUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(inquiry(10), nil)
			f.rooms.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(inventory(), nil)
			f.bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(tt.busy, nil)

			_, err := f.svc.UpdateAllocation(ctxWithUser(), dto.UpdateAllocationRequest{Rooms: tt.rooms}, "grp-1")

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("confirmed plan is frozen", func(t *testing.T) {
		f := newFixture(t)

		group := allocated()
		group.Status = model.StatusConfirmed

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(group, nil)

		_, err := f.svc.UpdateAllocation(ctxWithUser(), dto.UpdateAllocationRequest{}, "grp-1")

		assert.ErrorIs(t, err, allocation.ErrAlreadyConfirmed)
	})
}

func TestGroupBookingService_AssignGuests(t *testing.T) {
	t.Run("names one room", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(allocated(), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				entries, ok := fields[model.FieldRoomAllocation].(model.Allocation)
				require.True(t, ok)
				assert.Equal(t, []string{"Ana", "Bo"}, entries[1].GuestNames)
				assert.Empty(t, entries[0].GuestNames)

				return nil
			})

		err := f.svc.AssignGuests(ctxWithUser(), dto.AssignGuestsRequest{GuestNames: []string{"Ana", "Bo"}}, "grp-1", "B")

		require.NoError(t, err)
		f.waitInvalidated(t)
	})

	t.Run("more names than assigned guests", func(t *testing.T) {
		f := newFixture(t)

		group := allocated()
		group.RoomAllocation[1].AssignedGuests = 1

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(group, nil)

		err := f.svc.AssignGuests(ctxWithUser(), dto.AssignGuestsRequest{GuestNames: []string{"Ana", "Bo"}}, "grp-1", "B")

		assert.ErrorIs(t, err, allocation.ErrOverAllocated)
	})

	t.Run("room outside the allocation", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(allocated(), nil)

		err := f.svc.AssignGuests(ctxWithUser(), dto.AssignGuestsRequest{GuestNames: []string{"Ana"}}, "grp-1", "A")

		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestGroupBookingService_Update(t *testing.T) {
	t.Run("new head count reallocates", func(t *testing.T) {
		f := newFixture(t)

		guests := 5

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(allocated(), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
		f.rooms.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(inventory(), nil)
		f.bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		res, err := f.svc.Update(ctxWithUser(), dto.UpdateGroupBookingRequest{TotalGuests: &guests}, "grp-1")

		require.NoError(t, err)
		assert.Equal(t, 5, res.TotalGuests)
		require.Len(t, res.RoomAllocation, 1)
		assert.Equal(t, "C", res.RoomAllocation[0].RoomID)
		assert.Equal(t, event.TypeAllocated, f.waitEvent(t).Type)
	})

	t.Run("descriptive change keeps the plan", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(allocated(), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.svc.Update(ctxWithUser(), dto.UpdateGroupBookingRequest{Notes: "late arrival"}, "grp-1")

		require.NoError(t, err)
		assert.Equal(t, "late arrival", res.Notes)
		assert.Len(t, res.RoomAllocation, 2)
		f.waitInvalidated(t)
	})

	t.Run("confirmed stay cannot move", func(t *testing.T) {
		f := newFixture(t)

		group := allocated()
		group.Status = model.StatusConfirmed

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(group, nil)

		_, err := f.svc.Update(ctxWithUser(), dto.UpdateGroupBookingRequest{CheckOut: "2025-03-14"}, "grp-1")

		assert.ErrorIs(t, err, allocation.ErrAlreadyConfirmed)
	})
}

func TestGroupBookingService_Delete(t *testing.T) {
	t.Run("inquiry", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(inquiry(4), nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		require.NoError(t, f.svc.Delete(ctxWithUser(), "grp-1"))
		f.waitInvalidated(t)
	})

	t.Run("confirmed", func(t *testing.T) {
		f := newFixture(t)

		group := allocated()
		group.Status = model.StatusConfirmed

		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(group, nil)

		err := f.svc.Delete(ctxWithUser(), "grp-1")

		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestGroupBookingService_Get(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(allocated(), nil)

	res, err := f.svc.Get(ctxWithUser(), "grp-1")

	require.NoError(t, err)
	assert.Equal(t, "GRP-ACME", res.BlockCode)
	assert.Equal(t, "2025-03-10", res.CheckIn)
	assert.Equal(t, 10, res.Summary.AssignedGuests)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.GroupBooking{}, nil)

	_, err = f.svc.Get(ctxWithUser(), "missing")

	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func TestGroupBookingService_GetAll(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(11, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.GroupBooking{allocated()}, nil)

	res, err := f.svc.GetAll(ctxWithUser(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})

	require.NoError(t, err)
	assert.Equal(t, 11, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	assert.Len(t, res.GroupBookings, 1)
}

func TestGroupBookingService_Upcoming(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.GroupBooking, error) {
			assert.Equal(t, "group_bookings.check_in", params.SortBy)
			assert.Equal(t, gDto.SortDirAsc, params.SortDir)
			assert.Len(t, filter.Filters, 3)

			return []model.GroupBooking{inquiry(4), allocated()}, nil
		})

	res, err := f.svc.Upcoming(ctxWithUser(), 0)

	require.NoError(t, err)
	assert.Len(t, res, 2)
}

func TestGroupBookingService_ExportRoomingList(t *testing.T) {
	t.Run("uploads and replaces the previous list", func(t *testing.T) {
		f := newFixture(t)

		group := allocated()
		group.RoomingListURL = "https://files.example.com/group_booking/1-old.xlsx"

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(group, nil)
		f.storage.EXPECT().
			UploadFileBytes(gomock.Any(), constant.Empty, model.EntityName, gomock.Any(), constant.ContentTypeXLSX, gomock.Any()).
			DoAndReturn(func(_ context.Context, _, directory, fileName, _ string, data []byte) (string, error) {
				assert.Contains(t, fileName, "grp-acme-rooming-list.xlsx")
				assert.NotEmpty(t, data)

				return "https://files.example.com/" + directory + "/" + fileName, nil
			})
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.storage.EXPECT().GetObjectNameFromURL(constant.Empty, group.RoomingListURL).Return("group_booking/1-old.xlsx")
		f.storage.EXPECT().DeleteFile(gomock.Any(), constant.Empty, "group_booking", "1-old.xlsx").Return(nil)

		res, err := f.svc.ExportRoomingList(ctxWithUser(), "grp-1")

		require.NoError(t, err)
		assert.Equal(t, "grp-1", res.GroupBookingID)
		assert.Contains(t, res.URL, "https://files.example.com/group_booking/")
		f.waitInvalidated(t)
	})

	t.Run("nothing to list", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(inquiry(4), nil)

		_, err := f.svc.ExportRoomingList(ctxWithUser(), "grp-1")

		assert.ErrorIs(t, err, allocation.ErrNotAllocated)
	})

	t.Run("upload failure", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(allocated(), nil)
		f.storage.EXPECT().
			UploadFileBytes(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(constant.Empty, errors.New("s3 unavailable"))

		_, err := f.svc.ExportRoomingList(ctxWithUser(), "grp-1")

		assert.Error(t, err)
	})
}
