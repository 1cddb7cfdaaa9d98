package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pms/config"
	"pms/infras/otel/mocks"
	postgresMocks "pms/infras/postgres/mocks"
	bookingMocks "pms/internal/domains/booking/mocks"
	"pms/internal/domains/booking/model"
	"pms/internal/domains/booking/model/dto"
	"pms/internal/domains/booking/service"
	roomMocks "pms/internal/domains/room/mocks"
	roomModel "pms/internal/domains/room/model"
	"pms/shared/cache"
	cacheMocks "pms/shared/cache/mocks"
	"pms/shared/constant"
	gDto "pms/shared/dto"
	"pms/shared/failure"
)

func newService(t *testing.T) (service.Booking, *bookingMocks.MockBooking, *roomMocks.MockRoom) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockRoomRepo := roomMocks.NewMockRoom(ctrl)

	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockRoomRepo, postgresMocks.NewTransactor(), cfg, mockCache, mocks.NewOtel())

	return svc, mockRepo, mockRoomRepo
}

func validRequest() dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		RoomID:   "A",
		GuestID:  "guest-1",
		CheckIn:  "2025-03-10",
		CheckOut: "2025-03-12",
		Currency: "usd",
		Adults:   2,
	}
}

func TestBookingService_Create(t *testing.T) {
	cleanRoom := roomModel.Room{ID: "A", Number: "101", Status: roomModel.StatusClean, MaxOccupancy: 2}

	tests := []struct {
		name      string
		req       func() dto.CreateBookingRequest
		setupMock func(repo *bookingMocks.MockBooking, rooms *roomMocks.MockRoom)
		wantCode  int
	}{
		{
			name: "successful creation",
			req:  validRequest,
			setupMock: func(repo *bookingMocks.MockBooking, rooms *roomMocks.MockRoom) {
				rooms.EXPECT().GetAllForUpdate(gomock.Any(), gomock.Any()).Return([]roomModel.Room{cleanRoom}, nil)
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, booking model.Booking) error {
						assert.Equal(t, model.StatusPending, booking.Status)
						assert.Equal(t, model.SourceDirect, booking.Source)
						assert.Equal(t, "USD", booking.Currency)

						return nil
					})
			},
		},
		{
			name: "empty stay",
			req: func() dto.CreateBookingRequest {
				req := validRequest()
				req.CheckOut = req.CheckIn

				return req
			},
			setupMock: func(_ *bookingMocks.MockBooking, _ *roomMocks.MockRoom) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "unknown room",
			req:  validRequest,
			setupMock: func(_ *bookingMocks.MockBooking, rooms *roomMocks.MockRoom) {
				rooms.EXPECT().GetAllForUpdate(gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "room out of order",
			req:  validRequest,
			setupMock: func(_ *bookingMocks.MockBooking, rooms *roomMocks.MockRoom) {
				room := cleanRoom
				room.Status = roomModel.StatusOutOfOrder
				rooms.EXPECT().GetAllForUpdate(gomock.Any(), gomock.Any()).Return([]roomModel.Room{room}, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "too many guests",
			req: func() dto.CreateBookingRequest {
				req := validRequest()
				req.Children = 1

				return req
			},
			setupMock: func(_ *bookingMocks.MockBooking, rooms *roomMocks.MockRoom) {
				rooms.EXPECT().GetAllForUpdate(gomock.Any(), gomock.Any()).Return([]roomModel.Room{cleanRoom}, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "overlapping stay",
			req:  validRequest,
			setupMock: func(repo *bookingMocks.MockBooking, rooms *roomMocks.MockRoom) {
				rooms.EXPECT().GetAllForUpdate(gomock.Any(), gomock.Any()).Return([]roomModel.Room{cleanRoom}, nil)
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "lock failure",
			req:  validRequest,
			setupMock: func(_ *bookingMocks.MockBooking, rooms *roomMocks.MockRoom) {
				rooms.EXPECT().GetAllForUpdate(gomock.Any(), gomock.Any()).Return(nil, errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, mockRoomRepo := newService(t)
			tt.setupMock(mockRepo, mockRoomRepo)

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "test-user-id")
			res, err := svc.Create(ctx, tt.req())

			if tt.wantCode == 0 {
				require.NoError(t, err)
				assert.Equal(t, "2025-03-10", res.CheckIn)
				assert.Contains(t, res.ConfirmationNumber, "BK-")

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestBookingService_GetAll(t *testing.T) {
	svc, mockRepo, _ := newService(t)

	mockRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
	mockRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Booking{{ID: "bk-1", RoomID: "A"}}, nil)

	res, err := svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})

	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalData)
	assert.Len(t, res.Bookings, 1)
}

func TestBookingService_Get(t *testing.T) {
	svc, mockRepo, _ := newService(t)

	mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)

	_, err := svc.Get(context.Background(), "missing")

	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func TestBookingService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		next       string
		roomStatus string
		wantCode   int
	}{
		{name: "confirm", current: model.StatusPending, next: model.StatusConfirmed},
		{name: "check in occupies the room", current: model.StatusConfirmed, next: model.StatusCheckedIn, roomStatus: roomModel.StatusOccupied},
		{name: "check out dirties the room", current: model.StatusCheckedIn, next: model.StatusCheckedOut, roomStatus: roomModel.StatusDirty},
		{name: "cannot reopen a cancelled booking", current: model.StatusCancelled, next: model.StatusConfirmed, wantCode: http.StatusConflict},
		{name: "cannot skip check in", current: model.StatusConfirmed, next: model.StatusCheckedOut, wantCode: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, mockRoomRepo := newService(t)

			mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: "bk-1", RoomID: "A", Status: tt.current}, nil)

			if tt.wantCode == 0 {
				mockRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			}

			if tt.roomStatus != constant.Empty {
				mockRoomRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, tt.roomStatus, fields[roomModel.FieldStatus])

						return nil
					})
			}

			err := svc.UpdateStatus(context.Background(), dto.UpdateBookingStatusRequest{Status: tt.next}, "bk-1")

			if tt.wantCode == 0 {
				assert.NoError(t, err)

				return
			}

			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}
