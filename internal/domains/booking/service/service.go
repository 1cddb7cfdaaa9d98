package service

import (
	"context"
	"fmt"

	"pms/config"
	"pms/infras/otel"
	"pms/infras/postgres"
	"pms/internal/domains/booking/model"
	"pms/internal/domains/booking/model/dto"
	"pms/internal/domains/booking/repository"
	roomModel "pms/internal/domains/room/model"
	roomRepo "pms/internal/domains/room/repository"
	"pms/shared"
	"pms/shared/cache"
	"pms/shared/constant"
	gDto "pms/shared/dto"
	"pms/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"

	// Room listings embed housekeeping state, so they are dropped on check-in/out.
	cacheGetRoom    = "room:get"
	cacheGetAllRoom = "room:gets"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	UpdateStatus(ctx context.Context, req dto.UpdateBookingStatusRequest, id string) error
}

type serviceImpl struct {
	repo       repository.Booking
	roomRepo   roomRepo.Room
	transactor postgres.Transactor
	cfg        *config.Config
	cache      cache.RedisCache
	otel       otel.Otel
}

func New(repo repository.Booking, roomRepo roomRepo.Room, transactor postgres.Transactor, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Booking {
	return &serviceImpl{
		repo:       repo,
		roomRepo:   roomRepo,
		transactor: transactor,
		cfg:        cfg,
		cache:      cache,
		otel:       otel,
	}
}

// Create books a single room. The room row stays locked until the booking is
// written, so two requests for the same room and dates cannot both pass the
// overlap check.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	checkIn, checkOut := req.Stay()
	if !checkIn.Before(checkOut) {
		return res, failure.BadRequestFromString("check_in must be before check_out") // nolint:wrapcheck
	}

	booking := req.ToModel(user)

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		rooms, err := s.roomRepo.GetAllForUpdate(ctx, roomRepo.FilterByIDs(req.RoomID))
		if err != nil {
			return fmt.Errorf("failed to lock room: %w", err)
		}

		if len(rooms) == 0 {
			return failure.BadRequestFromString("room does not exist") // nolint:wrapcheck
		}

		if !rooms[0].Allocable() {
			return failure.Conflict(fmt.Sprintf("room %s is %s", rooms[0].Number, rooms[0].Status)) // nolint:wrapcheck
		}

		if booking.Adults+booking.Children > rooms[0].MaxOccupancy && rooms[0].MaxOccupancy > 0 {
			return failure.BadRequestFromString(fmt.Sprintf("room %s holds at most %d guests", rooms[0].Number, rooms[0].MaxOccupancy)) // nolint:wrapcheck
		}

		taken, err := s.repo.Exist(ctx, repository.FilterActiveInWindow(checkIn, checkOut, req.RoomID))
		if err != nil {
			return fmt.Errorf("failed to check room availability: %w", err)
		}

		if taken {
			return failure.Conflict(fmt.Sprintf("room %s is already booked for the requested dates", rooms[0].Number)) // nolint:wrapcheck
		}

		return s.repo.Insert(ctx, booking)
	})
	if err != nil {
		log.Error().Err(err).Str("room", req.RoomID).Msg("failed to create booking")

		return res, err
	}

	res.FromModel(booking)

	go s.invalidateLists(context.WithoutCancel(ctx))

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	key := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	return cache.Remember(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) (res dto.GetBookingsResponse, err error) {
		total, err := s.Count(ctx, req, filter)
		if err != nil {
			return res, err
		}

		bookings, err := s.repo.GetAll(ctx, req, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to get bookings")

			return res, fmt.Errorf("failed to get bookings: %w", err)
		}

		res.FromModels(bookings, total, req.Limit)

		return res, nil
	})
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	key := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	return cache.Remember(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) (int, error) {
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to count bookings")

			return 0, fmt.Errorf("failed to count bookings: %w", err)
		}

		return total, nil
	})
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, shared.BuildCacheKey(cacheGetBooking, id), s.cfg.Cache.TTL, func(ctx context.Context) (res dto.BookingResponse, err error) {
		booking, err := s.find(ctx, id)
		if err != nil {
			return res, err
		}

		res.FromModel(booking)

		return res, nil
	})
}

// UpdateStatus moves a booking along pending, confirmed, checked-in and
// checked-out. Check-in marks the room occupied and check-out marks it dirty.
func (s *serviceImpl) UpdateStatus(ctx context.Context, req dto.UpdateBookingStatusRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	var roomID string

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		booking, err := s.find(ctx, id)
		if err != nil {
			return err
		}

		if !booking.CanTransition(req.Status) {
			return failure.Conflict(fmt.Sprintf("booking cannot move from %s to %s", booking.Status, req.Status)) // nolint:wrapcheck
		}

		fields := shared.TransformFields(struct {
			Status string `db:"status"`
		}{Status: req.Status}, user)

		if err = s.repo.Update(ctx, fields, filter); err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}

		roomStatus := constant.Empty

		switch req.Status {
		case model.StatusCheckedIn:
			roomStatus = roomModel.StatusOccupied
		case model.StatusCheckedOut:
			roomStatus = roomModel.StatusDirty
		}

		if roomStatus == constant.Empty {
			return nil
		}

		roomID = booking.RoomID
		roomFields := shared.TransformFields(struct {
			Status string `db:"status"`
		}{Status: roomStatus}, user)

		if err = s.roomRepo.Update(ctx, roomFields, shared.FilterByID(booking.RoomID, roomModel.FieldID, roomModel.TableName)); err != nil {
			return fmt.Errorf("failed to update room status: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("id", id).Str("status", req.Status).Msg("failed to update booking status")

		return err
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete booking cache")
		}

		s.invalidateLists(c)

		if roomID != constant.Empty {
			if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetRoom, roomID)); err != nil {
				log.Error().Err(err).Msg("failed to delete room cache")
			}

			shared.InvalidateCaches(c, s.cache, cacheGetAllRoom)
		}
	}()

	return nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	return booking, nil
}

func (s *serviceImpl) invalidateLists(ctx context.Context) {
	shared.InvalidateCaches(ctx, s.cache, cacheGetAllBooking)
	shared.InvalidateCaches(ctx, s.cache, cacheCountBooking)
}
