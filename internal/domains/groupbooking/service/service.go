package service

import (
	"context"
	"fmt"
	"path"

	"pms/config"
	"pms/infras/metrics"
	"pms/infras/otel"
	"pms/infras/postgres"
	"pms/infras/s3"
	bookingModel "pms/internal/domains/booking/model"
	bookingDto "pms/internal/domains/booking/model/dto"
	bookingRepo "pms/internal/domains/booking/repository"
	"pms/internal/domains/groupbooking/allocation"
	"pms/internal/domains/groupbooking/event"
	"pms/internal/domains/groupbooking/model"
	"pms/internal/domains/groupbooking/model/dto"
	"pms/internal/domains/groupbooking/repository"
	"pms/internal/domains/groupbooking/roominglist"
	roomModel "pms/internal/domains/room/model"
	roomRepo "pms/internal/domains/room/repository"
	"pms/shared"
	"pms/shared/cache"
	"pms/shared/constant"
	gDto "pms/shared/dto"
	"pms/shared/failure"
	gModel "pms/shared/model"
	"pms/shared/timezone"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetGroupBooking    = "group_booking:get"
	cacheGetAllGroupBooking = "group_booking:gets"
	cacheCountGroupBooking  = "group_booking:count"
	cacheUpcomingGroup      = "group_booking:upcoming"

	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
)

type GroupBooking interface {
	Create(ctx context.Context, req dto.CreateGroupBookingRequest) (dto.GroupBookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetGroupBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.GroupBookingResponse, error)
	Update(ctx context.Context, req dto.UpdateGroupBookingRequest, id string) (dto.GroupBookingResponse, error)
	Delete(ctx context.Context, id string) error
	Allocate(ctx context.Context, id string) (dto.AllocationResponse, error)
	UpdateAllocation(ctx context.Context, req dto.UpdateAllocationRequest, id string) (dto.AllocationResponse, error)
	AssignGuests(ctx context.Context, req dto.AssignGuestsRequest, id, roomID string) error
	Confirm(ctx context.Context, id string) (dto.ConfirmationResponse, error)
	Cancel(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, req dto.UpdateGroupBookingStatusRequest, id string) error
	Upcoming(ctx context.Context, days int) ([]dto.GroupBookingResponse, error)
	ExportRoomingList(ctx context.Context, id string) (dto.RoomingListResponse, error)
}

type serviceImpl struct {
	repo        repository.GroupBooking
	roomRepo    roomRepo.Room
	bookingRepo bookingRepo.Booking
	transactor  postgres.Transactor
	publisher   event.Publisher
	s3          s3.S3
	metrics     *metrics.Metrics
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(
	repo repository.GroupBooking,
	roomRepo roomRepo.Room,
	bookingRepo bookingRepo.Booking,
	transactor postgres.Transactor,
	publisher event.Publisher,
	s3 s3.S3,
	metrics *metrics.Metrics,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) GroupBooking {
	return &serviceImpl{
		repo:        repo,
		roomRepo:    roomRepo,
		bookingRepo: bookingRepo,
		transactor:  transactor,
		publisher:   publisher,
		s3:          s3,
		metrics:     metrics,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

func (s *serviceImpl) options() allocation.Options {
	return allocation.Options{DefaultMaxOccupancy: s.cfg.Allocation.DefaultMaxOccupancy}
}

// Create stores a new inquiry and allocates rooms for it in the same
// transaction.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateGroupBookingRequest) (res dto.GroupBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	group := req.ToModel(user, s.cfg.Allocation.BlockCodePrefix)

	if err = allocation.RequestFromGroup(group).Validate(); err != nil {
		return res, err
	}

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Insert(ctx, group); err != nil {
			return fmt.Errorf("failed to create group booking: %w", err)
		}

		return s.allocate(ctx, &group, user)
	})
	if err != nil {
		log.Error().Err(err).Str("group", req.GroupName).Msg("failed to create group booking")

		return res, err
	}

	res.FromModel(group)

	log.Info().Str("id", group.ID).Str("block_code", group.BlockCode).Int("rooms", group.TotalRooms).Msg("group booking created")

	go s.afterCommit(context.WithoutCancel(ctx), event.TypeAllocated, group)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetGroupBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	key := shared.BuildCacheKeyWithQuery(cacheGetAllGroupBooking, req, filter)

	return cache.Remember(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) (res dto.GetGroupBookingsResponse, err error) {
		total, err := s.Count(ctx, req, filter)
		if err != nil {
			return res, err
		}

		groups, err := s.repo.GetAll(ctx, req, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to get group bookings")

			return res, fmt.Errorf("failed to get group bookings: %w", err)
		}

		res.FromModels(groups, total, req.Limit)

		return res, nil
	})
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	key := shared.BuildCacheKeyWithQuery(cacheCountGroupBooking, req, filter)

	return cache.Remember(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) (int, error) {
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to count group bookings")

			return 0, fmt.Errorf("failed to count group bookings: %w", err)
		}

		return total, nil
	})
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.GroupBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, shared.BuildCacheKey(cacheGetGroupBooking, id), s.cfg.Cache.TTL, func(ctx context.Context) (res dto.GroupBookingResponse, err error) {
		group, err := s.find(ctx, id)
		if err != nil {
			return res, err
		}

		res.FromModel(group)

		return res, nil
	})
}

// Update edits a group. Head count and stay dates are frozen once the group is
// confirmed or cancelled; changing them earlier recomputes the allocation.
func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateGroupBookingRequest, id string) (res dto.GroupBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var (
		updated     model.GroupBooking
		rescheduled bool
	)

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		group, err := s.lock(ctx, id)
		if err != nil {
			return err
		}

		updated, rescheduled = req.Apply(group)

		if rescheduled {
			if err := s.ensureOpen(group); err != nil {
				return err
			}

			if err := allocation.RequestFromGroup(updated).Validate(); err != nil {
				return err
			}
		}

		if err := s.repo.Update(ctx, req.Fields(updated, user), s.filter(id)); err != nil {
			return fmt.Errorf("failed to update group booking: %w", err)
		}

		if rescheduled {
			return s.allocate(ctx, &updated, user)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to update group booking")

		return res, err
	}

	res.FromModel(updated)

	if rescheduled {
		go s.afterCommit(context.WithoutCancel(ctx), event.TypeAllocated, updated)
	} else {
		go s.invalidate(context.WithoutCancel(ctx), id)
	}

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		group, err := s.lock(ctx, id)
		if err != nil {
			return err
		}

		if group.Status == model.StatusConfirmed {
			return failure.Conflict("confirmed group bookings cannot be deleted") // nolint:wrapcheck
		}

		if err := s.repo.Delete(ctx, s.filter(id)); err != nil {
			return fmt.Errorf("failed to delete group booking: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete group booking")

		return err
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return nil
}

// Allocate recomputes the room plan of a group from scratch and replaces the
// stored one. The group row stays locked for the whole computation.
func (s *serviceImpl) Allocate(ctx context.Context, id string) (res dto.AllocationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Allocate")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var group model.GroupBooking

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		group, err = s.lock(ctx, id)
		if err != nil {
			return err
		}

		if err := s.ensureOpen(group); err != nil {
			return err
		}

		return s.allocate(ctx, &group, user)
	})
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to allocate rooms")

		return res, err
	}

	res.FromModel(group)

	go s.afterCommit(context.WithoutCancel(ctx), event.TypeAllocated, group)

	return res, nil
}

// allocate runs the allocator for group against the current inventory and
// persists the outcome. It must run inside a transaction holding the group
// row lock.
func (s *serviceImpl) allocate(ctx context.Context, group *model.GroupBooking, user string) error {
	req := allocation.RequestFromGroup(*group)
	if err := req.Validate(); err != nil {
		return err
	}

	rooms, err := s.roomRepo.GetAll(ctx, roomRepo.InventoryOrder(), gDto.FilterGroup{})
	if err != nil {
		return fmt.Errorf("failed to load rooms: %w", err)
	}

	bookings, err := s.bookingRepo.GetAll(ctx, gDto.QueryParams{}, bookingRepo.FilterActiveInWindow(req.CheckIn, req.CheckOut))
	if err != nil {
		return fmt.Errorf("failed to load bookings: %w", err)
	}

	entries, err := allocation.Allocate(req, rooms, bookings, s.options())
	if err != nil {
		return err
	}

	if err := s.saveAllocation(ctx, group, entries, user); err != nil {
		return err
	}

	summary := allocation.Summarize(entries, group.TotalGuests)
	s.metrics.ObserveAllocation(summary.TotalRooms, summary.Shortfall)

	if summary.Partial {
		log.Warn().
			Str("id", group.ID).
			Int("assigned", summary.AssignedGuests).
			Int("total", summary.TotalGuests).
			Msg("partial room allocation")
	}

	return nil
}

func (s *serviceImpl) saveAllocation(ctx context.Context, group *model.GroupBooking, entries model.Allocation, user string) error {
	blocked := pq.StringArray(entries.RoomIDs())

	fields := map[string]any{
		model.FieldRoomAllocation: entries,
		model.FieldTotalRooms:     len(entries),
		model.FieldRoomsBlocked:   blocked,
		constant.FieldModifiedAt:  timezone.Now(),
		constant.FieldModifiedBy:  user,
	}

	if err := s.repo.Update(ctx, fields, s.filter(group.ID)); err != nil {
		return fmt.Errorf("failed to save room allocation: %w", err)
	}

	group.RoomAllocation = entries
	group.TotalRooms = len(entries)
	group.RoomsBlocked = blocked

	return nil
}

// UpdateAllocation replaces the room plan with one edited by an operator. Every
// room must exist, be in service and be free for the stay, and the plan may not
// place more guests than the group has.
func (s *serviceImpl) UpdateAllocation(ctx context.Context, req dto.UpdateAllocationRequest, id string) (res dto.AllocationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateAllocation")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var group model.GroupBooking

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		group, err = s.lock(ctx, id)
		if err != nil {
			return err
		}

		if err := s.ensureOpen(group); err != nil {
			return err
		}

		entries, err := s.manualEntries(ctx, group, req)
		if err != nil {
			return err
		}

		if err := allocation.Validate(entries, group.TotalGuests); err != nil {
			return err
		}

		return s.saveAllocation(ctx, &group, entries, user)
	})
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to update room allocation")

		return res, err
	}

	res.FromModel(group)

	go s.afterCommit(context.WithoutCancel(ctx), event.TypeAllocated, group)

	return res, nil
}

func (s *serviceImpl) manualEntries(ctx context.Context, group model.GroupBooking, req dto.UpdateAllocationRequest) (model.Allocation, error) {
	entries := model.Allocation{}
	if len(req.Rooms) == 0 {
		return entries, nil
	}

	ids := make([]string, len(req.Rooms))
	for i, room := range req.Rooms {
		ids[i] = room.RoomID
	}

	rooms, err := s.roomRepo.GetAll(ctx, gDto.QueryParams{}, roomRepo.FilterByIDs(ids...))
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	byID := make(map[string]roomModel.Room, len(rooms))
	for _, room := range rooms {
		byID[room.ID] = room
	}

	bookings, err := s.bookingRepo.GetAll(ctx, gDto.QueryParams{}, bookingRepo.FilterActiveInWindow(group.CheckIn, group.CheckOut, ids...))
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	busy := allocation.BusyRooms(bookings, group.CheckIn, group.CheckOut)
	opts := s.options()

	for _, item := range req.Rooms {
		room, ok := byID[item.RoomID]
		if !ok {
			return nil, fmt.Errorf("%w: room %s does not exist", allocation.ErrOverAllocated, item.RoomID)
		}

		if !allocation.IsAllocable(room, busy) {
			return nil, fmt.Errorf("%w: room %s", allocation.ErrRoomUnavailable, room.Number)
		}

		names := item.GuestNames
		if names == nil {
			names = []string{}
		}

		entries = append(entries, model.RoomAllocationEntry{
			RoomID:         room.ID,
			RoomNumber:     room.Number,
			RoomType:       room.Type,
			MaxOccupancy:   opts.Capacity(room),
			AssignedGuests: item.AssignedGuests,
			GuestNames:     names,
		})
	}

	return entries, nil
}

// AssignGuests fills in the names of the guests staying in one allocated room.
func (s *serviceImpl) AssignGuests(ctx context.Context, req dto.AssignGuestsRequest, id, roomID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AssignGuests")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		group, err := s.lock(ctx, id)
		if err != nil {
			return err
		}

		if group.Status == model.StatusCancelled {
			return fmt.Errorf("%w: group booking is cancelled", allocation.ErrInvalidTransition)
		}

		entries := append(model.Allocation{}, group.RoomAllocation...)

		idx := -1
		for i, entry := range entries {
			if entry.RoomID == roomID {
				idx = i

				break
			}
		}

		if idx < 0 {
			return failure.NotFound("room is not allocated to this group booking") // nolint:wrapcheck
		}

		if len(req.GuestNames) > entries[idx].AssignedGuests {
			return fmt.Errorf("%w: room %s has %d guests assigned", allocation.ErrOverAllocated, entries[idx].RoomNumber, entries[idx].AssignedGuests)
		}

		entries[idx].GuestNames = append([]string{}, req.GuestNames...)

		fields := map[string]any{
			model.FieldRoomAllocation: entries,
			constant.FieldModifiedAt:  timezone.Now(),
			constant.FieldModifiedBy:  user,
		}

		if err := s.repo.Update(ctx, fields, s.filter(id)); err != nil {
			return fmt.Errorf("failed to assign guests: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("id", id).Str("room", roomID).Msg("failed to assign guests")

		return err
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return nil
}

// Confirm turns the allocation into one booking per room. The allocated rooms
// are locked and checked again for overlapping stays inside the same
// transaction that writes the bookings, so two groups can never be confirmed
// into the same room for the same night.
func (s *serviceImpl) Confirm(ctx context.Context, id string) (res dto.ConfirmationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Confirm")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var (
		group    model.GroupBooking
		bookings []bookingModel.Booking
	)

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		group, err = s.lock(ctx, id)
		if err != nil {
			return err
		}

		bookings, err = allocation.Confirm(group)
		if err != nil {
			return err
		}

		if err := s.revalidate(ctx, group); err != nil {
			return err
		}

		now := timezone.Now()
		for i := range bookings {
			bookings[i].Metadata = gModel.NewMetadata(user, now)
		}

		if err := s.bookingRepo.InsertBulk(ctx, bookings); err != nil {
			return fmt.Errorf("failed to create group room bookings: %w", err)
		}

		booked := pq.StringArray(group.RoomAllocation.RoomIDs())

		fields := map[string]any{
			model.FieldStatus:        model.StatusConfirmed,
			model.FieldRoomsBooked:   booked,
			constant.FieldModifiedAt: now,
			constant.FieldModifiedBy: user,
		}

		if err := s.repo.Update(ctx, fields, s.filter(id)); err != nil {
			return fmt.Errorf("failed to confirm group booking: %w", err)
		}

		group.Status = model.StatusConfirmed
		group.RoomsBooked = booked

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to confirm group booking")

		return res, err
	}

	s.metrics.ObserveConfirmation(len(bookings))

	res.GroupBookingID = group.ID
	res.Status = group.Status
	res.Bookings = make([]bookingDto.BookingResponse, len(bookings))

	for i, booking := range bookings {
		res.Bookings[i].FromModel(booking)
	}

	log.Info().Str("id", group.ID).Int("bookings", len(bookings)).Msg("group booking confirmed")

	go func() {
		c := context.WithoutCancel(ctx)

		s.afterCommit(c, event.TypeConfirmed, group)
		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}()

	return res, nil
}

// revalidate locks every allocated room in id order and fails when one of them
// left service or gained an overlapping booking since it was allocated.
func (s *serviceImpl) revalidate(ctx context.Context, group model.GroupBooking) error {
	ids := group.RoomAllocation.RoomIDs()

	rooms, err := s.roomRepo.GetAllForUpdate(ctx, roomRepo.FilterByIDs(ids...))
	if err != nil {
		return fmt.Errorf("failed to lock allocated rooms: %w", err)
	}

	found := make(map[string]roomModel.Room, len(rooms))
	for _, room := range rooms {
		found[room.ID] = room
	}

	for _, entry := range group.RoomAllocation {
		room, ok := found[entry.RoomID]
		if !ok {
			return fmt.Errorf("%w: room %s no longer exists", allocation.ErrRoomUnavailable, entry.RoomNumber)
		}

		if !room.Allocable() {
			return fmt.Errorf("%w: room %s is %s", allocation.ErrRoomUnavailable, room.Number, room.Status)
		}
	}

	bookings, err := s.bookingRepo.GetAll(ctx, gDto.QueryParams{}, bookingRepo.FilterActiveInWindow(group.CheckIn, group.CheckOut, ids...))
	if err != nil {
		return fmt.Errorf("failed to load bookings: %w", err)
	}

	for _, booking := range bookings {
		if booking.Blocking() && booking.Overlaps(group.CheckIn, group.CheckOut) {
			return fmt.Errorf("%w: room %s is booked from %s to %s", allocation.ErrRoomUnavailable,
				found[booking.RoomID].Number,
				booking.CheckIn.Format(constant.DayFormat),
				booking.CheckOut.Format(constant.DayFormat))
		}
	}

	return nil
}

// Cancel releases every blocked room of a group that is not yet confirmed.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var group model.GroupBooking

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		group, err = s.lock(ctx, id)
		if err != nil {
			return err
		}

		if err := allocation.Transition(group.Status, model.StatusCancelled); err != nil {
			return err
		}

		fields := map[string]any{
			model.FieldStatus:        model.StatusCancelled,
			model.FieldRoomsBlocked:  pq.StringArray{},
			constant.FieldModifiedAt: timezone.Now(),
			constant.FieldModifiedBy: user,
		}

		if err := s.repo.Update(ctx, fields, s.filter(id)); err != nil {
			return fmt.Errorf("failed to cancel group booking: %w", err)
		}

		group.Status = model.StatusCancelled
		group.RoomsBlocked = pq.StringArray{}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to cancel group booking")

		return err
	}

	s.metrics.ObserveCancellation()

	go s.afterCommit(context.WithoutCancel(ctx), event.TypeCancelled, group)

	return nil
}

// UpdateStatus handles the operator driven transitions. Confirmation has its
// own operation because it creates bookings.
func (s *serviceImpl) UpdateStatus(ctx context.Context, req dto.UpdateGroupBookingStatusRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.Status == model.StatusCancelled {
		return s.Cancel(ctx, id)
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		group, err := s.lock(ctx, id)
		if err != nil {
			return err
		}

		if err := allocation.Transition(group.Status, req.Status); err != nil {
			return err
		}

		fields := map[string]any{
			model.FieldStatus:        req.Status,
			constant.FieldModifiedAt: timezone.Now(),
			constant.FieldModifiedBy: user,
		}

		if err := s.repo.Update(ctx, fields, s.filter(id)); err != nil {
			return fmt.Errorf("failed to update group booking status: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("id", id).Str("status", req.Status).Msg("failed to update group booking status")

		return err
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return nil
}

// Upcoming lists live groups arriving between today and days from now, soonest
// first.
func (s *serviceImpl) Upcoming(ctx context.Context, days int) (res []dto.GroupBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Upcoming")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if days <= 0 {
		days = s.cfg.Allocation.UpcomingDays
	}

	from := timezone.Today()
	until := from.AddDate(0, 0, days)
	key := shared.BuildCacheKey(cacheUpcomingGroup, from.Format(constant.DayFormat), fmt.Sprint(days))

	return cache.Remember(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) ([]dto.GroupBookingResponse, error) {
		params := gDto.QueryParams{
			SortBy:  model.TableName + "." + model.FieldCheckIn,
			SortDir: gDto.SortDirAsc,
		}

		groups, err := s.repo.GetAll(ctx, params, repository.FilterUpcoming(from, until))
		if err != nil {
			log.Error().Err(err).Msg("failed to get upcoming group bookings")

			return nil, fmt.Errorf("failed to get upcoming group bookings: %w", err)
		}

		upcoming := make([]dto.GroupBookingResponse, len(groups))
		for i, group := range groups {
			upcoming[i].FromModel(group)
		}

		return upcoming, nil
	})
}

// ExportRoomingList uploads the current rooming list of a group and keeps the
// link on the group. A previous export is removed once the new one is saved.
func (s *serviceImpl) ExportRoomingList(ctx context.Context, id string) (res dto.RoomingListResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ExportRoomingList")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	group, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if len(group.RoomAllocation) == 0 {
		return res, allocation.ErrNotAllocated
	}

	content, err := roominglist.Build(group)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to build rooming list")

		return res, fmt.Errorf("failed to build rooming list: %w", err)
	}

	fileName := fmt.Sprintf("%d-%s", timezone.Now().Unix(), roominglist.FileName(group))

	url, err := s.s3.UploadFileBytes(ctx, constant.Empty, model.EntityName, fileName, roominglist.ContentType, content)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to upload rooming list")

		return res, fmt.Errorf("failed to upload rooming list: %w", err)
	}

	fields := map[string]any{
		model.FieldRoomingListURL: url,
		constant.FieldModifiedAt:  timezone.Now(),
		constant.FieldModifiedBy:  user,
	}

	if err = s.repo.Update(ctx, fields, s.filter(id)); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to save rooming list url")

		if cleanupErr := s.s3.DeleteFile(ctx, constant.Empty, model.EntityName, fileName); cleanupErr != nil {
			log.Error().Err(cleanupErr).Str("file", fileName).Msg("failed to remove orphaned rooming list")
		}

		return res, fmt.Errorf("failed to save rooming list url: %w", err)
	}

	if previous := s.s3.GetObjectNameFromURL(constant.Empty, group.RoomingListURL); previous != constant.Empty {
		if err := s.s3.DeleteFile(ctx, constant.Empty, path.Dir(previous), path.Base(previous)); err != nil {
			log.Warn().Err(err).Str("object", previous).Msg("failed to remove previous rooming list")
		}
	}

	res.GroupBookingID = group.ID
	res.URL = url

	go s.invalidate(context.WithoutCancel(ctx), id)

	return res, nil
}

func (s *serviceImpl) filter(id string) gDto.FilterGroup {
	return shared.FilterByID(id, model.FieldID, model.TableName)
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.GroupBooking, error) {
	group, err := s.repo.Get(ctx, s.filter(id))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get group booking")

		return group, fmt.Errorf("failed to get group booking: %w", err)
	}

	if group.ID == constant.Empty {
		return group, failure.NotFound("group booking not found") // nolint:wrapcheck
	}

	return group, nil
}

// lock reads the group and holds its row lock until the transaction ends, so
// at most one allocation or confirmation runs per group at a time.
func (s *serviceImpl) lock(ctx context.Context, id string) (model.GroupBooking, error) {
	group, err := s.repo.GetForUpdate(ctx, s.filter(id))
	if err != nil {
		return group, fmt.Errorf("failed to lock group booking: %w", err)
	}

	if group.ID == constant.Empty {
		return group, failure.NotFound("group booking not found") // nolint:wrapcheck
	}

	return group, nil
}

// ensureOpen rejects changes to the room plan of a finished group.
func (s *serviceImpl) ensureOpen(group model.GroupBooking) error {
	switch group.Status {
	case model.StatusConfirmed:
		return allocation.ErrAlreadyConfirmed
	case model.StatusCancelled:
		return fmt.Errorf("%w: group booking is cancelled", allocation.ErrInvalidTransition)
	default:
		return nil
	}
}

// afterCommit runs once a group change is durable: it drops stale caches and
// publishes the change. Failures are logged only.
func (s *serviceImpl) afterCommit(ctx context.Context, eventType string, group model.GroupBooking) {
	s.invalidate(ctx, group.ID)

	if err := s.publisher.Publish(ctx, event.FromGroup(eventType, group)); err != nil {
		log.Error().Err(err).Str("id", group.ID).Str("type", eventType).Msg("failed to publish group booking event")
	}
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetGroupBooking, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete group booking cache")
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllGroupBooking)
	shared.InvalidateCaches(ctx, s.cache, cacheCountGroupBooking)
	shared.InvalidateCaches(ctx, s.cache, cacheUpcomingGroup)
}
