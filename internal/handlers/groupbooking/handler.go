package groupbooking

import (
	"net/http"
	"strconv"

	"pms/infras/otel"
	"pms/internal/domains/groupbooking/model"
	"pms/internal/domains/groupbooking/model/dto"
	"pms/internal/domains/groupbooking/service"
	"pms/shared"
	"pms/shared/constant"
	gDto "pms/shared/dto"
	"pms/shared/failure"
	"pms/shared/validator"
	"pms/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service service.GroupBooking
	otel    otel.Otel
}

func New(service service.GroupBooking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/group-bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateGroupBooking)
		routerGroup.Get("/", handler.GetGroupBookings)
		routerGroup.Get("/upcoming", handler.GetUpcomingGroupBookings)
		routerGroup.Get("/{id}", handler.GetGroupBookingByID)
		routerGroup.Patch("/{id}", handler.UpdateGroupBooking)
		routerGroup.Delete("/{id}", handler.DeleteGroupBooking)

		routerGroup.Post("/{id}/allocate", handler.AllocateRooms)
		routerGroup.Put("/{id}/allocation", handler.UpdateAllocation)
		routerGroup.Put("/{id}/allocation/{roomId}/guests", handler.AssignGuests)

		routerGroup.Post("/{id}/confirm", handler.ConfirmGroupBooking)
		routerGroup.Post("/{id}/cancel", handler.CancelGroupBooking)
		routerGroup.Patch("/{id}/status", handler.UpdateGroupBookingStatus)
		routerGroup.Post("/{id}/rooming-list", handler.ExportRoomingList)
	})
}

// CreateGroupBooking registers a group inquiry and blocks rooms for it.
// @Summary Create a group booking
// @Description Create a group inquiry. Rooms are allocated immediately, largest capacity first; a shortfall is reported in the allocation summary.
// @Tags Group Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateGroupBookingRequest true "Create Group Booking Request"
// @Success 201 {object} response.Data[dto.GroupBookingResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/group-bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateGroupBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateGroupBooking")
	defer scope.End()

	req := dto.CreateGroupBookingRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		response.WithTracedError(writer, scope, err, "failed to validate request body")

		return
	}

	group, err := handler.service.Create(ctx, req)
	if err != nil {
		response.WithTracedError(writer, scope, err, "failed to create group booking")

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Group booking created successfully by user " + user)

	response.WithJSON(writer, http.StatusCreated, group)
}

// GetGroupBookings lists group bookings.
// @Summary Get all group bookings
// @Tags Group Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status (inquiry, quoted, confirmed, cancelled)"
// @Param group_type query string false "Filter by group type"
// @Param group_name query string false "Search by group name"
// @Success 200 {object} response.Data[dto.GetGroupBookingsResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/group-bookings [get]
// @Security BearerAuth
func (handler *Handler) GetGroupBookings(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetGroupBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	filterGroup := shared.FilterByQuery(request, model.TableName, model.FieldStatus, model.FieldGroupType)

	if name := request.URL.Query().Get(model.FieldGroupName); name != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldGroupName,
			Operator: gDto.FilterOperatorLike,
			Value:    name,
			Table:    model.TableName,
		})
	}

	groups, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		response.WithTracedError(writer, scope, err, "failed to get group bookings")

		return
	}

	response.WithJSON(writer, http.StatusOK, groups)
}

// GetUpcomingGroupBookings lists groups arriving soon.
// @Summary Get upcoming group bookings
// @Description Non-cancelled groups checking in between today and the given number of days ahead.
// @Tags Group Booking
// @Produce json
// @Param days query int false "Window in days (default 30)"
// @Success 200 {object} response.Data[[]dto.GroupBookingResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/group-bookings/upcoming [get]
// @Security BearerAuth
func (handler *Handler) GetUpcomingGroupBookings(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUpcomingGroupBookings")
	defer scope.End()

	days := 0

	if raw := request.URL.Query().Get(constant.RequestParamDays); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.WithTracedError(writer, scope, failure.BadRequestFromString("days must be a non-negative integer"), "invalid days parameter")

			return
		}

		days = parsed
	}

	groups, err := handler.service.Upcoming(ctx, days)
	if err != nil {
		response.WithTracedError(writer, scope, err, "failed to get upcoming group bookings")

		return
	}

	response.WithJSON(writer, http.StatusOK, groups)
}

// GetGroupBookingByID retrieves one group booking with its allocation.
// @Summary Get a group booking by ID
// @Tags Group Booking
// @Produce json
// @Param id path string true "Group Booking ID"
// @Success 200 {object} response.Data[dto.GroupBookingResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/group-bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetGroupBookingByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetGroupBookingByID")
	defer scope.End()

	group, err := handler.service.Get(ctx, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		response.WithTracedError(writer, scope, err, "failed to get group booking by ID")

		return
	}

	response.WithJSON(writer, http.StatusOK, group)
}

// UpdateGroupBooking edits a group booking before confirmation.
// @Summary Update a group booking
// @Description Guest count and date changes are only accepted before confirmation.
// @Tags Group Booking
// @Accept json
// @Produce json
// @Param id path string true "Group Booking ID"
// @Param request body dto.UpdateGroupBookingRequest true "Update Group Booking Request"
// @Success 200 {object} response.Data[dto.GroupBookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/group-bookings/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateGroupBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateGroupBooking")
	defer scope.End()

	req := dto.UpdateGroupBookingRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		response.WithTracedError(writer, scope, err, "failed to validate request body")

		return
	}

	group, err := handler.service.Update(ctx, req, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		response.WithTracedError(writer, scope, err, "failed to update group booking")

		return
	}

	response.WithJSON(writer, http.StatusOK, group)
}

// DeleteGroupBooking removes an unconfirmed group booking.
// @Summary Delete a group booking
// @Tags Group Booking
// @Produce json
// @Param id path string true "Group Booking ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/group-bookings/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteGroupBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteGroupBooking")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(request, constant.RequestParamID)); err != nil {
		response.WithTracedError(writer, scope, err, "failed to delete group booking")

		return
	}

	response.WithMessage(writer, http.StatusOK, "Group booking deleted successfully")
}

// AllocateRooms recomputes the room allocation.
// @Summary Allocate rooms for a group
// @Description Discards the current allocation and blocks rooms again from the rooms free for the whole stay.
// @Tags Group Booking
// @Produce json
// @Param id path string true "Group Booking ID"
// @Success 200 {object} response.Data[dto.AllocationResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/group-bookings/{id}/allocate [post]
// @Security BearerAuth
func (handler *Handler) AllocateRooms(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".AllocateRooms")
	defer scope.End()

	result, err := handler.service.Allocate(ctx, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		response.WithTracedError(writer, scope, err, "failed to allocate rooms")

		return
	}

	response.WithJSON(writer, http.StatusOK, result)
}

// UpdateAllocation replaces the allocation with an operator's selection.
// @Summary Edit room allocation
// @Tags Group Booking
// @Accept json
// @Produce json
// @Param id path string true "Group Booking ID"
// @Param request body dto.UpdateAllocationRequest true "Allocation"
// @Success 200 {object} response.Data[dto.AllocationResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/group-bookings/{id}/allocation [put]
// @Security BearerAuth
func (handler *Handler) UpdateAllocation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateAllocation")
	defer scope.End()

	req := dto.UpdateAllocationRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		response.WithTracedError(writer, scope, err, "failed to validate request body")

		return
	}

	result, err := handler.service.UpdateAllocation(ctx, req, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		response.WithTracedError(writer, scope, err, "failed to update allocation")

		return
	}

	response.WithJSON(writer, http.StatusOK, result)
}

// AssignGuests records guest names for one allocated room.
// @Summary Assign guest names to a room
// @Tags Group Booking
// @Accept json
// @Produce json
// @Param id path string true "Group Booking ID"
// @Param roomId path string true "Room ID"
// @Param request body dto.AssignGuestsRequest true "Guest names"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/group-bookings/{id}/allocation/{roomId}/guests [put]
// @Security BearerAuth
func (handler *Handler) AssignGuests(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".AssignGuests")
	defer scope.End()

	req := dto.AssignGuestsRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		response.WithTracedError(writer, scope, err, "failed to validate request body")

		return
	}

	err := handler.service.AssignGuests(ctx, req,
		chi.URLParam(request, constant.RequestParamID),
		chi.URLParam(request, constant.RequestParamRoomID),
	)
	if err != nil {
		response.WithTracedError(writer, scope, err, "failed to assign guests")

		return
	}

	response.WithMessage(writer, http.StatusOK, "Guests assigned successfully")
}

// ConfirmGroupBooking turns the allocation into room bookings.
// @Summary Confirm a group booking
// @Description Creates one confirmed booking per allocated room. Fails without side effects if any room has been taken since allocation.
// @Tags Group Booking
// @Produce json
// @Param id path string true "Group Booking ID"
// @Success 200 {object} response.Data[dto.ConfirmationResponse]
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/group-bookings/{id}/confirm [post]
// @Security BearerAuth
func (handler *Handler) ConfirmGroupBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ConfirmGroupBooking")
	defer scope.End()

	result, err := handler.service.Confirm(ctx, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		response.WithTracedError(writer, scope, err, "failed to confirm group booking")

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Group booking confirmed by user " + user)

	response.WithJSON(writer, http.StatusOK, result)
}

// CancelGroupBooking cancels an unconfirmed group booking.
// @Summary Cancel a group booking
// @Tags Group Booking
// @Produce json
// @Param id path string true "Group Booking ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/group-bookings/{id}/cancel [post]
// @Security BearerAuth
func (handler *Handler) CancelGroupBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelGroupBooking")
	defer scope.End()

	if err := handler.service.Cancel(ctx, chi.URLParam(request, constant.RequestParamID)); err != nil {
		response.WithTracedError(writer, scope, err, "failed to cancel group booking")

		return
	}

	response.WithMessage(writer, http.StatusOK, "Group booking cancelled successfully")
}

// UpdateGroupBookingStatus moves a group booking along its status machine.
// @Summary Update group booking status
// @Description Use the confirm endpoint to confirm; this endpoint handles quoting and cancelling.
// @Tags Group Booking
// @Accept json
// @Produce json
// @Param id path string true "Group Booking ID"
// @Param request body dto.UpdateGroupBookingStatusRequest true "Status"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/group-bookings/{id}/status [patch]
// @Security BearerAuth
func (handler *Handler) UpdateGroupBookingStatus(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateGroupBookingStatus")
	defer scope.End()

	req := dto.UpdateGroupBookingStatusRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		response.WithTracedError(writer, scope, err, "failed to validate request body")

		return
	}

	if err := handler.service.UpdateStatus(ctx, req, chi.URLParam(request, constant.RequestParamID)); err != nil {
		response.WithTracedError(writer, scope, err, "failed to update group booking status")

		return
	}

	response.WithMessage(writer, http.StatusOK, "Group booking status updated successfully")
}

// ExportRoomingList renders the rooming list spreadsheet and stores it.
// @Summary Export rooming list
// @Tags Group Booking
// @Produce json
// @Param id path string true "Group Booking ID"
// @Success 200 {object} response.Data[dto.RoomingListResponse]
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/group-bookings/{id}/rooming-list [post]
// @Security BearerAuth
func (handler *Handler) ExportRoomingList(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ExportRoomingList")
	defer scope.End()

	result, err := handler.service.ExportRoomingList(ctx, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		response.WithTracedError(writer, scope, err, "failed to export rooming list")

		return
	}

	response.WithJSON(writer, http.StatusOK, result)
}
