package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"campushub/internal/domain"
	"campushub/internal/domain/models"
	"campushub/internal/repositories"
	"campushub/internal/utils"
)

// TransportService manages agent-owned buses and trips and the shared route list.
type TransportService struct {
	Buses     repositories.BusRepository
	Routes    repositories.RouteRepository
	Trips     repositories.TripRepository
	RequestID string
}

func (s TransportService) ListRoutes(ctx context.Context) ([]models.Route, error) {
	out, err := s.Routes.List(ctx)
	if err != nil {
		return nil, domain.InternalError{Msg: "list routes", Err: err}
	}
	return out, nil
}

func (s TransportService) CreateRoute(ctx context.Context, in models.RouteInput) (models.Route, error) {
	in.Origin = utils.NormalizeSpace(in.Origin)
	in.Destination = utils.NormalizeSpace(in.Destination)
	if in.Origin == "" || in.Destination == "" {
		return models.Route{}, domain.ValidationError{Msg: "origin and destination are required"}
	}
	if strings.EqualFold(in.Origin, in.Destination) {
		return models.Route{}, domain.ValidationError{Field: "destination", Msg: "must differ from origin"}
	}
	if in.Price < 0 {
		return models.Route{}, domain.ValidationError{Field: "price", Msg: "must not be negative"}
	}
	id, err := s.Routes.Create(ctx, in)
	if err != nil {
		return models.Route{}, domain.InternalError{Msg: "create route", Err: err}
	}
	utils.LogEvent(s.RequestID, "transport", "create_route", fmt.Sprintf("route_id=%d", id))
	return models.Route{ID: id, Origin: in.Origin, Destination: in.Destination, Price: in.Price}, nil
}

func validateBusInput(in *models.BusInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.ValidationError{Field: "name", Msg: "is required"}
	}
	if in.RowCount < 1 {
		return domain.ValidationError{Field: "rows", Msg: "must be at least 1"}
	}
	if in.ColumnCount < 1 {
		return domain.ValidationError{Field: "columns", Msg: "must be at least 1"}
	}
	if in.WalkwayPosition < 0 {
		return domain.ValidationError{Field: "walkway_position", Msg: "must not be negative"}
	}
	return nil
}

func (s TransportService) ListBuses(ctx context.Context, agentID int64) ([]models.Bus, error) {
	out, err := s.Buses.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, domain.InternalError{Msg: "list buses", Err: err}
	}
	return out, nil
}

func (s TransportService) bus(ctx context.Context, id int64) (models.Bus, error) {
	b, err := s.Buses.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return b, domain.NotFoundError{Resource: "bus", Err: err}
	}
	if err != nil {
		return b, domain.InternalError{Msg: "load bus", Err: err}
	}
	return b, nil
}

func (s TransportService) ownedBus(ctx context.Context, agentID, id int64) (models.Bus, error) {
	b, err := s.bus(ctx, id)
	if err != nil {
		return b, err
	}
	if b.AgentID == nil || *b.AgentID != agentID {
		return b, domain.ForbiddenError{Resource: "bus"}
	}
	return b, nil
}

// CreateBus stores the bus with a layout generated from its geometry.
func (s TransportService) CreateBus(ctx context.Context, agentID int64, in models.BusInput) (models.Bus, error) {
	if err := validateBusInput(&in); err != nil {
		return models.Bus{}, err
	}
	layout := domain.GenerateSeatLayout(in.RowCount, in.ColumnCount, in.WalkwayPosition)
	id, err := s.Buses.Create(ctx, agentID, in, layout)
	if err != nil {
		return models.Bus{}, domain.InternalError{Msg: "create bus", Err: err}
	}
	utils.LogEvent(s.RequestID, "transport", "create_bus", fmt.Sprintf("bus_id=%d agent_id=%d", id, agentID))
	owner := agentID
	return models.Bus{
		ID:              id,
		Name:            in.Name,
		RowCount:        in.RowCount,
		ColumnCount:     in.ColumnCount,
		WalkwayPosition: in.WalkwayPosition,
		AgentID:         &owner,
		Layout:          layout,
	}, nil
}

// UpdateBus rewrites geometry and regenerates the layout. Rows and columns
// are frozen once a trip uses the bus, since seats may already be sold.
func (s TransportService) UpdateBus(ctx context.Context, agentID, id int64, in models.BusInput) (models.Bus, error) {
	if err := validateBusInput(&in); err != nil {
		return models.Bus{}, err
	}
	b, err := s.ownedBus(ctx, agentID, id)
	if err != nil {
		return b, err
	}
	if in.RowCount != b.RowCount || in.ColumnCount != b.ColumnCount {
		inUse, err := s.Buses.HasTrips(ctx, id)
		if err != nil {
			return models.Bus{}, domain.InternalError{Msg: "check bus trips", Err: err}
		}
		if inUse {
			return models.Bus{}, domain.ConflictError{Resource: "bus", Msg: "bus has trips; rows and columns cannot change"}
		}
	}
	layout := domain.GenerateSeatLayout(in.RowCount, in.ColumnCount, in.WalkwayPosition)
	// MySQL reports zero affected rows for an unchanged row, so the count is not checked.
	if _, err := s.Buses.Update(ctx, agentID, id, in, layout); err != nil {
		return models.Bus{}, domain.InternalError{Msg: "update bus", Err: err}
	}
	utils.LogEvent(s.RequestID, "transport", "update_bus", fmt.Sprintf("bus_id=%d", id))
	b.Name, b.RowCount, b.ColumnCount, b.WalkwayPosition, b.Layout = in.Name, in.RowCount, in.ColumnCount, in.WalkwayPosition, layout
	return b, nil
}

// DeleteBus refuses buses that still have trips.
func (s TransportService) DeleteBus(ctx context.Context, agentID, id int64) error {
	if _, err := s.ownedBus(ctx, agentID, id); err != nil {
		return err
	}
	inUse, err := s.Buses.HasTrips(ctx, id)
	if err != nil {
		return domain.InternalError{Msg: "check bus trips", Err: err}
	}
	if inUse {
		return domain.ConflictError{Resource: "bus", Msg: "bus has trips"}
	}
	if _, err := s.Buses.Delete(ctx, agentID, id); err != nil {
		return domain.InternalError{Msg: "delete bus", Err: err}
	}
	utils.LogEvent(s.RequestID, "transport", "delete_bus", fmt.Sprintf("bus_id=%d", id))
	return nil
}

func (s TransportService) BusLayout(ctx context.Context, id int64) (models.Bus, error) {
	return s.bus(ctx, id)
}

func (s TransportService) ListTrips(ctx context.Context) ([]models.Trip, error) {
	out, err := s.Trips.ListActive(ctx)
	if err != nil {
		return nil, domain.InternalError{Msg: "list trips", Err: err}
	}
	return out, nil
}

func (s TransportService) ListAgentTrips(ctx context.Context, agentID int64) ([]models.Trip, error) {
	out, err := s.Trips.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, domain.InternalError{Msg: "list trips", Err: err}
	}
	return out, nil
}

func (s TransportService) trip(ctx context.Context, id int64) (models.Trip, error) {
	t, err := s.Trips.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return t, domain.NotFoundError{Resource: "trip", Err: err}
	}
	if err != nil {
		return t, domain.InternalError{Msg: "load trip", Err: err}
	}
	return t, nil
}

// CreateTrip schedules a departure on a bus the agent owns.
func (s TransportService) CreateTrip(ctx context.Context, agentID int64, in models.TripInput) (models.Trip, error) {
	if _, err := utils.ParseDate(in.DepartureDate); err != nil {
		return models.Trip{}, domain.ValidationError{Field: "departure_date", Msg: "expected YYYY-MM-DD", Err: err}
	}
	clock, err := utils.ParseClock(in.DepartureTime)
	if err != nil {
		return models.Trip{}, domain.ValidationError{Field: "departure_time", Msg: "expected HH:MM", Err: err}
	}
	in.DepartureDate = strings.TrimSpace(in.DepartureDate)
	in.DepartureTime = clock

	if _, err := s.ownedBus(ctx, agentID, in.BusID); err != nil {
		return models.Trip{}, err
	}
	if _, err := s.Routes.GetByID(ctx, in.RouteID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Trip{}, domain.NotFoundError{Resource: "route", Err: err}
		}
		return models.Trip{}, domain.InternalError{Msg: "load route", Err: err}
	}
	id, err := s.Trips.Create(ctx, agentID, in)
	if err != nil {
		return models.Trip{}, domain.InternalError{Msg: "create trip", Err: err}
	}
	utils.LogEvent(s.RequestID, "transport", "create_trip", fmt.Sprintf("trip_id=%d bus_id=%d", id, in.BusID))
	return s.trip(ctx, id)
}

func (s TransportService) UpdateTripStatus(ctx context.Context, agentID, id int64, status string) (models.Trip, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !domain.ValidTripStatus(status) {
		return models.Trip{}, domain.ValidationError{Field: "status", Msg: "must be active or inactive"}
	}
	t, err := s.trip(ctx, id)
	if err != nil {
		return t, err
	}
	if !t.OwnedBy(agentID) {
		return t, domain.ForbiddenError{Resource: "trip"}
	}
	if _, err := s.Trips.UpdateStatus(ctx, agentID, id, status); err != nil {
		return t, domain.InternalError{Msg: "update trip status", Err: err}
	}
	utils.LogEvent(s.RequestID, "transport", "update_trip_status", fmt.Sprintf("trip_id=%d status=%s", id, status))
	t.Status = status
	return t, nil
}
