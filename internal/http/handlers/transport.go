package handlers

import (
	"bytes"
	"net/http"

	"campushub/internal/domain/models"
	"campushub/internal/http/middleware"
	"campushub/internal/services"

	"github.com/gin-gonic/gin"
)

func transportService(c *gin.Context) services.TransportService {
	return services.TransportService{RequestID: middleware.GetRequestID(c)}
}

func seatBookingService(c *gin.Context) services.SeatBookingService {
	return services.SeatBookingService{RequestID: middleware.GetRequestID(c)}
}

func ListRoutes(c *gin.Context) {
	out, err := transportService(c).ListRoutes(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func CreateRoute(c *gin.Context) {
	var req models.RouteInput
	if !BindJSONOrError(c, &req) {
		return
	}
	r, err := transportService(c).CreateRoute(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func ListAgentBuses(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}
	out, err := transportService(c).ListBuses(c.Request.Context(), agent)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func CreateBus(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}
	var req models.BusInput
	if !BindJSONOrError(c, &req) {
		return
	}
	bus, err := transportService(c).CreateBus(c.Request.Context(), agent, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bus)
}

func UpdateBus(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.BusInput
	if !BindJSONOrError(c, &req) {
		return
	}
	bus, err := transportService(c).UpdateBus(c.Request.Context(), agent, id, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bus)
}

func DeleteBus(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := transportService(c).DeleteBus(c.Request.Context(), agent, id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bus deleted"})
}

func BusLayout(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	bus, err := transportService(c).BusLayout(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bus_id":      bus.ID,
		"rows":        bus.RowCount,
		"columns":     bus.ColumnCount,
		"seat_layout": bus.Layout,
	})
}

func ListTrips(c *gin.Context) {
	out, err := transportService(c).ListTrips(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func ListAgentTrips(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}
	out, err := transportService(c).ListAgentTrips(c.Request.Context(), agent)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func CreateTrip(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}
	var req models.TripInput
	if !BindJSONOrError(c, &req) {
		return
	}
	trip, err := transportService(c).CreateTrip(c.Request.Context(), agent, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

type tripStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func UpdateTripStatus(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req tripStatusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	trip, err := transportService(c).UpdateTripStatus(c.Request.Context(), agent, id, req.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func TripSeats(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	m, err := seatBookingService(c).SeatMap(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// BookSeat reserves one seat; a seat already held on the trip answers 409.
func BookSeat(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.SeatBookingInput
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := seatBookingService(c).Allocate(c.Request.Context(), id, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func ListAgentBookings(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}
	out, err := seatBookingService(c).ListForAgent(c.Request.Context(), agent)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func ConfirmSeatBooking(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	b, err := seatBookingService(c).ConfirmPayment(c.Request.Context(), agent, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func CancelSeatBooking(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	b, err := seatBookingService(c).Cancel(c.Request.Context(), agent, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func ExportAgentBookings(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}
	rid := middleware.GetRequestID(c)
	reports := services.ReportsService{Seats: seatBookingService(c), RequestID: rid}
	var buf bytes.Buffer
	filename, err := reports.ExportSeatBookings(c.Request.Context(), agent, &buf)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	attachment(c, "text/csv; charset=utf-8", filename, buf.Bytes())
}

// ETicket renders the PDF ticket for a ticket code.
func ETicket(c *gin.Context) {
	svc := services.TicketService{
		Bookings:  seatBookingService(c),
		RequestID: middleware.GetRequestID(c),
	}
	data, filename, err := svc.GenerateETicket(c.Request.Context(), c.Param("code"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	attachment(c, "application/pdf", filename, data)
}
