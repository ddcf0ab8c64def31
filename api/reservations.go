package api

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/pkg/logger"
	"github.com/Domenick1991/hotelbooking/internal/service/reservation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	service reservation.ReservationUseCase
}

type reservationRequest struct {
	Name      string `json:"name" binding:"required"`
	StartDate string `json:"start_date" binding:"required,isodate"`
	EndDate   string `json:"end_date" binding:"required,isodate"`
	RoomID    *int   `json:"room_id" binding:"required"`
}

func (r reservationRequest) toDomain() domain.Reservation {
	return domain.Reservation{
		GuestName: r.Name,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		RoomID:    *r.RoomID,
	}
}

// flatReservation carries the reservation fields when a client sends them
// beside new_start_date/new_end_date instead of under "reservation".
type flatReservation struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	RoomID    *int   `json:"room_id"`
}

type updateReservationRequest struct {
	Reservation *reservationRequest `json:"reservation"`
	flatReservation
	NewStartDate string `json:"new_start_date" binding:"required,isodate"`
	NewEndDate   string `json:"new_end_date" binding:"required,isodate"`
}

func (r updateReservationRequest) existing() (reservationRequest, error) {
	if r.Reservation != nil {
		return *r.Reservation, nil
	}
	existing := reservationRequest(r.flatReservation)
	if err := binding.Validator.ValidateStruct(&existing); err != nil {
		return reservationRequest{}, err
	}
	return existing, nil
}

type reservationsResponse struct {
	Result []domain.Reservation `json:"result"`
}

var registerValidators sync.Once

func NewReservationHandler(service reservation.ReservationUseCase) *ReservationHandler {
	registerValidators.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
				return domain.ValidDate(fl.Field().String())
			})
		}
	})
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.GET("/by-name/:name", h.findByName)
	router.GET("/by-room/:room_id", h.findByRoom)
	router.POST("", h.reserve)
	router.PUT("/update", h.update)
	router.DELETE("/delete", h.cancel)
}

func (h *ReservationHandler) findByName(c *gin.Context) {
	reservations, err := h.service.FindByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reservationsResponse{Result: reservations})
}

func (h *ReservationHandler) findByRoom(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	reservations, err := h.service.FindByRoom(c.Request.Context(), roomID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reservationsResponse{Result: reservations})
}

func (h *ReservationHandler) reserve(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Reserve(c.Request.Context(), req.toDomain()); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *ReservationHandler) update(c *gin.Context) {
	var req updateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	existing, err := req.existing()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Update(c.Request.Context(), existing.toDomain(), req.NewStartDate, req.NewEndDate); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), req.toDomain()); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// fail maps rejections to 400 and everything else to 500.
func (h *ReservationHandler) fail(c *gin.Context, err error) {
	if domain.IsRejection(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.Error("reservation request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": http.StatusText(http.StatusInternalServerError)})
}

// NoRoute answers unknown paths with the same error body as the handlers.
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}
