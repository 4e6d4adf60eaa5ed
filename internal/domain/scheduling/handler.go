package scheduling

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RolePhysician, auth.RoleRegistrar))
	readGroup.GET("/appointments", h.ListAppointments)
	readGroup.GET("/appointments/:date/:time/:patient", h.GetAppointment)
	readGroup.GET("/patients/:id/appointments", h.ListByPatient)
	readGroup.GET("/doctors/:id/appointments", h.ListByDoctor)
	readGroup.GET("/doctors/:id/availability", h.AvailableSlots)
	readGroup.GET("/doctors/:id/schedules", h.ListRegularSchedules)
	readGroup.GET("/doctors/:id/exceptions", h.ListExceptionalSchedules)
	readGroup.GET("/doctors/:id/reports/attended", h.AttendedPatients)
	readGroup.GET("/doctors/:id/reports/attendance", h.AttendanceStats)

	writeGroup := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RolePhysician, auth.RoleRegistrar))
	writeGroup.POST("/appointments", h.RegisterAppointment)
	writeGroup.PATCH("/appointments/:date/:time/:patient", h.UpdateAppointment)
	writeGroup.DELETE("/appointments/:date/:time/:patient", h.DeleteAppointment)
	writeGroup.POST("/appointments/:date/:time/:patient/actions/:action", h.ChangeStatus)

	// Calendar management is restricted to administrators.
	adminGroup := api.Group("", auth.RequireRole(auth.RoleAdmin))
	adminGroup.POST("/doctors/:id/schedules", h.CreateRegularSchedule)
	adminGroup.DELETE("/doctors/:id/schedules", h.DeleteRegularSchedule)
	adminGroup.POST("/doctors/:id/exceptions", h.CreateExceptionalSchedule)
	adminGroup.DELETE("/doctors/:id/exceptions", h.DeleteExceptionalSchedule)
}

// httpError maps domain errors onto HTTP status codes. Unknown errors
// surface as 500s.
func httpError(err error) error {
	var (
		notFound    *NotFoundError
		unavailable *SlotUnavailableError
		transition  *InvalidTransitionError
		config      *ConfigError
		validation  *ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.As(err, &unavailable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &transition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &config):
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	case errors.As(err, &validation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func appointmentKeyFromPath(c echo.Context) (AppointmentKey, error) {
	date, err := ParseDate(c.Param("date"))
	if err != nil {
		return AppointmentKey{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := ParseTimeOfDay(c.Param("time"))
	if err != nil {
		return AppointmentKey{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	patientID, err := strconv.Atoi(c.Param("patient"))
	if err != nil {
		return AppointmentKey{}, echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	return AppointmentKey{Date: date, Time: t, PatientID: patientID}, nil
}

// -- Appointment Handlers --

func (h *Handler) RegisterAppointment(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.RegisterAppointment(c.Request().Context(), a)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	key, err := appointmentKeyFromPath(c)
	if err != nil {
		return err
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), key)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAppointments(c.Request().Context(), pg)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByDoctor(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByDoctor(c.Request().Context(), c.Param("id"), pg)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	key, err := appointmentKeyFromPath(c)
	if err != nil {
		return err
	}
	var upd AppointmentUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.UpdateAppointment(c.Request().Context(), key, upd)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	key, err := appointmentKeyFromPath(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteAppointment(c.Request().Context(), key); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ChangeStatus(c echo.Context) error {
	key, err := appointmentKeyFromPath(c)
	if err != nil {
		return err
	}
	a, err := h.svc.ChangeStatus(c.Request().Context(), key, Action(c.Param("action")))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

// -- Availability Handlers --

func (h *Handler) AvailableSlots(c echo.Context) error {
	from, err := ParseDate(c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
	}
	to, err := ParseDate(c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
	}
	slots, err := h.svc.AvailableSlots(c.Request().Context(), c.Param("id"), from, to)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"slots": slots, "total": len(slots)})
}

// -- Report Handlers --

func reportRangeFromQuery(c echo.Context) (Date, Date, error) {
	from, err := ParseDate(c.QueryParam("from"))
	if err != nil {
		return Date{}, Date{}, echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
	}
	to, err := ParseDate(c.QueryParam("to"))
	if err != nil {
		return Date{}, Date{}, echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
	}
	return from, to, nil
}

func (h *Handler) AttendedPatients(c echo.Context) error {
	from, to, err := reportRangeFromQuery(c)
	if err != nil {
		return err
	}
	visits, err := h.svc.AttendedPatients(c.Request().Context(), c.Param("id"), from, to)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"visits": visits, "total": len(visits)})
}

func (h *Handler) AttendanceStats(c echo.Context) error {
	from, to, err := reportRangeFromQuery(c)
	if err != nil {
		return err
	}
	report, err := h.svc.AttendanceStats(c.Request().Context(), c.Param("id"), from, to)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}

// -- Calendar Handlers --

func (h *Handler) CreateRegularSchedule(c echo.Context) error {
	var sched RegularSchedule
	if err := c.Bind(&sched); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sched.DoctorID = c.Param("id")
	if err := h.svc.CreateRegularSchedule(c.Request().Context(), sched); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, sched)
}

func (h *Handler) DeleteRegularSchedule(c echo.Context) error {
	specialtyID, err := strconv.Atoi(c.QueryParam("specialty_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid specialty_id")
	}
	weekday, err := strconv.Atoi(c.QueryParam("weekday"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid weekday")
	}
	start, err := ParseTimeOfDay(c.QueryParam("start_time"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	key := RegularScheduleKey{DoctorID: c.Param("id"), SpecialtyID: specialtyID, Weekday: weekday, Start: start}
	if err := h.svc.DeleteRegularSchedule(c.Request().Context(), key); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListRegularSchedules(c echo.Context) error {
	items, err := h.svc.ListRegularSchedules(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateExceptionalSchedule(c echo.Context) error {
	var sched ExceptionalSchedule
	if err := c.Bind(&sched); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sched.DoctorID = c.Param("id")
	if err := h.svc.CreateExceptionalSchedule(c.Request().Context(), sched); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, sched)
}

func (h *Handler) DeleteExceptionalSchedule(c echo.Context) error {
	specialtyID, err := strconv.Atoi(c.QueryParam("specialty_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid specialty_id")
	}
	startDate, err := ParseDate(c.QueryParam("start_date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	start, err := ParseTimeOfDay(c.QueryParam("start_time"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	key := ExceptionalScheduleKey{DoctorID: c.Param("id"), SpecialtyID: specialtyID, StartDate: startDate, Start: start}
	if err := h.svc.DeleteExceptionalSchedule(c.Request().Context(), key); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListExceptionalSchedules(c echo.Context) error {
	items, err := h.svc.ListExceptionalSchedules(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}
