package directory

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
	readGroup.GET("/doctors", h.ListDoctors)
	readGroup.GET("/doctors/:id", h.GetDoctor)
	readGroup.GET("/patients", h.ListPatients)
	readGroup.GET("/patients/:id", h.GetPatient)
	readGroup.GET("/specialties", h.ListSpecialties)
	readGroup.GET("/branches", h.ListBranches)
	readGroup.GET("/branches/:id/rooms", h.ListRooms)

	writeGroup := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleRegistrar))
	writeGroup.POST("/patients", h.CreatePatient)
	writeGroup.PUT("/patients/:id", h.UpdatePatient)

	adminGroup := api.Group("", auth.RequireRole(auth.RoleAdmin))
	adminGroup.POST("/doctors", h.CreateDoctor)
	adminGroup.PUT("/doctors/:id", h.UpdateDoctor)
	adminGroup.DELETE("/doctors/:id", h.DeleteDoctor)
	adminGroup.DELETE("/patients/:id", h.DeletePatient)
	adminGroup.POST("/specialties", h.CreateSpecialty)
	adminGroup.DELETE("/specialties/:id", h.DeleteSpecialty)
	adminGroup.POST("/branches", h.CreateBranch)
	adminGroup.DELETE("/branches/:id", h.DeleteBranch)
	adminGroup.POST("/branches/:id/rooms", h.CreateRoom)
	adminGroup.DELETE("/branches/:id/rooms/:number", h.DeleteRoom)
}

func httpError(err error) error {
	var (
		notFound *ErrNotFound
		invalid  *ErrInvalid
	)
	switch {
	case errors.As(err, &notFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.As(err, &invalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}

// -- Doctors --

func (h *Handler) CreateDoctor(c echo.Context) error {
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateDoctor(c.Request().Context(), d); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	d, err := h.svc.GetDoctor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d.LicenseNumber = c.Param("id")
	if err := h.svc.UpdateDoctor(c.Request().Context(), d); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	if err := h.svc.DeleteDoctor(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDoctors(c.Request().Context(), pg)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- Patients --

func (h *Handler) CreatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePatient(c.Request().Context(), &p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.UpdatePatient(c.Request().Context(), p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPatients(c.Request().Context(), pg)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- Specialties --

func (h *Handler) CreateSpecialty(c echo.Context) error {
	var s Specialty
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateSpecialty(c.Request().Context(), &s); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) ListSpecialties(c echo.Context) error {
	items, err := h.svc.ListSpecialties(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) DeleteSpecialty(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteSpecialty(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Branches and Rooms --

func (h *Handler) CreateBranch(c echo.Context) error {
	var b Branch
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateBranch(c.Request().Context(), &b); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) ListBranches(c echo.Context) error {
	items, err := h.svc.ListBranches(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) DeleteBranch(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteBranch(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateRoom(c echo.Context) error {
	branchID, err := intParam(c, "id")
	if err != nil {
		return err
	}
	var r Room
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r.BranchID = branchID
	if err := h.svc.CreateRoom(c.Request().Context(), r); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) ListRooms(c echo.Context) error {
	branchID, err := intParam(c, "id")
	if err != nil {
		return err
	}
	items, err := h.svc.ListRooms(c.Request().Context(), branchID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) DeleteRoom(c echo.Context) error {
	branchID, err := intParam(c, "id")
	if err != nil {
		return err
	}
	number, err := intParam(c, "number")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteRoom(c.Request().Context(), number, branchID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
