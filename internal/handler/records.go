package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vicare/internal/middleware"
	"github.com/iliyamo/vicare/internal/model"
	"github.com/iliyamo/vicare/internal/repository"
)

// RecordHandler serves the owner-scoped health record collections:
// medicines, vaccines and appointments. Every operation uses the user id
// resolved by the auth middleware; ids supplied by the client are only
// ever record ids, never identities.
type RecordHandler struct {
	Medicines    *repository.MedicineRepo
	Vaccines     *repository.VaccineRepo
	Appointments *repository.AppointmentRepo
}

func NewRecordHandler(m *repository.MedicineRepo, v *repository.VaccineRepo, a *repository.AppointmentRepo) *RecordHandler {
	return &RecordHandler{Medicines: m, Vaccines: v, Appointments: a}
}

type medicineReq struct {
	Name      string `json:"name"`
	Dose      string `json:"dose"`
	Frequency string `json:"frequency"`
	Notes     string `json:"notes"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type vaccineReq struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Provider string `json:"provider"`
	Notes    string `json:"notes"`
}

type appointmentReq struct {
	Doctor   string `json:"doctor"`
	Date     string `json:"date"`
	Location string `json:"location"`
	Reason   string `json:"reason"`
	Notes    string `json:"notes"`
}

// ----- Medicines -----

func (h *RecordHandler) ListMedicines(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Medicines.ListByUser(ctx, middleware.CurrentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error loading medicines"})
	}
	return c.JSON(http.StatusOK, items)
}

func (h *RecordHandler) CreateMedicine(c echo.Context) error {
	var req medicineReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "medicine name is required"})
	}
	if len(req.Name) > 200 || len(req.Dose) > 100 || len(req.Frequency) > 100 || len(req.Notes) > 500 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "field too long"})
	}
	start, ok := parseOptionalDate(req.StartDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start date must be a valid date"})
	}
	end, ok := parseOptionalDate(req.EndDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end date must be a valid date"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	m := model.Medicine{
		UserID:    middleware.CurrentUserID(c),
		Name:      req.Name,
		Dose:      strings.TrimSpace(req.Dose),
		Frequency: strings.TrimSpace(req.Frequency),
		Notes:     strings.TrimSpace(req.Notes),
		StartDate: start,
		EndDate:   end,
	}
	id, err := h.Medicines.Create(ctx, m)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error creating medicine"})
	}
	m.ID = id
	return c.JSON(http.StatusCreated, m)
}

func (h *RecordHandler) DeleteMedicine(c echo.Context) error {
	id, err := recordID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Medicines.Delete(ctx, middleware.CurrentUserID(c), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error deleting medicine"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Medicine deleted."})
}

// ----- Vaccines -----

func (h *RecordHandler) ListVaccines(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Vaccines.ListByUser(ctx, middleware.CurrentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error loading vaccines"})
	}
	return c.JSON(http.StatusOK, items)
}

func (h *RecordHandler) CreateVaccine(c echo.Context) error {
	var req vaccineReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || strings.TrimSpace(req.Date) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vaccine name and date are required"})
	}
	if len(req.Name) > 200 || len(req.Provider) > 200 || len(req.Notes) > 500 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "field too long"})
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vaccine date must be a valid date"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	v := model.Vaccine{
		UserID:   middleware.CurrentUserID(c),
		Name:     req.Name,
		Date:     date,
		Provider: strings.TrimSpace(req.Provider),
		Notes:    strings.TrimSpace(req.Notes),
	}
	id, err := h.Vaccines.Create(ctx, v)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error creating vaccine"})
	}
	v.ID = id
	return c.JSON(http.StatusCreated, v)
}

func (h *RecordHandler) DeleteVaccine(c echo.Context) error {
	id, err := recordID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Vaccines.Delete(ctx, middleware.CurrentUserID(c), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error deleting vaccine"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Vaccine deleted."})
}

// ----- Appointments -----

func (h *RecordHandler) ListAppointments(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Appointments.ListByUser(ctx, middleware.CurrentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error loading appointments"})
	}
	return c.JSON(http.StatusOK, items)
}

func (h *RecordHandler) CreateAppointment(c echo.Context) error {
	var req appointmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Doctor = strings.TrimSpace(req.Doctor)
	if req.Doctor == "" || strings.TrimSpace(req.Date) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "doctor and date are required for an appointment"})
	}
	if len(req.Doctor) > 200 || len(req.Location) > 200 || len(req.Reason) > 200 || len(req.Notes) > 500 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "field too long"})
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "appointment date must be a valid date"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	a := model.Appointment{
		UserID:   middleware.CurrentUserID(c),
		Doctor:   req.Doctor,
		Date:     date,
		Location: strings.TrimSpace(req.Location),
		Reason:   strings.TrimSpace(req.Reason),
		Notes:    strings.TrimSpace(req.Notes),
	}
	id, err := h.Appointments.Create(ctx, a)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error creating appointment"})
	}
	a.ID = id
	return c.JSON(http.StatusCreated, a)
}

func (h *RecordHandler) DeleteAppointment(c echo.Context) error {
	id, err := recordID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Appointments.Delete(ctx, middleware.CurrentUserID(c), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error deleting appointment"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Appointment deleted."})
}

// ----- helpers -----

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

func recordID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// parseDate accepts RFC 3339 timestamps or bare YYYY-MM-DD dates.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}

// parseOptionalDate returns (nil, true) for an empty value, the parsed
// time for a valid one and ok=false for garbage.
func parseOptionalDate(s string) (*time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, false
	}
	return &t, true
}
