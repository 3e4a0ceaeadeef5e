/*
handlers.go - HTTP API handlers for the dose engine

PURPOSE:
  Exposes drug records and their dose schedules via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the drug package.

ENDPOINTS:
  Drugs:
    GET    /api/drugs                 List drugs (?active=true for active only)
    POST   /api/drugs                 Create drug
    GET    /api/drugs/{id}            Get drug details
    PUT    /api/drugs/{id}            Replace drug
    DELETE /api/drugs/{id}            Delete drug

  Schedule:
    GET    /api/drugs/{id}/due        Is a dose due on ?date=YYYY-MM-DD
    GET    /api/drugs/{id}/supply     Supply projection
    GET    /api/schedule              Active drugs due on ?date=YYYY-MM-DD

  Import:
    POST   /api/import                Bulk load raw records without validation

  Fractions:
    POST   /api/fractions/parse       Parse fraction text

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: drug.Store (sqlite or memory)
  - Logger: zerolog logger for handler errors
  - LowSupplyDays / MixedNumbers: display and reporting settings

ERROR HANDLING:
  Errors are returned as JSON with the HTTP status derived from the error kind:
  - 400: Invalid argument, malformed fraction, missing input
  - 404: Drug not found
  - 409: Invalid state (schedule cannot be evaluated)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rxdose/dose-engine/drug"
	"github.com/rxdose/dose-engine/fraction"
	"github.com/rxdose/dose-engine/generic"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  drug.Store
	Logger zerolog.Logger

	// LowSupplyDays is the threshold below which a supply is reported as low.
	LowSupplyDays int
	// MixedNumbers selects "1 1/2" over "3/2" in responses.
	MixedNumbers bool

	now func() time.Time
}

// NewHandler creates a new handler with the given store.
func NewHandler(store drug.Store, logger zerolog.Logger) *Handler {
	return &Handler{
		Store:         store,
		Logger:        logger,
		LowSupplyDays: 7,
		MixedNumbers:  true,
		now:           time.Now,
	}
}

// =============================================================================
// DRUG HANDLERS
// =============================================================================

// ListDrugs returns all drugs.
func (h *Handler) ListDrugs(w http.ResponseWriter, r *http.Request) {
	drugs, err := h.Store.List(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list drugs", err)
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"

	dtos := make([]DrugDTO, 0, len(drugs))
	for _, d := range drugs {
		if activeOnly && !d.Active() {
			continue
		}
		dtos = append(dtos, h.toDrugDTO(d))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateDrug validates and stores a new drug under a fresh id.
func (h *Handler) CreateDrug(w http.ResponseWriter, r *http.Request) {
	var req DrugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	d := drug.New(req.Name)
	d.ID = drug.DrugID(uuid.NewString())
	if err := applyRequest(d, req); err != nil {
		h.fail(w, r, "Invalid drug", err)
		return
	}

	if err := h.Store.Save(r.Context(), d); err != nil {
		h.fail(w, r, "Failed to save drug", err)
		return
	}

	h.Logger.Info().Str("drug_id", string(d.ID)).Str("name", d.Name()).Msg("drug created")
	writeJSON(w, http.StatusCreated, h.toDrugDTO(d))
}

// GetDrug returns a single drug.
func (h *Handler) GetDrug(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadDrug(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.toDrugDTO(d))
}

// UpdateDrug replaces the editable fields of an existing drug.
func (h *Handler) UpdateDrug(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadDrug(w, r)
	if !ok {
		return
	}

	var req DrugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	d := drug.New(req.Name)
	d.ID = existing.ID
	if err := applyRequest(d, req); err != nil {
		h.fail(w, r, "Invalid drug", err)
		return
	}

	if d.Equal(existing) {
		writeJSON(w, http.StatusOK, h.toDrugDTO(existing))
		return
	}

	if err := h.Store.Save(r.Context(), d); err != nil {
		h.fail(w, r, "Failed to save drug", err)
		return
	}

	h.Logger.Info().Str("drug_id", string(d.ID)).Msg("drug updated")
	writeJSON(w, http.StatusOK, h.toDrugDTO(d))
}

// DeleteDrug removes a drug.
func (h *Handler) DeleteDrug(w http.ResponseWriter, r *http.Request) {
	id := drug.DrugID(chi.URLParam(r, "id"))
	if err := h.Store.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "Failed to delete drug", err)
		return
	}

	h.Logger.Info().Str("drug_id", string(id)).Msg("drug deleted")
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// GetDue reports whether the drug has a dose due on the requested date.
func (h *Handler) GetDue(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadDrug(w, r)
	if !ok {
		return
	}

	day, err := h.dateParam(r)
	if err != nil {
		h.fail(w, r, "Invalid date", err)
		return
	}

	due, err := d.HasDoseOnDate(day.Time)
	if err != nil {
		h.fail(w, r, "Cannot evaluate schedule", err)
		return
	}

	writeJSON(w, http.StatusOK, DueDTO{
		DrugID: string(d.ID),
		Date:   day.String(),
		Due:    due,
	})
}

// GetSupply returns the supply projection of a drug.
func (h *Handler) GetSupply(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadDrug(w, r)
	if !ok {
		return
	}

	report := d.Supply(h.LowSupplyDays)
	dto := SupplyDTO{
		DrugID:           string(d.ID),
		Tracked:          report.Tracked,
		CurrentSupply:    d.CurrentSupply().Text(h.MixedNumbers),
		DailyDose:        report.DailyDose.Text(h.MixedNumbers),
		CorrectionFactor: report.CorrectionFactor,
		DailyConsumption: report.DailyConsumption.Value.String(),
		Depletes:         report.Depletes,
		Low:              report.Low,
		LowSupplyDays:    h.LowSupplyDays,
	}
	if report.Depletes {
		dto.DaysOfSupply = report.DaysOfSupply.Value.String()
	}

	writeJSON(w, http.StatusOK, dto)
}

// GetSchedule lists the active drugs with a dose due on the requested date.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	day, err := h.dateParam(r)
	if err != nil {
		h.fail(w, r, "Invalid date", err)
		return
	}

	drugs, err := h.Store.List(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list drugs", err)
		return
	}

	due, err := drug.DueOn(drugs, day.Time)
	if err != nil {
		h.fail(w, r, "Cannot evaluate schedule", err)
		return
	}

	resp := ScheduleResponse{
		Date:  day.String(),
		Drugs: make([]ScheduledDrugDTO, len(due)),
	}
	for i, d := range due {
		resp.Drugs[i] = ScheduledDrugDTO{
			ID:        string(d.ID),
			Name:      d.Name(),
			Form:      d.Form().String(),
			Doses:     h.toDosesDTO(d.Schedule()),
			DailyDose: d.DailyDose().Text(h.MixedNumbers),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// IMPORT
// =============================================================================

// Import stores raw records as-is. Codes and ranges are not checked, so legacy
// data with unknown recurrence kinds survives and fails only when evaluated.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	drugs := make([]*drug.Drug, len(req.Drugs))
	for i, rec := range req.Drugs {
		d, err := fromImportDTO(rec)
		if err != nil {
			h.fail(w, r, "Invalid record "+strconv.Itoa(i), err)
			return
		}
		drugs[i] = d
	}

	resp := ImportResponse{IDs: make([]string, 0, len(drugs))}
	for _, d := range drugs {
		if err := h.Store.Save(r.Context(), d); err != nil {
			h.fail(w, r, "Failed to save drug", err)
			return
		}
		if err := d.Validate(); err != nil {
			h.Logger.Warn().Err(err).Str("drug_id", string(d.ID)).Msg("imported drug is not valid")
		}
		resp.IDs = append(resp.IDs, string(d.ID))
	}
	resp.Imported = len(resp.IDs)

	h.Logger.Info().Int("count", resp.Imported).Msg("drugs imported")
	writeJSON(w, http.StatusOK, resp)
}

func fromImportDTO(rec ImportRecordDTO) (*drug.Drug, error) {
	origin, err := parseOrigin(rec.RecurrenceOrigin)
	if err != nil {
		return nil, err
	}

	r := drug.Record{
		ID:               drug.DrugID(rec.ID),
		Name:             rec.Name,
		Form:             drug.Form(rec.Form),
		Active:           rec.Active,
		RefillSize:       rec.RefillSize,
		RecurrenceKind:   drug.RecurrenceKind(rec.RecurrenceKind),
		RecurrenceArg:    rec.RecurrenceArg,
		RecurrenceOrigin: origin,
		Comment:          rec.Comment,
	}
	if r.ID == "" {
		r.ID = drug.DrugID(uuid.NewString())
	}

	if r.CurrentSupply, err = parseFraction("current_supply", rec.CurrentSupply); err != nil {
		return nil, err
	}
	for _, slot := range drug.DoseTimes {
		if r.Doses[slot], err = parseFraction(slot.String(), rec.Doses[slot]); err != nil {
			return nil, err
		}
	}

	return drug.Import(r), nil
}

// =============================================================================
// FRACTIONS
// =============================================================================

// ParseFraction parses fraction text and returns it in every output form.
func (h *Handler) ParseFraction(w http.ResponseWriter, r *http.Request) {
	var req ParseFractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	f, err := fraction.Parse(req.Text)
	if err != nil {
		h.fail(w, r, "Invalid fraction", err)
		return
	}

	writeJSON(w, http.StatusOK, FractionDTO{
		Numerator:   f.Num(),
		Denominator: f.Den(),
		Simple:      f.Text(false),
		Mixed:       f.Text(true),
		Decimal:     f.Decimal().String(),
		Float:       f.Float64(),
	})
}

// =============================================================================
// REQUEST DECODING
// =============================================================================

// applyRequest runs every field of req through the validating setters of d.
func applyRequest(d *drug.Drug, req DrugRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return generic.InvalidArgument("name", req.Name, "name required")
	}
	d.SetName(req.Name)
	d.SetComment(req.Comment)
	if req.Active != nil {
		d.SetActive(*req.Active)
	}

	if req.Form != "" {
		form, ok := drug.ParseForm(req.Form)
		if !ok {
			return generic.InvalidArgument("form", req.Form, "unknown form")
		}
		if err := d.SetForm(form); err != nil {
			return err
		}
	}

	if err := d.SetRefillSize(req.RefillSize); err != nil {
		return err
	}
	supply, err := parseFraction("current_supply", req.CurrentSupply)
	if err != nil {
		return err
	}
	if err := d.SetCurrentSupply(&supply); err != nil {
		return err
	}

	doses := [...]string{req.Doses.Morning, req.Doses.Noon, req.Doses.Evening, req.Doses.Night}
	for _, slot := range drug.DoseTimes {
		f, err := parseFraction(slot.String(), doses[slot])
		if err != nil {
			return err
		}
		if err := d.SetDose(slot, f); err != nil {
			return err
		}
	}

	return applyRecurrence(d, req.Recurrence)
}

func applyRecurrence(d *drug.Drug, rec RecurrenceDTO) error {
	if rec.Kind == "" {
		return d.SetRecurrence(drug.Daily{})
	}

	kind, ok := drug.ParseRecurrenceKind(rec.Kind)
	if !ok {
		return generic.InvalidArgument("recurrence.kind", rec.Kind, "unknown recurrence kind")
	}
	origin, err := parseOrigin(rec.Origin)
	if err != nil {
		return err
	}

	switch kind {
	case drug.KindEveryNDays:
		r, err := drug.NewEveryNDays(rec.Arg, origin)
		if err != nil {
			return err
		}
		return d.SetRecurrence(r)

	case drug.KindWeekdays:
		mask := drug.WeekdayMask(rec.Arg)
		if len(rec.Weekdays) > 0 {
			if mask, err = parseWeekdays(rec.Weekdays); err != nil {
				return err
			}
		}
		r, err := drug.NewWeekdays(mask)
		if err != nil {
			return err
		}
		return d.SetRecurrence(r)

	case drug.KindEveryNHours:
		if err := d.SetRecurrenceKind(kind); err != nil {
			return err
		}
		if err := d.SetRecurrenceArg(rec.Arg); err != nil {
			return err
		}
		if origin.IsZero() {
			return nil
		}
		return d.SetRecurrenceOrigin(origin)
	}

	return d.SetRecurrence(drug.Daily{})
}

// parseFraction treats empty text as zero.
func parseFraction(field, text string) (fraction.Fraction, error) {
	if strings.TrimSpace(text) == "" {
		return fraction.Zero, nil
	}
	f, err := fraction.Parse(text)
	if err != nil {
		return fraction.Zero, generic.InvalidArgument(field, text, err.Error())
	}
	return f, nil
}

// parseOrigin accepts a YYYY-MM-DD date or an RFC3339 timestamp.
func parseOrigin(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if tp, err := generic.ParseDate(s); err == nil {
		return tp.Time, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, generic.InvalidArgument("recurrence.origin", s, "expected YYYY-MM-DD or RFC3339")
	}
	return t, nil
}

func parseWeekdays(names []string) (drug.WeekdayMask, error) {
	var mask drug.WeekdayMask
	for _, name := range names {
		found := false
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			if strings.EqualFold(name, wd.String()) {
				mask |= drug.MaskOf(wd)
				found = true
				break
			}
		}
		if !found {
			return 0, generic.InvalidArgument("recurrence.weekdays", name, "unknown weekday")
		}
	}
	return mask, nil
}

func (h *Handler) dateParam(r *http.Request) (generic.TimePoint, error) {
	s := r.URL.Query().Get("date")
	if s == "" {
		return generic.DateOf(h.now()), nil
	}
	tp, err := generic.ParseDate(s)
	if err != nil {
		return generic.TimePoint{}, generic.InvalidArgument("date", s, "expected YYYY-MM-DD")
	}
	return tp, nil
}

func (h *Handler) loadDrug(w http.ResponseWriter, r *http.Request) (*drug.Drug, bool) {
	id := drug.DrugID(chi.URLParam(r, "id"))
	d, err := h.Store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Drug not found", err)
		return nil, false
	}
	return d, true
}

// =============================================================================
// RESPONSE ENCODING
// =============================================================================

func (h *Handler) toDrugDTO(d *drug.Drug) DrugDTO {
	rec := RecurrenceDTO{
		Kind: d.RecurrenceKind().String(),
		Arg:  d.RecurrenceArg(),
	}
	if origin := d.RecurrenceOrigin(); !origin.IsZero() {
		if generic.IsMidnight(origin) {
			rec.Origin = origin.Format(generic.DateLayout)
		} else {
			rec.Origin = origin.Format(time.RFC3339)
		}
	}
	if d.RecurrenceKind() == drug.KindWeekdays {
		for _, wd := range drug.WeekdayMask(d.RecurrenceArg()).Days() {
			rec.Weekdays = append(rec.Weekdays, strings.ToLower(wd.String()))
		}
	}

	return DrugDTO{
		ID:               string(d.ID),
		Name:             d.Name(),
		Form:             d.Form().String(),
		Active:           d.Active(),
		RefillSize:       d.RefillSize(),
		CurrentSupply:    d.CurrentSupply().Text(h.MixedNumbers),
		Doses:            h.toDosesDTO(d.Schedule()),
		DailyDose:        d.DailyDose().Text(h.MixedNumbers),
		Recurrence:       rec,
		CorrectionFactor: d.SupplyCorrectionFactor(),
		Comment:          d.Comment(),
		Hash:             strconv.FormatUint(d.Hash(), 16),
	}
}

func (h *Handler) toDosesDTO(doses [4]fraction.Fraction) DosesDTO {
	return DosesDTO{
		Morning: doses[drug.Morning].Text(h.MixedNumbers),
		Noon:    doses[drug.Noon].Text(h.MixedNumbers),
		Evening: doses[drug.Evening].Text(h.MixedNumbers),
		Night:   doses[drug.Night].Text(h.MixedNumbers),
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// fail maps err to a status, logs server-side failures and writes the error.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error().Err(err).Str("path", r.URL.Path).Msg(message)
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case generic.IsClientError(err):
		return http.StatusBadRequest
	case generic.IsStateError(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
