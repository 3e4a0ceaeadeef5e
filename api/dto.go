/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the drug model from the external API contract:
  - Fractions travel as text ("1 1/2", "3/4") and are parsed on the way in
  - Codes (form, recurrence kind) travel as names, except on /api/import

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Drug:
    DrugDTO, DrugRequest, DosesDTO, RecurrenceDTO

  Schedule:
    DueDTO, ScheduleResponse, SupplyDTO

  Import:
    ImportRequest, ImportRecordDTO, ImportResponse

  Fractions:
    ParseFractionRequest, FractionDTO

VALIDATION:
  Validation is done by the drug setters, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - drug/import.go: Record, the raw shape behind ImportRecordDTO
*/
package api

// =============================================================================
// DRUGS
// =============================================================================

// DosesDTO holds the four dose slots as fraction text.
type DosesDTO struct {
	Morning string `json:"morning"`
	Noon    string `json:"noon"`
	Evening string `json:"evening"`
	Night   string `json:"night"`
}

// RecurrenceDTO describes the repeat rule.
//
// Arg is the interval for every_n_days, the weekday bit mask (Monday = 1,
// Sunday = 64) for weekdays and the hour count for every_n_hours.
type RecurrenceDTO struct {
	Kind     string   `json:"kind"`
	Arg      int64    `json:"arg,omitempty"`
	Origin   string   `json:"origin,omitempty"`
	Weekdays []string `json:"weekdays,omitempty"`
}

// DrugDTO represents a drug in API responses.
type DrugDTO struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Form             string        `json:"form"`
	Active           bool          `json:"active"`
	RefillSize       int           `json:"refill_size"`
	CurrentSupply    string        `json:"current_supply"`
	Doses            DosesDTO      `json:"doses"`
	DailyDose        string        `json:"daily_dose"`
	Recurrence       RecurrenceDTO `json:"recurrence"`
	CorrectionFactor float64       `json:"supply_correction_factor"`
	Comment          string        `json:"comment,omitempty"`
	Hash             string        `json:"hash"`
}

// DrugRequest is the body of POST /api/drugs and PUT /api/drugs/{id}.
type DrugRequest struct {
	Name          string        `json:"name"`
	Form          string        `json:"form,omitempty"`
	Active        *bool         `json:"active,omitempty"`
	RefillSize    int           `json:"refill_size"`
	CurrentSupply string        `json:"current_supply,omitempty"`
	Doses         DosesDTO      `json:"doses"`
	Recurrence    RecurrenceDTO `json:"recurrence"`
	Comment       string        `json:"comment,omitempty"`
}

// =============================================================================
// SCHEDULE
// =============================================================================

// DueDTO answers GET /api/drugs/{id}/due.
type DueDTO struct {
	DrugID string `json:"drug_id"`
	Date   string `json:"date"`
	Due    bool   `json:"due"`
}

// ScheduledDrugDTO is one drug due on the requested date.
type ScheduledDrugDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Form      string   `json:"form"`
	Doses     DosesDTO `json:"doses"`
	DailyDose string   `json:"daily_dose"`
}

// ScheduleResponse answers GET /api/schedule.
type ScheduleResponse struct {
	Date  string             `json:"date"`
	Drugs []ScheduledDrugDTO `json:"drugs"`
}

// SupplyDTO answers GET /api/drugs/{id}/supply.
type SupplyDTO struct {
	DrugID           string  `json:"drug_id"`
	Tracked          bool    `json:"tracked"`
	CurrentSupply    string  `json:"current_supply"`
	DailyDose        string  `json:"daily_dose"`
	CorrectionFactor float64 `json:"supply_correction_factor"`
	DailyConsumption string  `json:"daily_consumption"`
	DaysOfSupply     string  `json:"days_of_supply,omitempty"`
	Depletes         bool    `json:"depletes"`
	Low              bool    `json:"low"`
	LowSupplyDays    int     `json:"low_supply_days"`
}

// =============================================================================
// IMPORT
// =============================================================================

// ImportRecordDTO carries raw stored codes. Nothing is validated.
type ImportRecordDTO struct {
	ID               string    `json:"id,omitempty"`
	Name             string    `json:"name"`
	Form             int       `json:"form"`
	Active           bool      `json:"active"`
	RefillSize       int       `json:"refill_size"`
	CurrentSupply    string    `json:"current_supply"`
	Doses            [4]string `json:"doses"`
	RecurrenceKind   int       `json:"recurrence_kind"`
	RecurrenceArg    int64     `json:"recurrence_arg"`
	RecurrenceOrigin string    `json:"recurrence_origin,omitempty"`
	Comment          string    `json:"comment,omitempty"`
}

// ImportRequest is the body of POST /api/import.
type ImportRequest struct {
	Drugs []ImportRecordDTO `json:"drugs"`
}

// ImportResponse reports the ids of the imported drugs.
type ImportResponse struct {
	Imported int      `json:"imported"`
	IDs      []string `json:"ids"`
}

// =============================================================================
// FRACTIONS
// =============================================================================

// ParseFractionRequest is the body of POST /api/fractions/parse.
type ParseFractionRequest struct {
	Text string `json:"text"`
}

// FractionDTO shows a parsed fraction in every output form.
type FractionDTO struct {
	Numerator   int64   `json:"numerator"`
	Denominator int64   `json:"denominator"`
	Simple      string  `json:"simple"`
	Mixed       string  `json:"mixed"`
	Decimal     string  `json:"decimal"`
	Float       float64 `json:"float"`
}

// ErrorResponse is returned for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
