package volkern

import "encoding/json"

// The CRM is inconsistent about envelope shapes: list endpoints sometimes
// return a bare array and sometimes wrap it in a named field, and a create
// may return the entity directly or nested. Each ambiguous payload is
// classified into an explicit shape before use instead of being duck-typed
// at the call site.

// listShape classifies a list payload.
type listShape int

const (
	shapeDirect listShape = iota
	shapeWrapped
	shapeUnrecognized
)

// classifyServiceList decodes a /servicios payload into a service list,
// reporting which envelope shape was found.
func classifyServiceList(raw []byte) (listShape, []Service) {
	var direct []Service
	if err := json.Unmarshal(raw, &direct); err == nil {
		return shapeDirect, direct
	}

	var wrapped struct {
		Services []Service `json:"services"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Services != nil {
		return shapeWrapped, wrapped.Services
	}

	return shapeUnrecognized, nil
}

// classifyLeadList decodes a /leads search payload. An unrecognized shape
// yields an empty candidate set rather than an error: a miss and a garbled
// search response both mean "no usable match".
func classifyLeadList(raw []byte) (listShape, []Lead) {
	var direct []Lead
	if err := json.Unmarshal(raw, &direct); err == nil {
		return shapeDirect, direct
	}

	var wrapped struct {
		Leads []Lead `json:"leads"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Leads != nil {
		return shapeWrapped, wrapped.Leads
	}

	return shapeUnrecognized, nil
}

// decodeCreatedLead unwraps a lead-create response, which may be the entity
// itself or nested under "lead". Returns nil when neither shape carries an id.
func decodeCreatedLead(raw []byte) *Lead {
	var direct Lead
	if err := json.Unmarshal(raw, &direct); err == nil && direct.ID != "" {
		return &direct
	}

	var wrapped struct {
		Lead *Lead `json:"lead"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Lead != nil && wrapped.Lead.ID != "" {
		return wrapped.Lead
	}

	return nil
}

// decodeCreatedAppointment unwraps an appointment-create response, direct
// or nested under "cita".
func decodeCreatedAppointment(raw []byte) *Appointment {
	var direct Appointment
	if err := json.Unmarshal(raw, &direct); err == nil && direct.ID != "" {
		return &direct
	}

	var wrapped struct {
		Cita *Appointment `json:"cita"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Cita != nil && wrapped.Cita.ID != "" {
		return wrapped.Cita
	}

	return nil
}
