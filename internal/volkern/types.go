package volkern

// Service is a bookable service as stored in the Volkern CRM. Field names
// follow the CRM wire format.
type Service struct {
	ID                 string  `json:"id"`
	TenantID           string  `json:"tenantId"`
	Nombre             string  `json:"nombre"`
	Descripcion        string  `json:"descripcion"`
	DuracionMinutos    int     `json:"duracionMinutos"`
	Precio             float64 `json:"precio"`
	Moneda             string  `json:"moneda"`
	Modalidad          string  `json:"modalidad"` // presencial | virtual | hibrido
	Activo             bool    `json:"activo"`
	FechaCreacion      string  `json:"fechaCreacion"`
	FechaActualizacion string  `json:"fechaActualizacion"`
}

// WorkingRange is one open interval of the tenant's working day.
type WorkingRange struct {
	Inicio string `json:"inicio"`
	Fin    string `json:"fin"`
}

// WorkingHours describes the tenant's working day for a given date.
type WorkingHours struct {
	Rangos  []WorkingRange `json:"rangos"`
	Resumen string         `json:"resumen"`
}

// AvailableSlots lists the free slot instants for a date. Each slot is a
// floating ISO timestamp anchored to the tenant's business timezone.
type AvailableSlots struct {
	Total int      `json:"total"`
	Slots []string `json:"slots"`
}

// OccupiedSlot is a taken slot together with the conflicting appointment.
type OccupiedSlot struct {
	Hora string `json:"hora"`
	Cita struct {
		ID     string `json:"id"`
		Titulo string `json:"titulo"`
	} `json:"cita"`
}

// OccupiedSlots lists the taken slots for a date.
type OccupiedSlots struct {
	Total int            `json:"total"`
	Slots []OccupiedSlot `json:"slots"`
}

// AvailabilityResponse is the CRM's availability answer for one calendar
// date. Available and occupied slot sets are disjoint, and
// Disponibles.Total matches len(Disponibles.Slots).
type AvailabilityResponse struct {
	Fecha          string         `json:"fecha"`
	Dia            string         `json:"dia"`
	DiaActivo      bool           `json:"diaActivo"`
	HorarioLaboral WorkingHours   `json:"horarioLaboral"`
	Disponibles    AvailableSlots `json:"disponibles"`
	Ocupados       OccupiedSlots  `json:"ocupados"`
}

// Lead is a CRM contact. Email is the deduplication key; ID is empty until
// the CRM has created the record.
type Lead struct {
	ID       string `json:"id,omitempty"`
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Telefono string `json:"telefono,omitempty"`
	Empresa  string `json:"empresa,omitempty"`
	Canal    string `json:"canal,omitempty"`
	Estado   string `json:"estado,omitempty"`
	Notas    string `json:"notas,omitempty"`
}

// Appointment is a CRM appointment. FechaHora carries the slot value
// obtained from an availability lookup, unmodified.
type Appointment struct {
	ID          string `json:"id,omitempty"`
	LeadID      string `json:"leadId"`
	FechaHora   string `json:"fechaHora"`
	Tipo        string `json:"tipo"` // reunion | servicio | llamada | otro
	Titulo      string `json:"titulo"`
	Descripcion string `json:"descripcion,omitempty"`
	Duracion    int    `json:"duracion"`
	ServicioID  string `json:"servicioId,omitempty"`
	Estado      string `json:"estado,omitempty"`
}
