package volkern

import "time"

// FallbackServices is the hardcoded service list used when the CRM cannot
// be reached or answers with an unusable payload. Availability over
// correctness: a transient CRM outage must never dead-end the booking flow
// on its first screen. The two entries mirror the tenant's real catalog.
func FallbackServices() []Service {
	now := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	return []Service{
		{
			ID:                 "cmkbrkzn30005rx089kx50b9f",
			TenantID:           "cmhmjkvra0000p99kz0pjz7k5",
			Nombre:             "Sesión de Conocimiento / Neting",
			Descripcion:        "Sesión estratégica inicial para conocer tu proyecto y determinar los próximos pasos en tu viaje de automatización.",
			DuracionMinutos:    30,
			Precio:             0,
			Moneda:             "MXN",
			Modalidad:          "virtual",
			Activo:             true,
			FechaCreacion:      now,
			FechaActualizacion: now,
		},
		{
			ID:                 "consultoria-expert",
			TenantID:           "cmhmjkvra0000p99kz0pjz7k5",
			Nombre:             "Consultoría de Automatización de Ventas",
			Descripcion:        "Análisis completo de funnel de ventas y diseño de flujos de seguimiento automáticos.",
			DuracionMinutos:    45,
			Precio:             0,
			Moneda:             "EUR",
			Modalidad:          "presencial",
			Activo:             true,
			FechaCreacion:      now,
			FechaActualizacion: now,
		},
	}
}
