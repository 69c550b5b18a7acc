package domain

import (
	"strings"
	"time"
)

// Locatable is implemented by every record with a derivable position.
type Locatable interface {
	Location() (Point, bool)
}

// Incident is a located event that contributes a severity to the risk score.
type Incident interface {
	Locatable
	SeverityWeight() int
}

// School is an educational center, the anchor being risk-scored.
type School struct {
	Code            int     `json:"centro_codigo"`
	Name            string  `json:"centro_nombre"`
	Address         string  `json:"direccion"`
	PostalCode      *int    `json:"direccion_codigo_postal"`
	DistrictName    string  `json:"distrito_nombre"`
	DistrictCode    *int    `json:"distrito_codigo"`
	TypeDescription string  `json:"centro_tipo_descripcion"`
	TypeCode        *int    `json:"centro_tipo_codigo"`
	Ownership       *string `json:"centro_titularidad"`
	Email           *string `json:"contacto_email1"`
	Phone           *int64  `json:"contacto_telefono1"`
	Website         *string `json:"contacto_web"`
	Geometry        string  `json:"wktGeometry"`
}

func (s School) Location() (Point, bool) { return ParseWKT(s.Geometry) }

// IsPublic reports whether the center type describes a public school.
func (s School) IsPublic() bool {
	return strings.Contains(strings.ToLower(s.TypeDescription), "público")
}

// IsPrivate reports whether the center type describes a private school.
func (s School) IsPrivate() bool {
	return strings.Contains(strings.ToLower(s.TypeDescription), "privado")
}

// Accident is a traffic accident record.
type Accident struct {
	CaseNumber         string  `json:"num_expediente"`
	Geometry           string  `json:"wktGeometry"`
	Injury             string  `json:"lesividad"`
	Severity           int     `json:"nivel_lesividad"` // 0 when absent
	District           string  `json:"distrito"`
	Date               string  `json:"fecha"`
	Time               string  `json:"hora"`
	Description        string  `json:"localizacion"`
	DistrictCode       *int    `json:"cod_distrito"`
	Weather            *string `json:"estado_meteorológico"`
	PedestrianInvolved *bool   `json:"peaton_involucrado"`
	AlcoholPositive    *bool   `json:"positiva_alcohol"`
	DrugPositive       *bool   `json:"positiva_droga"`
	AccidentType       *string `json:"tipo_accidente"`
	Vehicles           *string `json:"vehiculos_involucrados"`
}

func (a Accident) Location() (Point, bool) { return ParseWKT(a.Geometry) }

// SeverityWeight returns the injury level used for scoring, defaulting to
// DefaultSeverity when the level is missing.
func (a Accident) SeverityWeight() int {
	if a.Severity <= 0 {
		return DefaultSeverity
	}
	return a.Severity
}

// Radar is a fixed speed camera.
type Radar struct {
	Number     int     `json:"numero_radar"`
	Place      string  `json:"ubicacion"`
	Geometry   string  `json:"wktGeometry"`
	SpeedLimit float64 `json:"velocidad_limite"`
	Kind       string  `json:"tipo"`
}

func (r Radar) Location() (Point, bool) { return ParseWKT(r.Geometry) }

// Assessment is one ranked school as published downstream.
type Assessment struct {
	School       School     `json:"school"`
	Risk         RiskResult `json:"risk"`
	Rank         int        `json:"rank"`
	RadiusMeters float64    `json:"radius_m"`
	AssessedAt   time.Time  `json:"assessed_at"`
}
