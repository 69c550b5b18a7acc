package graphdb

import (
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/school-risk-service/internal/domain"
)

// MapSchools decodes rows of SchoolsQuery.
func MapSchools(rows BindingSet) []domain.School {
	out := make([]domain.School, 0, len(rows))
	for _, b := range rows {
		out = append(out, domain.School{
			Code:            intOrZero(b.number("code")),
			Name:            b.str("name"),
			Address:         b.str("address"),
			PostalCode:      toInt(b.number("postalCode")),
			DistrictName:    b.str("districtName"),
			DistrictCode:    toInt(b.number("districtCode")),
			TypeDescription: b.str("typeDescription"),
			TypeCode:        toInt(b.number("typeCode")),
			Ownership:       b.optStr("ownership"),
			Email:           b.optStr("email"),
			Phone:           toInt64(b.number("phone")),
			Website:         b.optStr("website"),
			Geometry:        b.str("wkt"),
		})
	}
	return out
}

// MapAccidents decodes rows of AccidentsQuery. startDate is split into a
// date and a zone-less time of day.
func MapAccidents(rows BindingSet) []domain.Accident {
	out := make([]domain.Accident, 0, len(rows))
	for _, b := range rows {
		date, clock := splitDateTime(b.str("startDate"))
		out = append(out, domain.Accident{
			CaseNumber:         b.str("numExpediente"),
			Geometry:           b.str("wkt"),
			Injury:             b.str("lesividad"),
			Severity:           intOrZero(b.number("nivelLesividad")),
			District:           b.str("distrito"),
			Date:               date,
			Time:               clock,
			Description:        b.str("localizacion"),
			DistrictCode:       toInt(b.number("codDistrito")),
			Weather:            b.optStr("weather"),
			PedestrianInvolved: b.boolean("peatonInvolucrado"),
			AlcoholPositive:    b.boolean("positivaAlcohol"),
			DrugPositive:       b.boolean("positivaDroga"),
			AccidentType:       b.optStr("tipoAccidente"),
			Vehicles:           b.optStr("vehiculos"),
		})
	}
	return out
}

// MapRadars decodes rows of RadarsQuery.
func MapRadars(rows BindingSet) []domain.Radar {
	out := make([]domain.Radar, 0, len(rows))
	for _, b := range rows {
		limit := 0.0
		if v := b.number("velocidadLimite"); v != nil {
			limit = *v
		}
		out = append(out, domain.Radar{
			Number:     intOrZero(b.number("numero")),
			Place:      b.str("ubicacion"),
			Geometry:   b.str("wkt"),
			SpeedLimit: limit,
			Kind:       b.str("tipo"),
		})
	}
	return out
}

func (b Binding) str(key string) string {
	return b[key]
}

func (b Binding) optStr(key string) *string {
	v, ok := b[key]
	if !ok {
		return nil
	}
	return &v
}

// number parses a bound value as a float; unbound or unparseable values are nil.
func (b Binding) number(key string) *float64 {
	v, ok := b[key]
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func (b Binding) boolean(key string) *bool {
	v, ok := b[key]
	if !ok {
		return nil
	}
	t := v == "true" || v == "1"
	return &t
}

func toInt(f *float64) *int {
	if f == nil {
		return nil
	}
	n := int(math.Round(*f))
	return &n
}

func toInt64(f *float64) *int64 {
	if f == nil {
		return nil
	}
	n := int64(math.Round(*f))
	return &n
}

func intOrZero(f *float64) int {
	if f == nil {
		return 0
	}
	return int(math.Round(*f))
}

// splitDateTime turns "2024-04-10T10:00:00+01:00" into "2024-04-10" and "10:00:00".
func splitDateTime(v string) (date, clock string) {
	if v == "" {
		return "", ""
	}
	date, rest, _ := strings.Cut(v, "T")
	if i := strings.IndexAny(rest, "+-Zz"); i >= 0 {
		rest = rest[:i]
	}
	return date, rest
}
