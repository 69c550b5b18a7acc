package graphdb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/school-risk-service/internal/domain"
)

// Kind names the dataset a query reads. It labels metrics and logs.
type Kind string

const (
	KindSchools   Kind = "schools"
	KindAccidents Kind = "accidents"
	KindRadars    Kind = "radars"
)

// DefaultOriginWKT is the Puerta del Sol, the center used when an accident
// query names no origin.
const DefaultOriginWKT = "POINT(-3.7038 40.4168)"

// Query is a SPARQL SELECT. Text is also the result cache key.
type Query struct {
	Kind Kind
	Text string
}

const prefixes = `
PREFIX schema: <https://schema.org/>
PREFIX geo: <http://www.opengis.net/ont/geosparql#>
PREFIX safeschool: <http://safeschool.linkeddata.es/ontology#>
PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>
PREFIX geof: <http://www.opengis.net/def/function/geosparql/>
PREFIX uom: <http://www.opengis.net/def/uom/OGC/1.0/>
`

const schoolsQuery = prefixes + `
SELECT ?code ?name ?address ?postalCode ?districtName ?districtCode ?typeDescription ?typeCode
       ?ownership ?email ?phone ?website ?wkt
WHERE {
  ?school a safeschool:EducationalCenter ;
          schema:identifier ?code ;
          schema:name ?name ;
          safeschool:wktGeometry ?wkt .
  OPTIONAL { ?school schema:streetAddress ?address }
  OPTIONAL { ?school schema:postalCode ?postalCode }
  OPTIONAL {
    ?school safeschool:inDistrict ?district .
    OPTIONAL { ?district schema:name ?districtName }
    OPTIONAL { ?district schema:identifier ?districtCode }
  }
  OPTIONAL { ?school schema:description ?typeDescription }
  OPTIONAL { ?school safeschool:centerTypeCode ?typeCode }
  OPTIONAL { ?school safeschool:ownershipType ?ownership }
  OPTIONAL { ?school schema:email ?email }
  OPTIONAL { ?school schema:telephone ?phone }
  OPTIONAL { ?school schema:url ?website }
}`

const accidentsQueryTemplate = prefixes + `
SELECT ?numExpediente ?wkt ?lesividad ?nivelLesividad ?distrito ?codDistrito ?startDate ?localizacion
       ?weather ?peatonInvolucrado ?positivaAlcohol ?positivaDroga ?tipoAccidente ?vehiculos
WHERE {
  ?accident a safeschool:Accident ;
            schema:identifier ?numExpediente ;
            safeschool:wktGeometry ?wkt .
  OPTIONAL { ?accident safeschool:injuryDescription ?lesividad }
  OPTIONAL { ?accident safeschool:injuryLevel ?nivelLesividad }
  OPTIONAL {
    ?accident safeschool:inDistrict ?district .
    OPTIONAL { ?district schema:name ?distrito }
    OPTIONAL { ?district schema:identifier ?codDistrito }
  }
  OPTIONAL { ?accident schema:startDate ?startDate }
  OPTIONAL { ?accident schema:description ?localizacion }
  OPTIONAL { ?accident safeschool:weatherCondition ?weather }
  OPTIONAL { ?accident safeschool:pedestrianInvolved ?peatonInvolucrado }
  OPTIONAL { ?accident safeschool:alcoholPositive ?positivaAlcohol }
  OPTIONAL { ?accident safeschool:drugPositive ?positivaDroga }
  OPTIONAL { ?accident schema:name ?tipoAccidente }
  OPTIONAL { ?accident safeschool:vehiclesInvolved ?vehiculos }
  BIND(%s AS ?radiusMeters)
  BIND("%s"^^geo:wktLiteral AS ?originPoint)
  FILTER(geof:distance(?wkt, ?originPoint, uom:metre) <= ?radiusMeters)
}`

const radarsQuery = prefixes + `
SELECT ?numero ?ubicacion ?wkt ?velocidadLimite ?tipo
WHERE {
  ?radar a safeschool:SpeedCamera ;
         schema:identifier ?numero ;
         safeschool:wktGeometry ?wkt .
  OPTIONAL { ?radar schema:description ?ubicacion }
  OPTIONAL { ?radar safeschool:speedLimit ?velocidadLimite }
  OPTIONAL { ?radar safeschool:cameraType ?tipo }
}`

// SchoolsQuery selects every educational center.
func SchoolsQuery() Query {
	return Query{Kind: KindSchools, Text: schoolsQuery}
}

// AccidentsQuery selects accidents within radius meters of originWKT.
// A non-positive radius means domain.DefaultRadiusMeters; a blank origin
// means DefaultOriginWKT.
func AccidentsQuery(radius float64, originWKT string) Query {
	radius = domain.NormalizeRadius(radius)
	origin := strings.TrimSpace(originWKT)
	if origin == "" {
		origin = DefaultOriginWKT
	}
	origin = strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(origin)

	text := fmt.Sprintf(accidentsQueryTemplate, strconv.FormatFloat(radius, 'f', -1, 64), origin)
	return Query{Kind: KindAccidents, Text: text}
}

// RadarsQuery selects every speed camera.
func RadarsQuery() Query {
	return Query{Kind: KindRadars, Text: radarsQuery}
}
