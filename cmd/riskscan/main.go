// Command riskscan ranks schools by nearby traffic risk using JSON exports
// of the three datasets, without a running GraphDB. The files have the same
// shape as the /api/schools, /api/accidents, and /api/radar responses.
//
// Usage:
//
//	go run ./cmd/riskscan \
//	  -schools data/schools.json \
//	  -accidents data/accidents.json \
//	  -radars data/radars.json \
//	  -radius 300 -limit 20 -severity high -format table
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/couchcryptid/school-risk-service/internal/domain"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

type options struct {
	schools, accidents, radars string
	radius                     float64
	limit                      int
	severity                   string
	types, districts           string
	format                     string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("riskscan", flag.ContinueOnError)
	fs.StringVar(&o.schools, "schools", "", "path to schools JSON export")
	fs.StringVar(&o.accidents, "accidents", "", "path to accidents JSON export")
	fs.StringVar(&o.radars, "radars", "", "path to speed cameras JSON export (optional)")
	fs.Float64Var(&o.radius, "radius", domain.DefaultRadiusMeters, "radius in meters")
	fs.IntVar(&o.limit, "limit", domain.DefaultTopN, "number of schools to print, 0 for all")
	fs.StringVar(&o.severity, "severity", "all", "accident severity filter: all, low, medium, high")
	fs.StringVar(&o.types, "type", "", "comma-separated school types: Public, Private")
	fs.StringVar(&o.districts, "district", "", "comma-separated district names")
	fs.StringVar(&o.format, "format", "table", "output format: table, json, geojson")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if o.schools == "" || o.accidents == "" {
		fs.Usage()
		return options{}, fmt.Errorf("missing required flags: -schools, -accidents")
	}
	return o, nil
}

func run(args []string, out io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	var (
		schools   []domain.School
		accidents []domain.Accident
		radars    []domain.Radar
	)
	if err := readJSON(o.schools, &schools); err != nil {
		return fmt.Errorf("reading schools: %w", err)
	}
	if err := readJSON(o.accidents, &accidents); err != nil {
		return fmt.Errorf("reading accidents: %w", err)
	}
	if o.radars != "" {
		if err := readJSON(o.radars, &radars); err != nil {
			return fmt.Errorf("reading radars: %w", err)
		}
	}

	schools = domain.FilterSchools(schools, domain.SchoolFilter{
		Types:     splitList(o.types),
		Districts: splitList(o.districts),
	})
	accidents = domain.FilterAccidents(accidents, domain.ParseSeverityFilter(o.severity))

	radius := domain.NormalizeRadius(o.radius)
	ranked := domain.Rank(domain.CorrelateAll(schools, accidents, radars, radius), o.limit)

	switch o.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ranked)
	case "geojson":
		data, err := domain.FeatureCollection(ranked).MarshalJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "table", "":
		return printTable(out, ranked, radius)
	default:
		return fmt.Errorf("unknown format %q", o.format)
	}
}

func printTable(out io.Writer, ranked []domain.Scored[domain.School], radius float64) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "RANK\tCODE\tNAME\tDISTRICT\tSCORE\tACCIDENTS\tSEVERITY\tNEAREST RADAR\n")
	for i, r := range ranked {
		nearest := "-"
		if r.NearestSensor.Known {
			nearest = fmt.Sprintf("%d m", r.NearestSensor.Meters)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\t%d\t%d\t%s\n",
			i+1, r.Anchor.Code, r.Anchor.Name, r.Anchor.DistrictName,
			r.Score, r.NearbyCount, r.TotalSeverity, nearest)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\n%d schools ranked within %g m\n", len(ranked), radius)
	return err
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
