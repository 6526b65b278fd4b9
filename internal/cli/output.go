package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	shape "github.com/SimonDaKappa/go-shape"
)

// Output formats CLI results. Records go to w, messages and metrics to
// errW.
type Output struct {
	jsonMode bool
	w        io.Writer
	errW     io.Writer
}

// NewOutput creates an Output on stdout/stderr. With jsonMode set, records
// are printed as indented JSON instead of tables.
func NewOutput(jsonMode bool) *Output {
	return &Output{
		jsonMode: jsonMode,
		w:        os.Stdout,
		errW:     os.Stderr,
	}
}

func newOutputTo(jsonMode bool, w, errW io.Writer) *Output {
	return &Output{jsonMode: jsonMode, w: w, errW: errW}
}

// Print prints a table or JSON depending on the mode.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) {
	if o.jsonMode {
		o.JSON(jsonData)
		return
	}
	o.Table(headers, rows)
}

// Table prints rows aligned with tabwriter.
func (o *Output) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	tw.Flush()
}

// JSON prints v as indented JSON.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		o.Error(err.Error())
	}
}

// Record prints one parsed record as a FIELD/VALUE table.
func (o *Output) Record(rec any) {
	o.Print([]string{"FIELD", "VALUE"}, recordRows(rec), rec)
}

// Records prints a list of records, one table each.
func (o *Output) Records(recs any) {
	if o.jsonMode {
		o.JSON(recs)
		return
	}
	rv := reflect.ValueOf(recs)
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			fmt.Fprintln(o.w)
		}
		fmt.Fprintf(o.w, "[%d]\n", i)
		o.Table([]string{"FIELD", "VALUE"}, recordRows(rv.Index(i).Interface()))
	}
}

// Keyed prints a map of records in key order.
func (o *Output) Keyed(recs any) {
	if o.jsonMode {
		o.JSON(recs)
		return
	}
	rv := reflect.ValueOf(recs)
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	slices.Sort(keys)

	for i, k := range keys {
		if i > 0 {
			fmt.Fprintln(o.w)
		}
		fmt.Fprintf(o.w, "[%s]\n", k)
		o.Table([]string{"FIELD", "VALUE"}, recordRows(rv.MapIndex(reflect.ValueOf(k)).Interface()))
	}
}

// Dump prints the Go representation of v.
func (o *Output) Dump(v any) {
	cfg := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
	cfg.Fdump(o.w, v)
}

// Metrics writes every metric family gathered from g in the Prometheus
// text format.
func (o *Output) Metrics(g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(o.errW, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

// Success prints a message to stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.errW, msg)
}

// Error prints an error message to stderr.
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.errW, "Error: "+msg)
}

var rawType = reflect.TypeOf(shape.Raw{})

// recordRows lists the exported fields of a record struct.
func recordRows(rec any) [][]string {
	rv := reflect.ValueOf(rec)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return [][]string{{"value", formatField(rv)}}
	}

	rows := make([][]string, 0, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		sf := rv.Type().Field(i)
		if !sf.IsExported() || sf.Type == rawType {
			continue
		}
		rows = append(rows, []string{sf.Name, formatField(rv.Field(i))})
	}
	return rows
}

// formatField renders a field on one line. Nested records and collections
// are shown as compact JSON.
func formatField(fv reflect.Value) string {
	if !fv.IsValid() {
		return ""
	}
	switch v := fv.Interface().(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case *time.Time:
		if v == nil {
			return "-"
		}
		return v.Format(time.RFC3339)
	case shape.Value:
		if v.IsNull() {
			return "-"
		}
		return v.String()
	case fmt.Stringer:
		return v.String()
	}

	switch fv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map:
		if fv.IsNil() {
			return "-"
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(fv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(fv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(fv.Float(), 'g', -1, 64)
	}

	out, err := json.Marshal(fv.Interface())
	if err != nil {
		return fmt.Sprintf("%v", fv.Interface())
	}
	return string(out)
}
