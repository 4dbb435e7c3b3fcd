package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// emptyCell is printed for zero values.
const emptyCell = "-"

// TableFormatter formats data as an aligned text table.
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format formats data as a table.
// Supports: Table, []T (slice of structs), a single struct, map[string]T.
// Anything else is printed as JSON.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	switch t := data.(type) {
	case *Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	case Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	}

	table, err := toTable(data, f.Wide)
	if err != nil {
		return (&JSONFormatter{}).Format(w, data)
	}
	return table.RenderWithOptions(w, f.NoHeaders)
}

// toTable converts various data types to a Table.
func toTable(data any, wide bool) (*Table, error) {
	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return &Table{}, nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return sliceToTable(v, wide)
	case reflect.Map:
		return mapToTable(v)
	case reflect.Struct:
		return structToTable(v, wide), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", v.Kind())
	}
}

// column is one displayed struct field.
type column struct {
	header string
	index  int
}

// columnsOf returns the displayed fields of struct type t.
func columnsOf(t reflect.Type, wide bool) []column {
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("table")
		if tag == "-" || (tag == "wide" && !wide) {
			continue
		}
		cols = append(cols, column{header: fieldName(field), index: i})
	}
	return cols
}

// fieldName prefers the json name, which matches the API's field names.
func fieldName(field reflect.StructField) string {
	if jsonTag := field.Tag.Get("json"); jsonTag != "" {
		name, _, _ := strings.Cut(jsonTag, ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return field.Name
}

// sliceToTable renders one row per element. Headers come from the element
// type so an empty list still prints them.
func sliceToTable(v reflect.Value, wide bool) (*Table, error) {
	elemType := v.Type().Elem()
	for elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}

	if elemType.Kind() != reflect.Struct || isStringer(elemType) {
		table := &Table{Headers: []string{"VALUE"}}
		for i := 0; i < v.Len(); i++ {
			table.AddRow(formatValue(v.Index(i)))
		}
		return table, nil
	}

	cols := columnsOf(elemType, wide)
	table := &Table{Headers: make([]string, len(cols))}
	for i, c := range cols {
		table.Headers[i] = strings.ToUpper(toSnakeCase(c.header))
	}

	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		for elem.Kind() == reflect.Ptr {
			if elem.IsNil() {
				break
			}
			elem = elem.Elem()
		}
		if elem.Kind() != reflect.Struct {
			continue
		}
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = formatValue(elem.Field(c.index))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// mapToTable converts a map to a key-value table sorted by key.
func mapToTable(v reflect.Value) (*Table, error) {
	table := &Table{Headers: []string{"KEY", "VALUE"}}

	iter := v.MapRange()
	for iter.Next() {
		table.AddRow(formatValue(iter.Key()), formatValue(iter.Value()))
	}
	sort.Slice(table.Rows, func(i, j int) bool {
		return table.Rows[i][0] < table.Rows[j][0]
	})
	return table, nil
}

// structToTable converts a single struct to a field-value table.
func structToTable(v reflect.Value, wide bool) *Table {
	table := &Table{Headers: []string{"FIELD", "VALUE"}}
	for _, c := range columnsOf(v.Type(), wide) {
		table.AddRow(c.header, formatValue(v.Field(c.index)))
	}
	return table
}

var stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

func isStringer(t reflect.Type) bool {
	return t.Implements(stringerType) || reflect.PointerTo(t).Implements(stringerType)
}

var timeType = reflect.TypeOf(time.Time{})

// formatValue formats a reflect.Value for display.
func formatValue(v reflect.Value) string {
	if !v.IsValid() {
		return emptyCell
	}

	if v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return emptyCell
		}
		if v.Kind() == reflect.Interface || v.Type().Elem() == timeType {
			return formatValue(v.Elem())
		}
	}

	if v.Type() == timeType {
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return emptyCell
		}
		return t.Format("2006-01-02 15:04")
	}
	if v.CanInterface() && v.Type().Implements(stringerType) {
		if s := v.Interface().(fmt.Stringer).String(); s != "" {
			return s
		}
		return emptyCell
	}
	if v.Kind() == reflect.Ptr {
		return formatValue(v.Elem())
	}

	switch v.Kind() {
	case reflect.String:
		if s := v.String(); s != "" {
			return s
		}
		return emptyCell
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		if v.Float() == 0 {
			return emptyCell
		}
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return emptyCell
		}
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		if v.Len() == 0 {
			return emptyCell
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	case reflect.Struct:
		if name := v.FieldByName("Name"); name.IsValid() && name.Kind() == reflect.String && name.String() != "" {
			return name.String()
		}
		b, err := json.Marshal(v.Interface())
		if err != nil {
			return fmt.Sprintf("%v", v.Interface())
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// toSnakeCase converts camelCase to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteByte('_')
		}
		result.WriteRune(r)
	}
	return result.String()
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// RenderWithOptions renders the table with options.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !noHeaders && len(t.Headers) > 0 {
		if _, err := fmt.Fprintln(tw, strings.Join(t.Headers, "\t")); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}
