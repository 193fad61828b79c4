package templater

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/awantoch/contentkit/constants"
	"github.com/awantoch/contentkit/convert"
)

// writeASCIIJSON serializes v with the layout of Python's json.dumps defaults:
// ", " and ": " separators, every rune outside printable ASCII written as
// \uXXXX, and floats in shortest repr form with a trailing ".0" when integral.
func writeASCIIJSON(b *strings.Builder, v any, depth int) error {
	if depth > constants.MaxEvaluateDepth {
		return ErrMaxDepth
	}
	switch x := v.(type) {
	case nil:
		b.WriteString(constants.JSONNull)
	case string:
		writeASCIIString(b, x)
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case int:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case int8:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case int16:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case int32:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case uint:
		b.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint8:
		b.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint16:
		b.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint32:
		b.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint64:
		b.WriteString(strconv.FormatUint(x, 10))
	case float32:
		b.WriteString(formatFloat(float64(x), 32))
	case float64:
		b.WriteString(formatFloat(x, 64))
	case json.Number:
		b.WriteString(x.String())
	case *convert.Map:
		if x == nil {
			b.WriteString(constants.JSONNull)
			return nil
		}
		b.WriteByte('{')
		first := true
		for pair := x.Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				b.WriteString(constants.JSONItemSeparator)
			}
			first = false
			writeASCIIString(b, pair.Key)
			b.WriteString(constants.JSONKeySeparator)
			if err := writeASCIIJSON(b, pair.Value, depth+1); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				b.WriteString(constants.JSONItemSeparator)
			}
			if err := writeASCIIJSON(b, item, depth+1); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case map[string]any:
		if om, ok := orderedView(x); ok {
			return writeASCIIJSON(b, om, depth)
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(constants.JSONItemSeparator)
			}
			writeASCIIString(b, k)
			b.WriteString(constants.JSONKeySeparator)
			if err := writeASCIIJSON(b, x[k], depth+1); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	default:
		return writeReflectJSON(b, v, depth)
	}
	return nil
}

// writeReflectJSON covers typed slices, string-keyed maps and pointers. Any
// other shape (structs, marshalers) goes through encoding/json and is decoded
// back with key order intact.
func writeReflectJSON(b *strings.Builder, v any, depth int) error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			b.WriteString(constants.JSONNull)
			return nil
		}
		if _, ok := v.(json.Marshaler); !ok {
			return writeASCIIJSON(b, rv.Elem().Interface(), depth+1)
		}
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			b.WriteString(constants.JSONNull)
			return nil
		}
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return writeASCIIJSON(b, items, depth)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		if rv.IsNil() {
			b.WriteString(constants.JSONNull)
			return nil
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return writeASCIIJSON(b, m, depth)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	decoded, err := convert.Decode(data)
	if err != nil {
		return fmt.Errorf("re-decode %T: %w", v, err)
	}
	return writeASCIIJSON(b, decoded, depth+1)
}

func writeASCIIString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r >= 0x20 && r <= 0x7e:
				b.WriteRune(r)
			case r > 0xffff:
				r1, r2 := utf16.EncodeRune(r)
				fmt.Fprintf(b, `\u%04x\u%04x`, r1, r2)
			default:
				fmt.Fprintf(b, `\u%04x`, r)
			}
		}
	}
	b.WriteByte('"')
}

// formatFloat renders f the way Python's float repr does.
func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	e := strconv.FormatFloat(f, 'e', -1, bits)
	exp, _ := strconv.Atoi(e[strings.LastIndexByte(e, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return e
	}
	s := strconv.FormatFloat(f, 'f', -1, bits)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
