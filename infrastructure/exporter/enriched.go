package exporter

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vfg2006/churn-analytics/internal/domain"
	"github.com/vfg2006/churn-analytics/pkg/utils"
)

// As colunas da tabela enriquecida seguem os nomes json dos campos, na ordem de declaração:
// registro normalizado, features e score de risco. Flags repetidas nas features
// (ex: in_grace_period) aparecem uma única vez.
type enrichedField struct {
	name  string
	part  int
	index int
}

var (
	fieldsOnce sync.Once
	fields     []enrichedField
)

func enrichedFields() []enrichedField {
	fieldsOnce.Do(func() {
		parts := []reflect.Type{
			reflect.TypeOf(domain.NormalizedRecord{}),
			reflect.TypeOf(domain.Features{}),
			reflect.TypeOf(domain.RiskScore{}),
		}
		seen := make(map[string]bool)
		for p, t := range parts {
			for i := 0; i < t.NumField(); i++ {
				name, ok := columnName(t.Field(i))
				if !ok || seen[name] {
					continue
				}
				seen[name] = true
				fields = append(fields, enrichedField{name: name, part: p, index: i})
			}
		}
	})
	return fields
}

func EnrichedColumns() []string {
	f := enrichedFields()
	names := make([]string, len(f))
	for i, field := range f {
		names[i] = field.name
	}
	return names
}

func EnrichedRow(r domain.EnrichedRecord) []string {
	parts := []reflect.Value{
		reflect.ValueOf(r.NormalizedRecord),
		reflect.ValueOf(r.Features),
		reflect.ValueOf(r.Risk),
	}

	f := enrichedFields()
	row := make([]string, len(f))
	for i, field := range f {
		row[i] = formatValue(parts[field.part].Field(field.index))
	}
	return row
}

func columnName(f reflect.StructField) (string, bool) {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return "", false
	}
	return name, true
}

// Valores ausentes viram texto vazio; datas no formato yyyy-mm-dd
func formatValue(v reflect.Value) string {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}

	if t, ok := v.Interface().(time.Time); ok {
		return utils.FormatDate(&t)
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', 4, 64)
	default:
		return ""
	}
}
