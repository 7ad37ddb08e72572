// Package aggregating agrupa registros enriquecidos e calcula taxas de churn por grupo.
//
// A redução é associativa e comutativa: parciais calculados em shards e depois
// combinados com Merge produzem o mesmo resultado de uma única passada.
package aggregating

import (
	"math/big"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/iter"

	"github.com/vfg2006/churn-analytics/internal/domain"
)

// LabelSeparator separa os valores de uma chave composta no rótulo da linha
const LabelSeparator = " | "

// Dimension é uma chave de agrupamento categórica
type Dimension struct {
	Name  string
	Value func(domain.EnrichedRecord) string
	// Order fixa a ordem natural dos valores (dimensão ordinal)
	Order []string
	// Chronological ordena os valores de forma crescente (ex: yyyy-mm)
	Chronological bool
}

func (d Dimension) ordered() bool {
	return len(d.Order) > 0 || d.Chronological
}

// Measure é uma feature numérica opcional cuja média é calculada por grupo.
// Valores ausentes (nil) ou não finitos não entram na média.
type Measure struct {
	Name  string
	Value func(domain.EnrichedRecord) *float64
}

// Grouping descreve uma agregação: uma ou mais dimensões e uma medida opcional
type Grouping struct {
	Name          string
	Dimensions    []Dimension
	Measure       *Measure
	SortByMeasure bool
}

func (g Grouping) ordered() bool {
	for _, d := range g.Dimensions {
		if d.ordered() {
			return true
		}
	}
	return false
}

// A soma da medida é racional exata: a ordem das somas não altera a média
type bucket struct {
	key      []string
	count    int
	churned  int
	sum      big.Rat
	measured int
}

// Partial é o acumulado (ainda não finalizado) de uma agregação
type Partial struct {
	grouping Grouping
	buckets  map[string]*bucket
}

func newPartial(g Grouping) *Partial {
	return &Partial{grouping: g, buckets: make(map[string]*bucket)}
}

// Accumulate faz a redução de um conjunto de registros
func Accumulate(records []domain.EnrichedRecord, g Grouping) *Partial {
	p := newPartial(g)
	for _, r := range records {
		p.add(r)
	}
	return p
}

func (p *Partial) add(r domain.EnrichedRecord) {
	key := make([]string, len(p.grouping.Dimensions))
	for i, d := range p.grouping.Dimensions {
		key[i] = d.Value(r)
	}

	b := p.bucket(key)
	b.count++
	if r.Features.IsChurned {
		b.churned++
	}
	if p.grouping.Measure != nil {
		if v := p.grouping.Measure.Value(r); v != nil {
			var exact big.Rat
			if exact.SetFloat64(*v) != nil {
				b.sum.Add(&b.sum, &exact)
				b.measured++
			}
		}
	}
}

func (p *Partial) bucket(key []string) *bucket {
	id := strings.Join(key, "\x00")
	b, ok := p.buckets[id]
	if !ok {
		b = &bucket{key: key}
		p.buckets[id] = b
	}
	return b
}

// Merge combina parciais da mesma agregação. A ordem dos argumentos não altera o resultado.
func Merge(parts ...*Partial) *Partial {
	var merged *Partial
	for _, part := range parts {
		if part == nil {
			continue
		}
		if merged == nil {
			merged = newPartial(part.grouping)
		}
		for _, src := range part.buckets {
			dst := merged.bucket(src.key)
			dst.count += src.count
			dst.churned += src.churned
			dst.sum.Add(&dst.sum, &src.sum)
			dst.measured += src.measured
		}
	}
	if merged == nil {
		return newPartial(Grouping{})
	}
	return merged
}

// Count retorna o total de registros acumulados
func (p *Partial) Count() int {
	total := 0
	for _, b := range p.buckets {
		total += b.count
	}
	return total
}

// Rows finaliza a agregação. Um parcial sem registros retorna EmptyGroupError.
func (p *Partial) Rows() ([]domain.AggregateRow, error) {
	if len(p.buckets) == 0 {
		return nil, &domain.EmptyGroupError{Group: p.grouping.Name}
	}

	rows := make([]domain.AggregateRow, 0, len(p.buckets))
	for _, b := range p.buckets {
		label := strings.Join(b.key, LabelSeparator)
		rate, err := Rate(b.churned, b.count, p.grouping.Name+"="+label)
		if err != nil {
			return nil, err
		}

		row := domain.AggregateRow{
			Key:          append([]string{}, b.key...),
			Label:        label,
			Count:        b.count,
			Churned:      b.churned,
			ChurnRate:    rate,
			MeasureCount: b.measured,
		}
		if b.measured > 0 {
			var quotient big.Rat
			quotient.Quo(&b.sum, new(big.Rat).SetInt64(int64(b.measured)))
			mean, _ := quotient.Float64()
			row.Mean = &mean
		}
		rows = append(rows, row)
	}

	p.sort(rows)
	return rows, nil
}

func (p *Partial) sort(rows []domain.AggregateRow) {
	g := p.grouping
	if g.ordered() {
		sort.SliceStable(rows, func(i, j int) bool {
			return lessByKey(g.Dimensions, rows[i].Key, rows[j].Key)
		})
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if g.SortByMeasure && g.Measure != nil {
			switch {
			case a.Mean != nil && b.Mean == nil:
				return true
			case a.Mean == nil && b.Mean != nil:
				return false
			case a.Mean != nil && *a.Mean != *b.Mean:
				return *a.Mean > *b.Mean
			}
		} else if a.ChurnRate != b.ChurnRate {
			return a.ChurnRate > b.ChurnRate
		}
		return a.Label < b.Label
	})
}

// lessByKey compara chaves dimensão a dimensão. Dimensões ordinais usam a posição em Order
// (valores fora da lista vão para o fim); as demais comparam o texto.
func lessByKey(dims []Dimension, a, b []string) bool {
	for i, d := range dims {
		if a[i] == b[i] {
			continue
		}
		if len(d.Order) > 0 {
			ia, ib := position(d.Order, a[i]), position(d.Order, b[i])
			if ia != ib {
				return ia < ib
			}
		}
		return a[i] < b[i]
	}
	return false
}

func position(order []string, value string) int {
	for i, v := range order {
		if v == value {
			return i
		}
	}
	return len(order)
}

// GroupBy agrega em uma única passada
func GroupBy(records []domain.EnrichedRecord, g Grouping) ([]domain.AggregateRow, error) {
	return Accumulate(records, g).Rows()
}

// GroupByParallel divide os registros em shards, acumula cada um em paralelo e combina os parciais.
// O resultado é idêntico ao de GroupBy.
func GroupByParallel(records []domain.EnrichedRecord, g Grouping, shards int) ([]domain.AggregateRow, error) {
	if shards < 1 {
		shards = 1
	}

	size := (len(records) + shards - 1) / shards
	if size == 0 {
		size = 1
	}

	chunks := make([][]domain.EnrichedRecord, 0, shards)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		chunks = append(chunks, records[start:end])
	}

	mapper := iter.Mapper[[]domain.EnrichedRecord, *Partial]{MaxGoroutines: shards}
	parts := mapper.Map(chunks, func(chunk *[]domain.EnrichedRecord) *Partial {
		return Accumulate(*chunk, g)
	})

	merged := Merge(parts...)
	merged.grouping = g
	return merged.Rows()
}

// ChurnRate calcula a taxa de churn de um conjunto de registros
func ChurnRate(records []domain.EnrichedRecord) (float64, error) {
	churned := 0
	for _, r := range records {
		if r.Features.IsChurned {
			churned++
		}
	}
	return Rate(churned, len(records), "")
}

// Rate = churned / count. Grupo vazio não tem taxa definida.
func Rate(churned, count int, group string) (float64, error) {
	if count == 0 {
		return 0, &domain.EmptyGroupError{Group: group}
	}
	return float64(churned) / float64(count), nil
}
