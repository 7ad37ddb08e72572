// Package csvsource lê a exportação de assinaturas em CSV
package csvsource

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/vfg2006/churn-analytics/internal/domain"
)

const utf8BOM = "\ufeff"

// Intervalo (em linhas) entre verificações de cancelamento
const cancelCheckInterval = 1000

//go:generate mockgen -source=source.go -destination=mocks/source_mock.go -package=mocks

// RecordSource fornece a tabela bruta para o pipeline
type RecordSource interface {
	Read(ctx context.Context) (*domain.RawTable, error)
}

type Source struct {
	path string
}

func New(path string) *Source {
	return &Source{path: path}
}

func (s *Source) Path() string {
	return s.path
}

// Read abre o arquivo e devolve todas as linhas indexadas pelo nome canônico da coluna
func (s *Source) Read(ctx context.Context) (*domain.RawTable, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Wrapf(err, "erro ao abrir %s", s.path)
	}
	defer file.Close()

	table, err := Parse(ctx, file)
	if err != nil {
		return nil, errors.Wrapf(err, "erro ao ler %s", s.path)
	}
	return table, nil
}

// Parse lê um CSV com cabeçalho. Colunas desconhecidas são mantidas (e ignoradas adiante);
// linhas curtas recebem valor vazio nas colunas que faltam.
func Parse(ctx context.Context, r io.Reader) (*domain.RawTable, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("arquivo vazio: cabeçalho não encontrado")
		}
		return nil, errors.Wrap(err, "erro ao ler cabeçalho")
	}

	columns := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		columns[i] = CanonicalColumn(name)
		if _, exists := index[columns[i]]; !exists {
			index[columns[i]] = i
		}
	}

	table := &domain.RawTable{Header: columns}
	for {
		if len(table.Rows)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errors.Wrapf(err, "erro na linha %d", len(table.Rows)+2)
		}

		line, _ := reader.FieldPos(0)
		row := make(domain.RawRecord, len(index))
		for name, i := range index {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}

		table.Rows = append(table.Rows, row)
		table.Lines = append(table.Lines, line)
	}

	return table, nil
}

// CanonicalColumn converte um nome de coluna para snake_case minúsculo
func CanonicalColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Join(strings.Fields(name), "_")
	return strings.ReplaceAll(name, "-", "_")
}
