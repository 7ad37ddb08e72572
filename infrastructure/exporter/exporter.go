// Package exporter grava o relatório e a tabela enriquecida no diretório de saída
package exporter

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang/snappy"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/vfg2006/churn-analytics/internal/domain"
	"github.com/vfg2006/churn-analytics/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Nomes dos arquivos gerados
const (
	ReportFile      = "report.json"
	SegmentsFile    = "segments.csv"
	OutreachFile    = "outreach.csv"
	EnrichedFile    = "enriched_records.csv"
	SnappyExtension = ".sz"
)

// WriteReportJSON grava o relatório completo em JSON indentado
func WriteReportJSON(path string, report *domain.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "erro ao serializar relatório")
	}
	return writeFile(path, false, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteSegmentsCSV grava todas as linhas de todos os segmentos em um único CSV
func WriteSegmentsCSV(path string, segments []domain.Segment) error {
	return writeCSV(path, false, func(w *csv.Writer) error {
		if err := w.Write([]string{"segment", "label", "subscriptions", "churned", "churn_rate", "measure", "mean"}); err != nil {
			return err
		}
		for _, segment := range segments {
			for _, row := range segment.Rows {
				mean := ""
				if row.Mean != nil {
					mean = formatFloat(*row.Mean)
				}
				err := w.Write([]string{
					segment.Name,
					row.Label,
					strconv.Itoa(row.Count),
					strconv.Itoa(row.Churned),
					formatFloat(row.ChurnRate),
					segment.Measure,
					mean,
				})
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// WriteOutreachCSV grava a lista priorizada de contato
func WriteOutreachCSV(path string, entries []domain.OutreachEntry) error {
	return writeCSV(path, false, func(w *csv.Writer) error {
		header := []string{
			"priority", "customer_id", "subscription_id", "product_name", "country",
			"payment_category", "tenure_category", "days_until_expiry", "risk_score", "risk_category",
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for i, e := range entries {
			days := ""
			if e.DaysUntilExpiry != nil {
				days = strconv.Itoa(*e.DaysUntilExpiry)
			}
			err := w.Write([]string{
				strconv.Itoa(i + 1),
				e.CustomerID,
				e.SubscriptionID,
				e.ProductName,
				e.Country,
				e.PaymentCategory,
				e.TenureCategory,
				days,
				strconv.Itoa(e.RiskScore),
				e.RiskCategory,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteEnrichedCSV grava um registro por linha com todas as features e o score.
// Com compress, o arquivo recebe a extensão .sz (snappy framed). Retorna o caminho gravado.
func WriteEnrichedCSV(path string, records []domain.EnrichedRecord, compress bool) (string, error) {
	if compress {
		path += SnappyExtension
	}

	err := writeCSV(path, compress, func(w *csv.Writer) error {
		if err := w.Write(EnrichedColumns()); err != nil {
			return err
		}
		for _, r := range records {
			if err := w.Write(EnrichedRow(r)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func writeCSV(path string, compress bool, fn func(*csv.Writer) error) error {
	return writeFile(path, compress, func(out io.Writer) error {
		w := csv.NewWriter(out)
		if err := fn(w); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	})
}

func writeFile(path string, compress bool, fn func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "erro ao criar diretório de %s", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "erro ao criar %s", path)
	}
	defer func() {
		err = multierr.Append(err, file.Close())
	}()

	var out io.Writer = file
	if compress {
		sw := snappy.NewBufferedWriter(file)
		defer func() {
			err = multierr.Append(err, sw.Close())
		}()
		out = sw
	}

	if err := fn(out); err != nil {
		return errors.Wrapf(err, "erro ao gravar %s", path)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(utils.RoundWithFourDecimalPlace(v), 'f', -1, 64)
}
