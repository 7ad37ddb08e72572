package utils

import (
	"math"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate interpreta uma data no formato yyyy-mm-dd (UTC). Texto vazio retorna nil.
func ParseDate(dateStr string) (*time.Time, error) {
	if dateStr == "" {
		return nil, nil
	}

	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, err
	}

	return &date, nil
}

// DateOnly descarta a parte de hora, mantendo o dia em UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween retorna o número de dias de calendário entre from e to (negativo se to < from)
func DaysBetween(from, to time.Time) int {
	return int(math.Round(DateOnly(to).Sub(DateOnly(from)).Hours() / 24))
}

// FormatDate formata uma data opcional; nil vira texto vazio
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
