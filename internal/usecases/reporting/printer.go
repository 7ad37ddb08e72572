package reporting

import (
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vfg2006/churn-analytics/internal/domain"
	"github.com/vfg2006/churn-analytics/pkg/utils"
)

// Print escreve o relatório em formato de tabelas legíveis no terminal
func Print(out io.Writer, report *domain.Report) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	p := message.NewPrinter(language.English)

	s := report.Summary
	p.Fprintf(tw, "CHURN ANALYSIS (%s)\n\n", s.ProcessingDate)
	p.Fprintf(tw, "Subscriptions\t%d\n", s.TotalSubscriptions)
	p.Fprintf(tw, "Unique customers\t%d\n", s.UniqueCustomers)
	p.Fprintf(tw, "Churned\t%d\n", s.ChurnedSubscriptions)
	p.Fprintf(tw, "Active\t%d\n", s.ActiveSubscriptions)
	p.Fprintf(tw, "Churn rate\t%s\n", percent(s.ChurnRate))
	p.Fprintf(tw, "Mean / median tenure (months)\t%.2f / %.2f\n", s.MeanTenureMonths, s.MedianTenureMonths)
	p.Fprintf(tw, "Mean risk score\t%.2f\n", s.MeanRiskScore)
	p.Fprintf(tw, "High risk subscriptions\t%d\n", s.HighRiskSubscriptions)
	p.Fprintf(tw, "Expiring in 7 days\t%d\n", s.ExpiringSoon)

	for _, segment := range report.Segments {
		p.Fprintf(tw, "\n[%s]\n", segment.Name)
		if segment.Measure != "" {
			p.Fprintf(tw, "value\tcount\tchurned\tchurn rate\tmean %s\n", segment.Measure)
		} else {
			p.Fprintf(tw, "value\tcount\tchurned\tchurn rate\n")
		}
		for _, row := range segment.Rows {
			p.Fprintf(tw, "%s\t%d\t%d\t%s", row.Label, row.Count, row.Churned, percent(row.ChurnRate))
			if segment.Measure != "" {
				p.Fprintf(tw, "\t%s", optional(row.Mean))
			}
			p.Fprintf(tw, "\n")
		}
	}

	p.Fprintf(tw, "\n[cohorts]\nmonth\tsubscriptions\tchurn rate\tretention\tmean tenure\n")
	for _, c := range report.Cohorts {
		p.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", c.Month, c.Subscriptions, percent(c.ChurnRate), percent(c.RetentionRate), optional(c.MeanTenureMonths))
	}

	p.Fprintf(tw, "\n[risk distribution]\ncategory\tcount\tshare\tobserved churn\n")
	for _, b := range report.RiskDistribution {
		p.Fprintf(tw, "%s\t%d\t%s\t%s\n", b.Category, b.Count, percent(b.Share), percent(b.ChurnRate))
	}

	if len(report.Outreach) > 0 {
		p.Fprintf(tw, "\n[outreach]\nsubscription\tcustomer\tproduct\trisk\tdays to expiry\n")
		for _, e := range report.Outreach {
			p.Fprintf(tw, "%s\t%s\t%s\t%d (%s)\t%s\n", e.SubscriptionID, e.CustomerID, e.ProductName, e.RiskScore, e.RiskCategory, optionalInt(e.DaysUntilExpiry))
		}
	}

	q := report.Quality
	p.Fprintf(tw, "\n[data quality]\n")
	p.Fprintf(tw, "Rows\t%d\n", q.TotalRows)
	p.Fprintf(tw, "Field errors\t%d\n", q.FieldErrors)
	p.Fprintf(tw, "Duplicate keys (rows)\t%d (%d)\n", q.DuplicateKeys, q.DuplicateKeyRows)
	p.Fprintf(tw, "Start after expiry\t%d\n", q.InvalidDateOrder)
	p.Fprintf(tw, "Multi-version subscriptions\t%d\n", q.MultiVersionSubs)
	if q.FilteredOlderVersion > 0 {
		p.Fprintf(tw, "Older versions filtered\t%d\n", q.FilteredOlderVersion)
	}

	return tw.Flush()
}

func percent(rate float64) string {
	return message.NewPrinter(language.English).Sprintf("%.2f%%", utils.RoundWithFourDecimalPlace(rate)*100)
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return message.NewPrinter(language.English).Sprintf("%.2f", *v)
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return message.NewPrinter(language.English).Sprintf("%d", *v)
}
