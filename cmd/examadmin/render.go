package main

import (
	"context"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"examreg/internal/examinee/models"
	lookup "examreg/internal/lookup/models"
	lookupservice "examreg/internal/lookup/service"
	"examreg/internal/reconcile"
)

func renderSummary(out io.Writer, s models.Summary) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Metric", "Count"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	rows := []struct {
		metric string
		count  int
	}{
		{"Applications", s.Applications},
		{"Examinees", s.Total},
		{"Attending", s.Participating},
		{"Fee confirmed", s.FeeConfirmed},
		{"Registered yesterday", s.CreatedYesterday},
		{"Refund requested", s.RefundRequested},
		{"Refund confirmed", s.RefundConfirmed},
	}
	for _, row := range rows {
		table.Append([]string{row.metric, strconv.Itoa(row.count)})
	}
	table.Render()
}

func renderRecords(ctx context.Context, out io.Writer, catalog *lookupservice.Catalog, rows []models.AdminRow) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Reg No", "Church", "Type", "Name", "Mobile", "Participation", "Fee", "Refund", "Exam No"})
	for _, r := range rows {
		table.Append([]string{
			itoa(r.RegistrationNo),
			r.ChurchName,
			label(ctx, catalog, lookup.TypeExamineeType, r.ExamineeType),
			r.Name,
			models.FormatMobile(r.Mobile),
			label(ctx, catalog, lookup.TypeParticipation, r.ParticipationStatus),
			label(ctx, catalog, lookup.TypeConfirmation, r.FeeConfirmed),
			label(ctx, catalog, lookup.TypeRefundRequest, r.RefundRequest),
			r.RegisteredExamNumber,
		})
	}
	table.Render()
}

func renderResults(out io.Writer, results []reconcile.Result) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"#", "Record", "Status", "Error"})
	red := color.New(color.FgRed).SprintFunc()
	for i, r := range results {
		status := r.Status
		if status == reconcile.StatusRejected {
			status = red(status)
		}
		table.Append([]string{strconv.Itoa(i + 1), r.ID, status, r.Error})
	}
	table.Render()
}
