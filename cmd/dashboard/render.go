package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bizzyglass/bizzyglass-backend/internal/dashboard"
	"github.com/bizzyglass/bizzyglass-backend/internal/leads"
)

type dashboardView interface {
	Stats() leads.Stats
	FollowUps() leads.FollowUps
	View(filter leads.Filter) []leads.LeadDTO
}

func printDashboard(w io.Writer, view dashboardView, filter leads.Filter, source dashboard.Source) {
	if source == dashboard.SourceDemo {
		fmt.Fprintln(w, "API unreachable, showing demo leads")
	}

	s := view.Stats()
	fmt.Fprintf(w, "total %d  new %d  quoted %d  paid %d  completed %d  cancelled %d\n",
		s.Total, s.New, s.Quoted, s.Paid, s.Completed, s.Cancelled)
	fmt.Fprintf(w, "this week %d  urgent %d  conversion %d%%  pipeline $%d\n\n",
		s.ThisWeek, s.Urgent, s.ConversionRate, s.RevenuePipeline)

	f := view.FollowUps()
	printBucket(w, "Urgent", f.Urgent)
	printBucket(w, "Overdue quotes", f.Overdue)
	printBucket(w, "Recent payments", f.RecentPayments)

	rows := view.View(filter)
	if len(rows) == 0 {
		fmt.Fprintln(w, "no leads match")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tVEHICLE\tURGENCY\tSTATUS\tMSGS\tCREATED")
	for _, lead := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			lead.ID, lead.FullName(), strings.TrimSpace(lead.Year+" "+lead.Vehicle()),
			lead.Urgency, lead.Status, len(lead.Messages), lead.CreatedAt.Local().Format("Jan 02 15:04"))
	}
	_ = tw.Flush()
}

func printBucket(w io.Writer, title string, rows []leads.LeadDTO) {
	if len(rows) == 0 {
		return
	}
	ids := make([]string, 0, len(rows))
	for _, lead := range rows {
		ids = append(ids, lead.ID+" "+lead.FullName())
	}
	fmt.Fprintf(w, "%s: %s\n", title, strings.Join(ids, ", "))
}

func printNewMessages(w io.Writer, lead leads.LeadDTO, added int) {
	fmt.Fprintf(w, "%s has %d new message(s)\n", lead.ID, added)
	start := len(lead.Messages) - added
	if start < 0 {
		start = 0
	}
	for _, msg := range lead.Messages[start:] {
		fmt.Fprintf(w, "  [%s] %s: %s\n", msg.Timestamp.Local().Format(time.Kitchen), msg.Sender, msg.Message)
	}
}

func printUpdateNotice(w io.Writer, leadID string, added int) {
	fmt.Fprintf(w, "%s has %d new message(s), rerun with -pull to load them\n", leadID, added)
}
