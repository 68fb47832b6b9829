package cfg

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"tubeplus/internal/models"
	"tubeplus/internal/playlist"
	"tubeplus/internal/times"
)

const dateLayout = "2006-01-02"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// printSummary writes one row per task in enqueue order.
func printSummary(w io.Writer, snaps []models.TaskSnapshot) {
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tSTATUS\tPROGRESS\tDOWNLOAD\tERROR")
	for i, s := range snaps {
		fmt.Fprintf(tw, "%d\t%s\t%.1f%%\t%s\t%s\n", i+1, s.Status.DisplayName(), s.Percent, s.Label(), s.Error)
	}
	tw.Flush()
}

func printEntries(w io.Writer, entries []playlist.Entry) {
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tTITLE\tLENGTH\tUPLOADED\tURL")
	for _, e := range entries {
		length := "-"
		if e.Duration > 0 {
			length = times.FormatClock(e.Duration)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.Index, e.Title, length, formatDate(e.UploadDate), e.URL)
	}
	tw.Flush()
}

func printHistory(w io.Writer, recs []models.HistoryRecord) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No finished downloads recorded.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "FINISHED\tSTATUS\tQUALITY\tURL\tERROR")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.FinishedAt.Local().Format(time.DateTime), r.Status.DisplayName(), r.Quality, r.URL, r.Error)
	}
	tw.Flush()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}
