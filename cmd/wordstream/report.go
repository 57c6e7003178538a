package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"pkg.jsn.cam/wordstream/internal/dispatcher"
)

// printReport writes per-file totals in input order, then a summary line
func printReport(w io.Writer, r *dispatcher.Report) error {
	for _, f := range r.Files {
		if _, err := fmt.Fprintf(w, "File name: %s\n", f.Name); err != nil {
			return err
		}
		fmt.Fprintf(w, "Total number of words = %d\n", f.Counts.Words)
		fmt.Fprintf(w, "N. of words beginning with a vowel = %d\n", f.Counts.VowelStarts)
		fmt.Fprintf(w, "N. of words ending with a consonant = %d\n", f.Counts.ConsonantEnds)
		if f.Error != "" {
			fmt.Fprintf(w, "Warning: %s\n", f.Error)
		}
		fmt.Fprintln(w)
	}

	_, err := fmt.Fprintf(w, "%s files, %s chunks in %s rounds, %s read by %d workers in %s\n",
		humanize.Comma(int64(len(r.Files))),
		humanize.Comma(int64(r.Chunks)),
		humanize.Comma(int64(r.Rounds)),
		humanize.Bytes(uint64(r.Bytes())),
		r.Workers,
		r.Duration().Round(time.Millisecond))
	return err
}

func printHistory(w io.Writer, reports []*dispatcher.Report, now time.Time) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "No runs archived")
		return
	}

	fmt.Fprintf(w, "%-36s %-14s %6s %12s %10s %s\n", "RUN ID", "STARTED", "FILES", "WORDS", "READ", "DURATION")
	for _, r := range reports {
		fmt.Fprintf(w, "%-36s %-14s %6d %12s %10s %s\n",
			r.RunID,
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			len(r.Files),
			humanize.Comma(int64(r.Total().Words)),
			humanize.Bytes(uint64(r.Bytes())),
			r.Duration().Round(time.Millisecond))
	}
}
