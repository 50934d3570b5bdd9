package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/slok/zonectl/internal/model"
)

// TablePrinter prints queue and zone information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintTasks prints tasks in a table format.
func (t *TablePrinter) PrintTasks(tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "ID\tOPERATION\tZONE\tPRIORITY\tSTATUS\tCREATED")

	// Print rows.
	for _, task := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			task.ID,
			task.Operation,
			orDash(task.ZoneName),
			task.Priority,
			task.Status,
			TimeAgo(task.CreatedAt),
		)
	}

	return nil
}

// PrintTask prints the full detail of a task.
func (t *TablePrinter) PrintTask(task model.Task) error {
	fmt.Fprintf(t.writer, "ID:          %s\n", task.ID)
	fmt.Fprintf(t.writer, "Operation:   %s\n", task.Operation)
	if task.ZoneName != "" {
		fmt.Fprintf(t.writer, "Zone:        %s\n", task.ZoneName)
	}
	fmt.Fprintf(t.writer, "Priority:    %s\n", task.Priority)
	fmt.Fprintf(t.writer, "Status:      %s\n", task.Status)
	if task.CreatedBy != "" {
		fmt.Fprintf(t.writer, "Created by:  %s\n", task.CreatedBy)
	}
	fmt.Fprintf(t.writer, "Created:     %s\n", FormatTimestamp(task.CreatedAt))
	fmt.Fprintf(t.writer, "Updated:     %s\n", FormatTimestamp(task.UpdatedAt))
	if task.Message != "" {
		fmt.Fprintf(t.writer, "Message:     %s\n", task.Message)
	}
	if task.Error != "" {
		fmt.Fprintf(t.writer, "Error:       %s\n", task.Error)
	}
	if task.CleanupError != "" {
		fmt.Fprintf(t.writer, "Cleanup:     %s\n", task.CleanupError)
	}
	if len(task.Metadata) > 0 && string(task.Metadata) != "null" {
		fmt.Fprintf(t.writer, "Metadata:    %s\n", task.Metadata)
	}

	return nil
}

// PrintZones prints zones in a table format.
func (t *TablePrinter) PrintZones(zones []model.Zone) error {
	if len(zones) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "NAME\tSTATUS\tBRAND\tSOURCE\tORPHANED\tLAST SEEN")

	// Print rows.
	for _, z := range zones {
		source := "managed"
		if z.AutoDiscovered {
			source = "discovered"
		}
		orphaned := "no"
		if z.IsOrphaned {
			orphaned = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			z.Name, z.Status, orDash(z.Brand), source, orphaned, TimeAgo(z.LastSeen))
	}

	return nil
}

// PrintLinks prints network interfaces with their latest observations in a
// table format.
func (t *TablePrinter) PrintLinks(links []LinkView) error {
	if len(links) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "LINK\tCLASS\tZONE\tRX\tTX\tADDRESSES\tSCANNED")

	// Print rows.
	for _, l := range links {
		rx, tx, scanned := "-", "-", "-"
		if l.Usage != nil {
			rx = FormatBytes(l.Usage.RXBytes)
			tx = FormatBytes(l.Usage.TXBytes)
			scanned = TimeAgo(l.Usage.ScanTimestamp)
		}

		addrs := "-"
		if len(l.Addresses) > 0 {
			parts := make([]string, 0, len(l.Addresses))
			for _, a := range l.Addresses {
				parts = append(parts, a.Address)
			}
			addrs = strings.Join(parts, ",")
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.Interface.Link, l.Interface.Class, orDash(l.Interface.Zone), rx, tx, addrs, scanned)
	}

	return nil
}

// PrintChecks prints preflight check results with a closing summary.
func (t *TablePrinter) PrintChecks(results []model.CheckResult) error {
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)

	// Print header.
	fmt.Fprintln(tw, "CHECK\tSTATUS\tMESSAGE")

	// Print rows.
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, strings.ToUpper(string(r.Status)), r.Message)
	}
	tw.Flush()

	ok, warnings, errs := model.CountByStatus(results)
	fmt.Fprintf(t.writer, "\n%d ok, %d warnings, %d errors\n", ok, warnings, errs)

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

// orDash replaces an empty value with a dash so the columns stay readable.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
