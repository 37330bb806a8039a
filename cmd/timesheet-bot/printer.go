package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/username/timesheet-bot/internal/harvest"
	"github.com/username/timesheet-bot/internal/timesheet"
	"github.com/username/timesheet-bot/internal/workday"
	"github.com/username/timesheet-bot/pkg/dateutil"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	skipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	planStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// syncWriter receives all human-readable output; --tee-output mirrors it to a file
var syncWriter io.Writer = os.Stdout

func syncPrintf(format string, a ...interface{}) {
	if syncWriter == nil {
		syncWriter = os.Stdout
	}
	fmt.Fprintf(syncWriter, format, a...)
}

func syncPrintln(a ...interface{}) {
	if syncWriter == nil {
		syncWriter = os.Stdout
	}
	fmt.Fprintln(syncWriter, a...)
}

// dayLabel renders a date the way operators type it, plus the weekday
func dayLabel(d dateutil.Date, format string) string {
	return fmt.Sprintf("%s (%s)", dateutil.FormatAs(format, d), d.Weekday().String()[:3])
}

// progressPrinter narrates a streamed fill on the console
type progressPrinter struct {
	format string
}

var _ workday.Observer = (*progressPrinter)(nil)

func (p *progressPrinter) RangeStarted(start, end dateutil.Date, totalDays int) {
	if totalDays == 0 {
		syncPrintf("%s\n", planStyle.Render(fmt.Sprintf("⚠️  Start %s is after end %s, nothing to do",
			dateutil.FormatAs(p.format, start), dateutil.FormatAs(p.format, end))))
		return
	}
	syncPrintf("%s\n", headerStyle.Render(fmt.Sprintf("⏳ Processing %s .. %s (%d day(s))",
		dateutil.FormatAs(p.format, start), dateutil.FormatAs(p.format, end), totalDays)))
}

func (p *progressPrinter) DaySkipped(day workday.Day) {
	syncPrintf("%s\n", skipStyle.Render(fmt.Sprintf("   ⏭  %s skipped: %s", dayLabel(day.Date, p.format), day.ReasonText())))
}

func (p *progressPrinter) WorkdayStarted(n int, date dateutil.Date) {
	syncPrintf("\n%s\n", headerStyle.Render(fmt.Sprintf("📅 Workday %d: %s", n, dayLabel(date, p.format))))
}

func (p *progressPrinter) WorkdayFinished(int, dateutil.Date) {}

func (p *progressPrinter) Completed(workdays, skipped int) {
	syncPrintf("\nResolved %d workday(s), skipped %d day(s)\n", workdays, skipped)
}

// printDay lists the outcome of every entry of one workday
func (p *progressPrinter) printDay(day timesheet.DayResult) {
	for _, o := range day.Outcomes {
		switch o.Status {
		case timesheet.StatusSucceeded:
			syncPrintf("   %s\n", okStyle.Render(fmt.Sprintf("✅ Created %.2fh entry for %s", o.Spec.Hours, o.Spec.Label())))
		case timesheet.StatusPlanned:
			syncPrintf("   %s\n", planStyle.Render(fmt.Sprintf("📋 Would create %.2fh entry for %s", o.Spec.Hours, o.Spec.Label())))
		case timesheet.StatusFailed:
			syncPrintf("   %s\n", failStyle.Render(fmt.Sprintf("❌ %s %.2fh on %s: %v", o.Spec.Label(), o.Spec.Hours, dateutil.FormatAs(p.format, o.Date), o.Err)))
		}
	}
}

func printFillSummary(summary *timesheet.Summary, dryRun bool) {
	syncPrintln("═══════════════════════════════════════════════════════")
	if dryRun {
		syncPrintf("[DRY RUN] %d day(s), %d entries planned, %.2fh\n", summary.Days, summary.Planned, summary.Hours)
		return
	}

	syncPrintf("  Days filled:     %d\n", summary.Days)
	syncPrintf("  Entries created: %d (%.2fh)\n", summary.Created, summary.Hours)
	if summary.Failed == 0 {
		syncPrintf("%s\n", okStyle.Render("✅ Timesheet filled"))
		return
	}

	syncPrintf("%s\n", failStyle.Render(fmt.Sprintf("  Entries failed:  %d", summary.Failed)))
	for _, o := range summary.Failures() {
		syncPrintf("   • %s %s %.2fh\n", o.Date, o.Spec.Label(), o.Spec.Hours)
	}
}

func printEntries(entries []harvest.TimeEntry, from, to dateutil.Date) {
	syncPrintf("%s\n", headerStyle.Render(fmt.Sprintf("📊 Time entries %s .. %s", from, to)))
	if len(entries) == 0 {
		syncPrintln("   No time entries found")
		return
	}

	total := 0.0
	for _, e := range entries {
		syncPrintf("Date: %s, Project: %s, Task: %s, Hours: %.2f, Notes: %s\n",
			e.SpentDate, e.Project.Name, e.Task.Name, e.Hours, e.Notes)
		total += e.Hours
	}
	syncPrintf("%d entries, %.2fh total\n", len(entries), total)
}

func printDeletes(outcomes []timesheet.DeleteOutcome, dryRun bool) {
	if len(outcomes) == 0 {
		syncPrintln("   No time entries to delete")
		return
	}

	for _, o := range outcomes {
		label := fmt.Sprintf("%s %s %.2fh (id %d)", o.Entry.SpentDate, o.Entry.Label(), o.Entry.Hours, o.Entry.ID)
		switch o.Status {
		case timesheet.StatusSucceeded:
			syncPrintf("   %s\n", okStyle.Render("🗑  Deleted "+label))
		case timesheet.StatusPlanned:
			syncPrintf("   %s\n", planStyle.Render("📋 Would delete "+label))
		case timesheet.StatusFailed:
			syncPrintf("   %s\n", failStyle.Render(fmt.Sprintf("❌ Failed to delete %s: %v", label, o.Err)))
		}
	}

	if dryRun {
		syncPrintf("[DRY RUN] %d entries would be deleted\n", len(outcomes))
		return
	}
	syncPrintf("Deleted %d of %d entries\n",
		timesheet.CountDeletes(outcomes, timesheet.StatusSucceeded), len(outcomes))
}

func printProjects(pairs []harvest.ProjectTask) {
	if len(pairs) == 0 {
		syncPrintln("No recent time entries; log one entry in Harvest first to discover ids")
		return
	}

	syncPrintln(headerStyle.Render("  project_id | task_id  | Project - Task"))
	syncPrintln("-------------+----------+------------------------------")
	for _, p := range pairs {
		syncPrintf("  %10d | %8d | %s - %s\n", p.Project.ID, p.Task.ID, p.Project.Name, p.Task.Name)
	}
}
