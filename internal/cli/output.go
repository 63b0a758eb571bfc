package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/workflow"
)

const dateLayout = "2006-01-02"

// Printer renders command results as text or JSON.
type Printer struct {
	Format string
	Out    io.Writer
}

func (p *Printer) json(v any) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Notice prints a toast line.
func (p *Printer) Notice(n workflow.Notice) error {
	if p.Format == formatJSON {
		return p.json(map[string]string{"level": string(n.Level), "message": n.Message})
	}
	_, err := fmt.Fprintln(p.Out, n.String())
	return err
}

// Jobs prints postings as a table.
func (p *Printer) Jobs(jobs []domain.Job) error {
	if p.Format == formatJSON {
		return p.json(dto.NewJobList(jobs))
	}
	if len(jobs) == 0 {
		_, err := fmt.Fprintln(p.Out, "No jobs found.")
		return err
	}
	tw := tabwriter.NewWriter(p.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPOSTED BY\tPOSTED")
	for _, job := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			job.ID, job.Title, job.Category, job.PostedByName, job.CreatedAt.Format(dateLayout))
	}
	return tw.Flush()
}

// Job prints one posting with what the principal may do with it.
func (p *Printer) Job(detail *workflow.JobDetail) error {
	if p.Format == formatJSON {
		return p.json(map[string]any{
			"job":            dto.NewJobResponse(&detail.Job),
			"owned":          detail.Owned,
			"accepted_by_me": detail.AcceptedByMe,
		})
	}
	job := detail.Job
	tw := tabwriter.NewWriter(p.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", job.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", job.Title)
	fmt.Fprintf(tw, "Category:\t%s\n", job.Category)
	fmt.Fprintf(tw, "Summary:\t%s\n", job.Summary)
	if job.CoverImageURL != "" {
		fmt.Fprintf(tw, "Cover:\t%s\n", job.CoverImageURL)
	}
	fmt.Fprintf(tw, "Posted by:\t%s <%s>\n", job.PostedByName, job.PosterEmail)
	fmt.Fprintf(tw, "Posted:\t%s\n", job.CreatedAt.Format(dateLayout))
	switch {
	case detail.Owned:
		fmt.Fprintf(tw, "Status:\t%s\n", "posted by you")
	case detail.AcceptedByMe:
		fmt.Fprintf(tw, "Status:\t%s\n", "accepted by you")
	}
	return tw.Flush()
}

// Acceptances prints accepted tasks with their accepted-at dates.
func (p *Printer) Acceptances(records []domain.Acceptance) error {
	if p.Format == formatJSON {
		return p.json(dto.NewAcceptanceList(records))
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(p.Out, "No accepted tasks.")
		return err
	}
	tw := tabwriter.NewWriter(p.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tJOB\tTITLE\tCATEGORY\tACCEPTED")
	for _, record := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			record.ID, record.JobID, record.Title, record.Category, record.AcceptedAt.Format(dateLayout))
	}
	return tw.Flush()
}

// Principal prints the signed-in identity.
func (p *Printer) Principal(principal *domain.Principal) error {
	if p.Format == formatJSON {
		if principal == nil {
			return p.json(nil)
		}
		return p.json(dto.NewPrincipalResponse(*principal))
	}
	if principal == nil {
		_, err := fmt.Fprintln(p.Out, "Not signed in.")
		return err
	}
	_, err := fmt.Fprintf(p.Out, "%s <%s>\n", principal.Name(), principal.Email)
	return err
}
