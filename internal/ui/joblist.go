// Package ui renders the HTML pages served by the job server.
package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"
)

// JobListItem is the view model for one row of the job list.
type JobListItem struct {
	ID        string
	State     string
	Pattern   string
	Width     int
	Height    int
	Radius    int
	Spacing   int
	Dots      int
	Coverage  float64
	StartTime time.Time
	EndTime   *time.Time
	Error     string
}

// Elapsed returns the job's run time, up to now for unfinished jobs.
func (item JobListItem) Elapsed() time.Duration {
	end := time.Now()
	if item.EndTime != nil {
		end = *item.EndTime
	}
	return end.Sub(item.StartTime).Round(time.Millisecond)
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>dotgrid jobs</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
th, td { border-bottom: 1px solid #ddd; padding: 0.4rem 0.8rem; text-align: left; }
.state-failed { color: #b00; }
.state-completed { color: #070; }
img.thumb { max-width: 128px; image-rendering: pixelated; }
</style>
</head>
<body>
<h1>Pattern jobs</h1>
`

const pageFoot = `</body>
</html>
`

// JobList renders the job overview page.
func JobList(items []JobListItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}
		if len(items) == 0 {
			if _, err := io.WriteString(w, "<p>No jobs yet.</p>\n"); err != nil {
				return err
			}
			_, err := io.WriteString(w, pageFoot)
			return err
		}

		if _, err := io.WriteString(w, "<table>\n<tr><th>Preview</th><th>Job</th><th>State</th><th>Pattern</th><th>Size</th><th>Radius</th><th>Spacing</th><th>Dots</th><th>Coverage</th><th>Elapsed</th></tr>\n"); err != nil {
			return err
		}
		for _, item := range items {
			if err := jobRow(item).Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</table>\n"); err != nil {
			return err
		}
		_, err := io.WriteString(w, pageFoot)
		return err
	})
}

func jobRow(item JobListItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		id := templ.EscapeString(item.ID)
		state := templ.EscapeString(item.State)

		preview := ""
		if item.State == "completed" {
			preview = fmt.Sprintf(`<a href="/api/v1/jobs/%s/image.png"><img class="thumb" src="/api/v1/jobs/%s/thumb.png" alt="preview"></a>`, id, id)
		}
		stateCell := state
		if item.Error != "" {
			stateCell = fmt.Sprintf(`%s: %s`, state, templ.EscapeString(item.Error))
		}

		_, err := fmt.Fprintf(w,
			"<tr><td>%s</td><td><a href=\"/api/v1/jobs/%s\">%s</a></td><td class=\"state-%s\">%s</td><td>%s</td><td>%dx%d</td><td>%d</td><td>%d</td><td>%d</td><td>%.2f%%</td><td>%s</td></tr>\n",
			preview, id, id, state, stateCell,
			templ.EscapeString(item.Pattern),
			item.Width, item.Height, item.Radius, item.Spacing, item.Dots,
			item.Coverage*100, item.Elapsed(),
		)
		return err
	})
}
