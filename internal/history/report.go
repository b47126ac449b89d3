package history

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
)

const reportTimeFormat = "2006-01-02 15:04:05 MST"

// WriteReport renders runs as a Markdown table.
func WriteReport(w io.Writer, runs []Run) error {
	md := markdown.NewMarkdown(w)
	md.H1("Crawl History")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No crawls recorded yet.")
		return md.Build()
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.StartedAt.Format(reportTimeFormat),
			r.Mode,
			"`" + strings.Join(r.Seeds, "`, `") + "`",
			strconv.Itoa(r.Pages) + "/" + strconv.Itoa(r.MaxPages),
			strconv.Itoa(r.Written),
			strconv.Itoa(r.Skipped),
			status(r),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Mode", "Seeds", "Pages", "Written", "Skipped", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
	return md.Build()
}

func status(r Run) string {
	if r.Error != "" {
		return "failed: " + strings.ReplaceAll(r.Error, "|", "/")
	}
	return "ok"
}
