package chatcmder

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/papercomputeco/parley/pkg/chat"
	"github.com/papercomputeco/parley/pkg/cliui"
)

// renderer prints an assistant message as it streams in. Text that changes
// shape mid-stream (a graph description replacing trailing newlines) is
// printed from the point where it diverges.
type renderer struct {
	w       io.Writer
	printed string
}

func newRenderer(w io.Writer) *renderer {
	return &renderer{w: w}
}

// update prints whatever m adds over the text already shown.
func (r *renderer) update(m chat.Message) {
	if m.Error {
		return
	}

	next := m.Text
	common := commonPrefix(r.printed, next)
	if common < len(r.printed) {
		fmt.Fprintln(r.w)
	}

	if delta := next[common:]; delta != "" {
		fmt.Fprint(r.w, delta)
	}
	r.printed = next
}

// finish prints the parts of the final message that are not plain text: the
// error line or the graph summary.
func (r *renderer) finish(m chat.Message) {
	if r.printed != "" && !strings.HasSuffix(r.printed, "\n") {
		fmt.Fprintln(r.w)
	}

	switch {
	case m.Error && m.Synthetic:
		fmt.Fprintf(r.w, "  %s %s\n", cliui.FailMark, cliui.ErrorStyle.Render(m.DisplayText()))
	case m.Error:
		r.update(chat.Message{Text: m.Text})
		fmt.Fprintf(r.w, "\n  %s %s\n", cliui.FailMark, cliui.ErrorStyle.Render("reply ended with an error"))
	case m.ContentType == chat.ContentGraph:
		fmt.Fprintln(r.w, cliui.GraphStyle.Render(graphSummary(m)))
	}
}

// plotlyFigure is the subset of a plotly figure the summary reads.
type plotlyFigure struct {
	Data []struct {
		Type   string            `json:"type"`
		X      []json.RawMessage `json:"x"`
		Labels []json.RawMessage `json:"labels"`
	} `json:"data"`
	Layout struct {
		Title json.RawMessage `json:"title"`
	} `json:"layout"`
}

// graphSummary describes the graph attached to m in a few lines.
func graphSummary(m chat.Message) string {
	lines := []string{cliui.HeaderStyle.Render(m.GraphType + " graph")}

	var fig plotlyFigure
	if err := json.Unmarshal(m.GraphData, &fig); err != nil {
		lines = append(lines, cliui.DimStyle.Render(fmt.Sprintf("%d bytes of graph data", len(m.GraphData))))
		return strings.Join(lines, "\n")
	}

	if title := figureTitle(fig.Layout.Title); title != "" {
		lines = append(lines, cliui.KeyStyle.Render("title: ")+title)
	}
	for i, t := range fig.Data {
		points := max(len(t.X), len(t.Labels))
		lines = append(lines, fmt.Sprintf("%s %s, %d points",
			cliui.KeyStyle.Render(fmt.Sprintf("trace %d:", i+1)), t.Type, points))
	}

	return strings.Join(lines, "\n")
}

// figureTitle accepts both the string and the {"text": ...} title forms.
func figureTitle(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	var obj struct {
		Text string `json:"text"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Text
	}
	return ""
}

func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
