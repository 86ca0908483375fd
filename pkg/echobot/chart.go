package echobot

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/papercomputeco/parley/pkg/chat"
)

// LibraryPlotly is the only chart library the bot renders.
const LibraryPlotly = "plotly"

const maxChartWords = 20

var (
	vizPattern = regexp.MustCompile(`(?i)\b(chart|graph|plot|visuali[sz](e|ation)|diagram)s?\b`)

	chartKinds = []struct {
		pattern *regexp.Regexp
		chart   string
	}{
		{regexp.MustCompile(`(?i)\bpie\b`), "pie chart"},
		{regexp.MustCompile(`(?i)\bline\b`), "line chart"},
		{regexp.MustCompile(`(?i)\bscatter\b`), "scatter plot"},
	}
)

// ChartChoice is the visualization picked for a prompt.
type ChartChoice struct {
	Library string
	Chart   string
}

// Requested reports whether the prompt asked for a visualization.
func (c ChartChoice) Requested() bool {
	return c.Library != ""
}

// Analyze decides whether prompt asks for a chart and which kind.
func Analyze(prompt string) ChartChoice {
	if !vizPattern.MatchString(prompt) {
		return ChartChoice{}
	}

	for _, kind := range chartKinds {
		if kind.pattern.MatchString(prompt) {
			return ChartChoice{Library: LibraryPlotly, Chart: kind.chart}
		}
	}
	return ChartChoice{Library: LibraryPlotly, Chart: "bar chart"}
}

type figure struct {
	Data   []trace        `json:"data"`
	Layout map[string]any `json:"layout"`
}

type trace struct {
	Type   string   `json:"type"`
	Mode   string   `json:"mode,omitempty"`
	X      []string `json:"x,omitempty"`
	Y      []int    `json:"y,omitempty"`
	Labels []string `json:"labels,omitempty"`
	Values []int    `json:"values,omitempty"`
}

// Graph builds the graph event charting the word lengths of prompt.
func (c ChartChoice) Graph(prompt string) chat.GraphEvent {
	words := chartWords(prompt)
	lengths := make([]int, len(words))
	for i, w := range words {
		lengths[i] = utf8.RuneCountInString(w)
	}

	var t trace
	switch c.Chart {
	case "pie chart":
		t = trace{Type: "pie", Labels: words, Values: lengths}
	case "line chart":
		t = trace{Type: "scatter", Mode: "lines+markers", X: words, Y: lengths}
	case "scatter plot":
		t = trace{Type: "scatter", Mode: "markers", X: words, Y: lengths}
	default:
		t = trace{Type: "bar", X: words, Y: lengths}
	}

	fig := figure{
		Data: []trace{t},
		Layout: map[string]any{
			"title": map[string]string{"text": "Word lengths"},
		},
	}
	data, _ := json.Marshal(fig)

	return chat.GraphEvent{
		GraphType:   c.Library,
		GraphData:   data,
		Description: titleCase(c.Chart) + " chart generated using " + c.Library,
	}
}

func chartWords(prompt string) []string {
	var words []string
	for _, field := range strings.Fields(prompt) {
		w := strings.TrimFunc(field, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if w == "" {
			continue
		}
		words = append(words, w)
		if len(words) == maxChartWords {
			break
		}
	}
	if len(words) == 0 {
		words = []string{strings.TrimSpace(prompt)}
	}
	return words
}

// titleCase upper-cases the first letter of each word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
