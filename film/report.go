package film

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/teranos/dolly/trip"
)

// Report is a contact sheet for one filmed walk.
type Report struct {
	Title     string
	Manifest  string
	CreatedAt time.Time
	Duration  time.Duration // Virtual time covered by the reel
	Hops      int
	Summary   string // Trip summary of the walk
	Issues    []string
	Frames    []ReportFrame
}

// ReportFrame is one reel frame with its image embedded.
type ReportFrame struct {
	Frame
	DataURL template.URL
}

// NewReport builds a report from a reel. Frames written to disk are
// embedded as data URLs so the report is a single file.
func NewReport(title string, reel []Frame) (Report, error) {
	report := Report{
		Title:     title,
		CreatedAt: time.Now(),
		Frames:    make([]ReportFrame, 0, len(reel)),
	}

	for _, f := range reel {
		entry := ReportFrame{Frame: f}
		if f.Path != "" {
			url, err := dataURL(f.Path)
			if err != nil {
				return report, err
			}
			entry.DataURL = url
		}
		if f.Label == "arrive" {
			report.Hops++
		}
		report.Frames = append(report.Frames, entry)
	}
	if len(reel) > 0 {
		report.Duration = reel[len(reel)-1].At
	}
	return report, nil
}

// AddTrips lists every trip and stumble the handlers collected, trips
// first.
func (r *Report) AddTrips(handlers ...*trip.Handler) {
	for _, h := range handlers {
		for _, t := range h.GetTrips() {
			r.Issues = append(r.Issues, t.Error())
		}
	}
	for _, h := range handlers {
		for _, t := range h.GetStumbles() {
			r.Issues = append(r.Issues, t.Error())
		}
	}
}

// WriteReport renders the report as dir/index.html.
func WriteReport(dir string, report Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	reportPath := filepath.Join(dir, "index.html")
	file, err := os.Create(reportPath)
	if err != nil {
		return "", err
	}
	if err := reportTemplate.Execute(file, report); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return reportPath, nil
}

// dataURL reads a PNG frame and encodes it as a data URL.
func dataURL(path string) (template.URL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read frame: %w", err)
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(data)), nil
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"percent": func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - dolly reel</title>
<style>
body { font-family: sans-serif; background: #111; color: #ddd; margin: 2em; }
.sheet { display: grid; grid-template-columns: repeat(auto-fill, minmax(220px, 1fr)); gap: 1em; }
figure { margin: 0; background: #1b1b1b; padding: .5em; border-radius: 4px; }
figure.arrive { outline: 2px solid #5f5fd7; }
img { width: 100%; display: block; }
figcaption { font-size: .8em; margin-top: .4em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p><strong>Manifest:</strong> {{.Manifest}}</p>
<p><strong>Frames:</strong> {{len .Frames}} captured, <strong>hops:</strong> {{.Hops}}, <strong>duration:</strong> {{.Duration}}</p>
<p><strong>Trips:</strong> {{.Summary}}</p>
{{- if .Issues}}
<ul class="issues">
{{- range .Issues}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
<div class="sheet">
{{- range .Frames}}
<figure class="{{.Label}}">
{{- if .DataURL}}<img src="{{.DataURL}}" alt="frame {{.Index}}">{{end}}
<figcaption>#{{.Index}} {{.Label}} at {{.At}}<br>{{.Phase}} {{.Current}} → {{.Next}}, progress {{printf "%.2f" .Progress}}, motion {{percent .Motion}}</figcaption>
</figure>
{{- end}}
</div>
<p><small>Generated {{.CreatedAt.Format "2006-01-02 15:04:05"}}</small></p>
</body>
</html>
`))
