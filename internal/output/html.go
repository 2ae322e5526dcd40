package output

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/torosent/zerobench/internal/stats"
)

// HTMLReportData contains all data needed for the HTML report template.
type HTMLReportData struct {
	GeneratedAt string
	Report      *Report
	FieldNames  []string
}

// GenerateHTMLReport generates a standalone HTML report.
func GenerateHTMLReport(w io.Writer, r *Report) error {
	data := HTMLReportData{
		GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
		Report:      r,
		FieldNames:  stats.FieldNames(stats.Policy(r.Reducer)),
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"field": func(sum stats.Summary, name string) string {
			v, ok := sum.Get(name)
			if !ok {
				return "-"
			}
			return fmt.Sprintf("%d", v)
		},
		"formatFloat": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
		"formatSigned": func(f float64) string {
			return fmt.Sprintf("%+.1f", f)
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>zerobench Report</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #2c3e50;
            line-height: 1.6;
            padding: 20px;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1);
            overflow: hidden;
        }
        header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 30px 40px;
        }
        header h1 {
            font-size: 2rem;
            margin-bottom: 10px;
        }
        header .meta {
            opacity: 0.9;
            font-size: 0.9rem;
        }
        .content {
            padding: 40px;
        }
        .section {
            margin-bottom: 40px;
        }
        .section h2 {
            font-size: 1.5rem;
            margin-bottom: 20px;
            padding-bottom: 10px;
            border-bottom: 2px solid #e5e7eb;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            background: white;
        }
        th, td {
            text-align: left;
            padding: 12px;
            border-bottom: 1px solid #e5e7eb;
        }
        th {
            background: #f8f9fa;
            font-weight: 600;
            color: #4b5563;
            font-size: 0.9rem;
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }
        td.num {
            font-variant-numeric: tabular-nums;
        }
        .badge {
            display: inline-block;
            padding: 4px 12px;
            border-radius: 12px;
            font-size: 0.85rem;
            font-weight: 600;
        }
        .badge-success {
            background: #d1fae5;
            color: #065f46;
        }
        .badge-error {
            background: #fee2e2;
            color: #991b1b;
        }
        .no-data {
            text-align: center;
            padding: 40px;
            color: #6c757d;
            font-style: italic;
        }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>zerobench Report</h1>
            <div class="meta">File: {{.Report.File}} ({{.Report.Bytes}} bytes) | Trials: {{.Report.Trials}}</div>
            <div class="meta">Reducer: {{.Report.Reducer}} | Release: {{.Report.Release}} | Allocator: {{.Report.Allocator}}</div>
            <div class="meta">Run: {{.Report.RunID}} | Generated: {{.GeneratedAt}}</div>
        </header>

        <div class="content">
            <div class="section">
                <h2>Strategies (ns)</h2>
                {{if .Report.Strategies}}
                <table>
                    <thead>
                        <tr>
                            <th>Strategy</th>
                            {{range .FieldNames}}<th>{{.}}</th>{{end}}
                            <th>Std Dev</th>
                            <th>Short Reads</th>
                            <th>Duration (ms)</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{$names := .FieldNames}}
                        {{range .Report.Strategies}}
                        {{$sum := .Summary}}
                        <tr>
                            <td>{{.Label}}</td>
                            {{range $names}}<td class="num">{{field $sum .}}</td>{{end}}
                            <td class="num">{{formatFloat .Summary.StdDev}}</td>
                            <td class="num">{{.ShortReads}}</td>
                            <td class="num">{{formatFloat .DurationMs}}</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
                {{else}}
                <div class="no-data">No strategies were run</div>
                {{end}}
            </div>

            {{if .Report.Thresholds}}
            <div class="section">
                <h2>Thresholds ({{.Report.Thresholds.Passed}}/{{.Report.Thresholds.Total}} passed)</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Threshold</th>
                            <th>Strategy</th>
                            <th>Actual</th>
                            <th>Status</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .Report.Thresholds.Results}}
                        <tr>
                            <td>{{.Threshold}}</td>
                            <td>{{.Strategy}}</td>
                            <td class="num">{{formatFloat .Actual}}</td>
                            <td>{{if .Pass}}<span class="badge badge-success">PASS</span>{{else}}<span class="badge badge-error">FAIL</span>{{end}}</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}

            {{if .Report.Baseline}}
            <div class="section">
                <h2>Baseline{{if .Report.Baseline.RunID}} {{.Report.Baseline.RunID}}{{end}}</h2>
                {{if .Report.Baseline.Deltas}}
                <table>
                    <thead>
                        <tr>
                            <th>Strategy</th>
                            <th>Field</th>
                            <th>Baseline</th>
                            <th>Current</th>
                            <th>Change (%)</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .Report.Baseline.Deltas}}
                        <tr>
                            <td>{{.Strategy}}</td>
                            <td>{{.Field}}</td>
                            <td class="num">{{.Baseline}}</td>
                            <td class="num">{{.Current}}</td>
                            <td class="num">{{formatSigned .Percent}}</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
                {{else}}
                <div class="no-data">No matching fields in baseline</div>
                {{end}}
            </div>
            {{end}}
        </div>
    </div>
</body>
</html>
`
