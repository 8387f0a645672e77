package panel

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"github.com/alnah/go-itmarket/internal/numfmt"
)

// ErrPanelRender is returned when the panel template fails to execute.
var ErrPanelRender = errors.New("table panel rendering failed")

const panelTemplate = `<div class="table-panel">
{{- with .Title}}
  <h3 class="table-panel-title">{{.}}</h3>
{{- end}}
  <table class="preview-table">
    <thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
    <tbody>
{{- range .Rows}}
      <tr><td>{{.Status}}</td><td>{{.Current}}</td><td>{{.Previous}}</td><td>{{.Abs}}</td><td>{{.Pct}}</td></tr>
{{- end}}
    </tbody>
  </table>
{{- with .Footer}}
  <p class="table-panel-footer">{{.}}</p>
{{- end}}
</div>`

var panelTmpl = template.Must(template.New("table-panel").Parse(panelTemplate))

type panelView struct {
	Title   string
	Footer  string
	Columns []string
	Rows    []rowView
}

type rowView struct {
	Status   string
	Current  string
	Previous string
	Abs      string
	Pct      string
}

// Render turns a table-panel block into HTML. Columns 1 and 2 name the
// compared periods and select row values through ColumnKey. Fields a row
// does not carry render as empty cells.
func Render(b Block) (string, error) {
	columns := b.Columns
	if len(columns) == 0 {
		columns = DefaultColumns
	}
	currentKey := ColumnKey(columnAt(columns, 1))
	previousKey := ColumnKey(columnAt(columns, 2))

	view := panelView{
		Title:   b.Title,
		Footer:  b.Footer,
		Columns: columns,
		Rows:    make([]rowView, 0, len(b.Rows)),
	}
	for _, r := range b.Rows {
		view.Rows = append(view.Rows, rowView{
			Status:   statusCell(r),
			Current:  numberCell(r, currentKey),
			Previous: numberCell(r, previousKey),
			Abs:      numberCell(r, "abs"),
			Pct:      percentCell(r),
		})
	}

	var buf bytes.Buffer
	if err := panelTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPanelRender, err)
	}
	return buf.String(), nil
}

// RenderAll renders every block in order, as Restore expects them.
func RenderAll(blocks []Block) ([]string, error) {
	panels := make([]string, 0, len(blocks))
	for i, b := range blocks {
		html, err := Render(b)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		panels = append(panels, html)
	}
	return panels, nil
}

func columnAt(columns []string, i int) string {
	if i < len(columns) {
		return columns[i]
	}
	return ""
}

func statusCell(r Row) string {
	index, hasIndex := r["index"]
	status := r["status"].String()
	if !hasIndex {
		return status
	}
	return index.String() + ". " + status
}

func numberCell(r Row, key string) string {
	if key == "" {
		return ""
	}
	v, ok := r[key]
	if !ok {
		return ""
	}
	if v.IsNum {
		return numfmt.Number(v.Num)
	}
	return v.Text
}

func percentCell(r Row) string {
	v, ok := r["pct"]
	if !ok {
		return ""
	}
	if v.IsNum {
		return numfmt.SignedPercent(v.Num, 2)
	}
	return v.Text
}
