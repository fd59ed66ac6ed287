package plotly

import (
	"html/template"
	"io"

	"github.com/rotisserie/eris"
)

// plotlyCDN pins the browser library version the emitted pages load.
const plotlyCDN = "https://cdn.plot.ly/plotly-2.32.0.min.js"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.CDN}}"></script>
<style>body { margin: 0; font-family: sans-serif; }</style>
</head>
<body>
<div id="figure"></div>
<script>
var figure = {{.Figure}};
Plotly.newPlot("figure", figure.data, figure.layout, {responsive: true});
</script>
</body>
</html>
`))

type pageData struct {
	Title  string
	CDN    string
	Figure template.JS
}

// WriteHTML emits a self-contained page that renders the figure: the
// figure JSON inlined, plotly.js loaded from its CDN.
func WriteHTML(w io.Writer, fig *Figure, title string) error {
	data, err := fig.JSON()
	if err != nil {
		return err
	}

	page := pageData{
		Title:  title,
		CDN:    plotlyCDN,
		Figure: template.JS(data), //nolint:gosec // our own marshalled JSON
	}
	if err := pageTemplate.Execute(w, page); err != nil {
		return eris.Wrap(err, "plotly: render page")
	}
	return nil
}
