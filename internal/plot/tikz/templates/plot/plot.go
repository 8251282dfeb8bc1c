package templates

const PlotTemplate = `% Generated on {{.GeneratedDate}}
%
% Figure: {{.Title}}
% Workload: {{.Workload}}
% Plot Type: {{.PlotType}}
% Raster Image: {{.ImageFileName}}
% Panels: {{len .Panels}}
%
{{range .Colors}}\definecolor{{"{"}}{{.Name}}{{"}"}}{HTML}{{"{"}}{{.Hex}}{{"}"}}
{{end}}
\begin{tikzpicture}
\begin{groupplot}[
	group style={group size={{len .Panels}} by 1, horizontal sep=2cm},
	width=0.45\textwidth,
	height=0.375\textwidth,
	xlabel={ {{.XLabel}} },
	xmajorgrids,
	ymajorgrids,
	grid style={black!30},
	legend pos=north west,
	legend style={font=\scriptsize},
]
{{range .Panels}}
% Servers: {{.Servers}}
\nextgroupplot[title={\textbf{ {{.Title}} }}, ylabel={ {{.YLabel}} }]
{{range .Series}}
% {{.Protocol}} {{.Role}}: {{len .Coordinates}} points
\addplot[{{.Style}}]
  coordinates {
{{range .Coordinates}}    {{.}}
{{end}}  };
\addlegendentry{ {{.LegendEntry}} }
{{end}}{{end}}
\end{groupplot}
\end{tikzpicture}
`

type PlotData struct {
	GeneratedDate string
	Title         string
	Workload      string
	PlotType      string
	ImageFileName string
	XLabel        string
	Colors        []ColorDefinition
	Panels        []PanelData
}

type ColorDefinition struct {
	Name string
	Hex  string
}

type PanelData struct {
	Servers int
	Title   string
	YLabel  string
	Series  []PlotSeries
}

type PlotSeries struct {
	Protocol    string
	Role        string
	Style       string
	LegendEntry string
	Coordinates []string
}
