package templates

const WrapperTemplate = `% Generated on {{.GeneratedDate}}
% Workload: {{.Workload}}
% Plot Type: {{.PlotType}}
\begin{figure}[htbp]
    \centering
    \resizebox{\linewidth}{!}{\input{./{{.PlotFileName}} }}
    \caption[{{.ShortCaption}}]{{"{"}}{{.Caption}}{{"}"}}
    \label{fig:{{.Label}}}
\end{figure}
`

type WrapperData struct {
	GeneratedDate string
	Workload      string
	PlotType      string
	PlotFileName  string
	ShortCaption  string
	Caption       string
	Label         string
}
