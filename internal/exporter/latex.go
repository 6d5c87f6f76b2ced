package exporter

import (
	"io"
	"text/template"

	apperrors "clinicreport/internal/errors"
	"clinicreport/pkg/contracts/domain"
)

const latexTemplate = `\documentclass[a4paper, 12pt]{article}
\usepackage{geometry}
\usepackage{array}
\usepackage{longtable}
\usepackage{booktabs}
\geometry{margin=1in}
\title{<<tex .Title>>}
\author{<<tex .Author>>}
\date{\today}

\begin{document}

\maketitle

\section*{Monthly Summary}
\begin{tabbing}
\hspace*{5.5cm}\= \kill
\textbf{Month:} \> <<tex .PeriodLabel>> \\
\textbf{Total Patients Tested:} \> <<count .TotalPatients>> \\
\textbf{Total New Patients:} \> <<count .TotalNewPatients>> \\
\textbf{Total Returning Patients:} \> <<count .TotalReturningPatients>> \\
\end{tabbing}

\section*{Weekly Breakdown}
\begin{longtable}{| p{4cm} | p{3cm} | p{3cm} | p{3cm} |}
\toprule
\textbf{Week End} & \textbf{Total Px} & \textbf{New Px} & \textbf{Returning Px} \\
\midrule
\endfirsthead
\toprule
\textbf{Week End} & \textbf{Total Px} & \textbf{New Px} & \textbf{Returning Px} \\
\midrule
\endhead
<<range .Weeks>><<date .WeekEnd>> & <<count .TotalPatients>> & <<count .TotalNew>> & <<count .TotalReturning>> \\ \midrule
<<end>>\textbf{Monthly Totals} & \textbf{<<count .TotalPatients>>} & \textbf{<<count .TotalNewPatients>>} & \textbf{<<count .TotalReturningPatients>>} \\ \bottomrule
\end{longtable}

\section*{Comments/Notes}
\begin{itemize}
    \item All Comments:
    \begin{verbatim}
<<verbatim .Comments>>
    \end{verbatim}
\end{itemize}

\end{document}
`

// LaTeXRenderer writes the report as a LaTeX article with a summary block, a
// weekly longtable ending in a bold totals row and the comments verbatim.
type LaTeXRenderer struct {
	tmpl *template.Template
}

// NewLaTeXRenderer parses the report template
func NewLaTeXRenderer() *LaTeXRenderer {
	tmpl := template.Must(template.New("report.tex").
		Delims("<<", ">>").
		Funcs(template.FuncMap{
			"tex":      EscapeLaTeX,
			"count":    FormatCount,
			"date":     FormatWeekEnd,
			"verbatim": verbatimSafe,
		}).
		Parse(latexTemplate))
	return &LaTeXRenderer{tmpl: tmpl}
}

// Render implements Renderer
func (r *LaTeXRenderer) Render(w io.Writer, doc *domain.ReportDocument) error {
	if err := r.tmpl.Execute(w, doc); err != nil {
		return apperrors.NewRenderError("render latex report", err)
	}
	return nil
}
