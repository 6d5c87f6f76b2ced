package exporter

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatCount prints a patient count as an integer when it is integral and
// with two decimals otherwise.
func FormatCount(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatWeekEnd prints a week-ending date as YYYY-MM-DD
func FormatWeekEnd(t time.Time) string {
	return t.Format("2006-01-02")
}

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// EscapeLaTeX escapes the characters LaTeX treats specially in running text
func EscapeLaTeX(s string) string {
	return latexEscaper.Replace(s)
}

// verbatimSafe keeps text from closing a verbatim environment early
func verbatimSafe(s string) string {
	return strings.ReplaceAll(s, `\end{verbatim}`, `\end {verbatim}`)
}
