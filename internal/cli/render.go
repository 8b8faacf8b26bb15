package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"moneytracker/internal/core"
	"moneytracker/internal/present"
)

const (
	colorIncome  lipgloss.Color = "#28a745"
	colorExpense lipgloss.Color = "#dc3545"
	colorMuted   lipgloss.Color = "#6c757d"
	colorTitle   lipgloss.Color = "#0d6efd"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// renderer writes views to w. Styles come from a renderer bound to w so that
// color is only emitted when w is a terminal.
type renderer struct {
	w  io.Writer
	lg *lipgloss.Renderer
}

func newRenderer(w io.Writer) *renderer {
	return &renderer{w: w, lg: lipgloss.NewRenderer(w)}
}

func (r *renderer) json(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(r.w, string(data))
	return err
}

func (r *renderer) box(title, content string) string {
	heading := r.lg.NewStyle().Bold(true).Foreground(colorTitle).Render(title)
	return r.lg.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Render(heading + "\n" + content)
}

func (r *renderer) muted(s string) string {
	return r.lg.NewStyle().Foreground(colorMuted).Render(s)
}

func (r *renderer) amount(s string, negative bool) string {
	c := colorIncome
	if negative {
		c = colorExpense
	}
	return r.lg.NewStyle().Foreground(c).Render(s)
}

func (r *renderer) swatch(hex string) string {
	return r.lg.NewStyle().Foreground(lipgloss.Color(hex)).Render("●")
}

// table aligns cells on display width; labels carry accents.
func (r *renderer) table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	lines := []string{r.lg.NewStyle().Bold(true).Render(line(headers))}
	for _, row := range rows {
		lines = append(lines, line(row))
	}
	return strings.Join(lines, "\n")
}

func (r *renderer) println(s string) {
	_, _ = fmt.Fprintln(r.w, s)
}

func (r *renderer) monthCard(title string, m present.MonthRow) string {
	content := strings.Join([]string{
		"Ingresos       " + r.amount(m.Income, false),
		"Egresos        " + r.amount(m.Expenses, true),
		"Balance Neto   " + r.amount(m.Balance, m.Negative),
		"Transacciones  " + fmt.Sprint(m.Count),
	}, "\n")
	return r.box(title, content)
}

func (r *renderer) transactionRows(rows []present.TransactionRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{row.ID, row.Date, row.Title, row.CategoryLabel, row.Amount})
	}
	return out
}

var transactionHeaders = []string{"ID", "Fecha", "Título", "Categoría", "Monto"}

func (r *renderer) dashboard(title string, d present.Dashboard) {
	r.println(r.monthCard(title, d.Current))

	r.println("")
	r.println(r.lg.NewStyle().Bold(true).Render("Transacciones recientes"))
	if len(d.Recent) == 0 {
		r.println(r.muted("No hay transacciones registradas"))
	} else {
		r.println(r.table(transactionHeaders, r.transactionRows(d.Recent)))
	}

	r.println("")
	r.println(r.lg.NewStyle().Bold(true).Render("Resumen mensual"))
	if len(d.Monthly) == 0 {
		r.println(r.muted("Sin datos mensuales"))
		return
	}
	rows := make([][]string, 0, len(d.Monthly))
	for _, m := range d.Monthly {
		rows = append(rows, []string{m.Label, m.Income, m.Expenses, m.Balance, fmt.Sprint(m.Count)})
	}
	r.println(r.table([]string{"Mes", "Ingresos", "Egresos", "Balance", "Transacciones"}, rows))
}

func (r *renderer) transactionList(l present.TransactionList) {
	if l.Count == 0 {
		r.println(r.muted("No se encontraron transacciones"))
	} else {
		r.println(r.table(transactionHeaders, r.transactionRows(l.Rows)))
	}
	r.println("")
	r.println(fmt.Sprintf("%d transacciones  ingresos %s  egresos %s  balance %s",
		l.Count, l.Income, l.Expenses, l.Balance))
}

func (r *renderer) charts(c present.Charts) {
	r.println(r.box("Estadísticas", strings.Join([]string{
		fmt.Sprintf("Transacciones      %d", c.TotalTransactions),
		fmt.Sprintf("Meses con datos    %d", c.MonthsWithData),
		"Balance promedio   " + c.AverageNetBalance,
	}, "\n")))

	if len(c.Comparison.Labels) > 0 {
		rows := make([][]string, 0, len(c.Comparison.Labels))
		for i, label := range c.Comparison.Labels {
			row := []string{label}
			for _, ds := range c.Comparison.Datasets {
				row = append(row, present.FormatCurrency(ds.Data[i]))
			}
			row = append(row, present.FormatCurrency(c.Balance.Datasets[0].Data[i]))
			rows = append(rows, row)
		}
		r.println("")
		r.println(r.table([]string{"Mes", "Ingresos", "Egresos", "Balance"}, rows))
	}

	if c.Distribution != nil {
		r.println("")
		r.distribution(*c.Distribution)
	}
}

func (r *renderer) distribution(d present.Distribution) {
	rows := make([][]string, 0, len(d.Slices))
	for _, s := range d.Slices {
		rows = append(rows, []string{r.swatch(s.Color) + " " + s.Label, present.FormatCurrency(s.Amount), s.Percent()})
	}
	r.println(r.lg.NewStyle().Bold(true).Render("Distribución por Categoría"))
	r.println(r.table([]string{"Categoría", "Monto", "%"}, rows))
}

func (r *renderer) categories(t core.TransactionType) {
	for _, typ := range core.Types() {
		if t != "" && t != typ {
			continue
		}
		rows := [][]string{}
		for _, c := range core.Categories(typ) {
			rows = append(rows, []string{r.swatch(c.Color), c.Key, c.Label, c.Color})
		}
		r.println(r.box(typ.Label(), r.table([]string{"", "Clave", "Nombre", "Color"}, rows)))
	}
}
