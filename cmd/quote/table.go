package main

import (
	"fmt"
	"sort"

	"investor-livedata/internal/domain"
	"investor-livedata/internal/service"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	upStyle     = cellStyle.Foreground(lipgloss.Color("42"))
	downStyle   = cellStyle.Foreground(lipgloss.Color("203"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

var headers = []string{"Symbol", "Price", "Change", "Volume", "Market", "Source"}

const changeCol = 2

func quotesTable(quotes []domain.Quote) string {
	rows := make([][]string, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, quoteRow(&q))
	}
	return newTable(rows).Render()
}

func resultsTable(results map[string]service.QuoteResult) string {
	symbols := make([]string, 0, len(results))
	for s := range results {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	rows := make([][]string, 0, len(symbols))
	for _, s := range symbols {
		r := results[s]
		if r.Err != nil {
			rows = append(rows, []string{s, "-", "-", "-", "-", "error: " + r.Err.Error()})
			continue
		}
		rows = append(rows, quoteRow(r.Quote))
	}
	return newTable(rows).Render()
}

func newTable(rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == changeCol && row >= 0 && row < len(rows) {
				switch v := rows[row][col]; {
				case len(v) > 0 && v[0] == '+':
					return upStyle
				case len(v) > 0 && v[0] == '-' && v != "-":
					return downStyle
				}
			}
			return cellStyle
		})
}

func quoteRow(q *domain.Quote) []string {
	change := "n/a"
	if q.ChangePercent != nil {
		change = fmt.Sprintf("%+.2f%%", *q.ChangePercent)
	}
	volume := "n/a"
	if q.Volume != nil {
		volume = humanVolume(*q.Volume)
	}
	source := q.Source
	if q.IsFallback() {
		source += " (price only)"
	}
	return []string{q.Symbol, fmt.Sprintf("%.2f", q.Price), change, volume, string(q.MarketState), source}
}

func humanVolume(v int64) string {
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("%.2fB", float64(v)/1e9)
	case v >= 1_000_000:
		return fmt.Sprintf("%.2fM", float64(v)/1e6)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", float64(v)/1e3)
	default:
		return fmt.Sprintf("%d", v)
	}
}
