package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/drivedash/drivedash/internal/dashboard"
)

var (
	colorGreen   = lipgloss.Color("#50fa7b")
	colorCyan    = lipgloss.Color("#8be9fd")
	colorYellow  = lipgloss.Color("#f1fa8c")
	colorRed     = lipgloss.Color("#ff5555")
	colorPurple  = lipgloss.Color("#bd93f9")
	colorComment = lipgloss.Color("#6272a4")
	colorBorder  = lipgloss.Color("#44475a")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorComment).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	messageStyle = lipgloss.NewStyle().Foreground(colorComment)
	labelStyle   = lipgloss.NewStyle().Foreground(colorComment)
	valueStyle   = lipgloss.NewStyle().Bold(true)
)

var tierColors = map[dashboard.Tier]lipgloss.Color{
	dashboard.TierExcellent: colorGreen,
	dashboard.TierGood:      colorCyan,
	dashboard.TierOK:        colorYellow,
	dashboard.TierHigh:      colorRed,
}

var ageColors = map[dashboard.Freshness]lipgloss.Color{
	dashboard.Fresh:  colorGreen,
	dashboard.Recent: colorYellow,
	dashboard.Old:    colorComment,
}

const (
	colType = iota
	colCapacity
	colPrice
	colPricePerTB
	colAge
	colLocation
	colTitle
	colURL
)

const maxTitleRunes = 48

var tableHeaders = []string{"TYP", "KAPACITET", "PRIS", "SEK/TB", "ÅLDER", "PLATS", "TITEL", "LÄNK"}

// Terminal writes the dashboard as styled text: summary, deals, listings
// and the windowed history.
func Terminal(w io.Writer, snap dashboard.Snapshot) error {
	var b strings.Builder

	b.WriteString(summaryLine(snap.Summary))
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("FYND"))
	b.WriteString("\n")
	b.WriteString(listingTable(snap.Deals, MsgNoDeals))
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render(fmt.Sprintf("ANNONSER (%s %s)", snap.Sort.Key, snap.Sort.Direction)))
	b.WriteString("\n")
	b.WriteString(listingTable(snap.Listings, MsgNoListings))
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render(fmt.Sprintf("PRISHISTORIK [%s]", windowLabel(snap.Window))))
	b.WriteString("\n")
	b.WriteString(chartTable(snap.Chart))
	b.WriteString("\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write dashboard: %w", err)
	}
	return nil
}

func summaryLine(s dashboard.Summary) string {
	item := func(label, value string) string {
		return labelStyle.Render(label+": ") + valueStyle.Render(value)
	}
	return strings.Join([]string{
		item("SNITT SEK/TB", fmt.Sprint(s.AveragePricePerTB)),
		item("ANNONSER", fmt.Sprint(s.TotalListings)),
		item("FYND", fmt.Sprint(s.TotalDeals)),
		item("UPPDATERAD", strings.ToUpper(s.LastUpdatedLabel(LastUpdatedLayout))),
	}, "   ")
}

func listingTable(v dashboard.TableView, empty string) string {
	if msg := placeholder(v, empty); msg != "" {
		return messageStyle.Render(msg)
	}

	rows := make([][]string, 0, len(v.Rows))
	for _, r := range v.Rows {
		l := r.Listing
		rows = append(rows, []string{
			driveType(l),
			formatNumber(l.CapacityTB) + "TB",
			formatNumber(l.PriceSEK) + " SEK",
			formatPricePerTB(l.PricePerTB),
			r.Age.Label,
			l.Location,
			truncate(l.Title, maxTitleRunes),
			l.URL,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(tableHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(v.Rows) {
				return cellStyle
			}
			r := v.Rows[row]
			switch col {
			case colType:
				if r.Listing.IsSSD {
					return cellStyle.Foreground(colorPurple)
				}
			case colPricePerTB:
				return cellStyle.Foreground(tierColors[r.Tier])
			case colAge:
				return cellStyle.Foreground(ageColors[r.Age.Bucket])
			case colURL:
				return cellStyle.Foreground(colorComment)
			}
			return cellStyle
		})
	return t.String()
}

func chartTable(c dashboard.Chart) string {
	if msg := chartPlaceholder(c); msg != "" {
		return messageStyle.Render(msg)
	}
	rows := make([][]string, 0, c.Len())
	for i := range c.Labels {
		rows = append(rows, []string{c.Labels[i], pointText(c.HDD[i]), pointText(c.SSD[i])})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("DATUM", "HDD (SEK/TB)", "SSD (SEK/TB)").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1:
				return cellStyle.Foreground(colorGreen)
			case col == 2:
				return cellStyle.Foreground(colorPurple)
			}
			return cellStyle
		})
	return t.String()
}

func pointText(p dashboard.Point) string {
	if !p.Valid {
		return "-"
	}
	return fmt.Sprintf("%.0f", p.Value)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
