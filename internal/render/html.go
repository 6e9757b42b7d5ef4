package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/drivedash/drivedash/internal/dashboard"
)

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"num":         formatNumber,
	"pricePerTB":  formatPricePerTB,
	"driveType":   driveType,
	"placeholder": placeholder,
	"chartStatus": chartPlaceholder,
	"window":      windowLabel,
	"lower":       strings.ToLower,
	"windows":     func() []dashboard.Window { return []dashboard.Window{dashboard.Week, dashboard.Month, dashboard.Year} },
	"sortMark": func(s dashboard.SortState, key dashboard.SortKey) string {
		if s.Key != key {
			return ""
		}
		if s.Direction == dashboard.Descending {
			return " ▼"
		}
		return " ▲"
	},
}).Parse(pageHTML))

type pageData struct {
	dashboard.Snapshot
	LastUpdated string
	NoListings  string
	NoDeals     string
}

// HTML writes the dashboard as a standalone page. The chart is drawn
// client side from the embedded series.
func HTML(w io.Writer, snap dashboard.Snapshot) error {
	data := pageData{
		Snapshot:    snap,
		LastUpdated: strings.ToUpper(snap.Summary.LastUpdatedLabel(LastUpdatedLayout)),
		NoListings:  MsgNoListings,
		NoDeals:     MsgNoDeals,
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

const pageHTML = `<!DOCTYPE html>
<html lang="sv">
<head>
<meta charset="utf-8">
<title>Hårddiskfynd</title>
<script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
<style>
body { background: #282a36; color: #f8f8f2; font-family: 'IBM Plex Mono', monospace; }
table { border-collapse: collapse; width: 100%; }
td, th { padding: 4px 8px; border-bottom: 1px solid #44475a; }
.text-center { text-align: center; }
.loading { text-align: center; color: #6272a4; }
.price-excellent { color: #50fa7b; }
.price-good { color: #8be9fd; }
.price-ok { color: #f1fa8c; }
.price-high { color: #ff5555; }
.age-fresh { color: #50fa7b; }
.age-recent { color: #f1fa8c; }
.age-old { color: #6272a4; }
.type-badge { padding: 0 4px; border: 1px solid; }
.type-ssd { color: #bd93f9; }
.type-hdd { color: #f8f8f2; }
.terminal-btn { color: #50fa7b; }
.terminal-btn.active { background: #44475a; }
</style>
</head>
<body>
<section id="stats">
<div>SNITT SEK/TB: <span id="avg-price">{{.Summary.AveragePricePerTB}}</span></div>
<div>ANNONSER: <span id="total-listings">{{.Summary.TotalListings}}</span></div>
<div>FYND: <span id="total-deals">{{.Summary.TotalDeals}}</span></div>
<div>UPPDATERAD: <span id="last-updated">{{.LastUpdated}}</span></div>
</section>

<section>
<h2>FYND</h2>
<table>
<thead><tr><th>TYP</th><th>KAPACITET</th><th>PRIS</th><th>SEK/TB</th><th>ÅLDER</th><th>PLATS</th><th>TITEL</th><th></th></tr></thead>
<tbody id="deals-body">
{{- with placeholder .Deals .NoDeals}}
<tr><td colspan="8" class="loading">{{.}}</td></tr>
{{- else}}
{{- range .Deals.Rows}}
<tr class="deal-row">
<td class="text-center"><span class="type-badge type-{{driveType .Listing | lower}}">{{driveType .Listing}}</span></td>
<td class="text-center">{{num .Listing.CapacityTB}}TB</td>
<td class="text-center">{{num .Listing.PriceSEK}} SEK</td>
<td class="text-center price-{{.Tier}}">{{pricePerTB .Listing.PricePerTB}}</td>
<td class="text-center age-{{.Age.Bucket}}">{{.Age.Label}}</td>
<td>{{.Listing.Location}}</td>
<td class="title">{{.Listing.Title}}</td>
<td class="text-center"><a href="{{.Listing.URL}}" target="_blank" class="terminal-btn">VISA</a></td>
</tr>
{{- end}}
{{- end}}
</tbody>
</table>
</section>

<section>
<h2>ANNONSER</h2>
<table>
<thead><tr>
<th data-sort="is_ssd">TYP{{sortMark .Sort "is_ssd"}}</th>
<th data-sort="capacity_tb">KAPACITET{{sortMark .Sort "capacity_tb"}}</th>
<th data-sort="price_sek">PRIS{{sortMark .Sort "price_sek"}}</th>
<th data-sort="price_per_tb">SEK/TB{{sortMark .Sort "price_per_tb"}}</th>
<th data-sort="age">ÅLDER{{sortMark .Sort "age"}}</th>
<th data-sort="location">PLATS{{sortMark .Sort "location"}}</th>
<th data-sort="title">TITEL{{sortMark .Sort "title"}}</th>
<th></th>
</tr></thead>
<tbody id="listings-body">
{{- with placeholder .Listings .NoListings}}
<tr><td colspan="8" class="loading">{{.}}</td></tr>
{{- else}}
{{- range .Listings.Rows}}
<tr>
<td class="text-center">{{if .Listing.IsSSD}}<span class="type-badge type-ssd">SSD</span>{{else}}HDD{{end}}</td>
<td class="text-center">{{num .Listing.CapacityTB}}TB</td>
<td class="text-center">{{num .Listing.PriceSEK}} SEK</td>
<td class="text-center price-{{.Tier}}">{{pricePerTB .Listing.PricePerTB}}</td>
<td class="text-center age-{{.Age.Bucket}}">{{.Age.Label}}</td>
<td>{{.Listing.Location}}</td>
<td class="title">{{.Listing.Title}}</td>
<td class="text-center"><a href="{{.Listing.URL}}" target="_blank" class="terminal-btn">VISA</a></td>
</tr>
{{- end}}
{{- end}}
</tbody>
</table>
</section>

<section>
<h2>PRISHISTORIK</h2>
<div class="chart-controls">
{{- $w := .Window}}
{{- range windows}}
<span class="terminal-btn{{if eq . $w}} active{{end}}">[{{window .}}]</span>
{{- end}}
</div>
{{- with chartStatus .Chart}}
<p id="chart-status" class="loading">{{.}}</p>
{{- end}}
<canvas id="priceChart" height="300"></canvas>
</section>

<script>
const chart = {{.Chart}};
new Chart(document.getElementById('priceChart').getContext('2d'), {
  type: 'line',
  data: {
    labels: chart.labels,
    datasets: [
      { label: 'HDD (SEK/TB)', data: chart.hdd, borderColor: '#50fa7b', tension: 0.4, fill: false },
      { label: 'SSD (SEK/TB)', data: chart.ssd, borderColor: '#bd93f9', tension: 0.4, fill: false, spanGaps: true }
    ]
  },
  options: { responsive: true, maintainAspectRatio: false }
});
</script>
</body>
</html>
`
