package dashboard

import (
	"fmt"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
)

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Variance Dashboard</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 64rem; color: #1a1a2e; }
h1 { font-size: 1.4rem; }
h2 { font-size: 1.1rem; margin-top: 2rem; }
table { border-collapse: collapse; width: 100%; margin-top: 0.5rem; }
th, td { text-align: right; padding: 0.3rem 0.6rem; border-bottom: 1px solid #ddd; }
th:first-child, td:first-child { text-align: left; }
.neg { color: #c0392b; }
.pos { color: #1e8449; }
#status { color: #666; font-style: italic; }
.upload { margin: 1rem 0; }
</style>
</head>
<body>
<h1>Plan vs Actual Variance</h1>
<div class="upload">
  <label>Actuals CSV <input type="file" id="actual-file"></label>
  <label>Plan CSV <input type="file" id="plan-file"></label>
</div>
<div id="status">Upload a CSV to begin.</div>
<div id="content"></div>
<script src="/app.js"></script>
</body>
</html>`

// appSource is kept readable here and minified on first request.
const appSource = `
const status = document.getElementById('status');
const content = document.getElementById('content');

function fmt(v) {
  if (v === null || v === undefined) return 'n/a';
  return typeof v === 'number' ? v.toLocaleString(undefined, {maximumFractionDigits: 1}) : v;
}

function pctCell(v) {
  if (v === null || v === undefined) return '<td>n/a</td>';
  const cls = v < 0 ? 'neg' : 'pos';
  return '<td class="' + cls + '">' + fmt(v) + '%</td>';
}

async function upload(series, file) {
  const resp = await fetch('/api/upload?series=' + series, {method: 'POST', body: file});
  if (!resp.ok) {
    status.textContent = 'Upload failed: ' + await resp.text();
    return;
  }
  status.textContent = '';
  await refresh();
}

function rankTable(title, rows) {
  if (!rows || rows.length === 0) return '';
  let html = '<h2>' + title + '</h2><table><tr><th>Category</th><th>Actual</th><th>Plan</th><th>Variance</th><th>%</th></tr>';
  for (const r of rows) {
    html += '<tr><td>' + r.category + '</td><td>' + fmt(r.actual) + '</td><td>' + fmt(r.plan) +
            '</td><td>' + fmt(r.variance) + '</td>' + pctCell(r.variance_pct) + '</tr>';
  }
  return html + '</table>';
}

async function refresh() {
  const periods = await (await fetch('/api/periods')).json();
  if (!periods.length) return;
  const latest = periods[periods.length - 1];
  const summary = await (await fetch('/api/summary?period=' + latest)).json();
  const totals = await (await fetch('/api/totals')).json();

  let html = '<h2>' + latest + ' summary</h2>';
  html += '<table><tr><th>Total Actual</th><th>Total Plan</th><th>Variance</th><th>%</th></tr>';
  html += '<tr><td>' + fmt(summary.total_actual) + '</td><td>' + fmt(summary.total_plan) +
          '</td><td>' + fmt(summary.total_variance) + '</td>' + pctCell(summary.total_variance_pct) + '</tr></table>';
  html += rankTable('Top favorable', summary.top_positive);
  html += rankTable('Top unfavorable', summary.top_negative);

  html += '<h2>Trend</h2><table><tr><th>Period</th><th>Actual</th><th>Plan</th><th>Variance</th><th>%</th></tr>';
  for (const t of totals) {
    html += '<tr><td>' + t.period + '</td><td>' + fmt(t.actual) + '</td><td>' + fmt(t.plan) +
            '</td><td>' + fmt(t.variance) + '</td>' + pctCell(t.variance_pct) + '</tr>';
  }
  html += '</table>';
  content.innerHTML = html;
}

document.getElementById('actual-file').addEventListener('change', e => upload('actual', e.target.files[0]));
document.getElementById('plan-file').addEventListener('change', e => upload('plan', e.target.files[0]));
refresh();
`

var (
	minifyOnce sync.Once
	minifiedJS []byte
	minifyErr  error
)

// appJS returns the minified dashboard script.
func appJS() ([]byte, error) {
	minifyOnce.Do(func() {
		result := api.Transform(appSource, api.TransformOptions{
			Loader:            api.LoaderJS,
			MinifyWhitespace:  true,
			MinifyIdentifiers: true,
			MinifySyntax:      true,
		})
		if len(result.Errors) > 0 {
			minifyErr = fmt.Errorf("failed to minify dashboard script: %s", result.Errors[0].Text)
			return
		}
		minifiedJS = result.Code
	})
	return minifiedJS, minifyErr
}
