package server

// indexHTML is the manual submission page. One textarea for post and reel
// URLs, one file input for CSV batches.
const indexHTML = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Post Tracker</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 640px; margin: 2rem auto; padding: 0 1rem; color: #222; }
  h1 { font-size: 1.4rem; }
  textarea { width: 100%; height: 10rem; font-family: monospace; font-size: 0.9rem; }
  fieldset { margin-bottom: 1.5rem; border: 1px solid #ccc; border-radius: 4px; }
  button { padding: 0.5rem 1.5rem; cursor: pointer; }
  #result { white-space: pre-wrap; font-family: monospace; font-size: 0.85rem; background: #f6f6f6; padding: 1rem; border-radius: 4px; display: none; }
</style>
</head>
<body>
<h1>Post Tracker</h1>

<fieldset>
<legend>Pegar URLs</legend>
<form id="urls-form">
<p>Una URL de post o reel por línea:</p>
<textarea name="urls" placeholder="https://www.instagram.com/p/..."></textarea>
<p><button type="submit">Procesar</button></p>
</form>
</fieldset>

<fieldset>
<legend>Subir CSV</legend>
<form id="csv-form">
<p>Primera columna: URLs de posts o reels.</p>
<input type="file" name="csvFile" accept=".csv">
<p><button type="submit">Subir</button></p>
</form>
</fieldset>

<div id="result"></div>

<script>
const result = document.getElementById('result');

function show(data) {
  result.style.display = 'block';
  result.textContent = JSON.stringify(data, null, 2);
}

document.getElementById('urls-form').addEventListener('submit', async (e) => {
  e.preventDefault();
  const body = new URLSearchParams(new FormData(e.target));
  const resp = await fetch('/process', { method: 'POST', body });
  show(await resp.json());
});

document.getElementById('csv-form').addEventListener('submit', async (e) => {
  e.preventDefault();
  const body = new FormData(e.target);
  const resp = await fetch('/upload', { method: 'POST', body });
  show(await resp.json());
});
</script>
</body>
</html>
`
