package api

import "html/template"

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Download Deck Proxies | SWU</title>
    <style>
        body { background-color: #0b0b0b; color: #fff; font-family: 'Segoe UI', Roboto, Helvetica, Arial, sans-serif;
               display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; }
        .container { background: #151515; padding: 2rem; border-top: 5px solid #fff200; border-radius: 4px;
                     width: 100%; max-width: 700px; }
        h1 { text-transform: uppercase; letter-spacing: 2px; color: #fff200; }
        .info-box { background: #222; padding: 1rem; border-left: 3px solid #fff200; font-size: 0.9rem; color: #ccc; }
        label { display: block; margin: 1.5rem 0 0.5rem; font-weight: bold; text-transform: uppercase; font-size: 0.8rem; }
        input[type="text"] { width: 100%; padding: 12px; box-sizing: border-box; background: #000; border: 1px solid #444; color: #fff; }
        button { width: 100%; margin-top: 1.5rem; padding: 12px; background: #fff200; color: #000; border: none; font-weight: bold; cursor: pointer; }
        button[disabled] { background: #777; cursor: wait; }
        footer { margin-top: 2rem; font-size: 0.7rem; color: #666; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Download SWU Deck Proxies</h1>
        <div class="info-box">
            Other proxy download services are in full letter or A4 size. Downloading proxies on 6x4 photo prints
            allows you to take advantage of relatively cheap photo printing services to get good quality prints on
            thick photo paper, which work well once cut and sleeved.
        </div>
        <form action="/download" method="POST" onsubmit="this.querySelector('button').disabled = true">
            <label for="deckId">Submit a swudb.com deck ID or URL to download</label>
            <input type="text" id="deckId" name="deckId" placeholder="{{.Placeholder}}" maxlength="{{.MaxInput}}" required>
            <button type="submit">Generate Proxy ZIP</button>
        </form>
        <footer>Not affiliated with Fantasy Flight Games or Lucasfilm Ltd.</footer>
    </div>
</body>
</html>
`))
