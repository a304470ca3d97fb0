package handler

import (
	"html/template"
	"time"
)

const layoutHead = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} · GoLink</title>
<style>
body{font-family:system-ui,sans-serif;max-width:48rem;margin:3rem auto;padding:0 1rem;color:#222}
table{border-collapse:collapse;width:100%}td,th{border-bottom:1px solid #ddd;padding:.4rem;text-align:left}
.denied{color:#b00}.granted{color:#070}
</style>
</head>
<body>
`

const layoutFoot = `</body>
</html>
`

const messagePage = layoutHead + `<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
<p><a href="/">Home</a></p>
` + layoutFoot

const challengePage = layoutHead + `<h1>{{.Code}}</h1>
{{if eq .Type "password"}}
<form id="challenge">
  <input type="password" name="password" placeholder="Password" autofocus required>
  <button type="submit">Open</button>
</form>
{{else}}
<p>This GoLink is restricted to selected Discord users.</p>
<form id="challenge"><button type="submit">Continue with Discord session</button></form>
<p><a href="/account/login">Sign in with Discord</a></p>
{{end}}
<p id="result"></p>
<script>
document.getElementById("challenge").addEventListener("submit", async (e) => {
  e.preventDefault();
  const body = {id: {{.Code}}, type: {{.Type}}};
  const pw = e.target.querySelector("input[name=password]");
  if (pw) body.password = pw.value;
  const res = await fetch("/api/v1/links", {method: "POST", headers: {"Content-Type": "application/json"}, body: JSON.stringify(body)});
  const data = await res.json().catch(() => ({}));
  if (data.url) { window.location.href = data.url; return; }
  document.getElementById("result").textContent = data.message || "Something went wrong.";
});
</script>
` + layoutFoot

const homePage = layoutHead + `<h1>GoLink</h1>
<p>Signed in as {{.Profile.Label}}.</p>
{{if .Admin}}<p><a href="/admin">Manage links</a></p>{{end}}
<p><a href="/account/logout">Sign out</a></p>
` + layoutFoot

const adminPage = layoutHead + `<h1>Links</h1>
<table>
<tr><th>Code</th><th>Type</th><th>URL</th><th>Views</th></tr>
{{range .Links}}
<tr><td><a href="/admin/{{.Code}}">{{.Code}}</a></td><td>{{.Type}}</td><td>{{.URL}}</td><td>{{len .Views}}</td></tr>
{{else}}
<tr><td colspan="4">No links yet.</td></tr>
{{end}}
</table>
<p><a href="/">Home</a></p>
` + layoutFoot

const adminLinkPage = layoutHead + `<h1>{{.Link.Code}}</h1>
<p>{{.Link.Type}} → <a href="{{.Link.URL}}">{{.Link.URL}}</a></p>
{{if .Link.Users}}<p>Allowed users: {{range $i, $u := .Link.Users}}{{if $i}}, {{end}}{{$u}}{{end}}</p>{{end}}
<table>
<tr><th>Date</th><th>User</th><th>Result</th></tr>
{{range .Link.Views}}
<tr><td>{{formatDate .Date}}</td><td>{{.User}}</td>{{if eq .Result 0}}<td class="granted">granted</td>{{else}}<td class="denied">denied</td>{{end}}</tr>
{{else}}
<tr><td colspan="3">No visits yet.</td></tr>
{{end}}
</table>
<p><a href="/admin">All links</a></p>
` + layoutFoot

// Templates returns the HTML views used by the router.
func Templates() *template.Template {
	t := template.New("").Funcs(template.FuncMap{
		"formatDate": func(ms int64) string {
			return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05 UTC")
		},
	})

	template.Must(t.New("message.html").Parse(messagePage))
	template.Must(t.New("challenge.html").Parse(challengePage))
	template.Must(t.New("home.html").Parse(homePage))
	template.Must(t.New("admin.html").Parse(adminPage))
	template.Must(t.New("admin_link.html").Parse(adminLinkPage))

	return t
}
