package callback

import (
	"html/template"
	"net/http"
)

const (
	successMessage          = "Authentication complete. You can close this window."
	alreadyCompletedMessage = "This authorization request was already completed. You can close this window."
)

// forwarderPage reads the URL fragment and posts it back to the same path,
// then shows the server's reply.
const forwarderPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Spotify authentication</title></head>
<body>
<p id="status">Completing authentication...</p>
<script>
(function () {
  var status = document.getElementById("status");
  var fragment = window.location.hash.replace(/^#/, "");
  var xhr = new XMLHttpRequest();
  xhr.open("POST", window.location.pathname);
  xhr.setRequestHeader("Content-Type", "application/x-www-form-urlencoded");
  xhr.onload = function () { status.textContent = xhr.responseText; };
  xhr.onerror = function () { status.textContent = "Could not reach the application."; };
  xhr.send(fragment);
})();
</script>
</body>
</html>
`

var resultPage = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Spotify authentication</title></head>
<body><p>{{.}}</p></body>
</html>
`))

func writeForwarderPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(forwarderPage))
}

// respond answers POSTs from the forwarder page with plain text and direct GETs with HTML.
func (r *Receiver) respond(w http.ResponseWriter, req *http.Request, status int, msg string) {
	w.Header().Set("Cache-Control", "no-store")
	if req.Method == http.MethodPost {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(msg))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := resultPage.Execute(w, msg); err != nil {
		r.logger.Warn("failed to render callback page", "error", err)
	}
}
