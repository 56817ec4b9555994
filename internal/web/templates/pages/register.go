package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/web/templates/components"
	"github.com/mcoot/signupgate/internal/web/templates/layout"
	"github.com/mcoot/signupgate/internal/web/templates/markup"
)

// RegisterData holds data for the registration page
type RegisterData struct {
	layout.PageData
	Gate model.GateSnapshot
}

// Register renders the form and, while verifying, the live challenge
func Register(data RegisterData) templ.Component {
	return layout.Base(data.PageData, markup.Func(func(ctx context.Context, m *markup.Writer) {
		snap := data.Gate

		m.Raw(`<h1>Create an account</h1><div id="signup"`)
		m.Attr("data-state", string(snap.State))
		m.Attr("data-strategy", string(snap.Strategy))
		m.Raw(">")

		m.Component(ctx, components.SignupForm(snap))

		m.Raw(`<div id="challenge-slot">`)
		m.Component(ctx, components.ChallengePanel(snap))
		m.Raw("</div>")

		m.Raw(`<form method="post" action="/register/leave" class="signup-leave"><button type="submit">Start over</button></form>`)
		m.Raw("</div>")
		m.Raw(signupScript)
	}))
}

// signupScript posts field edits as they change and follows the gate's SSE
// stream. Fragment events replace the challenge panel and form error in place.
// While the stream is open, challenge forms post in the background.
const signupScript = `<script>
(function () {
  var root = document.getElementById("signup");
  if (!root || !window.EventSource) { return; }
  var form = document.getElementById("signup-form");
  var slot = document.getElementById("challenge-slot");
  document.querySelectorAll("[data-field]").forEach(function (input) {
    input.addEventListener("change", function () {
      var body = new URLSearchParams({ name: input.dataset.field, value: input.value });
      fetch("/register/field", { method: "POST", body: body, credentials: "same-origin" });
    });
  });
  var source = new EventSource("/register/events");
  slot.addEventListener("submit", function (e) {
    if (source.readyState !== EventSource.OPEN) { return; }
    e.preventDefault();
    var target = e.target;
    var body = new URLSearchParams(new FormData(target));
    if (e.submitter && e.submitter.name) { body.append(e.submitter.name, e.submitter.value); }
    fetch(target.action, { method: "POST", body: body, credentials: "same-origin", redirect: "manual" })
      .catch(function () { target.submit(); });
  });
  source.addEventListener("notify", function (e) {
    var n = JSON.parse(e.data);
    var el = document.createElement("div");
    el.className = "flash flash-" + n.level;
    el.setAttribute("role", "status");
    el.textContent = n.message;
    document.getElementById("flashes").appendChild(el);
  });
  source.addEventListener("navigate", function (e) {
    source.close();
    window.location.assign(e.data);
  });
  source.addEventListener("state", function (e) {
    var snap = JSON.parse(e.data);
    var locked = snap.submitting || snap.state === "verified";
    root.dataset.state = snap.state;
    form.querySelectorAll("input, button").forEach(function (el) { el.disabled = locked; });
    form.querySelector("button[type=submit]").textContent = snap.submitting ? "Creating account\u2026" : "Sign up";
  });
  source.addEventListener("fragment", function (e) {
    var tpl = document.createElement("template");
    tpl.innerHTML = e.data;
    tpl.content.querySelectorAll("[hx-swap-oob]").forEach(function (part) {
      var el = document.getElementById(part.id);
      if (el) { el.innerHTML = part.innerHTML; }
    });
  });
  source.addEventListener("closed", function () { source.close(); });
})();
</script>`
