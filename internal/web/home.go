package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

func writeHead(w io.Writer, title string) {
	_, _ = io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>`+esc(title)+`</title>
    <link rel="stylesheet" href="`+assetPath("/static/styles.css")+`"/>
  </head>
  <body>
`)
}

func writeFoot(w io.Writer) {
	_, _ = io.WriteString(w, `  </body>
</html>
`)
}

func writeViewer(w io.Writer, viewer *Viewer) {
	if viewer == nil {
		return
	}
	_, _ = io.WriteString(w, `      <div class="viewer">Signed in as <strong>`+esc(viewer.DisplayName)+`</strong>
        <button id="logout" class="link">Sign out</button>
      </div>
      <script>
        document.getElementById("logout").addEventListener("click", async () => {
          await fetch("/auth/logout", { method: "POST" });
          window.location.href = "/";
        });
      </script>
`)
}

func Home(data HomePage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		writeHead(w, "FlipQuiz")
		_, _ = io.WriteString(w, `    <main class="shell">
      <header class="hero">
        <span class="tag">FlipQuiz</span>
        <h1>Ask. Draw. Flip.</h1>
        <p>Host a drawing quiz on the big screen while everyone answers from their phone.</p>
`)
		writeViewer(w, data.Viewer)
		_, _ = io.WriteString(w, `      </header>
`)
		if data.Flash != "" {
			_, _ = io.WriteString(w, `      <div class="flash">`+esc(data.Flash)+`</div>
`)
		}
		if data.Viewer == nil {
			if data.SignInReady {
				_, _ = io.WriteString(w, `      <section class="panel">
        <h2>Sign in</h2>
        <p>Rooms and answers are tied to your account.</p>
        <a class="primary" href="/auth/login">Sign in with Google</a>
      </section>
`)
			} else {
				_, _ = io.WriteString(w, `      <section class="panel">
        <h2>Sign in unavailable</h2>
        <p>Ask the organizer to configure sign-in for this server.</p>
      </section>
`)
			}
		} else {
			writeHostPanel(w, data)
		}
		_, _ = io.WriteString(w, `      <section class="panel">
        <h2>Join a room</h2>
        <form id="joinForm" class="join-form">
          <input name="code" placeholder="Room code" autocomplete="off" maxlength="6" required/>
          <button type="submit" class="secondary">Join</button>
        </form>
      </section>
    </main>
    <script>
      document.getElementById("joinForm").addEventListener("submit", (event) => {
        event.preventDefault();
        const code = event.target.elements.code.value.trim().toUpperCase();
        if (code) {
          window.location.href = "/play/" + encodeURIComponent(code);
        }
      });
    </script>
`)
		writeFoot(w)
		return nil
	})
}

func writeHostPanel(w io.Writer, data HomePage) {
	_, _ = io.WriteString(w, `      <section class="panel">
        <h2>Host a room</h2>
        <form id="createForm" class="create-form">
          <input name="title" placeholder="Room title" maxlength="80"/>
          <input name="max" type="number" min="1" max="`+itoa(data.MaxPlayers)+`" placeholder="Players (default `+itoa(data.DefaultLimit)+`)"/>
          <button type="submit" class="primary">Create room</button>
        </form>
        <div id="createResult" class="result"></div>
`)
	if len(data.Rooms) > 0 {
		var b strings.Builder
		b.WriteString(`        <ul class="rooms">
`)
		for _, room := range data.Rooms {
			b.WriteString(`          <li><a href="` + esc(room.HostURL) + `">` + esc(room.Title) + `</a> <code>` + esc(room.Code) + `</code> <span class="status">` + esc(room.Status) + `</span> <time>` + formatTime(room.CreatedAt) + `</time></li>
`)
		}
		b.WriteString(`        </ul>
`)
		_, _ = io.WriteString(w, b.String())
	}
	_, _ = io.WriteString(w, `      </section>
      <script>
        const createForm = document.getElementById("createForm");
        const createResult = document.getElementById("createResult");
        createForm.addEventListener("submit", async (event) => {
          event.preventDefault();
          createResult.textContent = "Creating room...";
          const max = parseInt(createForm.elements.max.value, 10);
          const res = await fetch("/api/rooms", {
            method: "POST",
            headers: { "Content-Type": "application/json" },
            body: JSON.stringify({ title: createForm.elements.title.value, max_participants: isNaN(max) ? 0 : max })
          });
          const data = await res.json();
          if (!res.ok) {
            createResult.textContent = data.error || "Failed to create room.";
            return;
          }
          window.location.href = "/host/" + data.id;
        });
      </script>
`)
}
