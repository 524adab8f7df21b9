package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// BroadcastView is the shared-screen page. It redraws the recolored cards
// whenever the room's answers change.
func BroadcastView(data BroadcastPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		roomID := utoa(data.RoomID)
		writeHead(w, data.Title)
		_, _ = io.WriteString(w, `    <main class="broadcast">
      <header>
        <h1 id="question">`+esc(data.Title)+`</h1>
        <p>Join with code <code class="code">`+esc(data.Code)+`</code></p>
        <img class="qr" src="/api/rooms/`+roomID+`/qr.png" alt="Join QR code" width="120" height="120"/>
      </header>
      <section id="cards" class="cards"></section>
    </main>
    <script>
      const roomID = `+roomID+`;
      const fallbackTitle = document.getElementById("question").textContent;
      const refresh = async () => {
        const res = await fetch("/api/rooms/" + roomID + "/broadcast");
        if (!res.ok) {
          return;
        }
        const data = await res.json();
        if (data.question) {
          document.getElementById("question").textContent = data.question.text || fallbackTitle;
        }
        document.getElementById("cards").replaceChildren(...data.cards.map((card) => {
          const figure = document.createElement("figure");
          const img = document.createElement("img");
          img.src = card.image;
          img.alt = card.display_name;
          const caption = document.createElement("figcaption");
          caption.textContent = card.display_name;
          figure.append(img, caption);
          return figure;
        }));
      };
      const connect = () => {
        const scheme = location.protocol === "https:" ? "wss://" : "ws://";
        const ws = new WebSocket(scheme + location.host + "/ws/rooms/" + roomID + "?watch=room,answers");
        ws.onmessage = refresh;
        ws.onclose = () => setTimeout(connect, 2000);
      };
      refresh();
      connect();
    </script>
`)
		writeFoot(w)
		return nil
	})
}
