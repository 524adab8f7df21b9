package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func PlayView(data PlayPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		roomID := utoa(data.RoomID)
		writeHead(w, data.Title)
		_, _ = io.WriteString(w, `    <main class="shell play">
      <header class="hero">
        <span class="tag">Room `+esc(data.Code)+`</span>
        <h1>`+esc(data.Title)+`</h1>
`)
		writeViewer(w, data.Viewer)
		_, _ = io.WriteString(w, `      </header>
`)
		if data.Viewer == nil {
			_, _ = io.WriteString(w, `      <section class="panel">
        <h2>Sign in to play</h2>
        <a class="primary" href="/auth/login?next=/play/`+esc(data.Code)+`">Sign in</a>
      </section>
    </main>
`)
			writeFoot(w)
			return nil
		}
		_, _ = io.WriteString(w, `      <section class="panel">
        <h2 id="question">Waiting for the host...</h2>
        <img id="questionImage" class="question-image" alt="" hidden/>
        <canvas id="board" width="`+itoa(data.CanvasW)+`" height="`+itoa(data.CanvasH)+`"></canvas>
        <div class="tools">
          <input id="color" type="color" value="#111111"/>
          <input id="width" type="range" min="1" max="24" value="4"/>
          <button id="undo">Undo</button>
          <button id="clear">Clear</button>
          <button id="submit" class="primary">Submit</button>
        </div>
        <div id="playResult" class="result"></div>
      </section>
    </main>
    <script>
      const roomID = `+roomID+`;
      const board = document.getElementById("board");
      const ctx2d = board.getContext("2d");
      const result = document.getElementById("playResult");
      let ws = null;

      const paint = (dataURL) => {
        const img = new Image();
        img.onload = () => {
          ctx2d.clearRect(0, 0, board.width, board.height);
          ctx2d.drawImage(img, 0, 0, board.width, board.height);
        };
        img.src = dataURL;
      };
      const send = (msg) => {
        if (ws && ws.readyState === WebSocket.OPEN) {
          ws.send(JSON.stringify(msg));
        }
      };
      const pointer = (type, event) => {
        const rect = board.getBoundingClientRect();
        send({ type, x: event.clientX - rect.left, y: event.clientY - rect.top, display_w: rect.width, display_h: rect.height });
      };
      let drawing = false;
      board.addEventListener("pointerdown", (event) => {
        drawing = true;
        board.setPointerCapture(event.pointerId);
        pointer("begin", event);
      });
      board.addEventListener("pointermove", (event) => {
        if (drawing) {
          pointer("move", event);
        }
      });
      const finish = () => {
        if (drawing) {
          drawing = false;
          send({ type: "end" });
        }
      };
      board.addEventListener("pointerup", finish);
      board.addEventListener("pointercancel", finish);
      const brush = () => send({ type: "brush", color: document.getElementById("color").value, width: parseFloat(document.getElementById("width").value) });
      document.getElementById("color").onchange = brush;
      document.getElementById("width").onchange = brush;
      document.getElementById("undo").onclick = () => send({ type: "undo" });
      document.getElementById("clear").onclick = () => send({ type: "clear" });
      document.getElementById("submit").onclick = () => {
        send({ type: "submit" });
        result.textContent = "Answer sent.";
      };

      const showQuestion = async () => {
        const res = await fetch("/api/rooms/" + roomID + "/questions");
        if (!res.ok) {
          return;
        }
        const data = await res.json();
        const current = (data.questions || []).filter((q) => q.posted_at && !q.closed_at).pop();
        document.getElementById("question").textContent = current ? (current.text || "Draw your answer") : "Waiting for the host...";
        const image = document.getElementById("questionImage");
        image.hidden = !(current && current.image_url);
        if (current && current.image_url) {
          image.src = current.image_url;
        }
      };

      const connect = () => {
        const scheme = location.protocol === "https:" ? "wss://" : "ws://";
        ws = new WebSocket(scheme + location.host + "/ws/rooms/" + roomID + "/draw");
        ws.onmessage = (event) => {
          const msg = JSON.parse(event.data);
          if (msg.type === "image") {
            paint(msg.data);
          } else if (msg.type === "reset") {
            paint(msg.data.image);
            showQuestion();
            brush();
          } else if (msg.type === "removed") {
            result.textContent = "You are no longer in this room.";
          } else if (msg.type === "error") {
            result.textContent = msg.error;
          }
        };
        ws.onclose = () => {
          if (result.textContent !== "You are no longer in this room.") {
            setTimeout(connect, 2000);
          }
        };
      };

      fetch("/api/rooms/" + roomID + "/join", { method: "POST" }).then(async (res) => {
        if (!res.ok) {
          const data = await res.json().catch(() => ({}));
          result.textContent = data.error || "Could not join this room.";
          return;
        }
        connect();
      });
    </script>
`)
		writeFoot(w)
		return nil
	})
}
