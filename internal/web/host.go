package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func HostView(data HostPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		roomID := utoa(data.RoomID)
		writeHead(w, "Host "+data.Title)
		_, _ = io.WriteString(w, `    <main class="shell host" data-room="`+roomID+`">
      <header class="hero">
        <span class="tag">Hosting</span>
        <h1>`+esc(data.Title)+`</h1>
        <p>Room code <code class="code">`+esc(data.Code)+`</code> &middot; status <span id="status">`+esc(data.Status)+`</span></p>
        <p><a href="`+esc(data.PlayURL)+`">Player link</a> &middot; <a href="`+esc(data.Broadcast)+`" target="_blank">Open broadcast screen</a></p>
        <img class="qr" src="/api/rooms/`+roomID+`/qr.png" alt="Join QR code" width="160" height="160"/>
`)
		writeViewer(w, data.Viewer)
		_, _ = io.WriteString(w, `      </header>

      <section class="panel">
        <h2>Ask a question</h2>
        <form id="questionForm" class="question-form">
          <input name="text" placeholder="What should everyone draw?" maxlength="280"/>
          <input name="image" type="file" accept="image/*"/>
          <label><input name="post" type="checkbox" checked/> Post now</label>
          <button type="submit" class="primary">Add question</button>
        </form>
        <ol id="questions" class="questions"></ol>
        <div class="actions">
          <button id="closeQuestion">Close answers</button>
          <button id="revealAll">Reveal all</button>
          <button id="nextQuestion">Next question</button>
          <button id="endRoom" class="danger">End room</button>
        </div>
        <div id="hostResult" class="result"></div>
      </section>

      <section class="panel">
        <h2>Answers</h2>
        <div id="answers" class="answers" data-width="`+itoa(data.CanvasW)+`" data-height="`+itoa(data.CanvasH)+`"></div>
      </section>

      <section class="panel">
        <h2>Players</h2>
        <ul id="participants" class="participants"></ul>
        <h3>Banned</h3>
        <ul id="bans" class="bans"></ul>
      </section>
    </main>
    <script>
      const roomID = `+roomID+`;
      const result = document.getElementById("hostResult");
      const call = async (method, path, body) => {
        const res = await fetch(path, {
          method,
          headers: body ? { "Content-Type": "application/json" } : {},
          body: body ? JSON.stringify(body) : undefined
        });
        if (!res.ok) {
          const data = await res.json().catch(() => ({}));
          result.textContent = data.error || "Request failed.";
          return null;
        }
        result.textContent = "";
        return res.status === 204 ? {} : res.json();
      };

      document.getElementById("questionForm").addEventListener("submit", async (event) => {
        event.preventDefault();
        const form = new FormData(event.target);
        form.set("post", event.target.elements.post.checked ? "true" : "false");
        const res = await fetch("/api/rooms/" + roomID + "/questions", { method: "POST", body: form });
        const data = await res.json();
        result.textContent = res.ok ? "" : (data.error || "Could not add question.");
        if (res.ok) {
          event.target.reset();
        }
      });
      document.getElementById("closeQuestion").onclick = () => call("POST", "/api/rooms/" + roomID + "/close");
      document.getElementById("revealAll").onclick = () => call("POST", "/api/rooms/" + roomID + "/reveal-all");
      document.getElementById("nextQuestion").onclick = () => call("POST", "/api/rooms/" + roomID + "/next");
      document.getElementById("endRoom").onclick = () => {
        if (confirm("End this room for everyone?")) {
          call("POST", "/api/rooms/" + roomID + "/end");
        }
      };

      const el = (tag, text) => {
        const node = document.createElement(tag);
        if (text !== undefined) {
          node.textContent = text;
        }
        return node;
      };
      const render = {
        room(room) {
          document.getElementById("status").textContent = room.status;
        },
        questions(questions) {
          const list = document.getElementById("questions");
          list.replaceChildren(...questions.map((q) => {
            const item = el("li", q.text || "(picture)");
            if (!q.posted_at) {
              const post = el("button", "Post");
              post.onclick = () => call("POST", "/api/rooms/" + roomID + "/questions/" + q.id + "/post");
              item.append(" ", post);
            } else if (q.closed_at) {
              item.classList.add("closed");
            }
            return item;
          }));
        },
        answers(answers) {
          const grid = document.getElementById("answers");
          grid.replaceChildren(...answers.map((a) => {
            const card = el("figure");
            card.className = a.is_correct ? "correct" : "";
            const img = el("img");
            img.src = a.image_data;
            img.alt = a.display_name;
            const caption = el("figcaption", a.display_name);
            const mark = el("button", a.is_correct ? "Mark wrong" : "Mark right");
            mark.onclick = () => call("POST", "/api/answers/" + a.id + "/correct", { value: !a.is_correct });
            const reveal = el("button", a.is_revealed ? "Hide" : "Reveal");
            reveal.onclick = () => call("POST", "/api/answers/" + a.id + "/reveal", { value: !a.is_revealed });
            card.append(img, caption, mark, reveal);
            return card;
          }));
        },
        participants(participants) {
          const list = document.getElementById("participants");
          list.replaceChildren(...participants.map((p) => {
            const item = el("li", p.display_name + " (" + p.status + ")");
            const kick = el("button", "Kick");
            kick.onclick = () => {
              const reason = prompt("Reason (optional)") || "";
              call("POST", "/api/rooms/" + roomID + "/kick", { uid: p.uid, reason });
            };
            item.append(" ", kick);
            return item;
          }));
        },
        bans(bans) {
          const list = document.getElementById("bans");
          list.replaceChildren(...bans.map((b) => {
            const item = el("li", b.uid + (b.reason ? " - " + b.reason : ""));
            const unban = el("button", "Unban");
            unban.onclick = () => call("DELETE", "/api/rooms/" + roomID + "/bans/" + encodeURIComponent(b.uid));
            item.append(" ", unban);
            return item;
          }));
        }
      };

      const connect = () => {
        const scheme = location.protocol === "https:" ? "wss://" : "ws://";
        const ws = new WebSocket(scheme + location.host + "/ws/rooms/" + roomID + "?watch=room,questions,answers,participants,bans");
        ws.onmessage = (event) => {
          const msg = JSON.parse(event.data);
          if (msg.error) {
            result.textContent = msg.error;
            return;
          }
          if (render[msg.topic]) {
            render[msg.topic](msg.data || []);
          }
        };
        ws.onclose = () => setTimeout(connect, 2000);
      };
      connect();
    </script>
`)
		writeFoot(w)
		return nil
	})
}
