package web

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func renderString(t *testing.T, component templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := component.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestHomeSignedOut(t *testing.T) {
	html := renderString(t, Home(HomePage{SignInReady: true, Flash: "<b>hi</b>"}))
	if !strings.Contains(html, `href="/auth/login"`) {
		t.Fatalf("expected sign-in link")
	}
	if strings.Contains(html, "<b>hi</b>") || !strings.Contains(html, "&lt;b&gt;hi&lt;/b&gt;") {
		t.Fatalf("flash was not escaped")
	}
	if strings.Contains(html, `id="createForm"`) {
		t.Fatalf("signed-out visitors should not see the create form")
	}

	html = renderString(t, Home(HomePage{}))
	if !strings.Contains(html, "Sign in unavailable") {
		t.Fatalf("expected unavailable notice without a provider")
	}
}

func TestHomeListsHostedRooms(t *testing.T) {
	html := renderString(t, Home(HomePage{
		Viewer:       &Viewer{UID: "ada", DisplayName: "Ada <3"},
		MaxPlayers:   50,
		DefaultLimit: 10,
		Rooms: []RoomLink{
			{Title: "Quiz & friends", Code: "ABC234", Status: "waiting", HostURL: "/host/7"},
		},
	}))
	for _, want := range []string{
		`id="createForm"`,
		`max="50"`,
		"default 10",
		`href="/host/7"`,
		"Quiz &amp; friends",
		"Ada &lt;3",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("home page missing %q", want)
		}
	}
}

func TestPlayViewRequiresViewer(t *testing.T) {
	html := renderString(t, PlayView(PlayPage{RoomID: 3, Code: "ABC234", Title: "Night"}))
	if !strings.Contains(html, "/auth/login?next=/play/ABC234") {
		t.Fatalf("expected sign-in link back to the room")
	}
	if strings.Contains(html, `id="board"`) {
		t.Fatalf("canvas should not render without a viewer")
	}

	html = renderString(t, PlayView(PlayPage{RoomID: 3, Code: "ABC234", Title: "Night", Viewer: &Viewer{UID: "ada"}, CanvasW: 320, CanvasH: 240}))
	if !strings.Contains(html, `width="320" height="240"`) {
		t.Fatalf("expected sized canvas")
	}
	if !strings.Contains(html, "/ws/rooms/") {
		t.Fatalf("expected drawing socket")
	}
}

func TestHostAndBroadcastViewsEscapeTitle(t *testing.T) {
	title := `</script><script>alert(1)</script>`
	for name, html := range map[string]string{
		"host":      renderString(t, HostView(HostPage{RoomID: 1, Code: "ABC234", Title: title, Status: "waiting", PlayURL: "/play/ABC234", Broadcast: "/broadcast/1"})),
		"broadcast": renderString(t, BroadcastView(BroadcastPage{RoomID: 1, Code: "ABC234", Title: title})),
	} {
		if strings.Contains(html, title) {
			t.Errorf("%s view did not escape the title", name)
		}
		if !strings.Contains(html, "ABC234") {
			t.Errorf("%s view is missing the room code", name)
		}
	}
}

func TestPageURL(t *testing.T) {
	if got := PageURL("/api/history", 2, 20); got != "/api/history?page=2&per_page=20" {
		t.Fatalf("unexpected url %q", got)
	}
	if got := PageURL("/api/rooms/1/history?x=1", 3, 5); got != "/api/rooms/1/history?x=1&page=3&per_page=5" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestAssetPathLeavesOtherPathsAlone(t *testing.T) {
	if got := assetPath("/blobs/a.png"); got != "/blobs/a.png" {
		t.Fatalf("unexpected asset path %q", got)
	}
	if got := appendAssetVersion("/static/app.css?x=1", "abc"); got != "/static/app.css?x=1&v=abc" {
		t.Fatalf("unexpected versioned path %q", got)
	}
}
