package narrator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Attach(w, r, userID)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })

	// Attach registers asynchronously relative to the dial returning.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := hub.lookup(userID); ok {
			return ws
		}
		if time.Now().After(deadline) {
			t.Fatal("connection never registered")
		}
		time.Sleep(time.Millisecond)
	}
}

func readEnvelope(t *testing.T, ws *websocket.Conn) Envelope {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	if err := ws.ReadJSON(&env); err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	return env
}

func TestSpeakPushesCancelThenUtterance(t *testing.T) {
	hub := NewHub()
	ws := dialHub(t, hub, "user-1")

	hub.For("user-1").Speak("Tell me about your last project.")

	first := readEnvelope(t, ws)
	if first.Type != "cancel" {
		t.Fatalf("first frame type = %q, want cancel", first.Type)
	}

	second := readEnvelope(t, ws)
	if second.Type != "speak" {
		t.Fatalf("second frame type = %q, want speak", second.Type)
	}
	if second.Text != "Tell me about your last project." {
		t.Fatalf("speak text = %q", second.Text)
	}
	if second.UtteranceID == "" {
		t.Fatal("speak frame must carry an utterance ID")
	}
	if second.Timestamp == 0 {
		t.Fatal("speak frame must carry a timestamp")
	}
}

func TestCancelPushesSingleFrame(t *testing.T) {
	hub := NewHub()
	ws := dialHub(t, hub, "user-1")

	hub.For("user-1").Cancel()

	env := readEnvelope(t, ws)
	if env.Type != "cancel" || env.Text != "" {
		t.Fatalf("frame = %+v, want bare cancel", env)
	}
}

func TestSpeakWithoutConnectionIsSilent(t *testing.T) {
	hub := NewHub()

	// Nothing attached: both calls must be harmless no-ops.
	n := hub.For("ghost")
	n.Speak("hello?")
	n.Cancel()
}

func TestCloseUserDropsConnection(t *testing.T) {
	hub := NewHub()
	ws := dialHub(t, hub, "user-1")

	hub.CloseUser("user-1")

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := ws.ReadMessage(); err == nil {
		t.Fatal("expected the connection to be closed")
	}
	if _, ok := hub.lookup("user-1"); ok {
		t.Fatal("connection must be deregistered")
	}
}

func TestNewConnectionReplacesPrevious(t *testing.T) {
	hub := NewHub()
	old := dialHub(t, hub, "user-1")
	fresh := dialHub(t, hub, "user-1")

	// Registration of the fresh connection closes the old one.
	old.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := old.ReadMessage(); err == nil {
		t.Fatal("old connection should have been closed on replacement")
	}

	hub.For("user-1").Speak("still here")

	env := readEnvelope(t, fresh)
	if env.Type != "cancel" {
		t.Fatalf("fresh connection frame = %+v", env)
	}
}

func TestNoopNarrator(t *testing.T) {
	var n Narrator = Noop{}
	n.Speak("nothing happens")
	n.Cancel()
}
