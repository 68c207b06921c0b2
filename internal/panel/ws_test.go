package panel

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewhub/internal/profile"
	"reviewhub/internal/storage"
)

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
	}{
		{`{"type":"post","text":"hi"}`, Post{Text: "hi"}},
		{`{"type":"UPVOTE","cid":"a1"}`, Upvote{CID: "a1"}},
		{`{"type":"downvote","cid":"a1"}`, Downvote{CID: "a1"}},
		{`plain words`, Post{Text: "plain words"}},
	}
	for _, tt := range tests {
		got, err := DecodeAction([]byte(tt.in))
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := DecodeAction([]byte(`{"type":"delete","cid":"a1"}`))
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func wsServer(t *testing.T, tokens profile.TokenService) (*httptest.Server, *Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := NewService(storage.NewMemory(), &seqIDs{}, nil, nil)
	hub := NewHub()
	r := gin.New()
	r.Use(profile.Middleware(tokens, nil))
	r.GET("/api/reviews/:id/panel/ws", WSHandler(svc, hub, func(id int) bool { return id == 5 }))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub
}

func dial(t *testing.T, srv *httptest.Server, path, cookie string) *websocket.Conn {
	t.Helper()
	h := http.Header{}
	if cookie != "" {
		h.Set("Cookie", profile.CookieName+"="+cookie)
	}
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	ws, _, err := websocket.DefaultDialer.Dial(url, h)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func read(t *testing.T, ws *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m Message
	require.NoError(t, ws.ReadJSON(&m))
	return m
}

func TestWSSessionSharesPanelAcrossTabs(t *testing.T) {
	tokens := profile.TokenService{Secret: []byte("s"), Issuer: "reviewhub", Duration: time.Hour}
	srv, hub := wsServer(t, tokens)
	cookie, _, err := tokens.Sign("p-1")
	require.NoError(t, err)

	tab1 := dial(t, srv, "/api/reviews/5/panel/ws", cookie)
	tab2 := dial(t, srv, "/api/reviews/5/panel/ws", cookie)

	for _, ws := range []*websocket.Conn{tab1, tab2} {
		m := read(t, ws)
		assert.Equal(t, "panel", m.Type)
		assert.Equal(t, "(0)", m.Panel.Count)
	}
	assert.Equal(t, 2, hub.Sessions(RoomKey("p-1", 5)))

	require.NoError(t, tab1.WriteJSON(map[string]string{"type": "post", "text": "Great product"}))
	for _, ws := range []*websocket.Conn{tab1, tab2} {
		m := read(t, ws)
		require.NotNil(t, m.Panel)
		assert.Equal(t, "(1)", m.Panel.Count)
		assert.Equal(t, "Great product", m.Panel.Rows[0].Text)
	}

	// an empty post is answered to the sender only
	require.NoError(t, tab2.WriteJSON(map[string]string{"type": "post", "text": "  "}))
	m := read(t, tab2)
	assert.Equal(t, "(1)", m.Panel.Count)
	assert.Equal(t, "  ", m.Panel.Draft)

	require.NoError(t, tab2.WriteJSON(map[string]string{"type": "upvote", "cid": "c1"}))
	for _, ws := range []*websocket.Conn{tab1, tab2} {
		m := read(t, ws)
		assert.Equal(t, 1, m.Panel.Rows[0].Up)
	}

	require.NoError(t, tab1.WriteJSON(map[string]string{"type": "pin", "cid": "c1"}))
	m = read(t, tab1)
	assert.Equal(t, "error", m.Type)
	assert.Contains(t, m.Error, "unknown action")
}

func TestWSUnknownReview(t *testing.T) {
	srv, _ := wsServer(t, profile.TokenService{Secret: []byte("s"), Duration: time.Hour})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/reviews/99/panel/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
