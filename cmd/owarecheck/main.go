package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/oware-session/internal/owarefast"
	"github.com/park285/oware-session/pkg/owaredto"
)

// owarecheck probes the game service and, optionally, a running bridge.
func main() {
	baseURL := os.Getenv("OWARE_SERVICE_BASE_URL")
	wsURL := os.Getenv("OWARE_BRIDGE_WS_URL")
	if baseURL == "" {
		log.Fatal("OWARE_SERVICE_BASE_URL is required")
	}

	client := owarefast.NewClient(baseURL, owarefast.WithTimeout(8*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := client.FetchState(ctx)
	if err != nil {
		log.Printf("/get_game_state error: %v", err)
	} else {
		log.Printf("/get_game_state ok: board=%v top=%d bottom=%d player=%s history=%d winner=%s",
			st.Board, st.TopScore, st.BottomScore, st.CurrentPlayer, st.HistoryLength, st.Winner)
	}

	if wsURL == "" {
		log.Println("OWARE_BRIDGE_WS_URL not set; skipping bridge check")
		return
	}

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ccancel()
	conn, _, err := websocket.Dial(cctx, wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		log.Printf("bridge connect error: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	// Observe for a short window
	octx, ocancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ocancel()
	for {
		var f owaredto.Frame
		if err := wsjson.Read(octx, conn, &f); err != nil {
			return
		}
		switch {
		case f.Board != nil:
			fmt.Printf("frame #%d %s thinking=%v undo=%v ai=%v\n", f.Seq, f.Board.Banner, f.Board.Thinking, f.Board.UndoEnabled, f.Board.AIMoveEnabled)
		case f.Error != nil:
			fmt.Printf("frame error %s: %s\n", f.Error.Code, f.Error.Message)
		}
	}
}
