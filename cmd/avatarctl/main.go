// avatarctl is a command line client for a running avatard: it reads
// status, swaps poses, adjusts runtime multipliers, and can tail the
// frame stream.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mirrorstage/go-avatar/internal/httpc"
	"github.com/mirrorstage/go-avatar/pkg/protocol"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: avatarctl [-addr host:port] <command> [args]

Commands:
  status                 Print the service status
  poses                  List registered poses
  pose <name-or-path>    Swap the active pose
  motion <scale>         Set the motion intensity multiplier
  lighting <scale>       Set the lighting scale
  viewport <w> <h>       Report container dimensions
  watch                  Tail the frame and status stream
  ping                   Measure round-trip latency
`)
	os.Exit(2)
}

func main() {
	addr := flag.String("addr", "localhost:8090", "avatard address")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	var err error
	switch args[0] {
	case "status":
		err = cmdStatus(*addr)
	case "poses":
		err = cmdPoses(*addr)
	case "pose":
		if len(args) < 2 {
			usage()
		}
		err = cmdPose(*addr, args[1])
	case "motion":
		if len(args) < 2 {
			usage()
		}
		err = cmdScale(*addr, "/api/motion", args[1])
	case "lighting":
		if len(args) < 2 {
			usage()
		}
		err = cmdScale(*addr, "/api/lighting", args[1])
	case "viewport":
		if len(args) < 3 {
			usage()
		}
		err = cmdViewport(*addr, args[1], args[2])
	case "watch":
		err = cmdWatch(*addr)
	case "ping":
		err = cmdPing(*addr)
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func apiURL(addr, path string) string {
	return "http://" + addr + path
}

func wsURL(addr, path string) string {
	return "ws://" + addr + path
}

// getJSON fetches and decodes one API response.
func getJSON(url string, v interface{}) error {
	resp, err := httpc.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, httpc.MaxFetchBytes))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %s", resp.Status, body)
	}
	return json.Unmarshal(body, v)
}

// postJSON posts a request body and decodes the response.
func postJSON(url string, req, v interface{}) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	resp, err := httpc.Post(url, "application/json", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, httpc.MaxFetchBytes))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %s", resp.Status, body)
	}
	if v == nil {
		return nil
	}
	return json.Unmarshal(body, v)
}

func cmdStatus(addr string) error {
	var st protocol.StatusData
	if err := getJSON(apiURL(addr, "/api/status"), &st); err != nil {
		return err
	}

	fmt.Printf("Model:       %s (%s, %d joints)\n", st.Model, st.Kind, st.Joints)
	fmt.Printf("Pose:        %s\n", orDash(st.Pose))
	fmt.Printf("Motion:      %.2fx\n", st.MotionScale)
	fmt.Printf("Lighting:    dir %.2f / amb %.2f / rim %.2f (scale %.2f)\n",
		st.Lighting.Directional, st.Lighting.Ambient, st.Lighting.Rim, st.Lighting.Scale)
	fmt.Printf("Resolution:  %dx%d (container %dx%d)\n",
		st.Resolution[0], st.Resolution[1], st.Container[0], st.Container[1])
	fmt.Printf("Clients:     %d\n", st.Clients)
	fmt.Printf("Uptime:      %s\n", (time.Duration(st.UptimeSec) * time.Second).String())
	return nil
}

func cmdPoses(addr string) error {
	var body struct {
		Poses []string `json:"poses"`
		Count int      `json:"count"`
	}
	if err := getJSON(apiURL(addr, "/api/poses"), &body); err != nil {
		return err
	}
	for _, name := range body.Poses {
		fmt.Println(name)
	}
	if body.Count == 0 {
		fmt.Println("(no poses registered)")
	}
	return nil
}

func cmdPose(addr, selector string) error {
	req := map[string]string{"name": selector}
	if looksLikePath(selector) {
		req = map[string]string{"path": selector}
	}

	var out struct {
		Pose  string `json:"pose"`
		Bones int    `json:"bones"`
	}
	if err := postJSON(apiURL(addr, "/api/pose"), req, &out); err != nil {
		return err
	}
	fmt.Printf("🎭 Pose: %s (%d bones)\n", out.Pose, out.Bones)
	return nil
}

func cmdScale(addr, path, raw string) error {
	scale, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("bad scale %q: %w", raw, err)
	}

	var out map[string]interface{}
	if err := postJSON(apiURL(addr, path), map[string]float64{"scale": scale}, &out); err != nil {
		return err
	}
	fmt.Printf("✅ %v\n", out)
	return nil
}

func cmdViewport(addr, rawW, rawH string) error {
	w, err := strconv.Atoi(rawW)
	if err != nil {
		return fmt.Errorf("bad width %q: %w", rawW, err)
	}
	h, err := strconv.Atoi(rawH)
	if err != nil {
		return fmt.Errorf("bad height %q: %w", rawH, err)
	}

	var out map[string]interface{}
	if err := postJSON(apiURL(addr, "/api/viewport"), map[string]int{"width": w, "height": h}, &out); err != nil {
		return err
	}
	fmt.Printf("✅ %v\n", out)
	return nil
}

// cmdWatch tails frames and status refreshes until interrupted.
func cmdWatch(addr string) error {
	conn, err := dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				done <- err
				return
			}
			msg, err := protocol.ParseMessage(data)
			if err != nil {
				continue
			}
			switch msg.Type {
			case protocol.TypeFrame:
				frame, err := msg.GetFrameData()
				if err != nil {
					continue
				}
				fmt.Printf("seq=%d t=%.2fs state=%s joints=%d\n",
					frame.Seq, frame.T, frame.State, len(frame.Joints))
			case protocol.TypeStatus:
				st, err := msg.GetStatusData()
				if err != nil {
					continue
				}
				fmt.Printf("status pose=%s motion=%.2fx lighting=%.2f clients=%d\n",
					orDash(st.Pose), st.MotionScale, st.Lighting.Scale, st.Clients)
			}
		}
	}()

	select {
	case <-interrupt:
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return nil
	case err := <-done:
		return err
	}
}

// cmdPing measures application-level round-trip latency.
func cmdPing(addr string) error {
	conn, err := dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	id := uuid.NewString()
	ping, err := protocol.NewPingMessage(id)
	if err != nil {
		return err
	}
	raw, err := ping.Bytes()
	if err != nil {
		return err
	}

	start := time.Now()
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		return err
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("no pong: %w", err)
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil || msg.Type != protocol.TypePong {
			continue
		}
		var pong protocol.PongData
		if err := msg.ParseData(&pong); err != nil || pong.ID != id {
			continue
		}
		fmt.Printf("🏓 %.1fms\n", float64(time.Since(start).Microseconds())/1000)
		return nil
	}
}

func dial(addr string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(wsURL(addr, "/ws/avatar"), nil)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return conn, nil
}

func looksLikePath(s string) bool {
	for _, r := range s {
		if r == '/' || r == '\\' || r == '.' {
			return true
		}
	}
	return false
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
