package handlers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/azurescope/explorer/pkg/logger"
)

var shellUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TermMessage is one frame of the shell WebSocket protocol.
type TermMessage struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// ResizeData carries terminal dimensions for resize frames
type ResizeData struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ShellSession is one PTY-backed shell for running az commands from the
// dashboard. The shell inherits the server's environment, so az sees the
// same login state the explorer does.
type ShellSession struct {
	ID       string
	Token    string
	PTY      *os.File
	Cmd      *exec.Cmd
	LastUsed time.Time
	WriteMu  sync.Mutex
	WS       *websocket.Conn
	Active   bool
}

// shellRegistry tracks live sessions and their access tokens
type shellRegistry struct {
	sessions map[string]*ShellSession
	byToken  map[string]string
	mu       sync.RWMutex
}

var shells = &shellRegistry{
	sessions: make(map[string]*ShellSession),
	byToken:  make(map[string]string),
}

// newShellToken creates an unguessable token gating shell access
func newShellToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	hash := sha256.Sum256(raw)

	// URL-safe so it survives a query parameter
	return base64.URLEncoding.EncodeToString(hash[:]), nil
}

// TermHandler serves the shell endpoint. A plain GET creates a session
// and returns its id and token; a WebSocket upgrade carrying both
// attaches to it. Sessions survive a dropped connection for a few
// minutes so a page reload can reattach.
func TermHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Query("id")
		shellToken := c.Query("shellToken")

		var session *ShellSession

		if sessionID != "" && shellToken != "" {
			shells.mu.RLock()
			if owner, ok := shells.byToken[shellToken]; ok && owner == sessionID {
				session = shells.sessions[sessionID]
			}
			shells.mu.RUnlock()

			if session == nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid session ID or shell token",
				})
				return
			}
		} else {
			var err error
			session, shellToken, err = newShellSession()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": fmt.Sprintf("Failed to create shell session: %v", err),
				})
				return
			}

			// A plain request gets the credentials for the follow-up
			// WebSocket connection.
			if !websocket.IsWebSocketUpgrade(c.Request) {
				c.JSON(http.StatusOK, gin.H{
					"id":         session.ID,
					"shellToken": shellToken,
				})
				return
			}

			sessionID = session.ID
		}

		ws, err := shellUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Log(logger.LevelError, nil, err, "upgrading shell connection")
			return
		}
		defer ws.Close()

		session.WS = ws
		session.LastUsed = time.Now()

		var wg sync.WaitGroup
		wg.Add(1)

		// PTY -> WebSocket
		go func() {
			defer wg.Done()

			buf := make([]byte, 4096)
			for {
				n, err := session.PTY.Read(buf)
				if err != nil {
					if err != io.EOF {
						logger.Log(logger.LevelError, nil, err, "reading from PTY")
						sendShellMessage(ws, "error", fmt.Sprintf("Error reading from shell: %v", err))
					}
					break
				}

				if n > 0 {
					data := string(buf[:n])

					session.WriteMu.Lock()
					if err := sendShellMessage(ws, "stdout", data); err != nil {
						session.WriteMu.Unlock()
						logger.Log(logger.LevelError, nil, err, "writing to websocket")
						break
					}
					session.WriteMu.Unlock()
				}
			}
		}()

		// WebSocket -> PTY
		for {
			var msg TermMessage
			err := ws.ReadJSON(&msg)
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Log(logger.LevelError, nil, err, "reading from websocket")
				}
				break
			}

			session.LastUsed = time.Now()

			switch msg.Type {
			case "stdin":
				if _, err := session.PTY.Write([]byte(msg.Data)); err != nil {
					logger.Log(logger.LevelError, nil, err, "writing to PTY")
					sendShellMessage(ws, "error", fmt.Sprintf("Error writing to shell: %v", err))
				}

			case "resize":
				var resizeData ResizeData
				if err := json.Unmarshal([]byte(msg.Data), &resizeData); err != nil {
					logger.Log(logger.LevelError, nil, err, "unmarshaling resize data")
					continue
				}

				pty.Setsize(session.PTY, &pty.Winsize{
					Rows: uint16(resizeData.Height),
					Cols: uint16(resizeData.Width),
					X:    0,
					Y:    0,
				})

				logger.Log(logger.LevelInfo, nil, nil, fmt.Sprintf("Shell resize: %dx%d", resizeData.Width, resizeData.Height))

			case "ping":
				session.WriteMu.Lock()
				err := sendShellMessage(ws, "pong", "")
				session.WriteMu.Unlock()

				if err != nil {
					logger.Log(logger.LevelError, nil, err, "writing pong message")
				}

			case "close":
				closeShellSession(session.ID)
				return
			}
		}

		wg.Wait()

		// Keep the session alive briefly so a reload can reattach.
		session.WS = nil

		go func() {
			time.Sleep(5 * time.Minute)

			shells.mu.RLock()
			sess, ok := shells.sessions[sessionID]
			shells.mu.RUnlock()

			if ok && sess.WS == nil {
				closeShellSession(sessionID)
			}
		}()
	}
}

// newShellSession starts a bash shell under a PTY and registers it
func newShellSession() (*ShellSession, string, error) {
	cmd := exec.Command("/bin/bash")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "~"
	}

	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		fmt.Sprintf("HOME=%s", homeDir),
		"COLORTERM=truecolor",
		"LANG=en_US.UTF-8",
		"LC_ALL=en_US.UTF-8")

	cmd.Dir = homeDir

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, "", fmt.Errorf("starting shell with PTY: %w", err)
	}

	pty.Setsize(ptmx, &pty.Winsize{
		Rows: 24,
		Cols: 80,
		X:    0,
		Y:    0,
	})

	// The client renders its own echo, so the PTY must not.
	disableEcho(ptmx)

	sessionID := uuid.New().String()

	shellToken, err := newShellToken()
	if err != nil {
		ptmx.Close()
		return nil, "", fmt.Errorf("generating shell token: %w", err)
	}

	session := &ShellSession{
		ID:       sessionID,
		Token:    shellToken,
		PTY:      ptmx,
		Cmd:      cmd,
		LastUsed: time.Now(),
		Active:   true,
	}

	shells.mu.Lock()
	shells.sessions[session.ID] = session
	shells.byToken[shellToken] = session.ID
	shells.mu.Unlock()

	return session, shellToken, nil
}

// closeShellSession tears a session down and forgets its token
func closeShellSession(id string) {
	shells.mu.Lock()
	defer shells.mu.Unlock()

	session, ok := shells.sessions[id]
	if !ok {
		return
	}

	session.Active = false

	if session.PTY != nil {
		session.PTY.Close()
	}

	if session.WS != nil {
		sendShellMessage(session.WS, "terminated", "Shell session closed")
		session.WS.Close()
	}

	delete(shells.byToken, session.Token)
	delete(shells.sessions, id)

	if session.Cmd != nil {
		session.Cmd.Wait()
	}
}

// StartShellCleanupTask reaps idle shell sessions in the background
func StartShellCleanupTask() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			reapIdleShells()
		}
	}()
}

// reapIdleShells closes sessions idle for more than 2 hours
func reapIdleShells() {
	shells.mu.Lock()
	defer shells.mu.Unlock()

	cutoff := time.Now().Add(-2 * time.Hour)
	for id, session := range shells.sessions {
		if session.LastUsed.Before(cutoff) {
			if session.PTY != nil {
				session.PTY.Close()
			}

			delete(shells.byToken, session.Token)
			delete(shells.sessions, id)

			logger.Log(logger.LevelInfo, nil, nil, fmt.Sprintf("Cleaned up idle shell session: %s", id))
		}
	}
}

// disableEcho turns off PTY echo and line buffering
func disableEcho(terminal *os.File) {
	cmd := exec.Command("stty", "-echo", "-icanon", "min", "1", "time", "0")
	cmd.Stdin = terminal
	cmd.Stdout = terminal
	cmd.Stderr = terminal

	if err := cmd.Run(); err != nil {
		logger.Log(logger.LevelWarn, nil, err, "Failed to disable shell echo")
	}
}

func sendShellMessage(ws *websocket.Conn, msgType, data string) error {
	msg := TermMessage{
		Type: msgType,
		Data: data,
	}
	return ws.WriteJSON(msg)
}
