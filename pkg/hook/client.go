package hook

import (
	"fmt"
	"net"
	"os"
	"time"
)

// DialTimeout bounds the whole exchange with the daemon. The hook runs
// inside an editor's stop path and must never hang it.
const DialTimeout = 5 * time.Second

// Send delivers text to the daemon over its Unix socket. The daemon
// replies with nothing; the hook's job ends once the bytes are written.
func Send(socketPath, text string) error {
	if _, err := os.Stat(socketPath); err != nil {
		return fmt.Errorf("daemon not running (no socket at %s)", socketPath)
	}

	conn, err := net.DialTimeout("unix", socketPath, DialTimeout)
	if err != nil {
		return fmt.Errorf("dial daemon: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(DialTimeout))
	if _, err := conn.Write([]byte(text)); err != nil {
		return fmt.Errorf("send text: %w", err)
	}
	return nil
}
