// Package versionprobe fetches the robot's firmware version strings over
// anonymous FTP once per connected episode.
package versionprobe

import (
	"context"
	"io"
	"strings"

	"github.com/jlaffaye/ftp"
)

const (
	libVersionPath = "/tmp/frc_versions/FRC_Lib_Version.ini"
	pcmVersionPath = "/tmp/frc_versions/PCM-0-versions.ini"
	pdpVersionPath = "/tmp/frc_versions/PDP-0-versions.ini"

	currentVersionKey = "currentVersion"
	versionFieldLength = 4

	ftpPort = "21"
)

// Result carries whichever version strings were successfully fetched and
// parsed; unfetched fields stay empty.
type Result struct {
	LibVersion string
	PCMVersion string
	PDPVersion string
}

// Prober issues the three fixed-path FTP fetches.
type Prober struct {
	dial func(ctx context.Context, addr string) (*ftp.ServerConn, error)
}

// New builds a Prober that dials the robot over anonymous FTP.
func New() *Prober {
	return &Prober{
		dial: func(ctx context.Context, addr string) (*ftp.ServerConn, error) {
			return ftp.Dial(addr, ftp.DialWithContext(ctx))
		},
	}
}

// Fetch issues the three fetches against host and returns whatever
// parsed successfully. A failed or cancelled fetch leaves the
// corresponding field empty; Fetch itself never returns an error,
// matching the core's silent-drop failure policy for this side channel.
func (p *Prober) Fetch(ctx context.Context, host string) Result {
	conn, err := p.dial(ctx, host+":"+ftpPort)
	if err != nil {
		return Result{}
	}
	defer conn.Quit()

	if err := conn.Login("anonymous", "anonymous"); err != nil {
		return Result{}
	}

	var result Result
	if body, ok := fetchFile(conn, libVersionPath); ok {
		result.LibVersion = strings.TrimSpace(body)
	}
	if body, ok := fetchFile(conn, pcmVersionPath); ok {
		result.PCMVersion = parseCurrentVersion(body)
	}
	if body, ok := fetchFile(conn, pdpVersionPath); ok {
		result.PDPVersion = parseCurrentVersion(body)
	}

	return result
}

func fetchFile(conn *ftp.ServerConn, path string) (string, bool) {
	resp, err := conn.Retr(path)
	if err != nil {
		return "", false
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// parseCurrentVersion extracts the four characters starting one
// position after the end of the "currentVersion" key, skipping the
// delimiter between key and value, per the preserved on-wire offset.
func parseCurrentVersion(body string) string {
	idx := strings.Index(body, currentVersionKey)
	if idx < 0 {
		return ""
	}

	start := idx + len(currentVersionKey) + 1
	if start >= len(body) {
		return ""
	}

	end := start + versionFieldLength
	if end > len(body) {
		end = len(body)
	}

	return body[start:end]
}
