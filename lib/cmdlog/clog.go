// Package cmdlog prints styled SCPI traffic for interactive example
// programs.
package cmdlog

import (
	"log"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gotmc/znb"
)

var (
	CmdStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	RespStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
)

// PrettyFuncs returns query and command helpers that log every exchange with
// the instrument, for example programs where a failed command should be shown
// and skipped rather than aborted on.
func PrettyFuncs(vna *znb.VNA) (query func(string) string, cmd func(string)) {
	query = func(q string) string {
		s, err := vna.Query(q)
		if err != nil {
			log.Printf("query %s: error %s", CmdStyle.Render(q), err)
			return ""
		}
		s = strings.TrimSpace(s)
		if len(s) == 0 {
			log.Printf("%s: %s", CmdStyle.Render(q), RespStyle.Render("<no response>"))
			return s
		}
		log.Printf("%s: [%d] %s", CmdStyle.Render(q), len(s), RespStyle.Render(s))
		return s
	}
	cmd = func(c string) {
		if err := vna.Command(c); err != nil {
			log.Printf("cmd %s: error %s", CmdStyle.Render(c), err)
		} else {
			log.Printf("%s()", CmdStyle.Render(c))
		}
	}
	return query, cmd
}
