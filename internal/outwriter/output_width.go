package outwriter

import (
	"os"

	"github.com/huangsam/peerscore/internal/contract"
	"golang.org/x/term"
)

// getMaxTableNameWidth calculates the maximum width for company names in table
// output based on terminal width and table configuration.
func getMaxTableNameWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth <= 0 {
		detected, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detected <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detected
		}
	}

	baseWidth := 40 // Rank + Status + Score + Label with borders/padding
	if cfg.Detail {
		baseWidth += 30
	}
	if cfg.Explain {
		baseWidth += 40
	}
	baseWidth += 10

	available := termWidth - baseWidth
	return max(12, min(available, 50))
}
