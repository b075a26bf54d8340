package server

import (
	"fmt"
	"io"
)

const defaultBannerText = `
  __ _  __ _ _   _(_)_   _____ _ __
 / _` + "`" + ` |/ _` + "`" + ` | | | | \ \ / / _ \ '__|
| (_| | (_| | |_| | |\ V /  __/ |
 \__,_|\__, |\__,_|_| \_/ \___|_|
          |_|`

// printBanner writes the startup banner. Purely cosmetic; failures to write
// are ignored so a broken writer can never affect startup.
func printBanner(w io.Writer, text string) {
	if w == nil {
		return
	}
	fmt.Fprintln(w, text)
	fmt.Fprintf(w, " :: aquiver ::        (v%s)\n\n", Version)
}
