// daynight-wallpaper - switches the desktop wallpaper between a day and a night image
// Features:
// - Every poll interval (1s by default) the current local hour is compared against the
//   [Time] FROM/TO window in config.ini; inside the window the DAY image is used, outside it NIGHT.
// - When the phase flips, the wallpaper is set, the tray icon animates sun <-> moon and the new
//   phase is written to [State] BACKGROUND so a restart does not reapply it.
// - config.ini is created with defaults when missing and re-read on every tick; edits made in an
//   editor or through the tray menu ("Day starts at" / "Night starts at") apply on the next tick.
// - Runs in the system tray. Menu items: status, "Apply now", hour pickers, "Open config", "Exit".
// - `daynight-wallpaper --headless` runs without a tray until interrupted.

package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
