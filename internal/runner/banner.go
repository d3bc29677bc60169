package runner

import (
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/peerfinder/pkg/version"
)

const banner = `
                         ____ _             __
    ____  ___  ___  ____/ __/(_)____  ____/ /___  _____
   / __ \/ _ \/ _ \/ __/ /_ / // __ \/ __  // _ \/ ___/
  / /_/ /  __/  __/ / / __// // / / / /_/ //  __/ /
 / .___/\___/\___/_/ /_/  /_//_/ /_/\__,_/ \___/_/
/_/
`

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\n", banner)
	gologger.Print().Msgf("\t\t%s\n\n", version.GetVersion())
}
