package infra

import (
	"fmt"

	"github.com/s2ungeda/kac/internal/config"
)

// ANSI color codes
const (
	ColorReset   = "\033[0m"
	ColorRed     = "\033[31m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorBlue    = "\033[34m"
	ColorMagenta = "\033[35m"
	ColorCyan    = "\033[36m"
)

// PrintBanner prints the startup banner, naming which venues are enabled
// and whether the kill switch is armed.
func PrintBanner(cfg *config.Config) {
	color := ColorCyan
	if cfg.Risk.KillSwitch {
		color = ColorRed
	}

	enabled := []string{}
	for name, v := range map[string]config.VenueConfig{
		"upbit": cfg.Venues.Upbit, "bithumb": cfg.Venues.Bithumb,
		"binance": cfg.Venues.Binance, "mexc": cfg.Venues.Mexc,
	} {
		if v.Enabled {
			enabled = append(enabled, name)
		}
	}

	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Printf("%s#               kac cross-venue arbitrage engine          #%s\n", color, ColorReset)
	fmt.Printf("%s#   VERSION: %-36s #%s\n", color, cfg.App.Version, ColorReset)
	fmt.Printf("%s#   PAIR:    %-36s #%s\n", color, cfg.Symbols.Primary+"/"+cfg.Symbols.Secondary, ColorReset)
	fmt.Printf("%s#   VENUES:  %-36s #%s\n", color, fmt.Sprint(enabled), ColorReset)
	if cfg.Risk.KillSwitch {
		fmt.Printf("%s#   KILL SWITCH ARMED: NEW DISPATCH IS BLOCKED            #%s\n", ColorRed, ColorReset)
	}
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Println()
}
