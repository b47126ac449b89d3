package config

import "github.com/spf13/cobra"

// RegisterFlags adds the global flags read by Load to cmd.
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}
	f := cmd.PersistentFlags()

	// output
	f.BoolP("verbose", "v", false, "Log debug detail to stderr")
	f.BoolP("quiet", "q", false, "Only log errors")
	f.Bool("json", false, "Print machine-readable JSON instead of text")

	// page loading
	f.String("timeout", DefaultHTTPTimeout.String(), "Navigation timeout per page")
	f.String("settle-timeout", DefaultSettleTimeout.String(), "Longest wait for the network to go quiet after load")
	f.String("user-agent", "", "User agent sent with every request (default "+DefaultUserAgent+")")
	f.String("proxy", "", "Route page loads through this HTTP or SOCKS5 proxy")
	f.Bool("headful", false, "Show the browser window instead of running headless")

	f.String("settings", "", "Settings file (default "+DefaultSettingsPath()+")")
}
