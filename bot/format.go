package bot

import (
	"fmt"
	"net/url"
)

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatSize renders a byte count with binary (1024-based) units and
// two decimal places, e.g. "2.00 KB".
func FormatSize(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	size := float64(n)
	i := 0
	for size >= 1024 && i < len(sizeUnits)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", size, sizeUnits[i])
}

// DeepLink builds the t.me URL that opens the bot with the token as
// start parameter.
func DeepLink(username, token string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", username, token)
}

// shareURL builds Telegram's share dialog URL for forwarding a link to
// friends.
func shareURL(link, fileName string) string {
	text := fmt.Sprintf("📁 Download %s via File Share Bot", fileName)
	return fmt.Sprintf("https://t.me/share/url?url=%s&text=%s",
		url.QueryEscape(link), url.QueryEscape(text))
}
