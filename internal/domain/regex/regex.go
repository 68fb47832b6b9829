// Package regex compiles and caches various regex expressions.
package regex

import (
	"regexp"
	"sync"
)

var (
	// DownloadProgress matches yt-dlp progress lines such as "[download]  45.6% of 10.00MiB".
	DownloadProgress = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(`\[download\]\s+~?\s*(\d+(?:\.\d+)?)%`)
	})

	// AnsiEscape matches ANSI color codes.
	AnsiEscape = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(`\x1b\[[0-9;]*m`)
	})

	// SelectRange matches a playlist selection item ("3" or "3-5").
	SelectRange = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(`^(\d+)(?:-(\d+))?$`)
	})
)
