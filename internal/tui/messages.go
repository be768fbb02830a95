package tui

import "time"

// tickMsg drives the non-blocking drain of fetched feeds.
type tickMsg time.Time

type browserErrMsg struct {
	err error
}
