package text

import "fmt"

// InvalidOption reports a tag or viewer configuration value out of range
// (§7 "InvalidOption(name, value)").
type InvalidOption struct {
	Name  string
	Value string
}

func (e *InvalidOption) Error() string {
	return fmt.Sprintf("text: invalid option %s=%q", e.Name, e.Value)
}

// AfterSyncFailed reports a tag-binding or after-sync callback that
// panicked instead of returning normally (§7 "AfterSyncFailed(tcl-style
// backtrace)"). Source identifies which callback failed ("binding:<event>",
// "after-sync:<viewer>" or "sync-event:<viewer>"); Backtrace carries the recovered value plus a
// stack trace, the Go analogue of Tcl's bgerror backtrace.
type AfterSyncFailed struct {
	Source    string
	Backtrace string
}

func (e *AfterSyncFailed) Error() string {
	return fmt.Sprintf("text: %s panicked: %s", e.Source, e.Backtrace)
}
