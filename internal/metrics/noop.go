package metrics

import "time"

// Noop discards everything.
type Noop struct{}

var _ Recorder = Noop{}

func (Noop) RecordIdentityResolution(provider, outcome string)                   {}
func (Noop) RecordLogin(method string, success bool)                             {}
func (Noop) RecordLogout()                                                       {}
func (Noop) RecordHTTPRequest(method, route string, status int, d time.Duration) {}
func (Noop) HTTPRequestStarted()                                                 {}
func (Noop) HTTPRequestFinished()                                                {}
