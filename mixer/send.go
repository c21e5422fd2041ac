package mixer

import "github.com/z-e-chan/redfish"

// Send is a parallel routing from one mix group into another with an
// amplitude (spec §3, §4.7 "Sends carry a source mix-group handle, a
// destination mix-group handle, and an amplitude").
type Send struct {
	Source    redfish.Handle
	Dest      redfish.Handle
	Amplitude float64
	active    bool
}
