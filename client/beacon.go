package client

import "encoding/json"

// beaconMaxBytes is the transport-size ceiling for a single beacon payload.
// Browser beacon APIs reject bodies beyond roughly this size.
const beaconMaxBytes = 60 * 1024

// FlushBeacon synchronously hands the entire buffer to send, for page-unload
// style flushing where the asynchronous path cannot be awaited. Payloads over
// the beacon size ceiling are split into halves recursively until each half
// fits. send reports whether the payload was handed off; events in payloads
// that fail to hand off are dropped, since there is no second chance at
// unload time.
func (t *Transport) FlushBeacon(send func(payload []byte) bool) {
	t.mu.Lock()
	batch := t.buffer
	t.buffer = nil
	t.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	t.beaconSend(batch, send)
}

func (t *Transport) beaconSend(batch []Event, send func(payload []byte) bool) {
	payload, err := json.Marshal(envelope{Events: batch, SDKVersion: Version})
	if err != nil {
		t.logger.Warn().Err(err).Msg("beacon batch not serializable, discarded")
		return
	}

	if len(payload) > beaconMaxBytes && len(batch) > 1 {
		mid := len(batch) / 2
		t.beaconSend(batch[:mid], send)
		t.beaconSend(batch[mid:], send)
		return
	}

	if !send(payload) {
		t.logger.Warn().Int("batch_size", len(batch)).Msg("beacon handoff refused, events dropped")
	}
}
