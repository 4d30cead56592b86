/* SPDX-License-Identifier: MIT */

package bridge

import (
	"encoding/json"
	"testing"
)

func TestEncodeDecodeEnvelopeRoundTrip(t *testing.T) {
	body, err := encode(KindStatus, PeerStatus{Paired: true})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}
	if env.Type != KindStatus {
		t.Fatalf("type = %q, want %q", env.Type, KindStatus)
	}

	var status PeerStatus
	if err := json.Unmarshal(env.Data, &status); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if !status.Paired {
		t.Fatal("paired flag lost in round trip")
	}
}

func TestDecodeEnvelopeUnknownKindDoesNotError(t *testing.T) {
	env, err := decodeEnvelope(`{"type":"somethingNew","data":{"x":1}}`)
	if err != nil {
		t.Fatalf("unknown kind should decode, not error: %v", err)
	}
	if env.Type != Kind("somethingNew") {
		t.Fatalf("type = %q", env.Type)
	}
}

func TestDecodeEnvelopeMalformedJSON(t *testing.T) {
	if _, err := decodeEnvelope(`not json`); err == nil {
		t.Fatal("expected an error for malformed envelope")
	}
}
