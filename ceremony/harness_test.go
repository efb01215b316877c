//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package ceremony

import "testing"

// answerFunc computes a scripted response for one input request.
type answerFunc func(*InputRequest) InputResponse

func withText(v string) answerFunc {
	return func(*InputRequest) InputResponse { return InputResponse{Text: v} }
}

func withSecret(v string) answerFunc {
	return func(*InputRequest) InputResponse { return InputResponse{Secret: v} }
}

func withBool(v bool) answerFunc {
	return func(*InputRequest) InputResponse { return InputResponse{Bool: v} }
}

func withInt(v int) answerFunc {
	return func(*InputRequest) InputResponse { return InputResponse{Integer: v} }
}

// scriptedSink answers input-request events in a fixed, pre-recorded
// order. Because the engine is single-threaded cooperative (it blocks
// on its own reply channel between Emit calls), the script can answer
// synchronously from within Emit without a second goroutine.
type scriptedSink struct {
	t      *testing.T
	script []answerFunc
	idx    int
	events []Event
}

func (s *scriptedSink) Emit(e Event) {
	s.events = append(s.events, e)
	if e.Type != EventInputRequested {
		return
	}
	if s.idx >= len(s.script) {
		s.t.Fatalf("unexpected input request #%d: kind=%s prompt=%q", s.idx, e.Request.Kind, e.Request.Prompt)
	}
	resp := s.script[s.idx](e.Request)
	s.idx++
	e.Request.Reply <- resp
}

func (s *scriptedSink) completionEvent() (Event, bool) {
	for _, e := range s.events {
		if e.Type == EventOperationCompleted {
			return e, true
		}
	}
	return Event{}, false
}
