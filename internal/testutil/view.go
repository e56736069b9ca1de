package testutil

import (
	"fmt"
	"strings"
	"sync"

	"share/internal/share"
)

// RecordingView records every View call as a short event string:
// "show", "progress:NN" (rounded), "hide" and "alert:MSG".
type RecordingView struct {
	mu       sync.Mutex
	events   []string
	percents []float64
}

var _ share.View = (*RecordingView)(nil)

func NewRecordingView() *RecordingView {
	return &RecordingView{}
}

func (v *RecordingView) ShowProgress() { v.record("show") }
func (v *RecordingView) HideProgress() { v.record("hide") }

func (v *RecordingView) SetProgress(percent float64) {
	v.mu.Lock()
	v.percents = append(v.percents, percent)
	v.mu.Unlock()
	v.record(fmt.Sprintf("progress:%d", share.RoundPercent(percent)))
}

func (v *RecordingView) Alert(msg string) { v.record("alert:" + msg) }

func (v *RecordingView) record(e string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, e)
}

// Events returns a copy of the recorded events.
func (v *RecordingView) Events() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.events...)
}

// Percents returns every unrounded value passed to SetProgress.
func (v *RecordingView) Percents() []float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]float64(nil), v.percents...)
}

// Alerts returns only the alert messages, in order.
func (v *RecordingView) Alerts() []string {
	var alerts []string
	for _, e := range v.Events() {
		if msg, ok := strings.CutPrefix(e, "alert:"); ok {
			alerts = append(alerts, msg)
		}
	}
	return alerts
}

// HasEvent reports whether e was recorded.
func (v *RecordingView) HasEvent(e string) bool {
	for _, got := range v.Events() {
		if got == e {
			return true
		}
	}
	return false
}
