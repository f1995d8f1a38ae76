// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package camera

import (
	"errors"
	"slices"
	"testing"

	json "github.com/goccy/go-json"
)

const sampleEvent = `[
	{"type":"availableApi","names":["getEvent","actZoom"]},
	{"type":"cameraStatus","cameraStatus":"IDLE"},
	{"type":"zoomInformation","zoomPosition":40,"zoomNumberBox":1,"zoomIndexCurrentBox":0,"zoomPositionCurrentBox":40},
	{"type":"liveviewStatus","liveviewStatus":true},
	null,
	[{"type":"postviewImageSize","currentPostviewImageSize":"2M","postviewImageSizeCandidates":["2M","Original"]}],
	{"type":"selfTimer","currentSelfTimer":0,"selfTimerCandidates":[0,2,10]},
	{"type":"shootMode","currentShootMode":"still","shootModeCandidates":["still","movie"]},
	{"type":"exposureCompensation","currentExposureCompensation":1,"maxExposureCompensation":6,"minExposureCompensation":-6,"stepIndexOfExposureCompensation":1},
	{"type":"programShift","isShifted":true},
	{"type":"somethingNew","value":1}
]`

func decodeSample(t *testing.T, doc string) *Event {
	t.Helper()
	var result []json.RawMessage
	if err := json.Unmarshal([]byte(doc), &result); err != nil {
		t.Fatal(err)
	}
	ev, err := parseEvent(result)
	if err != nil {
		t.Fatalf("parseEvent() = %v", err)
	}
	return ev
}

func TestParseEvent(t *testing.T) {
	ev := decodeSample(t, sampleEvent)

	if !slices.Equal(ev.AvailableAPIs, []string{"getEvent", "actZoom"}) {
		t.Errorf("AvailableAPIs = %q", ev.AvailableAPIs)
	}
	if ev.CameraStatus == nil || *ev.CameraStatus != "IDLE" {
		t.Errorf("CameraStatus = %v", ev.CameraStatus)
	}
	if ev.Zoom == nil || ev.Zoom.Position != 40 || ev.Zoom.NumberBox != 1 {
		t.Errorf("Zoom = %+v", ev.Zoom)
	}
	if ev.LiveviewAvailable == nil || !*ev.LiveviewAvailable {
		t.Errorf("LiveviewAvailable = %v", ev.LiveviewAvailable)
	}
	if ev.PostviewImageSize == nil || ev.PostviewImageSize.Current != "2M" || len(ev.PostviewImageSize.Candidates) != 2 {
		t.Errorf("PostviewImageSize = %+v", ev.PostviewImageSize)
	}
	if ev.SelfTimer == nil || !slices.Equal(ev.SelfTimer.Candidates, []int{0, 2, 10}) {
		t.Errorf("SelfTimer = %+v", ev.SelfTimer)
	}
	if ev.EV == nil || *ev.EV != (EVInfo{Current: 1, Min: -6, Max: 6, StepIndex: 1}) {
		t.Errorf("EV = %+v", ev.EV)
	}
	if ev.ProgramShift == nil || !*ev.ProgramShift {
		t.Errorf("ProgramShift = %v", ev.ProgramShift)
	}
	if ev.FNumber != nil || ev.ShutterSpeed != nil || ev.ISOSpeedRate != nil || ev.ExposureMode != nil {
		t.Error("unreported members are set")
	}
}

func TestParseEventMalformed(t *testing.T) {
	_, err := parseEvent([]json.RawMessage{json.RawMessage(`"text"`)})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("parseEvent(string entry) = %v, want ErrMalformedResponse", err)
	}
}

func TestStatusApply(t *testing.T) {
	first := decodeSample(t, sampleEvent)
	s, changed := Status{}.Apply(first)
	// SelfTimer counts: its current value is zero but the candidates are new.
	want := []Member{
		MemberAvailableAPIs, MemberCameraStatus, MemberLiveviewAvailable,
		MemberPostviewImageSize, MemberSelfTimer, MemberShootMode, MemberZoom,
		MemberEV, MemberProgramShift,
	}
	if !slices.Equal(changed, want) {
		t.Errorf("changed = %v, want %v", changed, want)
	}
	if !s.Supports("actZoom") || s.Supports("actTakePicture") {
		t.Error("Supports() does not follow AvailableAPIs")
	}

	same, changed := s.Apply(first)
	if len(changed) != 0 {
		t.Errorf("reapplying the same event changed %v", changed)
	}

	next := decodeSample(t, `[{"type":"zoomInformation","zoomPosition":50,"zoomNumberBox":1,"zoomIndexCurrentBox":0,"zoomPositionCurrentBox":50}]`)
	after, changed := same.Apply(next)
	if !slices.Equal(changed, []Member{MemberZoom}) {
		t.Errorf("changed = %v, want [Zoom]", changed)
	}
	if after.Zoom.Position != 50 || after.CameraStatus != "IDLE" {
		t.Errorf("status after zoom event = %+v", after)
	}
	if _, changed := after.Apply(nil); changed != nil {
		t.Errorf("Apply(nil) changed %v", changed)
	}
}

func TestMemberString(t *testing.T) {
	if got := MemberZoom.String(); got != "Zoom" {
		t.Errorf("MemberZoom.String() = %q", got)
	}
	if got := Member(99).String(); got != "Member(99)" {
		t.Errorf("Member(99).String() = %q", got)
	}
}
