// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package camera

import (
	"bytes"
	"fmt"
	"slices"

	json "github.com/goccy/go-json"
)

// Member names one part of the camera Status.
type Member int

// Status members, in the order changes are reported.
const (
	MemberAvailableAPIs Member = iota
	MemberCameraStatus
	MemberLiveviewAvailable
	MemberPostviewImageSize
	MemberSelfTimer
	MemberShootMode
	MemberZoom
	MemberExposureMode
	MemberFNumber
	MemberShutterSpeed
	MemberISOSpeedRate
	MemberEV
	MemberProgramShift
)

var memberNames = [...]string{
	"AvailableAPIs",
	"CameraStatus",
	"LiveviewAvailable",
	"PostviewImageSize",
	"SelfTimer",
	"ShootMode",
	"Zoom",
	"ExposureMode",
	"FNumber",
	"ShutterSpeed",
	"ISOSpeedRate",
	"EV",
	"ProgramShift",
}

func (m Member) String() string {
	if m >= 0 && int(m) < len(memberNames) {
		return memberNames[m]
	}
	return fmt.Sprintf("Member(%d)", int(m))
}

// Setting is a camera parameter with the values it may take.
type Setting[T comparable] struct {
	Current    T
	Candidates []T
}

// Equal reports whether s and o hold the same values.
func (s Setting[T]) Equal(o Setting[T]) bool {
	return s.Current == o.Current && slices.Equal(s.Candidates, o.Candidates)
}

// ZoomInfo is the zoom lens position, 0 to 100 per box.
type ZoomInfo struct {
	Position           int
	NumberBox          int
	IndexCurrentBox    int
	PositionCurrentBox int
}

// EVInfo is the exposure compensation as step indexes.
type EVInfo struct {
	Current   int
	Min       int
	Max       int
	StepIndex int
}

// Status is the camera state accumulated from events.
type Status struct {
	AvailableAPIs     []string
	CameraStatus      string
	LiveviewAvailable bool
	PostviewImageSize Setting[string]
	SelfTimer         Setting[int]
	ShootMode         Setting[string]
	Zoom              ZoomInfo
	ExposureMode      Setting[string]
	FNumber           Setting[string]
	ShutterSpeed      Setting[string]
	ISOSpeedRate      Setting[string]
	EV                EVInfo
	ProgramShift      bool
}

// Supports reports whether method is among the available APIs.
func (s Status) Supports(method string) bool {
	return slices.Contains(s.AvailableAPIs, method)
}

// Event is one getEvent answer. nil fields were not reported.
type Event struct {
	AvailableAPIs     []string
	CameraStatus      *string
	LiveviewAvailable *bool
	PostviewImageSize *Setting[string]
	SelfTimer         *Setting[int]
	ShootMode         *Setting[string]
	Zoom              *ZoomInfo
	ExposureMode      *Setting[string]
	FNumber           *Setting[string]
	ShutterSpeed      *Setting[string]
	ISOSpeedRate      *Setting[string]
	EV                *EVInfo
	ProgramShift      *bool
}

// Apply returns s updated with the fields present in e, and the members
// whose value changed.
func (s Status) Apply(e *Event) (Status, []Member) {
	var changed []Member
	if e == nil {
		return s, nil
	}
	if e.AvailableAPIs != nil && !slices.Equal(s.AvailableAPIs, e.AvailableAPIs) {
		s.AvailableAPIs = slices.Clone(e.AvailableAPIs)
		changed = append(changed, MemberAvailableAPIs)
	}
	changed = applyValue(&s.CameraStatus, e.CameraStatus, MemberCameraStatus, changed)
	changed = applyValue(&s.LiveviewAvailable, e.LiveviewAvailable, MemberLiveviewAvailable, changed)
	changed = applySetting(&s.PostviewImageSize, e.PostviewImageSize, MemberPostviewImageSize, changed)
	changed = applySetting(&s.SelfTimer, e.SelfTimer, MemberSelfTimer, changed)
	changed = applySetting(&s.ShootMode, e.ShootMode, MemberShootMode, changed)
	changed = applyValue(&s.Zoom, e.Zoom, MemberZoom, changed)
	changed = applySetting(&s.ExposureMode, e.ExposureMode, MemberExposureMode, changed)
	changed = applySetting(&s.FNumber, e.FNumber, MemberFNumber, changed)
	changed = applySetting(&s.ShutterSpeed, e.ShutterSpeed, MemberShutterSpeed, changed)
	changed = applySetting(&s.ISOSpeedRate, e.ISOSpeedRate, MemberISOSpeedRate, changed)
	changed = applyValue(&s.EV, e.EV, MemberEV, changed)
	changed = applyValue(&s.ProgramShift, e.ProgramShift, MemberProgramShift, changed)
	return s, changed
}

func applyValue[T comparable](dst *T, v *T, m Member, changed []Member) []Member {
	if v == nil || *dst == *v {
		return changed
	}
	*dst = *v
	return append(changed, m)
}

func applySetting[T comparable](dst *Setting[T], v *Setting[T], m Member, changed []Member) []Member {
	if v == nil || dst.Equal(*v) {
		return changed
	}
	*dst = Setting[T]{Current: v.Current, Candidates: slices.Clone(v.Candidates)}
	return append(changed, m)
}

// eventItem is the union of the typed objects in a getEvent result.
type eventItem struct {
	Type string `json:"type"`

	Names          []string `json:"names"`
	CameraStatus   string   `json:"cameraStatus"`
	LiveviewStatus bool     `json:"liveviewStatus"`

	ZoomPosition           int `json:"zoomPosition"`
	ZoomNumberBox          int `json:"zoomNumberBox"`
	ZoomIndexCurrentBox    int `json:"zoomIndexCurrentBox"`
	ZoomPositionCurrentBox int `json:"zoomPositionCurrentBox"`

	CurrentPostviewImageSize    string   `json:"currentPostviewImageSize"`
	PostviewImageSizeCandidates []string `json:"postviewImageSizeCandidates"`
	CurrentSelfTimer            int      `json:"currentSelfTimer"`
	SelfTimerCandidates         []int    `json:"selfTimerCandidates"`
	CurrentShootMode            string   `json:"currentShootMode"`
	ShootModeCandidates         []string `json:"shootModeCandidates"`
	CurrentExposureMode         string   `json:"currentExposureMode"`
	ExposureModeCandidates      []string `json:"exposureModeCandidates"`
	CurrentFNumber              string   `json:"currentFNumber"`
	FNumberCandidates           []string `json:"fNumberCandidates"`
	CurrentShutterSpeed         string   `json:"currentShutterSpeed"`
	ShutterSpeedCandidates      []string `json:"shutterSpeedCandidates"`
	CurrentIsoSpeedRate         string   `json:"currentIsoSpeedRate"`
	IsoSpeedRateCandidates      []string `json:"isoSpeedRateCandidates"`

	CurrentExposureCompensation     int `json:"currentExposureCompensation"`
	MaxExposureCompensation         int `json:"maxExposureCompensation"`
	MinExposureCompensation         int `json:"minExposureCompensation"`
	StepIndexOfExposureCompensation int `json:"stepIndexOfExposureCompensation"`

	IsShifted bool `json:"isShifted"`
}

// parseEvent decodes a getEvent result. Entries are null, an object, or
// an array of objects; unknown types are skipped.
func parseEvent(result []json.RawMessage) (*Event, error) {
	e := &Event{}
	for i, raw := range result {
		items, err := eventItems(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: getEvent entry %d: %w", ErrMalformedResponse, i, err)
		}
		for _, it := range items {
			e.set(it)
		}
	}
	return e, nil
}

func eventItems(raw json.RawMessage) ([]eventItem, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var items []*eventItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		out := make([]eventItem, 0, len(items))
		for _, it := range items {
			if it != nil {
				out = append(out, *it)
			}
		}
		return out, nil
	}
	var it eventItem
	if err := json.Unmarshal(trimmed, &it); err != nil {
		return nil, err
	}
	return []eventItem{it}, nil
}

func (e *Event) set(it eventItem) {
	switch it.Type {
	case "availableApi":
		e.AvailableAPIs = append([]string{}, it.Names...)
	case "cameraStatus":
		e.CameraStatus = &it.CameraStatus
	case "liveviewStatus":
		e.LiveviewAvailable = &it.LiveviewStatus
	case "zoomInformation":
		e.Zoom = &ZoomInfo{
			Position:           it.ZoomPosition,
			NumberBox:          it.ZoomNumberBox,
			IndexCurrentBox:    it.ZoomIndexCurrentBox,
			PositionCurrentBox: it.ZoomPositionCurrentBox,
		}
	case "postviewImageSize":
		e.PostviewImageSize = &Setting[string]{it.CurrentPostviewImageSize, it.PostviewImageSizeCandidates}
	case "selfTimer":
		e.SelfTimer = &Setting[int]{it.CurrentSelfTimer, it.SelfTimerCandidates}
	case "shootMode":
		e.ShootMode = &Setting[string]{it.CurrentShootMode, it.ShootModeCandidates}
	case "exposureMode":
		e.ExposureMode = &Setting[string]{it.CurrentExposureMode, it.ExposureModeCandidates}
	case "fNumber":
		e.FNumber = &Setting[string]{it.CurrentFNumber, it.FNumberCandidates}
	case "shutterSpeed":
		e.ShutterSpeed = &Setting[string]{it.CurrentShutterSpeed, it.ShutterSpeedCandidates}
	case "isoSpeedRate":
		e.ISOSpeedRate = &Setting[string]{it.CurrentIsoSpeedRate, it.IsoSpeedRateCandidates}
	case "exposureCompensation":
		e.EV = &EVInfo{
			Current:   it.CurrentExposureCompensation,
			Min:       it.MinExposureCompensation,
			Max:       it.MaxExposureCompensation,
			StepIndex: it.StepIndexOfExposureCompensation,
		}
	case "programShift":
		e.ProgramShift = &it.IsShifted
	}
}
