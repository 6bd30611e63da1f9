// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package profiler decouples the rendering packages from any concrete
// profiler. Frame stages report their extent through the ProfilerGroup
// interface; applications that want timings implement it, everyone else
// gets Nop.
package profiler

// ProfilerGroup is a named span of work. Start opens a nested child span;
// End closes the span. Implementations must tolerate End being called on
// spans whose children are still open.
type ProfilerGroup interface {
	Start(label string) ProfilerGroup
	End()
}

// Nop is a ProfilerGroup that discards all spans.
type Nop struct{}

func (Nop) Start(label string) ProfilerGroup { return Nop{} }
func (Nop) End()                             {}
