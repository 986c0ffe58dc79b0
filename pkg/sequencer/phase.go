/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package sequencer

// Phase is the lifecycle state of a sequencer run.
type Phase int32

const (
	NotStarted Phase = iota
	SettingUp
	Running
	TearingDown
	Done
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "NotStarted"
	case SettingUp:
		return "SettingUp"
	case Running:
		return "Running"
	case TearingDown:
		return "TearingDown"
	case Done:
		return "Done"
	}

	return "Unknown"
}

// TransitionHook is called on every phase change. order is the order index
// of the case about to run while Running and zero otherwise.
type TransitionHook func(phase Phase, order int)
