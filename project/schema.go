// SPDX-License-Identifier: EPL-2.0

package project

// Version is the file format version written by Save.
const Version = 1

type file struct {
	Version int         `yaml:"version"`
	Tempo   tempo       `yaml:"tempo"`
	Root    string      `yaml:"root"`
	Groups  []groupSpec `yaml:"groups"`
}

type tempo struct {
	BPM            float64 `yaml:"bpm"`
	PixelPerSample float64 `yaml:"pixel_per_sample,omitempty"`
	Divisions      int     `yaml:"divisions,omitempty"`
}

type groupSpec struct {
	Name     string      `yaml:"name"`
	Loop     string      `yaml:"loop,omitempty"`
	Duration *int        `yaml:"duration,omitempty"`
	LinkedTo string      `yaml:"linked_to,omitempty"`
	Children []childSpec `yaml:"children,omitempty"`
}

type childSpec struct {
	Group     string   `yaml:"group,omitempty"`
	File      string   `yaml:"file,omitempty"`
	Name      string   `yaml:"name,omitempty"`
	At        at       `yaml:"at"`
	Loop      string   `yaml:"loop,omitempty"`
	Duration  *int     `yaml:"duration,omitempty"`
	Frames    *int     `yaml:"frames,omitempty"`
	Amplitude *float32 `yaml:"amplitude,omitempty"`
}

type at struct {
	Value float64 `yaml:"value"`
	Unit  string  `yaml:"unit"`
}
